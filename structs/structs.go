package structs

// Position 描述游戏地图上的一个格子坐标。
type Position struct {
	X int `json:"x"` // X坐标
	Y int `json:"y"` // Y坐标
}

// Add 返回按方向移动一步后的位置
func (p Position) Add(d Direction) Position {
	return Position{X: p.X + d.DX, Y: p.Y + d.DY}
}

// Direction 描述蛇每次移动的增量。
type Direction struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

var (
	None  = Direction{}
	Up    = Direction{DX: 0, DY: -1}
	Down  = Direction{DX: 0, DY: 1}
	Left  = Direction{DX: -1, DY: 0}
	Right = Direction{DX: 1, DY: 0}
)

// Opposite 返回相反的方向，None 的相反方向仍是 None
func (d Direction) Opposite() Direction {
	return Direction{DX: -d.DX, DY: -d.DY}
}

// IsZero 蛇是否静止
func (d Direction) IsZero() bool {
	return d.DX == 0 && d.DY == 0
}

// String 返回方向名称（"up", "down", "left", "right", "none"）
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "none"
	}
}

// GameState 是某一时刻游戏状态的快照，交给渲染和客户端使用。
type GameState struct {
	Snake     []Position `json:"snake"`      // 蛇身，下标0为蛇头
	Food      Position   `json:"food"`       // 食物位置
	Direction Direction  `json:"direction"`  // 当前移动方向
	Score     int        `json:"score"`      // 分数
	Running   bool       `json:"running"`    // false 表示游戏结束
	TileCount int        `json:"tile_count"` // 地图边长（格子数）
}

// Frame 描述一次刷新后的画面。
type Frame struct {
	Seq   uint64    `json:"seq"`   // 刷新序号
	State GameState `json:"state"` // 状态快照
	PNG   []byte    `json:"-"`     // 渲染好的画布
}
