// 关于蛇的更新
package snake

import (
	"math/rand"

	"github.com/hoshinonyaruko/snake-in-browser/structs"
)

// 随机找食物位置的次数，超过后改为在空格子中挑选
const maxFoodAttempts = 64

// Options 描述一局游戏的固定参数
type Options struct {
	TileCount      int // 地图边长（格子数）
	ScoreIncrement int // 每吃一个食物加的分
}

// TickResult 描述一次刷新发生了什么
type TickResult struct {
	Moved    bool // 蛇头前进了一格
	Ate      bool // 吃到了食物
	GameOver bool // 本次刷新撞墙或撞到自己
}

// Game 持有一局游戏的全部状态，只允许一个 goroutine 操作。
type Game struct {
	opts      Options
	rng       *rand.Rand
	snake     []structs.Position
	direction structs.Direction
	lastMove  structs.Direction // 上一次实际移动用的方向
	food      structs.Position
	score     int
	running   bool
}

// New 创建一局新游戏，蛇位于地图中央，食物随机生成
func New(opts Options, rng *rand.Rand) *Game {
	g := &Game{opts: opts, rng: rng}
	g.Reset()
	return g
}

// Reset 重新开始：单节蛇、静止、零分，并重新放置食物
func (g *Game) Reset() {
	center := g.opts.TileCount / 2
	g.snake = []structs.Position{{X: center, Y: center}}
	g.direction = structs.None
	g.lastMove = structs.None
	g.score = 0
	g.running = true
	g.GenerateFood()
}

// Tick 执行一次移动和碰撞检测
func (g *Game) Tick() TickResult {
	var res TickResult
	if !g.running || g.direction.IsZero() {
		// 还没按方向键，蛇不动
		return res
	}

	head := g.snake[0].Add(g.direction)
	if g.OutOfBounds(head) || g.Occupied(head) {
		g.running = false
		res.GameOver = true
		return res
	}

	// 新蛇头放到最前面
	g.snake = append(g.snake, structs.Position{})
	copy(g.snake[1:], g.snake)
	g.snake[0] = head
	g.lastMove = g.direction
	res.Moved = true

	if head == g.food {
		g.score += g.opts.ScoreIncrement
		res.Ate = true
		if !g.GenerateFood() {
			// 地图已被占满
			g.running = false
			res.GameOver = true
		}
		return res
	}

	// 没吃到食物，去掉尾巴，长度不变
	g.snake = g.snake[:len(g.snake)-1]
	return res
}

// HandleKey 处理按键，返回状态是否发生了变化
func (g *Game) HandleKey(k Key) bool {
	if !g.running {
		if k == KeyReset {
			g.Reset()
			return true
		}
		return false
	}
	d, ok := k.Direction()
	if !ok {
		return false
	}
	return g.Turn(d)
}

// Turn 改变方向，不允许直接掉头
func (g *Game) Turn(d structs.Direction) bool {
	if d.IsZero() {
		return false
	}
	if d == g.direction.Opposite() || d == g.lastMove.Opposite() {
		return false
	}
	g.direction = d
	return true
}

// GenerateFood 在没有蛇的格子上随机放置食物，地图已满时返回 false
func (g *Game) GenerateFood() bool {
	n := g.opts.TileCount
	for i := 0; i < maxFoodAttempts; i++ {
		pos := structs.Position{X: g.rng.Intn(n), Y: g.rng.Intn(n)}
		if !g.Occupied(pos) {
			g.food = pos
			return true
		}
	}

	free := make([]structs.Position, 0, n*n-len(g.snake))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			pos := structs.Position{X: x, Y: y}
			if !g.Occupied(pos) {
				free = append(free, pos)
			}
		}
	}
	if len(free) == 0 {
		return false
	}
	g.food = free[g.rng.Intn(len(free))]
	return true
}

// OutOfBounds 判断位置是否超出地图
func (g *Game) OutOfBounds(pos structs.Position) bool {
	n := g.opts.TileCount
	return pos.X < 0 || pos.X >= n || pos.Y < 0 || pos.Y >= n
}

// Occupied 判断位置上是否有蛇身
func (g *Game) Occupied(pos structs.Position) bool {
	for _, seg := range g.snake {
		if seg == pos {
			return true
		}
	}
	return false
}

// Running 游戏是否进行中
func (g *Game) Running() bool { return g.running }

// Score 当前分数
func (g *Game) Score() int { return g.score }

// Snapshot 返回状态的深拷贝
func (g *Game) Snapshot() structs.GameState {
	body := make([]structs.Position, len(g.snake))
	copy(body, g.snake)
	return structs.GameState{
		Snake:     body,
		Food:      g.food,
		Direction: g.direction,
		Score:     g.score,
		Running:   g.running,
		TileCount: g.opts.TileCount,
	}
}
