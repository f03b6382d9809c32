package snake

import (
	"strings"

	"github.com/hoshinonyaruko/snake-in-browser/structs"
)

// Key 是游戏能识别的按键
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyReset // 仅在游戏结束时有效
)

// ParseKey 解析浏览器按键名（"ArrowUp"、" "）或方向词（"up"）
func ParseKey(name string) (Key, bool) {
	if name == " " {
		return KeyReset, true
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "arrowup", "up":
		return KeyUp, true
	case "arrowdown", "down":
		return KeyDown, true
	case "arrowleft", "left":
		return KeyLeft, true
	case "arrowright", "right":
		return KeyRight, true
	case "space", "spacebar", "reset":
		return KeyReset, true
	}
	return KeyNone, false
}

// Direction 返回方向键对应的方向
func (k Key) Direction() (structs.Direction, bool) {
	switch k {
	case KeyUp:
		return structs.Up, true
	case KeyDown:
		return structs.Down, true
	case KeyLeft:
		return structs.Left, true
	case KeyRight:
		return structs.Right, true
	}
	return structs.None, false
}

func (k Key) String() string {
	switch k {
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyReset:
		return "reset"
	}
	return "none"
}
