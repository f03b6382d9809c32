// Package term plays the game in a terminal through tcell.
package term

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/hoshinonyaruko/snake-in-browser/logger"
	"github.com/hoshinonyaruko/snake-in-browser/snake"
	"github.com/hoshinonyaruko/snake-in-browser/structs"
)

var (
	styleBorder = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleSnake  = tcell.StyleDefault.Background(tcell.NewHexColor(0x4CAF50))
	styleFood   = tcell.StyleDefault.Background(tcell.NewHexColor(0xFF5722))
	styleText   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleOver   = tcell.StyleDefault.Foreground(tcell.NewHexColor(0xFF5722)).Bold(true)
)

// Loop is the part of the game loop the terminal needs.
type Loop interface {
	Press(k snake.Key) bool
	Latest() structs.Frame
	Subscribe() (int, <-chan structs.Frame)
	Unsubscribe(id int)
}

// Run draws frames from loop onto screen and forwards key presses until
// ctx is cancelled or the player quits. The screen must be initialised.
func Run(ctx context.Context, screen tcell.Screen, loop Loop) error {
	id, frames := loop.Subscribe()
	defer loop.Unsubscribe(id)

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go pollEvents(screen, events, quit)

	Draw(screen, loop.Latest().State)
	for {
		select {
		case <-ctx.Done():
			return nil
		case f, ok := <-frames:
			if !ok {
				return nil
			}
			Draw(screen, f.State)
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if IsQuit(ev) {
					return nil
				}
				if k, ok := MapKey(ev); ok && !loop.Press(k) {
					logger.Log.WithField("key", k.String()).Debug("input queue full, key dropped")
				}
			case *tcell.EventResize:
				screen.Sync()
				Draw(screen, loop.Latest().State)
			}
		}
	}
}

// pollEvents forwards screen events until the screen is finalised or quit closes.
func pollEvents(screen tcell.Screen, events chan<- tcell.Event, quit <-chan struct{}) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-quit:
			return
		}
	}
}

// MapKey translates a terminal key event to a game key.
func MapKey(ev *tcell.EventKey) (snake.Key, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return snake.KeyUp, true
	case tcell.KeyDown:
		return snake.KeyDown, true
	case tcell.KeyLeft:
		return snake.KeyLeft, true
	case tcell.KeyRight:
		return snake.KeyRight, true
	case tcell.KeyRune:
		if ev.Rune() == ' ' {
			return snake.KeyReset, true
		}
	}
	return snake.KeyNone, false
}

// IsQuit reports Esc, Ctrl-C and q.
func IsQuit(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q'
	}
	return false
}

// Draw renders state. Each grid cell takes two columns so cells look square.
func Draw(screen tcell.Screen, state structs.GameState) {
	screen.Clear()
	n := state.TileCount

	drawText(screen, 0, 0, styleText, fmt.Sprintf("Score: %d", state.Score))

	// 边框
	for x := 0; x < n*2+2; x++ {
		screen.SetContent(x, 1, '─', nil, styleBorder)
		screen.SetContent(x, n+2, '─', nil, styleBorder)
	}
	for y := 1; y < n+3; y++ {
		screen.SetContent(0, y, '│', nil, styleBorder)
		screen.SetContent(n*2+1, y, '│', nil, styleBorder)
	}

	setCell(screen, state.Food, styleFood)
	for _, seg := range state.Snake {
		setCell(screen, seg, styleSnake)
	}

	if !state.Running {
		drawText(screen, 0, n+3, styleOver, "Game Over! Press Space to restart")
	}
	screen.Show()
}

func setCell(screen tcell.Screen, pos structs.Position, style tcell.Style) {
	x := 1 + pos.X*2
	y := 2 + pos.Y
	screen.SetContent(x, y, ' ', nil, style)
	screen.SetContent(x+1, y, ' ', nil, style)
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		screen.SetContent(x+i, y, r, nil, style)
	}
}
