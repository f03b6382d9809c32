// Package canvas draws game state onto a fixed-size 2D surface.
package canvas

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/fogleman/gg"
	"github.com/hoshinonyaruko/snake-in-browser/memimg"
	"github.com/hoshinonyaruko/snake-in-browser/structs"
)

const (
	ColorBackground = "#000000"
	ColorSnake      = "#4CAF50"
	ColorFood       = "#FF5722"
	ColorGrid       = "#1E1E1E"
)

// SkinSource supplies optional sprites by file name.
type SkinSource interface {
	GetSkin(name string) (image.Image, bool)
}

// Renderer draws a GameState. It is not safe for concurrent use.
type Renderer struct {
	BlockSize int
	ShowGrid  bool
	Skins     SkinSource // may be nil
}

// New returns a Renderer for cells of blockSize pixels.
func New(blockSize int, showGrid bool, skins SkinSource) *Renderer {
	return &Renderer{BlockSize: blockSize, ShowGrid: showGrid, Skins: skins}
}

// Draw clears the surface and paints food, then every snake segment.
func (r *Renderer) Draw(state structs.GameState) image.Image {
	size := state.TileCount * r.BlockSize
	dc := gg.NewContext(size, size)

	dc.SetHexColor(ColorBackground)
	dc.Clear()
	if r.ShowGrid {
		r.drawGrid(dc, size)
	}

	r.drawCell(dc, state.Food, ColorFood, memimg.SkinFood)
	for i, seg := range state.Snake {
		skin := memimg.SkinBody
		if i == 0 {
			skin = memimg.SkinHead
		}
		r.drawCell(dc, seg, ColorSnake, skin)
	}

	if !state.Running {
		drawGameOver(dc, size)
	}
	return dc.Image()
}

// drawCell paints one cell, leaving a 2px gap to the next cell.
func (r *Renderer) drawCell(dc *gg.Context, pos structs.Position, color, skin string) {
	x := pos.X * r.BlockSize
	y := pos.Y * r.BlockSize
	if r.Skins != nil {
		if img, ok := r.Skins.GetSkin(skin); ok {
			dc.DrawImage(img, x, y)
			return
		}
	}
	side := float64(r.BlockSize - 2)
	dc.SetHexColor(color)
	dc.DrawRectangle(float64(x), float64(y), side, side)
	dc.Fill()
}

func (r *Renderer) drawGrid(dc *gg.Context, size int) {
	dc.SetHexColor(ColorGrid)
	dc.SetLineWidth(1)
	for x := 0; x <= size; x += r.BlockSize {
		dc.DrawLine(float64(x), 0, float64(x), float64(size))
		dc.Stroke()
	}
	for y := 0; y <= size; y += r.BlockSize {
		dc.DrawLine(0, float64(y), float64(size), float64(y))
		dc.Stroke()
	}
}

func drawGameOver(dc *gg.Context, size int) {
	dc.SetRGBA(0, 0, 0, 0.6)
	dc.DrawRectangle(0, 0, float64(size), float64(size))
	dc.Fill()

	mid := float64(size) / 2
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored("GAME OVER", mid, mid-10, 0.5, 0.5)
	dc.DrawStringAnchored("press space to restart", mid, mid+10, 0.5, 0.5)
}

// EncodePNG renders state and returns it as PNG bytes.
func (r *Renderer) EncodePNG(state structs.GameState) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.Draw(state)); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}
