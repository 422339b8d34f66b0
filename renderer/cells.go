// Package renderer draws the cell grid with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cells/camera"
	"github.com/pthm-cable/cells/components"
	"github.com/pthm-cable/cells/game"
	"github.com/pthm-cable/cells/telemetry"
)

// CellRenderer draws live cells as filled squares with a facing marker.
type CellRenderer struct {
	// Background gradient: nutrient-rich top edge to barren bottom edge
	TopColor    rl.Color
	BottomColor rl.Color
	BorderColor rl.Color

	// Filter selects the trait used for grayscale shading; TraitNone draws
	// lineage colors.
	Filter components.Trait
}

// NewCellRenderer creates a renderer with the default palette.
func NewCellRenderer(filter components.Trait) *CellRenderer {
	return &CellRenderer{
		TopColor:    rl.Color{R: 18, G: 40, B: 30, A: 255},
		BottomColor: rl.Color{R: 8, G: 10, B: 14, A: 255},
		BorderColor: rl.Color{R: 60, G: 70, B: 80, A: 255},
		Filter:      filter,
	}
}

// DrawBackground fills the grid area with the nutrient gradient.
func (r *CellRenderer) DrawBackground(cam *camera.Camera) {
	x0, y0 := cam.WorldToScreen(0, 0)
	x1, y1 := cam.WorldToScreen(cam.WorldW, cam.WorldH)
	rl.DrawRectangleGradientV(int32(x0), int32(y0), int32(x1-x0), int32(y1-y0), r.TopColor, r.BottomColor)
	rl.DrawRectangleLines(int32(x0)-1, int32(y0)-1, int32(x1-x0)+2, int32(y1-y0)+2, r.BorderColor)
}

// Draw renders every visible cell.
func (r *CellRenderer) Draw(cam *camera.Camera, cells []game.CellView, stats *telemetry.Statistics) {
	minX, minY, maxX, maxY := cam.VisibleCells()
	for i := range cells {
		c := &cells[i]
		if c.X < minX || c.X >= maxX || c.Y < minY || c.Y >= maxY {
			continue
		}

		sx, sy, size := cam.CellRect(c.X, c.Y)
		color := r.CellColor(c, stats)
		rl.DrawRectangleRec(rl.Rectangle{X: sx, Y: sy, Width: size, Height: size}, color)

		if size >= 6 {
			drawFacing(sx, sy, size, c.Direction)
		}
	}
}

// CellColor returns the lineage color, or a gray level for the active trait
// filter. Cells fall back to the lineage color when the filter has no data.
func (r *CellRenderer) CellColor(c *game.CellView, stats *telemetry.Statistics) rl.Color {
	if r.Filter != components.TraitNone && stats != nil {
		if rel, ok := stats.Relative(r.Filter, c.Traits[r.Filter]); ok {
			v := uint8(rel * 255)
			return rl.Color{R: v, G: v, B: v, A: 255}
		}
	}
	cr, cg, cb, ca := c.Color.RGBA()
	return rl.Color{R: cr, G: cg, B: cb, A: ca}
}

// DrawHighlight outlines the slot at (x, y).
func (r *CellRenderer) DrawHighlight(cam *camera.Camera, x, y int, color rl.Color) {
	sx, sy, size := cam.CellRect(x, y)
	rl.DrawRectangleLinesEx(rl.Rectangle{X: sx - 1, Y: sy - 1, Width: size + 2, Height: size + 2}, 2, color)
}

// drawFacing draws a small triangle on the edge the cell faces.
func drawFacing(sx, sy, size float32, dir int) {
	cx, cy := sx+size/2, sy+size/2
	h := size / 2
	w := size / 5

	var tip, left, right rl.Vector2
	switch dir {
	case components.North:
		tip = rl.Vector2{X: cx, Y: cy - h}
		left = rl.Vector2{X: cx - w, Y: cy - h + w}
		right = rl.Vector2{X: cx + w, Y: cy - h + w}
	case components.East:
		tip = rl.Vector2{X: cx + h, Y: cy}
		left = rl.Vector2{X: cx + h - w, Y: cy - w}
		right = rl.Vector2{X: cx + h - w, Y: cy + w}
	case components.South:
		tip = rl.Vector2{X: cx, Y: cy + h}
		left = rl.Vector2{X: cx + w, Y: cy + h - w}
		right = rl.Vector2{X: cx - w, Y: cy + h - w}
	default:
		tip = rl.Vector2{X: cx - h, Y: cy}
		left = rl.Vector2{X: cx - h + w, Y: cy + w}
		right = rl.Vector2{X: cx - h + w, Y: cy - w}
	}

	// DrawTriangle requires counter-clockwise winding
	rl.DrawTriangle(tip, left, right, rl.Color{R: 0, G: 0, B: 0, A: 140})
}
