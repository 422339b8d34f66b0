// Package camera provides a 2D camera over the bounded cell grid.
package camera

// Camera maps grid coordinates to screen pixels. One world unit is one cell,
// so Zoom is the on-screen size of a cell in pixels.
type Camera struct {
	// Position is the camera center in grid coordinates
	X, Y float32

	// Pixels per cell
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Grid dimensions in cells
	WorldW, WorldH float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera that fits the whole grid in the viewport.
func New(viewportW, viewportH, worldW, worldH float32) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		WorldW:    worldW,
		WorldH:    worldH,
	}
	c.updateLimits()
	c.Reset()
	return c
}

// updateLimits lets the user zoom out until the grid fills half the viewport
// and in until a cell covers a quarter of the shorter viewport side.
func (c *Camera) updateLimits() {
	fit := c.FitZoom()
	c.MinZoom = fit / 2
	c.MaxZoom = minf(c.ViewportW, c.ViewportH) / 4
	if c.MaxZoom < fit {
		c.MaxZoom = fit
	}
}

// FitZoom returns the zoom at which the whole grid is visible.
func (c *Camera) FitZoom() float32 {
	return minf(c.ViewportW/c.WorldW, c.ViewportH/c.WorldH)
}

// WorldToScreen converts grid coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 + (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to grid coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y + (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// CellAt returns the grid slot under a screen position.
func (c *Camera) CellAt(sx, sy float32) (x, y int, ok bool) {
	wx, wy := c.ScreenToWorld(sx, sy)
	if wx < 0 || wy < 0 || wx >= c.WorldW || wy >= c.WorldH {
		return 0, 0, false
	}
	return int(wx), int(wy), true
}

// CellRect returns the screen rectangle of the slot at (x, y).
func (c *Camera) CellRect(x, y int) (sx, sy, size float32) {
	sx, sy = c.WorldToScreen(float32(x), float32(y))
	return sx, sy, c.Zoom
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.updateLimits()
	c.SetZoom(c.Zoom)
}

// Pan moves the camera by the given delta in screen pixels. The center stays
// within the grid.
func (c *Camera) Pan(dx, dy float32) {
	c.X = clamp(c.X+dx/c.Zoom, 0, c.WorldW)
	c.Y = clamp(c.Y+dy/c.Zoom, 0, c.WorldH)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// ZoomAt zooms by factor while keeping the grid point under (sx, sy) fixed.
func (c *Camera) ZoomAt(sx, sy, factor float32) {
	wx, wy := c.ScreenToWorld(sx, sy)
	c.ZoomBy(factor)
	nx, ny := c.ScreenToWorld(sx, sy)
	c.X = clamp(c.X+wx-nx, 0, c.WorldW)
	c.Y = clamp(c.Y+wy-ny, 0, c.WorldH)
}

// Reset centers the camera and fits the grid to the viewport.
func (c *Camera) Reset() {
	c.X = c.WorldW / 2
	c.Y = c.WorldH / 2
	c.Zoom = c.FitZoom()
}

// VisibleCells returns the half-open range of grid slots on screen, clipped
// to the grid.
func (c *Camera) VisibleCells() (minX, minY, maxX, maxY int) {
	x0, y0 := c.ScreenToWorld(0, 0)
	x1, y1 := c.ScreenToWorld(c.ViewportW, c.ViewportH)

	minX = int(clamp(floor(x0), 0, c.WorldW))
	minY = int(clamp(floor(y0), 0, c.WorldH))
	maxX = int(clamp(floor(x1)+1, 0, c.WorldW))
	maxY = int(clamp(floor(y1)+1, 0, c.WorldH))
	return
}

func floor(x float32) float32 {
	i := float32(int(x))
	if x < i {
		i--
	}
	return i
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
