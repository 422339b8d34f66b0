// Package systems provides the stateless simulation rules and spatial structures.
package systems

import "github.com/pthm-cable/cells/components"

// Empty marks an unoccupied grid slot.
const Empty int32 = -1

// directionOffsets maps a facing direction to its unit step.
var directionOffsets = [components.NumDirections][2]int{
	components.North: {0, -1},
	components.East:  {1, 0},
	components.South: {0, 1},
	components.West:  {-1, 0},
}

// Grid maps each coordinate to the index of its occupant in the live-cell
// list, or Empty. Storage is row-major.
type Grid struct {
	W, H  int
	slots []int32
}

// NewGrid allocates an empty grid with the given dimensions.
func NewGrid(w, h int) *Grid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	g := &Grid{W: w, H: h, slots: make([]int32, w*h)}
	g.Reset()
	return g
}

// Index returns the linear slot index for coordinates (x, y).
func (g *Grid) Index(x, y int) int { return y*g.W + x }

// InBounds reports whether (x, y) lies on the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.W && y >= 0 && y < g.H
}

// At returns the occupant index at (x, y), or Empty.
func (g *Grid) At(x, y int) int32 {
	return g.slots[g.Index(x, y)]
}

// Set records idx as the occupant of (x, y).
func (g *Grid) Set(x, y int, idx int32) {
	g.slots[g.Index(x, y)] = idx
}

// Clear marks (x, y) as unoccupied.
func (g *Grid) Clear(x, y int) {
	g.slots[g.Index(x, y)] = Empty
}

// Reset marks every slot as unoccupied.
func (g *Grid) Reset() {
	for i := range g.slots {
		g.slots[i] = Empty
	}
}

// Occupied counts non-empty slots.
func (g *Grid) Occupied() int {
	n := 0
	for _, s := range g.slots {
		if s != Empty {
			n++
		}
	}
	return n
}

// Ahead returns the coordinate one step from (x, y) in direction dir,
// clamped to the grid on each axis. At an edge facing outward the result is
// (x, y) itself; the grid never wraps.
func (g *Grid) Ahead(x, y, dir int) (int, int) {
	off := directionOffsets[dir]
	return clampInt(x+off[0], 0, g.W-1), clampInt(y+off[1], 0, g.H-1)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
