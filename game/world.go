package game

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/cells/components"
	"github.com/pthm-cable/cells/systems"
)

// CellView is a read-only copy of the values renderers need.
type CellView struct {
	X, Y      int
	Direction int
	Color     components.Color
	Species   int64
	Energy    float64
	Age       int
	Traits    [components.NumTraits]float64
}

// World owns the cell arena, the ordered live-cell list and the occupancy grid.
//
// Cells are stored as ark entities. order holds the live entities in
// insertion order, which is also dispatch order. Grid slots store indices
// into order. During a sweep, dead cells are tombstoned (grid slot vacated
// at once) and newborns hold pending indices >= Len(); flush compacts order
// and rewrites grid indices so the two always agree between ticks.
type World struct {
	ecs     *ecs.World
	cellMap *ecs.Map1[components.Cell]

	order   []ecs.Entity
	dead    []bool
	pending []components.Cell

	grid *systems.Grid

	// External tunables, read once per tick batch
	NutrientLevel float64
	Speed         int
}

// NewWorld creates an empty world with a w×h grid.
func NewWorld(w, h int) *World {
	world := ecs.NewWorld()
	return &World{
		ecs:     world,
		cellMap: ecs.NewMap1[components.Cell](world),
		grid:    systems.NewGrid(w, h),
		Speed:   1,
	}
}

// Width returns the grid width.
func (w *World) Width() int { return w.grid.W }

// Height returns the grid height.
func (w *World) Height() int { return w.grid.H }

// Len returns the number of live cells.
func (w *World) Len() int { return len(w.order) }

// Cell returns the live cell at index i. The pointer is valid until the next
// structural change (Spawn or the end of a tick).
func (w *World) Cell(i int) *components.Cell {
	return w.cellMap.Get(w.order[i])
}

// At returns the index of the live cell at (x, y).
func (w *World) At(x, y int) (int, bool) {
	if !w.grid.InBounds(x, y) {
		return 0, false
	}
	idx := w.grid.At(x, y)
	if idx == systems.Empty || int(idx) >= len(w.order) || w.dead[idx] {
		return 0, false
	}
	return int(idx), true
}

// Spawn places a cell on an empty in-bounds slot and appends it to the live
// list. It must not be called during a sweep.
func (w *World) Spawn(c components.Cell) (int, bool) {
	if !w.grid.InBounds(c.X, c.Y) || w.grid.At(c.X, c.Y) != systems.Empty || len(c.Genome) == 0 {
		return 0, false
	}
	return w.insert(&c), true
}

// insert creates the entity and records its occupancy.
func (w *World) insert(c *components.Cell) int {
	e := w.cellMap.NewEntity(c)
	idx := len(w.order)
	w.order = append(w.order, e)
	w.dead = append(w.dead, false)
	w.grid.Set(c.X, c.Y, int32(idx))
	return idx
}

// reserve claims the newborn's grid slot immediately so later cells in the
// same sweep see it as occupied, and buffers it for insertion by flush.
func (w *World) reserve(c components.Cell) {
	w.grid.Set(c.X, c.Y, int32(len(w.order)+len(w.pending)))
	w.pending = append(w.pending, c)
}

// kill vacates the cell's grid slot and tombstones it. Indices of the other
// cells are unchanged until flush.
func (w *World) kill(i int) {
	c := w.Cell(i)
	w.grid.Clear(c.X, c.Y)
	w.dead[i] = true
}

// flush removes tombstoned cells, renumbers the survivors' grid slots and
// appends buffered newborns. Returns the number of cells appended.
func (w *World) flush() int {
	n := 0
	for i, e := range w.order {
		if w.dead[i] {
			w.ecs.RemoveEntity(e)
			continue
		}
		if n != i {
			c := w.cellMap.Get(e)
			w.grid.Set(c.X, c.Y, int32(n))
		}
		w.order[n] = e
		w.dead[n] = false
		n++
	}
	w.order = w.order[:n]
	w.dead = w.dead[:n]

	born := len(w.pending)
	for i := range w.pending {
		w.insert(&w.pending[i])
	}
	w.pending = w.pending[:0]
	return born
}

// View copies the live cell at index i.
func (w *World) View(i int) CellView {
	c := w.Cell(i)
	v := CellView{
		X:         c.X,
		Y:         c.Y,
		Direction: c.Direction,
		Color:     c.Color,
		Species:   c.Species,
		Energy:    c.Energy,
		Age:       c.Age,
	}
	for _, t := range components.TrackedTraits {
		v.Traits[t] = c.Trait(t)
	}
	return v
}

// Cells returns a snapshot of every live cell in dispatch order.
func (w *World) Cells() []CellView {
	out := make([]CellView, len(w.order))
	for i := range w.order {
		out[i] = w.View(i)
	}
	return out
}

// Energies returns the energy of every live cell.
func (w *World) Energies() []float64 {
	return w.energiesOf(len(w.order))
}

// Lineages counts distinct species tags among live cells.
func (w *World) Lineages() int {
	return w.lineagesOf(len(w.order))
}

// energiesOf returns the energy of the first n live cells. After a tick the
// first n = survivors are the cells that lived through it; newborns follow.
func (w *World) energiesOf(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = w.Cell(i).Energy
	}
	return out
}

// lineagesOf counts distinct species tags among the first n live cells.
func (w *World) lineagesOf(n int) int {
	seen := make(map[int64]struct{})
	for i := 0; i < n; i++ {
		seen[w.Cell(i).Species] = struct{}{}
	}
	return len(seen)
}

// CheckInvariants verifies that the grid and the live list describe the same
// occupancy: every live cell's slot points back at it, no two cells share a
// slot, and no slot points anywhere else.
func (w *World) CheckInvariants() error {
	if len(w.pending) != 0 {
		return fmt.Errorf("%d newborns still pending outside a sweep", len(w.pending))
	}
	for i, e := range w.order {
		if w.dead[i] {
			return fmt.Errorf("cell %d tombstoned outside a sweep", i)
		}
		if !w.ecs.Alive(e) {
			return fmt.Errorf("cell %d refers to a removed entity", i)
		}
		c := w.cellMap.Get(e)
		if !w.grid.InBounds(c.X, c.Y) {
			return fmt.Errorf("cell %d at (%d,%d) outside grid", i, c.X, c.Y)
		}
		if got := w.grid.At(c.X, c.Y); got != int32(i) {
			return fmt.Errorf("cell %d at (%d,%d) but grid slot holds %d", i, c.X, c.Y, got)
		}
		if len(c.Genome) == 0 {
			return fmt.Errorf("cell %d has an empty genome", i)
		}
	}
	if occ := w.grid.Occupied(); occ != len(w.order) {
		return fmt.Errorf("grid has %d occupied slots for %d live cells", occ, len(w.order))
	}
	return nil
}
