package systems

import (
	"testing"

	"github.com/pthm-cable/cells/components"
)

func TestNewGridEmpty(t *testing.T) {
	g := NewGrid(4, 3)
	if g.Occupied() != 0 {
		t.Errorf("new grid has %d occupied slots", g.Occupied())
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			if g.At(x, y) != Empty {
				t.Fatalf("slot (%d,%d) = %d, want Empty", x, y, g.At(x, y))
			}
		}
	}
}

func TestGridSetClear(t *testing.T) {
	g := NewGrid(5, 5)
	g.Set(2, 3, 7)
	if g.At(2, 3) != 7 {
		t.Errorf("At(2,3) = %d, want 7", g.At(2, 3))
	}
	if g.At(3, 2) != Empty {
		t.Error("Set leaked into transposed coordinate")
	}
	if g.Occupied() != 1 {
		t.Errorf("Occupied = %d, want 1", g.Occupied())
	}
	g.Clear(2, 3)
	if g.At(2, 3) != Empty {
		t.Error("Clear did not empty the slot")
	}
}

func TestAheadInterior(t *testing.T) {
	g := NewGrid(50, 50)
	tests := []struct {
		dir    int
		wx, wy int
	}{
		{components.North, 25, 24},
		{components.East, 26, 25},
		{components.South, 25, 26},
		{components.West, 24, 25},
	}
	for _, tt := range tests {
		x, y := g.Ahead(25, 25, tt.dir)
		if x != tt.wx || y != tt.wy {
			t.Errorf("Ahead(25,25,%d) = (%d,%d), want (%d,%d)", tt.dir, x, y, tt.wx, tt.wy)
		}
	}
}

func TestAheadClampsAtEdges(t *testing.T) {
	g := NewGrid(10, 8)
	tests := []struct {
		name         string
		x, y, dir    int
		wantX, wantY int
	}{
		{"north edge", 4, 0, components.North, 4, 0},
		{"south edge", 4, 7, components.South, 4, 7},
		{"west edge", 0, 3, components.West, 0, 3},
		{"east edge", 9, 3, components.East, 9, 3},
		{"corner inward", 0, 0, components.East, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := g.Ahead(tt.x, tt.y, tt.dir)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("got (%d,%d), want (%d,%d)", x, y, tt.wantX, tt.wantY)
			}
			if !g.InBounds(x, y) {
				t.Errorf("(%d,%d) out of bounds", x, y)
			}
		})
	}
}
