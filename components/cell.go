// Package components defines the plain data types of the simulation.
package components

import "math"

// Facing directions. Direction values are always kept in [0, 4).
const (
	North = iota
	East
	South
	West

	NumDirections
)

// Cell is a single organism on the grid.
type Cell struct {
	// Position
	X, Y int

	// Lineage tag; equal tags never fight each other
	Species int64

	// Behavior
	Direction int
	Genome    Genome
	PC        int // program counter into Genome

	// Physiology
	Age                  int
	MaxAge               int
	Energy               float64
	MinEnergy            float64
	MaxEnergy            float64
	MinEnergyToReproduce float64

	// Combat
	Damage     float64
	Resistance float64

	Color Color
}

// Rotate turns the cell by delta quarter turns. Negative results fold into
// the positive residue class.
func (c *Cell) Rotate(delta int) {
	c.Direction = ((c.Direction+delta)%NumDirections + NumDirections) % NumDirections
}

// NormalizePC wraps the program counter back into the genome.
func (c *Cell) NormalizePC() {
	if c.PC < 0 || c.PC >= len(c.Genome) {
		c.PC = 0
	}
}

// Current returns the instruction at the program counter.
// NormalizePC must have been called first.
func (c *Cell) Current() Instruction {
	return c.Genome[c.PC]
}

// Advance moves the program counter to the next instruction, wrapping.
func (c *Cell) Advance() {
	c.PC++
	if c.PC >= len(c.Genome) {
		c.PC = 0
	}
}

// Consume returns this tick's upkeep. Cells with a lower death threshold or a
// smaller energy ceiling than the founder lineage pay less; old cells pay more.
func (c *Cell) Consume(baseMinEnergy, baseMaxEnergy float64) float64 {
	return baseMinEnergy/c.MinEnergy +
		c.MaxEnergy/baseMaxEnergy +
		float64(c.Age)/float64(c.MaxAge)
}

// ClampEnergy caps energy at MaxEnergy. There is no lower bound.
func (c *Cell) ClampEnergy() {
	if c.Energy > c.MaxEnergy {
		c.Energy = c.MaxEnergy
	}
}

// KillMark forces the cell below any death threshold. The next death check
// removes it regardless of income received in between.
func (c *Cell) KillMark() {
	c.Energy = math.Inf(-1)
}

// Dead reports whether the cell fails its survival conditions.
func (c *Cell) Dead() bool {
	return c.Age > c.MaxAge || c.Energy < c.MinEnergy
}

// Clone returns a deep copy of the cell.
func (c *Cell) Clone() Cell {
	out := *c
	out.Genome = c.Genome.Clone()
	return out
}

// Trait returns the value of a tracked trait. TraitNone yields 0.
func (c *Cell) Trait(t Trait) float64 {
	switch t {
	case TraitMaxAge:
		return float64(c.MaxAge)
	case TraitMinEnergy:
		return c.MinEnergy
	case TraitMaxEnergy:
		return c.MaxEnergy
	case TraitReproThreshold:
		return c.MinEnergyToReproduce
	case TraitDamage:
		return c.Damage
	case TraitResistance:
		return c.Resistance
	}
	return 0
}
