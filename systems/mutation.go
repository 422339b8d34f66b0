package systems

import (
	"math/rand"

	"github.com/pthm-cable/cells/components"
	"github.com/pthm-cable/cells/config"
)

// Genome mutation classes, chosen with equal probability.
const (
	mutateTurns = iota
	mutateInsert
	mutateDelete

	numMutationClasses
)

// Mutator applies offspring mutation.
type Mutator struct {
	Rate       float64 // Probability that any mutation happens
	MaxGenome  int     // Longer genomes die instead of growing
	ColorStep  float32
	AgeStep    int
	TraitStep  float64
	DeltaRange int // Rotation range for inserted turn instructions
}

// NewMutator builds a mutator from config.
func NewMutator(cfg config.MutationConfig) Mutator {
	return Mutator{
		Rate:       cfg.Rate,
		MaxGenome:  cfg.MaxGenome,
		ColorStep:  cfg.ColorStep,
		AgeStep:    cfg.AgeStep,
		TraitStep:  cfg.TraitStep,
		DeltaRange: cfg.DeltaRange,
	}
}

// Mutate perturbs a newborn cell and reports whether anything changed.
// A mutation that would leave the genome empty or push combat stats negative
// kill-marks the cell instead; the regular death check then removes it.
func (m Mutator) Mutate(c *components.Cell, rng *rand.Rand) bool {
	if rng.Float64() >= m.Rate {
		return false
	}

	// A mutant founds a new lineage for combat purposes
	c.Species = rng.Int63()

	c.MaxAge += m.intStep(rng, m.AgeStep)
	c.MinEnergy += m.floatStep(rng)
	c.MaxEnergy += m.floatStep(rng)
	c.MinEnergyToReproduce += m.floatStep(rng)
	c.Damage += m.floatStep(rng)
	c.Resistance += m.floatStep(rng)
	c.Color.Perturb(rng, m.ColorStep)

	switch rng.Intn(numMutationClasses) {
	case mutateTurns:
		for i := range c.Genome {
			if c.Genome[i].Op == components.OpSetDirection {
				c.Genome[i].Delta += m.intStep(rng, 1)
			}
		}
	case mutateInsert:
		if len(c.Genome) > m.MaxGenome {
			c.KillMark()
			break
		}
		c.Genome = append(c.Genome, m.randomInstruction(rng))
	case mutateDelete:
		// Never remove the last instruction
		if len(c.Genome) <= 1 {
			c.KillMark()
			break
		}
		i := rng.Intn(len(c.Genome))
		c.Genome = append(c.Genome[:i], c.Genome[i+1:]...)
	}

	if c.Damage < 0 || c.Resistance < 0 {
		c.KillMark()
	}
	return true
}

// randomInstruction picks an instruction kind uniformly.
func (m Mutator) randomInstruction(rng *rand.Rand) components.Instruction {
	op := components.Op(rng.Intn(int(components.NumOps)))
	if op == components.OpSetDirection {
		return components.SetDirection(m.intStep(rng, m.DeltaRange))
	}
	return components.Instruction{Op: op}
}

// intStep returns a uniform integer in [-n, n].
func (m Mutator) intStep(rng *rand.Rand, n int) int {
	if n <= 0 {
		return 0
	}
	return rng.Intn(2*n+1) - n
}

// floatStep returns a uniform value in [-TraitStep, TraitStep).
func (m Mutator) floatStep(rng *rand.Rand) float64 {
	return (rng.Float64()*2 - 1) * m.TraitStep
}
