// Package telemetry provides population statistics, windowed event counters and CSV output.
package telemetry

import "math"

// DeathCause records which survival condition a cell failed.
type DeathCause uint8

const (
	DeathAge DeathCause = iota
	DeathStarvation
)

// Collector accumulates events within tick windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	births        int
	mutations     int
	deathsAge     int
	deathsStarved int
	attacks       int
	attackHits    int
}

// NewCollector creates a new stats collector flushing every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowDurationTicks: int32(windowTicks)}
}

// RecordBirth records an offspring entering the world.
func (c *Collector) RecordBirth(mutated bool) {
	c.births++
	if mutated {
		c.mutations++
	}
}

// RecordDeath records a removal from the live population.
func (c *Collector) RecordDeath(cause DeathCause) {
	if cause == DeathAge {
		c.deathsAge++
	} else {
		c.deathsStarved++
	}
}

// RecordAttack records an attack on a foreign lineage. hit is true when the
// defender lost energy.
func (c *Collector) RecordAttack(hit bool) {
	c.attacks++
	if hit {
		c.attackHits++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// lineages and energies must describe the same cells stats folded.
// Non-finite energies are ignored.
func (c *Collector) Flush(currentTick int32, lineages int, stats *Statistics, energies []float64) WindowStats {
	finite := make([]float64, 0, len(energies))
	for _, e := range energies {
		if !math.IsInf(e, 0) && !math.IsNaN(e) {
			finite = append(finite, e)
		}
	}
	mean, p10, p50, p90 := ComputeEnergyStats(finite)

	ws := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		Population: stats.Population,
		Lineages:   lineages,

		Births:        c.births,
		Mutations:     c.mutations,
		DeathsAge:     c.deathsAge,
		DeathsStarved: c.deathsStarved,
		Attacks:       c.attacks,
		AttackHits:    c.attackHits,

		EnergyMean: mean,
		EnergyP10:  p10,
		EnergyP50:  p50,
		EnergyP90:  p90,
	}
	ws.setAverages(stats)

	// Reset for next window
	c.windowStartTick = currentTick
	c.births = 0
	c.mutations = 0
	c.deathsAge = 0
	c.deathsStarved = 0
	c.attacks = 0
	c.attackHits = 0

	return ws
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
