package game

import (
	"log/slog"

	"github.com/pthm-cable/cells/components"
	"github.com/pthm-cable/cells/systems"
	"github.com/pthm-cable/cells/telemetry"
)

// step runs a single tick of the simulation.
func (g *Game) step(nutrient float64) {
	w := g.world
	g.perf.StartTick()
	g.perf.StartPhase(telemetry.PhaseSweep)
	g.stats.Reset()

	// Newborns are appended by flush, so n covers exactly the cells alive
	// when the sweep started.
	n := w.Len()
	for i := 0; i < n; i++ {
		if w.dead[i] {
			continue
		}
		c := w.Cell(i)

		// 1. Dispatch the current instruction
		c.NormalizePC()
		switch inst := c.Current(); inst.Op {
		case components.OpSetDirection:
			c.Rotate(inst.Delta)
		case components.OpReproduce:
			g.reproduce(c)
		case components.OpAttack:
			g.attack(c)
		}

		// 2. Metabolism
		g.metabolize(c, nutrient)

		// 3. Death check, then fold survivors into statistics
		if c.Dead() {
			cause := telemetry.DeathStarvation
			if c.Age > c.MaxAge {
				cause = telemetry.DeathAge
			}
			w.kill(i)
			g.collector.RecordDeath(cause)
			continue
		}
		g.stats.Add(c)
	}

	g.stats.Finalize()

	g.perf.StartPhase(telemetry.PhaseCompact)
	w.flush()
	g.tick++
	g.checkExtinction()

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()
	g.perf.EndTick()
}

// reproduce spawns an offspring in the faced slot when it is free and the
// parent has more energy than its reproduction threshold. Parent and child
// split the energy and both restart their age.
func (g *Game) reproduce(c *components.Cell) {
	w := g.world
	tx, ty := w.grid.Ahead(c.X, c.Y, c.Direction)
	if w.grid.At(tx, ty) != systems.Empty || c.Energy <= c.MinEnergyToReproduce {
		return
	}

	c.Age = 0
	c.Energy /= 2

	child := c.Clone()
	child.X, child.Y = tx, ty
	child.PC = 0
	mutated := g.mutator.Mutate(&child, g.rng)

	w.reserve(child)
	g.collector.RecordBirth(mutated)
}

// attack hits the faced neighbor if it belongs to another lineage. The
// attacker always gains damage minus the defender's resistance (which may be
// negative); the defender only loses energy when that difference is positive.
func (g *Game) attack(c *components.Cell) {
	w := g.world
	tx, ty := w.grid.Ahead(c.X, c.Y, c.Direction)
	j, ok := w.At(tx, ty)
	if !ok {
		return
	}
	d := w.Cell(j)
	if d.Species == c.Species {
		return
	}

	diff := c.Damage - d.Resistance
	c.Energy += diff
	hit := diff > 0
	if hit {
		d.Energy -= diff
	}
	g.collector.RecordAttack(hit)
}

// metabolize ages the cell, advances its program and applies income minus
// upkeep. Income falls off linearly with distance from the y=0 edge.
func (g *Game) metabolize(c *components.Cell, nutrient float64) {
	c.Age++
	c.Advance()

	income := nutrient * (1 - float64(c.Y)/float64(g.world.Height()))
	c.Energy += income - c.Consume(g.baseline.MinEnergy, g.baseline.MaxEnergy)
	c.ClampEnergy()
}

// checkExtinction logs the tick at which the population first dies out.
func (g *Game) checkExtinction() {
	if g.world.Len() > 0 {
		g.extinct = false
		return
	}
	if !g.extinct {
		g.extinct = true
		slog.Info("population extinct", "tick", g.tick)
	}
}

// flushTelemetry emits a window record when the window is complete.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	// Survivors sit first in the live list after compaction; the window row
	// describes them only, matching the trait averages.
	survivors := g.stats.Population
	ws := g.collector.Flush(g.tick, g.world.lineagesOf(survivors), &g.stats, g.world.energiesOf(survivors))
	g.lastWindow = &ws
	perf := g.perf.Stats()
	marks := g.bookmarks.Check(ws)
	g.marks = append(g.marks, marks...)
	if g.logStats {
		ws.LogStats()
		perf.LogStats()
		for _, b := range marks {
			telemetry.LogBookmark(b)
		}
	}
	if err := g.output.WriteTelemetry(ws); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.output.WritePerf(perf.ToCSV(g.tick)); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
	if g.statsCallback != nil {
		g.statsCallback(ws)
	}
}
