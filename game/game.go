// Package game owns the simulation context: the world, its RNG, the
// mutation rules and the statistics, and advances them one tick at a time.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/cells/components"
	"github.com/pthm-cable/cells/config"
	"github.com/pthm-cable/cells/systems"
	"github.com/pthm-cable/cells/telemetry"
)

// Options configures a new Game.
type Options struct {
	Seed      int64
	Config    *config.Config // nil = config.Cfg()
	LogStats  bool
	OutputDir string

	// Initial replaces the configured founder when non-nil.
	Initial []components.Cell

	// StatsCallback receives every flushed telemetry window.
	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete simulation state. There is no package-level state;
// every tick function works on the Game it is called on.
type Game struct {
	cfg     *config.Config
	world   *World
	rng     *rand.Rand
	mutator systems.Mutator

	baseline config.Baseline

	stats      telemetry.Statistics
	collector  *telemetry.Collector
	output     *telemetry.OutputManager
	perf       *telemetry.PerfCollector
	lastWindow *telemetry.WindowStats
	bookmarks  *telemetry.BookmarkDetector
	marks      []telemetry.Bookmark

	logStats      bool
	statsCallback func(telemetry.WindowStats)

	tick    int32
	extinct bool
}

// NewGameWithOptions creates a world populated with the founder (or
// opts.Initial) and prepares telemetry output.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	g := &Game{
		cfg:           cfg,
		world:         NewWorld(cfg.World.Width, cfg.World.Height),
		rng:           rand.New(rand.NewSource(opts.Seed)),
		mutator:       systems.NewMutator(cfg.Mutation),
		baseline:      cfg.Derived.Baseline,
		collector:     telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		output:        output,
		perf:          telemetry.NewPerfCollector(cfg.Telemetry.StatsWindow),
		bookmarks:     telemetry.NewBookmarkDetector(10),
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
	}
	g.world.NutrientLevel = cfg.World.NutrientLevel
	g.world.Speed = cfg.World.Speed

	initial := opts.Initial
	if initial == nil {
		initial = []components.Cell{g.founder()}
	}
	for _, c := range initial {
		if _, ok := g.world.Spawn(c); !ok {
			output.Close()
			return nil, fmt.Errorf("cannot place initial cell at (%d,%d)", c.X, c.Y)
		}
	}

	g.recomputeStats()
	return g, nil
}

// founder builds the initial cell from config.
func (g *Game) founder() components.Cell {
	f := g.cfg.Founder
	genome := make(components.Genome, 0, len(f.Genome))
	for _, inst := range f.Genome {
		op, _ := components.ParseOp(inst.Op)
		genome = append(genome, components.Instruction{Op: op, Delta: inst.Delta})
	}

	c := components.Cell{
		X:                    f.X,
		Y:                    f.Y,
		Species:              g.rng.Int63(),
		Genome:               genome,
		MaxAge:               f.MaxAge,
		Energy:               f.Energy,
		MinEnergy:            f.MinEnergy,
		MaxEnergy:            f.MaxEnergy,
		MinEnergyToReproduce: f.MinEnergyToReproduce,
		Damage:               f.Damage,
		Resistance:           f.Resistance,
		Color:                components.Color{R: f.Color[0], G: f.Color[1], B: f.Color[2]},
	}
	c.Rotate(f.Direction)
	return c
}

// recomputeStats rebuilds the statistics from the current live cells.
func (g *Game) recomputeStats() {
	g.stats.Reset()
	for i := 0; i < g.world.Len(); i++ {
		g.stats.Add(g.world.Cell(i))
	}
	g.stats.Finalize()
}

// Update runs one rendered frame worth of ticks. The nutrient level and
// speed are read once, before the batch.
func (g *Game) Update() {
	nutrient := g.world.NutrientLevel
	speed := g.world.Speed
	for i := 0; i < speed; i++ {
		g.step(nutrient)
	}
}

// UpdateChecked runs the same batch as Update but verifies the world
// invariants after every tick, stopping at the first violation.
func (g *Game) UpdateChecked() error {
	nutrient := g.world.NutrientLevel
	speed := g.world.Speed
	for i := 0; i < speed; i++ {
		g.step(nutrient)
		if err := g.world.CheckInvariants(); err != nil {
			return fmt.Errorf("tick %d: %w", g.tick, err)
		}
	}
	return nil
}

// Step runs a single tick with the current nutrient level.
func (g *Game) Step() {
	g.step(g.world.NutrientLevel)
}

// World returns the simulation world.
func (g *Game) World() *World {
	return g.world
}

// Stats returns a copy of the latest per-tick statistics.
func (g *Game) Stats() telemetry.Statistics {
	return g.stats
}

// LastWindow returns the most recently flushed telemetry window, or nil
// before the first flush.
func (g *Game) LastWindow() *telemetry.WindowStats {
	return g.lastWindow
}

// Bookmarks returns every bookmark raised so far, oldest first.
func (g *Game) Bookmarks() []telemetry.Bookmark {
	return g.marks
}

// LastBookmark returns the most recent bookmark, or nil.
func (g *Game) LastBookmark() *telemetry.Bookmark {
	if len(g.marks) == 0 {
		return nil
	}
	return &g.marks[len(g.marks)-1]
}

// RecordFrame marks a rendered frame for the perf FPS estimate.
func (g *Game) RecordFrame() {
	g.perf.RecordFrame()
}

// Perf returns tick timing over the last stats window.
func (g *Game) Perf() telemetry.PerfStats {
	return g.perf.Stats()
}

// Population returns the number of live cells.
func (g *Game) Population() int {
	return g.world.Len()
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() int32 {
	return g.tick
}

// Config returns the configuration the game was built with.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// Unload flushes and closes telemetry output.
func (g *Game) Unload() {
	if err := g.output.Close(); err != nil {
		slog.Error("closing output", "error", err)
	}
}
