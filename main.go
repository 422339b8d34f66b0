package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cells/components"
	"github.com/pthm-cable/cells/config"
	"github.com/pthm-cable/cells/game"
	"github.com/pthm-cable/cells/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Int("stats-window", 0, "Stats window size in ticks (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 0, "Simulation ticks per update call (0 = use config world.speed)")
	nutrient := flag.Float64("nutrient", -1, "Nutrient level override (negative = use config)")
	filter := flag.String("filter", "", "Initial view: lineage or a trait name (empty = use config)")
	check := flag.Bool("check", false, "Verify grid/list invariants after every tick and exit on the first violation (headless only)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}
	if *stepsPerUpdate > 0 {
		cfg.World.Speed = *stepsPerUpdate
	}
	if *nutrient >= 0 {
		cfg.World.NutrientLevel = *nutrient
	}
	if *filter != "" {
		cfg.View.Filter = *filter
	}
	view, ok := components.ParseTrait(cfg.View.Filter)
	if !ok {
		slog.Error("unknown view filter", "filter", cfg.View.Filter)
		os.Exit(1)
	}

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:      rngSeed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
	}

	if *headless {
		// Headless mode - pure CPU simulation, no raylib needed
		g, err := game.NewGameWithOptions(opts)
		if err != nil {
			slog.Error("failed to create simulation", "error", err)
			os.Exit(1)
		}
		defer g.Unload()

		slog.Info("starting headless simulation",
			"seed", rngSeed,
			"grid", []int{cfg.World.Width, cfg.World.Height},
			"nutrient_level", cfg.World.NutrientLevel,
			"max_ticks", *maxTicks,
			"steps_per_update", cfg.World.Speed,
		)

		for {
			if *check {
				if err := g.UpdateChecked(); err != nil {
					slog.Error("invariant violated", "error", err)
					g.Unload()
					os.Exit(1)
				}
			} else {
				g.Update()
			}
			if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
				slog.Info("max ticks reached", "tick", g.Tick(), "population", g.Population(), "stats", g.Stats())
				return
			}
			if g.Population() == 0 && *maxTicks == 0 {
				// Nothing left to simulate
				return
			}
		}
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Cells")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		return
	}
	defer g.Unload()

	viewer.New(g, view).Run(*maxTicks)
}
