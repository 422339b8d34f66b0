package game

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/cells/components"
	"github.com/pthm-cable/cells/config"
	"github.com/pthm-cable/cells/telemetry"
)

// testConfig returns defaults on a 50x50 grid with mutation disabled.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.World.Width = 50
	cfg.World.Height = 50
	cfg.World.NutrientLevel = 4
	cfg.Mutation.Rate = 0
	cfg.Derived.Baseline = config.Baseline{MinEnergy: 1, MaxEnergy: 10}
	return cfg
}

func newTestGame(t *testing.T, cfg *config.Config, cells ...components.Cell) *Game {
	t.Helper()
	opts := Options{Seed: 1, Config: cfg}
	if len(cells) > 0 {
		opts.Initial = cells
	}
	g, err := NewGameWithOptions(opts)
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	t.Cleanup(g.Unload)
	return g
}

func baseCell(x, y int, species int64, genome ...components.Instruction) components.Cell {
	return components.Cell{
		X: x, Y: y,
		Species:              species,
		Genome:               genome,
		MaxAge:               100,
		Energy:               8,
		MinEnergy:            1,
		MaxEnergy:            10,
		MinEnergyToReproduce: 4,
		Damage:               0.5,
		Resistance:           0.5,
	}
}

func mustInvariants(t *testing.T, w *World) {
	t.Helper()
	if err := w.CheckInvariants(); err != nil {
		t.Fatalf("invariant violated: %v", err)
	}
}

func TestFounderFromConfig(t *testing.T) {
	cfg := testConfig(t)
	g := newTestGame(t, cfg)

	if g.Population() != 1 {
		t.Fatalf("population = %d, want 1", g.Population())
	}
	c := g.World().Cell(0)
	if c.X != cfg.Founder.X || c.Y != cfg.Founder.Y {
		t.Errorf("founder at (%d,%d), want (%d,%d)", c.X, c.Y, cfg.Founder.X, cfg.Founder.Y)
	}
	if len(c.Genome) != 2 || c.Genome[0] != components.SetDirection(1) || c.Genome[1].Op != components.OpReproduce {
		t.Errorf("unexpected founder genome %v", c.Genome)
	}
	if !g.Stats().Valid() {
		t.Error("initial statistics should describe the founder")
	}
	mustInvariants(t, g.World())
}

func TestReproductionScenario(t *testing.T) {
	cfg := testConfig(t)
	parent := baseCell(25, 25, 1, components.SetDirection(1), components.Reproduce())
	g := newTestGame(t, cfg, parent)
	w := g.World()

	// Tick 1: rotate from North to East
	g.Step()
	p := w.Cell(0)
	if p.Direction != components.East {
		t.Fatalf("direction = %d after turn, want East", p.Direction)
	}
	pre := p.Energy
	if pre <= p.MinEnergyToReproduce {
		t.Fatalf("energy %v too low for the scenario", pre)
	}

	// Tick 2: reproduce into (26,25)
	g.Step()
	if w.Len() != 2 {
		t.Fatalf("population = %d, want 2", w.Len())
	}
	ci, ok := w.At(26, 25)
	if !ok {
		t.Fatal("no offspring at (26,25)")
	}
	child := w.Cell(ci)
	if child.Age != 0 {
		t.Errorf("child age = %d, want 0", child.Age)
	}
	if math.Abs(child.Energy-pre/2) > 1e-9 {
		t.Errorf("child energy = %v, want %v", child.Energy, pre/2)
	}
	if child.PC != 0 {
		t.Errorf("child PC = %d, want 0", child.PC)
	}

	// The parent's age was reset and then advanced by its own metabolism
	p = w.Cell(0)
	if p.Age != 1 {
		t.Errorf("parent age = %d, want 1", p.Age)
	}
	income := cfg.World.NutrientLevel * (1 - 25.0/50.0)
	upkeep := 1.0 + 1.0 + 1.0/100.0
	if want := pre/2 + income - upkeep; math.Abs(p.Energy-want) > 1e-9 {
		t.Errorf("parent energy = %v, want %v", p.Energy, want)
	}
	mustInvariants(t, w)
}

func TestReproduceResetsBothAges(t *testing.T) {
	cfg := testConfig(t)
	parent := baseCell(25, 25, 1, components.Reproduce())
	parent.Age = 40
	parent.Direction = components.East
	g := newTestGame(t, cfg, parent)
	w := g.World()

	p := w.Cell(0)
	g.reproduce(p)
	if p.Age != 0 || p.Energy != 4 {
		t.Errorf("parent age/energy = %d/%v, want 0/4", p.Age, p.Energy)
	}
	if len(w.pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(w.pending))
	}
	child := w.pending[0]
	if child.Age != 0 || child.Energy != 4 || child.X != 26 || child.Y != 25 {
		t.Errorf("child = %+v", child)
	}
	if w.grid.At(26, 25) != 1 {
		t.Errorf("child slot holds %d, want pending index 1", w.grid.At(26, 25))
	}
	w.flush()
	mustInvariants(t, w)
}

func TestReproduceBlocked(t *testing.T) {
	t.Run("insufficient energy", func(t *testing.T) {
		cfg := testConfig(t)
		parent := baseCell(25, 25, 1, components.Reproduce())
		parent.Energy = parent.MinEnergyToReproduce
		g := newTestGame(t, cfg, parent)

		g.reproduce(g.World().Cell(0))
		if len(g.World().pending) != 0 {
			t.Error("reproduced at exactly the threshold")
		}
	})

	t.Run("grid edge", func(t *testing.T) {
		cfg := testConfig(t)
		parent := baseCell(25, 0, 1, components.Reproduce())
		parent.Direction = components.North
		g := newTestGame(t, cfg, parent)

		g.reproduce(g.World().Cell(0))
		if len(g.World().pending) != 0 {
			t.Error("reproduced through the grid edge")
		}
		if g.World().Cell(0).Energy != 8 {
			t.Error("blocked reproduction changed parent energy")
		}
	})

	t.Run("occupied target", func(t *testing.T) {
		cfg := testConfig(t)
		parent := baseCell(25, 25, 1, components.Reproduce())
		parent.Direction = components.East
		blocker := baseCell(26, 25, 2, components.SetDirection(0))
		g := newTestGame(t, cfg, parent, blocker)

		g.reproduce(g.World().Cell(0))
		if len(g.World().pending) != 0 {
			t.Error("reproduced onto an occupied slot")
		}
	})
}

func TestSameTickSiblingRace(t *testing.T) {
	cfg := testConfig(t)
	a := baseCell(10, 10, 1, components.Reproduce())
	a.Direction = components.East
	b := baseCell(12, 10, 2, components.Reproduce())
	b.Direction = components.West
	b.Age = 5
	g := newTestGame(t, cfg, a, b)
	w := g.World()

	g.Step()

	if w.Len() != 3 {
		t.Fatalf("population = %d, want 3", w.Len())
	}
	ci, ok := w.At(11, 10)
	if !ok {
		t.Fatal("contested slot is empty")
	}
	if w.Cell(ci).Species != 1 {
		t.Errorf("contested slot won by species %d, want the earlier cell's lineage", w.Cell(ci).Species)
	}
	bi, _ := w.At(12, 10)
	if blocked := w.Cell(bi); blocked.Age != 6 || blocked.Energy <= 4 {
		t.Errorf("blocked parent age/energy = %d/%v, want 6 and no halving", blocked.Age, blocked.Energy)
	}
	mustInvariants(t, w)
}

func TestAttackScenario(t *testing.T) {
	tests := []struct {
		name           string
		damage, resist float64
		wantAttacker   float64
		wantDefender   float64
	}{
		{"damage exceeds resistance", 3, 1, 8 + 2, 8 - 2},
		{"resistance absorbs", 1, 3, 8 - 2, 8},
		{"equal", 2, 2, 8, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			attacker := baseCell(10, 10, 1, components.Attack())
			attacker.Direction = components.East
			attacker.Damage = tt.damage
			defender := baseCell(11, 10, 2, components.SetDirection(0))
			defender.Resistance = tt.resist
			g := newTestGame(t, cfg, attacker, defender)
			w := g.World()

			g.attack(w.Cell(0))
			if got := w.Cell(0).Energy; math.Abs(got-tt.wantAttacker) > 1e-9 {
				t.Errorf("attacker energy = %v, want %v", got, tt.wantAttacker)
			}
			if got := w.Cell(1).Energy; math.Abs(got-tt.wantDefender) > 1e-9 {
				t.Errorf("defender energy = %v, want %v", got, tt.wantDefender)
			}
		})
	}
}

func TestAttackFullTick(t *testing.T) {
	cfg := testConfig(t)
	cfg.World.NutrientLevel = 0
	attacker := baseCell(10, 10, 1, components.Attack())
	attacker.Direction = components.East
	attacker.Energy = 5
	attacker.Damage = 3
	defender := baseCell(11, 10, 2, components.SetDirection(0))
	defender.Energy = 6
	defender.Resistance = 1
	g := newTestGame(t, cfg, attacker, defender)
	w := g.World()

	g.Step()

	upkeep := 1.0 + 1.0 + 1.0/100.0
	if got, want := w.Cell(0).Energy, 5+2-upkeep; math.Abs(got-want) > 1e-9 {
		t.Errorf("attacker energy = %v, want %v", got, want)
	}
	if got, want := w.Cell(1).Energy, 6-2-upkeep; math.Abs(got-want) > 1e-9 {
		t.Errorf("defender energy = %v, want %v", got, want)
	}
}

func TestAttackIgnoresSameLineageAndEmpty(t *testing.T) {
	cfg := testConfig(t)
	attacker := baseCell(10, 10, 1, components.Attack())
	attacker.Direction = components.East
	attacker.Damage = 3
	kin := baseCell(11, 10, 1, components.SetDirection(0))
	lonely := baseCell(30, 30, 1, components.Attack())
	g := newTestGame(t, cfg, attacker, kin, lonely)
	w := g.World()

	g.attack(w.Cell(0))
	g.attack(w.Cell(2))
	for i := 0; i < 3; i++ {
		if w.Cell(i).Energy != 8 {
			t.Errorf("cell %d energy changed to %v", i, w.Cell(i).Energy)
		}
	}
}

func TestAttackAtEdgeTargetsSelf(t *testing.T) {
	cfg := testConfig(t)
	attacker := baseCell(49, 10, 1, components.Attack())
	attacker.Direction = components.East
	attacker.Damage = 3
	g := newTestGame(t, cfg, attacker)

	g.attack(g.World().Cell(0))
	if g.World().Cell(0).Energy != 8 {
		t.Error("attack at the grid edge changed energy")
	}
}

func TestEnergyNeverExceedsMax(t *testing.T) {
	cfg := testConfig(t)
	cfg.World.NutrientLevel = 50
	c := baseCell(5, 0, 1, components.SetDirection(1))
	c.Energy = 9.9
	g := newTestGame(t, cfg, c)

	for i := 0; i < 20; i++ {
		g.Step()
		for j := 0; j < g.World().Len(); j++ {
			cell := g.World().Cell(j)
			if cell.Energy > cell.MaxEnergy {
				t.Fatalf("tick %d: energy %v above max %v", i, cell.Energy, cell.MaxEnergy)
			}
		}
	}
}

func TestRemovalDoesNotSkipOrRepeat(t *testing.T) {
	cfg := testConfig(t)
	doomed := baseCell(1, 1, 1, components.SetDirection(1))
	doomed.MinEnergy = 100
	a := baseCell(3, 1, 2, components.SetDirection(1))
	doomed2 := baseCell(5, 1, 3, components.SetDirection(1))
	doomed2.MaxAge = 0
	b := baseCell(7, 1, 4, components.SetDirection(1))
	g := newTestGame(t, cfg, doomed, a, doomed2, b)
	w := g.World()

	g.Step()

	if w.Len() != 2 {
		t.Fatalf("population = %d, want 2", w.Len())
	}
	for i := 0; i < w.Len(); i++ {
		c := w.Cell(i)
		if c.Direction != components.East || c.Age != 1 {
			t.Errorf("cell %d (species %d) direction=%d age=%d, want processed exactly once", i, c.Species, c.Direction, c.Age)
		}
	}
	if w.Cell(0).Species != 2 || w.Cell(1).Species != 4 {
		t.Error("survivors lost insertion order")
	}
	mustInvariants(t, w)
}

func TestTotalExtinctionYieldsNaN(t *testing.T) {
	cfg := testConfig(t)
	a := baseCell(1, 1, 1, components.SetDirection(1))
	a.MinEnergy = 100
	b := baseCell(2, 2, 2, components.Attack())
	b.MaxAge = -1
	g := newTestGame(t, cfg, a, b)

	g.Step()

	if g.Population() != 0 {
		t.Fatalf("population = %d, want 0", g.Population())
	}
	st := g.Stats()
	if st.Valid() {
		t.Error("statistics of an empty world should not be valid")
	}
	for _, tr := range components.TrackedTraits {
		if !math.IsNaN(st.Average(tr)) {
			t.Errorf("Average(%s) = %v, want NaN", tr.Name(), st.Average(tr))
		}
	}

	// Ticking an empty world is a no-op
	g.Update()
	g.Step()
	mustInvariants(t, g.World())
}

func TestStatisticsOverSurvivors(t *testing.T) {
	cfg := testConfig(t)
	a := baseCell(1, 1, 1, components.SetDirection(1))
	a.MaxAge = 200
	b := baseCell(3, 3, 2, components.SetDirection(1))
	b.MaxAge = 100
	doomed := baseCell(5, 5, 3, components.SetDirection(1))
	doomed.MaxAge = 0
	g := newTestGame(t, cfg, a, b, doomed)

	g.Step()

	st := g.Stats()
	if st.Population != 2 {
		t.Fatalf("statistics population = %d, want 2", st.Population)
	}
	if got := st.Average(components.TraitMaxAge); got != 150 {
		t.Errorf("average max age = %v, want 150", got)
	}
}

func TestKillMarkedNewbornRemovedNextTick(t *testing.T) {
	found := 0
	for seed := int64(1); seed <= 60; seed++ {
		cfg := testConfig(t)
		cfg.Mutation.Rate = 1
		parent := baseCell(25, 25, 1, components.Reproduce())
		parent.Damage = 5
		parent.Resistance = 5
		g, err := NewGameWithOptions(Options{Seed: seed, Config: cfg, Initial: []components.Cell{parent}})
		if err != nil {
			t.Fatal(err)
		}
		w := g.World()

		g.Step()
		ci, ok := w.At(25, 24)
		if !ok {
			t.Fatalf("seed %d: no offspring", seed)
		}
		child := w.Cell(ci)
		if len(child.Genome) == 0 {
			t.Fatalf("seed %d: offspring with empty genome", seed)
		}
		if !math.IsInf(child.Energy, -1) {
			continue
		}
		found++

		g.Step()
		if _, ok := w.At(25, 24); ok {
			t.Errorf("seed %d: kill-marked offspring survived its first death check", seed)
		}
		mustInvariants(t, w)
		g.Unload()
	}
	if found == 0 {
		t.Fatal("no seed produced a genome-emptying mutation")
	}
}

func TestBijectionOverLongRun(t *testing.T) {
	cfg := testConfig(t)
	cfg.Mutation.Rate = 0.2
	cfg.World.NutrientLevel = 6
	cfg.Founder.X, cfg.Founder.Y = 25, 2
	cfg.Founder.Genome = []config.InstructionConfig{
		{Op: "turn", Delta: 1},
		{Op: "reproduce"},
		{Op: "attack"},
		{Op: "turn", Delta: -3},
		{Op: "reproduce"},
	}
	g := newTestGame(t, cfg)
	w := g.World()

	peak := 0
	for i := 0; i < 400; i++ {
		g.Step()
		if err := w.CheckInvariants(); err != nil {
			t.Fatalf("tick %d: %v", g.Tick(), err)
		}
		for j := 0; j < w.Len(); j++ {
			c := w.Cell(j)
			if c.PC < 0 || c.PC >= len(c.Genome) {
				t.Fatalf("tick %d: PC %d outside genome of %d", g.Tick(), c.PC, len(c.Genome))
			}
			if c.Direction < 0 || c.Direction >= components.NumDirections {
				t.Fatalf("tick %d: direction %d", g.Tick(), c.Direction)
			}
		}
		if w.Len() > peak {
			peak = w.Len()
		}
	}
	if peak < 5 {
		t.Errorf("population peaked at %d, expected the run to grow", peak)
	}
}

func TestUpdateRunsSpeedTicks(t *testing.T) {
	cfg := testConfig(t)
	g := newTestGame(t, cfg)
	g.World().Speed = 5

	g.Update()
	if g.Tick() != 5 {
		t.Errorf("tick = %d after one frame at speed 5, want 5", g.Tick())
	}
}

func TestUpdateCheckedStopsAtFirstBadTick(t *testing.T) {
	cfg := testConfig(t)
	g := newTestGame(t, cfg, baseCell(25, 25, 1, components.SetDirection(1)))
	g.World().Speed = 5

	if err := g.UpdateChecked(); err != nil {
		t.Fatalf("clean batch: %v", err)
	}
	if g.Tick() != 5 {
		t.Fatalf("tick = %d after a clean batch, want 5", g.Tick())
	}

	// A stray grid entry that no live cell owns
	g.World().grid.Set(0, 0, 0)
	if err := g.UpdateChecked(); err == nil {
		t.Fatal("expected an invariant error")
	}
	if g.Tick() != 6 {
		t.Errorf("tick = %d, want the batch to stop after tick 6", g.Tick())
	}
}

func TestStatsCallbackFiresPerWindow(t *testing.T) {
	cfg := testConfig(t)
	cfg.Telemetry.StatsWindow = 10
	var windows []telemetry.WindowStats
	g, err := NewGameWithOptions(Options{
		Seed:   3,
		Config: cfg,
		StatsCallback: func(ws telemetry.WindowStats) {
			windows = append(windows, ws)
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer g.Unload()

	for i := 0; i < 35; i++ {
		g.Step()
	}
	if len(windows) != 3 {
		t.Fatalf("got %d windows, want 3", len(windows))
	}
	if windows[2].WindowEndTick != 30 {
		t.Errorf("third window ends at %d, want 30", windows[2].WindowEndTick)
	}
}

func TestInitialCellCollision(t *testing.T) {
	cfg := testConfig(t)
	a := baseCell(1, 1, 1, components.Reproduce())
	_, err := NewGameWithOptions(Options{Config: cfg, Initial: []components.Cell{a, a}})
	if err == nil {
		t.Error("expected error placing two cells on one slot")
	}
}

func TestOutputDirWritesRunFiles(t *testing.T) {
	cfg := testConfig(t)
	cfg.Telemetry.StatsWindow = 5
	dir := t.TempDir()
	g, err := NewGameWithOptions(Options{Seed: 7, Config: cfg, OutputDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		g.Step()
	}
	if g.LastWindow() == nil || g.LastWindow().WindowEndTick != 10 {
		t.Errorf("last window = %+v, want one ending at tick 10", g.LastWindow())
	}
	g.Unload()

	for _, name := range []string{"telemetry.csv", "perf.csv"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if lines := strings.Split(strings.TrimSpace(string(data)), "\n"); len(lines) != 3 {
			t.Errorf("%s has %d lines, want header + 2 rows", name, len(lines))
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config snapshot missing: %v", err)
	}
}

func TestExtinctionRaisesBookmark(t *testing.T) {
	cfg := testConfig(t)
	cfg.Telemetry.StatsWindow = 1
	a := baseCell(1, 1, 1, components.SetDirection(1))
	a.MaxAge = -1
	g := newTestGame(t, cfg, a)

	if g.LastBookmark() != nil {
		t.Fatal("bookmark before any window")
	}

	g.Step()
	g.Step()

	marks := g.Bookmarks()
	if len(marks) != 1 {
		t.Fatalf("got %d bookmarks, want 1: %v", len(marks), marks)
	}
	if marks[0].Type != telemetry.BookmarkExtinction || marks[0].Tick != 1 {
		t.Errorf("bookmark = %+v, want extinction at tick 1", marks[0])
	}
	if g.LastBookmark().Type != telemetry.BookmarkExtinction {
		t.Errorf("LastBookmark = %+v", g.LastBookmark())
	}
}

func TestWindowDescribesSurvivorsOnly(t *testing.T) {
	cfg := testConfig(t)
	cfg.Mutation.Rate = 1
	cfg.Telemetry.StatsWindow = 2
	parent := baseCell(25, 25, 1, components.SetDirection(1), components.Reproduce())

	var windows []telemetry.WindowStats
	g, err := NewGameWithOptions(Options{
		Seed:    1,
		Config:  cfg,
		Initial: []components.Cell{parent},
		StatsCallback: func(ws telemetry.WindowStats) {
			windows = append(windows, ws)
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer g.Unload()

	// Tick 2 ends the window and births a mutant of a new lineage
	g.Step()
	g.Step()

	if len(windows) != 1 {
		t.Fatalf("got %d windows, want 1", len(windows))
	}
	if g.World().Len() != 2 || g.World().Lineages() != 2 {
		t.Fatalf("world has %d cells in %d lineages, want 2 in 2", g.World().Len(), g.World().Lineages())
	}

	ws := windows[0]
	if ws.Births != 1 {
		t.Errorf("births = %d, want 1", ws.Births)
	}
	if ws.Population != 1 || ws.Lineages != 1 {
		t.Errorf("window population/lineages = %d/%d, want 1/1", ws.Population, ws.Lineages)
	}
	if parentEnergy := g.World().Cell(0).Energy; ws.EnergyMean != parentEnergy {
		t.Errorf("energy mean = %v, want parent's %v", ws.EnergyMean, parentEnergy)
	}
}
