// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Founder   FounderConfig   `yaml:"founder"`
	Mutation  MutationConfig  `yaml:"mutation"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	View      ViewConfig      `yaml:"view"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds grid dimensions and the externally adjustable tunables.
type WorldConfig struct {
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	NutrientLevel float64 `yaml:"nutrient_level"` // Energy income at the y=0 edge
	Speed         int     `yaml:"speed"`          // Ticks simulated per rendered frame
}

// InstructionConfig is the YAML form of a single genome instruction.
type InstructionConfig struct {
	Op    string `yaml:"op"`              // "turn", "reproduce" or "attack"
	Delta int    `yaml:"delta,omitempty"` // rotation for "turn"
}

// FounderConfig describes the initial cell and doubles as the baseline
// lineage for upkeep calculations.
type FounderConfig struct {
	X                    int                 `yaml:"x"`
	Y                    int                 `yaml:"y"`
	Direction            int                 `yaml:"direction"`
	Genome               []InstructionConfig `yaml:"genome"`
	MaxAge               int                 `yaml:"max_age"`
	Energy               float64             `yaml:"energy"`
	MinEnergy            float64             `yaml:"min_energy"`
	MaxEnergy            float64             `yaml:"max_energy"`
	MinEnergyToReproduce float64             `yaml:"min_energy_to_reproduce"`
	Damage               float64             `yaml:"damage"`
	Resistance           float64             `yaml:"resistance"`
	Color                [3]float32          `yaml:"color"`
}

// MutationConfig holds offspring mutation parameters.
type MutationConfig struct {
	Rate       float64 `yaml:"rate"`        // Probability that an offspring mutates at all
	MaxGenome  int     `yaml:"max_genome"`  // Genomes longer than this die instead of growing
	ColorStep  float32 `yaml:"color_step"`  // Per-channel color walk
	AgeStep    int     `yaml:"age_step"`    // Max-age perturbation (integer)
	TraitStep  float64 `yaml:"trait_step"`  // Energy threshold / combat perturbation
	DeltaRange int     `yaml:"delta_range"` // Rotation range for newly inserted turn instructions
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // Ticks per telemetry window
}

// ViewConfig holds renderer defaults.
type ViewConfig struct {
	Filter string `yaml:"filter"` // Trait name, or "lineage"
}

// Baseline holds the founder lineage thresholds used by the upkeep formula.
type Baseline struct {
	MinEnergy float64
	MaxEnergy float64
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Baseline Baseline
	GridArea int
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate reports the first configuration value the simulation cannot run with.
func (c *Config) Validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("world size %dx%d must be positive", c.World.Width, c.World.Height)
	}
	if c.World.Speed < 1 {
		return errors.New("world.speed must be at least 1")
	}
	f := c.Founder
	if f.X < 0 || f.X >= c.World.Width || f.Y < 0 || f.Y >= c.World.Height {
		return fmt.Errorf("founder position (%d,%d) outside %dx%d grid", f.X, f.Y, c.World.Width, c.World.Height)
	}
	if len(f.Genome) == 0 {
		return errors.New("founder.genome must not be empty")
	}
	for i, inst := range f.Genome {
		switch inst.Op {
		case "turn", "reproduce", "attack":
		default:
			return fmt.Errorf("founder.genome[%d]: unknown op %q", i, inst.Op)
		}
	}
	if f.MinEnergy == 0 || f.MaxEnergy == 0 {
		return errors.New("founder min_energy and max_energy must be non-zero")
	}
	if c.Mutation.Rate < 0 || c.Mutation.Rate > 1 {
		return fmt.Errorf("mutation.rate %v outside [0,1]", c.Mutation.Rate)
	}
	if c.Mutation.MaxGenome < 1 {
		return errors.New("mutation.max_genome must be at least 1")
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Baseline = Baseline{
		MinEnergy: c.Founder.MinEnergy,
		MaxEnergy: c.Founder.MaxEnergy,
	}
	c.Derived.GridArea = c.World.Width * c.World.Height

	if c.Telemetry.StatsWindow < 1 {
		c.Telemetry.StatsWindow = 1
	}
	if c.View.Filter == "" {
		c.View.Filter = "lineage"
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
