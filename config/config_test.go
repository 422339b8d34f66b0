package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	if cfg.World.Width != 40 || cfg.World.Height != 40 {
		t.Errorf("expected 40x40 world, got %dx%d", cfg.World.Width, cfg.World.Height)
	}
	if cfg.Mutation.Rate != 0.01 {
		t.Errorf("expected mutation rate 0.01, got %v", cfg.Mutation.Rate)
	}
	if len(cfg.Founder.Genome) != 2 {
		t.Fatalf("expected 2 founder instructions, got %d", len(cfg.Founder.Genome))
	}
	if cfg.Derived.Baseline.MaxEnergy != cfg.Founder.MaxEnergy {
		t.Errorf("baseline max energy %v != founder %v", cfg.Derived.Baseline.MaxEnergy, cfg.Founder.MaxEnergy)
	}
	if cfg.Derived.GridArea != 1600 {
		t.Errorf("expected grid area 1600, got %d", cfg.Derived.GridArea)
	}
}

func TestLoadOverridesOnlyPresentFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	data := "world:\n  width: 50\n  height: 50\n  nutrient_level: 1.2\n  speed: 4\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.World.Width != 50 || cfg.World.Speed != 4 {
		t.Errorf("override not applied: %+v", cfg.World)
	}
	if cfg.Founder.MaxAge != 100 {
		t.Errorf("founder defaults lost, max_age = %d", cfg.Founder.MaxAge)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"zero width", "world:\n  width: 0\n", "world size"},
		{"founder outside", "founder:\n  x: 99\n", "founder position"},
		{"bad op", "founder:\n  genome:\n    - op: fly\n", "unknown op"},
		{"empty genome", "founder:\n  genome: []\n", "must not be empty"},
		{"rate above one", "mutation:\n  rate: 1.5\n", "mutation.rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.World.NutrientLevel = 7.5

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("reloading written config: %v", err)
	}
	if loaded.World.NutrientLevel != 7.5 {
		t.Errorf("nutrient level = %v, want 7.5", loaded.World.NutrientLevel)
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("expected panic from Cfg() before Init()")
		}
	}()
	Cfg()
}
