package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/cells/components"
)

// WindowStats holds aggregated statistics for a window of ticks.
// Population, Lineages, trait averages and the energy distribution all
// describe the cells that survived the window's last tick; offspring born in
// that tick are counted in Births only.
type WindowStats struct {
	WindowStartTick int32 `csv:"-"`
	WindowEndTick   int32 `csv:"window_end"`

	// Survivors of the last tick
	Population int `csv:"population"`
	Lineages   int `csv:"lineages"`

	// Events during window
	Births        int `csv:"births"`
	Mutations     int `csv:"mutations"`
	DeathsAge     int `csv:"deaths_age"`
	DeathsStarved int `csv:"deaths_starved"`
	Attacks       int `csv:"attacks"`
	AttackHits    int `csv:"attack_hits"`

	// Trait averages at window end (NaN when extinct)
	AvgMaxAge         float64 `csv:"avg_max_age"`
	AvgMinEnergy      float64 `csv:"avg_min_energy"`
	AvgMaxEnergy      float64 `csv:"avg_max_energy"`
	AvgReproThreshold float64 `csv:"avg_repro_threshold"`
	AvgDamage         float64 `csv:"avg_damage"`
	AvgResistance     float64 `csv:"avg_resistance"`

	// Energy distribution (sampled at window end)
	EnergyMean float64 `csv:"energy_mean"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`
}

// ComputeEnergyStats calculates mean and empirical percentiles from energy values.
// Returns zeros for an empty slice.
func ComputeEnergyStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, p10, p50, p90
}

// setAverages copies the tick statistics into the window record.
func (s *WindowStats) setAverages(st *Statistics) {
	s.AvgMaxAge = st.Average(components.TraitMaxAge)
	s.AvgMinEnergy = st.Average(components.TraitMinEnergy)
	s.AvgMaxEnergy = st.Average(components.TraitMaxEnergy)
	s.AvgReproThreshold = st.Average(components.TraitReproThreshold)
	s.AvgDamage = st.Average(components.TraitDamage)
	s.AvgResistance = st.Average(components.TraitResistance)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Int("population", s.Population),
		slog.Int("lineages", s.Lineages),
		slog.Int("births", s.Births),
		slog.Int("mutations", s.Mutations),
		slog.Int("deaths_age", s.DeathsAge),
		slog.Int("deaths_starved", s.DeathsStarved),
		slog.Int("attacks", s.Attacks),
		slog.Int("attack_hits", s.AttackHits),
		slog.Float64("avg_max_age", s.AvgMaxAge),
		slog.Float64("avg_min_energy", s.AvgMinEnergy),
		slog.Float64("avg_max_energy", s.AvgMaxEnergy),
		slog.Float64("avg_repro_threshold", s.AvgReproThreshold),
		slog.Float64("avg_damage", s.AvgDamage),
		slog.Float64("avg_resistance", s.AvgResistance),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_p50", s.EnergyP50),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
