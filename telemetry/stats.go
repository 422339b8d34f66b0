package telemetry

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/cells/components"
)

// Statistics holds point-in-time population averages of the tracked traits.
// It is rebuilt from scratch every tick: Reset, Add per surviving cell, Finalize.
// With zero population every average is NaN and consumers must treat that as
// "no data".
type Statistics struct {
	Population int

	sums     [components.NumTraits]float64
	averages [components.NumTraits]float64
}

// Reset zeroes the running sums.
func (s *Statistics) Reset() {
	*s = Statistics{}
}

// Add folds one cell's trait values into the running sums.
func (s *Statistics) Add(c *components.Cell) {
	for _, t := range components.TrackedTraits {
		s.sums[t] += c.Trait(t)
	}
	s.Population++
}

// Finalize divides the sums by the folded population.
func (s *Statistics) Finalize() {
	n := float64(s.Population)
	for _, t := range components.TrackedTraits {
		if s.Population == 0 {
			s.averages[t] = math.NaN()
			continue
		}
		s.averages[t] = s.sums[t] / n
	}
}

// Average returns the population average of a trait. NaN means no data.
func (s Statistics) Average(t components.Trait) float64 {
	if t >= components.NumTraits {
		return math.NaN()
	}
	return s.averages[t]
}

// Relative maps a cell's trait value onto the filter scale value/avg - 0.8,
// clamped to [0, 1]. ok is false when the average is missing or zero and the
// cell should keep its lineage color.
func (s Statistics) Relative(t components.Trait, v float64) (rel float64, ok bool) {
	avg := s.Average(t)
	if math.IsNaN(avg) || avg == 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	rel = v/avg - 0.8
	return math.Max(0, math.Min(1, rel)), true
}

// Valid reports whether the averages describe a non-empty population.
func (s Statistics) Valid() bool {
	return s.Population > 0
}

// LogValue implements slog.LogValuer for structured logging.
func (s Statistics) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(components.TrackedTraits)+1)
	attrs = append(attrs, slog.Int("population", s.Population))
	for _, t := range components.TrackedTraits {
		attrs = append(attrs, slog.Float64("avg_"+t.Name(), s.averages[t]))
	}
	return slog.GroupValue(attrs...)
}
