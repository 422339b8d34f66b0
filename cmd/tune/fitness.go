package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/cells/config"
	"github.com/pthm-cable/cells/game"
	"github.com/pthm-cable/cells/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []int64
	baseConfig *config.Config

	// Population the tuned world should settle around
	targetPop float64

	mu          sync.Mutex
	lastQuality float64
}

// NewFitnessEvaluator creates a new evaluator. A non-positive targetPop
// defaults to a quarter of the grid.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, targetPop float64) *FitnessEvaluator {
	if targetPop <= 0 {
		targetPop = float64(baseCfg.World.Width*baseCfg.World.Height) / 4
	}
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
		targetPop:  targetPop,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int32                   // ticks before extinction (or maxTicks if survived)
	windowStats   []telemetry.WindowStats // collected via StatsCallback each window
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
	err     error
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// Seeds run in parallel, each on its own Game.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result, err := fe.runSimulation(x, s)
			if err != nil {
				results[idx] = seedResult{err: err}
				return
			}
			quality := fe.computeQuality(result.windowStats)
			results[idx] = seedResult{
				fitness: fe.computeFitness(result.survivalTicks, quality),
				quality: quality,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		if r.err != nil {
			// Unbuildable configs score as immediate extinction
			continue
		}
		totalFitness += r.fitness
		totalQuality += r.quality
	}

	n := float64(len(fe.seeds))
	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless run until extinction or maxTicks.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) (*runResult, error) {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	cfg.World.Speed = 1

	result := &runResult{}
	g, err := game.NewGameWithOptions(game.Options{
		Seed:   seed,
		Config: cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		return nil, err
	}
	defer g.Unload()

	for g.Tick() < fe.maxTicks {
		g.Step()
		if g.Population() == 0 {
			result.survivalTicks = g.Tick()
			return result, nil
		}
	}

	result.survivalTicks = fe.maxTicks
	return result, nil
}

// copyConfig creates a deep copy of the base config.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Founder.Genome = append([]config.InstructionConfig(nil), fe.baseConfig.Founder.Genome...)
	return &cfg
}

// computeFitness calculates the scalar fitness (lower = better) as the
// negated survival fraction with up to a 50% bonus for quality.
func (fe *FitnessEvaluator) computeFitness(survivalTicks int32, quality float64) float64 {
	survival := float64(survivalTicks) / float64(fe.maxTicks)
	return -(survival * (1.0 + 0.5*quality))
}

// Quality component weights.
const (
	qualityWeightTarget    = 0.5
	qualityWeightStability = 0.3
	qualityWeightDiversity = 0.2

	qualityWarmupWindows = 2 // skip first N windows while the founder spreads
)

// computeQuality scores the post-warmup windows in [0, 1]: closeness of the
// population to the target, stability of the population, and how many
// lineages coexist.
func (fe *FitnessEvaluator) computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	pops := make([]float64, 0, len(valid))
	var targetSum, diversitySum float64
	for _, w := range valid {
		if w.Population == 0 {
			continue
		}
		p := float64(w.Population)
		pops = append(pops, p)

		logErr := math.Log(p / fe.targetPop)
		targetSum += math.Exp(-logErr * logErr)
		diversitySum += 1 - 1/float64(max(w.Lineages, 1))
	}
	if len(pops) == 0 {
		return 0
	}
	n := float64(len(pops))

	stability := 0.0
	if len(pops) >= 2 {
		mean, std := stat.MeanStdDev(pops, nil)
		cv := std / mean
		stability = math.Exp(-cv * cv)
	}

	quality := qualityWeightTarget*targetSum/n +
		qualityWeightStability*stability +
		qualityWeightDiversity*diversitySum/n

	return min(max(quality, 0), 1)
}
