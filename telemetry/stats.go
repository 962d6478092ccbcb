package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// GenerationStats holds aggregated statistics for one evaluated generation.
type GenerationStats struct {
	Generation int `csv:"generation"`

	// Best genome (first maximum of fitness)
	BestDistance float64 `csv:"best_distance"`
	BestTime     int     `csv:"best_time"`
	BestFitness  float64 `csv:"best_fitness"`
	BestCollided bool    `csv:"best_collided"`

	// Fitness distribution across the population
	FitnessMean float64 `csv:"fitness_mean"`
	FitnessStd  float64 `csv:"fitness_std"`
	FitnessP10  float64 `csv:"fitness_p10"`
	FitnessP50  float64 `csv:"fitness_p50"`
	FitnessP90  float64 `csv:"fitness_p90"`

	// Outcome counts
	Collided    int `csv:"collided"`
	ReachedGoal int `csv:"reached_goal"`

	// Operators applied after evaluation (zero on the final generation)
	Swaps     int `csv:"swaps"`
	Mutations int `csv:"mutations"`

	Degenerate bool `csv:"degenerate"` // every genome scored zero
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeFitnessStats calculates population mean, std, and percentiles.
func ComputeFitnessStats(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = stat.PopMeanStdDev(values, nil)

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Float64("best_distance", s.BestDistance),
		slog.Int("best_time", s.BestTime),
		slog.Float64("best_fitness", s.BestFitness),
		slog.Bool("best_collided", s.BestCollided),
		slog.Float64("fitness_mean", s.FitnessMean),
		slog.Float64("fitness_std", s.FitnessStd),
		slog.Float64("fitness_p50", s.FitnessP50),
		slog.Int("collided", s.Collided),
		slog.Int("reached_goal", s.ReachedGoal),
		slog.Int("swaps", s.Swaps),
		slog.Int("mutations", s.Mutations),
		slog.Bool("degenerate", s.Degenerate),
	)
}
