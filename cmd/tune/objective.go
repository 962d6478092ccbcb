package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/slalom/config"
	"github.com/pthm-cable/slalom/evolution"
)

// Objective runs full evolutions and scores a parameter vector.
type Objective struct {
	params     *ParamVector
	seeds      []int64
	baseConfig *config.Config
	logger     *slog.Logger

	mu       sync.Mutex
	lastGoal float64 // share of seeds that reached the goal in the latest evaluation
}

// NewObjective creates an objective averaging over seeds.
func NewObjective(params *ParamVector, seeds []int64, baseCfg *config.Config) *Objective {
	return &Objective{
		params:     params,
		seeds:      seeds,
		baseConfig: baseCfg,
		logger:     slog.New(slog.DiscardHandler),
	}
}

// LastGoalRate returns the share of seeds that reached the goal in the most
// recent evaluation.
func (o *Objective) LastGoalRate() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastGoal
}

// seedResult holds the outcome of one seed.
type seedResult struct {
	score       float64
	reachedGoal bool
}

// RunScore rates a generation's best genome on a fixed scale that does not
// depend on any tuned parameter: normalized distance in [0, 1] below the goal,
// and 1 plus the unused share of frames once the goal is crossed, so earlier
// arrivals score higher.
func RunScore(rec evolution.Record, maxDistance float64, frames int) float64 {
	if rec.BestDistance > maxDistance {
		return 2 - float64(rec.BestTime)/float64(frames)
	}
	return max(0, rec.BestDistance/maxDistance)
}

// Evaluate returns the negated mean over seeds of the best RunScore reached in
// each run (lower is better). A config the loop rejects scores +Inf.
func (o *Objective) Evaluate(ctx context.Context, raw []float64) (float64, error) {
	results := make([]seedResult, len(o.seeds))

	p := pool.New().WithContext(ctx)
	for i, seed := range o.seeds {
		p.Go(func(ctx context.Context) error {
			r, err := o.runSeed(ctx, raw, seed)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return math.Inf(1), err
	}

	best := make([]float64, len(results))
	goals := 0
	for i, r := range results {
		best[i] = r.score
		if r.reachedGoal {
			goals++
		}
	}

	o.mu.Lock()
	o.lastGoal = float64(goals) / float64(len(results))
	o.mu.Unlock()

	return -floats.Sum(best) / float64(len(best)), nil
}

// runSeed runs one evolution. Each run evaluates genomes serially; the seeds
// themselves run in parallel.
func (o *Objective) runSeed(ctx context.Context, raw []float64, seed int64) (seedResult, error) {
	cfg := o.baseConfig.Clone()
	o.params.ApplyToConfig(cfg, raw)
	cfg.Simulation.RandomSeed = seed
	cfg.Simulation.Workers = 1
	cfg.ComputeDerived()

	loop, err := evolution.New(cfg, evolution.Options{Logger: o.logger})
	if err != nil {
		return seedResult{}, err
	}
	res, err := loop.Run(ctx)
	if err != nil {
		return seedResult{}, err
	}

	if len(res.Trace) == 0 {
		return seedResult{}, nil
	}
	scores := make([]float64, len(res.Trace))
	for i, rec := range res.Trace {
		scores[i] = RunScore(rec, cfg.Car.MaxDistance, cfg.Simulation.FrameCount)
	}
	return seedResult{
		score:       floats.Max(scores),
		reachedGoal: res.Summary.ReachedGoal,
	}, nil
}
