package evolution

import (
	"fmt"

	"github.com/pthm-cable/slalom/telemetry"
)

// Result is the outcome of a run: the trace, how it ended, and the best
// trajectory of every evaluated generation for replay.
type Result struct {
	Trace   []Record
	Summary Summary

	Seed         int64
	Scene        telemetry.Scene
	Trajectories []telemetry.Trajectory // indexed by generation
}

// Result snapshots the loop's progress so far.
func (l *Loop) Result() *Result {
	return &Result{
		Trace: append([]Record(nil), l.trace...),
		Summary: Summary{
			GenerationsRun: len(l.trace),
			ReachedGoal:    l.state == GoalReached,
			FinalState:     l.state,
		},
		Seed: l.cfg.Simulation.RandomSeed,
		Scene: telemetry.Scene{
			Obstacles:   l.field.Curves(),
			BlockWidth:  l.cfg.Obstacles.BlockWidth,
			BlockHeight: l.cfg.Obstacles.BlockHeight,
			CarRadius:   l.cfg.Derived.CarRadius,
			AxisOffset:  l.cfg.Obstacles.AxisOffset,
			MaxDistance: l.cfg.Car.MaxDistance,
		},
		Trajectories: append([]telemetry.Trajectory(nil), l.trajectories...),
	}
}

// Replay returns what a renderer needs to animate the best genome of a generation.
func (r *Result) Replay(generation int) (telemetry.Replay, error) {
	if generation < 0 || generation >= len(r.Trajectories) {
		return telemetry.Replay{}, fmt.Errorf("replay of generation %d (have %d): %w",
			generation, len(r.Trajectories), ErrNoGeneration)
	}
	return telemetry.Replay{Scene: r.Scene, Trajectory: r.Trajectories[generation]}, nil
}

// ReplayFile packages every generation's replay for saving.
func (r *Result) ReplayFile() *telemetry.ReplayFile {
	return &telemetry.ReplayFile{
		Version:      telemetry.ReplayVersion,
		Seed:         r.Seed,
		Scene:        r.Scene,
		Trajectories: r.Trajectories,
	}
}

// BestFitness returns the best fitness of every generation in order.
func (r *Result) BestFitness() []float64 {
	out := make([]float64, len(r.Trace))
	for i, rec := range r.Trace {
		out[i] = rec.BestFitness
	}
	return out
}

// AnimationGenerations lists the generations worth animating: every n-th one
// and the last, skipping those whose best genome stopped at frame 0.
// n < 1 selects only the last.
func (r *Result) AnimationGenerations(n int) []int {
	last := len(r.Trajectories) - 1
	var gens []int
	for g, tr := range r.Trajectories {
		if tr.StopFrame == 0 {
			continue
		}
		if g == last || (n >= 1 && g%n == 0) {
			gens = append(gens, g)
		}
	}
	return gens
}
