// Package evolution runs the generational loop: simulate, score, record the
// best genome, then select, cross over and mutate until the goal is reached or
// the generation budget runs out.
package evolution

import "errors"

// ErrFinished is returned by Step once the loop has left the Running state.
var ErrFinished = errors.New("evolution loop finished")

// ErrNoGeneration is returned when asking for a generation that was never evaluated.
var ErrNoGeneration = errors.New("generation not evaluated")

// State is the loop's lifecycle state.
type State uint8

const (
	Running     State = iota // more generations to evaluate
	GoalReached              // the best genome crossed the goal line
	Exhausted                // generation budget used without reaching the goal
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case GoalReached:
		return "goal_reached"
	case Exhausted:
		return "exhausted"
	}
	return "unknown"
}

// Record is one row of the run trace: the best genome of a generation.
type Record struct {
	Generation   int     `json:"generation"`
	BestDistance float64 `json:"best_distance"`
	BestTime     int     `json:"best_time"`
	BestFitness  float64 `json:"best_fitness"`
}

// Summary reports how a run ended.
type Summary struct {
	GenerationsRun int
	ReachedGoal    bool
	FinalState     State
}
