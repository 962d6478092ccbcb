package telemetry

import (
	"fmt"
	"log/slog"
)

// MilestoneType identifies the type of milestone.
type MilestoneType string

const (
	MilestoneNewBestDistance      MilestoneType = "new_best_distance"
	MilestoneFirstGoal            MilestoneType = "first_goal"
	MilestoneStagnation           MilestoneType = "stagnation"
	MilestoneDegeneratePopulation MilestoneType = "degenerate_population"
)

// Milestone marks a notable generation in a run.
type Milestone struct {
	Type        MilestoneType `csv:"type"`
	Generation  int           `csv:"generation"`
	Description string        `csv:"description"`
}

// LogValue implements slog.LogValuer for structured logging.
func (m Milestone) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", string(m.Type)),
		slog.Int("generation", m.Generation),
		slog.String("description", m.Description),
	)
}

// MilestoneDetector watches per-generation stats for notable changes.
type MilestoneDetector struct {
	stagnationWindow int

	seen         bool
	bestDistance float64
	bestFitness  float64
	goalSeen     bool
	stagnant     int // generations since the best fitness last improved
}

// NewMilestoneDetector creates a detector that reports stagnation after
// stagnationWindow generations without a fitness improvement.
func NewMilestoneDetector(stagnationWindow int) *MilestoneDetector {
	if stagnationWindow < 1 {
		stagnationWindow = 5
	}
	return &MilestoneDetector{stagnationWindow: stagnationWindow}
}

// Check analyzes the latest stats and returns any triggered milestones.
func (md *MilestoneDetector) Check(stats GenerationStats) []Milestone {
	var milestones []Milestone

	if stats.Degenerate {
		milestones = append(milestones, Milestone{
			Type:        MilestoneDegeneratePopulation,
			Generation:  stats.Generation,
			Description: "every genome scored zero fitness",
		})
	}

	if stats.ReachedGoal > 0 && !md.goalSeen {
		md.goalSeen = true
		milestones = append(milestones, Milestone{
			Type:        MilestoneFirstGoal,
			Generation:  stats.Generation,
			Description: fmt.Sprintf("%d genome(s) crossed the goal at frame %d", stats.ReachedGoal, stats.BestTime),
		})
	}

	if !md.seen {
		md.seen = true
		md.bestDistance = stats.BestDistance
		md.bestFitness = stats.BestFitness
		return milestones
	}

	if stats.BestDistance > md.bestDistance {
		milestones = append(milestones, Milestone{
			Type:        MilestoneNewBestDistance,
			Generation:  stats.Generation,
			Description: fmt.Sprintf("best distance %.3f improved on %.3f", stats.BestDistance, md.bestDistance),
		})
		md.bestDistance = stats.BestDistance
	}

	if stats.BestFitness > md.bestFitness {
		md.bestFitness = stats.BestFitness
		md.stagnant = 0
	} else {
		md.stagnant++
		if md.stagnant == md.stagnationWindow {
			md.stagnant = 0
			milestones = append(milestones, Milestone{
				Type:        MilestoneStagnation,
				Generation:  stats.Generation,
				Description: fmt.Sprintf("best fitness stuck at %.4f for %d generations", md.bestFitness, md.stagnationWindow),
			})
		}
	}

	return milestones
}
