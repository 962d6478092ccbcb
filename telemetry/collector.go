// Package telemetry provides per-generation statistics, milestones, timing and
// run output for the evolution loop.
package telemetry

// Best describes the best genome of a generation.
type Best struct {
	Distance float64
	Time     int
	Collided bool
	Fitness  float64
}

// Collector accumulates counts within one generation and produces GenerationStats.
type Collector struct {
	maxDistance float64

	// Counters for the current generation
	collided    int
	reachedGoal int
	swaps       int
	mutations   int
	degenerate  bool
}

// NewCollector creates a collector; distances beyond maxDistance count as goals.
func NewCollector(maxDistance float64) *Collector {
	return &Collector{maxDistance: maxDistance}
}

// RecordResult records one genome's simulation outcome.
func (c *Collector) RecordResult(distance float64, collided bool) {
	if collided {
		c.collided++
	} else if distance > c.maxDistance {
		c.reachedGoal++
	}
}

// RecordSwaps records the crossover pairs that exchanged at least one gene.
func (c *Collector) RecordSwaps(n int) {
	c.swaps += n
}

// RecordMutations records mutation writes.
func (c *Collector) RecordMutations(n int) {
	c.mutations += n
}

// RecordDegenerate marks the generation as having zero total fitness.
func (c *Collector) RecordDegenerate() {
	c.degenerate = true
}

// Flush produces the generation's stats and resets counters for the next one.
func (c *Collector) Flush(generation int, best Best, fitness []float64) GenerationStats {
	mean, std, p10, p50, p90 := ComputeFitnessStats(fitness)

	stats := GenerationStats{
		Generation: generation,

		BestDistance: best.Distance,
		BestTime:     best.Time,
		BestFitness:  best.Fitness,
		BestCollided: best.Collided,

		FitnessMean: mean,
		FitnessStd:  std,
		FitnessP10:  p10,
		FitnessP50:  p50,
		FitnessP90:  p90,

		Collided:    c.collided,
		ReachedGoal: c.reachedGoal,
		Swaps:       c.swaps,
		Mutations:   c.mutations,
		Degenerate:  c.degenerate,
	}

	c.collided = 0
	c.reachedGoal = 0
	c.swaps = 0
	c.mutations = 0
	c.degenerate = false

	return stats
}
