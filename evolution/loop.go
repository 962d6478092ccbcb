package evolution

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"

	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/slalom/config"
	"github.com/pthm-cable/slalom/genetic"
	"github.com/pthm-cable/slalom/obstacle"
	"github.com/pthm-cable/slalom/physics"
	"github.com/pthm-cable/slalom/telemetry"
)

// Options holds optional collaborators for a run.
type Options struct {
	Logger        *slog.Logger                    // nil = slog.Default()
	Output        *telemetry.OutputManager        // nil = no files written
	StatsCallback func(telemetry.GenerationStats) // called after every evaluated generation
}

// Loop owns the population, the random source and the run trace.
type Loop struct {
	cfg    *config.Config
	logger *slog.Logger
	rng    *rand.Rand

	field    *obstacle.Field
	engine   *physics.Engine
	fitness  *genetic.FitnessEvaluator
	selector *genetic.Selector
	workers  int

	pop        genetic.Population
	state      State
	generation int

	trace        []Record
	trajectories []telemetry.Trajectory
	degenerate   int

	// Telemetry
	collector     *telemetry.Collector
	perf          *telemetry.PerfCollector
	milestones    *telemetry.MilestoneDetector
	output        *telemetry.OutputManager
	statsCallback func(telemetry.GenerationStats)
}

// New validates cfg and prepares a run. The obstacle field and the initial
// population are drawn here, in that order, from a source seeded with
// simulation.random_seed.
func New(cfg *config.Config, opts Options) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Clone()
	cfg.ComputeDerived()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fe, err := genetic.NewFitnessEvaluator(cfg)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Simulation.RandomSeed))
	field := obstacle.Build(cfg.Obstacles.Count, cfg.Simulation.FrameCount, cfg.Obstacles.BlockHeight, rng)
	engine := physics.NewEngine(cfg, field)

	sel, err := genetic.NewSelector(cfg, engine)
	if err != nil {
		return nil, err
	}

	workers := cfg.Simulation.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Loop{
		cfg:           cfg,
		logger:        logger,
		rng:           rng,
		field:         field,
		engine:        engine,
		fitness:       fe,
		selector:      sel,
		workers:       workers,
		pop:           engine.SamplePopulation(cfg.Genetic.PopulationSize, rng),
		state:         Running,
		collector:     telemetry.NewCollector(cfg.Car.MaxDistance),
		perf:          telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		milestones:    telemetry.NewMilestoneDetector(cfg.Telemetry.StagnationWindows),
		output:        opts.Output,
		statsCallback: opts.StatsCallback,
	}, nil
}

// State returns the current lifecycle state.
func (l *Loop) State() State { return l.state }

// Generation returns the index of the generation evaluated next, or the last
// one evaluated once the loop has finished.
func (l *Loop) Generation() int { return l.generation }

// Population returns the current population. Callers must not modify it.
func (l *Loop) Population() genetic.Population { return l.pop }

// Config returns the validated run config.
func (l *Loop) Config() *config.Config { return l.cfg }

// Run steps the loop until it reaches the goal, exhausts the generation
// budget, or ctx is cancelled. The result covers every evaluated generation,
// including on cancellation.
func (l *Loop) Run(ctx context.Context) (*Result, error) {
	l.logger.Info("starting evolution",
		"seed", l.cfg.Simulation.RandomSeed,
		"population", l.cfg.Genetic.PopulationSize,
		"generations", l.cfg.Genetic.GenerationCount,
		"frames", l.cfg.Simulation.FrameCount,
		"selection", l.selector.Strategy.String(),
		"fitness", l.fitness.Mode.String(),
		"workers", l.workers,
	)

	for l.state == Running {
		if err := ctx.Err(); err != nil {
			l.logger.Info("evolution cancelled", "generation", l.generation)
			return l.Result(), err
		}
		if err := l.Step(ctx); err != nil {
			return l.Result(), err
		}
	}

	res := l.Result()
	l.logger.Info("evolution finished",
		"state", res.Summary.FinalState.String(),
		"generations_run", res.Summary.GenerationsRun,
		"reached_goal", res.Summary.ReachedGoal,
		"degenerate_generations", l.degenerate,
	)
	return res, nil
}

// Step evaluates one generation and, unless the run ends with it, breeds the
// next population.
func (l *Loop) Step(ctx context.Context) error {
	if l.state != Running {
		return ErrFinished
	}
	g := l.generation

	l.perf.StartGeneration()
	l.perf.StartPhase(telemetry.PhaseSimulate)
	positions, results, err := l.evaluate(ctx)
	if err != nil {
		l.perf.AbortGeneration()
		return fmt.Errorf("evaluating generation %d: %w", g, err)
	}

	l.perf.StartPhase(telemetry.PhaseFitness)
	fitness := l.fitness.Score(results)
	probs, err := genetic.Probabilities(fitness)
	if err != nil {
		// Uniform fallback; the generation still breeds
		l.degenerate++
		l.collector.RecordDegenerate()
		l.logger.Warn("degenerate population", "generation", g, "error", err)
	}
	for _, r := range results {
		l.collector.RecordResult(r.Distance, r.Collided)
	}

	best := floats.MaxIdx(fitness)
	br := results[best]
	l.trace = append(l.trace, Record{
		Generation:   g,
		BestDistance: br.Distance,
		BestTime:     br.TimeIndex,
		BestFitness:  fitness[best],
	})
	l.trajectories = append(l.trajectories, telemetry.Trajectory{
		Generation: g,
		Positions:  positions[best],
		StopFrame:  br.TimeIndex,
		Distance:   br.Distance,
		Collided:   br.Collided,
		Outcome:    br.Outcome.String(),
		Fitness:    fitness[best],
	})

	switch {
	case br.Distance > l.cfg.Car.MaxDistance:
		l.state = GoalReached
	case g == l.cfg.Genetic.GenerationCount-1:
		l.state = Exhausted
	default:
		l.breed(genetic.Scores{Results: results, Fitness: fitness, Probabilities: probs})
		l.generation++
	}
	l.perf.EndGeneration()

	l.flushTelemetry(g, telemetry.Best{
		Distance: br.Distance,
		Time:     br.TimeIndex,
		Collided: br.Collided,
		Fitness:  fitness[best],
	}, fitness)
	return nil
}

// evaluate simulates every genome in parallel. Each worker writes only its
// own index, so results keep population order.
func (l *Loop) evaluate(ctx context.Context) ([][]float64, []physics.Result, error) {
	n := len(l.pop)
	positions := make([][]float64, n)
	results := make([]physics.Result, n)

	p := pool.New().WithMaxGoroutines(l.workers).WithContext(ctx)
	for i, genome := range l.pop {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			positions[i], results[i] = l.engine.Simulate(genome)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, nil, err
	}
	return positions, results, nil
}

// breed replaces the population with its selected, crossed and mutated successor.
// Random draws happen in that order.
func (l *Loop) breed(sc genetic.Scores) {
	l.perf.StartPhase(telemetry.PhaseSelect)
	next := l.selector.Select(l.pop, sc, l.rng)

	l.perf.StartPhase(telemetry.PhaseCrossover)
	swaps := genetic.Crossover(next, l.cfg.Genetic.CrossoverProbability, l.rng)
	exchanged := 0
	for _, s := range swaps {
		if !s.Empty() {
			exchanged++
		}
	}
	l.collector.RecordSwaps(exchanged)

	l.perf.StartPhase(telemetry.PhaseMutate)
	l.collector.RecordMutations(genetic.Mutate(next, l.cfg.Genetic.MutationProbability, l.engine, l.rng))

	l.pop = next
}
