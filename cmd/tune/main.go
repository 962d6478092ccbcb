// Hyper-parameter tuner - searches GA settings with CMA-ES.
//
// Usage: go run ./cmd/tune -output tune-out [-config base.yaml] [-seeds 3] [-max-evals 100]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/slalom/config"
)

// tuneRecord is one row of tune_log.csv.
type tuneRecord struct {
	Eval                 int     `csv:"eval"`
	Objective            float64 `csv:"objective"`
	GoalRate             float64 `csv:"goal_rate"`
	RemoveProportion     float64 `csv:"remove_proportion"`
	CrossoverProbability float64 `csv:"crossover_probability"`
	MutationProbability  float64 `csv:"mutation_probability"`
	TimePenalty          float64 `csv:"time_penalty"`
	ElapsedSec           float64 `csv:"elapsed_sec"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 100, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		slog.Error("-output is required")
		os.Exit(2)
	}
	if err := tune(*configPath, *outputDir, *seeds, *maxEvals, *population); err != nil {
		slog.Error("tuning failed", "error", err)
		os.Exit(1)
	}
}

func tune(configPath, outputDir string, seedCount, maxEvals, population int) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	baseCfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := baseCfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	params := NewParamVector()
	evalSeeds := make([]int64, seedCount)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	objective := NewObjective(params, evalSeeds, baseCfg)

	logPath := filepath.Join(outputDir, "tune_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("creating tune log: %w", err)
	}
	defer logFile.Close()

	dim := params.Dim()
	popSize := population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	evalCount := 0
	bestObjective := 1e9
	var bestParams []float64
	var evalErr error
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Clamp(params.Denormalize(x))
			value, err := objective.Evaluate(ctx, raw)
			evalCount++
			if err != nil {
				// Infinite objective steers CMA-ES away; the first error is kept
				if evalErr == nil {
					evalErr = err
				}
				return value
			}

			if value < bestObjective {
				bestObjective = value
				bestParams = raw
			}

			elapsed := time.Since(startTime)
			rec := tuneRecord{
				Eval:                 evalCount,
				Objective:            value,
				GoalRate:             objective.LastGoalRate(),
				RemoveProportion:     raw[0],
				CrossoverProbability: raw[1],
				MutationProbability:  raw[2],
				TimePenalty:          raw[3],
				ElapsedSec:           elapsed.Seconds(),
			}
			if evalCount == 1 {
				err = gocsv.Marshal([]tuneRecord{rec}, logFile)
			} else {
				err = gocsv.MarshalWithoutHeaders([]tuneRecord{rec}, logFile)
			}
			if err != nil {
				slog.Error("failed to write tune log", "error", err)
			}

			avgPerEval := elapsed / time.Duration(evalCount)
			remaining := time.Duration(maxEvals-evalCount) * avgPerEval
			slog.Info("evaluation",
				"eval", evalCount,
				"max_evals", maxEvals,
				"mean_score", -value,
				"goal_rate", rec.GoalRate,
				"best", -bestObjective,
				"elapsed", formatDuration(elapsed),
				"eta", formatDuration(remaining),
			)
			return value
		},
		Status: func() (optimize.Status, error) {
			if err := ctx.Err(); err != nil {
				return optimize.Failure, err
			}
			return optimize.NotTerminated, nil
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: maxEvals,
		Concurrent:      0, // Sequential; each evaluation already runs its seeds in parallel
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	slog.Info("starting CMA-ES",
		"params", dim,
		"population", popSize,
		"max_evals", maxEvals,
		"seeds", seedCount,
	)

	initX := params.Normalize(params.ExtractFromConfig(baseCfg))
	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		slog.Warn("optimization ended", "error", err)
	}
	if evalErr != nil && !errors.Is(evalErr, context.Canceled) {
		return evalErr
	}

	if bestParams == nil {
		if result == nil {
			return errors.New("no successful evaluation")
		}
		bestParams = params.Clamp(params.Denormalize(result.X))
	}

	attrs := []any{"evaluations", evalCount, "elapsed", formatDuration(time.Since(startTime)), "mean_score", -bestObjective}
	for i, spec := range params.Specs {
		attrs = append(attrs, spec.Name, bestParams[i])
	}
	slog.Info("tuning complete", attrs...)

	bestCfg := baseCfg.Clone()
	params.ApplyToConfig(bestCfg, bestParams)
	bestCfg.ComputeDerived()

	configOutPath := filepath.Join(outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		return err
	}
	slog.Info("wrote best config", "path", configOutPath)
	return nil
}
