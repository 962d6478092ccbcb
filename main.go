package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pthm-cable/slalom/config"
	"github.com/pthm-cable/slalom/evolution"
	"github.com/pthm-cable/slalom/report"
	"github.com/pthm-cable/slalom/telemetry"
	"github.com/pthm-cable/slalom/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config snapshot, replays and plot")
	workers := flag.Int("workers", -1, "Parallel genome evaluators (-1 = use config, 0 = GOMAXPROCS)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logText := flag.Bool("log-text", false, "Log as text instead of JSON")
	animate := flag.Bool("animate", false, "Animate the best genome of selected generations after the run")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(*logLevel))); err != nil {
		slog.Error("invalid log level", "level", *logLevel, "error", err)
		os.Exit(2)
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, handlerOpts)
	if *logText {
		handler = slog.NewTextHandler(os.Stdout, handlerOpts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *seed != 0 {
		cfg.Simulation.RandomSeed = *seed
	}
	if *workers >= 0 {
		cfg.Simulation.Workers = *workers
	}

	om, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, om, *animate); err != nil {
		slog.Error("run failed", "error", err)
		om.Close()
		os.Exit(1)
	}
	if err := om.Close(); err != nil {
		slog.Error("failed to close output files", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, om *telemetry.OutputManager, animate bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var meanFitness []float64
	loop, err := evolution.New(cfg, evolution.Options{
		Logger: slog.Default(),
		Output: om,
		StatsCallback: func(s telemetry.GenerationStats) {
			meanFitness = append(meanFitness, s.FitnessMean)
		},
	})
	if err != nil {
		return err
	}

	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	res, err := loop.Run(ctx)
	if errors.Is(err, context.Canceled) {
		slog.Warn("run interrupted", "generations_run", res.Summary.GenerationsRun)
	} else if err != nil {
		return err
	}

	if om != nil {
		if err := om.WriteReplays(res.ReplayFile()); err != nil {
			slog.Error("failed to write replays", "error", err)
		}
		plotPath := om.Path(report.BestFitnessFileName)
		if err := report.PlotBestFitness(plotPath, res.BestFitness(), meanFitness); err != nil {
			slog.Error("failed to plot best fitness", "error", err)
		} else {
			slog.Info("wrote plot", "path", plotPath)
		}
	}

	if !animate || ctx.Err() != nil {
		return nil
	}

	var replays []telemetry.Replay
	for _, g := range res.AnimationGenerations(cfg.Viewer.AnimateEvery) {
		rp, err := res.Replay(g)
		if err != nil {
			return err
		}
		replays = append(replays, rp)
	}
	if len(replays) == 0 {
		slog.Info("nothing to animate: every best genome stopped at frame 0")
		return nil
	}
	return viewer.Run(replays, cfg.Viewer)
}
