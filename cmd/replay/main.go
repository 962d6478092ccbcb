// Replay viewer - animates a saved replay.json.
//
// Usage: go run ./cmd/replay -replay out/replay.json [-generation N]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/pthm-cable/slalom/config"
	"github.com/pthm-cable/slalom/telemetry"
	"github.com/pthm-cable/slalom/viewer"
)

func main() {
	replayPath := flag.String("replay", "replay.json", "Path to a replay.json written by a run")
	configPath := flag.String("config", "", "Path to config.yaml for viewer settings (empty = use defaults)")
	generation := flag.Int("generation", -1, "Only show this generation (-1 = all)")
	flag.Parse()

	if err := run(*replayPath, *configPath, *generation); err != nil {
		slog.Error("replay failed", "error", err)
		os.Exit(1)
	}
}

func run(replayPath, configPath string, generation int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	rf, err := telemetry.LoadReplayFile(replayPath)
	if err != nil {
		return err
	}
	slog.Info("loaded replay",
		"path", replayPath,
		"seed", rf.Seed,
		"generations", len(rf.Trajectories),
	)

	replays := rf.Replays()
	if generation >= 0 {
		if generation >= len(replays) {
			return fmt.Errorf("generation %d not in replay (have %d)", generation, len(replays))
		}
		replays = replays[generation : generation+1]
	}
	return viewer.Run(replays, cfg.Viewer)
}
