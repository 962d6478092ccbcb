package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
)

// ReplayVersion is incremented when the replay file format changes.
const ReplayVersion = 1

// Scene is the static part of a run: the obstacle curves and the geometry
// needed to draw them.
type Scene struct {
	Obstacles   [][]float64 `json:"obstacles"` // [obstacle][frame] vertical offset
	BlockWidth  float64     `json:"block_width"`
	BlockHeight float64     `json:"block_height"`
	CarRadius   float64     `json:"car_radius"`
	AxisOffset  float64     `json:"axis_offset"`
	MaxDistance float64     `json:"max_distance"`
}

// Trajectory is the best genome of one generation.
type Trajectory struct {
	Generation int       `json:"generation"`
	Positions  []float64 `json:"positions"`  // x position per frame
	StopFrame  int       `json:"stop_frame"` // frame at which the run was judged
	Distance   float64   `json:"distance"`
	Collided   bool      `json:"collided"`
	Outcome    string    `json:"outcome"`
	Fitness    float64   `json:"fitness"`
}

// Replay is everything a renderer needs to animate one generation.
type Replay struct {
	Scene
	Trajectory
}

// ReplayFile holds the best trajectory of every generation of a run.
type ReplayFile struct {
	Version      int          `json:"version"`
	Seed         int64        `json:"seed"`
	Scene        Scene        `json:"scene"`
	Trajectories []Trajectory `json:"trajectories"`
}

// Replays expands the file into one Replay per generation.
// The scene is shared, not copied.
func (rf *ReplayFile) Replays() []Replay {
	out := make([]Replay, len(rf.Trajectories))
	for i, tr := range rf.Trajectories {
		out[i] = Replay{Scene: rf.Scene, Trajectory: tr}
	}
	return out
}

// SaveReplayFile writes a replay file to disk.
func SaveReplayFile(rf *ReplayFile, path string) error {
	data, err := json.MarshalIndent(rf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal replay: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write replay: %w", err)
	}

	return nil
}

// LoadReplayFile reads a replay file from disk.
func LoadReplayFile(path string) (*ReplayFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read replay: %w", err)
	}

	var rf ReplayFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("unmarshal replay: %w", err)
	}
	if rf.Version != ReplayVersion {
		return nil, fmt.Errorf("replay version %d, want %d", rf.Version, ReplayVersion)
	}

	return &rf, nil
}
