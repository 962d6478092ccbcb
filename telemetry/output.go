package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/slalom/config"
)

// Output file names inside the output directory.
const (
	TraceFileName      = "trace.csv"
	PerfFileName       = "perf.csv"
	MilestonesFileName = "milestones.csv"
	ConfigFileName     = "config.yaml"
	ReplayFileName     = "replay.json"
)

// csvSink appends records to one CSV file, writing the header once.
type csvSink struct {
	name          string
	f             *os.File
	headerWritten bool
}

func (s *csvSink) write(records any) error {
	var err error
	if !s.headerWritten {
		err = gocsv.Marshal(records, s.f)
		s.headerWritten = err == nil
	} else {
		err = gocsv.MarshalWithoutHeaders(records, s.f)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", s.name, err)
	}
	return nil
}

// OutputManager handles structured run output with CSV logging.
// A nil manager means output is disabled; every method is then a no-op.
type OutputManager struct {
	dir        string
	trace      *csvSink
	perf       *csvSink
	milestones *csvSink
}

// NewOutputManager creates the output directory and opens the CSV files.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{
		dir:        dir,
		trace:      &csvSink{name: TraceFileName},
		perf:       &csvSink{name: PerfFileName},
		milestones: &csvSink{name: MilestonesFileName},
	}

	for _, s := range []*csvSink{om.trace, om.perf, om.milestones} {
		f, err := os.Create(filepath.Join(dir, s.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", s.name, err)
		}
		s.f = f
	}

	return om, nil
}

// WriteConfig saves the run configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(om.Path(ConfigFileName))
}

// WriteGeneration appends a generation stats record to trace.csv.
func (om *OutputManager) WriteGeneration(stats GenerationStats) error {
	if om == nil {
		return nil
	}
	return om.trace.write([]GenerationStats{stats})
}

// WritePerf appends a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, generation int) error {
	if om == nil {
		return nil
	}
	return om.perf.write([]PerfStatsCSV{stats.ToCSV(generation)})
}

// WriteMilestone appends a milestone record to milestones.csv.
func (om *OutputManager) WriteMilestone(m Milestone) error {
	if om == nil {
		return nil
	}
	return om.milestones.write([]Milestone{m})
}

// WriteReplays saves every generation's best trajectory to replay.json.
func (om *OutputManager) WriteReplays(rf *ReplayFile) error {
	if om == nil || rf == nil {
		return nil
	}
	return SaveReplayFile(rf, om.Path(ReplayFileName))
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Path returns the path of name inside the output directory.
func (om *OutputManager) Path(name string) string {
	return filepath.Join(om.Dir(), name)
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, s := range []*csvSink{om.trace, om.perf, om.milestones} {
		if s == nil || s.f == nil {
			continue
		}
		if err := s.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
