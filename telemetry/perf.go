package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one generation of the evolution loop.
const (
	PhaseSimulate  = "simulate"
	PhaseFitness   = "fitness"
	PhaseSelect    = "select"
	PhaseCrossover = "crossover"
	PhaseMutate    = "mutate"
)

// Phases lists every phase in execution order.
var Phases = []string{PhaseSimulate, PhaseFitness, PhaseSelect, PhaseCrossover, PhaseMutate}

// PerfSample holds timing data for a single generation.
type PerfSample struct {
	Duration time.Duration
	Phases   map[string]time.Duration
}

// PerfCollector tracks per-generation timings over a rolling window.
// A nil collector ignores every call.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	genStart      time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a collector averaging over windowSize generations.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 10
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartGeneration begins timing a new generation.
func (p *PerfCollector) StartGeneration() {
	if p == nil {
		return
	}
	p.genStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase ends the running phase, if any, and begins timing the next one.
func (p *PerfCollector) StartPhase(phase string) {
	if p == nil {
		return
	}
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndGeneration finishes timing the current generation and records the sample.
func (p *PerfCollector) EndGeneration() {
	if p == nil {
		return
	}
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		Duration: now.Sub(p.genStart),
		Phases:   p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// AbortGeneration closes the running phase without recording a sample, for
// generations that failed part way through.
func (p *PerfCollector) AbortGeneration() {
	if p == nil {
		return
	}
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgDuration time.Duration
	MinDuration time.Duration
	MaxDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total generation time
	PhasePct map[string]float64

	GenerationsPerSecond float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p == nil || p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var total, minDur, maxDur time.Duration
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.Duration

		if i == 0 || s.Duration < minDur {
			minDur = s.Duration
		}
		if s.Duration > maxDur {
			maxDur = s.Duration
		}

		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avg := total / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	var perSec float64
	if avg > 0 {
		perSec = float64(time.Second) / float64(avg)
	}

	return PerfStats{
		AvgDuration:          avg,
		MinDuration:          minDur,
		MaxDuration:          maxDur,
		PhaseAvg:             phaseAvg,
		PhasePct:             phasePct,
		GenerationsPerSecond: perSec,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_generation_us", s.AvgDuration.Microseconds()),
		slog.Int64("min_generation_us", s.MinDuration.Microseconds()),
		slog.Int64("max_generation_us", s.MaxDuration.Microseconds()),
		slog.Float64("generations_per_sec", s.GenerationsPerSecond),
	}

	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, slog.Float64(phase+"_pct", float64(int(pct*10))/10))
		}
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Generation        int     `csv:"generation"`
	AvgGenerationUS   int64   `csv:"avg_generation_us"`
	MinGenerationUS   int64   `csv:"min_generation_us"`
	MaxGenerationUS   int64   `csv:"max_generation_us"`
	GenerationsPerSec float64 `csv:"generations_per_sec"`
	SimulatePct       float64 `csv:"simulate_pct"`
	FitnessPct        float64 `csv:"fitness_pct"`
	SelectPct         float64 `csv:"select_pct"`
	CrossoverPct      float64 `csv:"crossover_pct"`
	MutatePct         float64 `csv:"mutate_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(generation int) PerfStatsCSV {
	return PerfStatsCSV{
		Generation:        generation,
		AvgGenerationUS:   s.AvgDuration.Microseconds(),
		MinGenerationUS:   s.MinDuration.Microseconds(),
		MaxGenerationUS:   s.MaxDuration.Microseconds(),
		GenerationsPerSec: s.GenerationsPerSecond,
		SimulatePct:       s.PhasePct[PhaseSimulate],
		FitnessPct:        s.PhasePct[PhaseFitness],
		SelectPct:         s.PhasePct[PhaseSelect],
		CrossoverPct:      s.PhasePct[PhaseCrossover],
		MutatePct:         s.PhasePct[PhaseMutate],
	}
}
