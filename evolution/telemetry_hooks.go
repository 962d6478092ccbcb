package evolution

import "github.com/pthm-cable/slalom/telemetry"

// flushTelemetry reports one evaluated generation to the logger, the stats
// callback and the output files, then checks for milestones.
func (l *Loop) flushTelemetry(g int, best telemetry.Best, fitness []float64) {
	stats := l.collector.Flush(g, best, fitness)
	perfStats := l.perf.Stats()

	l.logger.Info("generation", "stats", stats)
	l.logger.Debug("perf", "generation", g, "perf", perfStats)

	if l.statsCallback != nil {
		l.statsCallback(stats)
	}

	if err := l.output.WriteGeneration(stats); err != nil {
		l.logger.Error("failed to write generation", "error", err)
	}
	if err := l.output.WritePerf(perfStats, g); err != nil {
		l.logger.Error("failed to write perf", "error", err)
	}

	for _, m := range l.milestones.Check(stats) {
		l.logger.Info("milestone", "milestone", m)
		if err := l.output.WriteMilestone(m); err != nil {
			l.logger.Error("failed to write milestone", "error", err)
		}
	}
}
