package main

import (
	"time"

	"github.com/rs/zerolog"
)

// runMetrics aggregates per-run outcome counts across procedures.
type runMetrics struct {
	total     int
	analyzed  int
	skipped   int
	locked    int
	exhausted int
	failed    int
	started   time.Time
}

func newRunMetrics(total int) *runMetrics {
	return &runMetrics{total: total, started: time.Now()}
}

func (m *runMetrics) report(log zerolog.Logger) {
	log.Info().
		Int("procedures", m.total).
		Int("analyzed", m.analyzed).
		Int("skipped-unchanged", m.skipped).
		Int("locked", m.locked).
		Int("budget-exhausted", m.exhausted).
		Int("failed", m.failed).
		Dur("elapsed", time.Since(m.started)).
		Msg("run finished")
}
