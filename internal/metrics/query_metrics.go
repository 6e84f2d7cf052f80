// Package metrics tracks query-engine cache behavior: hits, misses,
// early-cutoffs and revision counts. It mirrors the teacher's
// internal/metrics package in spirit (a small, dependency-free stats
// aggregator consumed by diagnostics tooling) but tracks the query
// engine's cache instead of codebase-wide symbol counts, since this core
// has no symbol-count-style metrics to report.
package metrics

import "sync/atomic"

// QueryStats accumulates counters for one query engine instance. Every
// field is updated with atomic operations so readers never race with the
// query engine's worker goroutines.
type QueryStats struct {
	hits        atomic.Int64
	misses      atomic.Int64
	earlyCutoff atomic.Int64
	cancelled   atomic.Int64
	revisions   atomic.Int64
}

func NewQueryStats() *QueryStats { return &QueryStats{} }

func (s *QueryStats) RecordHit()         { s.hits.Add(1) }
func (s *QueryStats) RecordMiss()        { s.misses.Add(1) }
func (s *QueryStats) RecordEarlyCutoff() { s.earlyCutoff.Add(1) }
func (s *QueryStats) RecordCancelled()   { s.cancelled.Add(1) }
func (s *QueryStats) RecordRevision()    { s.revisions.Add(1) }

// Snapshot is a point-in-time, allocation-free copy of the counters.
type Snapshot struct {
	Hits        int64
	Misses      int64
	EarlyCutoff int64
	Cancelled   int64
	Revisions   int64
}

func (s *QueryStats) Snapshot() Snapshot {
	return Snapshot{
		Hits:        s.hits.Load(),
		Misses:      s.misses.Load(),
		EarlyCutoff: s.earlyCutoff.Load(),
		Cancelled:   s.cancelled.Load(),
		Revisions:   s.revisions.Load(),
	}
}

// HitRate returns Hits / (Hits + Misses), or 0 when nothing has run yet.
func (snap Snapshot) HitRate() float64 {
	total := snap.Hits + snap.Misses
	if total == 0 {
		return 0
	}
	return float64(snap.Hits) / float64(total)
}
