// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package monitoring records how long a transaction attempt spends in
// each status, and can feed those dwell times into internal/metric
// averagers. The recorded spans are not written to consensus_history
// entries.
package monitoring

import (
	"sync"
	"time"

	"github.com/luxfi/txconsensus/internal/metric"
	"github.com/luxfi/txconsensus/txtypes"
)

// StageTimer accumulates the wall-clock spent in each status for one
// transaction attempt. Its methods hold an internal mutex, so calls from
// several goroutines are serialized.
type StageTimer struct {
	mu      sync.Mutex
	entered time.Time
	current txtypes.Status
	spans   []Span

	averagers map[txtypes.Status]metric.Averager
}

// Span is one recorded status dwell time.
type Span struct {
	Status   txtypes.Status
	Duration time.Duration
}

// NewStageTimer returns a StageTimer that also feeds per-status averages
// into averagers (keyed by status name), if non-nil.
func NewStageTimer(averagers map[txtypes.Status]metric.Averager) *StageTimer {
	return &StageTimer{averagers: averagers}
}

// Enter marks now as the moment status began, closing out the dwell
// time of whatever status was previously open.
func (t *StageTimer) Enter(status txtypes.Status, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.entered.IsZero() {
		d := now.Sub(t.entered)
		t.spans = append(t.spans, Span{Status: t.current, Duration: d})
		if avg, ok := t.averagers[t.current]; ok {
			avg.Observe(d.Seconds())
		}
	}
	t.entered = now
	t.current = status
}

// Spans returns every recorded dwell time so far, in order.
func (t *StageTimer) Spans() []Span {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Span, len(t.spans))
	copy(out, t.spans)
	return out
}

// Total returns the time spent in status across every span recorded
// (a status can recur, e.g. PROPOSING across leader rotations).
func (t *StageTimer) Total(status txtypes.Status) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	var sum time.Duration
	for _, s := range t.spans {
		if s.Status == status {
			sum += s.Duration
		}
	}
	return sum
}
