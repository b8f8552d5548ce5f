// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics wires the consensus core's prometheus instrumentation:
// a thin Registerer/Registry alias plus the domain counters and gauges the
// worker and state machine update as transactions move through the
// lifecycle in spec.md §3.1.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Registerer is an interface for registering prometheus metrics.
type Registerer interface {
	prometheus.Registerer
}

// Registry is an interface for a prometheus registry that also gathers.
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// NewRegistry creates a new prometheus registry.
func NewRegistry() Registry {
	return prometheus.NewRegistry()
}

// MultiGatherer merges metrics from several sources (one per worker, plus
// the finalization worker) behind a single /metrics endpoint.
type MultiGatherer interface {
	prometheus.Gatherer

	// Register adds a new gatherer under name.
	Register(name string, gatherer prometheus.Gatherer) error
}

type multiGatherer struct {
	gatherers map[string]prometheus.Gatherer
}

// NewMultiGatherer creates a new multi-gatherer.
func NewMultiGatherer() MultiGatherer {
	return &multiGatherer{
		gatherers: make(map[string]prometheus.Gatherer),
	}
}

func (mg *multiGatherer) Register(name string, gatherer prometheus.Gatherer) error {
	mg.gatherers[name] = gatherer
	return nil
}

func (mg *multiGatherer) Gather() ([]*dto.MetricFamily, error) {
	var result []*dto.MetricFamily
	for _, g := range mg.gatherers {
		families, err := g.Gather()
		if err != nil {
			return nil, err
		}
		result = append(result, families...)
	}
	return result, nil
}

// Metrics is the set of counters/gauges the consensus core exposes.
type Metrics interface {
	// TransactionsProposed counts Proposing-state entries (one per attempt,
	// including leader-rotation re-entries).
	TransactionsProposed() prometheus.Counter

	// TransactionsAccepted counts ACCEPTED terminal transitions (including
	// appeal-failure re-acceptances).
	TransactionsAccepted() prometheus.Counter

	// TransactionsUndetermined counts UNDETERMINED terminal transitions.
	TransactionsUndetermined() prometheus.Counter

	// LeaderRotations counts leader-rotation events (§4.2.4).
	LeaderRotations() prometheus.Counter

	// AppealsStarted counts appeals entering any of the three tiers.
	AppealsStarted() prometheus.Counter

	// AppealsSucceeded counts appeals that flipped the outcome.
	AppealsSucceeded() prometheus.Counter

	// ValidatorReplacements counts idle/fatal validator replacements (§4.2.3).
	ValidatorReplacements() prometheus.Counter

	// LeasedTransactions is a gauge of rows currently holding a worker lease.
	LeasedTransactions() prometheus.Gauge
}

// NewMetrics creates and registers a Metrics instance under namespace.
func NewMetrics(namespace string, registerer prometheus.Registerer) (Metrics, error) {
	m := &metrics{
		proposed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_proposed_total",
			Help:      "Number of times a transaction entered the Proposing state.",
		}),
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_accepted_total",
			Help:      "Number of ACCEPTED terminal transitions.",
		}),
		undetermined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_undetermined_total",
			Help:      "Number of UNDETERMINED terminal transitions.",
		}),
		rotations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leader_rotations_total",
			Help:      "Number of leader rotations performed.",
		}),
		appealsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appeals_started_total",
			Help:      "Number of appeals entered, across all tiers.",
		}),
		appealsSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appeals_succeeded_total",
			Help:      "Number of appeals that changed the prior outcome.",
		}),
		replacements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validator_replacements_total",
			Help:      "Number of validator replacements drawn during Committing.",
		}),
		leased: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "leased_transactions",
			Help:      "Number of transaction rows currently holding a worker lease.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.proposed, m.accepted, m.undetermined, m.rotations,
		m.appealsStarted, m.appealsSucceeded, m.replacements, m.leased,
	} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

type metrics struct {
	proposed         prometheus.Counter
	accepted         prometheus.Counter
	undetermined     prometheus.Counter
	rotations        prometheus.Counter
	appealsStarted   prometheus.Counter
	appealsSucceeded prometheus.Counter
	replacements     prometheus.Counter
	leased           prometheus.Gauge
}

func (m *metrics) TransactionsProposed() prometheus.Counter     { return m.proposed }
func (m *metrics) TransactionsAccepted() prometheus.Counter     { return m.accepted }
func (m *metrics) TransactionsUndetermined() prometheus.Counter { return m.undetermined }
func (m *metrics) LeaderRotations() prometheus.Counter          { return m.rotations }
func (m *metrics) AppealsStarted() prometheus.Counter           { return m.appealsStarted }
func (m *metrics) AppealsSucceeded() prometheus.Counter         { return m.appealsSucceeded }
func (m *metrics) ValidatorReplacements() prometheus.Counter    { return m.replacements }
func (m *metrics) LeasedTransactions() prometheus.Gauge         { return m.leased }
