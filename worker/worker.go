// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package worker is the claim loop of spec.md §4.1: repeatedly claims the
// highest-priority eligible transaction, drives it through
// statemachine.Handler, and releases or advances its lease. It also runs
// the orphan-recovery sweep and the no-validator backoff the spec
// requires of every worker process.
package worker

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/luxfi/log"

	"github.com/luxfi/txconsensus/health"
	"github.com/luxfi/txconsensus/internal/metrics"
	"github.com/luxfi/txconsensus/selection"
	"github.com/luxfi/txconsensus/statemachine"
	"github.com/luxfi/txconsensus/store"
	"github.com/luxfi/txconsensus/txtypes"
)

// ValidatorPool supplies the current validator registry snapshot; it is
// a separate collaborator from store.Store since spec.md §3.5 treats
// validator accounts as a different aggregate from transactions.
type ValidatorPool interface {
	Snapshot(ctx context.Context) (txtypes.Snapshot, error)
}

// Config holds the tunables spec.md §6.5 names for a single worker.
type Config struct {
	ID                      string
	PollInterval            time.Duration
	LeaseWindow             time.Duration
	NoValidatorsMaxRetries  int
	NoValidatorsBaseBackoff time.Duration
	MaxRestarts             int
	RestartWindow           time.Duration
	RestartBackoff          time.Duration
}

// Worker claims and drives transactions in priority order: appeals,
// then finalizations, then plain pending rows (§4.1).
type Worker struct {
	cfg      Config
	store    store.Store
	pool     ValidatorPool
	handler  *statemachine.Handler
	metrics  metrics.Metrics
	log      log.Logger

	mu                sync.Mutex
	restarts          []time.Time
	permanentlyFailed bool
	noValidatorStrike int
	leasedHash        txtypes.Hash
	leasedSince       *time.Time
}

var _ health.Provider = (*Worker)(nil)

// New builds a Worker. handler already has its Store/Executor/Runner/
// Selector wired; Worker only owns the claim loop around it.
func New(cfg Config, st store.Store, pool ValidatorPool, handler *statemachine.Handler, m metrics.Metrics, logger log.Logger) *Worker {
	return &Worker{cfg: cfg, store: st, pool: pool, handler: handler, metrics: m, log: logger}
}

// Run loops until ctx is canceled or the worker declares itself
// permanently failed (restart budget exhausted, per §4.1's
// auto-restart policy).
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if w.isPermanentlyFailed() {
				return
			}
			w.tick(ctx)
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	defer w.recoverAndRestart()

	if err := w.recoverOrphans(ctx); err != nil {
		w.log.Warn("orphan recovery failed", "error", err)
	}

	for _, kind := range []store.ClaimKind{store.ClaimAppeal, store.ClaimFinalization, store.ClaimPending} {
		tx, err := w.store.Claim(ctx, kind, w.cfg.ID, w.cfg.LeaseWindow)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			w.log.Error("claim failed", "kind", kind, "error", err)
			continue
		}
		w.handleClaimed(ctx, tx)
		return
	}
}

func (w *Worker) handleClaimed(ctx context.Context, tx *txtypes.Transaction) {
	w.setLease(tx.Hash)
	defer w.setLease("")
	defer func() {
		if !tx.Status.Terminal() {
			_ = w.store.Release(ctx, tx.Hash)
		}
	}()

	pool, err := w.pool.Snapshot(ctx)
	if err != nil {
		w.log.Error("validator snapshot failed", "error", err)
		return
	}
	if len(pool) == 0 {
		w.backoffNoValidators(ctx, tx)
		return
	}
	w.noValidatorStrike = 0

	round, err := w.handler.Run(ctx, tx, pool)
	if err != nil {
		if errors.Is(err, selection.ErrInsufficientValidators) {
			w.backoffNoValidators(ctx, tx)
			return
		}
		w.log.Error("state machine run failed", "hash", tx.Hash, "error", err)
		return
	}

	w.recordMetrics(round)
}

// backoffNoValidators implements §4.1's no-validator backoff:
// base * 2^(count-1), capped at NoValidatorsMaxRetries before the
// transaction is canceled outright.
func (w *Worker) backoffNoValidators(ctx context.Context, tx *txtypes.Transaction) {
	w.noValidatorStrike++
	if w.noValidatorStrike > w.cfg.NoValidatorsMaxRetries {
		tx.Status = txtypes.StatusCanceled
		if err := w.store.Update(ctx, tx); err != nil {
			w.log.Error("failed to cancel transaction after no-validator retries exhausted", "hash", tx.Hash, "error", err)
		}
		w.noValidatorStrike = 0
		return
	}

	backoff := time.Duration(float64(w.cfg.NoValidatorsBaseBackoff) * math.Pow(2, float64(w.noValidatorStrike-1)))
	select {
	case <-ctx.Done():
	case <-time.After(backoff):
	}
}

// recoverOrphans resets any transaction whose lease has expired, or
// which sits in a mid-flight status with no lease at all (worker crash
// recovery per §4.1).
func (w *Worker) recoverOrphans(ctx context.Context) error {
	midFlight := []txtypes.Status{
		txtypes.StatusActivated, txtypes.StatusProposing,
		txtypes.StatusCommitting, txtypes.StatusRevealing,
	}
	orphans, err := w.store.ListOrphans(ctx, w.cfg.LeaseWindow, midFlight)
	if err != nil {
		return err
	}
	for _, tx := range orphans {
		if err := w.store.ResetOrphan(ctx, tx.Hash); err != nil {
			w.log.Warn("failed to reset orphaned transaction", "hash", tx.Hash, "error", err)
		}
	}
	return nil
}

// recoverAndRestart implements the auto-restart half of §4.1: a panic
// inside tick is caught, counted against the restart budget, and turned
// into a permanent-failure declaration once the budget is exhausted
// within the restart window.
func (w *Worker) recoverAndRestart() {
	if r := recover(); r != nil {
		w.log.Error("worker tick panicked, restarting", "panic", r)
		w.mu.Lock()
		now := time.Now()
		cutoff := now.Add(-w.cfg.RestartWindow)
		kept := w.restarts[:0]
		for _, t := range w.restarts {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		w.restarts = append(kept, now)
		if len(w.restarts) > w.cfg.MaxRestarts {
			w.permanentlyFailed = true
		}
		w.mu.Unlock()
		time.Sleep(w.cfg.RestartBackoff)
	}
}

func (w *Worker) isPermanentlyFailed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.permanentlyFailed
}

func (w *Worker) setLease(hash txtypes.Hash) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.leasedHash = hash
	if hash == "" {
		w.leasedSince = nil
		return
	}
	now := time.Now()
	w.leasedSince = &now
}

func (w *Worker) recordMetrics(round txtypes.Round) {
	if w.metrics == nil {
		return
	}
	switch round {
	case txtypes.RoundAccepted, txtypes.RoundLeaderAppealSuccessful, txtypes.RoundLeaderTimeoutAppealSuccessful, txtypes.RoundValidatorAppealFailed:
		w.metrics.TransactionsAccepted().Inc()
	case txtypes.RoundUndetermined, txtypes.RoundLeaderAppealFailed:
		w.metrics.TransactionsUndetermined().Inc()
	case txtypes.RoundLeaderRotated:
		w.metrics.LeaderRotations().Inc()
	case txtypes.RoundValidatorAppealSuccessful:
		w.metrics.AppealsSucceeded().Inc()
	}
}

// Report implements health.Provider.
func (w *Worker) Report(ctx context.Context) (health.WorkerReport, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	status := "healthy"
	healthy := !w.permanentlyFailed
	if w.permanentlyFailed {
		status = "permanently_failed"
	}

	return health.WorkerReport{
		Status:       status,
		WorkerID:     w.cfg.ID,
		RestartCount: len(w.restarts),
	}, healthy
}

// Detail implements health.Provider.
func (w *Worker) Detail(ctx context.Context) (health.StatusReport, error) {
	report, _ := w.Report(ctx)
	w.mu.Lock()
	defer w.mu.Unlock()

	var leasedSince *time.Time
	if w.leasedSince != nil {
		t := *w.leasedSince
		leasedSince = &t
	}

	return health.StatusReport{
		WorkerReport:          report,
		PollInterval:          w.cfg.PollInterval,
		MaxRestarts:           w.cfg.MaxRestarts,
		RestartWindow:         w.cfg.RestartWindow,
		LeasedTransactionHash: string(w.leasedHash),
		LeasedSince:           leasedSince,
	}, nil
}
