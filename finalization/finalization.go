// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package finalization is the dedicated finalization worker of §4.4: it
// claims the highest-priority finalization-eligible row, checks that
// eligibility once more under its own clock (the claim query is a
// coarse filter; the finality-window arithmetic needs the worker's own
// "now"), and drives it through decision.Finalizing.
package finalization

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/luxfi/log"

	"github.com/luxfi/txconsensus/decision"
	"github.com/luxfi/txconsensus/effects"
	"github.com/luxfi/txconsensus/store"
	"github.com/luxfi/txconsensus/txtypes"
)

// Config holds the finality-window tunables of spec.md §6.5.
type Config struct {
	ID                    string
	PollInterval          time.Duration
	LeaseWindow           time.Duration
	FinalityWindow        time.Duration
	AppealFailedReduction float64
}

// Worker drives eligible rows to FINALIZED, one claim at a time.
type Worker struct {
	cfg    Config
	store  store.Store
	runner *effects.Runner
	log    log.Logger
	clock  func() time.Time
}

// New builds a finalization Worker.
func New(cfg Config, st store.Store, runner *effects.Runner, logger log.Logger) *Worker {
	return &Worker{cfg: cfg, store: st, runner: runner, log: logger, clock: time.Now}
}

// Run loops until ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	tx, err := w.store.Claim(ctx, store.ClaimFinalization, w.cfg.ID, w.cfg.LeaseWindow)
	if errors.Is(err, store.ErrNotFound) {
		return
	}
	if err != nil {
		w.log.Error("finalization claim failed", "error", err)
		return
	}
	defer func() {
		if !tx.Status.Terminal() {
			_ = w.store.Release(ctx, tx.Hash)
		}
	}()

	eligible, err := w.eligible(ctx, tx)
	if err != nil {
		w.log.Error("eligibility check failed", "hash", tx.Hash, "error", err)
		return
	}
	if !eligible {
		return
	}

	var leaderReceipt *txtypes.Receipt
	if len(tx.ConsensusData.LeaderReceipt) > 0 {
		leaderReceipt = &tx.ConsensusData.LeaderReceipt[0]
	}

	d := decision.Finalizing(tx, leaderReceipt)
	if err := w.runner.Apply(ctx, tx, d.Pre); err != nil {
		w.log.Error("failed applying finalizing pre-effects", "hash", tx.Hash, "error", err)
		return
	}
	if err := w.runner.Apply(ctx, tx, d.Post); err != nil {
		w.log.Error("failed applying finalizing post-effects", "hash", tx.Hash, "error", err)
	}
}

// eligible implements §4.4's predicate: status is one of the four
// finalizable outcomes, not currently appealed, awaiting-finalization is
// set, and either the transaction ran in LEADER_ONLY/LEADER_SELF_VALIDATOR
// mode (skips the finality window entirely) or enough of the
// window — shrunk by AppealFailedReduction per prior appeal failure —
// has elapsed since timestamp_awaiting_finalization, AND the previous
// transaction on the same contract is already FINALIZED (the strict
// per-contract ordering invariant of §8).
func (w *Worker) eligible(ctx context.Context, tx *txtypes.Transaction) (bool, error) {
	if !tx.Status.Finalizable() || tx.Appeal.Any() || tx.Appeal.TimestampAwaitingFinal == nil {
		return false, nil
	}

	if tx.ExecutionMode != txtypes.ModeLeaderOnly && tx.ExecutionMode != txtypes.ModeLeaderSelfValidator {
		window := time.Duration(float64(w.cfg.FinalityWindow) * math.Pow(1-w.cfg.AppealFailedReduction, float64(tx.Appeal.Failed)))
		elapsed := w.clock().Sub(*tx.Appeal.TimestampAwaitingFinal) - tx.Appeal.ProcessingTime
		if elapsed < window {
			return false, nil
		}
	}

	prev, err := w.store.GetPrevious(ctx, tx.ToAddress, tx.CreatedAt)
	if errors.Is(err, store.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return prev.Status == txtypes.StatusFinalized, nil
}
