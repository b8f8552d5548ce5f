// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package statemachine is the thin interpreter of spec §4.2: for each
// complex state it calls the matching decide_<state> function in the
// decision package, applies the returned Pre effects, performs the one
// impure action proper to that state, applies Post effects, and loops
// on the returned next status until a terminal Round is reached. All
// protocol logic lives in decision and selection; this package only
// sequences calls.
package statemachine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/luxfi/log"

	"github.com/luxfi/txconsensus/decision"
	"github.com/luxfi/txconsensus/effects"
	"github.com/luxfi/txconsensus/executor"
	"github.com/luxfi/txconsensus/internal/metrics"
	"github.com/luxfi/txconsensus/selection"
	"github.com/luxfi/txconsensus/store"
	"github.com/luxfi/txconsensus/tally"
	"github.com/luxfi/txconsensus/txtypes"
)

// maxIdleReplacements bounds leader and committee replacement attempts
// (§4.2.2, §4.2.3's MAX_IDLE_REPLACEMENTS).
const maxIdleReplacements = 3

// committeeConcurrency bounds concurrent committee executor calls
// (§4.2.3's "small semaphore (e.g. 8)").
const committeeConcurrency = 8

// Clock supplies the current time; injected so tests can control it.
type Clock func() time.Time

// Handler drives one transaction attempt through the state machine.
type Handler struct {
	Store    store.Store
	Executor executor.Executor
	Runner   *effects.Runner
	Selector *selection.Selector
	Metrics  metrics.Metrics
	Log      log.Logger
	Clock    Clock

	ValidatorExecTimeout time.Duration
}

func (h *Handler) now() time.Time {
	if h.Clock != nil {
		return h.Clock()
	}
	return time.Now()
}

// Run drives tx from its current status through to a terminal Round,
// looping on NextStatus outcomes (e.g. leader rotation returning to
// Proposing). pool is the validator registry snapshot available for
// fresh draws.
func (h *Handler) Run(ctx context.Context, tx *txtypes.Transaction, pool txtypes.Snapshot) (txtypes.Round, error) {
	rc := &decision.RoundContext{}

	status := tx.Status
	for {
		var (
			d   effects.Decision
			err error
		)

		switch status {
		case txtypes.StatusPending:
			d, err = h.handlePending(ctx, tx, rc, pool)
		case txtypes.StatusProposing:
			d, err = h.handleProposing(ctx, tx, rc, pool)
		case txtypes.StatusCommitting:
			d, err = h.handleCommitting(ctx, tx, rc, pool)
		case txtypes.StatusRevealing:
			d = decision.Revealing(tx, rc, h.now())
		case txtypes.StatusAccepted:
			d, err = h.handleAccepted(ctx, tx, rc)
		case txtypes.StatusUndetermined:
			d, err = h.handleUndetermined(ctx, tx, rc)
		case txtypes.StatusLeaderTimeout:
			d = decision.LeaderTimeout(tx, rc, h.now())
		case txtypes.StatusValidatorsTimeout:
			d = decision.ValidatorsTimeout(tx, rc, h.now())
		default:
			return "", fmt.Errorf("statemachine: unhandled status %q", status)
		}
		if err != nil {
			return "", err
		}

		if err := h.Runner.Apply(ctx, tx, d.Pre); err != nil {
			return "", err
		}
		if err := h.Runner.Apply(ctx, tx, d.Post); err != nil {
			return "", err
		}

		if d.Outcome.Round != nil {
			return *d.Outcome.Round, nil
		}
		status = *d.Outcome.NextStatus
		tx.Status = status
	}
}

func (h *Handler) handlePending(ctx context.Context, tx *txtypes.Transaction, rc *decision.RoundContext, pool txtypes.Snapshot) (effects.Decision, error) {
	if tx.Type == txtypes.TxSend {
		insufficient := false
		if tx.FromAddress != "" {
			have, err := h.Store.GetBalance(ctx, tx.FromAddress)
			if err != nil {
				return effects.Decision{}, err
			}
			insufficient = have < tx.Value
		}
		return decision.Send(tx, insufficient), nil
	}

	validators, err := h.Selector.SelectForPending(tx, pool)
	if err != nil {
		return effects.Decision{}, err
	}
	d, newCtx := decision.Pending(tx, validators)
	*rc = *newCtx
	return d, nil
}

func (h *Handler) handleProposing(ctx context.Context, tx *txtypes.Transaction, rc *decision.RoundContext, pool txtypes.Snapshot) (effects.Decision, error) {
	rc.Leader, rc.Committee = h.Selector.ShuffleForProposing(rc.Validators)

	pre := decision.ProposingPre(tx, rc)
	if err := h.Runner.Apply(ctx, tx, pre.Pre); err != nil {
		return effects.Decision{}, err
	}

	receipt, err := h.execWithLeaderReplacement(ctx, tx, rc, pool)
	if err != nil {
		return effects.Decision{}, err
	}
	rc.LeaderReceipt = &receipt

	return decision.ProposingPost(tx, rc), nil
}

// execWithLeaderReplacement invokes the leader executor, popping the
// next committee member as leader on a fatal error up to
// maxIdleReplacements (§4.2.2).
func (h *Handler) execWithLeaderReplacement(ctx context.Context, tx *txtypes.Transaction, rc *decision.RoundContext, pool txtypes.Snapshot) (txtypes.Receipt, error) {
	leader := rc.Leader
	committee := rc.Committee

	for attempt := 0; ; attempt++ {
		receipt, err := h.Executor.Execute(ctx, executor.Request{
			Transaction: tx,
			Mode:        executor.ModeLeader,
			Validator:   leader,
			Validators:  rc.Validators,
		})
		if err == nil {
			rc.Leader = leader
			rc.Committee = committee
			return receipt, nil
		}

		fault, ok := executor.AsFault(err)
		if !ok || !fault.Fatal || attempt >= maxIdleReplacements || len(committee) == 0 {
			return txtypes.Receipt{}, fmt.Errorf("statemachine: leader replacement exhausted: %w", err)
		}
		leader, committee = committee[0], committee[1:]
	}
}

func (h *Handler) handleCommitting(ctx context.Context, tx *txtypes.Transaction, rc *decision.RoundContext, pool txtypes.Snapshot) (effects.Decision, error) {
	committee := rc.Committee
	if tx.ExecutionMode == txtypes.ModeLeaderSelfValidator {
		committee = append(txtypes.Snapshot{rc.Leader}, committee...)
	}

	rc.ValidatorReceipts = h.runCommittee(ctx, tx, rc, committee, pool)

	d, err := decision.Committing(tx, rc)
	if err != nil {
		return effects.Decision{}, err
	}
	return d, nil
}

type committeeResult struct {
	addr    txtypes.Address
	receipt txtypes.Receipt
}

// replacementPool is the shared, lock-protected FIFO of validators not
// already assigned as leader or committee for this attempt (§4.2.3,
// §5's replacement pool). Every committee goroutine draws from the same
// pool, so a validator is never assigned twice within one attempt.
type replacementPool struct {
	mu        sync.Mutex
	remaining []txtypes.Validator
}

// newReplacementPool builds the pool from the full registry snapshot,
// excluding every validator already assigned to this attempt.
func newReplacementPool(registry txtypes.Snapshot, assigned map[txtypes.Address]struct{}) *replacementPool {
	remaining := make([]txtypes.Validator, 0, len(registry))
	for _, v := range registry {
		if _, skip := assigned[v.Address]; skip {
			continue
		}
		remaining = append(remaining, v)
	}
	return &replacementPool{remaining: remaining}
}

func (p *replacementPool) pop() (txtypes.Validator, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.remaining) == 0 {
		return txtypes.Validator{}, false
	}
	v := p.remaining[0]
	p.remaining = p.remaining[1:]
	return v, true
}

// runCommittee runs every committee validator concurrently, bounded by
// committeeConcurrency, synthesizing timeout/error receipts per §4.2.3
// and drawing replacements from a shared pool on fatal executor faults.
func (h *Handler) runCommittee(ctx context.Context, tx *txtypes.Transaction, rc *decision.RoundContext, committee txtypes.Snapshot, pool txtypes.Snapshot) map[txtypes.Address]txtypes.Receipt {
	assigned := make(map[txtypes.Address]struct{}, len(committee)+1)
	if rc.Leader.Address != "" {
		assigned[rc.Leader.Address] = struct{}{}
	}
	for _, v := range committee {
		assigned[v.Address] = struct{}{}
	}
	replacements := newReplacementPool(pool, assigned)

	results := make(chan committeeResult, len(committee))
	sem := make(chan struct{}, committeeConcurrency)

	for _, v := range committee {
		v := v
		sem <- struct{}{}
		go func() {
			defer func() { <-sem }()
			results <- committeeResult{addr: v.Address, receipt: h.execValidatorWithReplacement(ctx, tx, rc, v, replacements)}
		}()
	}

	out := make(map[txtypes.Address]txtypes.Receipt, len(committee))
	for range committee {
		r := <-results
		out[r.addr] = r.receipt
	}
	return out
}

// execValidatorWithReplacement runs v, popping the next replacement from
// pool and retrying on a fatal fault, bounded by maxIdleReplacements.
// Vote is only forced to IDLE once replacements are exhausted (or the
// pool is empty); a fatal receipt that gets replaced is discarded.
func (h *Handler) execValidatorWithReplacement(ctx context.Context, tx *txtypes.Transaction, rc *decision.RoundContext, v txtypes.Validator, pool *replacementPool) txtypes.Receipt {
	current := v
	var receipt txtypes.Receipt
	for attempt := 0; ; attempt++ {
		receipt = h.execValidator(ctx, tx, rc, current)
		if !receipt.Fatal || attempt >= maxIdleReplacements {
			break
		}
		replacement, ok := pool.pop()
		if !ok {
			break
		}
		if h.Metrics != nil {
			h.Metrics.ValidatorReplacements().Inc()
		}
		current = replacement
	}
	if receipt.Fatal {
		receipt.Vote = txtypes.VoteIdle
	}
	return receipt
}

func (h *Handler) execValidator(ctx context.Context, tx *txtypes.Transaction, rc *decision.RoundContext, v txtypes.Validator) txtypes.Receipt {
	execCtx, cancel := context.WithTimeout(ctx, h.ValidatorExecTimeout)
	defer cancel()

	receipt, err := h.Executor.Execute(execCtx, executor.Request{
		Transaction:   tx,
		Mode:          executor.ModeValidator,
		Validator:     v,
		LeaderReceipt: rc.LeaderReceipt,
		Validators:    rc.Validators,
	})
	if err == nil {
		return receipt
	}

	if execCtx.Err() != nil {
		return txtypes.Receipt{
			Result:          []byte{byte(txtypes.ResultCodeVMTimeout)},
			ExecutionResult: txtypes.ExecutionError,
			NodeConfig:      v.Address,
			Fatal:           true,
		}
	}

	fault, _ := executor.AsFault(err)
	if fault != nil && fault.Fatal {
		return txtypes.Receipt{
			Result:          []byte{byte(txtypes.ResultCodeVMError)},
			ExecutionResult: txtypes.ExecutionError,
			NodeConfig:      v.Address,
			Fatal:           true,
		}
	}

	return txtypes.Receipt{
		ExecutionResult: txtypes.ExecutionError,
		Vote:            txtypes.VoteDisagree,
		NodeConfig:      v.Address,
	}
}

func (h *Handler) handleAccepted(ctx context.Context, tx *txtypes.Transaction, rc *decision.RoundContext) (effects.Decision, error) {
	var snapshot map[string][]byte
	if rc.LeaderReceipt != nil && rc.LeaderReceipt.ExecutionResult == txtypes.ExecutionSuccess {
		state, err := h.Store.GetContractState(ctx, tx.ToAddress)
		if err != nil && err != store.ErrNotFound {
			return effects.Decision{}, err
		}
		if state != nil {
			snapshot = state.Accepted
		}
	}
	return decision.Accepted(tx, rc, snapshot, h.now()), nil
}

func (h *Handler) handleUndetermined(ctx context.Context, tx *txtypes.Transaction, rc *decision.RoundContext) (effects.Decision, error) {
	var snapshot map[string][]byte
	if tx.ContractSnapshot == nil {
		state, err := h.Store.GetContractState(ctx, tx.ToAddress)
		if err != nil && err != store.ErrNotFound {
			return effects.Decision{}, err
		}
		if state != nil {
			snapshot = state.Accepted
		}
	}
	return decision.Undetermined(tx, rc, snapshot, h.now()), nil
}

// tallyOf applies the same tally rule the Revealing decision uses. It is
// unexported, so only code in this package can call it.
func tallyOf(rc *decision.RoundContext) tally.Result {
	return rc.TallyResult()
}
