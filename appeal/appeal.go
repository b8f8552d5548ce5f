// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package appeal implements the appeal-submission half of §4.6: the
// capacity check and re-queuing of tx as PENDING with the matching
// appeal flag set. The validator-list merge at re-entry happens in the
// decision package's Revealing (§4.6's merge rule); the rollback of
// newer sibling transactions also happens there, once Revealing
// confirms the appeal actually flipped the outcome — submission itself
// never touches the contract's accepted tree.
package appeal

import (
	"context"
	"errors"
	"time"

	"github.com/luxfi/txconsensus/effects"
	"github.com/luxfi/txconsensus/selection"
	"github.com/luxfi/txconsensus/store"
	"github.com/luxfi/txconsensus/txtypes"
)

// ErrAtCapacity is returned when an appeal would draw more validators
// than the registry can supply without reusing an address that has
// already served as leader on this transaction (§4.6).
var ErrAtCapacity = errors.New("appeal: validator pool at capacity")

// Tier names the three appeal entry points of §4.6.
type Tier int

const (
	TierLeader Tier = iota
	TierLeaderTimeout
	TierValidators
)

// Submitter validates and applies one appeal submission.
type Submitter struct {
	Store  store.Store
	Runner *effects.Runner
}

// Submit validates capacity, flips the matching appeal flag, and
// re-queues tx as PENDING. The validator-list merge and any rollback of
// newer siblings happen later, in Revealing, once the re-run confirms
// the appeal actually changed the outcome.
func (s *Submitter) Submit(ctx context.Context, tx *txtypes.Transaction, tier Tier, totalValidators int, now time.Time) error {
	n := tx.NumInitialValidators
	_, newlyDrawn, total := selection.ValidatorAppealCounts(n, tx.Appeal.Failed)

	usedLeaders := len(tx.PastLeaders())
	involved := total
	if tier != TierValidators {
		involved = n + newlyDrawn
	}
	if !selection.CapacityCheck(involved, usedLeaders, totalValidators) {
		return ErrAtCapacity
	}

	pre := []effects.Effect{
		effects.SetTimestampAppeal{At: now},
		effects.SetAppealFlag{Field: fieldFor(tier), Value: true},
		effects.EmitRollupEvent{
			Name:            "emitAppealStarted",
			Account:         tx.FromAddress,
			TransactionHash: tx.Hash,
		},
		effects.StatusUpdate{Status: txtypes.StatusPending},
	}
	return s.Runner.Apply(ctx, tx, pre)
}

func fieldFor(tier Tier) effects.AppealField {
	switch tier {
	case TierLeaderTimeout:
		return effects.AppealFieldLeaderTimeout
	case TierValidators:
		return effects.AppealFieldAppealed
	default:
		return effects.AppealFieldUndetermined
	}
}
