// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package decision

import (
	"errors"

	"github.com/luxfi/txconsensus/effects"
	"github.com/luxfi/txconsensus/txtypes"
)

// ErrAllValidatorsIdle is the systemic-infrastructure error of §4.2.3:
// raised when every committee member voted IDLE, aborting the attempt.
var ErrAllValidatorsIdle = errors.New("committing: all validators voted idle")

// Committing implements decide_committing's post-execution half
// (§4.2.3). The concurrent validator executor calls, the replacement
// pool, and the per-validator timeout are impure work the worker
// performs before calling this function with the gathered
// ctx.ValidatorReceipts (each already vote-corrected to IDLE if fatal
// and replacement-exhausted, per the statemachine's replacement-pool
// bookkeeping). It also persists the round's votes and validator
// receipts onto consensus_data, so a later appeal re-entry has
// something to merge against (§4.6).
func Committing(tx *txtypes.Transaction, ctx *RoundContext) (effects.Decision, error) {
	if allIdle(ctx.ValidatorReceipts) {
		return effects.Decision{}, ErrAllValidatorsIdle
	}

	post := make([]effects.Effect, 0, len(ctx.ValidatorReceipts)+1)
	for addr := range ctx.ValidatorReceipts {
		post = append(post, effects.EmitRollupEvent{
			Name:            "emitVoteCommitted",
			Account:         addr,
			TransactionHash: tx.Hash,
		})
	}
	post = append(post, effects.SetConsensusData{
		Votes:      ctx.Votes(),
		Validators: receiptSlice(ctx.ValidatorReceipts),
	})

	return effects.Decision{
		Post:    post,
		Outcome: effects.NextStatus(txtypes.StatusRevealing),
	}, nil
}

func allIdle(receipts map[txtypes.Address]txtypes.Receipt) bool {
	if len(receipts) == 0 {
		return true
	}
	for _, r := range receipts {
		if r.Vote != txtypes.VoteIdle {
			return false
		}
	}
	return true
}
