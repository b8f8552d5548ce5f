// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package decision

import (
	"time"

	"github.com/luxfi/txconsensus/effects"
	"github.com/luxfi/txconsensus/txtypes"
)

// LeaderTimeout implements decide_leader_timeout (§4.2.7): analogous to
// Undetermined, plus stashing the committee for a later leader-timeout
// appeal.
func LeaderTimeout(tx *txtypes.Transaction, ctx *RoundContext, now time.Time) effects.Decision {
	post := []effects.Effect{
		effects.EmitRollupEvent{
			Name:            "emitTransactionLeaderTimeout",
			Account:         tx.FromAddress,
			TransactionHash: tx.Hash,
		},
		effects.SetLeaderTimeoutValidators{Validators: ctx.Committee},
		effects.SetTransactionResult{ExecutionResult: txtypes.ExecutionError},
		effects.UpdateConsensusHistory{Entry: txtypes.HistoryEntry{
			Round:        txtypes.RoundLeaderTimeout,
			LeaderResult: ctx.LeaderReceipt,
			RecordedAt:   now,
		}},
	}

	if !tx.Appeal.LeaderTimeout {
		post = append(post, effects.SetTimestampAwaitingFinalization{At: &now})
	}

	post = append(post, effects.StatusUpdate{Status: txtypes.StatusLeaderTimeout})

	return effects.Decision{Post: post, Outcome: effects.Terminal(txtypes.RoundLeaderTimeout)}
}

// ValidatorsTimeout implements decide_validators_timeout (§4.2.7): the
// same shape as Undetermined but for the TIMEOUT tally outcome.
func ValidatorsTimeout(tx *txtypes.Transaction, ctx *RoundContext, now time.Time) effects.Decision {
	enteredViaAppeal := tx.Appeal.ValidatorsTimeout
	round := txtypes.RoundValidatorsTimeout
	if enteredViaAppeal {
		round = txtypes.RoundValidatorAppealFailed
	}

	post := []effects.Effect{
		effects.SetTransactionResult{ExecutionResult: txtypes.ExecutionError},
		effects.UpdateConsensusHistory{Entry: txtypes.HistoryEntry{
			Round:            round,
			LeaderResult:     ctx.LeaderReceipt,
			ValidatorResults: receiptSlice(ctx.ValidatorReceipts),
			RecordedAt:       now,
		}},
	}

	if !enteredViaAppeal {
		post = append(post, effects.SetTimestampAwaitingFinalization{At: &now})
	}

	post = append(post, effects.StatusUpdate{Status: txtypes.StatusValidatorsTimeout})

	return effects.Decision{Post: post, Outcome: effects.Terminal(round)}
}
