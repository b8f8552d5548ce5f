// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package decision

import (
	"time"

	"github.com/luxfi/txconsensus/effects"
	"github.com/luxfi/txconsensus/txtypes"
)

// Undetermined implements decide_undetermined (§4.2.6): publishes
// consensus failure, saves the rollback snapshot if not already
// captured, and arms finalization unless this terminates a leader
// appeal (an appeal failure is re-appealable, not finalizable yet).
func Undetermined(tx *txtypes.Transaction, ctx *RoundContext, snapshot map[string][]byte, now time.Time) effects.Decision {
	round := txtypes.RoundUndetermined
	enteredViaAppeal := tx.Appeal.Undetermined
	if enteredViaAppeal {
		round = txtypes.RoundLeaderAppealFailed
	}

	post := []effects.Effect{
		effects.SendMessage{Message: "consensus failure"},
	}

	if tx.ContractSnapshot == nil {
		post = append(post, effects.SetContractSnapshot{
			Snapshot: &txtypes.ContractSnapshot{ToAddress: tx.ToAddress, Slots: snapshot},
		})
	}

	post = append(post, effects.SetTransactionResult{ExecutionResult: txtypes.ExecutionError})

	post = append(post, effects.UpdateConsensusHistory{Entry: txtypes.HistoryEntry{
		Round:            round,
		LeaderResult:     ctx.LeaderReceipt,
		ValidatorResults: receiptSlice(ctx.ValidatorReceipts),
		RecordedAt:       now,
	}})

	if !enteredViaAppeal {
		post = append(post, effects.SetTimestampAwaitingFinalization{At: &now})
	}

	post = append(post, effects.StatusUpdate{Status: txtypes.StatusUndetermined})

	return effects.Decision{Post: post, Outcome: effects.Terminal(round)}
}
