// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package decision

import (
	"github.com/luxfi/txconsensus/effects"
	"github.com/luxfi/txconsensus/txtypes"
)

// Finalizing implements decide_finalizing (§4.2.8). Eligibility
// (timing, per-contract ordering) is checked by the finalization
// worker before this is called; Finalizing only decides what promoting
// to FINALIZED requires.
func Finalizing(tx *txtypes.Transaction, leaderReceipt *txtypes.Receipt) effects.Decision {
	if tx.Status != txtypes.StatusAccepted || leaderReceipt == nil || leaderReceipt.ExecutionResult != txtypes.ExecutionSuccess {
		return effects.Decision{
			Post: []effects.Effect{
				effects.EmitRollupEvent{
					Name:            "emitTransactionFinalized",
					Account:         tx.FromAddress,
					TransactionHash: tx.Hash,
				},
				effects.StatusUpdate{Status: txtypes.StatusFinalized},
			},
			Outcome: effects.Terminal(txtypes.RoundFinalized),
		}
	}

	_, onFinalized := leaderReceipt.SplitPending()

	// As in Accepted, the rollup call inserts child rows from the hashes
	// it returns, before this effect list's StatusUpdate is applied.
	post := []effects.Effect{
		effects.UpdateContractState{
			ToAddress: tx.ToAddress,
			Tree:      effects.TreeFinalized,
			Slots:     leaderReceipt.ContractState,
		},
		effects.EmitRollupEvent{
			Name:                "emitTransactionFinalized",
			Account:             tx.FromAddress,
			TransactionHash:     tx.Hash,
			PendingTransactions: onFinalized,
		},
		effects.StatusUpdate{Status: txtypes.StatusFinalized},
	}

	return effects.Decision{Post: post, Outcome: effects.Terminal(txtypes.RoundFinalized)}
}
