// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package decision

import (
	"time"

	"github.com/luxfi/txconsensus/effects"
	"github.com/luxfi/txconsensus/txtypes"
)

// Accepted implements decide_accepted (§4.2.5). snapshot is the
// contract's current accepted-tree contents, read by the caller as the
// one impure action proper to this state (only needed on the non-appeal
// -failure path, where it becomes the rollback anchor).
func Accepted(tx *txtypes.Transaction, ctx *RoundContext, snapshot map[string][]byte, now time.Time) effects.Decision {
	round := acceptedRound(tx)

	var post []effects.Effect

	if tx.Appeal.Undetermined {
		post = append(post, effects.SetAppealFailed{Value: 0})
	} else if tx.Appeal.Appealed {
		post = append(post, effects.SetAppealFailed{Value: tx.Appeal.Failed + 1})
	}

	isAppealFailure := tx.Appeal.Appealed && round == txtypes.RoundValidatorAppealFailed

	if !isAppealFailure {
		post = append(post, effects.SetTimestampAwaitingFinalization{At: &now})

		leaderReceipt := ctx.LeaderReceipt
		if leaderReceipt != nil {
			post = append(post, effects.SetContractSnapshot{
				Snapshot: &txtypes.ContractSnapshot{ToAddress: tx.ToAddress, Slots: snapshot},
			})

			if leaderReceipt.ExecutionResult == txtypes.ExecutionSuccess {
				if tx.Type == txtypes.TxDeployContract {
					post = append(post, effects.RegisterContract{
						ToAddress:          tx.ToAddress,
						Accepted:           leaderReceipt.ContractState,
						Finalized:          map[string][]byte{"code": leaderReceipt.ContractState["code"]},
						DuplicateIsWarning: true,
					})
				} else {
					post = append(post, effects.UpdateContractState{
						ToAddress: tx.ToAddress,
						Tree:      effects.TreeAccepted,
						Slots:     leaderReceipt.ContractState,
					})
				}

				// The rollup call below returns child hashes when
				// PendingTransactions is non-empty; the interpreter
				// inserts the child rows using those hashes before
				// returning, so the strict "children exist before
				// ACCEPTED is published" ordering (§8) holds without a
				// separate InsertChildren effect here.
				onAccepted, _ := leaderReceipt.SplitPending()
				post = append(post, effects.EmitRollupEvent{
					Name:                "emitTransactionAccepted",
					Account:             tx.FromAddress,
					TransactionHash:     tx.Hash,
					PendingTransactions: onAccepted,
				})
			}
		}
	} else {
		post = append(post, effects.EmitRollupEvent{
			Name:            "emitTransactionAccepted",
			Account:         tx.FromAddress,
			TransactionHash: tx.Hash,
		})
	}

	post = append(post, effects.StatusUpdate{Status: txtypes.StatusAccepted})

	outcome := effects.Terminal(round)
	if tx.Appeal.LeaderTimeout {
		outcome = effects.Terminal(txtypes.RoundLeaderTimeoutAppealSuccessful)
	}

	return effects.Decision{Post: post, Outcome: outcome}
}

func acceptedRound(tx *txtypes.Transaction) txtypes.Round {
	switch {
	case tx.Appeal.Undetermined:
		return txtypes.RoundLeaderAppealSuccessful
	case tx.Appeal.Appealed:
		return txtypes.RoundValidatorAppealFailed
	default:
		return txtypes.RoundAccepted
	}
}
