// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package decision

import (
	"github.com/luxfi/txconsensus/effects"
	"github.com/luxfi/txconsensus/txtypes"
)

// ProposingPre implements the shuffle-and-announce half of decide_proposing
// (§4.2.2), run before the leader executor call. Shuffling itself is an
// impure draw performed by the caller (selection.Selector); ctx arrives
// with Leader/Committee already populated. For LEADER_ONLY and
// LEADER_SELF_VALIDATOR modes the committee is cleared here since
// validation will be skipped or leader-only. If this entry follows a
// leader rotation (ctx.Rotated, set by Revealing), it also emits the
// rotation event now that the new leader is known.
func ProposingPre(tx *txtypes.Transaction, ctx *RoundContext) effects.Decision {
	if tx.ExecutionMode == txtypes.ModeLeaderOnly || tx.ExecutionMode == txtypes.ModeLeaderSelfValidator {
		ctx.Committee = nil
	}

	var pre []effects.Effect
	if ctx.Rotated {
		pre = append(pre, effects.EmitRollupEvent{
			Name:            "emitTransactionLeaderRotated",
			Account:         ctx.Leader.Address,
			TransactionHash: tx.Hash,
		})
		ctx.Rotated = false
	}
	if ctx.Activate {
		pre = append(pre, effects.EmitRollupEvent{
			Name:            "emitTransactionActivated",
			Account:         ctx.Leader.Address,
			TransactionHash: tx.Hash,
		})
	}
	return effects.Decision{Pre: pre}
}

// ProposingPost implements the leader-receipt handling and outcome
// routing of decide_proposing, run after the leader executor call
// returns ctx.LeaderReceipt.
func ProposingPost(tx *txtypes.Transaction, ctx *RoundContext) effects.Decision {
	receipt := ctx.LeaderReceipt

	post := []effects.Effect{
		effects.EmitRollupEvent{
			Name:            "emitTransactionReceiptProposed",
			Account:         ctx.Leader.Address,
			TransactionHash: tx.Hash,
		},
	}

	switch {
	case receipt.TimedOut():
		return effects.Decision{
			Post:    post,
			Outcome: effects.NextStatus(txtypes.StatusLeaderTimeout),
		}
	case tx.ExecutionMode == txtypes.ModeLeaderOnly:
		agreed := *receipt
		agreed.Vote = txtypes.VoteAgree
		ctx.LeaderReceipt = &agreed
		return effects.Decision{
			Post:    post,
			Outcome: effects.NextStatus(txtypes.StatusAccepted),
		}
	default:
		return effects.Decision{
			Post:    post,
			Outcome: effects.NextStatus(txtypes.StatusCommitting),
		}
	}
}
