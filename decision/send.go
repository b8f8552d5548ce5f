// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package decision

import (
	"github.com/luxfi/txconsensus/effects"
	"github.com/luxfi/txconsensus/txtypes"
)

// Send implements the native transfer path of §4.7: a SEND transaction
// never enters the consensus rounds. insufficientBalance is supplied by
// the caller, which alone knows the sender's current balance (the
// interpreter's impure read); Send only decides which effects and
// status follow from that.
func Send(tx *txtypes.Transaction, insufficientBalance bool) effects.Decision {
	if insufficientBalance {
		return effects.Decision{
			Post: []effects.Effect{
				effects.SetTransactionResult{ExecutionResult: txtypes.ExecutionError},
			},
			Outcome: effects.NextStatus(txtypes.StatusUndetermined),
		}
	}

	var post []effects.Effect
	if tx.FromAddress != "" || tx.ToAddress != "" {
		post = append(post, effects.TransferBalance{
			From:   tx.FromAddress,
			To:     tx.ToAddress,
			Amount: tx.Value,
		})
	}
	post = append(post,
		effects.SetTransactionResult{ExecutionResult: txtypes.ExecutionSuccess},
		effects.StatusUpdate{Status: txtypes.StatusFinalized},
	)

	return effects.Decision{
		Post:    post,
		Outcome: effects.Terminal(txtypes.RoundFinalized),
	}
}
