// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package decision

import (
	"github.com/luxfi/txconsensus/effects"
	"github.com/luxfi/txconsensus/txtypes"
)

// Pending implements decide_pending (§4.2.1). The caller has already
// performed the impure validator-selection draw (selection.Selector);
// validators is that result. Pending itself only resets rotation
// bookkeeping, announces the attempt (unless this is an appeal
// re-entry), and decides the activate flag Proposing will consume.
func Pending(tx *txtypes.Transaction, validators txtypes.Snapshot) (effects.Decision, *RoundContext) {
	isAppealReentry := tx.Appeal.Any()

	pre := []effects.Effect{
		effects.ResetRotationCount{},
	}
	if !isAppealReentry {
		pre = append(pre, effects.SendMessage{Message: "executing"})
	}

	ctx := &RoundContext{
		Validators: validators,
		Activate:   !(tx.Appeal.Undetermined || tx.Appeal.LeaderTimeout),
	}

	return effects.Decision{
		Pre:     pre,
		Outcome: effects.NextStatus(txtypes.StatusProposing),
	}, ctx
}
