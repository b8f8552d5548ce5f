// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package decision implements the pure decision layer of spec §4.3: one
// decide_<state> function per complex state, each a side-effect-free
// function from scalar inputs to an ordered effects.Decision. The
// statemachine package is the thin interpreter: it calls a decide_*
// function, applies Pre, performs the one impure action proper to that
// state (an executor call, a validator draw, a contract-state read),
// then applies Post. Nothing in this package touches a store, a clock
// (beyond values passed in), the event bus, or the executor.
package decision

import (
	"github.com/luxfi/txconsensus/tally"
	"github.com/luxfi/txconsensus/txtypes"
)

// RoundContext is the ephemeral working state of one transaction
// attempt: the validator snapshot drawn for it, the leader/committee
// split, and the votes/receipts gathered so far. It is never persisted
// directly — decision functions translate the parts of it that matter
// into effects (UpdateConsensusHistory, SetTransactionResult, and so
// on) at the points the protocol requires durability.
type RoundContext struct {
	Validators txtypes.Snapshot
	Leader     txtypes.Validator
	Committee  txtypes.Snapshot

	LeaderReceipt      *txtypes.Receipt
	SelfValidateReceipt *txtypes.Receipt
	ValidatorReceipts  map[txtypes.Address]txtypes.Receipt

	// Activate mirrors §4.2.1's activate flag: whether Proposing should
	// emit "transaction activated".
	Activate bool

	// Rotated is set by Revealing's rotation branch so the next Proposing
	// entry knows to emit "emitTransactionLeaderRotated" once the new
	// leader has been drawn (the event needs the new leader's address,
	// which Revealing itself does not have).
	Rotated bool
}

// Votes extracts the vote map from gathered validator receipts, for
// handoff to tally.Tally.
func (c *RoundContext) Votes() map[txtypes.Address]txtypes.Vote {
	votes := make(map[txtypes.Address]txtypes.Vote, len(c.ValidatorReceipts))
	for addr, r := range c.ValidatorReceipts {
		votes[addr] = r.Vote
	}
	return votes
}

// TallyResult computes the strict-majority consensus result over the
// gathered committee votes (§4.8).
func (c *RoundContext) TallyResult() tally.Result {
	return tally.Tally(c.Votes())
}
