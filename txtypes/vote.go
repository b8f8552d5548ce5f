// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package txtypes

// Vote is a single validator's verdict on a proposed execution (§3.3).
// IDLE denotes an infrastructure failure — the validator never produced
// a real vote — and tallies as DISAGREE; it is kept distinct from
// DISAGREE so callers can report it (and feed it to health tracking)
// without losing the fact that it isn't a considered verdict.
type Vote string

const (
	VoteAgree    Vote = "AGREE"
	VoteDisagree Vote = "DISAGREE"
	VoteTimeout  Vote = "TIMEOUT"
	VoteIdle     Vote = "IDLE"
)

// OnChain maps IDLE to TIMEOUT, the mapping used when emitting
// "vote revealed" events for on-chain compatibility (§4.2.4).
func (v Vote) OnChain() Vote {
	if v == VoteIdle {
		return VoteTimeout
	}
	return v
}
