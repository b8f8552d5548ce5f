// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package tally implements deterministic vote tallying (spec §4.8): a
// pure function from a multiset of votes to a consensus Result, used by
// the Revealing decision function.
package tally

import (
	"github.com/luxfi/txconsensus/internal/collections/bag"
	"github.com/luxfi/txconsensus/txtypes"
)

// Result is the outcome of tallying a round's votes.
type Result string

const (
	Timeout          Result = "TIMEOUT"
	MajorityAgree    Result = "MAJORITY_AGREE"
	MajorityDisagree Result = "MAJORITY_DISAGREE"
	NoMajority       Result = "NO_MAJORITY"
)

// Tally applies the majority rule to votes: a result wins only with
// strictly more votes than each of the other two categories. IDLE counts
// as DISAGREE. A tie for the highest count, such as an exact 50/50
// split, is NoMajority, including the timeout/agree/disagree three-way
// tie.
func Tally(votes map[txtypes.Address]txtypes.Vote) Result {
	counts := bag.New[txtypes.Vote]()
	for _, v := range votes {
		if v == txtypes.VoteIdle {
			counts.Add(txtypes.VoteDisagree)
			continue
		}
		counts.Add(v)
	}

	a := counts.Count(txtypes.VoteAgree)
	d := counts.Count(txtypes.VoteDisagree)
	t := counts.Count(txtypes.VoteTimeout)

	switch {
	case t > a && t > d:
		return Timeout
	case a > d && a > t:
		return MajorityAgree
	case d > a && d > t:
		return MajorityDisagree
	default:
		return NoMajority
	}
}
