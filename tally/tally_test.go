// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package tally

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/txconsensus/txtypes"
)

func votes(vs ...txtypes.Vote) map[txtypes.Address]txtypes.Vote {
	out := make(map[txtypes.Address]txtypes.Vote, len(vs))
	for i, v := range vs {
		out[txtypes.Address(string(rune('a'+i)))] = v
	}
	return out
}

func TestTally(t *testing.T) {
	tests := []struct {
		name string
		vs   []txtypes.Vote
		want Result
	}{
		{
			name: "all agree",
			vs:   []txtypes.Vote{txtypes.VoteAgree, txtypes.VoteAgree, txtypes.VoteAgree, txtypes.VoteAgree, txtypes.VoteAgree},
			want: MajorityAgree,
		},
		{
			name: "all disagree",
			vs:   []txtypes.Vote{txtypes.VoteDisagree, txtypes.VoteDisagree, txtypes.VoteDisagree},
			want: MajorityDisagree,
		},
		{
			name: "all timeout",
			vs:   []txtypes.Vote{txtypes.VoteTimeout, txtypes.VoteTimeout, txtypes.VoteTimeout},
			want: Timeout,
		},
		{
			name: "idle counts as disagree",
			vs:   []txtypes.Vote{txtypes.VoteIdle, txtypes.VoteIdle, txtypes.VoteIdle, txtypes.VoteAgree},
			want: MajorityDisagree,
		},
		{
			name: "exact tie is no majority",
			vs:   []txtypes.Vote{txtypes.VoteAgree, txtypes.VoteAgree, txtypes.VoteDisagree, txtypes.VoteDisagree},
			want: NoMajority,
		},
		{
			name: "three-way split is no majority",
			vs:   []txtypes.Vote{txtypes.VoteAgree, txtypes.VoteDisagree, txtypes.VoteTimeout},
			want: NoMajority,
		},
		{
			name: "single agree vote is trivially majority",
			vs:   []txtypes.Vote{txtypes.VoteAgree},
			want: MajorityAgree,
		},
		{
			name: "single idle vote trivially tallies as disagree",
			vs:   []txtypes.Vote{txtypes.VoteIdle},
			want: MajorityDisagree,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Tally(votes(tt.vs...)))
		})
	}
}

func TestTally_Deterministic(t *testing.T) {
	vs := votes(txtypes.VoteAgree, txtypes.VoteAgree, txtypes.VoteDisagree, txtypes.VoteIdle, txtypes.VoteTimeout)
	first := Tally(vs)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Tally(vs))
	}
}
