// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package decision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/txconsensus/effects"
	"github.com/luxfi/txconsensus/txtypes"
)

func TestRevealing_AllAgree_Accepted(t *testing.T) {
	tx := &txtypes.Transaction{}
	ctx := &RoundContext{
		LeaderReceipt: &txtypes.Receipt{Vote: txtypes.VoteAgree},
		ValidatorReceipts: map[txtypes.Address]txtypes.Receipt{
			"a": {Vote: txtypes.VoteAgree},
			"b": {Vote: txtypes.VoteAgree},
		},
	}
	now := time.Unix(1000, 0)

	d := Revealing(tx, ctx, now)

	require.Len(t, d.Post, 3) // 2 vote-revealed + 1 history update
	require.IsType(t, effects.EmitRollupEvent{}, d.Post[0])
	require.IsType(t, effects.EmitRollupEvent{}, d.Post[1])
	hist, ok := d.Post[2].(effects.UpdateConsensusHistory)
	require.True(t, ok)
	require.Equal(t, txtypes.RoundAccepted, hist.Entry.Round)

	require.NotNil(t, d.Outcome.NextStatus)
	require.Equal(t, txtypes.StatusAccepted, *d.Outcome.NextStatus)
	require.Nil(t, d.Outcome.Round)
}

func TestRevealing_Disagree_RotatesLeader(t *testing.T) {
	tx := &txtypes.Transaction{RotationCount: 0, ConfigRotationRounds: 2}
	ctx := &RoundContext{
		ValidatorReceipts: map[txtypes.Address]txtypes.Receipt{
			"a": {Vote: txtypes.VoteDisagree},
			"b": {Vote: txtypes.VoteDisagree},
			"c": {Vote: txtypes.VoteDisagree},
		},
	}

	d := Revealing(tx, ctx, time.Unix(0, 0))

	require.NotNil(t, d.Outcome.NextStatus)
	require.Equal(t, txtypes.StatusProposing, *d.Outcome.NextStatus)

	found := false
	for _, e := range d.Post {
		if _, ok := e.(effects.IncreaseRotationCount); ok {
			found = true
		}
	}
	require.True(t, found, "expected IncreaseRotationCount effect")
}

func TestRevealing_Disagree_RotationsExhausted_Undetermined(t *testing.T) {
	tx := &txtypes.Transaction{RotationCount: 2, ConfigRotationRounds: 2}
	ctx := &RoundContext{
		ValidatorReceipts: map[txtypes.Address]txtypes.Receipt{
			"a": {Vote: txtypes.VoteDisagree},
		},
	}

	d := Revealing(tx, ctx, time.Unix(0, 0))

	require.NotNil(t, d.Outcome.NextStatus)
	require.Equal(t, txtypes.StatusUndetermined, *d.Outcome.NextStatus)
}

func TestRevealing_AppealSucceeds(t *testing.T) {
	tx := &txtypes.Transaction{Appeal: txtypes.Appeal{Appealed: true, Failed: 1}}
	ctx := &RoundContext{
		ValidatorReceipts: map[txtypes.Address]txtypes.Receipt{
			"a": {Vote: txtypes.VoteDisagree},
			"b": {Vote: txtypes.VoteDisagree},
		},
	}

	d := Revealing(tx, ctx, time.Unix(0, 0))

	require.Nil(t, d.Outcome.NextStatus)
	require.NotNil(t, d.Outcome.Round)
	require.Equal(t, txtypes.RoundValidatorAppealSuccessful, *d.Outcome.Round)

	resetFound := false
	for _, e := range d.Post {
		if sf, ok := e.(effects.SetAppealFailed); ok && sf.Value == 0 {
			resetFound = true
		}
	}
	require.True(t, resetFound, "expected appeal_failed reset to 0")
}

func TestRevealing_AppealedMajorityAgree_FailsAppeal(t *testing.T) {
	tx := &txtypes.Transaction{Appeal: txtypes.Appeal{Appealed: true}}
	ctx := &RoundContext{
		ValidatorReceipts: map[txtypes.Address]txtypes.Receipt{
			"a": {Vote: txtypes.VoteAgree},
			"b": {Vote: txtypes.VoteAgree},
		},
	}

	d := Revealing(tx, ctx, time.Unix(0, 0))

	require.NotNil(t, d.Outcome.NextStatus)
	require.Equal(t, txtypes.StatusAccepted, *d.Outcome.NextStatus)
}

func TestRevealing_AppealFails_WhenMergedPriorVotesTallyAgree(t *testing.T) {
	// Two prior AGREE votes plus one new DISAGREE this round would tally
	// MAJORITY_AGREE if merged, which fails the appeal (tx.Appeal.Appealed
	// + MAJORITY_AGREE); without the merge the new round alone is a lone
	// DISAGREE, which would incorrectly read as appeal success.
	tx := &txtypes.Transaction{
		Appeal: txtypes.Appeal{Appealed: true},
		ConsensusData: txtypes.ConsensusData{
			Votes: map[txtypes.Address]txtypes.Vote{
				"a": txtypes.VoteAgree,
				"b": txtypes.VoteAgree,
			},
			Validators: []txtypes.Receipt{{NodeConfig: "a"}, {NodeConfig: "b"}},
		},
	}
	ctx := &RoundContext{
		ValidatorReceipts: map[txtypes.Address]txtypes.Receipt{
			"c": {Vote: txtypes.VoteDisagree},
		},
	}

	d := Revealing(tx, ctx, time.Unix(0, 0))

	require.NotNil(t, d.Outcome.NextStatus)
	require.Equal(t, txtypes.StatusAccepted, *d.Outcome.NextStatus)
}

func TestRevealing_AppealSucceeds_RollsBackWhenSnapshotPresent(t *testing.T) {
	snapshot := &txtypes.ContractSnapshot{ToAddress: "0xcontract"}
	tx := &txtypes.Transaction{
		Hash:             "0xtx",
		ToAddress:        "0xcontract",
		Appeal:           txtypes.Appeal{Appealed: true, Failed: 1},
		ContractSnapshot: snapshot,
	}
	ctx := &RoundContext{
		ValidatorReceipts: map[txtypes.Address]txtypes.Receipt{
			"a": {Vote: txtypes.VoteDisagree},
			"b": {Vote: txtypes.VoteDisagree},
		},
	}

	d := Revealing(tx, ctx, time.Unix(0, 0))

	var rollback *effects.Rollback
	for _, e := range d.Post {
		if r, ok := e.(effects.Rollback); ok {
			rollback = &r
		}
	}
	require.NotNil(t, rollback, "expected a Rollback effect on confirmed appeal success")
	require.Equal(t, tx.ToAddress, rollback.ToAddress)
	require.Equal(t, tx.Hash, rollback.NewerThan)
	require.Equal(t, snapshot, rollback.Snapshot)
}

func TestMergeAppealValidators_Table(t *testing.T) {
	t.Run("appeal_failed_0_appends_all", func(t *testing.T) {
		votes, vals := mergeAppealValidators(
			map[txtypes.Address]txtypes.Vote{"a": txtypes.VoteAgree},
			map[txtypes.Address]txtypes.Vote{"b": txtypes.VoteDisagree},
			[]txtypes.Receipt{{NodeConfig: "v1"}, {NodeConfig: "v2"}},
			[]txtypes.Receipt{{NodeConfig: "v3"}, {NodeConfig: "v4"}},
			0,
		)
		require.Equal(t, txtypes.VoteAgree, votes["a"])
		require.Equal(t, txtypes.VoteDisagree, votes["b"])
		require.Len(t, vals, 4)
	})

	t.Run("appeal_failed_1_keeps_prefix", func(t *testing.T) {
		existing := []txtypes.Receipt{{NodeConfig: "0"}, {NodeConfig: "1"}, {NodeConfig: "2"}, {NodeConfig: "3"}, {NodeConfig: "4"}}
		current := []txtypes.Receipt{{NodeConfig: "n1"}, {NodeConfig: "n2"}, {NodeConfig: "n3"}}
		_, vals := mergeAppealValidators(nil, nil, existing, current, 1)
		// n = (5-1)//2 = 2, prefix = existing[:n-1] = existing[:1]
		require.Equal(t, []txtypes.Receipt{{NodeConfig: "0"}, {NodeConfig: "n1"}, {NodeConfig: "n2"}, {NodeConfig: "n3"}}, vals)
	})

	t.Run("votes_merged_current_overrides", func(t *testing.T) {
		votes, _ := mergeAppealValidators(
			map[txtypes.Address]txtypes.Vote{"a": txtypes.VoteAgree, "b": txtypes.VoteDisagree},
			map[txtypes.Address]txtypes.Vote{"b": txtypes.VoteAgree, "c": txtypes.VoteTimeout},
			nil, nil, 0,
		)
		require.Equal(t, txtypes.VoteAgree, votes["a"])
		require.Equal(t, txtypes.VoteAgree, votes["b"])
		require.Equal(t, txtypes.VoteTimeout, votes["c"])
	})
}
