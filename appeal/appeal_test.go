// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package appeal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/luxfi/txconsensus/effects"
	"github.com/luxfi/txconsensus/eventbus"
	"github.com/luxfi/txconsensus/rollup"
	"github.com/luxfi/txconsensus/store/storemock"
	"github.com/luxfi/txconsensus/txtypes"
)

func newSubmitter(t *testing.T) (*Submitter, *storemock.Store) {
	ctrl := gomock.NewController(t)
	st := storemock.NewStore(ctrl)
	runner := &effects.Runner{Store: st, Bus: eventbus.NewNoOp(), Rollup: noopRollup{}, WorkerID: "w1"}
	return &Submitter{Store: st, Runner: runner}, st
}

type noopRollup struct{}

func (noopRollup) EmitTransactionEvent(context.Context, rollup.Call) (rollup.Result, error) {
	return rollup.Result{}, nil
}

func TestSubmit_AtCapacity_ReturnsErrAtCapacity(t *testing.T) {
	s, _ := newSubmitter(t)
	tx := &txtypes.Transaction{
		Hash:                "0xtx",
		NumInitialValidators: 5,
		ConsensusData:        txtypes.ConsensusData{LeaderReceipt: []txtypes.Receipt{{}}},
	}

	err := s.Submit(context.Background(), tx, TierValidators, 1, time.Unix(0, 0))
	require.ErrorIs(t, err, ErrAtCapacity)
}

func TestSubmit_HappyPath_SetsFlagsAndRequeues(t *testing.T) {
	s, st := newSubmitter(t)
	tx := &txtypes.Transaction{
		Hash:                 "0xtx",
		ToAddress:            "0xcontract",
		NumInitialValidators: 1,
	}

	st.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil).Times(3)

	err := s.Submit(context.Background(), tx, TierLeaderTimeout, 1000, time.Unix(42, 0))
	require.NoError(t, err)
	require.True(t, tx.Appeal.LeaderTimeout)
	require.Equal(t, txtypes.StatusPending, tx.Status)
	require.NotNil(t, tx.Appeal.TimestampAppeal)
}

func TestSubmit_DoesNotRollBackAtSubmissionTime(t *testing.T) {
	// The rollback of newer sibling transactions only happens once
	// Revealing confirms the appeal actually flipped the outcome
	// (§4.6's rollback law) — Submit itself must never touch the
	// contract's accepted tree, even when a snapshot is present.
	s, st := newSubmitter(t)
	snapshot := &txtypes.ContractSnapshot{ToAddress: "0xcontract", Slots: map[string][]byte{"a": []byte("1")}}
	tx := &txtypes.Transaction{
		Hash:                 "0xtx",
		ToAddress:            "0xcontract",
		NumInitialValidators: 1,
		ContractSnapshot:     snapshot,
	}

	st.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil).Times(3)

	err := s.Submit(context.Background(), tx, TierValidators, 1000, time.Unix(0, 0))
	require.NoError(t, err)
}

func TestFieldFor(t *testing.T) {
	require.Equal(t, effects.AppealFieldUndetermined, fieldFor(TierLeader))
	require.Equal(t, effects.AppealFieldLeaderTimeout, fieldFor(TierLeaderTimeout))
	require.Equal(t, effects.AppealFieldAppealed, fieldFor(TierValidators))
}
