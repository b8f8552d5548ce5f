// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package effects

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/luxfi/txconsensus/eventbus"
	"github.com/luxfi/txconsensus/rollup"
	"github.com/luxfi/txconsensus/store/storemock"
	"github.com/luxfi/txconsensus/txtypes"
)

type childCapturingRollup struct {
	hashes []txtypes.Hash
}

func (r childCapturingRollup) EmitTransactionEvent(ctx context.Context, call rollup.Call) (rollup.Result, error) {
	if len(call.Children) == 0 {
		return rollup.Result{}, nil
	}
	return rollup.Result{ChildHashes: r.hashes}, nil
}

func TestApply_SetConsensusData_PersistsVotesAndValidators(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := storemock.NewStore(ctrl)
	st.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	runner := &Runner{Store: st, Bus: eventbus.NewNoOp(), Rollup: childCapturingRollup{}, WorkerID: "w1"}
	tx := &txtypes.Transaction{Hash: "0xtx"}

	err := runner.Apply(context.Background(), tx, []Effect{
		SetConsensusData{
			Votes:      map[txtypes.Address]txtypes.Vote{"a": txtypes.VoteAgree},
			Validators: []txtypes.Receipt{{NodeConfig: "a"}},
		},
	})

	require.NoError(t, err)
	require.Equal(t, txtypes.VoteAgree, tx.ConsensusData.Votes["a"])
	require.Len(t, tx.ConsensusData.Validators, 1)
}

func TestApply_EmitRollupEvent_InsertsChildrenCascadingParentConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := storemock.NewStore(ctrl)

	var inserted *txtypes.Transaction
	st.EXPECT().InsertTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, tx *txtypes.Transaction) error {
			inserted = tx
			return nil
		})

	runner := &Runner{
		Store:  st,
		Bus:    eventbus.NewNoOp(),
		Rollup: childCapturingRollup{hashes: []txtypes.Hash{"0xchild"}},
	}
	parent := &txtypes.Transaction{
		Hash:                 "0xparent",
		ToAddress:            "0xcontract",
		ExecutionMode:        txtypes.ModeLeaderOnly,
		ConfigRotationRounds: 3,
		NumInitialValidators: 5,
		SimConfig:            []byte(`{"k":"v"}`),
	}

	err := runner.Apply(context.Background(), parent, []Effect{
		EmitRollupEvent{
			Name:            "emitTransactionAccepted",
			TransactionHash: parent.Hash,
			PendingTransactions: []txtypes.PendingTransaction{
				{Type: txtypes.TxRunContract, On: txtypes.TriggerOnAccepted},
			},
		},
	})

	require.NoError(t, err)
	require.NotNil(t, inserted)
	require.Equal(t, txtypes.Hash("0xchild"), inserted.Hash)
	require.Equal(t, parent.Hash, inserted.Parentage.TriggeredByHash)
	require.Equal(t, parent.ExecutionMode, inserted.ExecutionMode)
	require.Equal(t, parent.ConfigRotationRounds, inserted.ConfigRotationRounds)
	require.Equal(t, parent.NumInitialValidators, inserted.NumInitialValidators)
	require.Equal(t, parent.SimConfig, inserted.SimConfig)
}
