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

func TestAccepted_HappyPath_InsertsChildrenBeforeStatus(t *testing.T) {
	tx := &txtypes.Transaction{
		Hash:      "0xhash",
		ToAddress: "0xcontract",
		Type:      txtypes.TxRunContract,
	}
	ctx := &RoundContext{
		LeaderReceipt: &txtypes.Receipt{
			ExecutionResult: txtypes.ExecutionSuccess,
			ContractState:   map[string][]byte{"slot0": []byte("v")},
			PendingTransactions: []txtypes.PendingTransaction{
				{On: txtypes.TriggerOnAccepted, Type: txtypes.TxRunContract},
			},
		},
	}

	d := Accepted(tx, ctx, map[string][]byte{"slot0": []byte("old")}, time.Unix(500, 0))

	// EmitRollupEvent (which the interpreter resolves into child-row
	// inserts using the hashes it returns) must precede the terminal
	// StatusUpdate.
	var emitIdx, statusIdx = -1, -1
	for i, e := range d.Post {
		switch ev := e.(type) {
		case effects.EmitRollupEvent:
			emitIdx = i
			require.Len(t, ev.PendingTransactions, 1)
		case effects.StatusUpdate:
			statusIdx = i
		}
	}
	require.GreaterOrEqual(t, emitIdx, 0)
	require.GreaterOrEqual(t, statusIdx, 0)
	require.Less(t, emitIdx, statusIdx)

	require.NotNil(t, d.Outcome.Round)
	require.Equal(t, txtypes.RoundAccepted, *d.Outcome.Round)
}

func TestAccepted_AppealFailure_NoChildren(t *testing.T) {
	tx := &txtypes.Transaction{
		Hash:      "0xhash",
		ToAddress: "0xcontract",
		Appeal:    txtypes.Appeal{Appealed: true, Failed: 0},
	}
	ctx := &RoundContext{}

	d := Accepted(tx, ctx, nil, time.Unix(0, 0))

	for _, e := range d.Post {
		_, isInsert := e.(effects.InsertChildren)
		require.False(t, isInsert, "appeal-failure path must not insert children")
	}

	require.NotNil(t, d.Outcome.Round)
	require.Equal(t, txtypes.RoundValidatorAppealFailed, *d.Outcome.Round)
}

func TestAccepted_DeployContract_RegistersContract(t *testing.T) {
	tx := &txtypes.Transaction{
		Hash:      "0xhash",
		ToAddress: "0xnewcontract",
		Type:      txtypes.TxDeployContract,
	}
	ctx := &RoundContext{
		LeaderReceipt: &txtypes.Receipt{
			ExecutionResult: txtypes.ExecutionSuccess,
			ContractState:   map[string][]byte{"code": []byte("bytecode")},
		},
	}

	d := Accepted(tx, ctx, nil, time.Unix(0, 0))

	found := false
	for _, e := range d.Post {
		if reg, ok := e.(effects.RegisterContract); ok {
			found = true
			require.True(t, reg.DuplicateIsWarning)
		}
	}
	require.True(t, found, "expected RegisterContract effect for DEPLOY_CONTRACT")
}
