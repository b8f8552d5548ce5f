// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package decision

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/txconsensus/effects"
	"github.com/luxfi/txconsensus/txtypes"
)

func TestProposingPre_Rotated_EmitsLeaderRotatedAndClearsFlag(t *testing.T) {
	tx := &txtypes.Transaction{Hash: "0xtx"}
	ctx := &RoundContext{
		Leader:  txtypes.Validator{Address: "newleader"},
		Rotated: true,
	}

	d := ProposingPre(tx, ctx)

	require.False(t, ctx.Rotated, "expected Rotated to be cleared after emission")

	found := false
	for _, e := range d.Pre {
		if ev, ok := e.(effects.EmitRollupEvent); ok && ev.Name == "emitTransactionLeaderRotated" {
			found = true
			require.Equal(t, txtypes.Address("newleader"), ev.Account)
		}
	}
	require.True(t, found, "expected emitTransactionLeaderRotated rollup event")
}

func TestProposingPre_NotRotated_NoRotationEvent(t *testing.T) {
	tx := &txtypes.Transaction{Hash: "0xtx"}
	ctx := &RoundContext{Leader: txtypes.Validator{Address: "l"}}

	d := ProposingPre(tx, ctx)

	for _, e := range d.Pre {
		if ev, ok := e.(effects.EmitRollupEvent); ok {
			require.NotEqual(t, "emitTransactionLeaderRotated", ev.Name)
		}
	}
}

func TestProposingPre_Activate_EmitsActivatedEvent(t *testing.T) {
	tx := &txtypes.Transaction{Hash: "0xtx"}
	ctx := &RoundContext{Leader: txtypes.Validator{Address: "l"}, Activate: true}

	d := ProposingPre(tx, ctx)

	found := false
	for _, e := range d.Pre {
		if ev, ok := e.(effects.EmitRollupEvent); ok && ev.Name == "emitTransactionActivated" {
			found = true
		}
	}
	require.True(t, found, "expected emitTransactionActivated rollup event")
}

func TestProposingPost_EmitsReceiptProposedEvent(t *testing.T) {
	tx := &txtypes.Transaction{Hash: "0xtx", ExecutionMode: txtypes.ModeNormal}
	ctx := &RoundContext{
		Leader:        txtypes.Validator{Address: "l"},
		LeaderReceipt: &txtypes.Receipt{},
	}

	d := ProposingPost(tx, ctx)

	found := false
	for _, e := range d.Post {
		if ev, ok := e.(effects.EmitRollupEvent); ok && ev.Name == "emitTransactionReceiptProposed" {
			found = true
		}
	}
	require.True(t, found, "expected emitTransactionReceiptProposed rollup event")
	require.NotNil(t, d.Outcome.NextStatus)
	require.Equal(t, txtypes.StatusCommitting, *d.Outcome.NextStatus)
}
