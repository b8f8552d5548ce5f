// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package triggered

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/txconsensus/txtypes"
)

func TestDerive_DeterministicForSameSalt(t *testing.T) {
	d := &Deriver{}
	children := []txtypes.PendingTransaction{
		{Type: txtypes.TxDeployContract, SaltNonce: 7},
	}

	first, err := d.Derive("0xparent", children)
	require.NoError(t, err)
	second, err := d.Derive("0xparent", children)
	require.NoError(t, err)

	require.Equal(t, first[0].ToAddress, second[0].ToAddress)
	require.NotEmpty(t, first[0].ToAddress)
}

func TestDerive_DifferentSaltsYieldDifferentAddresses(t *testing.T) {
	d := &Deriver{}
	a, err := d.Derive("0xparent", []txtypes.PendingTransaction{{Type: txtypes.TxDeployContract, SaltNonce: 1}})
	require.NoError(t, err)
	b, err := d.Derive("0xparent", []txtypes.PendingTransaction{{Type: txtypes.TxDeployContract, SaltNonce: 2}})
	require.NoError(t, err)

	require.NotEqual(t, a[0].ToAddress, b[0].ToAddress)
}

func TestDerive_ZeroSaltProducesRandomDistinctAddresses(t *testing.T) {
	d := &Deriver{}
	children := []txtypes.PendingTransaction{{Type: txtypes.TxDeployContract, SaltNonce: 0}}

	a, err := d.Derive("0xparent", children)
	require.NoError(t, err)
	b, err := d.Derive("0xparent", children)
	require.NoError(t, err)

	require.NotEqual(t, a[0].ToAddress, b[0].ToAddress)
}

func TestDerive_LeavesExplicitToAddressAlone(t *testing.T) {
	d := &Deriver{}
	children := []txtypes.PendingTransaction{
		{Type: txtypes.TxRunContract, ToAddress: "0xexisting"},
	}

	out, err := d.Derive("0xparent", children)
	require.NoError(t, err)
	require.Equal(t, txtypes.Address("0xexisting"), out[0].ToAddress)
}
