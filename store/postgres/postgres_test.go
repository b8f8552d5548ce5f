// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/txconsensus/store"
	"github.com/luxfi/txconsensus/txtypes"
)

func TestClaimPredicates_CoverEveryClaimKind(t *testing.T) {
	for _, kind := range []store.ClaimKind{store.ClaimAppeal, store.ClaimFinalization, store.ClaimPending} {
		predicate, ok := claimPredicates[kind]
		require.True(t, ok, "missing predicate for claim kind %d", kind)
		require.NotEmpty(t, predicate)
	}
}

func TestIsUniqueViolation_DetectsPostgresCode23505(t *testing.T) {
	require.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	require.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.False(t, isUniqueViolation(nil))
}

func TestToTransaction_MapsColumnsToFields(t *testing.T) {
	r := row{
		Hash:          "0xabc",
		ToAddress:     "0xcontract",
		Type:          "RUN_CONTRACT",
		Status:        "PENDING",
		ExecutionMode: "LEADER_AND_VALIDATORS",
		WorkerID:      "worker-1",
	}

	tx, err := toTransaction(r)
	require.NoError(t, err)
	require.Equal(t, txtypes.Hash("0xabc"), tx.Hash)
	require.Equal(t, txtypes.Address("0xcontract"), tx.ToAddress)
	require.Equal(t, txtypes.StatusPending, tx.Status)
	require.Equal(t, "worker-1", tx.Lease.WorkerID)
}

func TestToTransaction_EmptyJSONColumnsDoNotError(t *testing.T) {
	r := row{Hash: "0xabc", Status: "PENDING"}

	_, err := toTransaction(r)
	require.NoError(t, err)
}
