// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package httpexecutor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/txconsensus/executor"
	"github.com/luxfi/txconsensus/txtypes"
)

func TestExecute_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req execRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, txtypes.Hash("0xtx"), req.TransactionHash)

		_ = json.NewEncoder(w).Encode(execResponse{
			Receipt: txtypes.Receipt{ExecutionResult: txtypes.ExecutionSuccess},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	receipt, err := c.Execute(context.Background(), executor.Request{
		Transaction: &txtypes.Transaction{Hash: "0xtx"},
		Mode:        executor.ModeLeader,
	})
	require.NoError(t, err)
	require.Equal(t, txtypes.ExecutionSuccess, receipt.ExecutionResult)
}

func TestExecute_NonOKStatusReturnsFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(execResponse{ErrorCode: "genvm_crash", Fatal: true, IsLeader: true})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Execute(context.Background(), executor.Request{
		Transaction: &txtypes.Transaction{Hash: "0xtx"},
		Mode:        executor.ModeLeader,
	})
	require.Error(t, err)

	fault, ok := executor.AsFault(err)
	require.True(t, ok)
	require.True(t, fault.Fatal)
	require.True(t, fault.IsLeader)
	require.Equal(t, "genvm_crash", fault.ErrorCode)
}

func TestExecute_TransportErrorReturnsFatalLeaderFault(t *testing.T) {
	c := New("http://127.0.0.1:0")
	_, err := c.Execute(context.Background(), executor.Request{
		Transaction: &txtypes.Transaction{Hash: "0xtx"},
		Mode:        executor.ModeLeader,
	})
	require.Error(t, err)

	fault, ok := executor.AsFault(err)
	require.True(t, ok)
	require.True(t, fault.Fatal)
	require.True(t, fault.IsLeader)
}
