// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package httprollup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/txconsensus/rollup"
	"github.com/luxfi/txconsensus/txtypes"
)

func TestEmitTransactionEvent_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req eventRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, rollup.EventTransactionAccepted, req.Name)

		_ = json.NewEncoder(w).Encode(eventResponse{ChildHashes: []txtypes.Hash{"0xchild1"}})
	}))
	defer srv.Close()

	c := New(srv.URL)
	res, err := c.EmitTransactionEvent(context.Background(), rollup.Call{
		Name:            rollup.EventTransactionAccepted,
		TransactionHash: "0xparent",
	})
	require.NoError(t, err)
	require.Equal(t, []txtypes.Hash{"0xchild1"}, res.ChildHashes)
}

func TestEmitTransactionEvent_NonOKStatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.EmitTransactionEvent(context.Background(), rollup.Call{Name: rollup.EventVoteCommitted})
	require.Error(t, err)
}
