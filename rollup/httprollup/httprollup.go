// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package httprollup is the rollup.Bridge implementation that calls the
// chain-facing rollup service over HTTP (spec §6.3). Like httpexecutor,
// this transport has no pack-provided client library, so it is built
// directly on net/http.
package httprollup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/luxfi/txconsensus/rollup"
	"github.com/luxfi/txconsensus/txtypes"
)

// Client calls a rollup bridge service at BaseURL.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New returns a Client with a default http.Client.
func New(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTPClient: http.DefaultClient}
}

type eventRequest struct {
	Name            rollup.EventName            `json:"name"`
	Account         txtypes.Address             `json:"account"`
	TransactionHash txtypes.Hash                `json:"transaction_hash"`
	Children        []txtypes.PendingTransaction `json:"children,omitempty"`
}

type eventResponse struct {
	ChildHashes []txtypes.Hash `json:"child_hashes,omitempty"`
}

// EmitTransactionEvent implements rollup.Bridge.
func (c *Client) EmitTransactionEvent(ctx context.Context, call rollup.Call) (rollup.Result, error) {
	body, err := json.Marshal(eventRequest{
		Name:            call.Name,
		Account:         call.Account,
		TransactionHash: call.TransactionHash,
		Children:        call.Children,
	})
	if err != nil {
		return rollup.Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/events", bytes.NewReader(body))
	if err != nil {
		return rollup.Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return rollup.Result{}, fmt.Errorf("httprollup: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return rollup.Result{}, fmt.Errorf("httprollup: rollup service returned %d", resp.StatusCode)
	}

	var out eventResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return rollup.Result{}, fmt.Errorf("httprollup: decode response: %w", err)
	}
	return rollup.Result{ChildHashes: out.ChildHashes}, nil
}
