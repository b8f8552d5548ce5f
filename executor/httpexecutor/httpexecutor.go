// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package httpexecutor is the executor.Executor implementation that
// calls the Node / GenVM Manager sandbox over HTTP (spec §6.2). No
// client library in the example pack covers this transport, so it is
// built directly on net/http, as is the rollup bridge client in
// rollup/httprollup.
package httpexecutor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/luxfi/txconsensus/executor"
	"github.com/luxfi/txconsensus/txtypes"
)

// Client calls a GenVM Manager instance at BaseURL.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New returns a Client with a default http.Client.
func New(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTPClient: http.DefaultClient}
}

type execRequest struct {
	TransactionHash  txtypes.Hash      `json:"transaction_hash"`
	ToAddress        txtypes.Address   `json:"to_address"`
	Data             []byte            `json:"data"`
	Mode             executor.Mode     `json:"mode"`
	ValidatorAddress txtypes.Address   `json:"validator_address"`
	LLMProvider      string            `json:"llm_provider"`
	Fallback         string            `json:"fallback,omitempty"`
	LeaderReceipt    *txtypes.Receipt  `json:"leader_receipt,omitempty"`
	ContractSnapshot map[string][]byte `json:"contract_snapshot,omitempty"`
}

type execResponse struct {
	Receipt   txtypes.Receipt `json:"receipt"`
	ErrorCode string          `json:"error_code,omitempty"`
	Fatal     bool            `json:"fatal,omitempty"`
	IsLeader  bool            `json:"is_leader,omitempty"`
	Causes    []string        `json:"causes,omitempty"`
}

// Execute implements executor.Executor.
func (c *Client) Execute(ctx context.Context, req executor.Request) (txtypes.Receipt, error) {
	body, err := json.Marshal(execRequest{
		TransactionHash:  req.Transaction.Hash,
		ToAddress:        req.Transaction.ToAddress,
		Data:             req.Transaction.Data,
		Mode:             req.Mode,
		ValidatorAddress: req.Validator.Address,
		LLMProvider:      req.Validator.LLMProvider,
		Fallback:         req.Validator.Fallback,
		LeaderReceipt:    req.LeaderReceipt,
		ContractSnapshot: req.ContractSnapshot,
	})
	if err != nil {
		return txtypes.Receipt{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return txtypes.Receipt{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return txtypes.Receipt{}, executor.NewFault("transport_error", true, req.Mode == executor.ModeLeader, err)
	}
	defer resp.Body.Close()

	var out execResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return txtypes.Receipt{}, fmt.Errorf("httpexecutor: decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return txtypes.Receipt{}, executor.NewFault(out.ErrorCode, out.Fatal, out.IsLeader, fmt.Errorf("genvm manager returned %d", resp.StatusCode))
	}

	return out.Receipt, nil
}
