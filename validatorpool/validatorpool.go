// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package validatorpool is the registry boundary of spec §3.5: reading
// the current set of staked validator accounts eligible for selection.
// It is deliberately a separate collaborator from store.Store — the
// transactions table and the validators table are different aggregates
// with different write paths (validator stake changes outside the
// consensus core entirely, via staking transactions this module never
// sees).
package validatorpool

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luxfi/txconsensus/txtypes"
)

// Pool reads the validators table.
type Pool struct {
	pool *pgxpool.Pool
}

// New wraps an existing pgx pool (typically shared with store.postgres.Store).
func New(pool *pgxpool.Pool) *Pool {
	return &Pool{pool: pool}
}

// Snapshot implements worker.ValidatorPool: every currently-registered
// validator, in no particular order (selection.Selector does its own
// shuffling and weighted draws).
func (p *Pool) Snapshot(ctx context.Context) (txtypes.Snapshot, error) {
	rows, err := p.pool.Query(ctx, `SELECT address, stake, llm_provider, fallback FROM validators WHERE active`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out txtypes.Snapshot
	for rows.Next() {
		var v txtypes.Validator
		var address, fallback string
		if err := rows.Scan(&address, &v.Stake, &v.LLMProvider, &fallback); err != nil {
			return nil, err
		}
		v.Address = txtypes.Address(address)
		v.Fallback = fallback
		out = append(out, v)
	}
	return out, rows.Err()
}
