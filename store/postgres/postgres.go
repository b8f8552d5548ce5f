// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package postgres is the pgx/sqlx-backed implementation of store.Store.
// It is the only package in this module that knows the transactions
// table's column layout; every consensus state transition the decision
// and statemachine packages produce lands here as one SQL statement.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/luxfi/txconsensus/internal/collections/mathx"
	"github.com/luxfi/txconsensus/store"
	"github.com/luxfi/txconsensus/txtypes"
)

// Store is a store.Store backed by a pgx connection pool, with sqlx used
// for the multi-row read paths (ListOrphans, GetNewer) where struct
// scanning keeps the code honest about column names.
type Store struct {
	pool *pgxpool.Pool
	db   *sqlx.DB
}

var _ store.Store = (*Store)(nil)

// Open connects to a postgres instance at dsn and wraps it as a Store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	db := sqlx.NewDb(stdlibOpen(dsn), "pgx")
	return &Store{pool: pool, db: db}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
	_ = s.db.Close()
}

// Pool exposes the underlying connection pool so collaborators that read
// other tables in the same database (validatorpool.Pool) can share it
// instead of opening a second one.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// row mirrors the transactions table for sqlx scans. JSON columns are
// scanned raw and unmarshaled by toTransaction.
type row struct {
	Hash      string    `db:"hash"`
	Nonce     uint64    `db:"nonce"`
	CreatedAt time.Time `db:"created_at"`

	FromAddress string `db:"from_address"`
	ToAddress   string `db:"to_address"`
	Type        string `db:"type"`

	Data  []byte `db:"data"`
	Value uint64 `db:"value"`

	Status string `db:"status"`

	NumInitialValidators int    `db:"num_of_initial_validators"`
	ConfigRotationRounds int    `db:"config_rotation_rounds"`
	ExecutionMode        string `db:"execution_mode"`
	SimConfig            []byte `db:"sim_config"`

	ConsensusData    []byte `db:"consensus_data"`
	ConsensusHistory []byte `db:"consensus_history"`

	AppealFlags    []byte `db:"appeal"`
	ContractSnapshot []byte `db:"contract_snapshot"`

	TriggeredByHash       string `db:"triggered_by_hash"`
	TriggeredTransactions []byte `db:"triggered_transactions"`
	TriggeredOn           string `db:"triggered_on"`

	BlockedAt *time.Time `db:"blocked_at"`
	WorkerID  string     `db:"worker_id"`

	RotationCount           int    `db:"rotation_count"`
	LeaderTimeoutValidators []byte `db:"leader_timeout_validators"`
}

func toTransaction(r row) (*txtypes.Transaction, error) {
	tx := &txtypes.Transaction{
		Hash:                 txtypes.Hash(r.Hash),
		Nonce:                r.Nonce,
		CreatedAt:            r.CreatedAt,
		FromAddress:          txtypes.Address(r.FromAddress),
		ToAddress:            txtypes.Address(r.ToAddress),
		Type:                 txtypes.TxType(r.Type),
		Data:                 r.Data,
		Value:                r.Value,
		Status:               txtypes.Status(r.Status),
		NumInitialValidators: r.NumInitialValidators,
		ConfigRotationRounds: r.ConfigRotationRounds,
		ExecutionMode:        txtypes.ExecutionMode(r.ExecutionMode),
		SimConfig:            r.SimConfig,
		Parentage: txtypes.Parentage{
			TriggeredByHash: txtypes.Hash(r.TriggeredByHash),
			TriggeredOn:     txtypes.TriggerPoint(r.TriggeredOn),
		},
		Lease: txtypes.Lease{
			BlockedAt: r.BlockedAt,
			WorkerID:  r.WorkerID,
		},
		RotationCount: r.RotationCount,
	}

	if err := unmarshalIfPresent(r.ConsensusData, &tx.ConsensusData); err != nil {
		return nil, err
	}
	if err := unmarshalIfPresent(r.ConsensusHistory, &tx.ConsensusHistory); err != nil {
		return nil, err
	}
	if err := unmarshalIfPresent(r.AppealFlags, &tx.Appeal); err != nil {
		return nil, err
	}
	if len(r.ContractSnapshot) > 0 {
		var snap txtypes.ContractSnapshot
		if err := json.Unmarshal(r.ContractSnapshot, &snap); err != nil {
			return nil, err
		}
		tx.ContractSnapshot = &snap
	}
	if err := unmarshalIfPresent(r.TriggeredTransactions, &tx.Parentage.TriggeredTransactions); err != nil {
		return nil, err
	}
	if err := unmarshalIfPresent(r.LeaderTimeoutValidators, &tx.LeaderTimeoutValidators); err != nil {
		return nil, err
	}

	return tx, nil
}

func unmarshalIfPresent(data []byte, dst any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

const claimColumns = `hash, nonce, created_at, from_address, to_address, type, data, value, status,
	num_of_initial_validators, config_rotation_rounds, execution_mode, sim_config,
	consensus_data, consensus_history, appeal, contract_snapshot,
	triggered_by_hash, triggered_transactions, triggered_on,
	blocked_at, worker_id, rotation_count, leader_timeout_validators`

// claimPredicates maps each ClaimKind to the WHERE clause selecting its
// priority class (§4.1: appeals first, then finalizations, then plain
// pending rows not currently leased).
var claimPredicates = map[store.ClaimKind]string{
	store.ClaimAppeal:       `(appeal->>'appealed')::boolean OR (appeal->>'appeal_undetermined')::boolean OR (appeal->>'appeal_leader_timeout')::boolean OR (appeal->>'appeal_validators_timeout')::boolean`,
	store.ClaimFinalization: `status IN ('ACCEPTED','UNDETERMINED','LEADER_TIMEOUT','VALIDATORS_TIMEOUT') AND appeal->>'timestamp_awaiting_finalization' IS NOT NULL`,
	store.ClaimPending:      `status = 'PENDING'`,
}

// Claim implements the atomic claim-and-lease query of §4.1 using
// SELECT ... FOR UPDATE SKIP LOCKED so concurrent workers never block on
// each other, and the per-contract exclusion subquery so at most one row
// per to_address is leased at a time.
func (s *Store) Claim(ctx context.Context, kind store.ClaimKind, workerID string, leaseWindow time.Duration) (*txtypes.Transaction, error) {
	predicate, ok := claimPredicates[kind]
	if !ok {
		return nil, fmt.Errorf("postgres: unknown claim kind %d", kind)
	}

	query := fmt.Sprintf(`
		WITH candidate AS (
			SELECT hash FROM transactions
			WHERE (%s)
			  AND (blocked_at IS NULL OR blocked_at < now() - $1::interval)
			  AND to_address NOT IN (
			      SELECT to_address FROM transactions
			      WHERE blocked_at IS NOT NULL AND blocked_at >= now() - $1::interval
			  )
			ORDER BY created_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		UPDATE transactions
		SET blocked_at = now(), worker_id = $2
		WHERE hash IN (SELECT hash FROM candidate)
		RETURNING %s`, predicate, claimColumns)

	r, err := scanOneRow(ctx, s.pool, query, leaseWindow.String(), workerID)
	if err != nil {
		return nil, err
	}
	return toTransaction(r)
}

// Release clears a row's lease without changing its status.
func (s *Store) Release(ctx context.Context, hash txtypes.Hash) error {
	_, err := s.pool.Exec(ctx, `UPDATE transactions SET blocked_at = NULL, worker_id = '' WHERE hash = $1`, string(hash))
	return err
}

// GetByHash returns the current row, or store.ErrNotFound.
func (s *Store) GetByHash(ctx context.Context, hash txtypes.Hash) (*txtypes.Transaction, error) {
	r, err := scanOneRow(ctx, s.pool, `SELECT `+claimColumns+` FROM transactions WHERE hash = $1`, string(hash))
	if err != nil {
		return nil, err
	}
	return toTransaction(r)
}

// GetPrevious returns the transaction immediately before created before
// on to_address.
func (s *Store) GetPrevious(ctx context.Context, toAddress txtypes.Address, before time.Time) (*txtypes.Transaction, error) {
	r, err := scanOneRow(ctx, s.pool,
		`SELECT `+claimColumns+` FROM transactions WHERE to_address = $1 AND created_at < $2 ORDER BY created_at DESC LIMIT 1`,
		string(toAddress), before)
	if err != nil {
		return nil, err
	}
	return toTransaction(r)
}

// GetNewer returns every transaction on to_address created after after.
func (s *Store) GetNewer(ctx context.Context, toAddress txtypes.Address, after time.Time) ([]*txtypes.Transaction, error) {
	var rows []row
	err := s.db.SelectContext(ctx, &rows,
		s.db.Rebind(`SELECT `+claimColumns+` FROM transactions WHERE to_address = ? AND created_at > ? ORDER BY created_at ASC`),
		string(toAddress), after)
	if err != nil {
		return nil, fmt.Errorf("postgres: GetNewer: %w", err)
	}
	out := make([]*txtypes.Transaction, 0, len(rows))
	for _, r := range rows {
		tx, err := toTransaction(r)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

// TransactionCount returns the number of transactions ever recorded for
// address, used to derive the next nonce.
func (s *Store) TransactionCount(ctx context.Context, address txtypes.Address) (uint64, error) {
	var count uint64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM transactions WHERE from_address = $1`, string(address)).Scan(&count)
	return count, err
}

// InsertTransaction inserts a new row, translating the unique
// (from_address, nonce) constraint violation into store.ErrDuplicateNonce.
func (s *Store) InsertTransaction(ctx context.Context, tx *txtypes.Transaction) error {
	consensusData, _ := json.Marshal(tx.ConsensusData)
	appeal, _ := json.Marshal(tx.Appeal)

	_, err := s.pool.Exec(ctx, `
		INSERT INTO transactions (
			hash, nonce, created_at, from_address, to_address, type, data, value, status,
			num_of_initial_validators, config_rotation_rounds, execution_mode, sim_config,
			consensus_data, appeal, triggered_by_hash, triggered_on
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		string(tx.Hash), tx.Nonce, tx.CreatedAt, string(tx.FromAddress), string(tx.ToAddress), string(tx.Type),
		tx.Data, tx.Value, string(tx.Status),
		tx.NumInitialValidators, tx.ConfigRotationRounds, string(tx.ExecutionMode), tx.SimConfig,
		consensusData, appeal, string(tx.Parentage.TriggeredByHash), string(tx.Parentage.TriggeredOn))
	if isUniqueViolation(err) {
		return store.ErrDuplicateNonce
	}
	return err
}

// Update persists tx's mutable fields.
func (s *Store) Update(ctx context.Context, tx *txtypes.Transaction) error {
	consensusData, _ := json.Marshal(tx.ConsensusData)
	appeal, _ := json.Marshal(tx.Appeal)
	var snapshot []byte
	if tx.ContractSnapshot != nil {
		snapshot, _ = json.Marshal(tx.ContractSnapshot)
	}
	leaderTimeoutValidators, _ := json.Marshal(tx.LeaderTimeoutValidators)

	_, err := s.pool.Exec(ctx, `
		UPDATE transactions SET
			status = $2,
			consensus_data = $3,
			appeal = $4,
			contract_snapshot = $5,
			rotation_count = $6,
			leader_timeout_validators = $7
		WHERE hash = $1`,
		string(tx.Hash), string(tx.Status), consensusData, appeal, snapshot, tx.RotationCount, leaderTimeoutValidators)
	return err
}

// AppendHistory appends one entry to consensus_history.
func (s *Store) AppendHistory(ctx context.Context, hash txtypes.Hash, entry txtypes.HistoryEntry) error {
	encoded, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE transactions SET consensus_history = coalesce(consensus_history, '[]'::jsonb) || $2::jsonb WHERE hash = $1`,
		string(hash), []byte("["+string(encoded)+"]"))
	return err
}

// ResetOrphan clears lease and consensus working state, resetting status
// back to PENDING.
func (s *Store) ResetOrphan(ctx context.Context, hash txtypes.Hash) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE transactions SET
			status = 'PENDING', blocked_at = NULL, worker_id = '',
			consensus_data = '{}'::jsonb, rotation_count = 0
		WHERE hash = $1`, string(hash))
	return err
}

// ListOrphans returns rows whose lease has expired, or sitting in a
// mid-flight status with no lease at all.
func (s *Store) ListOrphans(ctx context.Context, leaseWindow time.Duration, midFlight []txtypes.Status) ([]*txtypes.Transaction, error) {
	statuses := make([]string, len(midFlight))
	for i, st := range midFlight {
		statuses[i] = string(st)
	}

	var rows []row
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT `+claimColumns+` FROM transactions
		WHERE status = ANY(?)
		  AND (blocked_at IS NULL OR blocked_at < now() - ?::interval)`),
		statuses, leaseWindow.String())
	if err != nil {
		return nil, fmt.Errorf("postgres: ListOrphans: %w", err)
	}
	out := make([]*txtypes.Transaction, 0, len(rows))
	for _, r := range rows {
		tx, err := toTransaction(r)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

// GetContractState reads a contract's two state trees.
func (s *Store) GetContractState(ctx context.Context, toAddress txtypes.Address) (*txtypes.ContractState, error) {
	var accepted, finalized []byte
	err := s.pool.QueryRow(ctx,
		`SELECT accepted, finalized FROM contract_state WHERE to_address = $1`, string(toAddress)).
		Scan(&accepted, &finalized)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	state := &txtypes.ContractState{ToAddress: toAddress}
	if err := unmarshalIfPresent(accepted, &state.Accepted); err != nil {
		return nil, err
	}
	if err := unmarshalIfPresent(finalized, &state.Finalized); err != nil {
		return nil, err
	}
	return state, nil
}

// RegisterContract creates a contract's state trees, returning
// store.ErrContractExists if one is already registered.
func (s *Store) RegisterContract(ctx context.Context, toAddress txtypes.Address, accepted, finalized map[string][]byte) error {
	acceptedJSON, _ := json.Marshal(accepted)
	finalizedJSON, _ := json.Marshal(finalized)
	_, err := s.pool.Exec(ctx,
		`INSERT INTO contract_state (to_address, accepted, finalized) VALUES ($1,$2,$3)`,
		string(toAddress), acceptedJSON, finalizedJSON)
	if isUniqueViolation(err) {
		return store.ErrContractExists
	}
	return err
}

// UpdateContractState overwrites one tree of a contract's state.
func (s *Store) UpdateContractState(ctx context.Context, toAddress txtypes.Address, tree string, slots map[string][]byte) error {
	encoded, err := json.Marshal(slots)
	if err != nil {
		return err
	}
	column := "accepted"
	if tree == "finalized" {
		column = "finalized"
	}
	_, err = s.pool.Exec(ctx, fmt.Sprintf(`UPDATE contract_state SET %s = $2 WHERE to_address = $1`, column), string(toAddress), encoded)
	return err
}

// RollbackContract restores a contract's accepted tree to snapshot and
// resets every row newer than newerThan on the same address back to
// PENDING, within one transaction (§4.6's rollback law).
func (s *Store) RollbackContract(ctx context.Context, toAddress txtypes.Address, newerThan txtypes.Hash, snapshot *txtypes.ContractSnapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var slots []byte
	if snapshot != nil {
		slots, err = json.Marshal(snapshot.Slots)
		if err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `UPDATE contract_state SET accepted = $2 WHERE to_address = $1`, string(toAddress), slots); err != nil {
		return err
	}

	var anchorTime time.Time
	if err := tx.QueryRow(ctx, `SELECT created_at FROM transactions WHERE hash = $1`, string(newerThan)).Scan(&anchorTime); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE transactions SET status = 'PENDING', contract_snapshot = NULL
		WHERE to_address = $1 AND created_at > $2`, string(toAddress), anchorTime); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetBalance reads an address's native balance from the accounts table.
// An address with no row (never credited) has a balance of zero.
func (s *Store) GetBalance(ctx context.Context, address txtypes.Address) (uint64, error) {
	var balance uint64
	err := s.pool.QueryRow(ctx, `SELECT balance FROM accounts WHERE address = $1`, string(address)).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return balance, err
}

// TransferBalance implements the §4.7 native transfer: debit from (if
// set) by amount, credit to (if set) by amount, within one transaction
// so a crash between the two never leaves value created or destroyed.
// The pre-check runs mathx's overflow-checked arithmetic against the
// row locked by SELECT ... FOR UPDATE, then persists the already-summed
// result — the row lock, not the Go-side arithmetic, is what makes this
// atomic under concurrent transfers to the same address.
func (s *Store) TransferBalance(ctx context.Context, from, to txtypes.Address, amount uint64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if from != "" {
		var have uint64
		err := tx.QueryRow(ctx, `SELECT balance FROM accounts WHERE address = $1 FOR UPDATE`, string(from)).Scan(&have)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		left, err := mathx.Sub64(have, amount)
		if err != nil {
			return store.ErrInsufficientBalance
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO accounts (address, balance) VALUES ($1, $2)
			ON CONFLICT (address) DO UPDATE SET balance = $2`, string(from), left); err != nil {
			return err
		}
	}

	if to != "" {
		var have uint64
		err := tx.QueryRow(ctx, `SELECT balance FROM accounts WHERE address = $1 FOR UPDATE`, string(to)).Scan(&have)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		credited, err := mathx.Add64(have, amount)
		if err != nil {
			return fmt.Errorf("postgres: credit overflow for %s: %w", to, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO accounts (address, balance) VALUES ($1, $2)
			ON CONFLICT (address) DO UPDATE SET balance = $2`, string(to), credited); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func scanOneRow(ctx context.Context, pool *pgxpool.Pool, query string, args ...any) (row, error) {
	var r row
	err := pool.QueryRow(ctx, query, args...).Scan(
		&r.Hash, &r.Nonce, &r.CreatedAt, &r.FromAddress, &r.ToAddress, &r.Type, &r.Data, &r.Value, &r.Status,
		&r.NumInitialValidators, &r.ConfigRotationRounds, &r.ExecutionMode, &r.SimConfig,
		&r.ConsensusData, &r.ConsensusHistory, &r.AppealFlags, &r.ContractSnapshot,
		&r.TriggeredByHash, &r.TriggeredTransactions, &r.TriggeredOn,
		&r.BlockedAt, &r.WorkerID, &r.RotationCount, &r.LeaderTimeoutValidators,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return row{}, store.ErrNotFound
	}
	return r, err
}

func isUniqueViolation(err error) bool {
	return err != nil && pgxUniqueViolation(err)
}
