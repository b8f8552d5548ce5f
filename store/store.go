// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package store defines the persistence boundary spec §6.1 treats as an
// external collaborator: atomic claim queries, per-field setters, and
// consensus-history appends. Transactions and contract state are
// authoritative in whatever relational store implements this interface;
// store/postgres is the pgx/sqlx-backed implementation, store/storemock
// a generated mock for decision/statemachine/worker tests.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/luxfi/txconsensus/txtypes"
)

// ErrNotFound is returned when a lookup by hash finds no row.
var ErrNotFound = errors.New("store: transaction not found")

// ErrDuplicateNonce is returned by InsertTransaction when a row already
// exists for (from_address, nonce); callers treat this as a no-op per
// §9's "duplicate child transaction hash swallows the uniqueness
// violation silently."
var ErrDuplicateNonce = errors.New("store: duplicate (from_address, nonce)")

// ClaimKind selects which of the three priority classes a claim query
// draws from (§4.1: appeals first, then finalizations, then regular
// pending).
type ClaimKind int

const (
	ClaimAppeal ClaimKind = iota
	ClaimFinalization
	ClaimPending
)

// Store is the persistence interface the worker, finalization worker,
// appeal logic, and triggered-transaction fan-out depend on. Every
// method is a single atomic operation against the underlying store; the
// interpreter in the effects package composes them, it never reaches
// for a second store call to implement one Effect.
type Store interface {
	// Claim atomically selects and leases the oldest eligible row for
	// kind, respecting per-contract exclusion (at most one leased row
	// per to_address) and the "FOR UPDATE SKIP LOCKED" semantics of
	// §4.1. Returns ErrNotFound if nothing is eligible.
	Claim(ctx context.Context, kind ClaimKind, workerID string, leaseWindow time.Duration) (*txtypes.Transaction, error)

	// Release clears a row's lease without changing its status.
	Release(ctx context.Context, hash txtypes.Hash) error

	// GetByHash returns the current row, or ErrNotFound.
	GetByHash(ctx context.Context, hash txtypes.Hash) (*txtypes.Transaction, error)

	// GetPrevious returns the transaction created most recently before
	// the time before on the same to_address, ordered by created_at, optionally filtered to a
	// status/success predicate supplied by the caller post-hoc.
	GetPrevious(ctx context.Context, toAddress txtypes.Address, before time.Time) (*txtypes.Transaction, error)

	// GetNewer returns every transaction on to_address created after
	// after, ordered by created_at ascending.
	GetNewer(ctx context.Context, toAddress txtypes.Address, after time.Time) ([]*txtypes.Transaction, error)

	// TransactionCount returns the number of transactions ever recorded
	// for address (used to derive nonces).
	TransactionCount(ctx context.Context, address txtypes.Address) (uint64, error)

	// InsertTransaction inserts a new row. Returns ErrDuplicateNonce
	// (swallowed by the caller, never surfaced as a hard error) if
	// (from_address, nonce) already exists.
	InsertTransaction(ctx context.Context, tx *txtypes.Transaction) error

	// Update persists an in-memory *txtypes.Transaction's mutable fields
	// atomically. Callers pass the full row as mutated by applying a
	// Decision's effects; the implementation decides which columns
	// changed.
	Update(ctx context.Context, tx *txtypes.Transaction) error

	// AppendHistory appends one entry to consensus_history.
	AppendHistory(ctx context.Context, hash txtypes.Hash, entry txtypes.HistoryEntry) error

	// ResetOrphan clears lease and consensus working state and resets
	// status to PENDING, for the orphan-recovery pass (§4.1).
	ResetOrphan(ctx context.Context, hash txtypes.Hash) error

	// ListOrphans returns rows whose lease has expired, or which sit in
	// a mid-flight status with no lease at all.
	ListOrphans(ctx context.Context, leaseWindow time.Duration, midFlight []txtypes.Status) ([]*txtypes.Transaction, error)

	// GetContractState reads a contract's two state trees.
	GetContractState(ctx context.Context, toAddress txtypes.Address) (*txtypes.ContractState, error)

	// RegisterContract creates a contract's state trees. Returns a
	// sentinel the caller can treat as a warning if one already exists
	// for toAddress.
	RegisterContract(ctx context.Context, toAddress txtypes.Address, accepted, finalized map[string][]byte) error

	// UpdateContractState overwrites one tree of a contract's state.
	UpdateContractState(ctx context.Context, toAddress txtypes.Address, tree string, slots map[string][]byte) error

	// RollbackContract restores a contract's accepted tree to snapshot
	// and resets every row newer than newerThan on the same address to
	// PENDING with its own snapshot cleared, within one transaction.
	RollbackContract(ctx context.Context, toAddress txtypes.Address, newerThan txtypes.Hash, snapshot *txtypes.ContractSnapshot) error

	// GetBalance returns address's current native balance (zero for an
	// address that has never been credited).
	GetBalance(ctx context.Context, address txtypes.Address) (uint64, error)

	// TransferBalance debits from by amount and credits to, atomically.
	// from or to may be empty (a burn or a mint at the chain boundary).
	// Returns ErrInsufficientBalance if from's balance is below amount;
	// the caller (decision.Send, by way of statemachine.Handler) treats
	// that as the §4.7 UNDETERMINED path rather than a hard error.
	TransferBalance(ctx context.Context, from, to txtypes.Address, amount uint64) error
}

// ErrInsufficientBalance is returned by TransferBalance when from's
// balance cannot cover amount.
var ErrInsufficientBalance = errors.New("store: insufficient balance")

// ErrContractExists signals RegisterContract found an existing contract;
// the Accepted decision function treats this as a warning, not a fault.
var ErrContractExists = errors.New("store: contract already registered")
