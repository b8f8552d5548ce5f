// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rollup defines the boundary to the rollup bridge (spec §6.3),
// treated as an event sink that returns child transaction hashes when a
// call carries triggered-transaction payloads.
package rollup

import (
	"context"

	"github.com/luxfi/txconsensus/txtypes"
)

// EventName is one of the emitTransaction*/emitVote*/emitAppeal* names
// the rollup bridge accepts.
type EventName string

const (
	EventTransactionActivated    EventName = "emitTransactionActivated"
	EventTransactionReceiptProposed EventName = "emitTransactionReceiptProposed"
	EventVoteCommitted           EventName = "emitVoteCommitted"
	EventVoteRevealed            EventName = "emitVoteRevealed"
	EventTransactionAccepted     EventName = "emitTransactionAccepted"
	EventTransactionFinalized    EventName = "emitTransactionFinalized"
	EventTransactionLeaderTimeout EventName = "emitTransactionLeaderTimeout"
	EventTransactionLeaderRotated EventName = "emitTransactionLeaderRotated"
	EventAppealStarted           EventName = "emitAppealStarted"
)

// Call is one emit_transaction_event invocation.
type Call struct {
	Name            EventName
	Account         txtypes.Address
	TransactionHash txtypes.Hash
	Extras          []any
	Children        []txtypes.PendingTransaction
}

// Result carries the child transaction hashes the bridge assigned, in
// the same order as Call.Children.
type Result struct {
	ChildHashes []txtypes.Hash
}

// Bridge is the rollup bridge client.
type Bridge interface {
	EmitTransactionEvent(ctx context.Context, call Call) (Result, error)
}
