// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package effects implements the pure-decision output type of spec §4.3:
// an ordered list of tagged Effect values emitted by decide_<state>
// functions in the decision package, applied by a thin interpreter (the
// Runner here, driven by the statemachine package). Nothing in this
// package touches the store, the event bus, or the executor — it only
// describes what should happen to them.
package effects

import (
	"time"

	"github.com/luxfi/txconsensus/txtypes"
)

// Effect is any of the tagged variants below. The interface is closed:
// only types in this package implement it.
type Effect interface {
	effect()
}

// AddTimestamp names a monitoring timestamp for a stage (spec §6.1
// "per-state monitoring timestamps"). Runner applies it as a no-op: the
// timestamp is not written to the transaction row or its history.
type AddTimestamp struct {
	Stage string
	At    time.Time
}

// StatusUpdate sets the transaction's status column.
type StatusUpdate struct {
	Status txtypes.Status
}

// SendMessage emits a human-readable, non-authoritative log line (e.g.
// "executing", "transaction activated") distinct from rollup events.
type SendMessage struct {
	Message string
}

// EmitRollupEvent calls the rollup bridge (spec §6.3) with the named
// event and optional child-transaction payloads. When the bridge returns
// child hashes, the interpreter inserts PendingTransactions as child
// rows under those hashes; the hashes are not stored on this effect.
type EmitRollupEvent struct {
	Name                string
	Account             txtypes.Address
	TransactionHash     txtypes.Hash
	PendingTransactions []txtypes.PendingTransaction
}

// SetTransactionResult records the canonical result code/bytes on the
// transaction row (distinct from consensus history).
type SetTransactionResult struct {
	Result          []byte
	ExecutionResult txtypes.ExecutionResult
}

// UpdateConsensusHistory appends one entry to consensus_history.
type UpdateConsensusHistory struct {
	Entry txtypes.HistoryEntry
}

// SetAppealFlag sets or clears one of the four mutually-exclusive appeal
// flags.
type SetAppealFlag struct {
	Field AppealField
	Value bool
}

// AppealField names one of the four appeal booleans.
type AppealField string

const (
	AppealFieldAppealed          AppealField = "appealed"
	AppealFieldUndetermined      AppealField = "appeal_undetermined"
	AppealFieldLeaderTimeout     AppealField = "appeal_leader_timeout"
	AppealFieldValidatorsTimeout AppealField = "appeal_validators_timeout"
)

// SetAppealFailed sets the appeal_failed counter (monotonic except on
// the two success resets, per §8's universal invariant).
type SetAppealFailed struct {
	Value int
}

// SetContractSnapshot stores (or clears, when Snapshot is nil) the
// rollback anchor on the transaction row.
type SetContractSnapshot struct {
	Snapshot *txtypes.ContractSnapshot
}

// SetLeaderTimeoutValidators records the committee set aside by a
// LeaderTimeout exit, for reuse by a later leader-timeout appeal.
type SetLeaderTimeoutValidators struct {
	Validators []txtypes.Validator
}

// RegisterContract creates a new contract's state tree at DEPLOY_CONTRACT
// acceptance. DuplicateIsWarning instructs the interpreter to swallow a
// duplicate-registration error as a warning rather than fail the attempt
// (§4.2.5).
type RegisterContract struct {
	ToAddress          txtypes.Address
	Accepted           map[string][]byte
	Finalized          map[string][]byte
	DuplicateIsWarning bool
}

// UpdateContractState overwrites one of a contract's two state trees.
type UpdateContractState struct {
	ToAddress txtypes.Address
	Tree      ContractTree
	Slots     map[string][]byte
}

// ContractTree selects which of a contract's two state trees an effect
// targets.
type ContractTree string

const (
	TreeAccepted  ContractTree = "accepted"
	TreeFinalized ContractTree = "finalized"
)

// SetTimestampAppeal sets timestamp_appeal.
type SetTimestampAppeal struct {
	At time.Time
}

// SetTimestampAwaitingFinalization sets or clears
// timestamp_awaiting_finalization.
type SetTimestampAwaitingFinalization struct {
	At *time.Time
}

// IncreaseRotationCount bumps rotation_count by one (bounded by
// config_rotation_rounds, enforced by the decision layer before emitting
// this effect).
type IncreaseRotationCount struct{}

// ResetRotationCount zeroes rotation_count (Pending re-entry).
type ResetRotationCount struct{}

// SetConsensusData persists this round's gathered votes and validator
// receipts onto consensus_data, giving a later appeal re-entry
// something to merge against (§4.6's merge rule).
type SetConsensusData struct {
	Votes      map[txtypes.Address]txtypes.Vote
	Validators []txtypes.Receipt
}

// TransferBalance implements the native SEND transfer (§4.7): debit
// From by Amount if set (fails the transfer if insufficient, a check
// the interpreter performs since it alone knows current balance), then
// credit To by Amount if set.
type TransferBalance struct {
	From   txtypes.Address
	To     txtypes.Address
	Amount uint64
}

// InsertChildren inserts one batch of triggered-transaction rows.
// Runner applies effects strictly in list order, so an InsertChildren
// listed before a StatusUpdate is applied before it. No function in the
// decision package emits this effect; children carried by an
// EmitRollupEvent are inserted when the bridge returns their hashes.
type InsertChildren struct {
	Parent   txtypes.Hash
	Children []txtypes.PendingTransaction
	On       txtypes.TriggerPoint
}

// Rollback resets every transaction newer than NewerThan on ToAddress back to
// PENDING with its snapshot cleared, and restores the contract's
// accepted tree to Snapshot (§4.6's rollback law).
type Rollback struct {
	ToAddress txtypes.Address
	NewerThan txtypes.Hash
	Snapshot  *txtypes.ContractSnapshot
}

func (AddTimestamp) effect()                     {}
func (StatusUpdate) effect()                     {}
func (SendMessage) effect()                      {}
func (EmitRollupEvent) effect()                  {}
func (SetTransactionResult) effect()             {}
func (UpdateConsensusHistory) effect()            {}
func (SetAppealFlag) effect()                    {}
func (SetAppealFailed) effect()                  {}
func (SetContractSnapshot) effect()              {}
func (SetLeaderTimeoutValidators) effect()        {}
func (RegisterContract) effect()                 {}
func (UpdateContractState) effect()              {}
func (SetTimestampAppeal) effect()                {}
func (SetTimestampAwaitingFinalization) effect()  {}
func (IncreaseRotationCount) effect()             {}
func (ResetRotationCount) effect()                {}
func (SetConsensusData) effect()                  {}
func (TransferBalance) effect()                   {}
func (InsertChildren) effect()                    {}
func (Rollback) effect()                          {}

// Decision is the full output of a decide_<state> function: effects to
// apply before the state's impure action, effects to apply after, and
// the outcome (next state or terminal round).
type Decision struct {
	Pre     []Effect
	Post    []Effect
	Outcome Outcome
}

// Outcome is either a next status to transition to or a terminal round
// tag. statemachine.Handler.Run ends on Round when it is set and
// otherwise follows NextStatus; an Outcome with neither set is not
// handled.
type Outcome struct {
	NextStatus *txtypes.Status
	Round      *txtypes.Round
}

// NextStatus builds an Outcome that continues the state machine.
func NextStatus(s txtypes.Status) Outcome {
	return Outcome{NextStatus: &s}
}

// Terminal builds an Outcome that ends handling with a round tag.
func Terminal(r txtypes.Round) Outcome {
	return Outcome{Round: &r}
}
