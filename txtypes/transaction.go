// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package txtypes defines the data model of the transaction consensus
// core: the Transaction row and its nested consensus bookkeeping, Vote,
// Receipt, and Validator. These are plain structs; all behavior lives in
// the decision, tally, selection, and statemachine packages that operate
// on them.
package txtypes

import (
	"time"
)

// Hash identifies a transaction. Transactions are addressed by this value
// everywhere: store lookups, leases, consensus history, triggered-tx
// parentage.
type Hash string

// Address identifies an account or contract.
type Address string

// TxType is the kind of action a transaction performs.
type TxType string

const (
	TxSend            TxType = "SEND"
	TxDeployContract  TxType = "DEPLOY_CONTRACT"
	TxRunContract     TxType = "RUN_CONTRACT"
	TxUpgradeContract TxType = "UPGRADE_CONTRACT"
)

// Status is a transaction's lifecycle stage.
type Status string

const (
	StatusPending            Status = "PENDING"
	StatusActivated          Status = "ACTIVATED"
	StatusProposing          Status = "PROPOSING"
	StatusCommitting         Status = "COMMITTING"
	StatusRevealing          Status = "REVEALING"
	StatusAccepted           Status = "ACCEPTED"
	StatusUndetermined       Status = "UNDETERMINED"
	StatusLeaderTimeout      Status = "LEADER_TIMEOUT"
	StatusValidatorsTimeout  Status = "VALIDATORS_TIMEOUT"
	StatusFinalized          Status = "FINALIZED"
	StatusCanceled           Status = "CANCELED"
)

// Terminal reports whether status admits no further mutation (spec
// invariant: FINALIZED and CANCELED rows are permanent).
func (s Status) Terminal() bool {
	return s == StatusFinalized || s == StatusCanceled
}

// Finalizable reports whether status is one of the four terminal-pending
// outcomes the finalization worker watches.
func (s Status) Finalizable() bool {
	switch s {
	case StatusAccepted, StatusUndetermined, StatusLeaderTimeout, StatusValidatorsTimeout:
		return true
	default:
		return false
	}
}

// ExecutionMode controls how much of the committee runs.
type ExecutionMode string

const (
	ModeNormal              ExecutionMode = "NORMAL"
	ModeLeaderOnly          ExecutionMode = "LEADER_ONLY"
	ModeLeaderSelfValidator ExecutionMode = "LEADER_SELF_VALIDATOR"
)

// TriggerPoint is when a child transaction becomes eligible for
// insertion: at the parent's acceptance, or at its finalization.
type TriggerPoint string

const (
	TriggerOnAccepted  TriggerPoint = "accepted"
	TriggerOnFinalized TriggerPoint = "finalized"
)

// Round is the label recorded in consensus history and returned by a
// state handler as the terminal marker for a single handle() call.
type Round string

const (
	RoundAccepted                      Round = "ACCEPTED"
	RoundUndetermined                  Round = "UNDETERMINED"
	RoundLeaderTimeout                 Round = "LEADER_TIMEOUT"
	RoundValidatorsTimeout             Round = "VALIDATORS_TIMEOUT"
	RoundLeaderRotated                 Round = "LEADER_ROTATED"
	RoundLeaderAppealSuccessful        Round = "LEADER_APPEAL_SUCCESSFUL"
	RoundLeaderAppealFailed            Round = "LEADER_APPEAL_FAILED"
	RoundLeaderTimeoutAppealSuccessful Round = "LEADER_TIMEOUT_APPEAL_SUCCESSFUL"
	RoundValidatorAppealSuccessful     Round = "VALIDATOR_APPEAL_SUCCESSFUL"
	RoundValidatorAppealFailed         Round = "VALIDATOR_APPEAL_FAILED"
	RoundFinalized                     Round = "FINALIZED"
)

// ConsensusData is a transaction's working set for the current attempt:
// the vote map gathered in Committing/Revealing and the receipts
// produced so far. leader_receipt[0] is canonical; leader_receipt[1], if
// present, is the leader's self-validation receipt.
type ConsensusData struct {
	Votes         map[Address]Vote `json:"votes,omitempty"`
	LeaderReceipt []Receipt        `json:"leader_receipt,omitempty"`
	Validators    []Receipt        `json:"validators,omitempty"`
}

// HistoryEntry is one append-only record in consensus_history: a round
// outcome plus the receipts behind it, an optional status-change note,
// and the time it was recorded. It carries no per-state monitoring
// timestamps.
type HistoryEntry struct {
	Round            Round      `json:"round"`
	LeaderResult     *Receipt   `json:"leader_result,omitempty"`
	ValidatorResults []Receipt  `json:"validator_results,omitempty"`
	StatusChange     string     `json:"status_change,omitempty"`
	RecordedAt       time.Time  `json:"recorded_at"`
}

// Appeal tracks the four mutually-exclusive appeal flags and the
// counters/timestamps the appeal protocol needs (§3.1, §4.6).
type Appeal struct {
	Appealed               bool       `json:"appealed"`
	Undetermined           bool       `json:"appeal_undetermined"`
	LeaderTimeout          bool       `json:"appeal_leader_timeout"`
	ValidatorsTimeout      bool       `json:"appeal_validators_timeout"`
	Failed                 int        `json:"appeal_failed"`
	TimestampAppeal        *time.Time `json:"timestamp_appeal,omitempty"`
	TimestampAwaitingFinal *time.Time `json:"timestamp_awaiting_finalization,omitempty"`
	ProcessingTime         time.Duration `json:"appeal_processing_time"`
}

// Any reports whether one of the four appeal flags is set.
func (a Appeal) Any() bool {
	return a.Appealed || a.Undetermined || a.LeaderTimeout || a.ValidatorsTimeout
}

// Lease is the worker-row claim: blocked_at/worker_id, the only
// authoritative mutual-exclusion mechanism (§9 — never mirror this with
// an in-memory map).
type Lease struct {
	BlockedAt *time.Time `json:"blocked_at,omitempty"`
	WorkerID  string     `json:"worker_id,omitempty"`
}

// Active reports whether the lease is currently held, given a lease
// window (e.g. CONSENSUS_VALIDATOR_EXEC_TIMEOUT_SECONDS).
func (l Lease) Active(now time.Time, window time.Duration) bool {
	if l.BlockedAt == nil {
		return false
	}
	return now.Sub(*l.BlockedAt) < window
}

// Parentage records a transaction's relationship to its triggering
// parent and the children it has itself triggered.
type Parentage struct {
	TriggeredByHash       Hash         `json:"triggered_by_hash,omitempty"`
	TriggeredTransactions []Hash       `json:"triggered_transactions,omitempty"`
	TriggeredOn           TriggerPoint `json:"triggered_on,omitempty"`
}

// Transaction is the full row described in spec §3.1.
type Transaction struct {
	Hash      Hash      `json:"hash"`
	Nonce     uint64    `json:"nonce"`
	CreatedAt time.Time `json:"created_at"`

	FromAddress Address `json:"from_address"`
	ToAddress   Address `json:"to_address,omitempty"`
	Type        TxType  `json:"type"`

	Data  []byte `json:"data,omitempty"`
	Value uint64 `json:"value"`

	Status Status `json:"status"`

	NumInitialValidators int           `json:"num_of_initial_validators"`
	ConfigRotationRounds int           `json:"config_rotation_rounds"`
	ExecutionMode        ExecutionMode `json:"execution_mode"`

	// SimConfig is an opaque simulation-validator override (§4.2's worker
	// sim_config) cascaded onto triggered children alongside the other
	// consensus config fields; this package does not interpret it.
	SimConfig []byte `json:"sim_config,omitempty"`

	ConsensusData    ConsensusData  `json:"consensus_data"`
	ConsensusHistory []HistoryEntry `json:"consensus_history,omitempty"`

	Appeal Appeal `json:"appeal"`

	ContractSnapshot *ContractSnapshot `json:"contract_snapshot,omitempty"`

	Parentage Parentage `json:"parentage"`

	Lease Lease `json:"lease"`

	RotationCount           int       `json:"rotation_count"`
	LeaderTimeoutValidators []Validator `json:"leader_timeout_validators,omitempty"`
}

// PastLeaders collects every address that has served as leader on this
// transaction across all attempts (leader_receipt[0].NodeConfig of every
// history entry plus the current attempt), used to exclude past leaders
// from rotation and appeal validator draws.
func (t *Transaction) PastLeaders() map[Address]struct{} {
	out := make(map[Address]struct{})
	for _, h := range t.ConsensusHistory {
		if h.LeaderResult != nil {
			out[h.LeaderResult.NodeConfig] = struct{}{}
		}
	}
	if len(t.ConsensusData.LeaderReceipt) > 0 {
		out[t.ConsensusData.LeaderReceipt[0].NodeConfig] = struct{}{}
	}
	return out
}
