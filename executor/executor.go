// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package executor defines the boundary to the Node / GenVM Manager
// execution sandbox (spec §6.2): treated here purely as a remote
// executor returning a Receipt, with a structured Fault type in place
// of the source's dynamically-typed InternalError.
package executor

import (
	"context"
	"fmt"

	"github.com/luxfi/txconsensus/txtypes"
)

// Mode is the role under which a transaction is executed.
type Mode string

const (
	ModeLeader    Mode = "LEADER"
	ModeValidator Mode = "VALIDATOR"
)

// Request bundles everything exec_transaction needs: the transaction
// itself, the contract snapshot it reads from, the leader's receipt
// when validating, and the frozen validators snapshot for this attempt.
type Request struct {
	Transaction      *txtypes.Transaction
	Mode             Mode
	Validator        txtypes.Validator
	ContractSnapshot map[string][]byte
	LeaderReceipt    *txtypes.Receipt
	Validators       txtypes.Snapshot
}

// Executor invokes the Node executor for one validator's share of a
// transaction attempt.
type Executor interface {
	Execute(ctx context.Context, req Request) (txtypes.Receipt, error)
}

// Fault is the structured error the executor raises instead of the
// source's dynamically-typed InternalError (§6.2, §9). Fatal marks an
// infrastructure failure eligible for validator replacement; IsLeader
// marks that the fault occurred on the leader's own invocation (driving
// leader replacement in Proposing rather than committee replacement in
// Committing).
type Fault struct {
	ErrorCode string
	Causes    []string
	Ctx       map[string]any
	Fatal     bool
	IsLeader  bool
	cause     error
}

// NewFault wraps cause as a structured Fault.
func NewFault(errorCode string, fatal, isLeader bool, cause error) *Fault {
	return &Fault{ErrorCode: errorCode, Fatal: fatal, IsLeader: isLeader, cause: cause}
}

func (f *Fault) Error() string {
	if f.cause != nil {
		return fmt.Sprintf("executor: %s: %v", f.ErrorCode, f.cause)
	}
	return fmt.Sprintf("executor: %s", f.ErrorCode)
}

func (f *Fault) Unwrap() error { return f.cause }

// AsFault reports whether err itself is a *Fault, by direct type
// assertion: a Fault wrapped inside another error is not unwrapped.
// It reports ok=false for any other error shape (e.g. context
// cancellation, or a response-decode error).
func AsFault(err error) (*Fault, bool) {
	f, ok := err.(*Fault)
	return f, ok
}
