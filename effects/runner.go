// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package effects

import (
	"context"
	"fmt"

	"github.com/luxfi/txconsensus/eventbus"
	"github.com/luxfi/txconsensus/rollup"
	"github.com/luxfi/txconsensus/store"
	"github.com/luxfi/txconsensus/triggered"
	"github.com/luxfi/txconsensus/txtypes"
)

// Runner is the thin interpreter of §4.3: it applies an ordered Effect
// list to the store, event bus, and rollup bridge, mutating the
// in-memory *txtypes.Transaction as it goes so callers can inspect the
// final state without a round-trip read. Runner holds no decision
// logic — every branch here mirrors the Effect it is named after.
type Runner struct {
	Store  store.Store
	Bus    eventbus.Bus
	Rollup rollup.Bridge

	// Deriver assigns addresses to triggered children before insertion
	// (§4.5).
	Deriver triggered.Deriver

	// WorkerID is used as the message origin when publishing to Bus.
	WorkerID string
}

// Apply runs each effect against tx in order, returning the first error
// (the interpreter does not attempt partial rollback; the caller's
// isolation boundary is the whole transaction attempt, per §7's
// propagation policy).
func (r *Runner) Apply(ctx context.Context, tx *txtypes.Transaction, list []Effect) error {
	for _, e := range list {
		if err := r.applyOne(ctx, tx, e); err != nil {
			return fmt.Errorf("effects: applying %T: %w", e, err)
		}
	}
	return nil
}

func (r *Runner) applyOne(ctx context.Context, tx *txtypes.Transaction, e Effect) error {
	switch v := e.(type) {
	case AddTimestamp:
		// Stage timestamps are not recorded: nothing wraps Runner, and
		// this interpreter treats the effect as a no-op.
		return nil

	case StatusUpdate:
		tx.Status = v.Status
		return r.Store.Update(ctx, tx)

	case SendMessage:
		return r.publish(ctx, eventbus.ChannelGeneral, v.Message, nil, tx.Hash)

	case EmitRollupEvent:
		res, err := r.Rollup.EmitTransactionEvent(ctx, rollup.Call{
			Name:            rollup.EventName(v.Name),
			Account:         v.Account,
			TransactionHash: v.TransactionHash,
			Children:        v.PendingTransactions,
		})
		if err != nil {
			return err
		}
		if len(res.ChildHashes) > 0 {
			return r.insertChildren(ctx, tx, v.PendingTransactions, res.ChildHashes, "")
		}
		return nil

	case SetTransactionResult:
		tx.ConsensusData.LeaderReceipt = setReceiptResult(tx.ConsensusData.LeaderReceipt, v.Result, v.ExecutionResult)
		return r.Store.Update(ctx, tx)

	case UpdateConsensusHistory:
		tx.ConsensusHistory = append(tx.ConsensusHistory, v.Entry)
		return r.Store.AppendHistory(ctx, tx.Hash, v.Entry)

	case SetAppealFlag:
		setAppealFlag(&tx.Appeal, v.Field, v.Value)
		return r.Store.Update(ctx, tx)

	case SetAppealFailed:
		tx.Appeal.Failed = v.Value
		return r.Store.Update(ctx, tx)

	case SetConsensusData:
		tx.ConsensusData.Votes = v.Votes
		tx.ConsensusData.Validators = v.Validators
		return r.Store.Update(ctx, tx)

	case SetContractSnapshot:
		tx.ContractSnapshot = v.Snapshot
		return r.Store.Update(ctx, tx)

	case SetLeaderTimeoutValidators:
		tx.LeaderTimeoutValidators = v.Validators
		return r.Store.Update(ctx, tx)

	case RegisterContract:
		err := r.Store.RegisterContract(ctx, v.ToAddress, v.Accepted, v.Finalized)
		if err != nil && v.DuplicateIsWarning {
			return nil
		}
		return err

	case UpdateContractState:
		return r.Store.UpdateContractState(ctx, v.ToAddress, string(v.Tree), v.Slots)

	case SetTimestampAppeal:
		t := v.At
		tx.Appeal.TimestampAppeal = &t
		return r.Store.Update(ctx, tx)

	case SetTimestampAwaitingFinalization:
		tx.Appeal.TimestampAwaitingFinal = v.At
		return r.Store.Update(ctx, tx)

	case IncreaseRotationCount:
		tx.RotationCount++
		return r.Store.Update(ctx, tx)

	case ResetRotationCount:
		tx.RotationCount = 0
		return r.Store.Update(ctx, tx)

	case TransferBalance:
		return r.Store.TransferBalance(ctx, v.From, v.To, v.Amount)

	case InsertChildren:
		return r.insertChildren(ctx, tx, v.Children, nil, v.On)

	case Rollback:
		return r.Store.RollbackContract(ctx, v.ToAddress, v.NewerThan, v.Snapshot)

	default:
		return fmt.Errorf("effects: unhandled effect type %T", e)
	}
}

func (r *Runner) publish(ctx context.Context, ch eventbus.Channel, msg string, data any, hash txtypes.Hash) error {
	return r.Bus.Publish(ctx, ch, eventbus.Event{
		WorkerID:        r.WorkerID,
		Event:           msg,
		Data:            data,
		TransactionHash: string(hash),
	})
}

// insertChildren derives addresses for parent's triggered children
// (§4.5) and inserts them, cascading the parent's consensus config
// (execution mode, rotation budget, initial validator count, and
// simulation override) onto each one.
func (r *Runner) insertChildren(ctx context.Context, parent *txtypes.Transaction, children []txtypes.PendingTransaction, hashes []txtypes.Hash, on txtypes.TriggerPoint) error {
	addressed, err := r.Deriver.Derive(parent.ToAddress, children)
	if err != nil {
		return err
	}

	for i, child := range addressed {
		childTx := &txtypes.Transaction{
			Type:                 child.Type,
			ToAddress:            child.ToAddress,
			Data:                 child.Data,
			Value:                child.Value,
			Status:               txtypes.StatusPending,
			Parentage:            txtypes.Parentage{TriggeredByHash: parent.Hash, TriggeredOn: child.On},
			ExecutionMode:        parent.ExecutionMode,
			ConfigRotationRounds: parent.ConfigRotationRounds,
			NumInitialValidators: parent.NumInitialValidators,
			SimConfig:            parent.SimConfig,
		}
		if i < len(hashes) {
			childTx.Hash = hashes[i]
		}
		if err := r.Store.InsertTransaction(ctx, childTx); err != nil {
			if err == store.ErrDuplicateNonce {
				continue
			}
			return err
		}
	}
	return nil
}

func setReceiptResult(receipts []txtypes.Receipt, result []byte, execResult txtypes.ExecutionResult) []txtypes.Receipt {
	if len(receipts) == 0 {
		return []txtypes.Receipt{{Result: result, ExecutionResult: execResult}}
	}
	receipts[0].Result = result
	receipts[0].ExecutionResult = execResult
	return receipts
}

func setAppealFlag(a *txtypes.Appeal, field AppealField, value bool) {
	switch field {
	case AppealFieldAppealed:
		a.Appealed = value
	case AppealFieldUndetermined:
		a.Undetermined = value
	case AppealFieldLeaderTimeout:
		a.LeaderTimeout = value
	case AppealFieldValidatorsTimeout:
		a.ValidatorsTimeout = value
	}
}
