// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package statemachine

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/txconsensus/decision"
	"github.com/luxfi/txconsensus/executor"
	"github.com/luxfi/txconsensus/internal/metrics"
	"github.com/luxfi/txconsensus/txtypes"
)

func TestReplacementPool_ExcludesAssignedAndPopsInOrder(t *testing.T) {
	registry := txtypes.Snapshot{
		{Address: "leader"},
		{Address: "committee1"},
		{Address: "spare1"},
		{Address: "spare2"},
	}
	assigned := map[txtypes.Address]struct{}{"leader": {}, "committee1": {}}

	pool := newReplacementPool(registry, assigned)

	v1, ok := pool.pop()
	require.True(t, ok)
	require.Equal(t, txtypes.Address("spare1"), v1.Address)

	v2, ok := pool.pop()
	require.True(t, ok)
	require.Equal(t, txtypes.Address("spare2"), v2.Address)

	_, ok = pool.pop()
	require.False(t, ok, "pool should be empty after draining every spare")
}

// fatalThenOKExecutor fails fatally for every validator in failFor, and
// succeeds for everyone else.
type fatalThenOKExecutor struct {
	failFor map[txtypes.Address]struct{}
}

func (e *fatalThenOKExecutor) Execute(ctx context.Context, req executor.Request) (txtypes.Receipt, error) {
	if _, fail := e.failFor[req.Validator.Address]; fail {
		return txtypes.Receipt{}, executor.NewFault("TEST_FATAL", true, false, nil)
	}
	return txtypes.Receipt{Vote: txtypes.VoteAgree, NodeConfig: req.Validator.Address}, nil
}

func newTestMetrics(t *testing.T) metrics.Metrics {
	m, err := metrics.NewMetrics(t.Name(), prometheus.NewRegistry())
	require.NoError(t, err)
	return m
}

func TestExecValidatorWithReplacement_DrawsReplacementOnFatalFault(t *testing.T) {
	h := &Handler{
		Executor:             &fatalThenOKExecutor{failFor: map[txtypes.Address]struct{}{"v1": {}}},
		Metrics:              newTestMetrics(t),
		ValidatorExecTimeout: time.Second,
	}
	pool := newReplacementPool(txtypes.Snapshot{{Address: "spare"}}, nil)
	rc := &decision.RoundContext{}

	receipt := h.execValidatorWithReplacement(context.Background(), &txtypes.Transaction{}, rc, txtypes.Validator{Address: "v1"}, pool)

	require.Equal(t, txtypes.VoteAgree, receipt.Vote)
	require.Equal(t, txtypes.Address("spare"), receipt.NodeConfig)
	require.False(t, receipt.Fatal)
}

func TestExecValidatorWithReplacement_ExhaustedForcesIdle(t *testing.T) {
	h := &Handler{
		Executor:             &fatalThenOKExecutor{failFor: map[txtypes.Address]struct{}{"v1": {}, "spare": {}}},
		Metrics:              newTestMetrics(t),
		ValidatorExecTimeout: time.Second,
	}
	pool := newReplacementPool(txtypes.Snapshot{{Address: "spare"}}, nil)
	rc := &decision.RoundContext{}

	receipt := h.execValidatorWithReplacement(context.Background(), &txtypes.Transaction{}, rc, txtypes.Validator{Address: "v1"}, pool)

	require.Equal(t, txtypes.VoteIdle, receipt.Vote)
}
