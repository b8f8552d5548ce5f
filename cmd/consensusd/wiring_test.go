// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestWorkerSeed_DeterministicPerID(t *testing.T) {
	require.Equal(t, workerSeed("worker-1"), workerSeed("worker-1"))
	require.NotEqual(t, workerSeed("worker-1"), workerSeed("worker-2"))
}

func TestPromHandler_ServesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := promHandler(reg)
	require.NotNil(t, h)
}
