// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 900*time.Second, cfg.ValidatorExecTimeout)
	require.Equal(t, 5*time.Minute, cfg.FinalityWindow)
	require.Equal(t, 0.5, cfg.FinalityWindowAppealReduction)
	require.Equal(t, 5, cfg.WorkerMaxRestarts)
}

func TestLoad_OverridesFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("WORKER_POLL_INTERVAL", "250ms")
	t.Setenv("NO_VALIDATORS_MAX_RETRIES", "3")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 250*time.Millisecond, cfg.WorkerPollInterval)
	require.Equal(t, 3, cfg.NoValidatorsMaxRetries)
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	_, err := Load()
	require.Error(t, err)
}
