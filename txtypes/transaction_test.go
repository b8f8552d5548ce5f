// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package txtypes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStatus_Terminal(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   bool
	}{
		{"finalized", StatusFinalized, true},
		{"canceled", StatusCanceled, true},
		{"accepted", StatusAccepted, false},
		{"pending", StatusPending, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.status.Terminal())
		})
	}
}

func TestStatus_Finalizable(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   bool
	}{
		{"accepted", StatusAccepted, true},
		{"undetermined", StatusUndetermined, true},
		{"leader timeout", StatusLeaderTimeout, true},
		{"validators timeout", StatusValidatorsTimeout, true},
		{"pending", StatusPending, false},
		{"finalized", StatusFinalized, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.status.Finalizable())
		})
	}
}

func TestAppeal_Any(t *testing.T) {
	require.False(t, Appeal{}.Any())
	require.True(t, Appeal{Appealed: true}.Any())
	require.True(t, Appeal{Undetermined: true}.Any())
	require.True(t, Appeal{LeaderTimeout: true}.Any())
	require.True(t, Appeal{ValidatorsTimeout: true}.Any())
}

func TestLease_Active(t *testing.T) {
	now := time.Now()
	window := 900 * time.Second

	t.Run("no lease", func(t *testing.T) {
		require.False(t, Lease{}.Active(now, window))
	})

	t.Run("fresh lease", func(t *testing.T) {
		blockedAt := now.Add(-10 * time.Second)
		require.True(t, Lease{BlockedAt: &blockedAt}.Active(now, window))
	})

	t.Run("expired lease", func(t *testing.T) {
		blockedAt := now.Add(-2 * window)
		require.False(t, Lease{BlockedAt: &blockedAt}.Active(now, window))
	})
}

func TestTransaction_PastLeaders(t *testing.T) {
	tx := &Transaction{
		ConsensusHistory: []HistoryEntry{
			{LeaderResult: &Receipt{NodeConfig: "0xA"}},
			{LeaderResult: &Receipt{NodeConfig: "0xB"}},
		},
		ConsensusData: ConsensusData{
			LeaderReceipt: []Receipt{{NodeConfig: "0xC"}},
		},
	}

	got := tx.PastLeaders()
	require.Len(t, got, 3)
	for _, addr := range []Address{"0xA", "0xB", "0xC"} {
		_, ok := got[addr]
		require.True(t, ok, "expected %s in past leaders", addr)
	}
}
