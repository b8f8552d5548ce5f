// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package finalization

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/luxfi/txconsensus/store"
	"github.com/luxfi/txconsensus/store/storemock"
	"github.com/luxfi/txconsensus/txtypes"
)

func newWorker(t *testing.T, now time.Time) (*Worker, *storemock.Store) {
	ctrl := gomock.NewController(t)
	st := storemock.NewStore(ctrl)
	w := New(Config{
		ID:                    "finalizer-1",
		FinalityWindow:        5 * time.Minute,
		AppealFailedReduction: 0.5,
	}, st, nil, nil)
	w.clock = func() time.Time { return now }
	return w, st
}

func TestEligible_NotFinalizable(t *testing.T) {
	now := time.Unix(10000, 0)
	w, _ := newWorker(t, now)

	tx := &txtypes.Transaction{Status: txtypes.StatusPending}
	ok, err := w.eligible(nil, tx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEligible_CurrentlyAppealed(t *testing.T) {
	now := time.Unix(10000, 0)
	w, _ := newWorker(t, now)

	tx := &txtypes.Transaction{
		Status: txtypes.StatusAccepted,
		Appeal: txtypes.Appeal{Appealed: true},
	}
	ok, err := w.eligible(nil, tx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEligible_WindowNotElapsed(t *testing.T) {
	now := time.Unix(10000, 0)
	w, _ := newWorker(t, now)

	awaiting := now.Add(-time.Minute)
	tx := &txtypes.Transaction{
		Status: txtypes.StatusAccepted,
		Appeal: txtypes.Appeal{TimestampAwaitingFinal: &awaiting},
	}
	ok, err := w.eligible(nil, tx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEligible_LeaderOnlySkipsWindow(t *testing.T) {
	now := time.Unix(10000, 0)
	w, st := newWorker(t, now)

	awaiting := now
	tx := &txtypes.Transaction{
		Hash:          "0xtx",
		ToAddress:     "0xcontract",
		Status:        txtypes.StatusAccepted,
		ExecutionMode: txtypes.ModeLeaderOnly,
		Appeal:        txtypes.Appeal{TimestampAwaitingFinal: &awaiting},
	}

	st.EXPECT().GetPrevious(gomock.Any(), txtypes.Address("0xcontract"), gomock.Any()).
		Return(nil, store.ErrNotFound)

	ok, err := w.eligible(nil, tx)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEligible_RequiresPreviousFinalized(t *testing.T) {
	now := time.Unix(10000, 0)
	w, st := newWorker(t, now)

	awaiting := now.Add(-10 * time.Minute)
	tx := &txtypes.Transaction{
		Hash:      "0xtx",
		ToAddress: "0xcontract",
		Status:    txtypes.StatusAccepted,
		Appeal:    txtypes.Appeal{TimestampAwaitingFinal: &awaiting},
	}

	st.EXPECT().GetPrevious(gomock.Any(), txtypes.Address("0xcontract"), gomock.Any()).
		Return(&txtypes.Transaction{Status: txtypes.StatusAccepted}, nil)

	ok, err := w.eligible(nil, tx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEligible_WindowShrinksWithAppealFailures(t *testing.T) {
	now := time.Unix(10000, 0)
	w, st := newWorker(t, now)

	// Full window is 5m; two prior appeal failures shrink it to 5m*0.25=75s.
	awaiting := now.Add(-90 * time.Second)
	tx := &txtypes.Transaction{
		Hash:      "0xtx",
		ToAddress: "0xcontract",
		Status:    txtypes.StatusAccepted,
		Appeal:    txtypes.Appeal{TimestampAwaitingFinal: &awaiting, Failed: 2},
	}

	st.EXPECT().GetPrevious(gomock.Any(), txtypes.Address("0xcontract"), gomock.Any()).
		Return(nil, store.ErrNotFound)

	ok, err := w.eligible(nil, tx)
	require.NoError(t, err)
	require.True(t, ok)
}
