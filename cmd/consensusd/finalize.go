// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	luxlog "github.com/luxfi/log"
	"github.com/spf13/cobra"

	"github.com/luxfi/txconsensus/effects"
	"github.com/luxfi/txconsensus/eventbus"
	"github.com/luxfi/txconsensus/finalization"
	"github.com/luxfi/txconsensus/internal/config"
	"github.com/luxfi/txconsensus/internal/metrics"
	"github.com/luxfi/txconsensus/internal/txlog"
	"github.com/luxfi/txconsensus/rollup/httprollup"
	"github.com/luxfi/txconsensus/store/postgres"
)

func finalizeCmd() *cobra.Command {
	var (
		workerID    string
		rollupURL   string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "finalize",
		Short: "Run the dedicated finalization worker that drives finality-window-eligible transactions to FINALIZED",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFinalizer(cmd.Context(), workerID, rollupURL, metricsAddr)
		},
	}

	cmd.Flags().StringVar(&workerID, "worker-id", "finalization-worker-1", "unique identifier for this worker's lease")
	cmd.Flags().StringVar(&rollupURL, "rollup-url", "http://localhost:9091", "rollup bridge base URL")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9096", "prometheus /metrics listen address")
	return cmd
}

func runFinalizer(ctx context.Context, workerID, rollupURL, metricsAddr string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := txlog.NewRedactingLogger(luxlog.NewNoOpLogger())

	st, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to store: %w", err)
	}
	defer st.Close()

	bus := eventbus.NewNoOp()
	if cfg.RedisURL != "" {
		bus, err = eventbus.Dial(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
	}

	registry := metrics.NewRegistry()
	if _, err := metrics.NewMetrics("txconsensus_finalizer", registry); err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	runner := &effects.Runner{
		Store:    st,
		Bus:      bus,
		Rollup:   httprollup.New(rollupURL),
		WorkerID: workerID,
	}

	w := finalization.New(finalization.Config{
		ID:                    workerID,
		PollInterval:          cfg.WorkerPollInterval,
		LeaseWindow:           cfg.TransactionTimeout,
		FinalityWindow:        cfg.FinalityWindow,
		AppealFailedReduction: cfg.FinalityWindowAppealReduction,
	}, st, runner, logger)

	metricsSrv := &http.Server{Addr: metricsAddr, Handler: promHandler(registry)}
	go func() { _ = metricsSrv.ListenAndServe() }()

	w.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.WorkerRestartBackoff)
	defer cancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
	return nil
}
