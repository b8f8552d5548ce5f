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
	"github.com/luxfi/txconsensus/executor/httpexecutor"
	"github.com/luxfi/txconsensus/health"
	"github.com/luxfi/txconsensus/internal/collections/sampler"
	"github.com/luxfi/txconsensus/internal/config"
	"github.com/luxfi/txconsensus/internal/metrics"
	"github.com/luxfi/txconsensus/internal/txlog"
	"github.com/luxfi/txconsensus/rollup/httprollup"
	"github.com/luxfi/txconsensus/selection"
	"github.com/luxfi/txconsensus/statemachine"
	"github.com/luxfi/txconsensus/store/postgres"
	"github.com/luxfi/txconsensus/validatorpool"
	"github.com/luxfi/txconsensus/worker"
)

func runCmd() *cobra.Command {
	var (
		workerID    string
		genvmURL    string
		rollupURL   string
		healthAddr  string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a consensus worker: claim, propose, commit, reveal, and appeal transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(cmd.Context(), workerID, genvmURL, rollupURL, healthAddr, metricsAddr)
		},
	}

	cmd.Flags().StringVar(&workerID, "worker-id", "consensus-worker-1", "unique identifier for this worker's lease")
	cmd.Flags().StringVar(&genvmURL, "genvm-url", "http://localhost:9090", "GenVM Manager base URL")
	cmd.Flags().StringVar(&rollupURL, "rollup-url", "http://localhost:9091", "rollup bridge base URL")
	cmd.Flags().StringVar(&healthAddr, "health-addr", ":8081", "health/status HTTP listen address")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9095", "prometheus /metrics listen address")
	return cmd
}

func runWorker(ctx context.Context, workerID, genvmURL, rollupURL, healthAddr, metricsAddr string) error {
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

	pool := validatorpool.New(st.Pool())

	bus := eventbus.NewNoOp()
	if cfg.RedisURL != "" {
		bus, err = eventbus.Dial(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
	}

	registry := metrics.NewRegistry()
	m, err := metrics.NewMetrics("txconsensus", registry)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	runner := &effects.Runner{
		Store:    st,
		Bus:      bus,
		Rollup:   httprollup.New(rollupURL),
		WorkerID: workerID,
	}

	handler := &statemachine.Handler{
		Store:                st,
		Executor:             httpexecutor.New(genvmURL),
		Runner:               runner,
		Selector:             selection.NewSelector(sampler.NewSource(workerSeed(workerID))),
		Metrics:              m,
		Log:                  logger,
		ValidatorExecTimeout: cfg.ValidatorExecTimeout,
	}

	w := worker.New(worker.Config{
		ID:                      workerID,
		PollInterval:            cfg.WorkerPollInterval,
		LeaseWindow:             cfg.TransactionTimeout,
		NoValidatorsMaxRetries:  cfg.NoValidatorsMaxRetries,
		NoValidatorsBaseBackoff: cfg.NoValidatorsBaseBackoff,
		MaxRestarts:             cfg.WorkerMaxRestarts,
		RestartWindow:           cfg.WorkerRestartWindow,
		RestartBackoff:          cfg.WorkerRestartBackoff,
	}, st, pool, handler, m, logger)

	healthSrv := &http.Server{Addr: healthAddr, Handler: health.NewServer(w).Handler()}
	metricsSrv := &http.Server{Addr: metricsAddr, Handler: promHandler(registry)}

	go func() { _ = healthSrv.ListenAndServe() }()
	go func() { _ = metricsSrv.ListenAndServe() }()

	w.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.WorkerRestartBackoff)
	defer cancel()
	_ = healthSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	return nil
}
