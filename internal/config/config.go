// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config loads the consensus core's runtime configuration from
// environment variables, using the same caarlos0/env struct-tag idiom
// the teacher uses for its own process config.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is every environment-sourced knob named in spec.md §6.5.
type Config struct {
	ValidatorExecTimeout time.Duration `env:"CONSENSUS_VALIDATOR_EXEC_TIMEOUT_SECONDS" envDefault:"900s"`

	FinalityWindow               time.Duration `env:"VITE_FINALITY_WINDOW" envDefault:"5m"`
	FinalityWindowAppealReduction float64      `env:"VITE_FINALITY_WINDOW_APPEAL_FAILED_REDUCTION" envDefault:"0.5"`

	WorkerPollInterval   time.Duration `env:"WORKER_POLL_INTERVAL" envDefault:"1s"`
	TransactionTimeout   time.Duration `env:"TRANSACTION_TIMEOUT_MINUTES" envDefault:"10m"`

	WorkerMaxRestarts       int           `env:"WORKER_MAX_RESTARTS" envDefault:"5"`
	WorkerRestartWindow     time.Duration `env:"WORKER_RESTART_WINDOW_SECONDS" envDefault:"60s"`
	WorkerRestartBackoff    time.Duration `env:"WORKER_RESTART_BACKOFF_SECONDS" envDefault:"2s"`

	NoValidatorsMaxRetries     int           `env:"NO_VALIDATORS_MAX_RETRIES" envDefault:"10"`
	NoValidatorsBaseBackoff    time.Duration `env:"NO_VALIDATORS_BASE_BACKOFF_SECONDS" envDefault:"1s"`

	GenVMFailureUnhealthyThreshold int           `env:"GENVM_FAILURE_UNHEALTHY_THRESHOLD" envDefault:"3"`
	GenVMHealthProbeInterval       time.Duration `env:"GENVM_MANAGER_HEALTH_PROBE_INTERVAL_SECONDS" envDefault:"10s"`

	RedisURL string `env:"REDIS_URL"`

	DatabaseURL string `env:"DATABASE_URL,required"`
}

// Load parses Config from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
