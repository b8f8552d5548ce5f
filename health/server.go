// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// WorkerReport is the payload spec.md §6.6 assigns to GET /health.
type WorkerReport struct {
	Status       string  `json:"status"`
	WorkerID     string  `json:"worker_id"`
	RestartCount int     `json:"restart_count"`
	MemoryMB     float64 `json:"memory_mb"`
	CPUPercent   float64 `json:"cpu_percent"`
}

// StatusReport is the payload for GET /status: the same data plus
// the running configuration and restart bookkeeping.
type StatusReport struct {
	WorkerReport
	PollInterval          time.Duration `json:"poll_interval"`
	TransactionTimeout    time.Duration `json:"transaction_timeout"`
	MaxRestarts           int           `json:"max_restarts"`
	RestartWindow         time.Duration `json:"restart_window"`
	LeasedTransactionHash string        `json:"leased_transaction_hash,omitempty"`
	LeasedSince           *time.Time    `json:"leased_since,omitempty"`
}

// Provider is implemented by a worker (or worker supervisor) and answers
// the two endpoints. Healthy must return false exactly when spec.md §6.6's
// conditions hold: permanently failed, task dead, GenVM unresponsive past
// threshold, or a lease held past the unhealthy-after window.
type Provider interface {
	Report(ctx context.Context) (report WorkerReport, healthy bool)
	Detail(ctx context.Context) (StatusReport, error)
}

// Server exposes a Provider over HTTP.
type Server struct {
	provider Provider
}

// NewServer wraps a Provider for HTTP serving.
func NewServer(provider Provider) *Server {
	return &Server{provider: provider}
}

// Handler returns an http.Handler routing /health and /status.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report, healthy := s.provider.Report(r.Context())
	w.Header().Set("Content-Type", "application/json")
	if !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(report)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	detail, err := s.provider.Detail(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(detail)
}
