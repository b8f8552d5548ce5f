// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"hash/fnv"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// workerSeed derives a deterministic-per-process-identity seed from the
// worker's ID, so restarts of the same worker ID don't collide with a
// sibling worker's draws while still being reproducible for debugging.
func workerSeed(workerID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(workerID))
	return int64(h.Sum64())
}

func promHandler(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
