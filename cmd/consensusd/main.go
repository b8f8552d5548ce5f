// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "consensusd",
	Short: "Transaction consensus core: worker, finalization, and health/metrics server",
	Long: `consensusd runs the decentralized compute platform's transaction
consensus core: the claim loop that drives transactions through leader
election, committee validation, and the appeal protocol, plus the
separate finalization worker and the /health, /status, and /metrics
endpoints workers and operators depend on.`,
}

func main() {
	rootCmd.AddCommand(
		runCmd(),
		finalizeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
