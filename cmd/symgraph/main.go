// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command symgraph derives bounded symbol subgraphs from a precomputed
// crossref index, for call graphs, class diagrams, and inheritance views.
//
// Usage:
//
//	# Load a crossref JSONL dump into a local store
//	symgraph load --store ./xref.db crossref.jsonl
//
//	# One-shot traversal, JSON graph collection on stdout
//	symgraph traverse --store ./xref.db --edge callees 'FunctionSymbol'
//
//	# Serve the HTTP API
//	symgraph serve --store ./xref.db --port 8080
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/symgraph/resolver"
	"github.com/AleutianAI/symgraph/telemetry"
)

// Store drivers accepted by --driver.
const (
	driverBadger = "badger"
	driverSQLite = "sqlite"
)

var (
	flagStore  string
	flagDriver string
	flagDebug  bool
)

var rootCmd = &cobra.Command{
	Use:   "symgraph",
	Short: "Bounded subgraph derivation over a crossref index",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.SetupLogging(flagDebug)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "Path to the crossref store")
	rootCmd.PersistentFlags().StringVar(&flagDriver, "driver", driverBadger, "Store driver: badger or sqlite")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(traverseCmd)
	rootCmd.AddCommand(loadCmd)
}

// openStore opens the configured store. The caller closes it.
func openStore(logger *slog.Logger) (resolver.Store, error) {
	if flagStore == "" {
		return nil, fmt.Errorf("--store is required")
	}
	switch flagDriver {
	case driverBadger:
		cfg := resolver.DefaultBadgerConfig()
		cfg.Path = flagStore
		cfg.Logger = logger
		return resolver.OpenBadger(cfg)
	case driverSQLite:
		return resolver.OpenSQLite(flagStore)
	default:
		return nil, fmt.Errorf("unknown store driver %q", flagDriver)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
