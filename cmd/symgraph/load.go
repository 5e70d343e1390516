// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/symgraph/resolver"
)

var loadCmd = &cobra.Command{
	Use:   "load [file]",
	Short: "Bulk-load a crossref JSONL dump into the store",
	Long: `Load reads one JSON object per line of the form
{"sym": "...", "record": {...}} and stores each record under its symbol.
Existing records are replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.Default()
		store, err := openStore(logger)
		if err != nil {
			return err
		}
		defer store.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open dump: %w", err)
		}
		defer f.Close()

		start := time.Now()
		count, err := resolver.LoadJSONL(cmd.Context(), store, f)
		if err != nil {
			return fmt.Errorf("load dump: %w", err)
		}
		logger.Info("crossref dump loaded",
			slog.Int("records", count),
			slog.Duration("duration", time.Since(start)),
		)
		return nil
	},
}
