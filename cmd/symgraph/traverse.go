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
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/symgraph/crossref"
	"github.com/AleutianAI/symgraph/traverse"
)

var (
	flagEdge                  string
	flagMaxDepth              uint32
	flagPathsBetween          bool
	flagNodeLimit             uint32
	flagPathsBetweenNodeLimit uint32
	flagSkipUsesAtPathCount   uint32
)

var traverseCmd = &cobra.Command{
	Use:   "traverse [symbols...]",
	Short: "Run one traversal and print the graph collection as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.Default()
		store, err := openStore(logger)
		if err != nil {
			return err
		}
		defer store.Close()

		tr, err := traverse.New(store,
			traverse.WithEdge(flagEdge),
			traverse.WithMaxDepth(flagMaxDepth),
			traverse.WithPathsBetween(flagPathsBetween),
			traverse.WithNodeLimit(flagNodeLimit),
			traverse.WithPathsBetweenNodeLimit(flagPathsBetweenNodeLimit),
			traverse.WithSkipUsesAtPathCount(flagSkipUsesAtPathCount),
			traverse.WithLogger(logger),
		)
		if err != nil {
			return err
		}

		seeds := make([]traverse.Seed, 0, len(args))
		for _, sym := range args {
			seeds = append(seeds, traverse.Seed{Sym: crossref.Symbol(sym)})
		}

		coll, err := tr.Traverse(cmd.Context(), seeds)
		if err != nil {
			return fmt.Errorf("traverse: %w", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(coll)
	},
}

func init() {
	traverseCmd.Flags().StringVarP(&flagEdge, "edge", "e", traverse.DefaultEdge,
		"Edge kind to traverse (callees, uses, class, inheritance)")
	traverseCmd.Flags().Uint32VarP(&flagMaxDepth, "max-depth", "d", traverse.DefaultMaxDepth,
		"Maximum traversal depth")
	traverseCmd.Flags().BoolVar(&flagPathsBetween, "paths-between", false,
		"Reduce the result to simple paths between seed pairs")
	traverseCmd.Flags().Uint32Var(&flagNodeLimit, "node-limit", traverse.DefaultNodeLimit,
		"Maximum number of nodes in the resulting graph")
	traverseCmd.Flags().Uint32Var(&flagPathsBetweenNodeLimit, "paths-between-node-limit", traverse.DefaultPathsBetweenNodeLimit,
		"Node limit while building a graph for paths-between")
	traverseCmd.Flags().Uint32Var(&flagSkipUsesAtPathCount, "skip-uses-at-path-count", traverse.DefaultSkipUsesAtPathCount,
		"Skip a symbol's uses at this many path-groups")
}
