// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package traverse

import (
	"log/slog"

	"github.com/AleutianAI/symgraph/crossref"
	"github.com/AleutianAI/symgraph/graph"
)

// reducePathsBetween post-processes a completed walk into a graph holding
// only the nodes on simple paths between pairs of seed roots. The walked
// node set is expected to carry an order of magnitude more data than the
// result should, so a fresh node-set/graph pair is built instead of pruning
// the original. Every unordered root pair contributes its forward and
// reverse simple paths; the suppression set spans all pairs so repeated
// nodes are inserted once. The reduced output is not re-capped: the larger
// limit used during the walk is the only bound on its size.
func (tv *traversal) reducePathsBetween() *graph.Collection {
	pathsSet := graph.NewNodeSet()
	pathsGraph := graph.NewNamedGraph(pathsGraphName)
	suppression := make(map[crossref.Symbol]struct{})

	for i := 0; i < len(tv.roots); i++ {
		for j := i + 1; j < len(tv.roots); j++ {
			source, target := tv.roots[i], tv.roots[j]

			nodePaths := tv.g.AllSimplePaths(source, target)
			tv.logger.Debug("forward paths found", slog.Int("path_count", len(nodePaths)))
			tv.nodes.PropagatePaths(nodePaths, pathsGraph, pathsSet, suppression)

			nodePaths = tv.g.AllSimplePaths(target, source)
			tv.logger.Debug("reverse paths found", slog.Int("path_count", len(nodePaths)))
			tv.nodes.PropagatePaths(nodePaths, pathsGraph, pathsSet, suppression)
		}
	}

	return &graph.Collection{
		NodeSet:   pathsSet,
		Graphs:    []*graph.NamedGraph{pathsGraph},
		Overloads: tv.overloads,
	}
}
