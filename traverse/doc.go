// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package traverse derives a bounded, comprehensible subgraph from the
// crossref index, for consumption by navigation and visualization features
// (call graphs, class diagrams, inheritance views).
//
// # Theory of Operation
//
// The crossref index can be thought of as a massive graph: every record is
// a node, and records reference other symbol nodes both through structured
// metadata (overrides, binding slots, ontology slots, fields) and through
// hit lines whose context symbol names the referencing code. The index is
// deliberately denormalized rather than stored in a graph database, so this
// package enumerates and considers edges dynamically, starting from a seed
// set and walking outward.
//
// A traversal is a worklist loop. Each dequeued symbol is resolved to its
// record (exactly once per call; the node set memoizes), then a fixed,
// ordered list of edge policies runs against the record. Each policy may
// add edges and nodes, queue newly discovered symbols, or abandon the
// remaining policies for the symbol. Two independent limits bound the walk
// against an effectively unbounded index: a call-wide node limit checked at
// the top of every iteration, and a per-symbol cap on use path-groups. Every
// truncation is recorded as an overload in the output.
//
// The worklist is a stack: entries push and pop LIFO, so expansion is
// depth-first even though per-entry depths are tracked from the seeds. The
// order is load-bearing and must not change: which paths survive a
// node-limit truncation depends on it.
//
// When paths-between mode is enabled the walk runs under the larger node
// limit, then the seed roots are combined pair-wise and every simple path
// between each pair is merged into a fresh, much smaller node-set/graph
// pair. The reduced output is bounded only by what the main pass produced;
// no additional cap is applied during reduction.
package traverse
