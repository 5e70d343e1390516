// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import "slices"

// edgeKey identifies a directed edge for dedup.
type edgeKey struct {
	from, to NodeID
}

// NamedGraph is a named directed graph over node ids. Node and edge
// insertion are idempotent and there is at most one edge per ordered node
// pair, so the structure is multigraph-free. Insertion order of nodes and
// edges is preserved for deterministic serialization.
type NamedGraph struct {
	name string

	nodes    map[NodeID]struct{}
	order    []NodeID
	out      map[NodeID][]NodeID
	edgeSet  map[edgeKey]struct{}
	edgeList []edgeKey
}

// NewNamedGraph creates an empty graph with the given name.
func NewNamedGraph(name string) *NamedGraph {
	return &NamedGraph{
		name:    name,
		nodes:   make(map[NodeID]struct{}),
		out:     make(map[NodeID][]NodeID),
		edgeSet: make(map[edgeKey]struct{}),
	}
}

// Name returns the graph's name.
func (g *NamedGraph) Name() string {
	return g.name
}

// EnsureNode inserts the node if not present. Seeds are ensured explicitly
// so a zero-edge seed still appears in the output.
func (g *NamedGraph) EnsureNode(id NodeID) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = struct{}{}
	g.order = append(g.order, id)
}

// AddEdge inserts the directed edge from -> to, ensuring both endpoints.
// Re-adding an existing edge is a no-op.
func (g *NamedGraph) AddEdge(from, to NodeID) {
	g.EnsureNode(from)
	g.EnsureNode(to)
	key := edgeKey{from: from, to: to}
	if _, ok := g.edgeSet[key]; ok {
		return
	}
	g.edgeSet[key] = struct{}{}
	g.edgeList = append(g.edgeList, key)
	g.out[from] = append(g.out[from], to)
}

// HasNode reports whether the node is present.
func (g *NamedGraph) HasNode(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// HasEdge reports whether the directed edge from -> to is present.
func (g *NamedGraph) HasEdge(from, to NodeID) bool {
	_, ok := g.edgeSet[edgeKey{from: from, to: to}]
	return ok
}

// NodeCount returns the number of nodes.
func (g *NamedGraph) NodeCount() int {
	return len(g.order)
}

// EdgeCount returns the number of distinct edges.
func (g *NamedGraph) EdgeCount() int {
	return len(g.edgeList)
}

// OutNeighbors returns the successors of id in edge insertion order. The
// returned slice is owned by the graph and must not be modified.
func (g *NamedGraph) OutNeighbors(id NodeID) []NodeID {
	return g.out[id]
}

// AllSimplePaths enumerates every simple path (no repeated node) from source
// to target. Returns nil when no path exists. The trivial zero-length path
// is not included when source == target.
func (g *NamedGraph) AllSimplePaths(source, target NodeID) [][]NodeID {
	if !g.HasNode(source) || !g.HasNode(target) {
		return nil
	}

	var paths [][]NodeID
	onPath := map[NodeID]struct{}{source: {}}
	path := []NodeID{source}

	var walk func(cur NodeID)
	walk = func(cur NodeID) {
		for _, next := range g.out[cur] {
			if next == target {
				found := slices.Clone(path)
				found = append(found, target)
				paths = append(paths, found)
				continue
			}
			if _, visiting := onPath[next]; visiting {
				continue
			}
			onPath[next] = struct{}{}
			path = append(path, next)
			walk(next)
			path = path[:len(path)-1]
			delete(onPath, next)
		}
	}
	walk(source)
	return paths
}
