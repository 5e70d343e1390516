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

import (
	"context"
	"fmt"

	"github.com/AleutianAI/symgraph/crossref"
)

// RecordSource resolves a symbol to its crossref record. Implementations may
// be backed by an embedded store, a remote index, or a cache; lookups may
// block on I/O. A RecordSource may be shared across concurrent traversal
// calls, so implementations must be safe for concurrent use.
type RecordSource interface {
	Lookup(ctx context.Context, sym crossref.Symbol) (*crossref.Record, error)
}

// SymbolNode is one resolved symbol in a NodeSet: its id, its owned crossref
// record, and a mutable badge list.
type SymbolNode struct {
	ID     NodeID
	Symbol crossref.Symbol
	Record *crossref.Record
	Badges []Badge
}

// Callable reports whether the node's structural kind is function or method.
func (n *SymbolNode) Callable() bool {
	return n.Record.Callable()
}

// AddBadge appends a badge with the given label to the node.
func (n *SymbolNode) AddBadge(label string) {
	n.Badges = append(n.Badges, Badge{Label: label})
}

// NodeSet owns the symbol-to-node mapping for one traversal call. It
// guarantees at most one RecordSource lookup and one stored record per
// symbol: once a symbol is in the set, Ensure never hits the source again.
type NodeSet struct {
	nodes []*SymbolNode
	ids   map[crossref.Symbol]NodeID
}

// NewNodeSet creates an empty NodeSet.
func NewNodeSet() *NodeSet {
	return &NodeSet{
		ids: make(map[crossref.Symbol]NodeID),
	}
}

// Len returns the number of distinct resolved nodes.
func (s *NodeSet) Len() int {
	return len(s.nodes)
}

// Get returns the node for sym if it has been added.
func (s *NodeSet) Get(sym crossref.Symbol) (*SymbolNode, bool) {
	id, ok := s.ids[sym]
	if !ok {
		return nil, false
	}
	return s.nodes[id], true
}

// Node returns the node with the given id. The id must have been issued by
// this set.
func (s *NodeSet) Node(id NodeID) *SymbolNode {
	return s.nodes[id]
}

// Nodes returns the nodes in insertion order. The returned slice is owned by
// the set and must not be modified.
func (s *NodeSet) Nodes() []*SymbolNode {
	return s.nodes
}

// Add inserts a symbol with an already-known record, returning its node.
// Adding a symbol that is already present is a no-op returning the existing
// node; the new record is ignored.
func (s *NodeSet) Add(sym crossref.Symbol, rec *crossref.Record) *SymbolNode {
	if id, ok := s.ids[sym]; ok {
		return s.nodes[id]
	}
	node := &SymbolNode{
		ID:     NodeID(len(s.nodes)),
		Symbol: sym,
		Record: rec,
	}
	s.nodes = append(s.nodes, node)
	s.ids[sym] = node.ID
	return node
}

// Ensure returns the node for sym, resolving its record through src on first
// sight. This is the exactly-once-fetch point: every traversal lookup funnels
// through here, and a symbol already in the set is returned without touching
// the source.
func (s *NodeSet) Ensure(ctx context.Context, sym crossref.Symbol, src RecordSource) (*SymbolNode, error) {
	if id, ok := s.ids[sym]; ok {
		return s.nodes[id], nil
	}
	rec, err := src.Lookup(ctx, sym)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", sym, err)
	}
	return s.Add(sym, rec), nil
}

// PropagatePaths merges every node and edge on the given paths into the
// destination set/graph pair. Path node ids refer to this set. The
// suppression set is shared across calls so a node already propagated for an
// earlier root pair is not re-added, and edge insertion stays idempotent on
// the destination graph.
func (s *NodeSet) PropagatePaths(paths [][]NodeID, dst *NamedGraph, dstSet *NodeSet, suppression map[crossref.Symbol]struct{}) {
	for _, path := range paths {
		var prev *SymbolNode
		for _, id := range path {
			node := s.nodes[id]
			if _, seen := suppression[node.Symbol]; !seen {
				suppression[node.Symbol] = struct{}{}
				added := dstSet.Add(node.Symbol, node.Record)
				added.Badges = append(added.Badges, node.Badges...)
				dst.EnsureNode(added.ID)
			}
			cur, _ := dstSet.Get(node.Symbol)
			if prev != nil {
				dst.AddEdge(prev.ID, cur.ID)
			}
			prev = cur
		}
	}
}
