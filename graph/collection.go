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
	"encoding/json"

	"github.com/AleutianAI/symgraph/crossref"
)

// Collection is the output of one traversal call: the node set, one or more
// named graphs over it, and the overloads hit along the way. The
// hierarchical graphs slot is reserved and currently always empty.
type Collection struct {
	NodeSet            *NodeSet
	Graphs             []*NamedGraph
	Overloads          []Overload
	HierarchicalGraphs []*NamedGraph
}

// collectionNodeJSON is the serialized form of one node.
type collectionNodeJSON struct {
	Sym    crossref.Symbol `json:"sym"`
	Pretty string          `json:"pretty,omitempty"`
	Kind   string          `json:"kind,omitempty"`
	Badges []Badge         `json:"badges,omitempty"`
}

// collectionGraphJSON is the serialized form of one named graph. Edges are
// symbol pairs in edge insertion order, which is deterministic for a
// deterministic traversal.
type collectionGraphJSON struct {
	Name  string               `json:"name"`
	Edges [][2]crossref.Symbol `json:"edges"`
	Nodes []crossref.Symbol    `json:"nodes,omitempty"`
}

type collectionJSON struct {
	Nodes     []collectionNodeJSON  `json:"nodes"`
	Graphs    []collectionGraphJSON `json:"graphs"`
	Overloads []Overload            `json:"overloads,omitempty"`
}

// MarshalJSON serializes the collection into a stable document: nodes in
// insertion order, per-graph edges in insertion order, isolated nodes listed
// explicitly so zero-edge seeds survive a round trip.
func (c *Collection) MarshalJSON() ([]byte, error) {
	doc := collectionJSON{
		Nodes:     make([]collectionNodeJSON, 0, c.NodeSet.Len()),
		Graphs:    make([]collectionGraphJSON, 0, len(c.Graphs)),
		Overloads: c.Overloads,
	}
	for _, node := range c.NodeSet.Nodes() {
		doc.Nodes = append(doc.Nodes, collectionNodeJSON{
			Sym:    node.Symbol,
			Pretty: node.Record.Meta.Pretty,
			Kind:   node.Record.Meta.Kind,
			Badges: node.Badges,
		})
	}
	for _, g := range c.Graphs {
		gj := collectionGraphJSON{
			Name:  g.Name(),
			Edges: make([][2]crossref.Symbol, 0, g.EdgeCount()),
		}
		inEdge := make(map[NodeID]struct{}, g.NodeCount())
		for _, e := range g.edgeList {
			inEdge[e.from] = struct{}{}
			inEdge[e.to] = struct{}{}
			gj.Edges = append(gj.Edges, [2]crossref.Symbol{
				c.NodeSet.Node(e.from).Symbol,
				c.NodeSet.Node(e.to).Symbol,
			})
		}
		for _, id := range g.order {
			if _, ok := inEdge[id]; !ok {
				gj.Nodes = append(gj.Nodes, c.NodeSet.Node(id).Symbol)
			}
		}
		doc.Graphs = append(doc.Graphs, gj)
	}
	return json.Marshal(doc)
}
