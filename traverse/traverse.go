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
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/symgraph/crossref"
	"github.com/AleutianAI/symgraph/graph"
)

// Graph names in the output collection.
const (
	// mainGraphName is the graph produced by the worklist walk.
	mainGraphName = "only"

	// pathsGraphName is the graph produced by the paths-between reduction.
	pathsGraphName = "paths"
)

// Seed is one traversal starting point. Record may be nil, in which case it
// is resolved through the record source during seeding.
type Seed struct {
	Sym    crossref.Symbol
	Record *crossref.Record
}

// Traverser runs bounded traversals over a record source. A Traverser is
// immutable after construction and safe for concurrent Traverse calls; all
// mutable state is per call.
type Traverser struct {
	src  graph.RecordSource
	opts Options
}

// New creates a Traverser over the given record source.
func New(src graph.RecordSource, opts ...Option) (*Traverser, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Traverser{src: src, opts: options}, nil
}

// workItem is one worklist entry: a symbol and the depth it was discovered
// at.
type workItem struct {
	sym   crossref.Symbol
	depth uint32
}

// traversal is the call-scoped state of one Traverse invocation: the node
// set and graph being built, the worklist, and the two visited scopes. The
// `considered` set lives for the whole call and gates re-enqueue; a second,
// per-symbol set gates duplicate use edges and lives only inside the uses
// policy (see usesEdges).
type traversal struct {
	t *Traverser

	nodes      *graph.NodeSet
	g          *graph.NamedGraph
	worklist   []workItem
	considered map[crossref.Symbol]struct{}
	roots      []graph.NodeID
	overloads  []graph.Overload
	nodeLimit  uint32

	logger *slog.Logger
}

// Traverse seeds the graph, runs the worklist loop to completion or to the
// node limit, and returns the resulting collection; with paths-between
// enabled the collection is the pair-wise simple-path reduction instead.
// Any resolver or data error aborts the call with no partial result.
func (t *Traverser) Traverse(ctx context.Context, seeds []Seed) (*graph.Collection, error) {
	if len(seeds) == 0 {
		return nil, ErrNoSeeds
	}
	for _, seed := range seeds {
		if seed.Sym == "" {
			return nil, ErrEmptySeedSymbol
		}
	}

	callID := uuid.NewString()
	ctx, span := tracer.Start(ctx, "traverse.Traverse",
		trace.WithAttributes(
			attribute.String("call_id", callID),
			attribute.String("edge", t.opts.Edge),
			attribute.Int("seeds", len(seeds)),
			attribute.Bool("paths_between", t.opts.PathsBetween),
		),
	)
	defer span.End()

	start := time.Now()
	logger := t.opts.Logger.With(slog.String("call_id", callID))

	tv := &traversal{
		t:          t,
		nodes:      graph.NewNodeSet(),
		g:          graph.NewNamedGraph(mainGraphName),
		considered: make(map[crossref.Symbol]struct{}),
		nodeLimit:  t.opts.NodeLimit,
		logger:     logger,
	}
	if t.opts.PathsBetween {
		tv.nodeLimit = t.opts.PathsBetweenNodeLimit
	}

	if err := tv.seed(ctx, seeds); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := tv.run(ctx); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	coll := &graph.Collection{
		NodeSet:   tv.nodes,
		Graphs:    []*graph.NamedGraph{tv.g},
		Overloads: tv.overloads,
	}
	if t.opts.PathsBetween {
		coll = tv.reducePathsBetween()
	}

	recordTraversal(ctx, t.opts.Edge, coll, time.Since(start))
	span.SetAttributes(
		attribute.Int("nodes", coll.NodeSet.Len()),
		attribute.Int("overloads", len(coll.Overloads)),
	)
	logger.Debug("traversal complete",
		slog.String("edge", t.opts.Edge),
		slog.Int("nodes", coll.NodeSet.Len()),
		slog.Int("edges", coll.Graphs[0].EdgeCount()),
		slog.Int("overloads", len(coll.Overloads)),
		slog.Duration("duration", time.Since(start)),
	)
	return coll, nil
}

// seed inserts every starting symbol into the node set and graph, marks it
// considered, queues it at depth zero, and appends it to the root list used
// by paths-between. Seeds go into the graph explicitly so a zero-edge seed
// still shows up; dropping it renders confusingly empty class diagrams.
func (tv *traversal) seed(ctx context.Context, seeds []Seed) error {
	for _, seed := range seeds {
		var node *graph.SymbolNode
		if seed.Record != nil {
			node = tv.nodes.Add(seed.Sym, seed.Record)
		} else {
			var err error
			node, err = tv.nodes.Ensure(ctx, seed.Sym, tv.t.src)
			if err != nil {
				return err
			}
		}
		tv.considered[seed.Sym] = struct{}{}
		tv.g.EnsureNode(node.ID)
		tv.roots = append(tv.roots, node.ID)
		tv.worklist = append(tv.worklist, workItem{sym: seed.Sym, depth: 0})
	}
	return nil
}

// run is the worklist loop. Entries pop LIFO; the node limit is checked at
// the top of every iteration so worst-case work stays proportional to the
// configured limit.
func (tv *traversal) run(ctx context.Context) error {
	for len(tv.worklist) > 0 {
		item := tv.worklist[len(tv.worklist)-1]
		tv.worklist = tv.worklist[:len(tv.worklist)-1]

		if uint32(tv.nodes.Len()) >= tv.nodeLimit {
			tv.logger.Debug("stopping because of node limit",
				slog.String("sym", string(item.sym)),
				slog.Uint64("depth", uint64(item.depth)),
			)
			tv.overloads = append(tv.overloads, graph.Overload{
				Kind:        graph.OverloadNodeLimit,
				Sym:         string(item.sym),
				Exist:       uint32(len(tv.worklist)),
				Included:    tv.nodeLimit,
				GlobalLimit: tv.nodeLimit,
			})
			tv.worklist = nil
			break
		}

		tv.logger.Debug("processing",
			slog.String("sym", string(item.sym)),
			slog.Uint64("depth", uint64(item.depth)),
		)
		node, err := tv.nodes.Ensure(ctx, item.sym, tv.t.src)
		if err != nil {
			return err
		}

		for _, p := range policies {
			abandon, err := p.run(tv, ctx, node, item.depth)
			if err != nil {
				return err
			}
			if abandon {
				break
			}
		}
	}
	return nil
}

// maybeEnqueue queues sym for expansion at depth+1 unless the depth ceiling
// is reached or the symbol was already considered. Returns whether the
// symbol was queued. Note the order: at the ceiling the symbol is not
// marked considered either, so a later shallower discovery can still queue
// it.
func (tv *traversal) maybeEnqueue(sym crossref.Symbol, depth uint32, via string) bool {
	if depth >= tv.t.opts.MaxDepth {
		return false
	}
	if _, seen := tv.considered[sym]; seen {
		return false
	}
	tv.considered[sym] = struct{}{}
	tv.worklist = append(tv.worklist, workItem{sym: sym, depth: depth + 1})
	tv.logger.Debug("scheduling "+via, slog.String("sym", string(sym)))
	return true
}
