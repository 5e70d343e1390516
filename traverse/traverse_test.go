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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/symgraph/crossref"
	"github.com/AleutianAI/symgraph/graph"
)

// fakeSource serves crossref records from an in-memory map.
type fakeSource struct {
	records map[crossref.Symbol]*crossref.Record
}

func sourceOf(t *testing.T, docs map[crossref.Symbol]string) *fakeSource {
	t.Helper()
	src := &fakeSource{records: make(map[crossref.Symbol]*crossref.Record, len(docs))}
	for sym, doc := range docs {
		rec, err := crossref.Decode([]byte(doc))
		require.NoError(t, err, "fixture %s", sym)
		src.records[sym] = rec
	}
	return src
}

func (s *fakeSource) Lookup(_ context.Context, sym crossref.Symbol) (*crossref.Record, error) {
	rec, ok := s.records[sym]
	if !ok {
		return nil, fmt.Errorf("unknown symbol %s", sym)
	}
	return rec, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTraverser(t *testing.T, src graph.RecordSource, opts ...Option) *Traverser {
	t.Helper()
	opts = append(opts, WithLogger(quietLogger()))
	tr, err := New(src, opts...)
	require.NoError(t, err)
	return tr
}

// hasEdge resolves from/to through the collection's node set and checks the
// graph for the directed edge.
func hasEdge(coll *graph.Collection, g *graph.NamedGraph, from, to crossref.Symbol) bool {
	a, ok := coll.NodeSet.Get(from)
	if !ok {
		return false
	}
	b, ok := coll.NodeSet.Get(to)
	if !ok {
		return false
	}
	return g.HasEdge(a.ID, b.ID)
}

func hasNode(coll *graph.Collection, sym crossref.Symbol) bool {
	_, ok := coll.NodeSet.Get(sym)
	return ok
}

func TestNew_NilSource(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilSource)
}

func TestTraverse_SeedValidation(t *testing.T) {
	tr := newTraverser(t, sourceOf(t, nil))

	_, err := tr.Traverse(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoSeeds)

	_, err = tr.Traverse(context.Background(), []Seed{{Sym: ""}})
	assert.ErrorIs(t, err, ErrEmptySeedSymbol)
}

func TestTraverse_Callees(t *testing.T) {
	src := sourceOf(t, map[crossref.Symbol]string{
		"A": `{"meta": {"kind": "function"}, "callees": [{"sym": "B", "kind": "function", "pretty": "B()"}]}`,
		"B": `{"meta": {"kind": "function"}}`,
	})
	tr := newTraverser(t, src)

	coll, err := tr.Traverse(context.Background(), []Seed{{Sym: "A"}})
	require.NoError(t, err)

	require.Len(t, coll.Graphs, 1)
	g := coll.Graphs[0]
	assert.Equal(t, "only", g.Name())
	assert.Equal(t, 2, coll.NodeSet.Len())
	assert.True(t, hasEdge(coll, g, "A", "B"))
	assert.Empty(t, coll.Overloads)
}

func TestTraverse_CalleesSkipsNonCallable(t *testing.T) {
	src := sourceOf(t, map[crossref.Symbol]string{
		"A": `{"meta": {"kind": "function"}, "callees": [{"sym": "V", "kind": "variable", "pretty": "v"}]}`,
		"V": `{"meta": {"kind": "variable"}}`,
	})
	tr := newTraverser(t, src)

	coll, err := tr.Traverse(context.Background(), []Seed{{Sym: "A"}})
	require.NoError(t, err)

	// The target is resolved into the node set but draws no edge and is
	// never expanded.
	assert.True(t, hasNode(coll, "V"))
	assert.False(t, hasEdge(coll, coll.Graphs[0], "A", "V"))
	assert.Equal(t, 0, coll.Graphs[0].EdgeCount())
}

func TestTraverse_SeedWithRecord(t *testing.T) {
	// A seed carrying its own record must not hit the source for itself.
	rec, err := crossref.Decode([]byte(`{"meta": {"kind": "function"}}`))
	require.NoError(t, err)

	tr := newTraverser(t, sourceOf(t, nil))
	coll, err := tr.Traverse(context.Background(), []Seed{{Sym: "A", Record: rec}})
	require.NoError(t, err)
	assert.Equal(t, 1, coll.NodeSet.Len())
	assert.True(t, coll.Graphs[0].HasNode(0))
}

func TestTraverse_UnknownSeed(t *testing.T) {
	tr := newTraverser(t, sourceOf(t, nil))
	_, err := tr.Traverse(context.Background(), []Seed{{Sym: "nope"}})
	assert.Error(t, err)
}

func TestTraverse_DepthCeiling(t *testing.T) {
	src := sourceOf(t, map[crossref.Symbol]string{
		"A": `{"meta": {"kind": "function"}, "callees": [{"sym": "B"}]}`,
		"B": `{"meta": {"kind": "function"}, "callees": [{"sym": "C"}]}`,
		"C": `{"meta": {"kind": "function"}, "callees": [{"sym": "D"}]}`,
		"D": `{"meta": {"kind": "function"}}`,
	})
	tr := newTraverser(t, src, WithMaxDepth(1))

	coll, err := tr.Traverse(context.Background(), []Seed{{Sym: "A"}})
	require.NoError(t, err)

	g := coll.Graphs[0]
	// B was discovered at the ceiling: it still gets its edge and is
	// expanded once, but C discovered at depth 1 is not expanded.
	assert.True(t, hasEdge(coll, g, "A", "B"))
	assert.True(t, hasEdge(coll, g, "B", "C"))
	assert.False(t, hasNode(coll, "D"))
}

func TestTraverse_CalleeCycle(t *testing.T) {
	src := sourceOf(t, map[crossref.Symbol]string{
		"A": `{"meta": {"kind": "function"}, "callees": [{"sym": "B"}]}`,
		"B": `{"meta": {"kind": "function"}, "callees": [{"sym": "A"}]}`,
	})
	tr := newTraverser(t, src)

	coll, err := tr.Traverse(context.Background(), []Seed{{Sym: "A"}})
	require.NoError(t, err)

	g := coll.Graphs[0]
	// Re-discovery of a considered symbol still draws the edge, it just
	// does not re-enqueue, so the cycle terminates with both edges.
	assert.True(t, hasEdge(coll, g, "A", "B"))
	assert.True(t, hasEdge(coll, g, "B", "A"))
	assert.Equal(t, 2, coll.NodeSet.Len())
}

func TestTraverse_NodeLimit(t *testing.T) {
	src := sourceOf(t, map[crossref.Symbol]string{
		"A": `{"meta": {"kind": "function"}, "callees": [{"sym": "B"}]}`,
		"B": `{"meta": {"kind": "function"}}`,
		"C": `{"meta": {"kind": "function"}}`,
	})
	tr := newTraverser(t, src, WithNodeLimit(1))

	coll, err := tr.Traverse(context.Background(), []Seed{{Sym: "A"}, {Sym: "C"}})
	require.NoError(t, err)

	// Both seeds resolve during seeding; the limit trips on the first pop.
	require.Len(t, coll.Overloads, 1)
	ov := coll.Overloads[0]
	assert.Equal(t, graph.OverloadNodeLimit, ov.Kind)
	assert.Equal(t, "C", ov.Sym)
	assert.Equal(t, uint32(1), ov.Exist)
	assert.Equal(t, uint32(1), ov.Included)
	assert.Equal(t, uint32(1), ov.GlobalLimit)
	assert.Equal(t, 0, coll.Graphs[0].EdgeCount())
	assert.False(t, hasNode(coll, "B"))
}

func TestTraverse_Uses(t *testing.T) {
	src := sourceOf(t, map[crossref.Symbol]string{
		"T": `{
			"meta": {"kind": "function"},
			"uses": [
				{"path": "a.cpp", "lines": [
					{"context": "Caller", "contextsym": "Caller"},
					{"context": "Caller", "contextsym": "Caller"},
					{"context": "", "contextsym": ""}
				]},
				{"path": "b.cpp", "lines": [{"context": "Other", "contextsym": "Other"}]}
			]
		}`,
		"Caller": `{"meta": {"kind": "function"}}`,
		"Other":  `{"meta": {"kind": "variable"}}`,
	})
	tr := newTraverser(t, src, WithEdge(EdgeUses))

	coll, err := tr.Traverse(context.Background(), []Seed{{Sym: "T"}})
	require.NoError(t, err)

	g := coll.Graphs[0]
	// Duplicate hits collapse to one edge, empty context symbols are
	// skipped, non-callable contexts draw nothing.
	assert.True(t, hasEdge(coll, g, "Caller", "T"))
	assert.Equal(t, 1, g.EdgeCount())
	assert.False(t, hasEdge(coll, g, "Other", "T"))
}

func TestTraverse_UsesPathCountSkip(t *testing.T) {
	src := sourceOf(t, map[crossref.Symbol]string{
		"T": `{
			"meta": {"kind": "function"},
			"uses": [
				{"path": "a.cpp", "lines": [{"contextsym": "Caller"}]},
				{"path": "b.cpp", "lines": [{"contextsym": "Caller"}]},
				{"path": "c.cpp", "lines": [{"contextsym": "Caller"}]}
			]
		}`,
		"Caller": `{"meta": {"kind": "function"}}`,
	})
	tr := newTraverser(t, src, WithEdge(EdgeUses), WithSkipUsesAtPathCount(3))

	coll, err := tr.Traverse(context.Background(), []Seed{{Sym: "T"}})
	require.NoError(t, err)

	require.Len(t, coll.Overloads, 1)
	ov := coll.Overloads[0]
	assert.Equal(t, graph.OverloadUsesPaths, ov.Kind)
	assert.Equal(t, "T", ov.Sym)
	assert.Equal(t, uint32(3), ov.Exist)
	assert.Equal(t, uint32(3), ov.LocalLimit)
	assert.Equal(t, 0, coll.Graphs[0].EdgeCount())
	assert.False(t, hasNode(coll, "Caller"))
}

func TestTraverse_Overrides(t *testing.T) {
	src := sourceOf(t, map[crossref.Symbol]string{
		"Impl": `{"meta": {"kind": "method", "overrides": [{"sym": "Base", "pretty": "Base::m()"}]}}`,
		"Base": `{"meta": {"kind": "method"}}`,
	})
	// Overrides apply for every edge kind.
	tr := newTraverser(t, src, WithEdge(EdgeUses))

	coll, err := tr.Traverse(context.Background(), []Seed{{Sym: "Impl"}})
	require.NoError(t, err)

	assert.True(t, hasEdge(coll, coll.Graphs[0], "Base", "Impl"))
	assert.True(t, hasNode(coll, "Base"))
}

func TestTraverse_OverridesConsideredTargetDrawsNoEdge(t *testing.T) {
	src := sourceOf(t, map[crossref.Symbol]string{
		"Impl": `{"meta": {"kind": "method", "overrides": [{"sym": "Base", "pretty": "Base::m()"}]}}`,
		"Base": `{"meta": {"kind": "method"}}`,
	})
	tr := newTraverser(t, src)

	// Seeding Base marks it considered before Impl's overrides run, so no
	// override edge is drawn at all.
	coll, err := tr.Traverse(context.Background(), []Seed{{Sym: "Impl"}, {Sym: "Base"}})
	require.NoError(t, err)

	assert.False(t, hasEdge(coll, coll.Graphs[0], "Base", "Impl"))
	assert.Equal(t, 0, coll.Graphs[0].EdgeCount())
}

func TestTraverse_OverriddenByOnlyForInheritance(t *testing.T) {
	docs := map[crossref.Symbol]string{
		"Base": `{"meta": {"kind": "method", "overriddenBy": ["Impl"]}}`,
		"Impl": `{"meta": {"kind": "method"}}`,
	}

	t.Run("inheritance", func(t *testing.T) {
		tr := newTraverser(t, sourceOf(t, docs), WithEdge(EdgeInheritance))
		coll, err := tr.Traverse(context.Background(), []Seed{{Sym: "Base"}})
		require.NoError(t, err)
		assert.True(t, hasEdge(coll, coll.Graphs[0], "Impl", "Base"))
	})

	t.Run("callees", func(t *testing.T) {
		tr := newTraverser(t, sourceOf(t, docs), WithEdge(EdgeCallees))
		coll, err := tr.Traverse(context.Background(), []Seed{{Sym: "Base"}})
		require.NoError(t, err)
		assert.False(t, hasNode(coll, "Impl"))
	})
}

func TestTraverse_SlotOwnerRecvRedirectsToSend(t *testing.T) {
	src := sourceOf(t, map[crossref.Symbol]string{
		"Recv": `{
			"meta": {"kind": "method", "slotOwner": {"sym": "Owner", "slot_kind": "recv"}},
			"callees": [{"sym": "X"}]
		}`,
		"Owner": `{"meta": {"kind": "class", "bindingSlots": [{"sym": "Send", "slot_kind": "send"}]}}`,
		"Send":  `{"meta": {"kind": "method"}}`,
		"X":     `{"meta": {"kind": "function"}}`,
	})
	tr := newTraverser(t, src)

	coll, err := tr.Traverse(context.Background(), []Seed{{Sym: "Recv"}})
	require.NoError(t, err)

	g := coll.Graphs[0]
	assert.True(t, hasEdge(coll, g, "Send", "Recv"))
	// The recv's own callees are elided entirely.
	assert.False(t, hasNode(coll, "X"))
}

func TestTraverse_SlotOwnerSupportKindsIgnored(t *testing.T) {
	src := sourceOf(t, map[crossref.Symbol]string{
		"F": `{
			"meta": {"kind": "function", "slotOwner": {"sym": "Pref", "slot_kind": "enablingPref"}},
			"callees": [{"sym": "G"}]
		}`,
		"G": `{"meta": {"kind": "function"}}`,
	})
	tr := newTraverser(t, src)

	coll, err := tr.Traverse(context.Background(), []Seed{{Sym: "F"}})
	require.NoError(t, err)

	// The support-glue owner is never even resolved; callees proceed.
	assert.False(t, hasNode(coll, "Pref"))
	assert.True(t, hasEdge(coll, coll.Graphs[0], "F", "G"))
}

func TestTraverse_SlotOwner(t *testing.T) {
	src := sourceOf(t, map[crossref.Symbol]string{
		"Impl": `{
			"meta": {"kind": "method", "slotOwner": {"sym": "Binding", "slot_kind": "method"}},
			"callees": [{"sym": "G"}]
		}`,
		"Binding": `{"meta": {"kind": "method"}}`,
		"G":       `{"meta": {"kind": "function"}}`,
	})
	tr := newTraverser(t, src)

	coll, err := tr.Traverse(context.Background(), []Seed{{Sym: "Impl"}})
	require.NoError(t, err)

	g := coll.Graphs[0]
	// Owner edge plus fall-through to the explicit callee edges.
	assert.True(t, hasEdge(coll, g, "Binding", "Impl"))
	assert.True(t, hasEdge(coll, g, "Impl", "G"))
}

func TestTraverse_OntologyRunnableMethod(t *testing.T) {
	src := sourceOf(t, map[crossref.Symbol]string{
		"Dispatch": `{
			"meta": {"kind": "method", "ontologySlots": [{"slot_kind": "runnableMethod", "syms": ["Run"]}]},
			"callees": [{"sym": "Z"}]
		}`,
		"Run": `{"meta": {"kind": "method"}}`,
		"Z":   `{"meta": {"kind": "function"}}`,
	})
	tr := newTraverser(t, src)

	coll, err := tr.Traverse(context.Background(), []Seed{{Sym: "Dispatch"}})
	require.NoError(t, err)

	g := coll.Graphs[0]
	// The shortcut edge replaces the symbol's own callees.
	assert.True(t, hasEdge(coll, g, "Dispatch", "Run"))
	assert.False(t, hasNode(coll, "Z"))
}

func TestTraverse_OntologyRunnableConstructorUpwards(t *testing.T) {
	src := sourceOf(t, map[crossref.Symbol]string{
		"Ctor": `{
			"meta": {"kind": "method", "ontologySlots": [{"slot_kind": "runnableConstructor", "syms": ["Run"]}]}
		}`,
		"Run": `{"meta": {"kind": "method"}}`,
	})
	tr := newTraverser(t, src, WithEdge(EdgeUses))

	coll, err := tr.Traverse(context.Background(), []Seed{{Sym: "Ctor"}})
	require.NoError(t, err)

	assert.True(t, hasEdge(coll, coll.Graphs[0], "Run", "Ctor"))
}

func TestTraverse_OntologyInactiveKindFallsThrough(t *testing.T) {
	src := sourceOf(t, map[crossref.Symbol]string{
		"Ctor": `{
			"meta": {"kind": "method", "ontologySlots": [{"slot_kind": "runnableConstructor", "syms": ["Run"]}]},
			"callees": [{"sym": "G"}]
		}`,
		"Run": `{"meta": {"kind": "method"}}`,
		"G":   `{"meta": {"kind": "function"}}`,
	})
	// runnableConstructor is only active for "uses"; under "callees" the
	// slot stays dormant and the explicit edges run.
	tr := newTraverser(t, src)

	coll, err := tr.Traverse(context.Background(), []Seed{{Sym: "Ctor"}})
	require.NoError(t, err)

	assert.False(t, hasNode(coll, "Run"))
	assert.True(t, hasEdge(coll, coll.Graphs[0], "Ctor", "G"))
}

func TestTraverse_ClassFields(t *testing.T) {
	src := sourceOf(t, map[crossref.Symbol]string{
		"K": `{
			"meta": {"kind": "class", "fields": [
				{"sym": "K::f", "labels": ["owning"], "pointer_info": [{"sym": "P", "pretty": "P"}]},
				{"sym": "K::plain"}
			]}
		}`,
		"K::f": `{"meta": {"kind": "field"}}`,
		"P":    `{"meta": {"kind": "class"}}`,
	})
	tr := newTraverser(t, src, WithEdge(EdgeClass))

	coll, err := tr.Traverse(context.Background(), []Seed{{Sym: "K"}})
	require.NoError(t, err)

	g := coll.Graphs[0]
	assert.True(t, hasEdge(coll, g, "K::f", "P"))
	// A field with no labels and no pointees is not shown at all.
	assert.False(t, hasNode(coll, "K::plain"))

	fieldNode, ok := coll.NodeSet.Get("K::f")
	require.True(t, ok)
	require.Len(t, fieldNode.Badges, 1)
	assert.Equal(t, "owning", fieldNode.Badges[0].Label)
}

func TestTraverse_ClassStopLabel(t *testing.T) {
	src := sourceOf(t, map[crossref.Symbol]string{
		"K": `{
			"meta": {"kind": "class", "labels": ["class-diagram:stop"], "fields": [
				{"sym": "K::f", "labels": ["owning"]}
			]}
		}`,
	})
	tr := newTraverser(t, src, WithEdge(EdgeClass))

	coll, err := tr.Traverse(context.Background(), []Seed{{Sym: "K"}})
	require.NoError(t, err)

	assert.Equal(t, 1, coll.NodeSet.Len())
	assert.Equal(t, 0, coll.Graphs[0].EdgeCount())
}

func TestTraverse_UnknownEdgeKind(t *testing.T) {
	src := sourceOf(t, map[crossref.Symbol]string{
		"A": `{"meta": {"kind": "function", "overrides": [{"sym": "Base"}]}, "callees": [{"sym": "B"}]}`,
		"Base": `{"meta": {"kind": "method"}}`,
	})
	tr := newTraverser(t, src, WithEdge("frobnicate"))

	coll, err := tr.Traverse(context.Background(), []Seed{{Sym: "A"}})
	require.NoError(t, err)

	// No explicit edges, but metadata policies still apply.
	assert.False(t, hasNode(coll, "B"))
	assert.True(t, hasEdge(coll, coll.Graphs[0], "Base", "A"))
}

func TestTraverse_DataError(t *testing.T) {
	src := sourceOf(t, map[crossref.Symbol]string{
		"A": `{"meta": {"kind": "function"}, "callees": [{"kind": "function", "pretty": "no sym"}]}`,
	})
	tr := newTraverser(t, src)

	_, err := tr.Traverse(context.Background(), []Seed{{Sym: "A"}})
	require.Error(t, err)
	var derr *crossref.DataError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, crossref.Symbol("A"), derr.Sym)
}

func TestTraverse_ClassFieldMissingSym(t *testing.T) {
	src := sourceOf(t, map[crossref.Symbol]string{
		// A pointer entry with no sym is a malformed index entry, not an
		// unresolvable symbol.
		"K": `{
			"meta": {"kind": "class", "fields": [
				{"sym": "K::f", "pointer_info": [{"pretty": "no sym"}]}
			]}
		}`,
	})
	tr := newTraverser(t, src, WithEdge(EdgeClass))

	_, err := tr.Traverse(context.Background(), []Seed{{Sym: "K"}})
	var derr *crossref.DataError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, crossref.Symbol("K"), derr.Sym)
	assert.Equal(t, "meta fields", derr.Field)
}

func TestTraverse_SlotOwnerMissingSym(t *testing.T) {
	t.Run("traversed kind", func(t *testing.T) {
		src := sourceOf(t, map[crossref.Symbol]string{
			"Impl": `{"meta": {"kind": "method", "slotOwner": {"slot_kind": "method"}}}`,
		})
		tr := newTraverser(t, src)

		_, err := tr.Traverse(context.Background(), []Seed{{Sym: "Impl"}})
		var derr *crossref.DataError
		require.True(t, errors.As(err, &derr))
		assert.Equal(t, crossref.Symbol("Impl"), derr.Sym)
		assert.Equal(t, "meta slotOwner", derr.Field)
	})

	t.Run("support kind stays lazy", func(t *testing.T) {
		src := sourceOf(t, map[crossref.Symbol]string{
			"F": `{"meta": {"kind": "function", "slotOwner": {"slot_kind": "send"}}}`,
		})
		tr := newTraverser(t, src)

		_, err := tr.Traverse(context.Background(), []Seed{{Sym: "F"}})
		assert.NoError(t, err)
	})
}

func TestTraverse_MalformedUnrelatedFieldIgnored(t *testing.T) {
	// A malformed overriddenBy list only matters to "inheritance"
	// traversals; a callees walk over the same record succeeds.
	docs := map[crossref.Symbol]string{
		"A": `{"meta": {"kind": "method", "overriddenBy": [42]}, "callees": [{"sym": "B"}]}`,
		"B": `{"meta": {"kind": "function"}}`,
	}

	t.Run("callees", func(t *testing.T) {
		tr := newTraverser(t, sourceOf(t, docs))
		coll, err := tr.Traverse(context.Background(), []Seed{{Sym: "A"}})
		require.NoError(t, err)
		assert.True(t, hasEdge(coll, coll.Graphs[0], "A", "B"))
	})

	t.Run("inheritance", func(t *testing.T) {
		tr := newTraverser(t, sourceOf(t, docs), WithEdge(EdgeInheritance))
		_, err := tr.Traverse(context.Background(), []Seed{{Sym: "A"}})
		var derr *crossref.DataError
		require.True(t, errors.As(err, &derr))
	})
}

func TestTraverse_Deterministic(t *testing.T) {
	src := sourceOf(t, map[crossref.Symbol]string{
		"A": `{"meta": {"kind": "function"}, "callees": [{"sym": "B"}, {"sym": "C"}]}`,
		"B": `{"meta": {"kind": "function"}}`,
		"C": `{"meta": {"kind": "function"}}`,
	})
	tr := newTraverser(t, src)

	first, err := tr.Traverse(context.Background(), []Seed{{Sym: "A"}})
	require.NoError(t, err)
	second, err := tr.Traverse(context.Background(), []Seed{{Sym: "A"}})
	require.NoError(t, err)

	require.Equal(t, first.NodeSet.Len(), second.NodeSet.Len())
	for i, node := range first.NodeSet.Nodes() {
		assert.Equal(t, node.Symbol, second.NodeSet.Nodes()[i].Symbol)
	}
}
