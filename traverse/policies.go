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

	"github.com/AleutianAI/symgraph/crossref"
	"github.com/AleutianAI/symgraph/graph"
)

// policies is the fixed evaluation order for one dequeued symbol. Each
// stage may add edges and nodes, queue discoveries, and return abandon=true
// to skip every later stage for the symbol. Later stages run only if no
// earlier stage abandoned.
var policies = []struct {
	name string
	run  func(*traversal, context.Context, *graph.SymbolNode, uint32) (bool, error)
}{
	{"class-fields", (*traversal).classFields},
	{"slot-owner", (*traversal).slotOwner},
	{"ontology-slots", (*traversal).ontologySlots},
	{"overrides", (*traversal).overrides},
	{"overridden-by", (*traversal).overriddenBy},
	{"explicit-edges", (*traversal).explicitEdges},
}

// classFields shows a class's structured fields and walks their pointees.
// Active only for "class" traversals. A symbol labeled with StopLabel is
// abandoned outright; the label is a manual override set in the ontology
// mapping.
func (tv *traversal) classFields(ctx context.Context, node *graph.SymbolNode, depth uint32) (bool, error) {
	if tv.t.opts.Edge != EdgeClass {
		return false, nil
	}
	rec := node.Record
	if rec.HasLabel(StopLabel) {
		return true, nil
	}

	for _, field := range rec.Meta.Fields {
		// A field is shown when it carries a label or points at anything.
		show := len(field.Labels) > 0

		var targets []graph.NodeID
		for _, ptr := range field.PointerInfo {
			show = true
			if ptr.Sym == "" {
				return false, &crossref.DataError{Sym: node.Symbol, Field: "meta fields"}
			}
			target, err := tv.nodes.Ensure(ctx, ptr.Sym, tv.t.src)
			if err != nil {
				return false, err
			}
			tv.maybeEnqueue(ptr.Sym, depth, "pointee sym")
			targets = append(targets, target.ID)
		}

		if show {
			if field.Sym == "" {
				return false, &crossref.DataError{Sym: node.Symbol, Field: "meta fields"}
			}
			fieldNode, err := tv.nodes.Ensure(ctx, field.Sym, tv.t.src)
			if err != nil {
				return false, err
			}
			for _, label := range field.Labels {
				fieldNode.AddBadge(label)
			}
			for _, id := range targets {
				tv.g.AddEdge(fieldNode.ID, id)
			}
		}
	}
	return false, nil
}

// slotOwner walks a parent binding slot relationship. Enabling prefs,
// enabling funcs, constants, and send slots are support glue and are never
// traversed. A recv slot is replaced by its paired send slot and the rest
// of the symbol's processing is elided: the uses of a recv are plumbing
// that distracts from the actual senders. Any other slot kind name-checks
// the owner and falls through to the later stages.
func (tv *traversal) slotOwner(ctx context.Context, node *graph.SymbolNode, depth uint32) (bool, error) {
	slot := node.Record.Meta.SlotOwner
	if slot == nil {
		return false, nil
	}
	switch slot.SlotKind {
	case crossref.SlotEnablingPref, crossref.SlotEnablingFunc, crossref.SlotConst, crossref.SlotSend:
		return false, nil
	}
	// Validated only for traversed kinds; a malformed slot of a support kind
	// is never read.
	if slot.Sym == "" {
		return false, &crossref.DataError{Sym: node.Symbol, Field: "meta slotOwner"}
	}

	owner, err := tv.nodes.Ensure(ctx, slot.Sym, tv.t.src)
	if err != nil {
		return false, err
	}

	if slot.SlotKind == crossref.SlotRecv {
		if sendSym, ok := owner.Record.BindingSlotSym(crossref.SlotSend); ok {
			send, err := tv.nodes.Ensure(ctx, sendSym, tv.t.src)
			if err != nil {
				return false, err
			}
			tv.g.AddEdge(send.ID, node.ID)
			tv.maybeEnqueue(send.Symbol, depth, "send slot sym")
		}
		// Abandon whether or not a send slot was found.
		return true, nil
	}

	tv.g.AddEdge(owner.ID, node.ID)
	tv.maybeEnqueue(owner.Symbol, depth, "owner slot sym")
	return false, nil
}

// ontologySlots applies ontology shortcuts: a runnable's constructor stands
// in for its uses, a runnable's method for its callees. When any slot was
// active the symbol is abandoned after the slot array is finished, so the
// override hierarchy is skipped for runnables; walking it would distract
// from the fundamental control flow.
func (tv *traversal) ontologySlots(ctx context.Context, node *graph.SymbolNode, depth uint32) (bool, error) {
	slots := node.Record.Meta.OntologySlots
	if len(slots) == 0 {
		return false, nil
	}

	active := false
	for _, slot := range slots {
		var shouldTraverse, upwards bool
		switch slot.SlotKind {
		case crossref.OntologyRunnableConstructor:
			shouldTraverse, upwards = tv.t.opts.Edge == EdgeUses, true
		case crossref.OntologyRunnableMethod:
			shouldTraverse = tv.t.opts.Edge == EdgeCallees
		}
		if !shouldTraverse {
			continue
		}
		for _, relSym := range slot.Syms {
			rel, err := tv.nodes.Ensure(ctx, relSym, tv.t.src)
			if err != nil {
				return false, err
			}
			if upwards {
				tv.g.AddEdge(rel.ID, node.ID)
			} else {
				tv.g.AddEdge(node.ID, rel.ID)
			}
			tv.maybeEnqueue(relSym, depth, "ontology sym")
		}
		active = true
	}
	return active, nil
}

// overrides walks meta.overrides, target -> self, for every configured edge
// kind. The edge is only added when the target was not yet considered:
// overrides are an equivalence class from our perspective, so the
// reciprocal relationship would otherwise produce the edge twice. No edge
// at all is drawn for an already-considered target, unlike callees/uses.
func (tv *traversal) overrides(ctx context.Context, node *graph.SymbolNode, depth uint32) (bool, error) {
	targets, err := node.Record.OverrideTargets(node.Symbol)
	if err != nil {
		return false, err
	}
	for _, ref := range targets {
		target, err := tv.nodes.Ensure(ctx, ref.Sym, tv.t.src)
		if err != nil {
			return false, err
		}
		if !target.Callable() {
			continue
		}
		if _, seen := tv.considered[target.Symbol]; seen {
			continue
		}
		tv.considered[target.Symbol] = struct{}{}
		tv.g.AddEdge(target.ID, node.ID)
		if depth < tv.t.opts.MaxDepth {
			tv.worklist = append(tv.worklist, workItem{sym: target.Symbol, depth: depth + 1})
			tv.logger.Debug("scheduling overrides", slog.String("sym", string(target.Symbol)))
		}
	}
	return false, nil
}

// overriddenBy walks meta.overriddenBy, target -> self, only for
// "inheritance" traversals. Same considered-gated all-or-nothing edge rule
// as overrides.
func (tv *traversal) overriddenBy(ctx context.Context, node *graph.SymbolNode, depth uint32) (bool, error) {
	if tv.t.opts.Edge != EdgeInheritance {
		return false, nil
	}
	syms, err := node.Record.OverriddenBy(node.Symbol)
	if err != nil {
		return false, err
	}
	for _, sym := range syms {
		target, err := tv.nodes.Ensure(ctx, sym, tv.t.src)
		if err != nil {
			return false, err
		}
		if !target.Callable() {
			continue
		}
		if _, seen := tv.considered[target.Symbol]; seen {
			continue
		}
		tv.considered[target.Symbol] = struct{}{}
		tv.g.AddEdge(target.ID, node.ID)
		if depth < tv.t.opts.MaxDepth {
			tv.worklist = append(tv.worklist, workItem{sym: target.Symbol, depth: depth + 1})
			tv.logger.Debug("scheduling overriddenBy", slog.String("sym", string(target.Symbol)))
		}
	}
	return false, nil
}

// explicitEdges dispatches on the configured edge kind against the record's
// edge list of that kind. Kinds without dedicated handling contribute no
// explicit edges.
func (tv *traversal) explicitEdges(ctx context.Context, node *graph.SymbolNode, depth uint32) (bool, error) {
	switch tv.t.opts.Edge {
	case EdgeCallees:
		return false, tv.calleeEdges(ctx, node, depth)
	case EdgeUses:
		return tv.usesEdges(ctx, node, depth)
	}
	return false, nil
}

// calleeEdges walks the flat synthetic callee list, self -> target. Unlike
// most edge kinds, callees is not a path hit-list.
func (tv *traversal) calleeEdges(ctx context.Context, node *graph.SymbolNode, depth uint32) error {
	edges, err := node.Record.CalleeEdges(node.Symbol)
	if err != nil {
		return err
	}
	for _, edge := range edges {
		target, err := tv.nodes.Ensure(ctx, edge.Sym, tv.t.src)
		if err != nil {
			return err
		}
		if !target.Callable() {
			continue
		}
		tv.g.AddEdge(node.ID, target.ID)
		tv.maybeEnqueue(target.Symbol, depth, "callees")
	}
	return nil
}

// usesEdges walks use hits, source -> self. Uses are clustered by path, so
// the skip limit is checked against the raw path-group count before any
// group is processed; a symbol over the limit contributes no use edges at
// all and is reported as an overload.
//
// Deduplication needs its own set: a source symbol can appear on many hit
// lines, but suppressing repeats through `considered` would hide genuine
// cycles in the graph. `useConsidered` lives only for this one symbol's
// expansion; `considered` still gates re-enqueue and never blocks edge
// drawing here.
func (tv *traversal) usesEdges(ctx context.Context, node *graph.SymbolNode, depth uint32) (bool, error) {
	count := node.Record.EdgeCount(EdgeUses)
	if uint32(count) >= tv.t.opts.SkipUsesAtPathCount {
		tv.logger.Debug("skipping uses with too many paths",
			slog.String("sym", string(node.Symbol)),
			slog.Int("paths", count),
		)
		tv.overloads = append(tv.overloads, graph.Overload{
			Kind:       graph.OverloadUsesPaths,
			Sym:        string(node.Symbol),
			Exist:      uint32(count),
			LocalLimit: tv.t.opts.SkipUsesAtPathCount,
		})
		return true, nil
	}

	groups, err := node.Record.UsePathGroups(node.Symbol)
	if err != nil {
		return false, err
	}

	useConsidered := make(map[crossref.Symbol]struct{})
	for _, group := range groups {
		for _, hit := range group.Lines {
			if hit.ContextSym == "" {
				continue
			}
			source, err := tv.nodes.Ensure(ctx, hit.ContextSym, tv.t.src)
			if err != nil {
				return false, err
			}
			if !source.Callable() {
				continue
			}
			if _, seen := useConsidered[source.Symbol]; seen {
				continue
			}
			useConsidered[source.Symbol] = struct{}{}
			tv.g.AddEdge(source.ID, node.ID)
			tv.maybeEnqueue(source.Symbol, depth, "uses")
		}
	}
	return false, nil
}
