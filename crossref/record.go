// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package crossref defines the symbol and record types for the precomputed
// cross-reference index.
//
// A crossref record is a semi-structured per-symbol document. The index is
// denormalized: each record carries both the symbol's structural metadata
// ("meta") and its edge lists keyed by edge kind ("callees", "uses", ...).
// Records are produced elsewhere; this package only decodes and navigates
// them.
//
// # Optional vs. malformed
//
// Every field of a record may be absent, and absence is never an error. A
// field that is present but violates its required shape (an edge or override
// entry with no "sym" string) is a data error. Shape validation is lazy: it
// happens when an accessor for the field is called, not at decode time, so a
// record with a malformed "overriddenBy" list is still usable for a
// "callees" traversal that never looks at it.
//
// # Ownership
//
// Records are immutable after decoding and safe to share across concurrent
// traversals. Callers MUST NOT mutate a decoded record.
package crossref

import (
	"encoding/json"
	"fmt"
)

// Symbol is an interned identifier for a declaration/use-site entity in the
// indexed codebase. Immutable once created.
type Symbol string

// Structural kinds that count as callable.
const (
	KindFunction = "function"
	KindMethod   = "method"
)

// SlotKind classifies a binding slot: metadata linking a cross-language glue
// symbol to its implementation or counterpart.
type SlotKind string

// Known binding slot kinds. Kinds outside this set are carried verbatim and
// treated as traversable.
const (
	SlotEnablingPref SlotKind = "enablingPref"
	SlotEnablingFunc SlotKind = "enablingFunc"
	SlotConst        SlotKind = "const"
	SlotSend         SlotKind = "send"
	SlotRecv         SlotKind = "recv"
)

// OntologySlotKind classifies a symbol's role in a higher-level domain
// concept, for example a constructor that queues a runnable whose method is
// the real call target.
type OntologySlotKind string

// Known ontology slot kinds.
const (
	OntologyRunnableConstructor OntologySlotKind = "runnableConstructor"
	OntologyRunnableMethod      OntologySlotKind = "runnableMethod"
)

// SymbolRef is a {sym, pretty} reference to another symbol.
type SymbolRef struct {
	Sym    Symbol `json:"sym"`
	Pretty string `json:"pretty"`
}

// BindingSlot links a symbol to a counterpart symbol with a slot kind.
type BindingSlot struct {
	Sym      Symbol   `json:"sym"`
	SlotKind SlotKind `json:"slot_kind"`
}

// OntologySlot groups related symbols under an ontology role.
type OntologySlot struct {
	SlotKind OntologySlotKind `json:"slot_kind"`
	Syms     []Symbol         `json:"syms"`
}

// FieldInfo describes a structured field of a class-like symbol.
type FieldInfo struct {
	Sym         Symbol      `json:"sym"`
	Labels      []string    `json:"labels"`
	PointerInfo []SymbolRef `json:"pointer_info"`
}

// Meta is the structural metadata section of a record.
//
// Overrides and OverriddenBy are kept raw so their shape is validated lazily
// via OverrideTargets / OverriddenBy; see the package comment.
type Meta struct {
	Kind          string          `json:"kind"`
	Pretty        string          `json:"pretty"`
	Labels        []string        `json:"labels"`
	Overrides     json.RawMessage `json:"overrides"`
	OverriddenBy  json.RawMessage `json:"overriddenBy"`
	SlotOwner     *BindingSlot    `json:"slotOwner"`
	BindingSlots  []BindingSlot   `json:"bindingSlots"`
	OntologySlots []OntologySlot  `json:"ontologySlots"`
	Fields        []FieldInfo     `json:"fields"`
}

// CalleeEdge is one entry of the flat "callees" edge list.
type CalleeEdge struct {
	Sym    Symbol `json:"sym"`
	Kind   string `json:"kind"`
	Pretty string `json:"pretty"`
}

// SourceHit is one hit line inside a use path-group. Only the context symbol
// matters for traversal; hits with an empty context symbol are skipped.
type SourceHit struct {
	Context    string `json:"context"`
	ContextSym Symbol `json:"contextsym"`
}

// PathGroup is one path-clustered group of use hits.
type PathGroup struct {
	Path  string      `json:"path"`
	Lines []SourceHit `json:"lines"`
}

// Record is a decoded crossref record: meta plus edge lists keyed by kind.
type Record struct {
	Meta  Meta
	edges map[string]json.RawMessage

	raw json.RawMessage
}

// Decode parses a raw crossref document into a Record.
func Decode(data []byte) (*Record, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode crossref record: %w", err)
	}

	rec := &Record{
		edges: make(map[string]json.RawMessage, len(fields)),
		raw:   append(json.RawMessage(nil), data...),
	}
	for key, val := range fields {
		if key == "meta" {
			if err := json.Unmarshal(val, &rec.Meta); err != nil {
				return nil, fmt.Errorf("decode crossref meta: %w", err)
			}
			continue
		}
		rec.edges[key] = val
	}
	return rec, nil
}

// Raw returns the original document bytes the record was decoded from.
func (r *Record) Raw() json.RawMessage {
	return r.raw
}

// Callable reports whether the symbol's structural kind is function or
// method. Used as an edge-inclusion filter during traversal.
func (r *Record) Callable() bool {
	return r.Meta.Kind == KindFunction || r.Meta.Kind == KindMethod
}

// HasLabel reports whether the meta labels contain the given label.
func (r *Record) HasLabel(label string) bool {
	for _, l := range r.Meta.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// BindingSlotSym returns the symbol of the binding slot with the given kind,
// if any.
func (r *Record) BindingSlotSym(kind SlotKind) (Symbol, bool) {
	for _, slot := range r.Meta.BindingSlots {
		if slot.SlotKind == kind {
			return slot.Sym, true
		}
	}
	return "", false
}

// edgeArray decodes the edge list for kind into raw items. Returns ok=false
// when the kind is absent or the value is not an array; a non-array edge
// container is silently ignored, matching how unrecognized kinds contribute
// no edges.
func (r *Record) edgeArray(kind string) ([]json.RawMessage, bool) {
	raw, ok := r.edges[kind]
	if !ok {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

// EdgeCount returns the raw length of the edge array for kind, before any
// per-entry shape validation. This is what the uses path-count limit is
// checked against.
func (r *Record) EdgeCount(kind string) int {
	items, ok := r.edgeArray(kind)
	if !ok {
		return 0
	}
	return len(items)
}

// CalleeEdges returns the validated flat callee list. owner is the symbol
// whose record this is, used to attribute data errors. A missing or
// non-array "callees" field yields (nil, nil).
func (r *Record) CalleeEdges(owner Symbol) ([]CalleeEdge, error) {
	items, ok := r.edgeArray("callees")
	if !ok {
		return nil, nil
	}
	out := make([]CalleeEdge, 0, len(items))
	for _, item := range items {
		var edge CalleeEdge
		if err := json.Unmarshal(item, &edge); err != nil || edge.Sym == "" {
			return nil, &DataError{Sym: owner, Field: "edge callees"}
		}
		out = append(out, edge)
	}
	return out, nil
}

// UsePathGroups returns the validated use path-groups. A group without a
// "lines" array is a data error; hits inside a group are returned as-is and
// may carry empty context symbols.
func (r *Record) UsePathGroups(owner Symbol) ([]PathGroup, error) {
	items, ok := r.edgeArray("uses")
	if !ok {
		return nil, nil
	}
	out := make([]PathGroup, 0, len(items))
	for _, item := range items {
		var group PathGroup
		if err := json.Unmarshal(item, &group); err != nil || group.Lines == nil {
			return nil, &DataError{Sym: owner, Field: "edge uses"}
		}
		out = append(out, group)
	}
	return out, nil
}

// OverrideTargets returns the validated meta.overrides entries. A missing or
// non-array overrides field yields (nil, nil); an entry without a "sym"
// string is a data error.
func (r *Record) OverrideTargets(owner Symbol) ([]SymbolRef, error) {
	items, ok := rawArray(r.Meta.Overrides)
	if !ok {
		return nil, nil
	}
	out := make([]SymbolRef, 0, len(items))
	for _, item := range items {
		var ref SymbolRef
		if err := json.Unmarshal(item, &ref); err != nil || ref.Sym == "" {
			return nil, &DataError{Sym: owner, Field: "meta overrides"}
		}
		out = append(out, ref)
	}
	return out, nil
}

// OverriddenBy returns the validated meta.overriddenBy list, which is a bare
// list of symbol strings. An entry that is not a non-empty string is a data
// error.
func (r *Record) OverriddenBy(owner Symbol) ([]Symbol, error) {
	items, ok := rawArray(r.Meta.OverriddenBy)
	if !ok {
		return nil, nil
	}
	out := make([]Symbol, 0, len(items))
	for _, item := range items {
		var sym Symbol
		if err := json.Unmarshal(item, &sym); err != nil || sym == "" {
			return nil, &DataError{Sym: owner, Field: "meta overriddenBy"}
		}
		out = append(out, sym)
	}
	return out, nil
}

func rawArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}
