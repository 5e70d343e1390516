// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph provides the symbol graph containers a traversal builds:
// a node set that owns the symbol-to-record mapping, named directed graphs
// over node ids, and the collection type that bundles them with overload
// diagnostics.
//
// # Ownership Model
//
// A NodeSet owns its SymbolNodes; nodes hold pointers to crossref records
// but do not own them (records are immutable and may be shared with caches).
//
// # Thread Safety
//
// NodeSet and NamedGraph are NOT safe for concurrent use. They are created
// fresh per traversal call, exclusively owned by that call, and discarded
// after the call produces its Collection.
package graph

// NodeID identifies a node within one NodeSet. IDs are dense indices
// assigned in insertion order; they are only meaningful relative to the
// NodeSet that issued them.
type NodeID uint32

// Badge is a short annotation attached to a node, rendered next to it by
// visualization consumers. SourceJump is reserved for a jump target and is
// not populated by traversal.
type Badge struct {
	Label      string `json:"label"`
	SourceJump string `json:"source_jump,omitempty"`
}

// OverloadKind classifies which limit truncated traversal work.
type OverloadKind string

// Overload kinds.
const (
	// OverloadNodeLimit fires once when the node limit is reached and stops
	// the whole traversal loop.
	OverloadNodeLimit OverloadKind = "node-limit"

	// OverloadUsesPaths fires per symbol whose use path-group count reaches
	// the skip limit; only that symbol's use-edge processing is skipped.
	OverloadUsesPaths OverloadKind = "uses-paths"
)

// Overload records one instance where a configured limit truncated
// traversal. Overloads are caller-facing diagnostics; they are carried in
// the output and never alter control flow beyond the truncation they record.
type Overload struct {
	Kind OverloadKind `json:"kind"`

	// Sym is the symbol being processed when the limit tripped, if any.
	Sym string `json:"sym,omitempty"`

	// Exist is the amount of work that existed: remaining worklist size for
	// node-limit, true path-group count for uses-paths.
	Exist uint32 `json:"exist"`

	// Included is how much was included before truncation.
	Included uint32 `json:"included"`

	// LocalLimit is the per-symbol limit that tripped, if any.
	LocalLimit uint32 `json:"local_limit"`

	// GlobalLimit is the call-wide limit that tripped, if any.
	GlobalLimit uint32 `json:"global_limit"`
}
