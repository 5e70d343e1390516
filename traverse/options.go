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

import "log/slog"

// Edge kinds with dedicated traversal behavior. Any other edge kind string
// is accepted but contributes no explicit edges; metadata policies
// (overrides, binding slots) still apply.
const (
	// EdgeCallees walks the flat synthetic callee list, self -> target.
	EdgeCallees = "callees"

	// EdgeUses walks path-clustered use hits, source -> self.
	EdgeUses = "uses"

	// EdgeClass activates the class/fields policy for class diagrams.
	EdgeClass = "class"

	// EdgeInheritance additionally walks meta.overriddenBy, target -> self.
	EdgeInheritance = "inheritance"
)

// StopLabel is the manual override label that excludes a symbol (and its
// fields) from class-diagram traversal. Set by hand in the ontology mapping.
const StopLabel = "class-diagram:stop"

// Default configuration values.
const (
	// DefaultEdge is the edge kind traversed when none is configured.
	DefaultEdge = EdgeCallees

	// DefaultMaxDepth is the default maximum traversal depth.
	DefaultMaxDepth = 8

	// DefaultNodeLimit is the default maximum number of resolved nodes.
	DefaultNodeLimit = 256

	// DefaultPathsBetweenNodeLimit is the node limit in effect while
	// building the input graph for a paths-between reduction.
	DefaultPathsBetweenNodeLimit = 8192

	// DefaultSkipUsesAtPathCount is the use path-group count at which a
	// symbol's uses are skipped entirely.
	DefaultSkipUsesAtPathCount = 16
)

// Options configures one Traverser.
type Options struct {
	// Edge is the edge kind to traverse.
	Edge string

	// MaxDepth bounds how deep newly discovered symbols are expanded.
	// Symbols discovered exactly at the ceiling still appear as nodes and
	// edge targets but are never expanded further.
	MaxDepth uint32

	// PathsBetween enables the pair-wise simple-path reduction over the
	// seed roots after the main walk.
	PathsBetween bool

	// NodeLimit is the maximum number of distinct resolved nodes. Ignored
	// while PathsBetween is set; PathsBetweenNodeLimit applies instead.
	NodeLimit uint32

	// PathsBetweenNodeLimit is the node limit used while building a graph
	// destined for paths-between reduction.
	PathsBetweenNodeLimit uint32

	// SkipUsesAtPathCount skips all use processing for a symbol whose use
	// edges span at least this many path-groups.
	SkipUsesAtPathCount uint32

	// Logger receives debug-level worklist tracing. Defaults to the
	// process default logger.
	Logger *slog.Logger
}

// DefaultOptions returns the default traversal configuration.
func DefaultOptions() Options {
	return Options{
		Edge:                  DefaultEdge,
		MaxDepth:              DefaultMaxDepth,
		NodeLimit:             DefaultNodeLimit,
		PathsBetweenNodeLimit: DefaultPathsBetweenNodeLimit,
		SkipUsesAtPathCount:   DefaultSkipUsesAtPathCount,
		Logger:                slog.Default(),
	}
}

// Option is a functional option for configuring a Traverser.
type Option func(*Options)

// WithEdge sets the edge kind to traverse. Empty falls back to the default.
func WithEdge(edge string) Option {
	return func(o *Options) {
		if edge != "" {
			o.Edge = edge
		}
	}
}

// WithMaxDepth sets the maximum traversal depth.
func WithMaxDepth(d uint32) Option {
	return func(o *Options) {
		o.MaxDepth = d
	}
}

// WithPathsBetween enables or disables the paths-between reduction.
func WithPathsBetween(enabled bool) Option {
	return func(o *Options) {
		o.PathsBetween = enabled
	}
}

// WithNodeLimit sets the node limit. Zero falls back to the default.
func WithNodeLimit(n uint32) Option {
	return func(o *Options) {
		if n > 0 {
			o.NodeLimit = n
		}
	}
}

// WithPathsBetweenNodeLimit sets the node limit used while building a graph
// for paths-between reduction. Zero falls back to the default.
func WithPathsBetweenNodeLimit(n uint32) Option {
	return func(o *Options) {
		if n > 0 {
			o.PathsBetweenNodeLimit = n
		}
	}
}

// WithSkipUsesAtPathCount sets the use path-group skip threshold. Zero
// falls back to the default.
func WithSkipUsesAtPathCount(n uint32) Option {
	return func(o *Options) {
		if n > 0 {
			o.SkipUsesAtPathCount = n
		}
	}
}

// WithLogger sets the logger for worklist tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}
