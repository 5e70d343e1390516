// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package server exposes symgraph traversal over HTTP.
package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/symgraph/crossref"
	"github.com/AleutianAI/symgraph/resolver"
	"github.com/AleutianAI/symgraph/traverse"
)

// ServiceVersion is the symgraph service version.
const ServiceVersion = "0.1.0"

// Handlers contains the HTTP handlers for symgraph.
type Handlers struct {
	store  resolver.Store
	logger *slog.Logger
}

// NewHandlers creates handlers over the given store.
func NewHandlers(store resolver.Store, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{store: store, logger: logger}
}

// traverseRequest is the body of POST /v1/symgraph/traverse. Zero-valued
// limits fall back to the documented defaults; max_depth is a pointer so an
// explicit zero (seeds only) is distinguishable from absent.
type traverseRequest struct {
	Symbols               []string `json:"symbols" binding:"required,min=1"`
	Edge                  string   `json:"edge"`
	MaxDepth              *uint32  `json:"max_depth"`
	PathsBetween          bool     `json:"paths_between"`
	NodeLimit             uint32   `json:"node_limit"`
	PathsBetweenNodeLimit uint32   `json:"paths_between_node_limit"`
	SkipUsesAtPathCount   uint32   `json:"skip_uses_at_path_count"`
}

// HandleTraverse handles POST /v1/symgraph/traverse.
func (h *Handlers) HandleTraverse(c *gin.Context) {
	var req traverseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := []traverse.Option{
		traverse.WithEdge(req.Edge),
		traverse.WithPathsBetween(req.PathsBetween),
		traverse.WithNodeLimit(req.NodeLimit),
		traverse.WithPathsBetweenNodeLimit(req.PathsBetweenNodeLimit),
		traverse.WithSkipUsesAtPathCount(req.SkipUsesAtPathCount),
		traverse.WithLogger(h.logger),
	}
	if req.MaxDepth != nil {
		opts = append(opts, traverse.WithMaxDepth(*req.MaxDepth))
	}

	tr, err := traverse.New(h.store, opts...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	seeds := make([]traverse.Seed, 0, len(req.Symbols))
	for _, sym := range req.Symbols {
		seeds = append(seeds, traverse.Seed{Sym: crossref.Symbol(sym)})
	}

	coll, err := tr.Traverse(c.Request.Context(), seeds)
	if err != nil {
		h.writeTraverseError(c, err)
		return
	}
	c.JSON(http.StatusOK, coll)
}

// writeTraverseError maps traversal errors onto HTTP statuses: config
// errors are the client's fault, an unresolved symbol is 404, a malformed
// index entry is 422, anything else is a server error.
func (h *Handlers) writeTraverseError(c *gin.Context, err error) {
	var dataErr *crossref.DataError
	switch {
	case errors.Is(err, traverse.ErrNoSeeds), errors.Is(err, traverse.ErrEmptySeedSymbol):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, resolver.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &dataErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": dataErr.Error(),
			"sym":   string(dataErr.Sym),
			"field": dataErr.Field,
		})
	default:
		h.logger.Error("traverse failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// HandleRecord handles GET /v1/symgraph/record?sym=...
//
// The symbol goes in a query parameter: crossref symbols routinely contain
// slashes and other path-hostile characters.
func (h *Handlers) HandleRecord(c *gin.Context) {
	sym := c.Query("sym")
	if sym == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sym query parameter is required"})
		return
	}
	rec, err := h.store.Lookup(c.Request.Context(), crossref.Symbol(sym))
	if err != nil {
		if errors.Is(err, resolver.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("record lookup failed", "sym", sym, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", rec.Raw())
}

// HandleHealth handles GET /v1/symgraph/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": ServiceVersion,
	})
}
