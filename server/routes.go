// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package server

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AleutianAI/symgraph/telemetry"
)

// RegisterRoutes registers all symgraph endpoints with the router group.
//
// Endpoints:
//
//	POST /v1/symgraph/traverse - Derive a bounded subgraph from seed symbols
//	GET  /v1/symgraph/record   - Fetch one raw crossref record
//	GET  /v1/symgraph/health   - Health check
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	sg := rg.Group("/symgraph")
	sg.POST("/traverse", h.HandleTraverse)
	sg.GET("/record", h.HandleRecord)
	sg.GET("/health", h.HandleHealth)
}

// NewRouter builds the symgraph HTTP router: recovery and OTel middleware,
// the /v1 API group, and the Prometheus /metrics endpoint.
func NewRouter(h *Handlers, debug bool) *gin.Engine {
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("symgraph"))
	if debug {
		router.Use(gin.Logger())
	}

	v1 := router.Group("/v1")
	RegisterRoutes(v1, h)

	router.GET("/metrics", gin.WrapH(telemetry.MetricsHandler()))
	return router
}
