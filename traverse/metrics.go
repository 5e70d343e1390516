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
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/AleutianAI/symgraph/graph"
)

// Package-level tracer and meter for traversal operations.
var (
	tracer = otel.Tracer("symgraph.traverse")
	meter  = otel.Meter("symgraph.traverse")
)

// Instruments for traversal calls.
var (
	traversalsTotal   metric.Int64Counter
	traversalNodes    metric.Int64Histogram
	traversalDuration metric.Float64Histogram
	overloadsTotal    metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		traversalsTotal, err = meter.Int64Counter(
			"symgraph_traversals_total",
			metric.WithDescription("Total number of completed traversal calls"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		traversalNodes, err = meter.Int64Histogram(
			"symgraph_traversal_nodes",
			metric.WithDescription("Resolved node count per traversal call"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		traversalDuration, err = meter.Float64Histogram(
			"symgraph_traversal_duration_seconds",
			metric.WithDescription("Traversal call duration in seconds"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		overloadsTotal, err = meter.Int64Counter(
			"symgraph_traversal_overloads_total",
			metric.WithDescription("Traversal truncations by overload kind"),
		)
		if err != nil {
			metricsErr = err
		}
	})
	return metricsErr
}

// recordTraversal records the instruments for one completed call.
func recordTraversal(ctx context.Context, edge string, coll *graph.Collection, elapsed time.Duration) {
	if initMetrics() != nil {
		return
	}
	edgeAttr := metric.WithAttributes(attribute.String("edge", edge))
	traversalsTotal.Add(ctx, 1, edgeAttr)
	traversalNodes.Record(ctx, int64(coll.NodeSet.Len()), edgeAttr)
	traversalDuration.Record(ctx, elapsed.Seconds(), edgeAttr)
	for _, ov := range coll.Overloads {
		overloadsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("edge", edge),
			attribute.String("kind", string(ov.Kind)),
		))
	}
}
