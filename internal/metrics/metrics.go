// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics defines the Prometheus collectors for the editor and the
// HTTP layer, registered on the default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pagecraft"

var (
	EditorOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "editor",
		Name:      "operations_total",
		Help:      "Draft store operations applied, by operation.",
	}, []string{"op"})

	EditorSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "editor",
		Name:      "saves_total",
		Help:      "Draft saves, by result (ok, error, throttled).",
	}, []string{"result"})

	EditorSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "editor",
		Name:      "sessions_open",
		Help:      "Editing sessions currently open.",
	})

	PreviewSyncs = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "preview",
		Name:      "syncs_total",
		Help:      "Debounced preview syncs pushed to the preview cache.",
	})

	PreviewRenderSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "preview",
		Name:      "render_seconds",
		Help:      "Time spent rendering a block list, by mode.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	}, []string{"mode"})

	PageCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "page_cache",
		Name:      "lookups_total",
		Help:      "Public page cache lookups, by result (hit, miss, error).",
	}, []string{"result"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests, by method, route pattern and status.",
	}, []string{"method", "route", "status"})

	HTTPRequestSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_seconds",
		Help:      "HTTP request latency, by method and route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
