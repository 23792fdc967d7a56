// Package prom implements the observability hooks with Prometheus metrics.
//
//	m := prom.New(prometheus.NewRegistry())
//	m.Install()
//	defer observability.Reset()
//	http.Handle("/metrics", m.Handler())
package prom

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/depends/pkg/observability"
)

const namespace = "depends"

// Metrics records analysis, cache and HTTP events. It implements
// [observability.AnalysisHooks], [observability.CacheHooks] and
// [observability.HTTPHooks].
type Metrics struct {
	gatherer prometheus.Gatherer

	analyses        *prometheus.CounterVec
	analyzeDuration *prometheus.HistogramVec
	graphNodes      *prometheus.GaugeVec
	graphEdges      *prometheus.GaugeVec
	queries         *prometheus.CounterVec
	queryDuration   *prometheus.HistogramVec
	solveDuration   prometheus.Histogram
	selected        prometheus.Gauge
	renders         *prometheus.CounterVec
	cacheEvents     *prometheus.CounterVec
	cacheBytes      *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	httpErrors      *prometheus.CounterVec
}

var (
	_ observability.AnalysisHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)

// New creates the collectors and registers them with reg. If reg is also a
// [prometheus.Gatherer] (as a *prometheus.Registry is), [Metrics.Handler]
// serves it; otherwise it serves the default gatherer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		gatherer: prometheus.DefaultGatherer,
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Number of analyses by mode and outcome.",
		}, []string{"mode", "outcome"}),
		analyzeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analyze_duration_seconds",
			Help:      "Time taken to build a dependency graph.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
		graphNodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Node count of the last graph built per mode.",
		}, []string{"mode"}),
		graphEdges: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_edges",
			Help:      "Edge count of the last graph built per mode.",
		}, []string{"mode"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discover_queries_total",
			Help:      "Package metadata queries by source and outcome.",
		}, []string{"source", "outcome"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "discover_query_duration_seconds",
			Help:      "Time taken by one package metadata query.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		solveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "solve_duration_seconds",
			Help:      "Time taken to resolve version conflicts.",
			Buckets:   prometheus.DefBuckets,
		}),
		selected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "solve_selected_packages",
			Help:      "Packages selected by the last successful solve.",
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Diagram renders by format and outcome.",
		}, []string{"format", "outcome"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Cache hits, misses and sets by key type.",
		}, []string{"type", "event"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type.",
		}, []string{"type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_client_requests_total",
			Help:      "Outgoing HTTP responses by host and status code.",
		}, []string{"host", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_client_duration_seconds",
			Help:      "Outgoing HTTP request latency by host.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"host"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_client_errors_total",
			Help:      "Outgoing HTTP requests that failed without a response.",
		}, []string{"host"}),
	}

	reg.MustRegister(
		m.analyses, m.analyzeDuration, m.graphNodes, m.graphEdges,
		m.queries, m.queryDuration, m.solveDuration, m.selected,
		m.renders, m.cacheEvents, m.cacheBytes,
		m.httpRequests, m.httpDuration, m.httpErrors,
	)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// Install makes m the global analysis, cache and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetAnalysisHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler serves the registered metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// =============================================================================
// Analysis Hooks
// =============================================================================

func (m *Metrics) OnAnalyzeStart(context.Context, string, string) {}

func (m *Metrics) OnAnalyzeComplete(_ context.Context, mode, _ string, nodes, edges int, d time.Duration, err error) {
	m.analyses.WithLabelValues(mode, outcome(err)).Inc()
	m.analyzeDuration.WithLabelValues(mode).Observe(d.Seconds())
	if err == nil {
		m.graphNodes.WithLabelValues(mode).Set(float64(nodes))
		m.graphEdges.WithLabelValues(mode).Set(float64(edges))
	}
}

func (m *Metrics) OnDiscoverQuery(_ context.Context, source, _ string, found bool, d time.Duration, err error) {
	result := "found"
	switch {
	case err != nil:
		result = "error"
	case !found:
		result = "missing"
	}
	m.queries.WithLabelValues(source, result).Inc()
	m.queryDuration.WithLabelValues(source).Observe(d.Seconds())
}

func (m *Metrics) OnSolveComplete(_ context.Context, selected int, d time.Duration, err error) {
	m.solveDuration.Observe(d.Seconds())
	if err == nil {
		m.selected.Set(float64(selected))
	}
}

func (m *Metrics) OnRenderComplete(_ context.Context, format string, _ time.Duration, err error) {
	m.renders.WithLabelValues(format, outcome(err)).Inc()
}

// =============================================================================
// Cache Hooks
// =============================================================================

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// =============================================================================
// HTTP Hooks
// =============================================================================

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, code int, d time.Duration) {
	m.httpRequests.WithLabelValues(host, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.httpErrors.WithLabelValues(host).Inc()
}
