// Package prom implements the observability hooks with Prometheus metrics.
//
// The CLI has no long-running endpoint to scrape, so metrics are written in
// the text exposition format for the node_exporter textfile collector:
//
//	h := prom.New(prometheus.NewRegistry())
//	h.Install()
//	defer h.WriteTextfile("/var/lib/node_exporter/bee.prom")
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/teletha/bee-sub002/pkg/observability"
)

// Hooks records collection, cache and HTTP events as metrics.
type Hooks struct {
	registry *prometheus.Registry

	collections     *prometheus.CounterVec
	collectDuration prometheus.Histogram
	nodes           prometheus.Gauge
	descriptors     *prometheus.CounterVec
	descDuration    prometheus.Histogram
	transforms      *prometheus.HistogramVec
	cache           *prometheus.CounterVec
	cacheBytes      prometheus.Counter
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	httpErrors      *prometheus.CounterVec
	retries         *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg *prometheus.Registry) *Hooks {
	h := &Hooks{
		registry: reg,
		collections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bee_collections_total",
			Help: "Dependency collections by result.",
		}, []string{"result"}),
		collectDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bee_collection_duration_seconds",
			Help:    "Time taken to collect a dependency graph.",
			Buckets: prometheus.DefBuckets,
		}),
		nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bee_collection_nodes",
			Help: "Nodes created by the last collection.",
		}),
		descriptors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bee_descriptor_reads_total",
			Help: "Artifact descriptor reads by result.",
		}, []string{"result"}),
		descDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bee_descriptor_read_duration_seconds",
			Help:    "Time taken to read an artifact descriptor.",
			Buckets: prometheus.DefBuckets,
		}),
		transforms: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bee_transform_duration_seconds",
			Help:    "Time taken by the graph transformer chain.",
			Buckets: prometheus.DefBuckets,
		}, []string{"result"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bee_cache_operations_total",
			Help: "Cache operations by key type and outcome.",
		}, []string{"type", "op"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bee_cache_written_bytes_total",
			Help: "Bytes written to the cache.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bee_http_requests_total",
			Help: "Repository HTTP responses by host and status code.",
		}, []string{"host", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bee_http_request_duration_seconds",
			Help:    "Repository HTTP request latency by host.",
			Buckets: prometheus.DefBuckets,
		}, []string{"host"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bee_http_errors_total",
			Help: "Repository HTTP requests that failed without a response.",
		}, []string{"host"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bee_http_retries_total",
			Help: "Repeated repository HTTP requests by host.",
		}, []string{"host"}),
	}
	reg.MustRegister(
		h.collections, h.collectDuration, h.nodes,
		h.descriptors, h.descDuration, h.transforms,
		h.cache, h.cacheBytes,
		h.requests, h.requestDuration, h.httpErrors, h.retries,
	)
	return h
}

// Install registers h as the process-wide collect, cache and HTTP hooks.
func (h *Hooks) Install() { observability.Install(h) }

// WriteTextfile writes every metric to path in the text exposition format.
func (h *Hooks) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, h.registry)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *Hooks) OnCollectStart(context.Context, string, int) {}

func (h *Hooks) OnCollectComplete(_ context.Context, _ string, nodes int, d time.Duration, err error) {
	h.collections.WithLabelValues(result(err)).Inc()
	h.collectDuration.Observe(d.Seconds())
	h.nodes.Set(float64(nodes))
}

func (h *Hooks) OnDescriptorRead(_ context.Context, _ string, d time.Duration, err error) {
	h.descriptors.WithLabelValues(result(err)).Inc()
	h.descDuration.Observe(d.Seconds())
}

func (h *Hooks) OnTransformComplete(_ context.Context, _ int, d time.Duration, err error) {
	h.transforms.WithLabelValues(result(err)).Observe(d.Seconds())
}

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.cache.WithLabelValues(keyType, "hit").Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cache.WithLabelValues(keyType, "miss").Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cache.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.Add(float64(size))
}

func (h *Hooks) OnRequest(context.Context, string, string, string) {}

func (h *Hooks) OnResponse(_ context.Context, _, host, _ string, code int, d time.Duration) {
	h.requests.WithLabelValues(host, strconv.Itoa(code)).Inc()
	h.requestDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (h *Hooks) OnError(_ context.Context, _, host, _ string, _ error) {
	h.httpErrors.WithLabelValues(host).Inc()
}

func (h *Hooks) OnRetry(_ context.Context, host string, _ int) {
	h.retries.WithLabelValues(host).Inc()
}

var (
	_ observability.CollectHooks = (*Hooks)(nil)
	_ observability.CacheHooks   = (*Hooks)(nil)
	_ observability.HTTPHooks    = (*Hooks)(nil)
)
