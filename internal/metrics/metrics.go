// Package metrics defines the Prometheus collectors exported on /metrics.
// A nil *Metrics is valid and records nothing, so components can be built
// without a registry in tests.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mytv"

// Metrics holds every collector the server records into.
type Metrics struct {
	catalogLookups   *prometheus.CounterVec
	catalogChannels  prometheus.Gauge
	catalogRefreshes *prometheus.CounterVec
	upstreamFetches  *prometheus.CounterVec
	manifestLookups  *prometheus.CounterVec
	manifestEvicts   prometheus.Counter
	manifestResults  *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
// It panics on duplicate registration, like prometheus.MustRegister.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		catalogLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_lookups_total",
			Help:      "Channel catalog reads by how they were satisfied (hit, refreshed, stale, empty).",
		}, []string{"result"}),
		catalogChannels: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_channels",
			Help:      "Number of channels in the current catalog snapshot.",
		}),
		catalogRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_refreshes_total",
			Help:      "Playlist ingestion runs by outcome.",
		}, []string{"outcome"}),
		upstreamFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_fetches_total",
			Help:      "Upstream requests by target kind and status (status 0 means no response).",
		}, []string{"kind", "status"}),
		manifestLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manifest_cache_lookups_total",
			Help:      "Manifest response cache reads by result (hit, miss).",
		}, []string{"result"}),
		manifestEvicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manifest_cache_evictions_total",
			Help:      "Manifest entries evicted to stay within capacity.",
		}),
		manifestResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manifest_rewrites_total",
			Help:      "Manifest resolutions by shape (master, media, passthrough, empty).",
		}, []string{"shape"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}

	reg.MustRegister(
		m.catalogLookups,
		m.catalogChannels,
		m.catalogRefreshes,
		m.upstreamFetches,
		m.manifestLookups,
		m.manifestEvicts,
		m.manifestResults,
		m.httpDuration,
	)
	return m
}

// CatalogLookup records how a catalog read was satisfied.
func (m *Metrics) CatalogLookup(result string) {
	if m == nil {
		return
	}
	m.catalogLookups.WithLabelValues(result).Inc()
}

// CatalogRefreshed records an ingestion run and, on success, the catalog size.
func (m *Metrics) CatalogRefreshed(channels int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.catalogRefreshes.WithLabelValues("error").Inc()
		return
	}
	m.catalogRefreshes.WithLabelValues("ok").Inc()
	m.catalogChannels.Set(float64(channels))
}

// UpstreamFetch records one upstream request.
func (m *Metrics) UpstreamFetch(kind string, status int) {
	if m == nil {
		return
	}
	m.upstreamFetches.WithLabelValues(kind, strconv.Itoa(status)).Inc()
}

// ManifestLookup records a manifest cache read.
func (m *Metrics) ManifestLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.manifestLookups.WithLabelValues(result).Inc()
}

// ManifestEvicted records a capacity eviction.
func (m *Metrics) ManifestEvicted() {
	if m == nil {
		return
	}
	m.manifestEvicts.Inc()
}

// ManifestResolved records the shape of a resolved manifest.
func (m *Metrics) ManifestResolved(shape string) {
	if m == nil {
		return
	}
	m.manifestResults.WithLabelValues(shape).Inc()
}

// ObserveHTTP records one handled request.
func (m *Metrics) ObserveHTTP(route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(d.Seconds())
}
