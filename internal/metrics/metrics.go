// Package metrics holds the prometheus instruments of the pod manager.
//
// All recording methods are safe on a nil *Metrics so components can run
// without instrumentation in tests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "podm"

// Metrics groups the discovery instruments
type Metrics struct {
	resourcesFetched prometheus.Counter
	fetchFailures    prometheus.Counter
	crawlDuration    prometheus.Histogram
	passes           *prometheus.CounterVec
	passDuration     prometheus.Histogram
	objectsMapped    *prometheus.CounterVec
	endpoints        prometheus.Gauge
	schemaTruncated  prometheus.Counter
}

// New creates the instruments and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		resourcesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crawler",
			Name:      "resources_fetched_total",
			Help:      "Resources fetched while crawling service endpoints.",
		}),
		fetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crawler",
			Name:      "fetch_failures_total",
			Help:      "Resource fetches that failed and were skipped.",
		}),
		crawlDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "crawler",
			Name:      "crawl_duration_seconds",
			Help:      "Time spent crawling one endpoint.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "passes_total",
			Help:      "Discovery passes by result.",
		}, []string{"result"}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "pass_duration_seconds",
			Help:      "Time spent on one discovery pass including mapping and linking.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		objectsMapped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "objects_mapped_total",
			Help:      "Domain objects mapped from discovered resources by kind.",
		}, []string{"kind"}),
		endpoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "detection",
			Name:      "endpoints",
			Help:      "Service endpoints currently known to the detection registry.",
		}),
		schemaTruncated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schema",
			Name:      "truncated_types_total",
			Help:      "Vertex types truncated by schema synchronization.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.resourcesFetched,
			m.fetchFailures,
			m.crawlDuration,
			m.passes,
			m.passDuration,
			m.objectsMapped,
			m.endpoints,
			m.schemaTruncated,
		)
	}
	return m
}

// ResourceFetched counts one fetched resource
func (m *Metrics) ResourceFetched() {
	if m == nil {
		return
	}
	m.resourcesFetched.Inc()
}

// FetchFailed counts one failed fetch
func (m *Metrics) FetchFailed() {
	if m == nil {
		return
	}
	m.fetchFailures.Inc()
}

// CrawlFinished records the duration of one crawl
func (m *Metrics) CrawlFinished(d time.Duration) {
	if m == nil {
		return
	}
	m.crawlDuration.Observe(d.Seconds())
}

// PassFinished records a discovery pass outcome
func (m *Metrics) PassFinished(d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.passes.WithLabelValues(result).Inc()
	m.passDuration.Observe(d.Seconds())
}

// ObjectMapped counts one mapped object of kind
func (m *Metrics) ObjectMapped(kind string) {
	if m == nil {
		return
	}
	m.objectsMapped.WithLabelValues(kind).Inc()
}

// SetEndpoints sets the number of known endpoints
func (m *Metrics) SetEndpoints(n int) {
	if m == nil {
		return
	}
	m.endpoints.Set(float64(n))
}

// SchemaTruncated counts truncated vertex types
func (m *Metrics) SchemaTruncated(n int) {
	if m == nil {
		return
	}
	m.schemaTruncated.Add(float64(n))
}
