package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gathered returns metric name and label value to sample value
func gathered(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range m.GetLabel() {
				key += "{" + lp.GetValue() + "}"
			}
			switch {
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[key] = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				out[key] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return out
}

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ResourceFetched()
	m.ResourceFetched()
	m.FetchFailed()
	m.CrawlFinished(time.Second)
	m.PassFinished(time.Second, nil)
	m.PassFinished(time.Second, errors.New("boom"))
	m.ObjectMapped("Blade")
	m.SetEndpoints(3)

	got := gathered(t, reg)
	assert.Equal(t, 2.0, got["podm_crawler_resources_fetched_total"])
	assert.Equal(t, 1.0, got["podm_crawler_fetch_failures_total"])
	assert.Equal(t, 1.0, got["podm_crawler_crawl_duration_seconds"])
	assert.Equal(t, 1.0, got["podm_discovery_passes_total{success}"])
	assert.Equal(t, 1.0, got["podm_discovery_passes_total{failure}"])
	assert.Equal(t, 2.0, got["podm_discovery_pass_duration_seconds"])
	assert.Equal(t, 1.0, got["podm_discovery_objects_mapped_total{Blade}"])
	assert.Equal(t, 3.0, got["podm_detection_endpoints"])
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ResourceFetched()
		m.FetchFailed()
		m.CrawlFinished(time.Second)
		m.PassFinished(time.Second, nil)
		m.ObjectMapped("Blade")
		m.SetEndpoints(1)
		m.SchemaTruncated(2)
	})
}
