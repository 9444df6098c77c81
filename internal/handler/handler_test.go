package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podmanager/internal/discovery"
	"podmanager/internal/domain"
	"podmanager/internal/metrics"
	"podmanager/internal/repository"
	"podmanager/internal/repository/sqlite"
	"podmanager/internal/service"
)

type fakeTrigger struct {
	polls int
}

func (f *fakeTrigger) Poll(context.Context) []discovery.Outcome {
	f.polls++
	ep := discovery.Endpoint{URI: "http://10.0.0.1:8888/rest/v1", Type: domain.ServiceTypePSME}
	down := discovery.Endpoint{URI: "http://10.0.0.2:8888/rest/v1", Type: domain.ServiceTypePSME}
	return []discovery.Outcome{
		{Endpoint: ep, Result: &discovery.Result{Endpoint: ep, ServiceUUID: uuid.New(), Mapped: 4, Created: 2, Skipped: 1}},
		{Endpoint: down, Err: discovery.ErrUnreachable},
	}
}

func (f *fakeTrigger) Known() []string {
	return []string{"http://10.0.0.1:8888/rest/v1"}
}

func (f *fakeTrigger) Failures() map[string]int {
	return map[string]int{"http://10.0.0.2:8888/rest/v1": 2}
}

type testServer struct {
	*httptest.Server
	trigger          *fakeTrigger
	pod, rack, blade domain.ID
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	ctx := context.Background()
	for _, c := range domain.Classes() {
		require.NoError(t, repo.CreateVertexType(ctx, string(c.Kind), c.Schema()))
	}

	ts := &testServer{trigger: &fakeTrigger{}}
	err = repo.InTx(ctx, func(s repository.Session) error {
		pod, err := s.Create(ctx, domain.KindPod)
		require.NoError(t, err)
		rack, err := s.Create(ctx, domain.KindRack)
		require.NoError(t, err)
		domain.Set(rack, domain.PropName, "RSA Rack")
		require.NoError(t, pod.Link(ctx, domain.Contains, rack))
		blade, err := s.Create(ctx, domain.KindBlade)
		require.NoError(t, err)
		ts.pod, ts.rack, ts.blade = pod.ID(), rack.ID(), blade.ID()
		return nil
	})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	metrics.New(reg).SetEndpoints(1)

	h := New(service.NewTopology(repo),
		WithDiscovery(ts.trigger),
		WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
	)
	r := NewRouter("podm-test", nil)
	h.Routes(r)

	ts.Server = httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestGetResource(t *testing.T) {
	ts := newTestServer(t)
	rackPath := fmt.Sprintf("/rest/v1/Pods/%d/Racks/%d", ts.pod, ts.rack)

	var res service.Resource
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+rackPath, &res))
	assert.Equal(t, rackPath, res.ODataID)
	assert.Equal(t, domain.KindRack, res.Kind)
	assert.Equal(t, "RSA Rack", res.Properties["Name"])
	assert.Equal(t, []string{rackPath + "/Drawers"}, res.Collections)

	var coll service.Collection
	require.Equal(t, http.StatusOK, getJSON(t, fmt.Sprintf("%s/rest/v1/Pods/%d/Racks", ts.URL, ts.pod), &coll))
	assert.Equal(t, []string{rackPath}, coll.Members)

	var root service.Resource
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/rest/v1", &root))
	assert.Contains(t, root.Collections, "/rest/v1/Pods")
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/rest/v1/", &root))
}

func TestGetResourceErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"unknown collection", "/rest/v1/Widgets", http.StatusBadRequest},
		{"bad id", "/rest/v1/Pods/abc", http.StatusBadRequest},
		{"illegal nesting", "/rest/v1/Pods/1/Blades", http.StatusBadRequest},
		{"missing object", "/rest/v1/Pods/9999", http.StatusNotFound},
		{"not contained", fmt.Sprintf("/rest/v1/Pods/%d/Racks/%d", ts.pod, ts.blade), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body ErrorResponse
			assert.Equal(t, tt.status, getJSON(t, ts.URL+tt.path, &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestTriggerDiscovery(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/discovery", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var outcomes []OutcomeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&outcomes))
	require.Len(t, outcomes, 2)
	assert.Equal(t, 4, outcomes[0].Mapped)
	assert.Empty(t, outcomes[0].Error)
	assert.Equal(t, discovery.ErrUnreachable.Error(), outcomes[1].Error)
	assert.Equal(t, 1, ts.trigger.polls)

	var eps EndpointsResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/endpoints", &eps))
	assert.Equal(t, []string{"http://10.0.0.1:8888/rest/v1"}, eps.Known)
	assert.Equal(t, 2, eps.Failed["http://10.0.0.2:8888/rest/v1"])
}

func TestMetricsAndHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "podm_detection_endpoints 1"))

	var health map[string]string
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/healthz", &health))
	assert.Equal(t, "ok", health["status"])
}

func TestRoutesWithoutOptionalHandlers(t *testing.T) {
	r := NewRouter("podm-test", nil)
	New(nil).Routes(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/discovery", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExport(t *testing.T) {
	ts := newTestServer(t)

	var doc struct {
		Roots []service.Node `json:"roots"`
	}
	resp, err := http.Get(ts.URL + "/api/export?format=json")
	require.NoError(t, err)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	resp.Body.Close()
	require.Len(t, doc.Roots, 1)
	assert.Equal(t, fmt.Sprintf("/rest/v1/Pods/%d", ts.pod), doc.Roots[0].ODataID)
	require.Len(t, doc.Roots[0].Children, 1)
	assert.Equal(t, "RSA Rack", doc.Roots[0].Children[0].Properties["Name"])

	resp, err = http.Get(ts.URL + "/api/export")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "application/x-yaml", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "kind: Rack")

	resp, err = http.Get(ts.URL + "/api/export?format=xml")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
