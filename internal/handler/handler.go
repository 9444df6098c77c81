package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"podmanager/internal/codec"
	"podmanager/internal/discovery"
	"podmanager/internal/service"
	"podmanager/internal/topology"
)

// Topology resolves addresses to rendered resources
type Topology interface {
	Describe(ctx context.Context, c *topology.Context) (*service.Resource, error)
	List(ctx context.Context, c *topology.Context, t topology.ContextType) (*service.Collection, error)
	Roots() []string
	Snapshot(ctx context.Context) ([]*service.Node, error)
}

// DiscoveryTrigger runs detection on demand and reports endpoint state
type DiscoveryTrigger interface {
	Poll(ctx context.Context) []discovery.Outcome
	Known() []string
	Failures() map[string]int
}

// Handler serves the pod manager API
type Handler struct {
	topology  Topology
	discovery DiscoveryTrigger
	events    http.Handler
	metrics   http.Handler
	logger    *slog.Logger
}

// Option configures a Handler
type Option func(*Handler)

// WithDiscovery enables POST /api/discovery and GET /api/endpoints
func WithDiscovery(d DiscoveryTrigger) Option {
	return func(h *Handler) {
		h.discovery = d
	}
}

// WithEvents serves the SSE stream
func WithEvents(events http.Handler) Option {
	return func(h *Handler) {
		h.events = events
	}
}

// WithMetrics serves prometheus metrics
func WithMetrics(metrics http.Handler) Option {
	return func(h *Handler) {
		h.metrics = metrics
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = l
	}
}

// New creates a handler over t
func New(t Topology, opts ...Option) *Handler {
	h := &Handler{topology: t, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes mounts the API on r
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.Health)
	r.Get(topology.ServiceRoot, h.ServiceRoot)
	r.Get(topology.ServiceRoot+"/*", h.GetResource)
	r.Get("/api/export", h.Export)

	if h.discovery != nil {
		r.Post("/api/discovery", h.TriggerDiscovery)
		r.Get("/api/endpoints", h.ListEndpoints)
	}
	if h.events != nil {
		r.Method(http.MethodGet, "/api/events", h.events)
	}
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// ServiceRoot lists the root collections
func (h *Handler) ServiceRoot(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, service.Resource{
		ODataID:     topology.ServiceRoot,
		Properties:  map[string]any{"Name": service.PodManagerName},
		Collections: h.topology.Roots(),
	}, http.StatusOK)
}

// GetResource renders the Context or collection addressed by the path
func (h *Handler) GetResource(w http.ResponseWriter, r *http.Request) {
	c, collection, err := topology.ParseAddress(r.URL.Path)
	if err != nil {
		h.writeError(w, "Invalid address", err.Error(), http.StatusBadRequest)
		return
	}
	if c == nil && collection == "" {
		h.ServiceRoot(w, r)
		return
	}

	var body any
	if collection != "" {
		body, err = h.topology.List(r.Context(), c, collection)
	} else {
		body, err = h.topology.Describe(r.Context(), c)
	}
	switch {
	case errors.Is(err, service.ErrNotFound):
		h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, topology.ErrInvalidContext):
		h.writeError(w, "Invalid address", err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.logger.Error("Failed to resolve address", "path", r.URL.Path, "error", err)
		h.writeError(w, "Failed to resolve address", err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, body, http.StatusOK)
}

// exportContentTypes maps export formats to their media type
var exportContentTypes = map[string]string{
	"json": "application/json",
	"yaml": "application/x-yaml",
}

// Export writes the topology tree in the format named by the format query parameter
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "yaml"
	}
	exporter, err := codec.ForFormat(format)
	if err != nil {
		h.writeError(w, "Invalid format", err.Error(), http.StatusBadRequest)
		return
	}

	roots, err := h.topology.Snapshot(r.Context())
	if err != nil {
		h.logger.Error("Failed to snapshot topology", "error", err)
		h.writeError(w, "Failed to export topology", err.Error(), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := exporter.Export(roots, &buf); err != nil {
		h.logger.Error("Failed to export topology", "format", format, "error", err)
		h.writeError(w, "Failed to export topology", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", exportContentTypes[format])
	w.Header().Set("Content-Disposition", "attachment; filename=topology."+format)
	_, _ = w.Write(buf.Bytes())
}

// OutcomeResponse summarizes one discovered endpoint
type OutcomeResponse struct {
	Endpoint string        `json:"endpoint"`
	Type     string        `json:"type"`
	Error    string        `json:"error,omitempty"`
	Mapped   int           `json:"mapped"`
	Created  int           `json:"created"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"duration_ns"`
}

// TriggerDiscovery runs one detection poll and returns its outcomes
func (h *Handler) TriggerDiscovery(w http.ResponseWriter, r *http.Request) {
	outcomes := h.discovery.Poll(r.Context())

	resp := make([]OutcomeResponse, 0, len(outcomes))
	for _, o := range outcomes {
		or := OutcomeResponse{Endpoint: o.Endpoint.URI, Type: string(o.Endpoint.Type)}
		if o.Err != nil {
			or.Error = o.Err.Error()
		}
		if o.Result != nil {
			or.Mapped = o.Result.Mapped
			or.Created = o.Result.Created
			or.Skipped = o.Result.Skipped
			or.Duration = o.Result.Duration
		}
		resp = append(resp, or)
	}
	h.writeJSON(w, resp, http.StatusOK)
}

// EndpointsResponse is the detection state
type EndpointsResponse struct {
	Known  []string       `json:"known"`
	Failed map[string]int `json:"failed"`
}

// ListEndpoints returns the known and failing endpoints
func (h *Handler) ListEndpoints(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, EndpointsResponse{
		Known:  h.discovery.Known(),
		Failed: h.discovery.Failures(),
	}, http.StatusOK)
}

func (h *Handler) writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("Failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	h.writeJSON(w, ErrorResponse{Error: error, Details: details}, statusCode)
}
