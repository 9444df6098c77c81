package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"podmanager/internal/domain"
)

var tracer = otel.Tracer("podmanager/resource")

const (
	odataID   = "@odata.id"
	odataType = "@odata.type"

	// maxBodySize bounds a single resource document
	maxBodySize = 8 << 20
)

// HTTPReader reads a resource graph over HTTP.
//
// Every reference is resolved against the scheme, host and port of the base
// URI, so services that report loopback or internal addresses in their
// "@odata.id" values are still reachable.
type HTTPReader struct {
	base   *url.URL
	client *http.Client
	logger *slog.Logger
}

var _ Reader = (*HTTPReader)(nil)

// HTTPOption configures an HTTPReader
type HTTPOption func(*HTTPReader)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) HTTPOption {
	return func(r *HTTPReader) {
		r.client.Timeout = d
	}
}

// WithHTTPClient replaces the underlying client
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(r *HTTPReader) {
		r.client = c
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) HTTPOption {
	return func(r *HTTPReader) {
		r.logger = l
	}
}

// NewHTTPReader creates a reader rooted at base, e.g. http://10.0.0.5:8888/rest/v1
func NewHTTPReader(base string, opts ...HTTPOption) (*HTTPReader, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid service URI %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid service URI %q: unsupported scheme", base)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid service URI %q: missing host", base)
	}

	r := &HTTPReader{
		base: u,
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Base returns the service URI the reader was created with
func (r *HTTPReader) Base() string {
	return r.base.String()
}

// Root fetches the service root
func (r *HTTPReader) Root(ctx context.Context) (Resource, error) {
	return r.fetch(ctx, r.base.String())
}

// resolve makes ref absolute against the base scheme, host and port
func (r *HTTPReader) resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	u.Scheme = r.base.Scheme
	u.Host = r.base.Host
	u.User = r.base.User
	return u.String(), nil
}

func (r *HTTPReader) fetch(ctx context.Context, uri string) (res *jsonResource, err error) {
	ctx, span := tracer.Start(ctx, "fetch-resource",
		trace.WithAttributes(attribute.String("uri", uri)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, &Error{URI: uri, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &Error{URI: uri, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &Error{URI: uri, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{URI: uri, Err: fmt.Errorf("service returned status code %d", resp.StatusCode)}
	}

	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &Error{URI: uri, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	res = &jsonResource{reader: r, uri: uri, doc: doc}
	res.kind, res.collection = ParseType(stringValue(doc[odataType]))
	r.logger.Debug("fetched resource", "uri", uri, "kind", string(res.kind))
	return res, nil
}

// jsonResource is a Resource decoded from a JSON document
type jsonResource struct {
	reader     *HTTPReader
	uri        string
	doc        map[string]any
	kind       domain.Kind
	collection bool
}

func (j *jsonResource) URI() string {
	return j.uri
}

func (j *jsonResource) Kind() domain.Kind {
	return j.kind
}

func (j *jsonResource) Attributes() map[string]any {
	out := make(map[string]any, len(j.doc))
	for k, v := range j.doc {
		out[k] = v
	}
	return out
}

// groups returns link name to raw group value from "Links" and from top-level
// reference-valued keys
func (j *jsonResource) groups() map[string]any {
	groups := make(map[string]any)
	if links, ok := j.doc["Links"].(map[string]any); ok {
		for key, v := range links {
			if key == "Members" || key == "Oem" || strings.HasPrefix(key, "@") {
				continue
			}
			if isRefGroup(v) {
				groups[LinkName(key)] = v
			}
		}
	}
	for key, v := range j.doc {
		if key == "Links" || key == "Members" || key == "Oem" || key == "Actions" || strings.HasPrefix(key, "@") {
			continue
		}
		if isRefGroup(v) {
			name := LinkName(key)
			if _, dup := groups[name]; !dup {
				groups[name] = v
			}
		}
	}
	return groups
}

func (j *jsonResource) LinkNames() ([]string, error) {
	groups := j.groups()
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Links returns the references of a group. A single reference to a collection
// is expanded into the collection's members.
func (j *jsonResource) Links(ctx context.Context, name string) ([]Ref, error) {
	raw, ok := j.groups()[name]
	if !ok {
		return nil, nil
	}

	switch v := raw.(type) {
	case map[string]any:
		uri, err := j.reader.resolve(stringValue(v[odataID]))
		if err != nil {
			return nil, &Error{URI: j.uri, Err: fmt.Errorf("invalid reference in %s: %w", name, err)}
		}
		target, err := j.reader.fetch(ctx, uri)
		if err != nil {
			return nil, err
		}
		if members, ok := target.members(); ok {
			return j.refs(name, members)
		}
		return []Ref{&httpRef{reader: j.reader, uri: uri, cached: target}}, nil
	case []any:
		return j.refs(name, v)
	}
	return nil, nil
}

// members returns the member references of a collection document
func (j *jsonResource) members() ([]any, bool) {
	if m, ok := j.doc["Members"].([]any); ok {
		return m, true
	}
	if links, ok := j.doc["Links"].(map[string]any); ok {
		if m, ok := links["Members"].([]any); ok {
			return m, true
		}
	}
	if j.collection {
		return nil, true
	}
	return nil, false
}

func (j *jsonResource) refs(name string, items []any) ([]Ref, error) {
	refs := make([]Ref, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id := stringValue(m[odataID])
		if id == "" {
			continue
		}
		uri, err := j.reader.resolve(id)
		if err != nil {
			return nil, &Error{URI: j.uri, Err: fmt.Errorf("invalid reference in %s: %w", name, err)}
		}
		refs = append(refs, &httpRef{reader: j.reader, uri: uri})
	}
	return refs, nil
}

// httpRef dereferences a URI through the reader
type httpRef struct {
	reader *HTTPReader
	uri    string
	cached *jsonResource
}

func (h *httpRef) URI() string {
	return h.uri
}

func (h *httpRef) Get(ctx context.Context) (Resource, error) {
	if h.cached != nil {
		return h.cached, nil
	}
	res, err := h.reader.fetch(ctx, h.uri)
	if err != nil {
		return nil, err
	}
	h.cached = res
	return res, nil
}

// isRefGroup reports whether v is a reference or a non-empty list of references
func isRefGroup(v any) bool {
	switch t := v.(type) {
	case map[string]any:
		_, ok := t[odataID].(string)
		return ok
	case []any:
		if len(t) == 0 {
			return false
		}
		for _, item := range t {
			m, ok := item.(map[string]any)
			if !ok {
				return false
			}
			if _, ok := m[odataID].(string); !ok {
				return false
			}
		}
		return true
	}
	return false
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
