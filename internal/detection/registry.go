package detection

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"podmanager/internal/discovery"
	"podmanager/internal/metrics"
)

// DefaultMaxFailedRetries is how often a failing endpoint is retried before it
// is left alone until the next re-check
const DefaultMaxFailedRetries = 5

// Discoverer runs discovery passes for endpoints
type Discoverer interface {
	Discover(ctx context.Context, eps []discovery.Endpoint) []discovery.Outcome
}

// Registry polls detectors and discovers the endpoints they report.
//
// An endpoint that was discovered successfully is known and is rediscovered
// on every poll. One that failed is retried on each poll until it has failed
// maxRetries times; RecheckFailed then forgets it so that detection treats it
// as new again.
type Registry struct {
	detectors  []Detector
	discoverer Discoverer
	maxRetries int
	events     *discovery.EventBus
	metrics    *metrics.Metrics
	logger     *slog.Logger

	pollMu sync.Mutex

	mu     sync.RWMutex
	known  map[string]uuid.UUID
	failed map[discovery.Endpoint]int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithMaxFailedRetries sets the retry bound of failing endpoints
func WithMaxFailedRetries(n int) RegistryOption {
	return func(r *Registry) {
		r.maxRetries = n
	}
}

// WithEvents sets the bus endpoint changes are published on
func WithEvents(b *discovery.EventBus) RegistryOption {
	return func(r *Registry) {
		r.events = b
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.Metrics) RegistryOption {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry creates a Registry feeding discoverer
func NewRegistry(discoverer Discoverer, detectors []Detector, opts ...RegistryOption) *Registry {
	r := &Registry{
		detectors:  detectors,
		discoverer: discoverer,
		maxRetries: DefaultMaxFailedRetries,
		logger:     slog.Default(),
		known:      make(map[string]uuid.UUID),
		failed:     make(map[discovery.Endpoint]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "detection")
	return r
}

// Start polls every interval and re-checks abandoned endpoints every
// recheck until Stop is called or ctx is done
func (r *Registry) Start(ctx context.Context, interval, recheck time.Duration) {
	ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		r.Poll(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		var recheckC <-chan time.Time
		if recheck > 0 {
			t := time.NewTicker(recheck)
			defer t.Stop()
			recheckC = t.C
		}

		for {
			select {
			case <-ctx.Done():
				r.logger.Info("Stopping detection polling loop")
				return
			case <-ticker.C:
				r.Poll(ctx)
			case <-recheckC:
				r.RecheckFailed()
			}
		}
	}()

	r.logger.Info("Started detection polling loop", "interval", interval, "detectors", len(r.detectors))
}

// Stop ends the polling loop and waits for a running poll to finish
func (r *Registry) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

// Poll collects candidates from every detector and discovers the known ones,
// the new ones and the failed ones still under their retry bound. Polls do not
// overlap.
func (r *Registry) Poll(ctx context.Context) []discovery.Outcome {
	r.pollMu.Lock()
	defer r.pollMu.Unlock()

	candidates := r.candidates(ctx)
	eps := r.selectEndpoints(candidates)
	if len(eps) == 0 {
		return nil
	}

	outcomes := r.discoverer.Discover(ctx, eps)
	for _, o := range outcomes {
		r.record(o)
	}
	r.metrics.SetEndpoints(len(r.Known()))
	return outcomes
}

// candidates returns the distinct endpoints of all detectors
func (r *Registry) candidates(ctx context.Context) []discovery.Endpoint {
	seen := make(map[discovery.Endpoint]bool)
	var out []discovery.Endpoint
	for _, d := range r.detectors {
		eps, err := d.Detect(ctx)
		if err != nil {
			r.logger.Warn("detector failed", "detector", d.Name(), "error", err)
			continue
		}
		for _, ep := range eps {
			if !seen[ep] {
				seen[ep] = true
				out = append(out, ep)
			}
		}
	}
	return out
}

func (r *Registry) selectEndpoints(candidates []discovery.Endpoint) []discovery.Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var eps []discovery.Endpoint
	for _, ep := range candidates {
		if count, failed := r.failed[ep]; failed {
			if count < r.maxRetries {
				eps = append(eps, ep)
			}
			continue
		}
		eps = append(eps, ep)
	}
	return eps
}

func (r *Registry) record(o discovery.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o.Err == nil {
		_, wasKnown := r.known[o.Endpoint.URI]
		r.known[o.Endpoint.URI] = o.Result.ServiceUUID
		delete(r.failed, o.Endpoint)
		if !wasKnown {
			r.logger.Info("endpoint detected", "endpoint", o.Endpoint.URI, "service", o.Result.ServiceUUID.String())
			r.events.Publish(discovery.Event{Type: discovery.EventEndpointDetected, Payload: o.Endpoint})
		}
		return
	}

	delete(r.known, o.Endpoint.URI)
	count, failedBefore := r.failed[o.Endpoint]
	if failedBefore {
		count++
	}
	r.failed[o.Endpoint] = count
	r.logger.Error("valid service could not be detected",
		"endpoint", o.Endpoint.URI, "retry", count, "error", o.Err)
	if count >= r.maxRetries {
		r.events.Publish(discovery.Event{Type: discovery.EventEndpointAbandoned, Payload: o.Endpoint})
	}
}

// RecheckFailed forgets endpoints that exhausted their retries so the next
// poll treats them as new
func (r *Registry) RecheckFailed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ep, count := range r.failed {
		if count >= r.maxRetries {
			delete(r.failed, ep)
			r.logger.Info("endpoint scheduled for re-check", "endpoint", ep.URI)
		}
	}
}

// Known returns the URIs of successfully discovered endpoints in order
func (r *Registry) Known() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.known))
	for uri := range r.known {
		out = append(out, uri)
	}
	sort.Strings(out)
	return out
}

// Failures returns the retry count of each failing endpoint
func (r *Registry) Failures() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int, len(r.failed))
	for ep, count := range r.failed {
		out[ep.URI] = count
	}
	return out
}
