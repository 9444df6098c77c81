package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"podmanager/internal/resource"
)

// ReaderFactory opens a resource reader for an endpoint
type ReaderFactory func(ep Endpoint) (resource.Reader, error)

// HTTPReaders returns a ReaderFactory of HTTP readers built with opts
func HTTPReaders(opts ...resource.HTTPOption) ReaderFactory {
	return func(ep Endpoint) (resource.Reader, error) {
		return resource.NewHTTPReader(ep.URI, opts...)
	}
}

// ErrInProgress is returned for an endpoint that already has a pass running
var ErrInProgress = errors.New("discovery already in progress")

// Outcome is the result of discovering one endpoint
type Outcome struct {
	Endpoint Endpoint
	Result   *Result
	Err      error
}

// Service runs discovery passes, several endpoints at a time
type Service struct {
	pass    *Pass
	readers ReaderFactory
	limit   int
	logger  *slog.Logger

	mu      sync.Mutex
	running map[string]bool
}

// NewService creates a Service running at most limit passes concurrently.
// A limit below one runs passes one at a time.
func NewService(pass *Pass, readers ReaderFactory, limit int, logger *slog.Logger) *Service {
	if limit < 1 {
		limit = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		pass:    pass,
		readers: readers,
		limit:   limit,
		logger:  logger.With("component", "discovery"),
		running: make(map[string]bool),
	}
}

// Discover runs one pass per endpoint and returns their outcomes in input
// order. A failing endpoint does not stop the others.
func (s *Service) Discover(ctx context.Context, eps []Endpoint) []Outcome {
	outcomes := make([]Outcome, len(eps))

	var g errgroup.Group
	g.SetLimit(s.limit)
	for i, ep := range eps {
		g.Go(func() error {
			res, err := s.DiscoverOne(ctx, ep)
			outcomes[i] = Outcome{Endpoint: ep, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// DiscoverOne runs a pass for ep on the calling goroutine
func (s *Service) DiscoverOne(ctx context.Context, ep Endpoint) (*Result, error) {
	if !s.begin(ep.URI) {
		s.logger.Debug("pass already running, skipping", "endpoint", ep.URI)
		return nil, fmt.Errorf("%w: %s", ErrInProgress, ep.URI)
	}
	defer s.end(ep.URI)

	reader, err := s.readers(ep)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", ep.URI, err)
	}
	return s.pass.Run(ctx, ep, reader)
}

func (s *Service) begin(uri string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[uri] {
		return false
	}
	s.running[uri] = true
	return true
}

func (s *Service) end(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, uri)
}
