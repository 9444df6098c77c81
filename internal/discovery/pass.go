// Package discovery turns the resource graph of one management service into
// linked domain objects.
//
// A pass crawls the service outside any transaction, then maps and links every
// resource it found inside a single unit of work. A pass that fails leaves the
// stored graph as it was and is retried on the next poll.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"podmanager/internal/crawler"
	"podmanager/internal/domain"
	"podmanager/internal/linker"
	"podmanager/internal/mapper"
	"podmanager/internal/metrics"
	"podmanager/internal/repository"
	"podmanager/internal/resource"
)

var tracer = otel.Tracer("podmanager/discovery")

// ErrUnreachable is returned when a service root cannot be read
var ErrUnreachable = errors.New("service root unreachable")

// Endpoint is a management service to discover
type Endpoint struct {
	URI  string             `json:"uri"`
	Type domain.ServiceType `json:"type"`
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s (%s)", e.URI, e.Type)
}

// Result summarizes a successful pass
type Result struct {
	Endpoint    Endpoint      `json:"endpoint"`
	ServiceUUID uuid.UUID     `json:"service_uuid"`
	ServiceID   domain.ID     `json:"service_id"`
	Resources   int           `json:"resources"`
	Links       int           `json:"links"`
	Mapped      int           `json:"mapped"`
	Created     int           `json:"created"`
	Skipped     int           `json:"skipped_links"`
	Duration    time.Duration `json:"duration"`
}

// Pass maps discovered resource graphs into the store
type Pass struct {
	store   repository.Store
	crawler *crawler.Crawler
	mappers *mapper.Set
	linker  *linker.Linker
	events  *EventBus
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// PassOption configures a Pass
type PassOption func(*Pass)

// WithCrawler sets the crawler
func WithCrawler(c *crawler.Crawler) PassOption {
	return func(p *Pass) {
		p.crawler = c
	}
}

// WithMappers sets the mapper set
func WithMappers(s *mapper.Set) PassOption {
	return func(p *Pass) {
		p.mappers = s
	}
}

// WithLinker sets the domain object linker
func WithLinker(l *linker.Linker) PassOption {
	return func(p *Pass) {
		p.linker = l
	}
}

// WithEvents sets the bus pass results are published on
func WithEvents(b *EventBus) PassOption {
	return func(p *Pass) {
		p.events = b
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.Metrics) PassOption {
	return func(p *Pass) {
		p.metrics = m
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) PassOption {
	return func(p *Pass) {
		p.logger = l
	}
}

// WithClock sets the clock used for LastSeen
func WithClock(now func() time.Time) PassOption {
	return func(p *Pass) {
		p.now = now
	}
}

// NewPass creates a Pass over store with default mappers and links
func NewPass(store repository.Store, opts ...PassOption) *Pass {
	p := &Pass{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "discovery")
	if p.crawler == nil {
		p.crawler = crawler.New(crawler.WithLogger(p.logger), crawler.WithMetrics(p.metrics))
	}
	if p.mappers == nil {
		p.mappers = mapper.DefaultSet()
	}
	if p.linker == nil {
		p.linker = linker.New(nil, linker.WithLogger(p.logger))
	}
	return p
}

// Run discovers ep through reader
func (p *Pass) Run(ctx context.Context, ep Endpoint, reader resource.Reader) (res *Result, err error) {
	start := p.now()
	ctx, span := tracer.Start(ctx, "discovery-pass")
	span.SetAttributes(attribute.String("endpoint", ep.URI), attribute.String("service_type", string(ep.Type)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		p.metrics.PassFinished(time.Since(start), err)
	}()

	graph := p.crawler.Build(ctx, reader)
	root := graph.Root()
	if root == nil {
		err = fmt.Errorf("%w: %s", ErrUnreachable, ep.URI)
		p.fail(ep, err)
		return nil, err
	}
	serviceUUID, err := resource.ServiceUUID(root)
	if err != nil {
		p.fail(ep, err)
		return nil, err
	}

	res = &Result{
		Endpoint:    ep,
		ServiceUUID: serviceUUID,
		Resources:   len(graph.Resources()),
		Links:       graph.Len(),
	}
	var created []*domain.Object

	err = p.store.InTx(ctx, func(s repository.Session) error {
		created = created[:0]
		svc, err := p.upsertService(ctx, s, serviceUUID, ep)
		if err != nil {
			return err
		}
		res.ServiceID = svc.ID()

		mapped, fresh, err := p.mapResources(ctx, s, svc, graph)
		if err != nil {
			return err
		}
		created = append(created, fresh...)
		res.Mapped = len(mapped)
		res.Created = len(fresh)

		skipped, err := p.linkResources(ctx, graph, mapped)
		if err != nil {
			return err
		}
		res.Skipped = skipped

		for _, r := range graph.Resources() {
			obj, ok := mapped[r.URI()]
			if !ok {
				continue
			}
			if err := p.linker.LinkToDomainModel(ctx, s, obj); err != nil {
				return fmt.Errorf("failed to link %s to the domain model: %w", obj, err)
			}
		}
		return nil
	})
	if err != nil {
		err = fmt.Errorf("failed to map %s: %w", ep.URI, err)
		p.fail(ep, err)
		return nil, err
	}

	res.Duration = time.Since(start)
	for _, obj := range created {
		p.events.Publish(Event{Type: EventObjectDiscovered, Payload: map[string]any{
			"id":      obj.ID(),
			"kind":    obj.Kind(),
			"service": serviceUUID.String(),
		}})
	}
	p.events.Publish(Event{Type: EventPassCompleted, Payload: res})
	span.SetAttributes(attribute.Int("links", res.Links), attribute.Int("mapped", res.Mapped))
	p.logger.Info("discovery pass finished",
		"endpoint", ep.URI,
		"service", serviceUUID.String(),
		"resources", res.Resources,
		"links", res.Links,
		"mapped", res.Mapped,
		"created", res.Created,
		"duration", res.Duration)
	return res, nil
}

func (p *Pass) fail(ep Endpoint, err error) {
	p.logger.Error("discovery pass failed", "endpoint", ep.URI, "error", err)
	p.events.Publish(Event{Type: EventPassFailed, Payload: map[string]string{
		"endpoint": ep.URI,
		"error":    err.Error(),
	}})
}

// upsertService finds the ExternalService record of id, creating it on first
// discovery, and refreshes its URI, type and LastSeen
func (p *Pass) upsertService(ctx context.Context, s repository.Session, id uuid.UUID, ep Endpoint) (*domain.Object, error) {
	svc, err := s.GetSingleByProperty(ctx, domain.KindExternalService, domain.PropUUID, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to find service %s: %w", id, err)
	}
	if svc == nil {
		svc, err = s.Create(ctx, domain.KindExternalService)
		if err != nil {
			return nil, fmt.Errorf("failed to create service %s: %w", id, err)
		}
		domain.Set(svc, domain.PropUUID, id.String())
	}
	domain.Set(svc, domain.PropServiceURI, ep.URI)
	domain.Set(svc, domain.PropServiceType, ep.Type)
	domain.Set(svc, domain.PropLastSeen, p.now())
	return svc, nil
}

// mapResources maps every resource with a domain kind. Objects are found by the
// resource they came from, so rediscovery updates them in place.
func (p *Pass) mapResources(ctx context.Context, s repository.Session, svc *domain.Object, graph *crawler.Graph) (map[string]*domain.Object, []*domain.Object, error) {
	mapped := make(map[string]*domain.Object)
	var created []*domain.Object

	for _, r := range graph.Resources() {
		kind := r.Kind()
		if kind == "" {
			continue
		}
		m, err := p.mappers.For(kind)
		if err != nil {
			return nil, nil, err
		}

		obj, err := s.GetSingleByProperty(ctx, kind, domain.PropSourceURI, r.URI())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to find %s from %s: %w", kind, r.URI(), err)
		}
		if obj == nil {
			obj, err = s.Create(ctx, kind)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create %s from %s: %w", kind, r.URI(), err)
			}
			domain.Set(obj, domain.PropSourceURI, r.URI())
			created = append(created, obj)
		}

		if err := m.Map(ctx, s, r.Attributes(), obj); err != nil {
			return nil, nil, err
		}
		if err := obj.Link(ctx, domain.DiscoveredBy, svc); err != nil {
			return nil, nil, fmt.Errorf("failed to link %s to its service: %w", obj, err)
		}
		mapped[r.URI()] = obj
		p.metrics.ObjectMapped(string(kind))
	}
	return mapped, created, nil
}

// linkResources replays the crawled links between mapped objects. Links
// touching a resource without a domain kind, and link groups the source kind
// does not declare, are skipped; it returns how many were skipped. A declared
// group without a registration fails the pass.
func (p *Pass) linkResources(ctx context.Context, graph *crawler.Graph, mapped map[string]*domain.Object) (int, error) {
	skipped := 0
	for _, l := range graph.Links() {
		source, ok := mapped[l.Source.URI()]
		if !ok {
			continue
		}
		target, ok := mapped[l.Target.URI()]
		if !ok {
			skipped++
			continue
		}
		if !resource.DeclaresLink(source.Kind(), l.Name) {
			p.logger.Debug("undeclared link group, skipping",
				"source", source.Kind(), "target", target.Kind(), "name", l.Name)
			skipped++
			continue
		}
		if err := p.linker.Link(ctx, source, target, l.Name); err != nil {
			return skipped, err
		}
	}
	return skipped, nil
}
