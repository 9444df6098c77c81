// Package crawler walks a service's resource graph breadth first and collects
// the discovered links.
//
// A crawl never fails as a whole. Unreachable resources are logged and their
// edges omitted; an unreachable root yields an empty graph.
package crawler

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"podmanager/internal/metrics"
	"podmanager/internal/resource"
)

var tracer = otel.Tracer("podmanager/crawler")

// Crawler builds resource graphs. It holds no per-crawl state, so one Crawler
// may serve concurrent crawls of different endpoints.
type Crawler struct {
	logger       *slog.Logger
	metrics      *metrics.Metrics
	maxResources int
}

// Option configures a Crawler
type Option func(*Crawler)

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = l
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Crawler) {
		c.metrics = m
	}
}

// WithMaxResources caps the resources visited in one crawl. Zero means no cap.
func WithMaxResources(n int) Option {
	return func(c *Crawler) {
		c.maxResources = n
	}
}

// New creates a Crawler
func New(opts ...Option) *Crawler {
	c := &Crawler{logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "crawler")
	return c
}

// Build crawls the graph reachable from reader's root.
//
// Each resource is visited once: a URI is marked visited when it is first
// enqueued. Cancelling ctx stops the crawl and returns the links found so far.
func (c *Crawler) Build(ctx context.Context, reader resource.Reader) *Graph {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "crawl")
	defer span.End()
	defer func() { c.metrics.CrawlFinished(time.Since(start)) }()

	root, err := reader.Root(ctx)
	if err != nil {
		c.logger.Error("failed to fetch service root", "error", err)
		c.metrics.FetchFailed()
		span.RecordError(err)
		return NewGraph(nil)
	}
	c.metrics.ResourceFetched()
	span.SetAttributes(attribute.String("root", root.URI()))

	graph := NewGraph(root)
	visited := map[string]struct{}{root.URI(): {}}
	queue := []resource.Resource{root}
	capped := false

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			c.logger.Warn("crawl cancelled", "root", root.URI(), "links", graph.Len(), "error", err)
			break
		}

		current := queue[0]
		queue = queue[1:]

		for _, link := range Extract(ctx, current, c.logger, c.metrics) {
			graph.Add(link)

			uri := link.Target.URI()
			if _, seen := visited[uri]; seen {
				continue
			}
			if c.maxResources > 0 && len(visited) >= c.maxResources {
				if !capped {
					c.logger.Warn("resource limit reached, not following further links",
						"root", root.URI(), "max_resources", c.maxResources)
					capped = true
				}
				continue
			}
			visited[uri] = struct{}{}
			queue = append(queue, link.Target)
		}
	}

	span.AddEvent("crawl finished", trace.WithAttributes(
		attribute.Int("links", graph.Len()),
		attribute.Int("resources", len(visited)),
	))
	c.logger.Debug("crawl finished",
		"root", root.URI(),
		"resources", len(visited),
		"links", graph.Len(),
		"duration", time.Since(start))
	return graph
}
