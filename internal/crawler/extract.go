package crawler

import (
	"context"
	"log/slog"

	"podmanager/internal/metrics"
	"podmanager/internal/resource"
)

// Extract returns the links of res whose targets could be fetched. A failing
// target or link group is logged and skipped.
func Extract(ctx context.Context, res resource.Resource, logger *slog.Logger, m *metrics.Metrics) []Link {
	if logger == nil {
		logger = slog.Default()
	}

	names, err := res.LinkNames()
	if err != nil {
		logger.Warn("failed to list links", "uri", res.URI(), "error", err)
		m.FetchFailed()
		return nil
	}

	var links []Link
	for _, name := range names {
		refs, err := res.Links(ctx, name)
		if err != nil {
			logger.Warn("failed to read link group", "uri", res.URI(), "link", name, "error", err)
			m.FetchFailed()
			continue
		}
		for _, ref := range refs {
			target, err := ref.Get(ctx)
			if err != nil {
				logger.Warn("failed to fetch linked resource",
					"uri", ref.URI(), "source", res.URI(), "link", name, "error", err)
				m.FetchFailed()
				continue
			}
			m.ResourceFetched()
			links = append(links, Link{Source: res, Target: target, Name: name})
		}
	}
	return links
}
