package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"podmanager/internal/config"
	"podmanager/internal/crawler"
	"podmanager/internal/detection"
	"podmanager/internal/discovery"
	"podmanager/internal/domain"
	"podmanager/internal/linker"
	"podmanager/internal/mapper"
	"podmanager/internal/metrics"
	"podmanager/internal/repository/sqlite"
	"podmanager/internal/resource"
	"podmanager/internal/schema"
)

// app holds the wired components shared by the subcommands
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	repo    *sqlite.Repository
	reg     *prometheus.Registry
	metrics *metrics.Metrics
	events  *discovery.EventBus
	linker  *linker.Linker
	service *discovery.Service
}

// loadConfig reads the config from an explicit path or the search locations
// and applies command line overrides
func loadConfig(flags *globalFlags) (*config.Config, string, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if flags.configPath != "" {
		cfg, path, err = config.LoadFromPath(flags.configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return nil, path, err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.dbPath != "" {
		cfg.Database.Path = flags.dbPath
	}
	return cfg, path, cfg.Validate()
}

// newLogger creates the text logger on stderr and installs it as the default
func newLogger(level string) (*slog.Logger, error) {
	l, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
	slog.SetDefault(logger)
	return logger, nil
}

// schemaMode is how a subcommand treats the stored schema
type schemaMode int

const (
	// schemaSync registers every class before discovery, truncating per policy
	schemaSync schemaMode = iota
	// schemaCheck leaves stored objects alone and only reports drift
	schemaCheck
)

// newApp opens the store, prepares the schema per mode and wires the discovery
// pipeline
func newApp(ctx context.Context, flags *globalFlags, mode schemaMode) (*app, error) {
	cfg, path, err := loadConfig(flags)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if path != "" {
		logger.Info("Config loaded", "path", path)
	}

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Info("Database opened", "path", cfg.Database.Path)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	a := &app{cfg: cfg, logger: logger, repo: repo, reg: reg, metrics: m, events: discovery.NewEventBus()}
	prepare := a.syncSchema
	if mode == schemaCheck {
		prepare = a.checkSchema
	}
	if err := prepare(ctx); err != nil {
		repo.Close()
		return nil, err
	}

	a.linker = linker.New(linker.NewRegistry(linker.DefaultRegistrations()...), linker.WithLogger(logger))
	pass := discovery.NewPass(repo,
		discovery.WithCrawler(crawler.New(
			crawler.WithLogger(logger),
			crawler.WithMetrics(m),
			crawler.WithMaxResources(cfg.Discovery.MaxResources),
		)),
		discovery.WithMappers(mapper.DefaultSet()),
		discovery.WithLinker(a.linker),
		discovery.WithEvents(a.events),
		discovery.WithMetrics(m),
		discovery.WithLogger(logger),
	)
	readers := discovery.HTTPReaders(
		resource.WithTimeout(cfg.Discovery.FetchTimeout.Duration()),
		resource.WithLogger(logger),
	)
	a.service = discovery.NewService(pass, readers, cfg.Discovery.MaxConcurrentPasses, logger)
	return a, nil
}

// syncSchema registers every domain class before any discovery runs
func (a *app) syncSchema(ctx context.Context) error {
	sync := schema.NewSynchronizer(a.repo,
		schema.WithPolicy(schema.ParseTruncatePolicy(a.cfg.Discovery.TruncatePolicy)),
		schema.WithLogger(a.logger))
	results, err := sync.SyncAll(ctx, domain.Classes())
	if err != nil {
		return fmt.Errorf("synchronize schema: %w", err)
	}
	truncated := 0
	for _, r := range results {
		if r.Truncated {
			truncated++
		}
	}
	a.metrics.SchemaTruncated(truncated)
	return nil
}

// checkSchema verifies that every stored vertex type belongs to a domain class
func (a *app) checkSchema(ctx context.Context) error {
	sync := schema.NewSynchronizer(a.repo, schema.WithLogger(a.logger))
	sync.Register(domain.Classes()...)
	if err := sync.CheckDrift(ctx); err != nil {
		return fmt.Errorf("check schema: %w", err)
	}
	return nil
}

// detectors builds the configured endpoint detectors
func (a *app) detectors() []detection.Detector {
	var out []detection.Detector
	d := a.cfg.Detection
	if d.ServiceList.Path != "" {
		out = append(out, detection.NewServiceListDetector(d.ServiceList.Path, a.logger))
	}
	if d.Leases.Path != "" {
		out = append(out, detection.NewLeasesDetector(d.Leases.Path, d.Leases.PSMEPort, d.Leases.RSSPort, a.logger))
	}
	if d.Nmap.Enabled {
		out = append(out, detection.NewNmapDetector(d.Nmap.Targets,
			detection.WithPorts(d.Nmap.PSMEPort, d.Nmap.RSSPort),
			detection.WithScanTimeout(d.Nmap.Timeout.Duration()),
			detection.WithSkipHostDiscovery(d.Nmap.SkipHostDiscovery),
			detection.WithNmapLogger(a.logger),
		))
	}
	return out
}

// registry creates the detection registry fed by detectors
func (a *app) registry(detectors []detection.Detector) *detection.Registry {
	return detection.NewRegistry(a.service, detectors,
		detection.WithMaxFailedRetries(a.cfg.Discovery.MaxFailedRetries),
		detection.WithEvents(a.events),
		detection.WithMetrics(a.metrics),
		detection.WithLogger(a.logger),
	)
}

func (a *app) Close() {
	if err := a.repo.Close(); err != nil {
		a.logger.Warn("Failed to close database", "error", err)
	}
}
