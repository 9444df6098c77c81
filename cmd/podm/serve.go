package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"podmanager/internal/detection"
	"podmanager/internal/handler"
	"podmanager/internal/hub"
	"podmanager/internal/service"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run detection and discovery and serve the topology API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), flags, listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (default from config)")
	return cmd
}

func serve(parent context.Context, flags *globalFlags, listen string) error {
	ctx, stop := signal.NotifyContext(contextOrBackground(parent), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, flags, schemaSync)
	if err != nil {
		return err
	}
	defer a.Close()
	if listen == "" {
		listen = a.cfg.HTTP.Listen
	}
	a.logger.Info("Starting pod manager", "version", Version)
	a.logger.Info(a.cfg.Summary())

	podID, managerID, err := service.EnsurePodManager(ctx, a.repo, a.linker, a.cfg.Location(), a.cfg.Pod.UUID)
	if err != nil {
		return err
	}
	a.logger.Info("Pod manager registered", "pod", podID, "manager", managerID, "location", a.cfg.Pod.Location)

	sseHub := hub.New(a.logger)
	go sseHub.Run(ctx)
	sseHub.Subscribe(a.events)

	detectors := a.detectors()
	registry := a.registry(detectors)
	registry.Start(ctx, a.cfg.Discovery.PollInterval.Duration(), a.cfg.Discovery.RecheckInterval.Duration())
	defer registry.Stop()

	if sl := a.cfg.Detection.ServiceList; sl.Watch && sl.Path != "" {
		// The watcher is stopped before the registry and the store
		watchCtx, cancelWatch := context.WithCancel(ctx)
		watchDone := make(chan struct{})
		defer func() {
			cancelWatch()
			<-watchDone
		}()

		w := detection.NewWatcher(sl.Path, func() { registry.Poll(watchCtx) }, a.logger)
		go func() {
			defer close(watchDone)
			if err := w.Watch(watchCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn("Service list watcher stopped", "error", err)
			}
		}()
	}

	h := handler.New(service.NewTopology(a.repo),
		handler.WithDiscovery(registry),
		handler.WithEvents(sseHub),
		handler.WithMetrics(promhttp.HandlerFor(a.reg, promhttp.HandlerOpts{})),
		handler.WithLogger(a.logger),
	)
	router := handler.NewRouter(appName, a.logger)
	h.Routes(router)

	server := &http.Server{
		Addr:        listen,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("Server listening", "addr", listen)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("Server shutdown error", "error", err)
	}
	a.logger.Info("Server stopped")
	return nil
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
