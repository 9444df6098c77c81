package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"podmanager/internal/detection"
	"podmanager/internal/discovery"
	"podmanager/internal/domain"
)

func discoverCmd(flags *globalFlags) *cobra.Command {
	var serviceType string

	cmd := &cobra.Command{
		Use:   "discover [uri...]",
		Short: "Run one discovery pass for the given or detected endpoints",
		Long: `Run one discovery pass and print the outcome of each endpoint as JSON.

Without arguments the configured detectors supply the endpoints.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, flags, schemaSync)
			if err != nil {
				return err
			}
			defer a.Close()

			detectors := a.detectors()
			if len(args) > 0 {
				t := domain.ParseServiceType(serviceType)
				eps := make(detection.Static, 0, len(args))
				for _, uri := range args {
					eps = append(eps, discovery.Endpoint{URI: uri, Type: t})
				}
				detectors = []detection.Detector{eps}
			}
			if len(detectors) == 0 {
				return fmt.Errorf("no endpoints given and no detector configured")
			}

			outcomes := a.registry(detectors).Poll(ctx)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			failed := 0
			for _, o := range outcomes {
				row := map[string]any{"endpoint": o.Endpoint.URI, "type": o.Endpoint.Type}
				if o.Err != nil {
					failed++
					row["error"] = o.Err.Error()
				} else {
					row["result"] = o.Result
				}
				if err := enc.Encode(row); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d endpoints failed", failed, len(outcomes))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&serviceType, "type", "psme", "Service type of URIs given as arguments (psme, rss)")
	return cmd
}
