package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"podmanager/internal/codec"
	"podmanager/internal/service"
)

func exportCmd(flags *globalFlags) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the stored topology tree",
		Long: `Export writes every addressable object of the stored graph as a tree
rooted at the Pods, Managers, Nodes and Services collections.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			exporter, err := codec.ForFormat(format)
			if err != nil {
				return err
			}

			ctx := contextOrBackground(cmd.Context())
			a, err := newApp(ctx, flags, schemaCheck)
			if err != nil {
				return err
			}
			defer a.Close()

			roots, err := service.NewTopology(a.repo).Snapshot(ctx)
			if err != nil {
				return fmt.Errorf("failed to snapshot topology: %w", err)
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			return exporter.Export(roots, w)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format ("+strings.Join(codec.Formats(), ", ")+")")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}
