package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func schemaCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage the graph schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Register every domain class as a vertex type and list them",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := contextOrBackground(cmd.Context())
			a, err := newApp(ctx, flags, schemaSync)
			if err != nil {
				return err
			}
			defer a.Close()

			names, err := a.repo.VertexTypeNames(ctx)
			if err != nil {
				return err
			}
			for _, name := range names {
				vt, err := a.repo.VertexType(ctx, name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d properties\n", name, len(vt.Properties))
			}
			return nil
		},
	})
	return cmd
}
