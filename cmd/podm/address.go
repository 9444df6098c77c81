package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"podmanager/internal/topology"
)

func addressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address TYPE=ID...",
		Short: "Render or parse a topology address",
		Long: `With TYPE=ID pairs, e.g. POD=1 RACK=2, build the Context and print its address.
With a single /rest/v1 path, parse it and print its chain.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 && strings.HasPrefix(args[0], topology.ServiceRoot) {
				c, collection, err := topology.ParseAddress(args[0])
				if err != nil {
					return err
				}
				for _, link := range c.Chain() {
					fmt.Fprintf(out, "%s=%d\n", link.Type(), link.ID())
				}
				if collection != "" {
					fmt.Fprintf(out, "collection of %s\n", collection)
				}
				return nil
			}

			var c *topology.Context
			for _, arg := range args {
				name, value, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("expected TYPE=ID, got %q", arg)
				}
				id, err := strconv.ParseInt(value, 10, 64)
				if err != nil {
					return fmt.Errorf("bad id in %q: %w", arg, err)
				}
				t := topology.ContextType(strings.ToUpper(name))
				if c == nil {
					c, err = topology.Root(id, t)
				} else {
					c, err = c.Child(id, t)
				}
				if err != nil {
					return err
				}
			}
			fmt.Fprintln(out, topology.Address(c))
			return nil
		},
	}
}
