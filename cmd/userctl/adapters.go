package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellouser/internal/store"
)

func newAdaptersCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "adapters",
		Short: "Lista los adapters de store registrados",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := store.ListAdapters()
			if opts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), names)
			}
			for _, n := range names {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), n); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
