package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellouser/internal/app"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones embebidas del driver configurado",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *opts.cfg
			cfg.Flags.Migrate = false

			c, err := app.New(cmd.Context(), &cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			res, err := c.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.Format == "json" {
				return printJSON(out, map[string]any{
					"store":       c.Store.Name(),
					"applied":     res.Applied,
					"skipped":     res.Skipped,
					"duration_ms": res.Duration.Milliseconds(),
				})
			}
			_, err = fmt.Fprintf(out, "store=%s applied=%v skipped=%v\n", c.Store.Name(), res.Applied, res.Skipped)
			return err
		},
	}
}
