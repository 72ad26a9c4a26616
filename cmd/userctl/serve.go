package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellouser/internal/app"
	"github.com/dropDatabas3/hellouser/internal/http/server"
	"github.com/dropDatabas3/hellouser/internal/observability/logger"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var (
		addr    string
		migrate bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta la API HTTP (/v1/users, /healthz, /metrics)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := opts.cfg
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if migrate {
				cfg.Flags.Migrate = true
			}

			c, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			logger.L().Info("starting",
				logger.Adapter(c.Store.Name()),
				logger.String("addr", cfg.Server.Addr),
				logger.Bool("metrics", cfg.Metrics.Enabled),
			)
			return server.Run(ctx, c.ServerConfig(), c.Handler())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "pisa server.addr")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "aplica migraciones antes de servir")
	return cmd
}
