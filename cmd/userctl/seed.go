package main

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/hellouser/internal/app"
	"github.com/dropDatabas3/hellouser/internal/domain/repository"
	"github.com/dropDatabas3/hellouser/internal/observability/logger"
	"github.com/dropDatabas3/hellouser/internal/services/users"
)

type seedResult struct {
	Created   int64 `json:"created"`
	Conflicts int64 `json:"conflicts"`
	Millis    int64 `json:"duration_ms"`
}

func newSeedCommand(opts *rootOptions) *cobra.Command {
	var (
		count       int
		concurrency int
		domain      string
		prefix      string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Crea usuarios de prueba en paralelo, una unidad de trabajo por usuario",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be > 0")
			}
			if concurrency <= 0 {
				concurrency = 1
			}

			ctx := cmd.Context()
			c, err := app.New(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			var res seedResult
			start := time.Now()

			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(concurrency)
			for i := 1; i <= count; i++ {
				g.Go(func() error {
					_, err := c.Users.Create(gctx, users.CreateInput{
						Name:  fmt.Sprintf("%s user %d", prefix, i),
						Email: fmt.Sprintf("%s%d@%s", prefix, i, domain),
					})
					switch {
					case err == nil:
						atomic.AddInt64(&res.Created, 1)
						return nil
					case repository.IsConflict(err):
						// re-ejecutar seed sobre el mismo store no es error
						atomic.AddInt64(&res.Conflicts, 1)
						return nil
					default:
						return fmt.Errorf("seed user %d: %w", i, err)
					}
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			res.Millis = time.Since(start).Milliseconds()

			logger.L().Info("seed completed",
				logger.Adapter(c.Store.Name()),
				logger.Int("created", int(res.Created)),
				logger.Int("conflicts", int(res.Conflicts)),
			)
			if opts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), res)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created=%d conflicts=%d duration=%dms\n", res.Created, res.Conflicts, res.Millis)
			return err
		},
	}
	cmd.Flags().IntVar(&count, "count", 10, "cantidad de usuarios")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "unidades de trabajo en paralelo")
	cmd.Flags().StringVar(&domain, "domain", "example.com", "dominio de los emails")
	cmd.Flags().StringVar(&prefix, "prefix", "seed", "prefijo de nombre y email")
	return cmd
}
