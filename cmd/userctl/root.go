package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellouser/internal/config"
	"github.com/dropDatabas3/hellouser/internal/observability/logger"
)

// rootOptions flags globales compartidos por todos los subcomandos.
type rootOptions struct {
	ConfigPath string
	EnvFiles   []string
	Driver     string
	DSN        string
	Format     string // json | text

	cfg *config.Config
}

var validFormats = []string{"text", "json"}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "userctl",
		Short:         "Servicio y herramientas de usuarios (hellouser)",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", envOr("USERCTL_CONFIG", ""), "YAML de configuración (env USERCTL_CONFIG)")
	cmd.PersistentFlags().StringSliceVar(&opts.EnvFiles, "env-file", []string{".env"}, "archivos .env a cargar antes de leer la config")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "pisa storage.driver")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "pisa storage.dsn")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "formato de salida (json|text)")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newUsersCommand(opts))
	cmd.AddCommand(newSeedCommand(opts))
	cmd.AddCommand(newAdaptersCommand(opts))
	return cmd
}

// load carga .env, config y logger. Un .env inexistente no es error.
func (o *rootOptions) load() error {
	valid := false
	for _, f := range validFormats {
		if o.Format == f {
			valid = true
		}
	}
	if !valid {
		return fmt.Errorf("invalid format %q: must be one of %v", o.Format, validFormats)
	}

	for _, f := range o.EnvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("env file %s: %w", f, err)
		}
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if o.Driver != "" {
		cfg.Storage.Driver = o.Driver
	}
	if o.DSN != "" {
		cfg.Storage.DSN = o.DSN
		// el flag gana también sobre los bloques específicos
		cfg.Storage.Postgres.DSN = ""
		cfg.Storage.MySQL.DSN = ""
		cfg.Storage.SQLite.Path = ""
		cfg.Storage.Redis.Addr = ""
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}

	if err := logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	}); err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
