// Package app es el composition root: abre el store configurado, arma las
// sesiones de persistencia, el service de usuarios y el handler HTTP.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/hellouser/internal/config"
	"github.com/dropDatabas3/hellouser/internal/http/server"
	"github.com/dropDatabas3/hellouser/internal/metrics"
	"github.com/dropDatabas3/hellouser/internal/observability/logger"
	"github.com/dropDatabas3/hellouser/internal/persistence/userrepo"
	"github.com/dropDatabas3/hellouser/internal/rate"
	"github.com/dropDatabas3/hellouser/internal/services/users"
	"github.com/dropDatabas3/hellouser/internal/store"
	_ "github.com/dropDatabas3/hellouser/internal/store/adapters/dal"
	"github.com/dropDatabas3/hellouser/internal/store/adapters/noop"
)

// Container agrupa las dependencias de un proceso.
type Container struct {
	Config   *config.Config
	Store    store.Connection
	Sessions *userrepo.Factory
	Users    users.Service
	Registry *prometheus.Registry

	// Limiter de escrituras HTTP; nil si rate.enabled es false.
	Limiter rate.Limiter

	closers []func() error
}

// Option ajusta la construcción del container (tests).
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock fija el reloj del mapper y del service.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New abre el store y arma el container. Si cfg.Flags.Migrate está activo
// aplica las migraciones embebidas antes de devolver.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	conn, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:   cfg,
		Store:    conn,
		Sessions: userrepo.NewFactory(conn, o.now),
		Registry: prometheus.NewRegistry(),
	}
	c.Users = users.NewService(users.Deps{Sessions: c.Sessions, Now: o.now})

	if err := c.registerMetrics(); err != nil {
		_ = c.Close()
		return nil, err
	}
	if err := c.openLimiter(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}

	if cfg.Flags.Migrate {
		if _, err := c.Migrate(ctx); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	return c, nil
}

// openLimiter arma el limiter configurado. El backend redis se verifica con
// un PING para fallar al arrancar y no en la primera escritura.
func (c *Container) openLimiter(ctx context.Context) error {
	rc := c.Config.Rate
	if !rc.Enabled {
		return nil
	}
	window := config.Duration(rc.Window)
	log := logger.From(ctx).With(logger.Component("rate"))

	switch rc.Backend {
	case "redis":
		client := rdb.NewClient(&rdb.Options{
			Addr:     c.Config.RateRedisAddr(),
			Password: rc.Redis.Password,
			DB:       rc.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return fmt.Errorf("rate limiter redis: %w", err)
		}
		c.closers = append(c.closers, client.Close)
		c.Limiter = rate.NewRedisLimiter(client, rc.Redis.Prefix, rc.Max, window)
	default:
		c.Limiter = rate.NewMemoryLimiter(rc.Max, window)
	}
	log.Info("rate limiter enabled",
		logger.String("backend", rc.Backend),
		logger.Int("max", rc.Max),
		logger.String("window", window.String()),
	)
	return nil
}

// AdapterConfig traduce la config al formato del registry de adapters.
func AdapterConfig(cfg *config.Config) store.AdapterConfig {
	ac := store.AdapterConfig{
		Name: cfg.Storage.Driver,
		DSN:  cfg.StorageDSN(),
	}
	switch cfg.Storage.Driver {
	case "postgres":
		ac.MaxOpenConns = cfg.Storage.Postgres.MaxOpenConns
		ac.MaxIdleConns = cfg.Storage.Postgres.MaxIdleConns
		ac.ConnMaxLifetime = config.Duration(cfg.Storage.Postgres.ConnMaxLifetime)
	case "mysql":
		ac.MaxOpenConns = cfg.Storage.MySQL.MaxOpenConns
		ac.MaxIdleConns = cfg.Storage.MySQL.MaxIdleConns
		ac.ConnMaxLifetime = config.Duration(cfg.Storage.MySQL.ConnMaxLifetime)
	case "redis":
		ac.Password = cfg.Storage.Redis.Password
		ac.DB = cfg.Storage.Redis.DB
		ac.KeyPrefix = cfg.Storage.Redis.Prefix
	}
	return ac
}

// OpenStore abre la conexión del driver configurado. "none" usa el adapter
// noop, que no está en el registry.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Connection, error) {
	log := logger.From(ctx).With(logger.Component("app"), logger.Adapter(cfg.Storage.Driver))

	if cfg.Storage.Driver == "none" {
		log.Warn("running without database")
		return noop.New().Connect(ctx, store.AdapterConfig{Name: "none"})
	}

	conn, err := store.OpenAdapter(ctx, AdapterConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", cfg.Storage.Driver, err)
	}
	log.Info("store connected")
	return conn, nil
}

// Migrate aplica las migraciones si el store tiene esquema. Stores sin
// esquema (memory, redis) devuelven un resultado vacío.
func (c *Container) Migrate(ctx context.Context) (*store.MigrationResult, error) {
	m, ok := c.Store.(store.Migratable)
	if !ok {
		logger.From(ctx).Debug("store has no schema to migrate", logger.Adapter(c.Store.Name()))
		return &store.MigrationResult{}, nil
	}
	res, err := m.Migrate(ctx)
	if err != nil {
		return res, fmt.Errorf("migrate %s: %w", c.Store.Name(), err)
	}
	logger.From(ctx).Info("migrations applied",
		logger.Adapter(c.Store.Name()),
		logger.Count(len(res.Applied)),
		logger.Int("skipped", len(res.Skipped)),
	)
	return res, nil
}

func (c *Container) registerMetrics() error {
	return errors.Join(
		metrics.RegisterPersistence(c.Registry),
		metrics.RegisterHTTP(c.Registry),
		c.Registry.Register(collectors.NewGoCollector()),
		c.Registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})),
	)
}

// Handler arma el router HTTP.
func (c *Container) Handler() http.Handler {
	d := server.Deps{
		Users:       c.Users,
		Store:       c.Store,
		Version:     c.Config.App.Version,
		Limiter:     c.Limiter,
		MetricsPath: c.Config.Metrics.Path,
	}
	if c.Config.Metrics.Enabled {
		d.Gatherer = c.Registry
	}
	return server.NewHandler(d)
}

// ServerConfig traduce la sección server.
func (c *Container) ServerConfig() server.Config {
	s := c.Config.Server
	return server.Config{
		Addr:            s.Addr,
		ReadTimeout:     config.Duration(s.ReadTimeout),
		WriteTimeout:    config.Duration(s.WriteTimeout),
		IdleTimeout:     config.Duration(s.IdleTimeout),
		ShutdownTimeout: config.Duration(s.ShutdownTimeout),
	}
}

// Close cierra el store y los clientes auxiliares.
func (c *Container) Close() error {
	errs := []error{c.Store.Close()}
	for _, fn := range c.closers {
		errs = append(errs, fn())
	}
	return errors.Join(errs...)
}
