// Package server arma el router chi con los controllers y sirve HTTP con
// apagado ordenado.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	healthctrl "github.com/dropDatabas3/hellouser/internal/http/controllers/health"
	usersctrl "github.com/dropDatabas3/hellouser/internal/http/controllers/users"
	httperrors "github.com/dropDatabas3/hellouser/internal/http/errors"
	mw "github.com/dropDatabas3/hellouser/internal/http/middlewares"
	"github.com/dropDatabas3/hellouser/internal/observability/logger"
	"github.com/dropDatabas3/hellouser/internal/rate"
	"github.com/dropDatabas3/hellouser/internal/services/users"
)

// Deps contiene lo necesario para construir el handler.
type Deps struct {
	Users   users.Service
	Store   healthctrl.Pinger
	Version string

	// Limiter para las escrituras de /v1/users. nil = sin límite.
	Limiter rate.Limiter

	// Gatherer para /metrics. nil = sin endpoint de métricas.
	Gatherer    prometheus.Gatherer
	MetricsPath string
}

// NewHandler construye el router completo.
func NewHandler(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(mw.WithRecover(), mw.WithRequestID(), mw.WithMetrics())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, r, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, r, httperrors.ErrMethodNotAllowed)
	})

	// health y métricas sin logging (muy frecuentes)
	health := healthctrl.NewHealthController(d.Store, d.Version, 0)
	r.Get("/healthz", health.Healthz)
	if d.Gatherer != nil {
		path := d.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(mw.WithLogging(), mw.WithInflight("/v1/users"), mw.WithRateLimit(d.Limiter, mw.IPRateKey))
		usersctrl.NewUsersController(d.Users).Register(r)
	})
	return r
}

// Config del http.Server.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Run sirve handler hasta que ctx se cancela y después apaga con
// ShutdownTimeout de gracia.
func Run(ctx context.Context, cfg Config, handler http.Handler) error {
	log := logger.L().With(logger.Component("http"))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", logger.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	grace := cfg.ShutdownTimeout
	if grace <= 0 {
		grace = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), grace)
	defer cancel()

	log.Info("shutting down", logger.Duration(grace))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
