// Package health contiene el controller para health checks.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/hellouser/internal/http/helpers"
	"github.com/dropDatabas3/hellouser/internal/observability/logger"
)

// Pinger abstrae el chequeo del backing store.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// HealthResponse cuerpo de /healthz.
type HealthResponse struct {
	Status    string    `json:"status"`
	Store     string    `json:"store"`
	Message   string    `json:"message,omitempty"`
	Version   string    `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthController maneja GET /healthz.
type HealthController struct {
	store   Pinger
	version string
	timeout time.Duration
}

// NewHealthController crea el controller. timeout <= 0 usa 2s.
func NewHealthController(store Pinger, version string, timeout time.Duration) *HealthController {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthController{store: store, version: version, timeout: timeout}
}

// Healthz responde 200 si el store contesta el ping y 503 si no.
func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()

	resp := HealthResponse{
		Status:    "ok",
		Store:     c.store.Name(),
		Version:   c.version,
		Timestamp: time.Now().UTC(),
	}
	status := http.StatusOK
	if err := c.store.Ping(ctx); err != nil {
		logger.From(ctx).Warn("store ping failed", logger.Adapter(c.store.Name()), logger.Err(err))
		resp.Status = "unavailable"
		resp.Message = err.Error()
		status = http.StatusServiceUnavailable
	}
	helpers.WriteJSON(w, status, resp)
}
