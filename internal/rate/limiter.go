// Package rate implementa rate limiting de ventana fija para las escrituras
// de la API de usuarios, en memoria (go-cache) o compartido vía Redis.
package rate

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Result es la respuesta de una consulta al limiter.
type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	WindowTTL   time.Duration
	CurrentHits int64
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// window calcula la clave de la ventana actual y cuánto le queda.
func window(prefix, key string, now time.Time, size time.Duration) (string, time.Duration) {
	start := now.UTC().Truncate(size)
	k := fmt.Sprintf("%s%s:%d", prefix, strings.ReplaceAll(key, " ", "_"), start.Unix())
	return k, start.Add(size).Sub(now.UTC())
}

func result(hits, max int64, ttl, size time.Duration) Result {
	if ttl <= 0 {
		ttl = size
	}
	res := Result{
		Allowed:     hits <= max,
		Remaining:   max - hits,
		CurrentHits: hits,
		WindowTTL:   ttl,
	}
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	if !res.Allowed {
		// retry: resto de la ventana, redondeado al segundo
		res.RetryAfter = ttl.Round(time.Second)
		if res.RetryAfter < time.Second {
			res.RetryAfter = time.Second
		}
	}
	return res
}
