package rate

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryLimiter cuenta hits por proceso. Sirve para una sola réplica o para
// dev; con varias réplicas usar RedisLimiter.
type MemoryLimiter struct {
	Max    int64
	Window time.Duration
	Now    func() time.Time

	c *cache.Cache
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		Max:    int64(max),
		Window: window,
		Now:    time.Now,
		c:      cache.New(window, 2*window),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	k, left := window("", key, l.Now(), l.Window)

	if err := l.c.Add(k, int64(1), left); err == nil {
		return result(1, l.Max, left, l.Window), nil
	}
	hits, err := l.c.IncrementInt64(k, 1)
	if err != nil {
		// la ventana expiró entre Add e Increment: arranca una nueva
		l.c.Set(k, int64(1), left)
		hits = 1
	}
	return result(hits, l.Max, left, l.Window), nil
}
