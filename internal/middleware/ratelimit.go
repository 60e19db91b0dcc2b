package middleware

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/anish3d/folio/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// Counter counts hits per key within a window. *redis.Client from
// internal/pkg/redis satisfies it.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type RateLimitOptions struct {
	Max    int64
	Window time.Duration
	// Prefix namespaces the counter keys.
	Prefix string
}

// RateLimit allows Max requests per client IP per fixed window and answers
// 429 beyond that. Counter errors let the request through.
func RateLimit(counter Counter, opts RateLimitOptions) gin.HandlerFunc {
	if opts.Max <= 0 {
		opts.Max = 10
	}
	if opts.Window <= 0 {
		opts.Window = time.Minute
	}
	if opts.Prefix == "" {
		opts.Prefix = "rate_limit:"
	}
	retryAfter := strconv.Itoa(max(1, int(opts.Window/time.Second)))

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		window := time.Now().UnixNano() / int64(opts.Window)
		key := fmt.Sprintf("%s%s:%d", opts.Prefix, ip, window)
		count, err := counter.Incr(c.Request.Context(), key, opts.Window)
		if err != nil {
			c.Next()
			return
		}

		if count > opts.Max {
			c.Header("Retry-After", retryAfter)
			response.TooManyRequests(c, "Too many requests, please slow down")
			return
		}

		c.Next()
	}
}

// MemoryCounter counts in process memory.
type MemoryCounter struct {
	mu     sync.Mutex
	counts map[string]memoryCount
	now    func() time.Time
}

type memoryCount struct {
	n         int64
	expiresAt time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{counts: make(map[string]memoryCount), now: time.Now}
}

func (m *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, v := range m.counts {
		if !now.Before(v.expiresAt) {
			delete(m.counts, k)
		}
	}
	v, ok := m.counts[key]
	if !ok {
		v.expiresAt = now.Add(window)
	}
	v.n++
	m.counts[key] = v
	return v.n, nil
}
