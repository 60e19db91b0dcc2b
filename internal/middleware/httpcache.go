package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPCacheStore holds cached responses. The content cache stores satisfy it.
type HTTPCacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DelPrefix(ctx context.Context, prefix string) (int64, error)
}

const (
	HTTPCachePrefix = "folio-http-cache:"
	// HTTPCacheHeader is "hit" or "miss" on every cacheable response.
	HTTPCacheHeader = "x-folio-cache"

	defaultHTTPCacheTTL     = 15 * time.Second
	defaultHTTPCacheMaxBody = 1 << 20
)

// bypassParams skip the cache when present, so a client can force a fresh
// render with ?ts=<now>.
var bypassParams = []string{"ts", "timestamp", "_t", "t"}

type HTTPCacheOptions struct {
	TTL     time.Duration
	Disable bool
	// SkipPaths are exact paths or "/prefix/*" patterns served uncached.
	SkipPaths    []string
	MaxBodyBytes int
}

// snapshot is the stored form of one response. []byte fields encode as
// base64 in JSON.
type snapshot struct {
	Status       int    `json:"status"`
	ContentType  string `json:"content_type,omitempty"`
	CacheControl string `json:"cache_control,omitempty"`
	Body         []byte `json:"body"`
}

// recorder tees the response body into a bounded buffer.
type recorder struct {
	gin.ResponseWriter
	buf      []byte
	limit    int
	overflow bool
}

func (w *recorder) Write(data []byte) (int, error) {
	w.record(data)
	return w.ResponseWriter.Write(data)
}

func (w *recorder) WriteString(s string) (int, error) {
	w.record([]byte(s))
	return w.ResponseWriter.WriteString(s)
}

func (w *recorder) record(data []byte) {
	if w.overflow {
		return
	}
	if len(w.buf)+len(data) > w.limit {
		w.overflow = true
		w.buf = nil
		return
	}
	w.buf = append(w.buf, data...)
}

// HTTPCache serves repeated anonymous GET requests from store for opts.TTL.
// Responses to requests carrying Authorization are never stored.
func HTTPCache(store HTTPCacheStore, opts HTTPCacheOptions) gin.HandlerFunc {
	if opts.TTL <= 0 {
		opts.TTL = defaultHTTPCacheTTL
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultHTTPCacheMaxBody
	}

	return func(c *gin.Context) {
		if !cacheable(c, store, opts) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := HTTPCachePrefix + c.Request.URL.RequestURI()
		if snap, ok := loadSnapshot(ctx, store, key); ok {
			if snap.CacheControl != "" {
				c.Header("Cache-Control", snap.CacheControl)
			}
			c.Header(HTTPCacheHeader, "hit")
			c.Data(snap.Status, snap.ContentType, snap.Body)
			c.Abort()
			return
		}

		rec := &recorder{ResponseWriter: c.Writer, limit: opts.MaxBodyBytes}
		c.Writer = rec
		c.Header(HTTPCacheHeader, "miss")
		c.Next()

		header := rec.Header()
		if rec.Status() != http.StatusOK || rec.overflow || len(rec.buf) == 0 || noStore(header.Get("Cache-Control")) {
			return
		}
		raw, err := json.Marshal(snapshot{
			Status:       http.StatusOK,
			ContentType:  header.Get("Content-Type"),
			CacheControl: header.Get("Cache-Control"),
			Body:         rec.buf,
		})
		if err != nil {
			return
		}
		_ = store.Set(ctx, key, raw, opts.TTL)
	}
}

// PurgeHTTPCache drops every cached response.
func PurgeHTTPCache(ctx context.Context, store HTTPCacheStore) (int64, error) {
	if store == nil {
		return 0, nil
	}
	return store.DelPrefix(ctx, HTTPCachePrefix)
}

func cacheable(c *gin.Context, store HTTPCacheStore, opts HTTPCacheOptions) bool {
	if opts.Disable || store == nil || c.Request.Method != http.MethodGet {
		return false
	}
	if c.GetHeader("Authorization") != "" || skipPath(c.Request.URL.Path, opts.SkipPaths) {
		return false
	}
	query := c.Request.URL.Query()
	for _, key := range bypassParams {
		if strings.TrimSpace(query.Get(key)) != "" {
			return false
		}
	}
	return true
}

func loadSnapshot(ctx context.Context, store HTTPCacheStore, key string) (snapshot, bool) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		return snapshot{}, false
	}
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil || snap.Status == 0 {
		return snapshot{}, false
	}
	return snap, true
}

func skipPath(path string, patterns []string) bool {
	for _, p := range patterns {
		if prefix, ok := strings.CutSuffix(p, "/*"); ok {
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				return true
			}
			continue
		}
		if path == p {
			return true
		}
	}
	return false
}

func noStore(cacheControl string) bool {
	cc := strings.ToLower(cacheControl)
	return strings.Contains(cc, "no-store") || strings.Contains(cc, "no-cache") || strings.Contains(cc, "private")
}
