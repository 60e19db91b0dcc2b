package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anish3d/folio/internal/modules/content/cache"
	"github.com/anish3d/folio/internal/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(r *gin.Engine, method, path string, header ...string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	r.ServeHTTP(w, req)
	return w
}

func ok(c *gin.Context) { c.String(http.StatusOK, "ok") }

func TestRateLimit_Memory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/chat", RateLimit(NewMemoryCounter(), RateLimitOptions{Max: 3, Window: time.Minute}), ok)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/chat").Code)
	}
	w := serve(r, http.MethodPost, "/chat")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

type keyCounter struct{ keys []string }

func (k *keyCounter) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	k.keys = append(k.keys, key)
	return 1, nil
}

func TestRateLimit_KeyPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	counter := &keyCounter{}
	r := gin.New()
	r.POST("/chat", RateLimit(counter, RateLimitOptions{Prefix: "rate_limit:ai:"}), ok)
	r.POST("/other", RateLimit(counter, RateLimitOptions{}), ok)

	serve(r, http.MethodPost, "/chat")
	serve(r, http.MethodPost, "/other")
	require.Len(t, counter.keys, 2)
	assert.True(t, strings.HasPrefix(counter.keys[0], "rate_limit:ai:192.0.2.1:"), counter.keys[0])
	assert.True(t, strings.HasPrefix(counter.keys[1], "rate_limit:192.0.2.1:"), counter.keys[1])
}

func TestMemoryCounter_Expires(t *testing.T) {
	m := NewMemoryCounter()
	now := time.Unix(1000, 0)
	m.now = func() time.Time { return now }

	n, _ := m.Incr(context.Background(), "k", time.Second)
	assert.Equal(t, int64(1), n)
	n, _ = m.Incr(context.Background(), "k", time.Second)
	assert.Equal(t, int64(2), n)

	now = now.Add(2 * time.Second)
	n, _ = m.Incr(context.Background(), "k", time.Second)
	assert.Equal(t, int64(1), n)
}

func TestHiddenPaths(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(HiddenPaths([]string{"/notes/", "/api/notes", " "}))
	for _, p := range []string{"/notes/:slug", "/api/notes", "/api/notes-x", "/develop/:slug"} {
		r.GET(p, ok)
	}

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/notes/hello").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/api/notes").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/notes-x").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/develop/hello").Code)
}

func TestRequireScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	signer := jwt.New("secret", "folio")
	r := gin.New()
	r.POST("/revalidate", RequireScope(signer, jwt.ScopeRevalidate), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentSubject(c))
	})

	good, err := signer.Sign("cli", jwt.ScopeRevalidate, time.Hour)
	require.NoError(t, err)
	other, err := signer.Sign("cli", "read", time.Hour)
	require.NoError(t, err)

	w := serve(r, http.MethodPost, "/revalidate", "Authorization", "Bearer "+good)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cli", w.Body.String())

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/revalidate?token="+good).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/revalidate", "Authorization", "Bearer "+other).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/revalidate").Code)
}

func TestNormalizeToken(t *testing.T) {
	assert.Equal(t, "abc", NormalizeToken("  Bearer abc "))
	assert.Equal(t, "abc", NormalizeToken("abc"))
	assert.Equal(t, "", NormalizeToken(" "))
}

func TestHTTPCache(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := cache.NewMemoryStore()
	calls := 0
	r := gin.New()
	r.GET("/rss.xml", HTTPCache(store, HTTPCacheOptions{TTL: time.Minute}), func(c *gin.Context) {
		calls++
		c.Data(http.StatusOK, "text/xml; charset=utf-8", []byte("<rss/>"))
	})

	first := serve(r, http.MethodGet, "/rss.xml")
	second := serve(r, http.MethodGet, "/rss.xml")
	assert.Equal(t, 1, calls)
	assert.Equal(t, "<rss/>", second.Body.String())
	assert.Equal(t, first.Header().Get("Content-Type"), second.Header().Get("Content-Type"))
	assert.Equal(t, "hit", second.Header().Get("x-folio-cache"))

	serve(r, http.MethodGet, "/rss.xml?ts=1")
	assert.Equal(t, 2, calls)

	n, err := PurgeHTTPCache(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	serve(r, http.MethodGet, "/rss.xml")
	assert.Equal(t, 3, calls)
}

func TestHTTPCache_SkipsPrivateAndAuthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := cache.NewMemoryStore()
	calls := 0
	r := gin.New()
	mw := HTTPCache(store, HTTPCacheOptions{TTL: time.Minute, SkipPaths: []string{"/skip/*"}})
	r.GET("/private", mw, func(c *gin.Context) {
		calls++
		c.Header("Cache-Control", "private, no-store")
		c.String(http.StatusOK, "secret")
	})
	r.GET("/skip/a", mw, func(c *gin.Context) {
		calls++
		c.String(http.StatusOK, "a")
	})
	r.GET("/feed", mw, func(c *gin.Context) {
		calls++
		c.Header("Cache-Control", "public, s-maxage=1200")
		c.String(http.StatusOK, "feed")
	})

	serve(r, http.MethodGet, "/private")
	serve(r, http.MethodGet, "/private")
	assert.Equal(t, 2, calls)

	serve(r, http.MethodGet, "/skip/a")
	serve(r, http.MethodGet, "/skip/a")
	assert.Equal(t, 4, calls)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.Header.Set("Authorization", "Bearer x")
	r.ServeHTTP(w, req)
	assert.Equal(t, 5, calls)

	first := serve(r, http.MethodGet, "/feed")
	assert.Equal(t, "miss", first.Header().Get(HTTPCacheHeader))
	second := serve(r, http.MethodGet, "/feed")
	assert.Equal(t, 6, calls)
	assert.Equal(t, "hit", second.Header().Get(HTTPCacheHeader))
	assert.Equal(t, "public, s-maxage=1200", second.Header().Get("Cache-Control"))
}
