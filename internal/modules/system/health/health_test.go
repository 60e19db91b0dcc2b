package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/anish3d/folio/internal/pkg/cron"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func allow(c *gin.Context) { c.Next() }

func deny(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }

func setup(t *testing.T, opts Options, auth gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(opts).RegisterRoutes(r.Group("/api"), auth)
	return r
}

func get(r *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestStatus(t *testing.T) {
	r := setup(t, Options{Env: "production", Extra: map[string]any{"ai": true}}, deny)
	w := get(r, http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "production", body["env"])
	assert.Equal(t, true, body["ai"])
	assert.NotContains(t, body, "redis")
}

func TestStatus_RedisDown(t *testing.T) {
	r := setup(t, Options{Redis: pingFunc(func(context.Context) error { return errors.New("refused") })}, deny)
	w := get(r, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	r := setup(t, Options{Sched: cron.New(nil)}, deny)
	assert.Equal(t, http.StatusUnauthorized, get(r, http.MethodGet, "/api/health/cron").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, http.MethodGet, "/api/health/log/list").Code)
}

func TestCron(t *testing.T) {
	sched := cron.New(nil)
	ran := make(chan struct{}, 1)
	sched.Register(cron.Job{Name: "warm_notes", Interval: time.Hour, Fn: func(context.Context) error {
		ran <- struct{}{}
		return nil
	}})
	r := setup(t, Options{Sched: sched}, allow)

	w := get(r, http.MethodGet, "/api/health/cron")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"warm_notes"`)

	assert.Equal(t, http.StatusOK, get(r, http.MethodPost, "/api/health/cron/run/warm_notes").Code)
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
	assert.Equal(t, http.StatusNotFound, get(r, http.MethodPost, "/api/health/cron/run/nope").Code)
}

func TestLogs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "folio_2024-01-02.log"), []byte("hello\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	r := setup(t, Options{LogDir: dir}, allow)

	w := get(r, http.MethodGet, "/api/health/log/list")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data []logItem `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, "folio_2024-01-02.log", list.Data[0].Filename)
	assert.Equal(t, "6 B", list.Data[0].Size)

	w = get(r, http.MethodGet, "/api/health/log?filename=folio_2024-01-02.log")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello\n", w.Body.String())

	assert.Equal(t, http.StatusBadRequest, get(r, http.MethodGet, "/api/health/log?filename=../secret.log").Code)
	assert.Equal(t, http.StatusNotFound, get(r, http.MethodGet, "/api/health/log?filename=folio_1999-01-01.log").Code)
}

func TestFormatByteSize(t *testing.T) {
	assert.Equal(t, "512 B", formatByteSize(512))
	assert.Equal(t, "1.50 KB", formatByteSize(1536))
	assert.Equal(t, "2.00 MB", formatByteSize(2<<20))
}
