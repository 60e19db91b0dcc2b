package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anish3d/folio/internal/config"
	"github.com/anish3d/folio/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, yaml string, vars map[string]string) *config.AppConfig {
	t.Helper()
	cfg, err := config.Parse([]byte(yaml), "test", func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	})
	require.NoError(t, err)
	return cfg
}

func newTestApp(t *testing.T, cfg *config.AppConfig) *App {
	t.Helper()
	a, err := New(nil, cfg, "")
	require.NoError(t, err)
	t.Cleanup(a.Shutdown)
	return a
}

func do(a *App, method, target, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	a.Router().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	a := newTestApp(t, testConfig(t, "cache:\n  disabled: true\n", nil))
	w := do(a, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Equal(t, ":3000", a.Addr())
}

func TestHiddenPaths_HideCollectionAPI(t *testing.T) {
	cfg := testConfig(t, "cache:\n  disabled: true\n", map[string]string{"NEXT_PUBLIC_MAKE_PAGE_404": "develop"})
	assert.Equal(t, []string{"/develop", "/api/develop-notes"}, hiddenPaths(cfg))

	a := newTestApp(t, cfg)
	assert.Equal(t, http.StatusNotFound, do(a, http.MethodGet, "/api/develop-notes", "").Code)
	assert.Equal(t, http.StatusNotFound, do(a, http.MethodGet, "/develop/some-note", "").Code)
}

func TestAIChat_DisabledAnswers503(t *testing.T) {
	a := newTestApp(t, testConfig(t, "cache:\n  disabled: true\n", nil))
	assert.Equal(t, http.StatusServiceUnavailable, do(a, http.MethodPost, "/api/ai-chat", "").Code)
}

func TestRevalidate(t *testing.T) {
	cfg := testConfig(t, "cache:\n  disabled: true\n", map[string]string{"JWT_SECRET": "s3cret"})
	a := newTestApp(t, cfg)

	assert.Equal(t, http.StatusUnauthorized, do(a, http.MethodPost, "/api/revalidate", "").Code)

	token, err := jwt.New("s3cret", cfg.JWT.Issuer).Sign("tester", jwt.ScopeRevalidate, time.Minute)
	require.NoError(t, err)
	w := do(a, http.MethodPost, "/api/revalidate", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"revalidated":true`)

	other, err := jwt.New("s3cret", cfg.JWT.Issuer).Sign("tester", "read", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(a, http.MethodPost, "/api/revalidate", other).Code)
}

func TestPurgePrefixes(t *testing.T) {
	a := newTestApp(t, testConfig(t, "cache:\n  disabled: true\n", nil))

	all, ok := a.purgePrefixes("")
	require.True(t, ok)
	assert.Equal(t, []string{"notes:", "develop:", "links:", "views:"}, all)

	one, ok := a.purgePrefixes("develop")
	require.True(t, ok)
	assert.Equal(t, []string{"develop:"}, one)

	_, ok = a.purgePrefixes("posts")
	assert.False(t, ok)
}

func TestMatchOriginPattern(t *testing.T) {
	assert.True(t, matchOriginPattern("anish3d.com", "anish3d.com"))
	assert.True(t, matchOriginPattern("*.anish3d.com", "blog.anish3d.com"))
	assert.False(t, matchOriginPattern("*.anish3d.com", "anish3d.org"))
	assert.True(t, matchOriginPattern("localhost:*", "localhost:5173"))
	assert.Equal(t, "anish3d.com", extractOriginHost("https://anish3d.com"))
}

func TestCORS_RestrictsDeployedOrigins(t *testing.T) {
	cfg := testConfig(t, "env: production\nallowed_origins: [\"https://anish3d.com\"]\n", nil)
	c := corsConfig(cfg)
	assert.True(t, c.AllowOriginFunc("https://anish3d.com"))
	assert.False(t, c.AllowOriginFunc("https://evil.test"))

	dev := corsConfig(testConfig(t, "allowed_origins: [\"https://anish3d.com\"]\n", nil))
	assert.True(t, dev.AllowOriginFunc("https://evil.test"))
}

func TestFooter(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "© 2024 A &amp; B", footer("A & B", now))
	assert.Empty(t, footer(" ", now))
}

func TestSitemapSections_SkipHiddenAndUnconfigured(t *testing.T) {
	cfg := testConfig(t, "cache:\n  disabled: true\n", map[string]string{
		"NOTION_DATABASE_ID":         "notes-db",
		"NOTION_DEVELOP_DATABASE_ID": "develop-db",
		"NEXT_PUBLIC_MAKE_PAGE_404":  "develop",
	})
	a := newTestApp(t, cfg)
	sections := a.sitemapSections()
	require.Len(t, sections, 1)
	assert.Equal(t, "/notes", sections[0].PagePath)
}
