package app

import (
	"fmt"
	"html"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/anish3d/folio/internal/config"
	"github.com/anish3d/folio/internal/middleware"
	"github.com/anish3d/folio/internal/modules/content/notes"
	"github.com/anish3d/folio/internal/modules/stats/views"
	"github.com/anish3d/folio/internal/modules/syndication/sitemap"
	"github.com/anish3d/folio/internal/modules/system/health"
	"github.com/anish3d/folio/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// hiddenPaths expands hidden_paths so that hiding a collection's page path
// also hides its API.
func hiddenPaths(cfg *config.AppConfig) []string {
	out := make([]string, 0, len(cfg.HiddenPaths)*2)
	for _, p := range cfg.HiddenPaths {
		out = append(out, p)
		for _, coll := range []config.CollectionConfig{cfg.Notion.Notes, cfg.Notion.Develop} {
			if p == coll.PagePath {
				out = append(out, "/api"+coll.APIPath)
			}
		}
	}
	return out
}

// sitemapSections lists the collections whose pages are not hidden.
func (a *App) sitemapSections() []sitemap.Section {
	var sections []sitemap.Section
	for _, s := range []struct {
		svc      *notes.Service
		path     string
		priority float64
	}{
		{a.Notes, a.cfg.Notion.Notes.PagePath, 0.6},
		{a.Develop, a.cfg.Notion.Develop.PagePath, 0.8},
	} {
		if s.svc.Collection().DatabaseID == "" || slices.Contains(a.cfg.HiddenPaths, s.path) {
			continue
		}
		sections = append(sections, sitemap.Section{Lister: s.svc, PagePath: s.path, Priority: s.priority})
	}
	return sections
}

func footer(owner string, now time.Time) string {
	if strings.TrimSpace(owner) == "" {
		return ""
	}
	return fmt.Sprintf("© %d %s", now.Year(), html.EscapeString(owner))
}

type revalidateRequest struct {
	// Scope limits the purge to one cache namespace: "notes", "develop",
	// "links" or "views". Empty purges everything.
	Scope string `json:"scope"`
}

// POST /api/revalidate
func (a *App) revalidate(c *gin.Context) {
	var req revalidateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid body")
			return
		}
	}
	prefixes, ok := a.purgePrefixes(strings.TrimSpace(req.Scope))
	if !ok {
		response.BadRequest(c, fmt.Sprintf("unknown scope %q", req.Scope))
		return
	}

	ctx := c.Request.Context()
	var purged int64
	for _, prefix := range prefixes {
		n, err := a.Cache.Purge(ctx, prefix)
		if err != nil {
			a.logger.Error("purge cache", zap.String("prefix", prefix), zap.Error(err))
			response.InternalError(c, err)
			return
		}
		purged += n
	}
	if n, err := middleware.PurgeHTTPCache(ctx, a.Store); err != nil {
		a.logger.Warn("purge http cache", zap.Error(err))
	} else {
		purged += n
	}

	a.logger.Info("revalidated",
		zap.String("subject", middleware.CurrentSubject(c)),
		zap.String("scope", req.Scope),
		zap.Int64("purged", purged),
	)
	a.sched.RunAll(ctx)

	c.JSON(http.StatusOK, gin.H{"revalidated": true, "purged": purged, "now": time.Now().UnixMilli()})
}

func (a *App) purgePrefixes(scope string) ([]string, bool) {
	switch scope {
	case "":
		return []string{a.Notes.CachePrefix(), a.Develop.CachePrefix(), a.Links.CachePrefix(), views.CachePrefix}, true
	case a.Notes.Collection().Name:
		return []string{a.Notes.CachePrefix()}, true
	case a.Develop.Collection().Name:
		return []string{a.Develop.CachePrefix()}, true
	case "links":
		return []string{a.Links.CachePrefix()}, true
	case "views":
		return []string{views.CachePrefix}, true
	}
	return nil, false
}

// pinger returns the Redis client as a health.Pinger, or nil without Redis.
func (a *App) pinger() health.Pinger {
	if a.redis == nil {
		return nil
	}
	return a.redis
}
