package app

import (
	"github.com/anish3d/folio/internal/middleware"
	"github.com/anish3d/folio/internal/modules/content/links"
	"github.com/anish3d/folio/internal/modules/content/notes"
	"github.com/anish3d/folio/internal/modules/processing/ai"
	"github.com/anish3d/folio/internal/modules/processing/render"
	"github.com/anish3d/folio/internal/modules/stats/views"
	"github.com/anish3d/folio/internal/modules/syndication/feed"
	"github.com/anish3d/folio/internal/modules/syndication/sitemap"
	"github.com/anish3d/folio/internal/modules/system/health"
	"github.com/anish3d/folio/internal/pkg/jwt"
	"github.com/anish3d/folio/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *App) registerRoutes() {
	r := a.router
	cfg := a.cfg

	if hidden := hiddenPaths(cfg); len(hidden) > 0 {
		a.logger.Info("hiding paths", zap.Strings("paths", hidden))
		r.Use(middleware.HiddenPaths(hidden))
	}

	r.NoRoute(func(c *gin.Context) { response.NotFound(c) })

	api := r.Group("/api")
	notes.NewHandler(a.Notes).RegisterRoutes(api, cfg.Notion.Notes.APIPath)
	notes.NewHandler(a.Develop).RegisterRoutes(api, cfg.Notion.Develop.APIPath)
	links.NewHandler(a.Links).RegisterRoutes(api)
	views.NewHandler(a.Views, a.Cache, a.logger).RegisterRoutes(api)

	if a.Assistant != nil {
		limit := middleware.RateLimit(a.Counter, middleware.RateLimitOptions{
			Max:    int64(cfg.AI.RateLimit),
			Window: cfg.AI.RateWindow,
			Prefix: "rate_limit:ai:",
		})
		ai.NewHandler(a.Assistant, a.logger).RegisterRoutes(api, limit)
	} else {
		api.POST("/ai-chat", func(c *gin.Context) {
			response.ServiceUnavailable(c, "AI chat is not configured")
		})
	}

	api.POST("/revalidate", middleware.RequireScope(a.Signer, jwt.ScopeRevalidate), a.revalidate)
	health.NewHandler(health.Options{
		Env:     cfg.Env,
		Started: a.started,
		Redis:   a.pinger(),
		Sched:   a.sched,
		LogDir:  cfg.Log.Dir,
		Extra:   map[string]any{"ai": a.Assistant != nil},
	}).RegisterRoutes(api, middleware.RequireScope(a.Signer, jwt.ScopeAdmin))

	site := feed.Site{
		Title:       cfg.Site.Title,
		Description: cfg.Site.Description,
		URL:         cfg.Site.URL,
		FeedURL:     cfg.Site.URL + "/rss.xml",
		NotePath:    cfg.Notion.Notes.PagePath,
	}
	feeds := r.Group("", middleware.HTTPCache(a.Store, middleware.HTTPCacheOptions{
		TTL:     cfg.Cache.HTTPTTL,
		Disable: cfg.Cache.Disabled,
	}))
	feed.RegisterRoutes(feeds, a.Notes, site, a.logger)
	sitemap.RegisterRoutes(feeds, cfg.Site.URL, a.sitemapSections(), a.logger)

	doc := render.DocumentOptions{SiteTitle: cfg.Site.Title, Footer: footer(cfg.Site.Owner, a.started)}
	render.NewHandler(a.Notes, doc, a.logger).RegisterRoutes(r, cfg.Notion.Notes.PagePath)
	render.NewHandler(a.Develop, doc, a.logger).RegisterRoutes(r, cfg.Notion.Develop.PagePath)
}
