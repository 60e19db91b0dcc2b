// Package links serves the "about" links collection.
package links

import (
	"context"
	"errors"

	"github.com/anish3d/folio/internal/models"
	"github.com/anish3d/folio/internal/modules/content/cache"
	"github.com/anish3d/folio/internal/pkg/notion"
	"github.com/anish3d/folio/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// ErrNotConfigured is returned when no links database is set.
var ErrNotConfigured = errors.New("links database is not configured")

// Querier lists every record of a database.
type Querier interface {
	QueryDatabase(ctx context.Context, databaseID string) ([]notion.Page, error)
}

type Service struct {
	client     Querier
	databaseID string
	cache      *cache.Cache
}

func NewService(client Querier, databaseID string, c *cache.Cache) *Service {
	return &Service{client: client, databaseID: databaseID, cache: c}
}

// CachePrefix is the prefix of every cache key the service writes.
func (s *Service) CachePrefix() string { return "links:" }

// List returns every link in database order.
func (s *Service) List(ctx context.Context) ([]models.Link, error) {
	if s.databaseID == "" {
		return nil, ErrNotConfigured
	}
	return cache.Load(ctx, s.cache, s.CachePrefix()+"list", func(ctx context.Context) ([]models.Link, error) {
		pages, err := s.client.QueryDatabase(ctx, s.databaseID)
		if err != nil {
			return nil, err
		}
		out := make([]models.Link, 0, len(pages))
		for _, p := range pages {
			out = append(out, MapLink(p))
		}
		return out, nil
	})
}

// MapLink converts a record of the links database. Missing properties map
// to empty strings.
func MapLink(page notion.Page) models.Link {
	props := page.Properties
	l := models.Link{}
	if p, ok := props["Name"]; ok {
		l.Name = models.PlainText(p.Title)
	}
	if p, ok := props["Direct Link"]; ok && p.URL != nil {
		l.DirectLink = *p.URL
	}
	if p, ok := props["Link Type"]; ok && p.Select != nil {
		l.LinkType = p.Select.Name
	}
	return l
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notion", h.list)
}

// GET /notion
func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if errors.Is(err, ErrNotConfigured) {
		response.BadRequest(c, "Database ID is required")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, items)
}
