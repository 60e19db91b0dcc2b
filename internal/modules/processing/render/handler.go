package render

import (
	"context"
	"errors"
	"net/http"

	"github.com/anish3d/folio/internal/models"
	"github.com/anish3d/folio/internal/modules/content/notes"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const pageCacheControl = "public, s-maxage=10, stale-while-revalidate=86400"

// Source loads a note with its blocks by slug.
type Source interface {
	Content(ctx context.Context, slug string) (*models.NoteContent, error)
}

type Handler struct {
	src    Source
	opts   DocumentOptions
	logger *zap.Logger
}

func NewHandler(src Source, opts DocumentOptions, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{src: src, opts: opts, logger: logger.Named("render")}
}

// RegisterRoutes mounts GET <path>/:slug, e.g. "/notes".
func (h *Handler) RegisterRoutes(rg gin.IRoutes, path string) {
	rg.GET(path+"/:slug", h.page)
}

func (h *Handler) page(c *gin.Context) {
	slug := c.Param("slug")
	content, err := h.src.Content(c.Request.Context(), slug)
	if errors.Is(err, notes.ErrNotFound) {
		c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte("<!DOCTYPE html><title>Not Found</title><h1>404</h1>"))
		return
	}
	if err != nil {
		h.logger.Error("load page", zap.String("slug", slug), zap.Error(err))
		c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", []byte("<!DOCTYPE html><title>Error</title><h1>500</h1>"))
		return
	}

	doc, err := Document(content, h.opts)
	if err != nil {
		h.logger.Error("render page", zap.String("slug", slug), zap.Error(err))
		c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", []byte("<!DOCTYPE html><title>Error</title><h1>500</h1>"))
		return
	}
	c.Header("Cache-Control", pageCacheControl)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(doc))
}
