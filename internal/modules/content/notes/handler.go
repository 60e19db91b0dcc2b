package notes

import (
	"errors"
	"strconv"

	"github.com/anish3d/folio/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the collection under rg at path, e.g. "/notes".
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, path string) {
	g := rg.Group(path)

	g.GET("", h.list)
	g.GET("/tags", h.tags)
	g.GET("/categories", h.categories)
	g.GET("/featured", h.featured)
	g.GET("/:slug", h.get)
}

// GET /notes?tag=&category=&limit=&order=
func (h *Handler) list(c *gin.Context) {
	opts := ListOptions{
		Order:    ParseOrder(c.DefaultQuery("order", string(OrderDesc))),
		Tag:      c.Query("tag"),
		Category: c.Query("category"),
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.BadRequest(c, "limit must be a non-negative integer")
			return
		}
		opts.Limit = n
	}

	items, err := h.svc.List(c.Request.Context(), opts)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"notes": items})
}

// GET /notes/tags
func (h *Handler) tags(c *gin.Context) {
	tags, err := h.svc.Tags(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"tags": tags})
}

// GET /notes/categories
func (h *Handler) categories(c *gin.Context) {
	cats, err := h.svc.Categories(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"categories": cats})
}

// GET /notes/featured?limit=
func (h *Handler) featured(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	items, err := h.svc.Featured(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"notes": items})
}

// GET /notes/:slug
func (h *Handler) get(c *gin.Context) {
	content, err := h.svc.Content(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c)
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, content)
}
