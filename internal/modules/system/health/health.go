// Package health exposes liveness plus admin views of background jobs and
// the native log files.
package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/anish3d/folio/internal/pkg/cron"
	"github.com/anish3d/folio/internal/pkg/nativelog"
	"github.com/anish3d/folio/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type logItem struct {
	Size     string `json:"size"`
	Filename string `json:"filename"`
	Created  int64  `json:"created"`
}

// Options configures the handler. Redis may be nil when no Redis is used.
type Options struct {
	Env     string
	Started time.Time
	Redis   Pinger
	Sched   *cron.Scheduler
	LogDir  string
	Extra   map[string]any
}

type Handler struct {
	opts Options
}

func NewHandler(opts Options) *Handler {
	if opts.Started.IsZero() {
		opts.Started = time.Now()
	}
	if opts.LogDir == "" {
		opts.LogDir = nativelog.ResolveDir()
	}
	return &Handler{opts: opts}
}

// RegisterRoutes mounts GET /health publicly and the cron and log views
// behind authMW.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/health", h.status)

	admin := rg.Group("/health", authMW)
	admin.GET("/cron", h.cronList)
	admin.POST("/cron/run/:name", h.cronRun)
	admin.GET("/log/list", h.logList)
	admin.GET("/log", h.logRead)
}

// GET /health
func (h *Handler) status(c *gin.Context) {
	body := gin.H{
		"status": "ok",
		"env":    h.opts.Env,
		"uptime": int64(time.Since(h.opts.Started) / time.Second),
	}
	for k, v := range h.opts.Extra {
		body[k] = v
	}
	code := http.StatusOK
	if h.opts.Redis != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		ok := h.opts.Redis.Ping(ctx) == nil
		body["redis"] = ok
		if !ok {
			body["status"] = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	c.JSON(code, body)
}

// GET /health/cron
func (h *Handler) cronList(c *gin.Context) {
	items := h.opts.Sched.List()
	byName := make(map[string]cron.ListItem, len(items))
	for _, item := range items {
		byName[item.Name] = item
	}
	response.OK(c, byName)
}

// POST /health/cron/run/:name
func (h *Handler) cronRun(c *gin.Context) {
	if err := h.opts.Sched.Run(c.Request.Context(), c.Param("name")); err != nil {
		response.NotFoundMsg(c, err.Error())
		return
	}
	response.OK(c, gin.H{"message": "job triggered"})
}

// GET /health/log/list
func (h *Handler) logList(c *gin.Context) {
	entries, err := os.ReadDir(h.opts.LogDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			response.OK(c, []logItem{})
			return
		}
		response.InternalError(c, err)
		return
	}

	items := make([]logItem, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		items = append(items, logItem{
			Size:     formatByteSize(info.Size()),
			Filename: entry.Name(),
			Created:  info.ModTime().UnixMilli(),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Created > items[j].Created })
	response.OK(c, items)
}

// GET /health/log?filename= defaults to today's file.
func (h *Handler) logRead(c *gin.Context) {
	filename := strings.TrimSpace(c.Query("filename"))
	if filename == "" {
		filename = nativelog.TodayFilename(time.Now())
	}
	if filename != filepath.Base(filename) || !strings.HasSuffix(filename, ".log") {
		response.BadRequest(c, "invalid filename")
		return
	}
	data, err := os.ReadFile(filepath.Join(h.opts.LogDir, filename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			response.NotFoundMsg(c, "log file not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
}

func formatByteSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.2f KB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}
