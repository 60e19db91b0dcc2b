// Package views proxies page view counts from GoatCounter.
package views

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/anish3d/folio/internal/modules/content/cache"
	"github.com/anish3d/folio/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// DefaultSiteCode is the GoatCounter site queried when none is configured.
	DefaultSiteCode = "anish3d"
	// CachePrefix namespaces cached counts.
	CachePrefix = "views:"
)

// Client reads counts from the GoatCounter API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient targets https://<siteCode>.goatcounter.com. baseURL, when set,
// replaces that host.
func NewClient(siteCode, apiKey, baseURL string) *Client {
	if siteCode == "" {
		siteCode = DefaultSiteCode
	}
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.goatcounter.com", siteCode)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type countItem struct {
	Count int64  `json:"count"`
	Path  string `json:"path,omitempty"`
}

// Count returns the total views recorded for path. An array answer is
// summed; an object answer contributes its count.
func (c *Client) Count(ctx context.Context, path string) (int64, error) {
	target := c.baseURL + "/api/v0/count?" + url.Values{"path": {path}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("goatcounter: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("goatcounter: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("goatcounter: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return parseCount(data)
}

func parseCount(data []byte) (int64, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var items []countItem
		if err := json.Unmarshal(data, &items); err != nil {
			return 0, fmt.Errorf("goatcounter: decode: %w", err)
		}
		var total int64
		for _, it := range items {
			total += it.Count
		}
		return total, nil
	}
	var one countItem
	if err := json.Unmarshal(data, &one); err != nil {
		return 0, fmt.Errorf("goatcounter: decode: %w", err)
	}
	return one.Count, nil
}

// FormatViews renders a count for display: "1 View", "950 Views",
// "1.2K Views", "3M Views".
func FormatViews(count int64) string {
	switch {
	case count <= 0:
		return "0 Views"
	case count == 1:
		return "1 View"
	case count < 1000:
		return strconv.FormatInt(count, 10) + " Views"
	case count < 1000000:
		return compact(float64(count)/1000) + "K Views"
	default:
		return compact(float64(count)/1000000) + "M Views"
	}
}

func compact(v float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(v, 'f', 1, 64), ".0")
}

// Counter is what the handler needs from Client.
type Counter interface {
	Count(ctx context.Context, path string) (int64, error)
}

type Handler struct {
	counter Counter
	cache   *cache.Cache
	logger  *zap.Logger
}

func NewHandler(counter Counter, c *cache.Cache, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{counter: counter, cache: c, logger: logger.Named("views")}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/goatcounter-views", h.get)
}

// GET /goatcounter-views?path=/develop/my-post
func (h *Handler) get(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		response.BadRequest(c, "Missing or invalid path parameter")
		return
	}
	n, err := cache.Load(c.Request.Context(), h.cache, CachePrefix+path, func(ctx context.Context) (int64, error) {
		return h.counter.Count(ctx, path)
	})
	if err != nil {
		h.logger.Warn("fetch views failed", zap.String("path", path), zap.Error(err))
		response.BadGateway(c, "Failed to fetch GoatCounter data")
		return
	}
	response.OK(c, gin.H{"views": n, "label": FormatViews(n)})
}
