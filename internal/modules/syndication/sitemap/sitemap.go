package sitemap

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/anish3d/folio/internal/models"
	"github.com/anish3d/folio/internal/modules/content/notes"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Lister returns the notes of one collection.
type Lister interface {
	List(ctx context.Context, opts notes.ListOptions) ([]models.Note, error)
}

// Section is a collection published under PagePath.
type Section struct {
	Lister     Lister
	PagePath   string
	ChangeFreq string
	Priority   float64
}

type sitemapURL struct {
	Loc        string
	LastMod    time.Time
	ChangeFreq string
	Priority   float64
}

// RegisterRoutes mounts /sitemap.xml listing the home page and every visible
// note of each section.
func RegisterRoutes(rg gin.IRoutes, baseURL string, sections []Section, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	render := func(c *gin.Context) {
		xml, err := Build(c.Request.Context(), baseURL, sections, time.Now())
		if err != nil {
			logger.Error("build sitemap", zap.Error(err))
			c.String(500, "error generating sitemap")
			return
		}
		c.Header("Content-Type", "application/xml; charset=utf-8")
		c.String(200, xml)
	}
	rg.GET("/sitemap.xml", render)
	rg.GET("/sitemap", render)
}

// Build renders the sitemap document.
func Build(ctx context.Context, baseURL string, sections []Section, now time.Time) (string, error) {
	base := strings.TrimRight(baseURL, "/")
	urls := []sitemapURL{{Loc: base + "/", LastMod: now, ChangeFreq: "daily", Priority: 1.0}}

	for _, s := range sections {
		list, err := s.Lister.List(ctx, notes.ListOptions{Order: notes.OrderDesc})
		if err != nil {
			return "", err
		}
		prefix := base + "/" + strings.Trim(s.PagePath, "/")
		for _, n := range list {
			if n.Slug == "" {
				continue
			}
			mod := n.LastEditedAt
			if mod.IsZero() {
				mod = n.PublishedTime()
			}
			urls = append(urls, sitemapURL{
				Loc:        prefix + "/" + url.PathEscape(n.Slug),
				LastMod:    mod,
				ChangeFreq: orDefault(s.ChangeFreq, "monthly"),
				Priority:   s.Priority,
			})
		}
	}
	return renderXML(urls), nil
}

func renderXML(urls []sitemapURL) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
`)
	for _, u := range urls {
		b.WriteString("  <url>\n")
		fmt.Fprintf(&b, "    <loc>%s</loc>\n", escapeXML(u.Loc))
		if !u.LastMod.IsZero() {
			fmt.Fprintf(&b, "    <lastmod>%s</lastmod>\n", u.LastMod.Format("2006-01-02"))
		}
		fmt.Fprintf(&b, "    <changefreq>%s</changefreq>\n", u.ChangeFreq)
		if u.Priority > 0 {
			fmt.Fprintf(&b, "    <priority>%.1f</priority>\n", u.Priority)
		}
		b.WriteString("  </url>\n")
	}
	b.WriteString(`</urlset>`)
	return b.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
