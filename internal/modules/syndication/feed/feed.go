package feed

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

const cacheControl = "public, s-maxage=1200, stale-while-revalidate=600"

// Site describes the channel.
type Site struct {
	Title       string
	Description string
	URL         string
	FeedURL     string
	// NotePath is the URL path notes are published under, "/notes" by default.
	NotePath string
}

// Lister returns the notes to publish, newest first.
type Lister interface {
	List(ctx context.Context, opts notes.ListOptions) ([]models.Note, error)
}

// RegisterRoutes mounts RSS and Atom feed endpoints.
func RegisterRoutes(rg gin.IRoutes, src Lister, site Site, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rss := func(c *gin.Context) { renderFeed(c, src, site, "rss", logger) }
	rg.GET("/rss.xml", rss)
	rg.GET("/api/rss.xml", rss)
	rg.GET("/feed.xml", rss)
	rg.GET("/atom.xml", func(c *gin.Context) { renderFeed(c, src, site, "atom", logger) })
	rg.GET("/feed", func(c *gin.Context) {
		renderFeed(c, src, site, c.DefaultQuery("type", "rss"), logger)
	})
}

// Item is one feed entry.
type Item struct {
	Title   string
	Link    string
	GUID    string
	PubDate time.Time
	Content string
}

func renderFeed(c *gin.Context, src Lister, site Site, feedType string, logger *zap.Logger) {
	list, err := src.List(c.Request.Context(), notes.ListOptions{Order: notes.OrderDesc})
	if err != nil {
		logger.Error("build feed", zap.Error(err))
		c.String(500, "failed to build feed")
		return
	}

	items := Items(list, site)
	c.Header("Cache-Control", cacheControl)
	switch feedType {
	case "atom":
		c.Header("Content-Type", "application/atom+xml; charset=utf-8")
		c.String(200, BuildAtom(site, items, time.Now()))
	default:
		c.Header("Content-Type", "text/xml; charset=utf-8")
		c.String(200, BuildRSS(site, items, time.Now()))
	}
}

// Items turns notes into feed entries linking to the site.
func Items(list []models.Note, site Site) []Item {
	base := strings.TrimRight(site.URL, "/")
	notePath := "/" + strings.Trim(site.NotePath, "/")
	if notePath == "/" {
		notePath = "/notes"
	}
	items := make([]Item, 0, len(list))
	for _, n := range list {
		link := base + notePath + "/" + url.PathEscape(n.Slug)
		pub := n.PublishedTime()
		if pub.IsZero() {
			pub = n.CreatedAt
		}
		items = append(items, Item{
			Title:   n.Title,
			Link:    link,
			GUID:    link,
			PubDate: pub,
			Content: n.Description,
		})
	}
	return items
}

// BuildRSS renders an RSS 2.0 document.
func BuildRSS(site Site, items []Item, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">
  <channel>
    <title>%s</title>
    <link>%s</link>
    <description>%s</description>
    <atom:link href="%s" rel="self" type="application/rss+xml"/>
    <lastBuildDate>%s</lastBuildDate>
`, escapeXML(site.Title), escapeXML(site.URL), escapeXML(orDefault(site.Description, site.Title)),
		escapeXML(site.FeedURL), now.Format(time.RFC1123Z))

	for _, item := range items {
		fmt.Fprintf(&b, `    <item>
      <title>%s</title>
      <link>%s</link>
      <guid isPermaLink="true">%s</guid>
      <pubDate>%s</pubDate>
      <description>%s</description>
    </item>
`, escapeXML(item.Title), escapeXML(item.Link), escapeXML(item.GUID),
			item.PubDate.Format(time.RFC1123Z), cdata(item.Content))
	}

	b.WriteString(`  </channel>
</rss>`)
	return b.String()
}

// BuildAtom renders an Atom 1.0 document.
func BuildAtom(site Site, items []Item, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>%s</title>
  <subtitle>%s</subtitle>
  <link href="%s"/>
  <link href="%s" rel="self"/>
  <updated>%s</updated>
  <id>%s</id>
`, escapeXML(site.Title), escapeXML(site.Description), escapeXML(site.URL), escapeXML(site.FeedURL),
		now.Format(time.RFC3339), escapeXML(site.URL))

	for _, item := range items {
		fmt.Fprintf(&b, `  <entry>
    <title>%s</title>
    <link href="%s"/>
    <id>%s</id>
    <updated>%s</updated>
    <summary type="html">%s</summary>
  </entry>
`, escapeXML(item.Title), escapeXML(item.Link), escapeXML(item.GUID),
			item.PubDate.Format(time.RFC3339), cdata(item.Content))
	}

	b.WriteString(`</feed>`)
	return b.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// cdata wraps s in a CDATA section, splitting any "]]>" it contains.
func cdata(s string) string {
	return "<![CDATA[" + strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>") + "]]>"
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// escapeXML replaces XML special characters in attribute/element content.
func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
