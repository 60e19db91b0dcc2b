package notes

import (
	"context"
	"errors"
	"strings"

	"github.com/anish3d/folio/internal/models"
	"github.com/anish3d/folio/internal/pkg/notion"
)

// ErrNotFound is returned when no visible note has the requested slug.
var ErrNotFound = errors.New("note not found")

// DefaultFeaturedLimit is the number of featured notes returned by default.
const DefaultFeaturedLimit = 3

// Order is the publish date sort direction.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// ParseOrder accepts "asc" and "desc"; anything else is OrderDesc.
func ParseOrder(s string) Order {
	if strings.EqualFold(strings.TrimSpace(s), string(OrderAsc)) {
		return OrderAsc
	}
	return OrderDesc
}

// ListOptions narrows a listing. Zero Limit means no limit.
type ListOptions struct {
	Order    Order
	Limit    int
	Tag      string
	Category string
}

// Querier lists every record of a database.
type Querier interface {
	QueryDatabase(ctx context.Context, databaseID string) ([]notion.Page, error)
}

// PageSource returns the render-ready block tree of a page.
type PageSource interface {
	Page(ctx context.Context, pageID string) ([]models.Block, error)
}

// Collection describes one Notion database of notes.
type Collection struct {
	// Name namespaces cache keys and log lines, e.g. "notes" or "develop".
	Name               string
	DatabaseID         string
	DefaultCategory    string
	DefaultReadingTime string
}

// Environment decides which published notes are visible.
type Environment string

// Deployed environments only show notes flagged isProd.
func (e Environment) Deployed() bool {
	switch strings.ToLower(strings.TrimSpace(string(e))) {
	case "production", "preview":
		return true
	}
	return false
}

// Visible reports whether n is listed in env.
func (e Environment) Visible(n models.Note) bool {
	return n.IsPublished && (!e.Deployed() || n.IsProd)
}
