package notes

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/anish3d/folio/internal/models"
	"github.com/anish3d/folio/internal/modules/content/cache"
	"go.uber.org/zap"
)

// Service serves the notes of one collection.
type Service struct {
	client Querier
	pages  PageSource
	cache  *cache.Cache
	coll   Collection
	env    Environment
	logger *zap.Logger
}

// NewService wires a collection to its data sources. c may be nil to
// disable caching.
func NewService(client Querier, pages PageSource, c *cache.Cache, coll Collection, env Environment, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if coll.DefaultReadingTime == "" {
		coll.DefaultReadingTime = DefaultReadingTime
	}
	return &Service{
		client: client,
		pages:  pages,
		cache:  c,
		coll:   coll,
		env:    env,
		logger: logger.Named(coll.Name),
	}
}

// Collection returns the collection the service reads.
func (s *Service) Collection() Collection { return s.coll }

// CachePrefix is the prefix of every cache key the service writes.
func (s *Service) CachePrefix() string { return s.coll.Name + ":" }

// Records returns every record of the collection mapped to notes, in query
// order and before any visibility filtering.
func (s *Service) Records(ctx context.Context) ([]models.Note, error) {
	pages, err := s.client.QueryDatabase(ctx, s.coll.DatabaseID)
	if err != nil {
		return nil, err
	}
	opts := MapOptions{DefaultCategory: s.coll.DefaultCategory, DefaultReadingTime: s.coll.DefaultReadingTime}
	out := make([]models.Note, 0, len(pages))
	for _, p := range pages {
		n, err := MapPage(p, opts)
		if err != nil {
			return nil, fmt.Errorf("%s collection: %w", s.coll.Name, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// visible returns the published notes of the collection, cached.
func (s *Service) visible(ctx context.Context) ([]models.Note, error) {
	notes, err := cache.Load(ctx, s.cache, s.CachePrefix()+"list", func(ctx context.Context) ([]models.Note, error) {
		records, err := s.Records(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]models.Note, 0, len(records))
		for _, n := range records {
			if s.env.Visible(n) {
				out = append(out, n)
			}
		}
		s.logger.Debug("collection loaded", zap.Int("records", len(records)), zap.Int("visible", len(out)))
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	// Loaded slices may be shared with concurrent callers.
	return slices.Clone(notes), nil
}

// List returns visible notes sorted by publish date. Tag and category
// filters apply before the limit.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]models.Note, error) {
	all, err := s.visible(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, n := range all {
		if opts.Tag != "" && !n.HasTag(opts.Tag) {
			continue
		}
		if opts.Category != "" && n.Category != opts.Category {
			continue
		}
		out = append(out, n)
	}
	SortByPublished(out, opts.Order)
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// ByTag returns the visible notes carrying tag.
func (s *Service) ByTag(ctx context.Context, tag string, order Order, limit int) ([]models.Note, error) {
	return s.List(ctx, ListOptions{Tag: tag, Order: order, Limit: limit})
}

// ByCategory returns the visible notes of category.
func (s *Service) ByCategory(ctx context.Context, category string, order Order, limit int) ([]models.Note, error) {
	return s.List(ctx, ListOptions{Category: category, Order: order, Limit: limit})
}

// Featured returns the newest featured notes, DefaultFeaturedLimit when
// limit <= 0.
func (s *Service) Featured(ctx context.Context, limit int) ([]models.Note, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	all, err := s.List(ctx, ListOptions{Order: OrderDesc})
	if err != nil {
		return nil, err
	}
	out := make([]models.Note, 0, limit)
	for _, n := range all {
		if n.Featured {
			out = append(out, n)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// Tags returns the distinct tags of visible notes, newest note first.
func (s *Service) Tags(ctx context.Context) ([]string, error) {
	all, err := s.List(ctx, ListOptions{Order: OrderDesc})
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	out := []string{}
	for _, n := range all {
		for _, t := range n.Tags {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				out = append(out, t)
			}
		}
	}
	return out, nil
}

// Categories returns the distinct categories of visible notes.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	all, err := s.List(ctx, ListOptions{Order: OrderDesc})
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	out := []string{}
	for _, n := range all {
		if n.Category == "" {
			continue
		}
		if _, ok := seen[n.Category]; !ok {
			seen[n.Category] = struct{}{}
			out = append(out, n.Category)
		}
	}
	return out, nil
}

// BySlug returns the visible note with slug, or ErrNotFound.
func (s *Service) BySlug(ctx context.Context, slug string) (models.Note, error) {
	all, err := s.visible(ctx)
	if err != nil {
		return models.Note{}, err
	}
	for _, n := range all {
		if n.Slug == slug {
			return n, nil
		}
	}
	return models.Note{}, ErrNotFound
}

// Content returns the note with slug and its block tree.
func (s *Service) Content(ctx context.Context, slug string) (*models.NoteContent, error) {
	note, err := s.BySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	blocks, err := cache.Load(ctx, s.cache, s.CachePrefix()+"page:"+note.ID, func(ctx context.Context) ([]models.Block, error) {
		return s.pages.Page(ctx, note.ID)
	})
	if err != nil {
		return nil, err
	}
	return &models.NoteContent{Note: note, Blocks: blocks}, nil
}

// Warm loads the listing and every page so the next visitor hits the cache.
func (s *Service) Warm(ctx context.Context) error {
	all, err := s.visible(ctx)
	if err != nil {
		return err
	}
	for _, n := range all {
		if n.Slug == "" {
			continue
		}
		if _, err := s.Content(ctx, n.Slug); err != nil {
			return fmt.Errorf("warm %s: %w", n.Slug, err)
		}
	}
	return nil
}

// SortByPublished sorts notes in place by publish date. Notes with equal
// dates keep their relative order.
func SortByPublished(notes []models.Note, order Order) {
	sort.SliceStable(notes, func(i, j int) bool {
		a, b := notes[i].PublishedTime(), notes[j].PublishedTime()
		if order == OrderAsc {
			return a.Before(b)
		}
		return a.After(b)
	})
}
