package notes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anish3d/folio/internal/models"
	"github.com/anish3d/folio/internal/pkg/notion"
)

// DefaultReadingTime is used for records without a readingTime property.
const DefaultReadingTime = "5 min read"

// ErrPartialPage is returned for records the API did not return in full.
var ErrPartialPage = errors.New("notion page is not a full page")

// Property names of a notes database.
const (
	propTitle       = "title"
	propDescription = "description"
	propSlug        = "slug"
	propTags        = "hashtags"
	propPublished   = "published"
	propPublishedAt = "publishedAt"
	propInProgress  = "inProgress"
	propIsProd      = "isProd"
	propCategory    = "category"
	propReadingTime = "readingTime"
	propFeatured    = "featured"
	propCover       = "cover"
)

// MapOptions carries the per-collection defaults.
type MapOptions struct {
	DefaultCategory    string
	DefaultReadingTime string
}

// MapPage converts a database record into a Note. Absent or mistyped
// properties fall back to their defaults; only a partial record is an error.
func MapPage(page notion.Page, opts MapOptions) (models.Note, error) {
	if !page.IsFull() {
		return models.Note{}, fmt.Errorf("%w: %s", ErrPartialPage, page.ID)
	}
	if opts.DefaultReadingTime == "" {
		opts.DefaultReadingTime = DefaultReadingTime
	}
	props := page.Properties

	n := models.Note{
		ID:          page.ID,
		CreatedAt:   *page.CreatedTime,
		CoverImage:  coverImage(page),
		Tags:        multiSelect(props, propTags),
		Title:       title(props, propTitle),
		Description: richText(props, propDescription),
		Slug:        strings.TrimSpace(richText(props, propSlug)),
		IsPublished: checkbox(props, propPublished),
		PublishedAt: dateStart(props, propPublishedAt),
		InProgress:  checkbox(props, propInProgress),
		IsProd:      checkbox(props, propIsProd),
		Category:    selectName(props, propCategory),
		ReadingTime: richText(props, propReadingTime),
		Featured:    checkbox(props, propFeatured),
	}
	if page.LastEditedTime != nil {
		n.LastEditedAt = *page.LastEditedTime
	}
	if n.Category == "" {
		n.Category = opts.DefaultCategory
	}
	if n.ReadingTime == "" {
		n.ReadingTime = opts.DefaultReadingTime
	}
	return n, nil
}

func coverImage(page notion.Page) *string {
	if page.Cover != nil {
		if u := page.Cover.URL(); u != "" {
			return &u
		}
	}
	if p, ok := page.Properties[propCover]; ok {
		for _, f := range p.Files {
			if u := f.URL(); u != "" {
				return &u
			}
		}
	}
	return nil
}

func title(props map[string]notion.Property, name string) string {
	p, ok := props[name]
	if !ok {
		return ""
	}
	return models.PlainText(p.Title)
}

func richText(props map[string]notion.Property, name string) string {
	p, ok := props[name]
	if !ok {
		return ""
	}
	return models.PlainText(p.RichText)
}

func multiSelect(props map[string]notion.Property, name string) []string {
	out := []string{}
	p, ok := props[name]
	if !ok {
		return out
	}
	for _, opt := range p.MultiSelect {
		out = append(out, opt.Name)
	}
	return out
}

func checkbox(props map[string]notion.Property, name string) bool {
	p, ok := props[name]
	return ok && p.Checkbox != nil && *p.Checkbox
}

func dateStart(props map[string]notion.Property, name string) string {
	p, ok := props[name]
	if !ok || p.Date == nil {
		return ""
	}
	return p.Date.Start
}

func selectName(props map[string]notion.Property, name string) string {
	p, ok := props[name]
	if !ok || p.Select == nil {
		return ""
	}
	return p.Select.Name
}
