package notion

import (
	"time"

	"github.com/anish3d/folio/internal/models"
)

// Page is a database record as returned by the query endpoint. Partial pages
// carry only Object and ID.
type Page struct {
	Object         string              `json:"object"`
	ID             string              `json:"id"`
	CreatedTime    *time.Time          `json:"created_time,omitempty"`
	LastEditedTime *time.Time          `json:"last_edited_time,omitempty"`
	Archived       bool                `json:"archived,omitempty"`
	Cover          *models.FileObject  `json:"cover,omitempty"`
	Properties     map[string]Property `json:"properties,omitempty"`
	URL            string              `json:"url,omitempty"`
}

// IsFull reports whether the page carries its timestamps and properties.
func (p Page) IsFull() bool {
	return p.Object == "page" && p.CreatedTime != nil && p.Properties != nil
}

// Property is one value in a page's property bag. Only the field named by
// Type is meaningful.
type Property struct {
	ID          string              `json:"id,omitempty"`
	Type        string              `json:"type"`
	Title       []models.RichText   `json:"title,omitempty"`
	RichText    []models.RichText   `json:"rich_text,omitempty"`
	MultiSelect []SelectOption      `json:"multi_select,omitempty"`
	Select      *SelectOption       `json:"select,omitempty"`
	Checkbox    *bool               `json:"checkbox,omitempty"`
	Date        *DateValue          `json:"date,omitempty"`
	Files       []models.FileObject `json:"files,omitempty"`
	URL         *string             `json:"url,omitempty"`
}

// SelectOption is an option of a select or multi_select property.
type SelectOption struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// DateValue is the value of a date property.
type DateValue struct {
	Start string  `json:"start"`
	End   *string `json:"end,omitempty"`
}

type listResponse[T any] struct {
	Object     string  `json:"object"`
	Results    []T     `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

type queryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}
