package models

import "time"

// Note is a published entry mapped from one record of a Notion collection.
type Note struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	LastEditedAt time.Time `json:"lastEditedAt"`
	CoverImage   *string   `json:"coverImage"`
	Tags         []string  `json:"tags"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Slug         string    `json:"slug"`
	IsPublished  bool      `json:"isPublished"`
	PublishedAt  string    `json:"publishedAt"` // date or datetime exactly as stored in Notion; "" when unset
	InProgress   bool      `json:"inProgress"`
	IsProd       bool      `json:"isProd"`
	Category     string    `json:"category,omitempty"`
	ReadingTime  string    `json:"readingTime,omitempty"`
	Featured     bool      `json:"featured"`
}

// PublishedTime parses PublishedAt. Unset or malformed values yield the zero time.
func (n Note) PublishedTime() time.Time {
	if n.PublishedAt == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000-07:00", "2006-01-02"} {
		if t, err := time.Parse(layout, n.PublishedAt); err == nil {
			return t
		}
	}
	return time.Time{}
}

// HasTag reports whether tag is one of the note's hashtags.
func (n Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// NoteContent is a note together with its resolved block tree.
type NoteContent struct {
	Note   Note    `json:"note"`
	Blocks []Block `json:"blocks"`
}

// Link is one row of the "about" links collection.
type Link struct {
	Name       string `json:"name"`
	DirectLink string `json:"directLink"`
	LinkType   string `json:"linkType"`
}
