package models

import "strings"

// RichText is one styled run of text. The JSON layout matches the Notion API,
// so spans decode straight from service responses.
type RichText struct {
	PlainText   string      `json:"plain_text"`
	Href        string      `json:"href,omitempty"`
	Annotations Annotations `json:"annotations"`
}

// Annotations are the fixed style flags of a span.
type Annotations struct {
	Bold          bool   `json:"bold"`
	Italic        bool   `json:"italic"`
	Strikethrough bool   `json:"strikethrough"`
	Underline     bool   `json:"underline"`
	Code          bool   `json:"code"`
	Color         string `json:"color"`
}

// HasColor reports whether the span carries a non-default color.
func (a Annotations) HasColor() bool {
	return a.Color != "" && a.Color != "default"
}

// PlainText concatenates the visible text of spans.
func PlainText(spans []RichText) string {
	if len(spans) == 0 {
		return ""
	}
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.PlainText)
	}
	return b.String()
}
