package render

import (
	"html"
	"strings"

	"github.com/anish3d/folio/internal/models"
)

// inlineMarkdown renders spans for a Markdown context: text is
// backslash-escaped so it is never read as markup.
func inlineMarkdown(spans []models.RichText) string {
	return inline(spans, true)
}

// inlineHTML renders spans for a raw HTML context.
func inlineHTML(spans []models.RichText) string {
	return inline(spans, false)
}

func inline(spans []models.RichText, md bool) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(span(s, md))
	}
	return b.String()
}

func span(s models.RichText, md bool) string {
	text := s.PlainText
	core := strings.TrimSpace(text)
	if core == "" {
		return escapeText(text, md)
	}
	start := strings.Index(text, core)
	lead, trail := text[:start], text[start+len(core):]

	a := s.Annotations
	var out string
	switch {
	case a.Code && md:
		out = codeSpan(core)
	case a.Code:
		out = "<code>" + html.EscapeString(core) + "</code>"
	default:
		out = escapeText(core, md)
	}
	if a.Bold {
		out = "<strong>" + out + "</strong>"
	}
	if a.Italic {
		out = "<em>" + out + "</em>"
	}
	if a.Strikethrough {
		out = "<s>" + out + "</s>"
	}
	if a.Underline {
		out = "<u>" + out + "</u>"
	}
	if a.HasColor() {
		out = `<span class="notion-` + attr(a.Color) + `">` + out + "</span>"
	}
	if s.Href != "" {
		out = `<a href="` + attr(s.Href) + `">` + out + "</a>"
	}
	return escapeText(lead, md) + out + escapeText(trail, md)
}

func codeSpan(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	fence := strings.Repeat("`", longestRun(text, '`')+1)
	if strings.HasPrefix(text, "`") || strings.HasSuffix(text, "`") {
		text = " " + text + " "
	}
	return fence + text + fence
}

func escapeText(s string, md bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n':
			b.WriteString("<br />")
		case md && isASCIIPunct(r):
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '&':
			b.WriteString("&amp;")
		case r == '<':
			b.WriteString("&lt;")
		case r == '>':
			b.WriteString("&gt;")
		case r == '"':
			b.WriteString("&#34;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isASCIIPunct(r rune) bool {
	return (r >= '!' && r <= '/') || (r >= ':' && r <= '@') || (r >= '[' && r <= '`') || (r >= '{' && r <= '~')
}
