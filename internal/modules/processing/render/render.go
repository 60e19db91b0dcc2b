// Package render turns a note's block tree into an HTML document.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/anish3d/folio/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.Table,
		extension.Strikethrough,
		extension.TaskList,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithUnsafe(),
		htmlrenderer.WithXHTML(),
	),
)

// HTML renders blocks as an HTML fragment.
func HTML(blocks []models.Block) (string, error) {
	var out bytes.Buffer
	if err := markdownEngine.Convert([]byte(Markdown(blocks)), &out); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out.String(), nil
}

type DocumentOptions struct {
	SiteTitle string
	// Footer is trusted HTML appended after the article.
	Footer string
}

var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="UTF-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1.0" />
    <meta name="referrer" content="no-referrer" />
    {{- if .Description}}
    <meta name="description" content="{{.Description}}" />
    {{- end}}
    <title>{{.Title}}</title>
    <style>{{.Style}}</style>
  </head>
  <body class="notion-body">
    <article>
      <header>
        {{- if .Cover}}
        <img class="notion-cover" src="{{.Cover}}" alt="" />
        {{- end}}
        <h1>{{.Heading}}</h1>
        {{- if .Info}}
        <p class="notion-meta">{{.Info}}</p>
        {{- end}}
      </header>
      {{.Body}}
    </article>
    {{- if .Footer}}
    <footer>{{.Footer}}</footer>
    {{- end}}
  </body>
</html>
`))

type documentData struct {
	Title       string
	Heading     string
	Description string
	Cover       string
	Info        string
	Style       template.CSS
	Body        template.HTML
	Footer      template.HTML
}

// Document renders a complete page for a note and its blocks.
func Document(content *models.NoteContent, opts DocumentOptions) (string, error) {
	body, err := HTML(content.Blocks)
	if err != nil {
		return "", err
	}

	note := content.Note
	title := note.Title
	if opts.SiteTitle != "" {
		title = strings.TrimSpace(note.Title + " | " + opts.SiteTitle)
	}
	data := documentData{
		Title:       title,
		Heading:     note.Title,
		Description: note.Description,
		Info:        info(note),
		Style:       template.CSS(baseStyle),
		Body:        template.HTML(body),
		Footer:      template.HTML(opts.Footer),
	}
	if note.CoverImage != nil {
		data.Cover = *note.CoverImage
	}

	var out bytes.Buffer
	if err := documentTemplate.Execute(&out, data); err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}
	return out.String(), nil
}

func info(n models.Note) string {
	var parts []string
	if t := n.PublishedTime(); !t.IsZero() {
		parts = append(parts, t.Format("January 2, 2006"))
	}
	if n.ReadingTime != "" {
		parts = append(parts, n.ReadingTime)
	}
	for _, tag := range n.Tags {
		parts = append(parts, "#"+tag)
	}
	return strings.Join(parts, " · ")
}

const baseStyle = `
body { margin: 0 auto; max-width: 720px; padding: 2rem 1rem; font: 16px/1.7 system-ui, sans-serif; color: #27272a; }
img { max-width: 100%; height: auto; }
pre { overflow-x: auto; padding: 1rem; background: #f4f4f5; border-radius: 6px; }
blockquote { margin: 1rem 0; padding-left: 1rem; border-left: 3px solid #d4d4d8; color: #52525b; }
figure { margin: 1.5rem 0; }
figcaption, .notion-caption, .notion-meta { color: #71717a; font-size: 0.875rem; }
.notion-cover { width: 100%; border-radius: 8px; }
.notion-callout { display: flex; gap: 1rem; padding: 1rem; margin: 1rem 0; background: #f4f4f5; border-radius: 6px; }
.notion-callout-icon { font-size: 1.5rem; }
.notion-callout-body { flex: 1; }
.notion-columns { display: flex; flex-wrap: wrap; gap: 1rem; }
.notion-column { flex: 1; min-width: 200px; }
.notion-empty { color: #a1a1aa; font-size: 0.875rem; }
.notion-bookmark { margin: 1rem 0; padding: 1rem; border: 1px solid #e4e4e7; border-radius: 6px; overflow: hidden; text-overflow: ellipsis; white-space: nowrap; }
.notion-unsupported { color: #b91c1c; }
li > input[type="checkbox"] { margin-right: 0.5rem; }
`
