package render

import (
	"fmt"
	"html"
	"net/url"
	"path"
	"strings"

	"github.com/anish3d/folio/internal/models"
)

// Markdown converts a block tree to CommonMark. Constructs Markdown has no
// syntax for (figures, toggles, callouts, columns) are emitted as HTML
// blocks, and span styles as inline HTML.
func Markdown(blocks []models.Block) string {
	return strings.TrimSpace(markdownBlocks(blocks))
}

func markdownBlocks(blocks []models.Block) string {
	var (
		b    strings.Builder
		prev models.BlockType
		seq  int
	)
	for _, blk := range blocks {
		if blk.Type == models.BlockNumberedListItem && prev == blk.Type {
			seq++
		} else {
			seq = 1
		}

		out := markdownBlock(blk, seq)
		if out == "" {
			continue
		}
		if b.Len() > 0 {
			if tight(prev, blk.Type) {
				b.WriteString("\n")
			} else {
				b.WriteString("\n\n")
			}
		}
		b.WriteString(out)
		prev = blk.Type
	}
	return b.String()
}

// tight reports whether two consecutive blocks belong to the same Markdown
// list and must not be separated by a blank line.
func tight(prev, cur models.BlockType) bool {
	if prev != cur {
		return false
	}
	switch cur {
	case models.BlockBulletedListItem, models.BlockNumberedListItem, models.BlockToDo:
		return true
	}
	return false
}

func markdownBlock(blk models.Block, seq int) string {
	switch c := blk.Content.(type) {
	case *models.Paragraph:
		return inlineMarkdown(c.RichText)
	case *models.Heading:
		level := blk.HeadingLevel()
		if c.IsToggleable && len(blk.Children) > 0 {
			tag := fmt.Sprintf("h%d", level)
			return details("<"+tag+">"+inlineHTML(c.RichText)+"</"+tag+">", blk.Children)
		}
		return strings.Repeat("#", level) + " " + inlineMarkdown(c.RichText)
	case *models.List:
		return listMarkdown(blk)
	case *models.ListItem:
		marker := "-"
		if blk.Type == models.BlockNumberedListItem {
			marker = fmt.Sprintf("%d.", seq)
		}
		return listItem(marker, "", c.RichText, blk.Children)
	case *models.ToDo:
		box := "[ ] "
		if c.Checked {
			box = "[x] "
		}
		return listItem("*", box, c.RichText, blk.Children)
	case *models.Toggle:
		return details(inlineHTML(c.RichText), blk.Children)
	case *models.Quote:
		body := inlineMarkdown(c.RichText)
		if nested := markdownBlocks(blk.Children); nested != "" {
			body += "\n\n" + nested
		}
		return prefixLines(body, "> ", ">")
	case *models.Code:
		text := models.PlainText(c.RichText)
		fence := codeFence(text)
		return fence + codeLanguage(c.Language) + "\n" + text + "\n" + fence
	case *models.Image:
		return imageHTML(c)
	case *models.File:
		return fileHTML(c)
	case *models.Bookmark:
		return bookmarkHTML(c)
	case *models.Callout:
		return calloutHTML(c, blk.Children)
	case *models.ColumnList:
		return columnsHTML(blk.Children)
	case *models.Column:
		return columnHTML(blk.Children)
	case *models.Divider:
		return "---"
	case *models.ChildPage:
		return `<p class="notion-child-page">` + html.EscapeString(c.Title) + `</p>`
	case *models.Unsupported:
		kind := c.Kind
		if kind == "" || kind == string(models.BlockUnsupported) {
			kind = "unsupported by Notion API"
		}
		return `<div class="notion-unsupported">❌ Unsupported block (` + html.EscapeString(kind) + `)</div>`
	}
	return ""
}

func listMarkdown(wrapper models.Block) string {
	lines := make([]string, 0, len(wrapper.Children))
	n := 0
	for _, item := range wrapper.Children {
		li, ok := item.Content.(*models.ListItem)
		if !ok {
			if out := markdownBlock(item, 1); out != "" {
				lines = append(lines, out)
			}
			continue
		}
		n++
		marker := "-"
		if wrapper.Type == models.BlockNumberedList {
			marker = fmt.Sprintf("%d.", n)
		}
		lines = append(lines, listItem(marker, "", li.RichText, item.Children))
	}
	return strings.Join(lines, "\n")
}

func listItem(marker, prefix string, text []models.RichText, children []models.Block) string {
	head := strings.TrimRight(marker+" "+prefix+inlineMarkdown(text), " ")
	nested := markdownBlocks(children)
	if nested == "" {
		return head
	}
	return head + "\n" + indent(nested, len(marker)+1)
}

func details(summary string, children []models.Block) string {
	open := `<details class="notion-toggle">` + "\n<summary>" + summary + "</summary>"
	nested := markdownBlocks(children)
	if nested == "" {
		return open + "\n</details>"
	}
	return open + "\n\n" + nested + "\n\n</details>"
}

func imageHTML(img *models.Image) string {
	width, height := 400, 300
	if img.Size != nil && img.Size.Width > 0 && img.Size.Height > 0 {
		width, height = img.Size.Width, img.Size.Height
	}
	caption := models.PlainText(img.Caption)

	var b strings.Builder
	fmt.Fprintf(&b, `<figure class="notion-image"><img src="%s" alt="%s" width="%d" height="%d" loading="lazy"`,
		attr(img.SourceURL()), attr(caption), width, height)
	if img.Placeholder != "" {
		fmt.Fprintf(&b, ` style="%s"`, attr("background-size:cover;background-image:url('"+img.Placeholder+"')"))
	}
	if img.BlurHash != "" {
		fmt.Fprintf(&b, ` data-blurhash="%s"`, attr(img.BlurHash))
	}
	b.WriteString(" />")
	if caption != "" {
		b.WriteString("<figcaption>" + inlineHTML(img.Caption) + "</figcaption>")
	}
	b.WriteString("</figure>")
	return b.String()
}

func fileHTML(f *models.File) string {
	src := f.URL()
	out := `<figure class="notion-file"><div>📎 <a href="` + attr(src) + `">` + html.EscapeString(fileName(f.FileObject)) + `</a></div>`
	if len(f.Caption) > 0 {
		out += "<figcaption>" + inlineHTML(f.Caption) + "</figcaption>"
	}
	return out + "</figure>"
}

// fileName is the last path segment of the file URL, without its query.
func fileName(f models.FileObject) string {
	src := f.URL()
	if u, err := url.Parse(src); err == nil && u.Path != "" {
		src = u.Path
	} else if i := strings.IndexByte(src, '?'); i >= 0 {
		src = src[:i]
	}
	name := path.Base(src)
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	if name == "." || name == "/" || name == "" {
		return f.Name
	}
	return name
}

func bookmarkHTML(bm *models.Bookmark) string {
	out := `<div class="notion-bookmark"><a href="` + attr(bm.URL) + `" target="_blank" rel="noopener noreferrer">` + html.EscapeString(bm.URL) + `</a>`
	if len(bm.Caption) > 0 {
		out += `<div class="notion-caption">` + inlineHTML(bm.Caption) + `</div>`
	}
	return out + "</div>"
}

func calloutHTML(c *models.Callout, children []models.Block) string {
	icon := "💡"
	if c.Icon != nil && c.Icon.Type == "emoji" && c.Icon.Emoji != "" {
		icon = c.Icon.Emoji
	}
	var b strings.Builder
	b.WriteString(`<div class="notion-callout">` + "\n")
	b.WriteString(`<span class="notion-callout-icon">` + html.EscapeString(icon) + "</span>\n")
	b.WriteString(`<div class="notion-callout-body">` + inlineHTML(c.RichText))
	if nested := markdownBlocks(children); nested != "" {
		b.WriteString("\n\n" + nested + "\n\n")
	}
	b.WriteString("</div>\n</div>")
	return b.String()
}

func columnsHTML(columns []models.Block) string {
	parts := []string{`<div class="notion-columns">`}
	for _, col := range columns {
		if col.Type == models.BlockColumn {
			parts = append(parts, columnHTML(col.Children))
		} else {
			parts = append(parts, columnHTML([]models.Block{col}))
		}
	}
	parts = append(parts, "</div>")
	return strings.Join(parts, "\n")
}

func columnHTML(children []models.Block) string {
	nested := markdownBlocks(children)
	if nested == "" {
		return `<div class="notion-column"><p class="notion-empty">Empty column</p></div>`
	}
	return `<div class="notion-column">` + "\n\n" + nested + "\n\n</div>"
}

// codeFence returns a backtick fence longer than any backtick run in text.
func codeFence(text string) string {
	return strings.Repeat("`", max(3, longestRun(text, '`')+1))
}

func codeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" || lang == "plain text" {
		return ""
	}
	return strings.ReplaceAll(lang, " ", "-")
}

func longestRun(s string, ch byte) int {
	best, cur := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == ch {
			cur++
			best = max(best, cur)
		} else {
			cur = 0
		}
	}
	return best
}

func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}

func prefixLines(s, prefix, empty string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = empty
		} else {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

func attr(s string) string {
	return html.EscapeString(s)
}
