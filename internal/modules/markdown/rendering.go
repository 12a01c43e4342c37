// Package markdown renders story bodies and assembles the live preview
// document for code projects.
package markdown

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"

	"github.com/fablepress/core/internal/models"
)

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Table,
		extension.Strikethrough,
		extension.TaskList,
		extension.Linkify,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
		htmlrenderer.WithXHTML(),
	),
)

// RenderContent converts a markdown story body to HTML. A body that fails
// to convert is returned escaped rather than dropped.
func RenderContent(markdownText string) string {
	text := strings.TrimSpace(markdownText)
	if text == "" {
		return ""
	}

	var out bytes.Buffer
	if err := markdownEngine.Convert([]byte(text), &out); err != nil {
		return template.HTMLEscapeString(text)
	}
	return out.String()
}

// RenderPreviewDocument assembles a self-contained HTML document from a
// code project's files. The first markup file becomes the body; stylesheets
// and scripts are inlined around it. A markup file that is already a full
// document is passed through untouched.
func RenderPreviewDocument(name string, files []models.CodeFile) string {
	var markup string
	var styles, scripts []string
	for _, f := range files {
		switch {
		case f.IsMarkup():
			if markup == "" {
				markup = f.Content
			}
		case strings.HasSuffix(f.Filename, ".css"):
			styles = append(styles, f.Content)
		case strings.HasSuffix(f.Filename, ".js"):
			scripts = append(scripts, f.Content)
		}
	}

	if strings.Contains(strings.ToLower(markup), "<html") {
		return markup
	}

	var b strings.Builder
	b.Grow(4096)

	title := template.HTMLEscapeString(strings.TrimSpace(name))
	if title == "" {
		title = "Preview"
	}

	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n")
	b.WriteString("  <head>\n")
	b.WriteString("    <meta charset=\"UTF-8\" />\n")
	b.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\" />\n")
	b.WriteString("    <title>")
	b.WriteString(title)
	b.WriteString("</title>\n")
	for _, css := range styles {
		b.WriteString("    <style>\n")
		b.WriteString(css)
		b.WriteString("\n    </style>\n")
	}
	b.WriteString("  </head>\n")
	b.WriteString("  <body>\n")
	b.WriteString(markup)
	b.WriteString("\n  </body>\n")
	for _, js := range scripts {
		b.WriteString("  <script>\n")
		b.WriteString(js)
		b.WriteString("\n  </script>\n")
	}
	b.WriteString("</html>")

	return b.String()
}
