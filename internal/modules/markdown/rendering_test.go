package markdown

import (
	"strings"
	"testing"

	"github.com/fablepress/core/internal/models"
)

func TestRenderContent(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{name: "empty", input: "   ", contains: ""},
		{name: "paragraph", input: "hello world", contains: "<p>hello world</p>"},
		{name: "heading", input: "# Title", contains: "<h1>Title</h1>"},
		{name: "emphasis", input: "some *emphasis* here", contains: "<em>emphasis</em>"},
		{name: "strikethrough", input: "~~gone~~", contains: "<del>gone</del>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderContent(tt.input)
			if tt.contains == "" {
				if got != "" {
					t.Errorf("expected empty output, got %q", got)
				}
				return
			}
			if !strings.Contains(got, tt.contains) {
				t.Errorf("expected %q in output, got %q", tt.contains, got)
			}
		})
	}
}

func TestRenderPreviewDocument(t *testing.T) {
	files := []models.CodeFile{
		{Filename: "index.html", Content: "<h1>demo</h1>"},
		{Filename: "style.css", Content: "h1 { color: red; }"},
		{Filename: "main.js", Content: "console.log('hi')"},
	}

	doc := RenderPreviewDocument("Demo", files)
	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Demo</title>",
		"<h1>demo</h1>",
		"h1 { color: red; }",
		"console.log('hi')",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("expected %q in document", want)
		}
	}
}

func TestRenderPreviewDocumentFullPassthrough(t *testing.T) {
	full := "<html><body>already complete</body></html>"
	files := []models.CodeFile{{Filename: "index.html", Content: full}}

	if got := RenderPreviewDocument("X", files); got != full {
		t.Errorf("full document should pass through untouched, got %q", got)
	}
}

func TestRenderPreviewDocumentNoName(t *testing.T) {
	doc := RenderPreviewDocument("", []models.CodeFile{{Filename: "index.html", Content: "<p>x</p>"}})
	if !strings.Contains(doc, "<title>Preview</title>") {
		t.Error("expected Preview fallback title")
	}
}
