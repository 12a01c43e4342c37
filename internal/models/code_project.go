package models

import "strings"

// CodeProjectModel is a multi-file code project.
type CodeProjectModel struct {
	ID     int        `json:"id"`
	Name   string     `json:"name"`
	Author string     `json:"author"`
	Files  []CodeFile `json:"files"` // non-empty after first save
	Tags   []string   `json:"tags"`  // created empty, not editable via authoring
}

// CodeFile is one file inside a code project.
type CodeFile struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// IsMarkup reports whether the file should be rendered as a live HTML
// preview rather than shown as plain source.
func (f CodeFile) IsMarkup() bool {
	return strings.HasSuffix(strings.ToLower(f.Filename), ".html")
}

func (p *CodeProjectModel) normalize() {
	if p.Files == nil {
		p.Files = []CodeFile{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
}
