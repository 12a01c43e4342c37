package models

// StoryModel is a published story.
type StoryModel struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Body     string   `json:"body"` // markdown, rendered as rich content
	Author   string   `json:"author"`
	Tags     []string `json:"tags"`
	Warnings []string `json:"warnings"`
	Images   []Image  `json:"images"`
}

// Image is an inline-encoded binary asset attached to a story or draft.
// Content is a self-contained data URL.
type Image struct {
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	Content  string `json:"content"`
	Alt      string `json:"alt"`
}

func (s *StoryModel) normalize() {
	if s.Tags == nil {
		s.Tags = []string{}
	}
	if s.Warnings == nil {
		s.Warnings = []string{}
	}
	if s.Images == nil {
		s.Images = []Image{}
	}
}
