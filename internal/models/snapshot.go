package models

// Snapshot is the full content dataset for one session. It is loaded once
// from the snapshot resource and mutated in memory; the exporter writes it
// back out verbatim as the publish artifact.
type Snapshot struct {
	Stories       []StoryModel       `json:"stories"`
	CodeProjects  []CodeProjectModel `json:"codeProjects"`
	Collections   []CollectionModel  `json:"collections"`
	Tags          []TagModel         `json:"tags"`
	Users         []UserModel        `json:"users"`
	ModerationLog []ModerationEntry  `json:"moderationLog"`
}

// Normalize replaces nil top-level arrays with empty ones so a sparse or
// hand-edited snapshot file round-trips as `[]`, never `null`.
func (s *Snapshot) Normalize() {
	if s.Stories == nil {
		s.Stories = []StoryModel{}
	}
	if s.CodeProjects == nil {
		s.CodeProjects = []CodeProjectModel{}
	}
	if s.Collections == nil {
		s.Collections = []CollectionModel{}
	}
	if s.Tags == nil {
		s.Tags = []TagModel{}
	}
	if s.Users == nil {
		s.Users = []UserModel{}
	}
	if s.ModerationLog == nil {
		s.ModerationLog = []ModerationEntry{}
	}
	for i := range s.Stories {
		s.Stories[i].normalize()
	}
	for i := range s.CodeProjects {
		s.CodeProjects[i].normalize()
	}
	for i := range s.Collections {
		s.Collections[i].normalize()
	}
}

// TagModel is a curated aggregate tag entry. Reads go through the derived
// tag index in the snapshot store; this list is materialized from the index
// before export so the two surfaces stay consistent.
type TagModel struct {
	Tag string `json:"tag"`
}
