package draft

import "github.com/fablepress/core/internal/models"

// Kind names one of the four independent draft slots.
type Kind string

const (
	KindStory      Kind = "story"
	KindCode       Kind = "code"
	KindCollection Kind = "collection"
	KindSettings   Kind = "settings"
)

// Valid reports whether k names a known draft slot.
func (k Kind) Valid() bool {
	switch k {
	case KindStory, KindCode, KindCollection, KindSettings:
		return true
	}
	return false
}

// Key is the storage key for this slot.
func (k Kind) Key() string { return "draft:" + string(k) }

// StoryDraft is the in-progress story form state.
type StoryDraft struct {
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	Tags     []string       `json:"tags"`
	Warnings []string       `json:"warnings"`
	Images   []models.Image `json:"images"`
}

func (d *StoryDraft) Normalize() {
	if d.Tags == nil {
		d.Tags = []string{}
	}
	if d.Warnings == nil {
		d.Warnings = []string{}
	}
	if d.Images == nil {
		d.Images = []models.Image{}
	}
}

// CodeDraft is the in-progress code project form state.
type CodeDraft struct {
	Name  string            `json:"name"`
	Files []models.CodeFile `json:"files"`
}

func (d *CodeDraft) Normalize() {
	if d.Files == nil {
		d.Files = []models.CodeFile{}
	}
}

// CollectionDraft is the in-progress collection form state.
type CollectionDraft struct {
	Name  string                  `json:"name"`
	Items []models.CollectionItem `json:"items"`
}

func (d *CollectionDraft) Normalize() {
	if d.Items == nil {
		d.Items = []models.CollectionItem{}
	}
}

// SettingsDraft is the unsaved profile settings form state.
type SettingsDraft struct {
	DisplayName string         `json:"displayName"`
	Bio         string         `json:"bio"`
	Avatar      *models.Avatar `json:"avatar,omitempty"`
}

func (d *SettingsDraft) Normalize() {}
