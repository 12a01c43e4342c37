package view

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/fablepress/core/internal/models"
	"github.com/fablepress/core/internal/modules/identity"
	"github.com/fablepress/core/internal/modules/markdown"
	"github.com/fablepress/core/internal/modules/snapshot"
)

// Service renders page payloads. Renderers only read from the snapshot
// store; a resolution miss returns an empty payload rather than an error.
type Service struct {
	store   *snapshot.Store
	binding *identity.Binding
	log     *zap.Logger
}

// NewService creates the view service.
func NewService(store *snapshot.Store, binding *identity.Binding, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, binding: binding, log: log}
}

// StoryCard is a story link on a listing page.
type StoryCard struct {
	ID     int      `json:"id"`
	Title  string   `json:"title"`
	Author string   `json:"author"`
	Tags   []string `json:"tags"`
}

// ProjectCard is a code project link on a listing page.
type ProjectCard struct {
	ID     int      `json:"id"`
	Name   string   `json:"name"`
	Author string   `json:"author"`
	Tags   []string `json:"tags"`
}

// UserCard is a user hit on the search page.
type UserCard struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

func storyCard(s models.StoryModel) StoryCard {
	return StoryCard{ID: s.ID, Title: s.Title, Author: s.Author, Tags: s.Tags}
}

func projectCard(p models.CodeProjectModel) ProjectCard {
	return ProjectCard{ID: p.ID, Name: p.Name, Author: p.Author, Tags: p.Tags}
}

// HomePage is the homepage payload.
type HomePage struct {
	Featured []StoryCard   `json:"featured"`
	Latest   []ProjectCard `json:"latest"`
	Tags     []string      `json:"tags"`
}

// Home lists the first 5 stories, the last 6 code projects in snapshot
// order, and the full tag cloud.
func (s *Service) Home() HomePage {
	stories := s.store.Stories()
	featured := make([]StoryCard, 0, 5)
	for _, st := range stories {
		if len(featured) == 5 {
			break
		}
		featured = append(featured, storyCard(st))
	}

	projects := s.store.CodeProjects()
	if len(projects) > 6 {
		projects = projects[len(projects)-6:]
	}
	latest := make([]ProjectCard, 0, len(projects))
	for _, p := range projects {
		latest = append(latest, projectCard(p))
	}

	return HomePage{Featured: featured, Latest: latest, Tags: s.store.TagIndex()}
}

// StoryPage is the story view payload.
type StoryPage struct {
	ID       int            `json:"id"`
	Title    string         `json:"title"`
	Author   string         `json:"author"`
	BodyHTML string         `json:"bodyHtml"`
	Tags     []string       `json:"tags"`
	Warnings []string       `json:"warnings"`
	Images   []models.Image `json:"images"`
}

// Story renders one story with its body converted to HTML.
func (s *Service) Story(id int) (StoryPage, bool) {
	st, err := s.store.Story(id)
	if err != nil {
		return StoryPage{}, false
	}
	return StoryPage{
		ID:       st.ID,
		Title:    st.Title,
		Author:   st.Author,
		BodyHTML: markdown.RenderContent(st.Body),
		Tags:     st.Tags,
		Warnings: st.Warnings,
		Images:   st.Images,
	}, true
}

// FileTab is one file on the code view.
type FileTab struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Markup   bool   `json:"markup"`
}

// CodePage is the code project view payload. The first file is selected
// by default; PreviewPath is set when the project has a markup file.
type CodePage struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Author      string    `json:"author"`
	Files       []FileTab `json:"files"`
	Selected    string    `json:"selected"`
	PreviewPath string    `json:"previewPath,omitempty"`
}

// Code renders one code project.
func (s *Service) Code(id int) (CodePage, bool) {
	p, err := s.store.CodeProject(id)
	if err != nil {
		return CodePage{}, false
	}

	page := CodePage{ID: p.ID, Name: p.Name, Author: p.Author, Files: make([]FileTab, 0, len(p.Files))}
	for _, f := range p.Files {
		page.Files = append(page.Files, FileTab{Filename: f.Filename, Content: f.Content, Markup: f.IsMarkup()})
		if f.IsMarkup() && page.PreviewPath == "" {
			page.PreviewPath = previewPath(p.ID)
		}
	}
	if len(page.Files) > 0 {
		page.Selected = page.Files[0].Filename
	}
	return page, true
}

// Preview assembles the live preview document for a code project's markup.
func (s *Service) Preview(id int) (string, bool) {
	p, err := s.store.CodeProject(id)
	if err != nil {
		return "", false
	}
	return markdown.RenderPreviewDocument(p.Name, p.Files), true
}

// CollectionLink is one resolved item on a collection view.
type CollectionLink struct {
	Type  models.ItemType `json:"type"`
	ID    int             `json:"id"`
	Title string          `json:"title"`
	Path  string          `json:"path"`
}

// CollectionPage is the collection view payload.
type CollectionPage struct {
	ID     int              `json:"id"`
	Name   string           `json:"name"`
	Author string           `json:"author"`
	Items  []CollectionLink `json:"items"`
}

// Collection renders one collection. References to entities that no
// longer exist are skipped, not errors.
func (s *Service) Collection(id int) (CollectionPage, bool) {
	col, err := s.store.Collection(id)
	if err != nil {
		return CollectionPage{}, false
	}

	page := CollectionPage{ID: col.ID, Name: col.Name, Author: col.Author, Items: []CollectionLink{}}
	for _, item := range col.Items {
		switch item.Type {
		case models.ItemStory:
			st, err := s.store.Story(item.ID)
			if err != nil {
				s.log.Warn("collection item skipped",
					zap.Int("collection", col.ID), zap.String("type", string(item.Type)), zap.Int("id", item.ID))
				continue
			}
			page.Items = append(page.Items, CollectionLink{Type: item.Type, ID: item.ID, Title: st.Title, Path: storyPath(st.ID)})
		case models.ItemCode:
			p, err := s.store.CodeProject(item.ID)
			if err != nil {
				s.log.Warn("collection item skipped",
					zap.Int("collection", col.ID), zap.String("type", string(item.Type)), zap.Int("id", item.ID))
				continue
			}
			page.Items = append(page.Items, CollectionLink{Type: item.Type, ID: item.ID, Title: p.Name, Path: codePath(p.ID)})
		}
	}
	return page, true
}

// TagPage is the tag page payload. Without a tag it carries the full
// index; with one, the stories and projects tagged with it.
type TagPage struct {
	Tag      string        `json:"tag,omitempty"`
	Tags     []string      `json:"tags,omitempty"`
	Stories  []StoryCard   `json:"stories"`
	Projects []ProjectCard `json:"projects"`
}

// Tag filters by exact, case-sensitive tag match.
func (s *Service) Tag(tag string) TagPage {
	page := TagPage{Tag: tag, Stories: []StoryCard{}, Projects: []ProjectCard{}}
	if tag == "" {
		page.Tags = s.store.TagIndex()
		return page
	}

	for _, st := range s.store.Stories() {
		if containsTag(st.Tags, tag) {
			page.Stories = append(page.Stories, storyCard(st))
		}
	}
	for _, p := range s.store.CodeProjects() {
		if containsTag(p.Tags, tag) {
			page.Projects = append(page.Projects, projectCard(p))
		}
	}
	return page
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SearchPage is the search payload: three groups, no ranking.
type SearchPage struct {
	Query    string        `json:"query"`
	Stories  []StoryCard   `json:"stories"`
	Projects []ProjectCard `json:"projects"`
	Users    []UserCard    `json:"users"`
}

// Search matches a case-insensitive substring against story titles,
// project names and user display names.
func (s *Service) Search(query string) SearchPage {
	page := SearchPage{Query: query, Stories: []StoryCard{}, Projects: []ProjectCard{}, Users: []UserCard{}}
	q := strings.ToLower(query)
	if q == "" {
		return page
	}

	for _, st := range s.store.Stories() {
		if strings.Contains(strings.ToLower(st.Title), q) {
			page.Stories = append(page.Stories, storyCard(st))
		}
	}
	for _, p := range s.store.CodeProjects() {
		if strings.Contains(strings.ToLower(p.Name), q) {
			page.Projects = append(page.Projects, projectCard(p))
		}
	}
	for _, u := range s.store.Users() {
		if strings.Contains(strings.ToLower(u.DisplayName), q) {
			page.Users = append(page.Users, UserCard{Username: u.Username, DisplayName: u.DisplayName})
		}
	}
	return page
}

// ProfilePage is the public profile payload.
type ProfilePage struct {
	Username    string         `json:"username"`
	DisplayName string         `json:"displayName"`
	Bio         string         `json:"bio"`
	Avatar      *models.Avatar `json:"avatar,omitempty"`
	Stories     []StoryCard    `json:"stories"`
	Projects    []ProjectCard  `json:"projects"`
}

// Profile renders a user's profile with their authored works. When no
// username is given the bound identity is used.
func (s *Service) Profile(ctx context.Context, username string) (ProfilePage, bool) {
	if username == "" {
		username = s.binding.Current(ctx)
	}
	u, err := s.store.User(username)
	if err != nil {
		return ProfilePage{}, false
	}

	page := ProfilePage{
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Bio:         u.Bio,
		Avatar:      u.Avatar,
		Stories:     []StoryCard{},
		Projects:    []ProjectCard{},
	}
	for _, st := range s.store.Stories() {
		if st.Author == username {
			page.Stories = append(page.Stories, storyCard(st))
		}
	}
	for _, p := range s.store.CodeProjects() {
		if p.Author == username {
			page.Projects = append(page.Projects, projectCard(p))
		}
	}
	return page, true
}

// SettingsPage carries the bound user's editable profile fields.
type SettingsPage struct {
	Username    string         `json:"username"`
	DisplayName string         `json:"displayName"`
	Bio         string         `json:"bio"`
	Avatar      *models.Avatar `json:"avatar,omitempty"`
}

// Settings renders the settings form for the bound identity.
func (s *Service) Settings(ctx context.Context) (SettingsPage, bool) {
	username := s.binding.Current(ctx)
	u, err := s.store.User(username)
	if err != nil {
		return SettingsPage{}, false
	}
	return SettingsPage{Username: u.Username, DisplayName: u.DisplayName, Bio: u.Bio, Avatar: u.Avatar}, true
}

func storyPath(id int) string   { return "/story/?id=" + strconv.Itoa(id) }
func codePath(id int) string    { return "/code/?id=" + strconv.Itoa(id) }
func previewPath(id int) string { return "/api/v2/code-projects/" + strconv.Itoa(id) + "/preview" }
