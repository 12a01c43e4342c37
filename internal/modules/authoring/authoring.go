// Package authoring turns drafts and submitted form fields into snapshot
// entities. A submit appends to the in-memory snapshot, clears the draft
// slot and commits; there is no rollback if the commit fails.
package authoring

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fablepress/core/internal/models"
	"github.com/fablepress/core/internal/modules/draft"
	"github.com/fablepress/core/internal/modules/export"
	"github.com/fablepress/core/internal/modules/identity"
	"github.com/fablepress/core/internal/modules/snapshot"
)

// DefaultTitle is used when a story is submitted without one.
const DefaultTitle = "(no title)"

// Service composes the snapshot store, drafts, identity and the exporter.
type Service struct {
	store    *snapshot.Store
	drafts   *draft.Service
	binding  *identity.Binding
	exporter *export.Exporter
	log      *zap.Logger
}

// NewService creates the authoring service.
func NewService(store *snapshot.Store, drafts *draft.Service, binding *identity.Binding, exporter *export.Exporter, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, drafts: drafts, binding: binding, exporter: exporter, log: log}
}

// StoryInput is the story submit form.
type StoryInput struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Tags     string `json:"tags"`
	Warnings string `json:"warnings"`
}

// SubmitStory appends a new story. Images come from the story draft,
// which is cleared afterwards.
func (s *Service) SubmitStory(ctx context.Context, in StoryInput) (models.StoryModel, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = DefaultTitle
	}

	d, err := s.drafts.LoadStory(ctx)
	if err != nil {
		return models.StoryModel{}, err
	}

	story := s.store.AppendStory(models.StoryModel{
		Title:    title,
		Body:     in.Body,
		Author:   s.binding.Current(ctx),
		Tags:     splitCommaList(in.Tags),
		Warnings: splitCommaList(in.Warnings),
		Images:   d.Images,
	})

	s.finish(ctx, draft.KindStory)
	return story, nil
}

// CodeInput is the code project submit form.
type CodeInput struct {
	Name string `json:"name"`
}

// ErrNoFiles is returned when a code project is submitted with no files.
var ErrNoFiles = errNoFiles{}

type errNoFiles struct{}

func (errNoFiles) Error() string { return "a code project needs at least one file" }

// SubmitCode appends a new code project from the code draft.
func (s *Service) SubmitCode(ctx context.Context, in CodeInput) (models.CodeProjectModel, error) {
	d, err := s.drafts.LoadCode(ctx)
	if err != nil {
		return models.CodeProjectModel{}, err
	}
	if len(d.Files) == 0 {
		return models.CodeProjectModel{}, ErrNoFiles
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = d.Name
	}

	project := s.store.AppendCodeProject(models.CodeProjectModel{
		Name:   name,
		Author: s.binding.Current(ctx),
		Files:  d.Files,
		Tags:   []string{},
	})

	s.finish(ctx, draft.KindCode)
	return project, nil
}

// CollectionInput is the collection submit form. Items fall back to the
// collection draft when absent.
type CollectionInput struct {
	Name  string                  `json:"name"`
	Items []models.CollectionItem `json:"items"`
}

// SubmitCollection appends a new collection. Items are well-formed refs;
// referential integrity is not checked at write time.
func (s *Service) SubmitCollection(ctx context.Context, in CollectionInput) (models.CollectionModel, error) {
	items := in.Items
	if items == nil {
		d, err := s.drafts.LoadCollection(ctx)
		if err != nil {
			return models.CollectionModel{}, err
		}
		items = d.Items
	}

	col := s.store.AppendCollection(models.CollectionModel{
		Name:   strings.TrimSpace(in.Name),
		Author: s.binding.Current(ctx),
		Items:  items,
	})

	s.finish(ctx, draft.KindCollection)
	return col, nil
}

// SettingsInput is the profile settings submit form.
type SettingsInput struct {
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
}

// SubmitSettings updates the bound user's profile in place. The avatar,
// if one was staged, comes from the settings draft. An unknown bound user
// is a silent no-op.
func (s *Service) SubmitSettings(ctx context.Context, in SettingsInput) error {
	d, err := s.drafts.LoadSettings(ctx)
	if err != nil {
		return err
	}

	username := s.binding.Current(ctx)
	if !s.store.SetUserProfile(username, in.DisplayName, in.Bio, d.Avatar) {
		s.log.Warn("settings submit for unknown user", zap.String("username", username))
	}

	s.finish(ctx, draft.KindSettings)
	return nil
}

// finish clears the submitted draft slot and commits the snapshot. Both
// failures are logged only; the appended entity stays in memory and the
// operator can re-export manually.
func (s *Service) finish(ctx context.Context, kind draft.Kind) {
	if err := s.drafts.Clear(ctx, kind); err != nil {
		s.log.Warn("draft clear failed", zap.String("kind", string(kind)), zap.Error(err))
	}
	if err := s.exporter.CommitNow(ctx); err != nil {
		s.log.Error("commit failed after submit", zap.Error(err))
	}
}

func splitCommaList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
