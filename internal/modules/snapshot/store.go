// Package snapshot holds the working copy of the published site state.
// The snapshot is loaded at most once per process; authoring mutates the
// in-memory copy and nothing is persisted until an explicit export.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/fablepress/core/internal/models"
)

// ErrNotFound is returned when an entity lookup misses.
var ErrNotFound = errors.New("not found")

// Store is the single in-memory snapshot. A failed load is cached and
// propagated on every subsequent call; there is no retry. Mutations are
// individually atomic under the lock, nothing is transactional across them.
type Store struct {
	source Source
	log    *zap.Logger

	loadOnce sync.Once
	loadErr  error

	mu   sync.RWMutex
	data *models.Snapshot

	// Highest id ever issued per kind; never decremented, so removed
	// entity ids are not reused.
	lastStoryID      int
	lastCodeID       int
	lastCollectionID int
}

// New creates a store over the given source.
func New(source Source, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{source: source, log: log}
}

// Load fetches and parses the snapshot. Only the first call does work;
// later calls return the cached outcome.
func (s *Store) Load(ctx context.Context) error {
	s.loadOnce.Do(func() {
		raw, err := s.source.Fetch(ctx)
		if err != nil {
			s.loadErr = err
			return
		}
		var snap models.Snapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			s.loadErr = fmt.Errorf("snapshot parse: %w", err)
			return
		}
		snap.Normalize()

		s.mu.Lock()
		s.data = &snap
		s.lastStoryID = maxStoryID(snap.Stories)
		s.lastCodeID = maxCodeID(snap.CodeProjects)
		s.lastCollectionID = maxCollectionID(snap.Collections)
		s.mu.Unlock()

		s.log.Info("snapshot loaded",
			zap.Int("stories", len(snap.Stories)),
			zap.Int("codeProjects", len(snap.CodeProjects)),
			zap.Int("collections", len(snap.Collections)),
			zap.Int("users", len(snap.Users)),
			zap.Int("moderationLog", len(snap.ModerationLog)))
	})
	return s.loadErr
}

func (s *Store) ready() *models.Snapshot {
	if s.data == nil {
		panic("snapshot: store used before Load")
	}
	return s.data
}

func maxStoryID(stories []models.StoryModel) int {
	max := 0
	for _, st := range stories {
		if st.ID > max {
			max = st.ID
		}
	}
	return max
}

func maxCodeID(projects []models.CodeProjectModel) int {
	max := 0
	for _, p := range projects {
		if p.ID > max {
			max = p.ID
		}
	}
	return max
}

func maxCollectionID(cols []models.CollectionModel) int {
	max := 0
	for _, c := range cols {
		if c.ID > max {
			max = c.ID
		}
	}
	return max
}

// Story returns the story with the given id.
func (s *Store) Story(id int) (models.StoryModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.ready().Stories {
		if st.ID == id {
			return st, nil
		}
	}
	return models.StoryModel{}, ErrNotFound
}

// CodeProject returns the code project with the given id.
func (s *Store) CodeProject(id int) (models.CodeProjectModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.ready().CodeProjects {
		if p.ID == id {
			return p, nil
		}
	}
	return models.CodeProjectModel{}, ErrNotFound
}

// Collection returns the collection with the given id.
func (s *Store) Collection(id int) (models.CollectionModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.ready().Collections {
		if c.ID == id {
			return c, nil
		}
	}
	return models.CollectionModel{}, ErrNotFound
}

// User returns the user with the given username. Username is the sole
// lookup key for users.
func (s *Store) User(username string) (models.UserModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.ready().Users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.UserModel{}, ErrNotFound
}

// Stories returns a copy of all stories in snapshot order.
func (s *Store) Stories() []models.StoryModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.StoryModel, len(s.ready().Stories))
	copy(out, s.ready().Stories)
	return out
}

// CodeProjects returns a copy of all code projects in snapshot order.
func (s *Store) CodeProjects() []models.CodeProjectModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CodeProjectModel, len(s.ready().CodeProjects))
	copy(out, s.ready().CodeProjects)
	return out
}

// Collections returns a copy of all collections in snapshot order.
func (s *Store) Collections() []models.CollectionModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CollectionModel, len(s.ready().Collections))
	copy(out, s.ready().Collections)
	return out
}

// Users returns a copy of all users in snapshot order.
func (s *Store) Users() []models.UserModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.UserModel, len(s.ready().Users))
	copy(out, s.ready().Users)
	return out
}

// ModerationLog returns a copy of the moderation log in append order.
func (s *Store) ModerationLog() []models.ModerationEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ModerationEntry, len(s.ready().ModerationLog))
	copy(out, s.ready().ModerationLog)
	return out
}

// TagIndex derives the tag list from current stories and code projects:
// union of all tags in first-appearance order, empty strings skipped.
func (s *Store) TagIndex() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.ready()

	seen := make(map[string]struct{})
	tags := []string{}
	add := func(tag string) {
		if tag == "" {
			return
		}
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	for _, st := range snap.Stories {
		for _, t := range st.Tags {
			add(t)
		}
	}
	for _, p := range snap.CodeProjects {
		for _, t := range p.Tags {
			add(t)
		}
	}
	return tags
}

// Dump returns a full copy of the snapshot with the tag list materialized
// from the derived index.
func (s *Store) Dump() models.Snapshot {
	tags := s.TagIndex()

	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.ready()

	out := models.Snapshot{
		Stories:       make([]models.StoryModel, len(snap.Stories)),
		CodeProjects:  make([]models.CodeProjectModel, len(snap.CodeProjects)),
		Collections:   make([]models.CollectionModel, len(snap.Collections)),
		Tags:          make([]models.TagModel, 0, len(tags)),
		Users:         make([]models.UserModel, len(snap.Users)),
		ModerationLog: make([]models.ModerationEntry, len(snap.ModerationLog)),
	}
	copy(out.Stories, snap.Stories)
	copy(out.CodeProjects, snap.CodeProjects)
	copy(out.Collections, snap.Collections)
	copy(out.Users, snap.Users)
	copy(out.ModerationLog, snap.ModerationLog)
	for _, t := range tags {
		out.Tags = append(out.Tags, models.TagModel{Tag: t})
	}
	return out
}
