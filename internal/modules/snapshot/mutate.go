package snapshot

import (
	"go.uber.org/zap"

	"github.com/fablepress/core/internal/models"
)

// AppendStory assigns the next story id and appends the story.
func (s *Store) AppendStory(story models.StoryModel) models.StoryModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.ready()

	s.lastStoryID++
	story.ID = s.lastStoryID
	snap.Stories = append(snap.Stories, story)
	s.log.Info("story appended", zap.Int("id", story.ID), zap.String("author", story.Author))
	return story
}

// AppendCodeProject assigns the next project id and appends the project.
func (s *Store) AppendCodeProject(project models.CodeProjectModel) models.CodeProjectModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.ready()

	s.lastCodeID++
	project.ID = s.lastCodeID
	snap.CodeProjects = append(snap.CodeProjects, project)
	s.log.Info("code project appended", zap.Int("id", project.ID), zap.String("author", project.Author))
	return project
}

// AppendCollection assigns the next collection id and appends the
// collection. Item references are not checked at write time; dangling
// references are tolerated and skipped at read time.
func (s *Store) AppendCollection(col models.CollectionModel) models.CollectionModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.ready()

	s.lastCollectionID++
	col.ID = s.lastCollectionID
	snap.Collections = append(snap.Collections, col)
	s.log.Info("collection appended", zap.Int("id", col.ID), zap.String("author", col.Author))
	return col
}

// RemoveStory deletes the story with the given id. The id allocator is
// not rewound.
func (s *Store) RemoveStory(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.ready()

	for i, st := range snap.Stories {
		if st.ID == id {
			snap.Stories = append(snap.Stories[:i], snap.Stories[i+1:]...)
			s.log.Info("story removed", zap.Int("id", id))
			return true
		}
	}
	return false
}

// RemoveCodeProject deletes the code project with the given id.
func (s *Store) RemoveCodeProject(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.ready()

	for i, p := range snap.CodeProjects {
		if p.ID == id {
			snap.CodeProjects = append(snap.CodeProjects[:i], snap.CodeProjects[i+1:]...)
			s.log.Info("code project removed", zap.Int("id", id))
			return true
		}
	}
	return false
}

// SetUserProfile updates a user's display name, bio and optionally avatar
// in place. A nil avatar keeps the current one.
func (s *Store) SetUserProfile(username, displayName, bio string, avatar *models.Avatar) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.ready()

	for i := range snap.Users {
		if snap.Users[i].Username == username {
			snap.Users[i].DisplayName = displayName
			snap.Users[i].Bio = bio
			if avatar != nil {
				snap.Users[i].Avatar = avatar
			}
			s.log.Info("user profile updated", zap.String("username", username))
			return true
		}
	}
	return false
}

// BanUser marks a user as banned. Idempotent.
func (s *Store) BanUser(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.ready()

	for i := range snap.Users {
		if snap.Users[i].Username == username {
			snap.Users[i].Banned = true
			s.log.Info("user banned", zap.String("username", username))
			return true
		}
	}
	return false
}

// ModerationEntryAt returns the entry at the given log position. Positions
// are stable because the log is append-only.
func (s *Store) ModerationEntryAt(seq int) (models.ModerationEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.ready()

	if seq < 0 || seq >= len(snap.ModerationLog) {
		return models.ModerationEntry{}, false
	}
	return snap.ModerationLog[seq], true
}

// ApproveModeration marks the entry at the given position approved. The
// entry stays in the log.
func (s *Store) ApproveModeration(seq int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.ready()

	if seq < 0 || seq >= len(snap.ModerationLog) {
		return false
	}
	approved := true
	snap.ModerationLog[seq].Approved = &approved
	s.log.Info("moderation entry approved", zap.Int("seq", seq))
	return true
}

// MarkModerationRemoved marks the entry at the given position removed.
// The caller deletes the referenced entity first.
func (s *Store) MarkModerationRemoved(seq int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.ready()

	if seq < 0 || seq >= len(snap.ModerationLog) {
		return false
	}
	removed := true
	snap.ModerationLog[seq].Removed = &removed
	s.log.Info("moderation entry removed", zap.Int("seq", seq))
	return true
}
