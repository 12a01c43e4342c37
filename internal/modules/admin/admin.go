// Package admin serves the moderation queue and applies admin decisions.
// Moderation entries are addressed by their stable position in the
// append-only log; every action performs its own full commit.
package admin

import (
	"context"

	"go.uber.org/zap"

	"github.com/fablepress/core/internal/models"
	"github.com/fablepress/core/internal/modules/export"
	"github.com/fablepress/core/internal/modules/snapshot"
)

// QueueEntry is a pending moderation entry with its log position.
type QueueEntry struct {
	Seq int `json:"seq"`
	models.ModerationEntry
}

// Service applies moderation decisions to the snapshot.
type Service struct {
	store    *snapshot.Store
	exporter *export.Exporter
	log      *zap.Logger
}

// NewService creates the admin service.
func NewService(store *snapshot.Store, exporter *export.Exporter, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, exporter: exporter, log: log}
}

// Queue lists entries with neither approved nor removed set.
func (s *Service) Queue() []QueueEntry {
	queue := []QueueEntry{}
	for seq, entry := range s.store.ModerationLog() {
		if entry.Pending() {
			queue = append(queue, QueueEntry{Seq: seq, ModerationEntry: entry})
		}
	}
	return queue
}

// Users lists all users.
func (s *Service) Users() []models.UserModel {
	return s.store.Users()
}

// Approve marks the entry approved and commits. The entry stays in the
// log; it just leaves the queue.
func (s *Service) Approve(ctx context.Context, seq int) bool {
	if !s.store.ApproveModeration(seq) {
		return false
	}
	s.commit(ctx)
	return true
}

// Remove deletes the entity the entry references, marks the entry removed
// and commits. A reference to an already-deleted entity still resolves the
// entry.
func (s *Service) Remove(ctx context.Context, seq int) bool {
	entry, ok := s.store.ModerationEntryAt(seq)
	if !ok {
		return false
	}

	switch entry.ItemType {
	case models.ItemStory:
		if !s.store.RemoveStory(entry.ItemID) {
			s.log.Warn("moderated story already gone", zap.Int("id", entry.ItemID))
		}
	case models.ItemCode:
		if !s.store.RemoveCodeProject(entry.ItemID) {
			s.log.Warn("moderated code project already gone", zap.Int("id", entry.ItemID))
		}
	}

	s.store.MarkModerationRemoved(seq)
	s.commit(ctx)
	return true
}

// Ban marks the user banned and commits. Idempotent.
func (s *Service) Ban(ctx context.Context, username string) bool {
	if !s.store.BanUser(username) {
		return false
	}
	s.commit(ctx)
	return true
}

func (s *Service) commit(ctx context.Context) {
	if err := s.exporter.CommitNow(ctx); err != nil {
		s.log.Error("commit failed after admin action", zap.Error(err))
	}
}
