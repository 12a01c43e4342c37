// Package export persists the in-memory snapshot. A commit is the only
// durability point; mutations that are never committed are lost on exit.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/fablepress/core/internal/models"
	"github.com/fablepress/core/internal/modules/snapshot"
)

// Filename is the exported snapshot artifact name when none can be
// derived from the snapshot resource.
const Filename = "data.json"

// ArtifactName derives the export artifact name from the snapshot
// resource path, so a downloaded export round-trips under the name it
// was loaded from.
func ArtifactName(snapshotPath string) string {
	base := filepath.Base(strings.TrimRight(snapshotPath, "/"))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return Filename
	}
	return base
}

// Committer persists one snapshot state.
type Committer interface {
	Commit(ctx context.Context, snap models.Snapshot) error
}

// Marshal serializes a snapshot the way the export artifact is written.
func Marshal(snap models.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("snapshot encode: %w", err)
	}
	return data, nil
}

// FileCommitter writes the snapshot to <dir>/<name> atomically.
type FileCommitter struct {
	dir  string
	name string
	log  *zap.Logger
}

// NewFileCommitter creates a file committer targeting dir. An empty name
// falls back to Filename.
func NewFileCommitter(dir, name string, log *zap.Logger) *FileCommitter {
	if name == "" {
		name = Filename
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FileCommitter{dir: dir, name: name, log: log}
}

func (f *FileCommitter) Commit(ctx context.Context, snap models.Snapshot) error {
	data, err := Marshal(snap)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("export dir: %w", err)
	}

	tmp := filepath.Join(f.dir, "."+f.name+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("export write: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(f.dir, f.name)); err != nil {
		return fmt.Errorf("export rename: %w", err)
	}

	f.log.Info("snapshot committed", zap.Int("bytes", len(data)))
	return nil
}

type multiCommitter []Committer

func (m multiCommitter) Commit(ctx context.Context, snap models.Snapshot) error {
	var errs []error
	for _, c := range m {
		if err := c.Commit(ctx, snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Multi fans a commit out to every committer; all run even if one fails.
func Multi(committers ...Committer) Committer {
	return multiCommitter(committers)
}

// Exporter ties the snapshot store to its committer.
type Exporter struct {
	store     *snapshot.Store
	committer Committer
	log       *zap.Logger
}

// NewExporter creates the exporter.
func NewExporter(store *snapshot.Store, committer Committer, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{store: store, committer: committer, log: log}
}

// CommitNow dumps the current snapshot, with the tag list materialized,
// and hands it to the committer.
func (e *Exporter) CommitNow(ctx context.Context) error {
	return e.committer.Commit(ctx, e.store.Dump())
}
