package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/bimmerbailey/logshare/internal/logs"
)

// snapshot is the on-disk layout of a FileStore.
type snapshot struct {
	Version  int            `json:"version"`
	Logs     []logs.Log     `json:"logs"`
	Comments []logs.Comment `json:"comments"`
}

const snapshotVersion = 1

// FileStore keeps everything in memory and rewrites a JSON snapshot after
// every successful mutation.
type FileStore struct {
	*MemoryStore

	path   string
	logger *slog.Logger
	wmu    sync.Mutex // serializes mutations with their snapshot writes
}

var _ logs.Store = (*FileStore)(nil)

// OpenFileStore loads path if it exists and returns a store that persists to
// it. A missing file starts an empty store.
func OpenFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	fs := &FileStore{
		MemoryStore: NewMemoryStore(),
		path:        path,
		logger:      logger,
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Info("starting with empty store", "path", path)
		return fs, nil
	case err != nil:
		return nil, fmt.Errorf("reading store %s: %w", path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding store %s: %w", path, err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("store %s: unsupported version %d", path, snap.Version)
	}

	ctx := context.Background()
	for _, l := range snap.Logs {
		if err := fs.MemoryStore.CreateLog(ctx, l); err != nil {
			return nil, fmt.Errorf("loading log %s: %w", l.ID, err)
		}
	}
	for _, c := range snap.Comments {
		if err := fs.MemoryStore.CreateComment(ctx, c); err != nil {
			// Comments of a log removed by hand are skipped.
			logger.Warn("skipping orphaned comment", "id", c.ID, "log_id", c.LogID)
		}
	}

	logger.Info("store loaded", "path", path, "logs", len(snap.Logs), "comments", len(snap.Comments))
	return fs, nil
}

// CreateLog stores a log and persists the snapshot.
func (f *FileStore) CreateLog(ctx context.Context, l logs.Log) error {
	return f.mutate(func() error { return f.MemoryStore.CreateLog(ctx, l) })
}

// UpdateLog applies fn and persists the snapshot.
func (f *FileStore) UpdateLog(ctx context.Context, id string, fn func(*logs.Log)) error {
	return f.mutate(func() error { return f.MemoryStore.UpdateLog(ctx, id, fn) })
}

// DeleteLog removes a log with its comments and persists the snapshot.
func (f *FileStore) DeleteLog(ctx context.Context, id string) error {
	return f.mutate(func() error { return f.MemoryStore.DeleteLog(ctx, id) })
}

// CreateComment stores a comment and persists the snapshot.
func (f *FileStore) CreateComment(ctx context.Context, c logs.Comment) error {
	return f.mutate(func() error { return f.MemoryStore.CreateComment(ctx, c) })
}

// DeleteComments removes comments and persists the snapshot.
func (f *FileStore) DeleteComments(ctx context.Context, ids []string) error {
	return f.mutate(func() error { return f.MemoryStore.DeleteComments(ctx, ids) })
}

// Close writes a final snapshot.
func (f *FileStore) Close() error {
	f.wmu.Lock()
	defer f.wmu.Unlock()
	return f.persist()
}

// mutate applies fn and persists the result. If the snapshot cannot be
// written the change is rolled back, so a failed call leaves memory matching
// the file. Readers may briefly see a change that is later rolled back.
func (f *FileStore) mutate(fn func() error) error {
	f.wmu.Lock()
	defer f.wmu.Unlock()

	before := f.MemoryStore.save()
	if err := fn(); err != nil {
		return err
	}
	if err := f.persist(); err != nil {
		f.MemoryStore.restore(before)
		f.logger.Error("store write failed, change rolled back", "path", f.path, "error", err)
		return err
	}
	return nil
}

// persist writes the snapshot to a temp file in the same directory and
// renames it over the target. Callers hold wmu.
func (f *FileStore) persist() error {
	snap := f.snapshot()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".logshare-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing store: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing store: %w", err)
	}

	f.logger.Debug("store persisted", "path", f.path, "logs", len(snap.Logs))
	return nil
}

func (f *FileStore) snapshot() snapshot {
	m := f.MemoryStore
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := snapshot{
		Version:  snapshotVersion,
		Logs:     make([]logs.Log, 0, len(m.order)),
		Comments: make([]logs.Comment, 0, len(m.comments)),
	}
	for _, id := range m.order {
		snap.Logs = append(snap.Logs, m.logs[id])
		for _, cid := range m.byLog[id] {
			snap.Comments = append(snap.Comments, m.comments[cid])
		}
	}
	return snap
}
