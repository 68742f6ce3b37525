package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockRetry   = 20 * time.Millisecond
	lockTimeout = 5 * time.Second
)

// HistoryRepository keeps the history document in a single JSON file.
// Reads and writes take an advisory lock on a sibling .lock file so a CLI
// reader never observes a half-written document.
type HistoryRepository struct {
	path string
	lock *flock.Flock
}

func NewHistoryRepository(path string) *HistoryRepository {
	return &HistoryRepository{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

func (r *HistoryRepository) Path() string { return r.path }

func (r *HistoryRepository) Load(ctx context.Context) ([]byte, error) {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	ok, err := r.lock.TryRLockContext(ctx, lockRetry)
	if err != nil {
		return nil, fmt.Errorf("read lock %s: %w", r.lock.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("read lock %s: not acquired", r.lock.Path())
	}
	defer r.lock.Unlock()

	b, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

// Save writes to a temp file and renames it over the old document.
func (r *HistoryRepository) Save(ctx context.Context, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	ok, err := r.lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return fmt.Errorf("write lock %s: %w", r.lock.Path(), err)
	}
	if !ok {
		return fmt.Errorf("write lock %s: not acquired", r.lock.Path())
	}
	defer r.lock.Unlock()

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}
