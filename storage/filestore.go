package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/poiesic/boox/core"
)

// FileStore keeps a state snapshot in a single compressed file.
// Saves write a temporary file next to the target and rename it into place.
type FileStore struct {
	mu     sync.Mutex
	path   string
	format Format
	closed bool
	last   SnapshotInfo
}

var _ StateStore = (*FileStore)(nil)

// NewFileStore returns a store for the snapshot at path. Loading detects
// the format from the file; saving uses format.
func NewFileStore(path string, format Format) *FileStore {
	return &FileStore{path: path, format: format}
}

// Path returns the snapshot file path.
func (s *FileStore) Path() string {
	return s.path
}

// LastSaved describes the most recent successful save.
func (s *FileStore) LastSaved() SnapshotInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *FileStore) SaveState(ctx context.Context, state *core.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	info, err := WriteSnapshot(tmp, state, s.format)
	if err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	s.last = info
	return nil
}

func (s *FileStore) LoadState(ctx context.Context) (*core.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()
	return ReadSnapshot(f)
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
