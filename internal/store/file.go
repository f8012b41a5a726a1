package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"ranker/internal/logging"
	"ranker/internal/tournament"
	"ranker/internal/types"
)

const stateExt = ".json"

// FileStore keeps each tournament in <dir>/<id>.json.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store needs a directory: %w", types.ErrInvalidArgument)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %v: %w", err, types.ErrIO)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory holding the snapshots.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+stateExt)
}

// Save writes st atomically: a temporary file is written and synced, then
// renamed over the previous snapshot.
func (s *FileStore) Save(ctx context.Context, st *tournament.State) error {
	if err := checkState(st); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	timer := logging.StartTimer(logging.CategoryStore, "FileStore.Save")
	defer timer.Stop()

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tournament %s: %v: %w", st.ID, err, types.ErrIO)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+st.ID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to save tournament %s: %v: %w", st.ID, err, types.ErrIO)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to save tournament %s: %v: %w", st.ID, err, types.ErrIO)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to save tournament %s: %v: %w", st.ID, err, types.ErrIO)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to save tournament %s: %v: %w", st.ID, err, types.ErrIO)
	}
	if err := os.Rename(tmpName, s.path(st.ID)); err != nil {
		cleanup()
		return fmt.Errorf("failed to save tournament %s: %v: %w", st.ID, err, types.ErrIO)
	}

	logging.Store("saved tournament %s (round %d) to %s", st.ID, st.Round, s.path(st.ID))
	return nil
}

// Load reads the snapshot with the given ID.
func (s *FileStore) Load(ctx context.Context, id string) (*tournament.State, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(s.path(id))
}

func (s *FileStore) read(path string) (*tournament.State, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v: %w", path, err, types.ErrIO)
	}

	var st tournament.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("corrupt save %s: %v: %w", path, err, types.ErrIO)
	}
	return &st, nil
}

// Latest returns the most recently updated snapshot.
func (s *FileStore) Latest(ctx context.Context) (*tournament.State, error) {
	states, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	if len(states) == 0 {
		return nil, fmt.Errorf("no saved tournaments in %s: %w", s.dir, ErrNotFound)
	}
	return states[0], nil
}

// List summarizes every readable snapshot, most recently updated first.
func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	states, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, len(states))
	for i, st := range states {
		out[i] = Summarize(st)
	}
	return out, nil
}

// all loads every snapshot, newest first. Unreadable files are logged and
// skipped so one corrupt save does not hide the others.
func (s *FileStore) all(ctx context.Context) ([]*tournament.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %v: %w", s.dir, err, types.ErrIO)
	}

	var states []*tournament.State
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != stateExt {
			continue
		}
		st, err := s.read(filepath.Join(s.dir, name))
		if err != nil {
			logging.StoreError("skipping %s: %v", name, err)
			continue
		}
		states = append(states, st)
	}

	sort.SliceStable(states, func(i, j int) bool {
		return states[i].UpdatedAt.After(states[j].UpdatedAt)
	})
	return states, nil
}

// Delete removes the snapshot with the given ID.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to delete %s: %v: %w", id, err, types.ErrIO)
	}
	logging.Store("deleted tournament %s", id)
	return nil
}

// Close is a no-op; FileStore holds no open handles.
func (s *FileStore) Close() error { return nil }
