package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"

	"github.com/josephgoksu/promptforge/types"
)

// ErrSessionNotFound is returned by Store.Load when no session file
// exists for the given id.
var ErrSessionNotFound = errors.New("wizard: session not found")

// locker abstracts gofrs/flock so tests can substitute a no-op when
// exercising the in-memory afero filesystem.
type locker interface {
	Lock() error
	Unlock() error
}

type noopLocker struct{}

func (noopLocker) Lock() error   { return nil }
func (noopLocker) Unlock() error { return nil }

// Store persists one JSON file per session id under dir, atomically
// (temp file + rename), guarded by a file lock. Grounded on
// store/file_store.go's flock + atomic-rename save cycle.
type Store struct {
	fs        afero.Fs
	dir       string
	newLocker func(path string) locker
}

// NewStore builds a Store backed by fs, rooted at dir. Pass
// afero.NewOsFs() for real persistence; afero.NewMemMapFs() for tests
// (which also disables file locking, since flock always targets the
// real OS filesystem).
func NewStore(fs afero.Fs, dir string) *Store {
	s := &Store{fs: fs, dir: dir}
	if _, ok := fs.(*afero.OsFs); ok {
		s.newLocker = func(path string) locker { return flock.New(path) }
	} else {
		s.newLocker = func(path string) locker { return noopLocker{} }
	}
	return s
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Load reads and unmarshals the session record for id.
func (s *Store) Load(id string) (types.SessionRecord, error) {
	var rec types.SessionRecord
	data, err := afero.ReadFile(s.fs, s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return rec, ErrSessionNotFound
		}
		return rec, fmt.Errorf("wizard: read session %s: %w", id, err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("wizard: decode session %s: %w", id, err)
	}
	return rec, nil
}

// Save atomically writes rec to its session file: marshal, write to
// <id>.json.tmp, rename over <id>.json, under a file lock.
func (s *Store) Save(rec types.SessionRecord) error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("wizard: create session dir %s: %w", s.dir, err)
	}

	finalPath := s.path(rec.ID)
	lk := s.newLocker(finalPath)
	if err := lk.Lock(); err != nil {
		return fmt.Errorf("wizard: lock session %s: %w", rec.ID, err)
	}
	defer func() { _ = lk.Unlock() }()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("wizard: marshal session %s: %w", rec.ID, err)
	}

	tmpPath := finalPath + ".tmp"
	if err := afero.WriteFile(s.fs, tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("wizard: write temp session file %s: %w", tmpPath, err)
	}
	if err := s.fs.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("wizard: rename temp session file %s: %w", tmpPath, err)
	}
	return nil
}
