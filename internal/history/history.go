// Package history implements the append-only prompt history store of
// spec.md §4.10/§6: a JSONL file under a user-scoped directory, compacted
// opportunistically, tolerant of malformed lines.
//
// Grounded on store/file_store.go's atomic-write idiom (temp file +
// rename), simplified from that file's whole-document rewrite to
// append-only writes plus periodic compaction.
package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"

	"github.com/josephgoksu/promptforge/types"
)

// locker abstracts gofrs/flock so tests against afero.NewMemMapFs() don't
// try to lock a real OS path.
type locker interface {
	Lock() error
	Unlock() error
}

type noopLocker struct{}

func (noopLocker) Lock() error   { return nil }
func (noopLocker) Unlock() error { return nil }

// Store is the JSONL-backed history log.
type Store struct {
	fs        afero.Fs
	path      string
	cap       int
	newLocker func(path string) locker
}

// NewStore builds a Store writing to path via fs, compacting once the
// entry count exceeds cap (spec.md §4.10: "compaction triggers when
// length exceeds N"). cap <= 0 uses types.DefaultHistoryCap.
func NewStore(fs afero.Fs, path string, cap int) *Store {
	if cap <= 0 {
		cap = types.DefaultHistoryCap
	}
	s := &Store{fs: fs, path: path, cap: cap}
	if _, ok := fs.(*afero.OsFs); ok {
		s.newLocker = func(p string) locker { return flock.New(p) }
	} else {
		s.newLocker = func(p string) locker { return noopLocker{} }
	}
	return s
}

// Save appends entry as one JSON line, then compacts if the file has
// grown past cap entries.
func (s *Store) Save(entry types.HistoryEntry) error {
	lk := s.newLocker(s.path)
	if err := lk.Lock(); err != nil {
		return fmt.Errorf("history: lock %s: %w", s.path, err)
	}
	defer func() { _ = lk.Unlock() }()

	if dir := parentDir(s.path); dir != "" && dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("history: create dir %s: %w", dir, err)
		}
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("history: marshal entry: %w", err)
	}

	f, err := s.fs.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("history: open %s: %w", s.path, err)
	}
	_, writeErr := f.Write(append(line, '\n'))
	closeErr := f.Close()
	if writeErr != nil {
		return fmt.Errorf("history: append to %s: %w", s.path, writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("history: close %s: %w", s.path, closeErr)
	}

	return s.compactIfNeededLocked()
}

// compactIfNeededLocked must run while the caller holds the file lock.
func (s *Store) compactIfNeededLocked() error {
	entries, err := s.readAll()
	if err != nil {
		return err
	}
	if len(entries) <= s.cap {
		return nil
	}
	kept := entries[len(entries)-s.cap:]
	return s.rewrite(kept)
}

// rewrite atomically replaces the history file's contents with entries,
// oldest first (temp file + rename, grounded on store/file_store.go).
func (s *Store) rewrite(entries []types.HistoryEntry) error {
	var sb strings.Builder
	for _, e := range entries {
		line, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("history: marshal entry %s: %w", e.ID, err)
		}
		sb.Write(line)
		sb.WriteByte('\n')
	}
	tmpPath := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmpPath, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("history: write temp file %s: %w", tmpPath, err)
	}
	if err := s.fs.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("history: rename temp file %s: %w", tmpPath, err)
	}
	return nil
}

// readAll reads every entry oldest-first, skipping malformed lines with a
// logged warning instead of failing (spec.md §4.10). A missing file
// returns an empty slice, not an error.
func (s *Store) readAll() ([]types.HistoryEntry, error) {
	f, err := s.fs.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("history: open %s: %w", s.path, err)
	}
	defer f.Close()

	var entries []types.HistoryEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry types.HistoryEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			slog.Warn("history: skipping malformed line", "file", s.path, "line", lineNo, "error", err)
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("history: scan %s: %w", s.path, err)
	}
	return entries, nil
}

// List returns up to limit entries, newest first. limit <= 0 returns all.
func (s *Store) List(limit int) ([]types.HistoryEntry, error) {
	entries, err := s.readAll()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Timestamp > entries[j].Timestamp })
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// GetById returns the entry with the given id, if present.
func (s *Store) GetById(id string) (types.HistoryEntry, bool, error) {
	entries, err := s.readAll()
	if err != nil {
		return types.HistoryEntry{}, false, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, true, nil
		}
	}
	return types.HistoryEntry{}, false, nil
}

// Clear removes all history, atomically replacing the file with an empty
// one rather than deleting it outright (keeps the compaction/rename path
// uniform and avoids racing a concurrent Save's MkdirAll).
func (s *Store) Clear() error {
	lk := s.newLocker(s.path)
	if err := lk.Lock(); err != nil {
		return fmt.Errorf("history: lock %s: %w", s.path, err)
	}
	defer func() { _ = lk.Unlock() }()
	return s.rewrite(nil)
}

func parentDir(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return ""
	}
	return path[:idx]
}
