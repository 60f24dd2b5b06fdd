package history

import (
	"os"
	"testing"

	"github.com/spf13/afero"

	"github.com/josephgoksu/promptforge/types"
)

func newTestStore(t *testing.T, cap int) *Store {
	t.Helper()
	fs := afero.NewMemMapFs()
	return NewStore(fs, "/history/log.jsonl", cap)
}

func entry(id string, ts int64) types.HistoryEntry {
	return types.HistoryEntry{ID: id, Timestamp: ts, Prompt: "prompt-" + id}
}

func TestSaveAndListNewestFirst(t *testing.T) {
	s := newTestStore(t, 10)
	for i, id := range []string{"a", "b", "c"} {
		if err := s.Save(entry(id, int64(i+1))); err != nil {
			t.Fatalf("unexpected error saving %s: %v", id, err)
		}
	}
	got, err := s.List(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0].ID != "c" || got[1].ID != "b" || got[2].ID != "a" {
		t.Fatalf("expected newest-first order c,b,a, got %v", []string{got[0].ID, got[1].ID, got[2].ID})
	}
}

func TestListRespectsLimit(t *testing.T) {
	s := newTestStore(t, 10)
	for i, id := range []string{"a", "b", "c"} {
		_ = s.Save(entry(id, int64(i+1)))
	}
	got, err := s.List(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "b" {
		t.Fatalf("expected top-2 newest-first [c,b], got %+v", got)
	}
}

func TestListOnMissingFileReturnsEmpty(t *testing.T) {
	s := newTestStore(t, 10)
	got, err := s.List(0)
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty list, got %d entries", len(got))
	}
}

func TestGetByIdFindsEntry(t *testing.T) {
	s := newTestStore(t, 10)
	_ = s.Save(entry("a", 1))
	_ = s.Save(entry("b", 2))

	got, ok, err := s.GetById("b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || got.ID != "b" {
		t.Fatalf("expected to find entry b, got ok=%v entry=%+v", ok, got)
	}

	_, ok, err = s.GetById("missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for a missing id")
	}
}

func TestCompactionTrimsToCap(t *testing.T) {
	s := newTestStore(t, 2)
	for i, id := range []string{"a", "b", "c", "d"} {
		if err := s.Save(entry(id, int64(i+1))); err != nil {
			t.Fatalf("unexpected error saving %s: %v", id, err)
		}
	}
	got, err := s.List(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected compaction to trim to cap=2, got %d entries", len(got))
	}
	if got[0].ID != "d" || got[1].ID != "c" {
		t.Fatalf("expected the two newest entries [d,c], got %+v", got)
	}
}

func TestMalformedLineSkippedNotFatal(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStore(fs, "/history/log.jsonl", 10)
	if err := s.Save(entry("a", 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Append a malformed line directly, bypassing Save's marshaling.
	f, err := fs.OpenFile("/history/log.jsonl", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("unexpected error opening file: %v", err)
	}
	if _, err := f.Write([]byte("not-json\n")); err != nil {
		t.Fatalf("unexpected error writing malformed line: %v", err)
	}
	_ = f.Close()
	if err := s.Save(entry("b", 2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.List(0)
	if err != nil {
		t.Fatalf("expected malformed lines to be skipped, not fatal: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 valid entries despite the malformed line, got %d", len(got))
	}
}

func TestClearEmptiesHistory(t *testing.T) {
	s := newTestStore(t, 10)
	_ = s.Save(entry("a", 1))
	_ = s.Save(entry("b", 2))

	if err := s.Clear(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := s.List(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no entries after Clear, got %d", len(got))
	}

	if err := s.Save(entry("c", 3)); err != nil {
		t.Fatalf("unexpected error saving after clear: %v", err)
	}
	got, err = s.List(0)
	if err != nil || len(got) != 1 {
		t.Fatalf("expected history to accept saves after Clear, got %+v err=%v", got, err)
	}
}
