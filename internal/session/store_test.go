package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStore_SaveLoad(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	s := sampleSession()

	if err := store.Save("work", s, false); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(store.FilePath("work")); err != nil {
		t.Fatalf("session file missing: %v", err)
	}

	loaded, err := store.Load("work")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded.Windows) != len(s.Windows) {
		t.Errorf("len(Windows) = %d, want %d", len(loaded.Windows), len(s.Windows))
	}
	if !loaded.Timestamp.Equal(s.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", loaded.Timestamp, s.Timestamp)
	}
}

func TestStore_SaveRefusesOverwrite(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	if err := store.Save("work", sampleSession(), false); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	err := store.Save("work", sampleSession(), false)
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("Save() error = %v, want ErrAlreadyExists", err)
	}
	if err := store.Save("work", sampleSession(), true); err != nil {
		t.Errorf("Save(overwrite) error = %v", err)
	}
}

func TestStore_SaveRejectsInvalid(t *testing.T) {
	store := NewStore(t.TempDir(), nil)

	if err := store.Save("../escape", sampleSession(), false); !errors.Is(err, ErrValidation) {
		t.Errorf("Save(bad name) error = %v, want ErrValidation", err)
	}

	bad := sampleSession()
	bad.Windows = append(bad.Windows, bad.Windows[0])
	if err := store.Save("dup", bad, false); !errors.Is(err, ErrValidation) {
		t.Errorf("Save(bad data) error = %v, want ErrValidation", err)
	}
	if store.Exists("dup") {
		t.Errorf("invalid session should not create a directory")
	}
}

func TestStore_LoadMissing(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	if _, err := store.Load("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestStore_ListAndDelete(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, nil)

	older := sampleSession()
	older.Timestamp = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := store.Save("old", older, false); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save("new", sampleSession(), false); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := os.MkdirAll(filepath.Join(dir, "broken"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken", FileName), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".recovery-in-progress-x.tmp"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	summaries, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("len(List()) = %d, want 3: %+v", len(summaries), summaries)
	}
	if summaries[0].Name != "new" || summaries[1].Name != "old" {
		t.Errorf("List() order = %s, %s", summaries[0].Name, summaries[1].Name)
	}
	if !summaries[2].Corrupt {
		t.Errorf("broken session should be marked corrupt")
	}
	if summaries[0].WindowCount != 5 || summaries[0].GroupCount != 2 {
		t.Errorf("summary counts = %d/%d", summaries[0].WindowCount, summaries[0].GroupCount)
	}

	if err := store.Delete("old"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if store.Exists("old") {
		t.Errorf("Delete() left the session behind")
	}
	if err := store.Delete("old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrNotFound", err)
	}
}

func TestStore_ListMissingDir(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent"), nil)
	summaries, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(summaries) != 0 {
		t.Errorf("List() = %v, want empty", summaries)
	}
}
