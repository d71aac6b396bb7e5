// ABOUTME: Tests for durable session storage
// ABOUTME: Verifies the three slots round-trip through the session file

package session

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0600)
}

func TestFileStore_LoadMissing(t *testing.T) {
	store := NewFileStore(t.TempDir())

	rec, err := store.Load()
	if err != nil {
		t.Fatalf("Load on missing file failed: %v", err)
	}
	if rec != (Record{}) {
		t.Errorf("expected empty record, got %+v", rec)
	}
}

func TestFileStore_SaveLoadClear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "inventory-admin")
	store := NewFileStore(dir)

	want := Record{Token: "T1", Username: "a@pti-sa.com.co", Role: "ADMIN"}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("session file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("session file mode = %o, want 600", perm)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Errorf("expected session file removed, stat err = %v", err)
	}

	// Clearing twice is fine
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear failed: %v", err)
	}
}

func TestFileStore_SaveWithoutDir(t *testing.T) {
	store := NewFileStore("")
	if err := store.Save(Record{Token: "T1"}); err == nil {
		t.Error("expected error when no config directory is set")
	}
}
