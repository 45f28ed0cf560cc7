package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	store := NewStore(path)

	st, err := store.Load()
	if err != nil {
		t.Fatalf("Load() on missing file error = %v", err)
	}
	if st != nil {
		t.Fatalf("Load() on missing file = %+v, want nil", st)
	}

	want := &State{UserID: "u1", SessionID: "s1", Secret: "tok"}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	st, err = store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if st == nil || *st != *want {
		t.Errorf("Load() = %+v, want %+v", st, want)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("session file permission = %o, want 0600", perm)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if st, _ := store.Load(); st != nil {
		t.Errorf("Load() after Clear = %+v, want nil", st)
	}
	// Clearing twice is fine.
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}
