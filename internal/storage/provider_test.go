package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/starford/lotpad/internal/apperr"
	"github.com/starford/lotpad/internal/checksum"
)

// providers returns one instance of every backend, each on fresh state.
func providers(t *testing.T) map[string]Provider {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "files.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return map[string]Provider{
		"fs":     tempRoot(t),
		"sqlite": db,
		"memory": NewMemory(),
	}
}

func TestProviderWriteReadOverwrite(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			if err := p.Write("note.txt", "v1"); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if err := p.Write("note.txt", "v2\nline"); err != nil {
				t.Fatalf("Write: %v", err)
			}
			got, err := p.Read("note.txt")
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if got != "v2\nline" {
				t.Errorf("content = %q", got)
			}
		})
	}
}

func TestProviderReadMissing(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			_, err := p.Read("missing.txt")
			if !errors.Is(err, apperr.ErrNotFound) {
				t.Errorf("err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestProviderListOrderedWithChecksums(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			_ = p.Write("b.txt", "bee")
			_ = p.Write("a.txt", "a")
			_ = p.Write("c.txt", "")

			items, err := p.List()
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(items) != 3 {
				t.Fatalf("len = %d, want 3", len(items))
			}
			want := []string{"a.txt", "b.txt", "c.txt"}
			for i, it := range items {
				if it.Name != want[i] {
					t.Errorf("items[%d] = %q, want %q", i, it.Name, want[i])
				}
			}
			if items[1].Checksum != checksum.String("bee") {
				t.Errorf("checksum = %q", items[1].Checksum)
			}
			if items[1].Size != 3 {
				t.Errorf("size = %d, want 3", items[1].Size)
			}
		})
	}
}

func TestProviderDelete(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			_ = p.Write("del.txt", "bye")
			if err := p.Delete("del.txt"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := p.Read("del.txt"); !errors.Is(err, apperr.ErrNotFound) {
				t.Errorf("read after delete: %v", err)
			}
			if err := p.Delete("del.txt"); !errors.Is(err, apperr.ErrNotFound) {
				t.Errorf("second delete: %v", err)
			}
		})
	}
}

func TestKeysEmpty(t *testing.T) {
	keys, err := Keys(NewMemory())
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 0 {
		t.Errorf("keys = %v", keys)
	}
}

func TestProviderWrittenNamesAreListed(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			written := []string{"a.txt", "drafts/b.txt", "my notes.txt"}
			for _, k := range written {
				if err := p.Write(k, k); err != nil {
					t.Fatalf("Write(%q): %v", k, err)
				}
			}
			keys, err := Keys(p)
			if err != nil {
				t.Fatalf("Keys: %v", err)
			}
			for _, k := range written {
				found := false
				for _, got := range keys {
					found = found || got == k
				}
				if !found {
					t.Errorf("%q missing from %v", k, keys)
				}
			}
		})
	}
}

func TestProviderInvalidNames(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"", " ", ".hidden.txt", "a/../b.txt", "/abs.txt", `dir\file.txt`} {
				if err := p.Write(k, "x"); !errors.Is(err, apperr.ErrInvalidName) {
					t.Errorf("Write(%q) = %v, want ErrInvalidName", k, err)
				}
				if _, err := p.Read(k); !errors.Is(err, apperr.ErrInvalidName) {
					t.Errorf("Read(%q) = %v, want ErrInvalidName", k, err)
				}
				if err := p.Delete(k); !errors.Is(err, apperr.ErrInvalidName) {
					t.Errorf("Delete(%q) = %v, want ErrInvalidName", k, err)
				}
			}
		})
	}
}

func TestSQLiteClosedIsPersistenceError(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "closed.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	_ = db.Close()

	if _, err := db.Read("a.txt"); !errors.Is(err, apperr.ErrPersistence) {
		t.Errorf("Read = %v, want ErrPersistence", err)
	}
	if err := db.Write("a.txt", "x"); !errors.Is(err, apperr.ErrPersistence) {
		t.Errorf("Write = %v, want ErrPersistence", err)
	}
	if _, err := db.List(); !errors.Is(err, apperr.ErrPersistence) {
		t.Errorf("List = %v, want ErrPersistence", err)
	}
}
