package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/lotpad/internal/apperr"
	"github.com/starford/lotpad/internal/checksum"
	"github.com/starford/lotpad/internal/models"
)

const tmpPattern = ".lotpad-tmp-*"

// FS implements Provider backed by the local file system. Each document is
// one file below root; the document name is its slash-separated relative path.
type FS struct {
	root string // absolute path
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute directory backing the provider.
func (f *FS) Root() string {
	return f.root
}

// safePath checks name with ValidName and resolves it against the root.
func (f *FS) safePath(name string) (string, error) {
	if err := ValidName(name); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(filepath.Join(f.root, filepath.FromSlash(name)))
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w: %w", apperr.ErrInvalidName, err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: path escapes root: %s: %w", name, apperr.ErrInvalidName)
	}
	return abs, nil
}

// List walks the root and returns metadata for every regular file whose
// name does not start with a dot.
func (f *FS) List() ([]models.FileInfo, error) {
	var out []models.FileInfo
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if Hidden(d.Name()) && p != f.root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(f.root, p)
		out = append(out, models.FileInfo{
			Name:      filepath.ToSlash(rel),
			Checksum:  checksum.Sum(data),
			Size:      len(data),
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w: %w", apperr.ErrPersistence, err)
	}
	sortFiles(out)
	return out, nil
}

// Read returns the content of a stored file.
func (f *FS) Read(name string) (string, error) {
	abs, err := f.safePath(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("storage: read %s: %w", name, apperr.ErrNotFound)
		}
		return "", fmt.Errorf("storage: read %s: %w: %w", name, apperr.ErrPersistence, err)
	}
	return string(data), nil
}

// Write atomically writes content: tmp file → fsync → rename.
func (f *FS) Write(name, content string) error {
	abs, err := f.safePath(name)
	if err != nil {
		return err
	}
	if err := writeAtomic(abs, content); err != nil {
		return fmt.Errorf("storage: write %s: %w: %w", name, apperr.ErrPersistence, err)
	}
	return nil
}

func writeAtomic(abs, content string) error {
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(content); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes a stored file.
func (f *FS) Delete(name string) error {
	abs, err := f.safePath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("storage: delete %s: %w", name, apperr.ErrNotFound)
		}
		return fmt.Errorf("storage: delete %s: %w: %w", name, apperr.ErrPersistence, err)
	}
	return nil
}

// Hidden reports whether a base name is excluded from listings.
// Temp files written by Write are always hidden.
func Hidden(base string) bool {
	return strings.HasPrefix(base, ".")
}
