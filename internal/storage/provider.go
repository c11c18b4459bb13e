// Package storage implements the key-value persistence used by the editor:
// a document name maps to its full text.
package storage

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/starford/lotpad/internal/apperr"
	"github.com/starford/lotpad/internal/models"
)

// Provider is the interface for document persistence.
type Provider interface {
	// List returns metadata for every stored document.
	List() ([]models.FileInfo, error)
	// Read returns the content stored under name, or an error wrapping
	// apperr.ErrNotFound.
	Read(name string) (string, error)
	// Write replaces the content stored under name.
	Write(name, content string) error
	// Delete removes name. Deleting a missing name wraps apperr.ErrNotFound.
	Delete(name string) error
}

// ValidName reports whether name can be stored and listed back unchanged.
// A name is a clean, relative, slash-separated path with no segment
// starting with a dot. Violations wrap apperr.ErrInvalidName.
func ValidName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("storage: empty name: %w", apperr.ErrInvalidName)
	case strings.ContainsRune(name, '\\'), path.IsAbs(name):
		return fmt.Errorf("storage: %q is not a relative slash path: %w", name, apperr.ErrInvalidName)
	case path.Clean(name) != name:
		return fmt.Errorf("storage: %q is not in canonical form: %w", name, apperr.ErrInvalidName)
	}
	for seg := range strings.SplitSeq(name, "/") {
		if strings.HasPrefix(seg, ".") {
			return fmt.Errorf("storage: %q has a hidden segment: %w", name, apperr.ErrInvalidName)
		}
	}
	return nil
}

// Keys returns the names of all documents in p in lexical order.
func Keys(p Provider) ([]string, error) {
	items, err := p.List()
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(items))
	for i, it := range items {
		keys[i] = it.Name
	}
	sort.Strings(keys)
	return keys, nil
}

func sortFiles(items []models.FileInfo) {
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
}
