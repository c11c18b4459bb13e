package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/starford/lotpad/internal/apperr"
	"github.com/starford/lotpad/internal/checksum"
	"github.com/starford/lotpad/internal/models"
)

type memEntry struct {
	content   string
	updatedAt time.Time
}

// Memory is a map-backed Provider. Contents are lost when the process exits.
type Memory struct {
	mu    sync.RWMutex
	files map[string]memEntry
}

// NewMemory returns an empty in-memory provider.
func NewMemory() *Memory {
	return &Memory{files: make(map[string]memEntry)}
}

func (m *Memory) List() ([]models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.FileInfo, 0, len(m.files))
	for name, e := range m.files {
		out = append(out, models.FileInfo{
			Name:      name,
			Checksum:  checksum.String(e.content),
			Size:      len(e.content),
			UpdatedAt: e.updatedAt,
		})
	}
	sortFiles(out)
	return out, nil
}

func (m *Memory) Read(name string) (string, error) {
	if err := ValidName(name); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.files[name]
	if !ok {
		return "", fmt.Errorf("storage: read %s: %w", name, apperr.ErrNotFound)
	}
	return e.content, nil
}

func (m *Memory) Write(name, content string) error {
	if err := ValidName(name); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = memEntry{content: content, updatedAt: time.Now()}
	return nil
}

func (m *Memory) Delete(name string) error {
	if err := ValidName(name); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[name]; !ok {
		return fmt.Errorf("storage: delete %s: %w", name, apperr.ErrNotFound)
	}
	delete(m.files, name)
	return nil
}
