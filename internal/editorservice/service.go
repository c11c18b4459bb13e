// Package editorservice owns the process's single editor session and makes
// it usable from concurrent request handlers.
package editorservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/lotpad/internal/apperr"
	"github.com/starford/lotpad/internal/editor"
	"github.com/starford/lotpad/internal/models"
	"github.com/starford/lotpad/internal/prompt"
	"github.com/starford/lotpad/internal/sse"
	"github.com/starford/lotpad/internal/storage"
)

// Publisher receives the events the service emits.
type Publisher interface {
	Publish(sse.Event)
	PublishFileEvent(kind, name string)
}

// Service serialises operations on the session. Every operation is atomic
// with respect to the others.
type Service struct {
	mu      sync.Mutex
	session *editor.Session
	store   storage.Provider

	pub        Publisher
	logger     *slog.Logger
	fileEvents bool
	ext        string
	pending    []editor.Change
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets where change events go.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.pub = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithFileEvents controls whether saves publish file.* events. Disable it
// when a watcher already reports changes to the store.
func WithFileEvents(enabled bool) Option {
	return func(s *Service) { s.fileEvents = enabled }
}

// WithExtension sets the extension appended to saved file names.
func WithExtension(ext string) Option {
	return func(s *Service) { s.ext = ext }
}

// NewService creates a service around a fresh session writing to store.
// File names for SaveAs come from the name argument of Save and SaveAs.
func NewService(store storage.Provider, opts ...Option) *Service {
	s := &Service{
		store:      store,
		logger:     slog.Default(),
		fileEvents: true,
		ext:        editor.DefaultExtension,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.session = editor.New(store,
		editor.WithPrompter(prompt.Context{}),
		editor.WithListener(listener{s}),
		editor.WithExtension(s.ext),
	)
	return s
}

// listener queues changes while the service lock is held; they are
// published after the operation returns.
type listener struct{ s *Service }

func (l listener) Changed(c editor.Change) {
	l.s.pending = append(l.s.pending, c)
}

// State returns the current session state.
func (s *Service) State(_ context.Context) editor.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Snapshot()
}

// Edit replaces the buffer.
func (s *Service) Edit(_ context.Context, text string) (editor.State, error) {
	return s.do(editor.OpEdit, func() error { return s.session.Edit(text) })
}

// Save writes the buffer. name answers the file-name prompt when the
// session has no file name yet.
func (s *Service) Save(ctx context.Context, name string) (editor.State, error) {
	return s.do(editor.OpSave, func() error { return s.session.Save(prompt.WithAnswer(ctx, name)) })
}

// SaveAs writes the buffer under name. An empty name is a cancelled prompt.
func (s *Service) SaveAs(ctx context.Context, name string) (editor.State, error) {
	return s.do(editor.OpSaveAs, func() error { return s.session.SaveAs(prompt.WithAnswer(ctx, name)) })
}

// NewFile resets the session.
func (s *Service) NewFile(_ context.Context) (editor.State, error) {
	return s.do(editor.OpNewFile, s.session.NewFile)
}

// Open reads name from storage and loads it into the session.
func (s *Service) Open(_ context.Context, name string) (editor.State, error) {
	return s.do(editor.OpOpen, func() error {
		content, err := s.store.Read(name)
		if err != nil {
			return err
		}
		return s.session.Open(name, content)
	})
}

// Files lists stored documents.
func (s *Service) Files(_ context.Context) ([]models.FileInfo, error) {
	items, err := s.store.List()
	if err != nil {
		return nil, fmt.Errorf("editorservice: list: %w: %w", apperr.ErrPersistence, err)
	}
	if items == nil {
		items = []models.FileInfo{}
	}
	return items, nil
}

// ReadFile returns the stored content of name.
func (s *Service) ReadFile(_ context.Context, name string) (string, error) {
	return s.store.Read(name)
}

// DeleteFile removes name from storage. The session keeps its buffer and
// file name; saving again recreates the file.
func (s *Service) DeleteFile(_ context.Context, name string) error {
	if err := s.store.Delete(name); err != nil {
		return err
	}
	s.logger.Info("file deleted", slog.String("name", name))
	if s.fileEvents && s.pub != nil {
		s.pub.PublishFileEvent("deleted", name)
	}
	return nil
}

func (s *Service) do(op editor.Op, fn func() error) (editor.State, error) {
	s.mu.Lock()
	err := fn()
	state := s.session.Snapshot()
	changes := s.pending
	s.pending = nil
	s.mu.Unlock()

	if err != nil {
		if errors.Is(err, apperr.ErrPromptCancelled) {
			s.logger.Debug("editor: prompt cancelled", slog.String("op", op.String()))
		} else {
			s.logger.Warn("editor: operation failed",
				slog.String("op", op.String()),
				slog.String("mode", state.Mode.String()),
				slog.String("error", err.Error()))
		}
		return state, err
	}

	for _, c := range changes {
		s.report(c)
	}
	return state, nil
}

func (s *Service) report(c editor.Change) {
	s.logger.Info("editor: transition",
		slog.String("op", c.Op.String()),
		slog.String("from", c.From.String()),
		slog.String("to", c.To.String()),
		slog.String("label", c.Label))

	if s.pub == nil {
		return
	}
	s.pub.Publish(sse.Event{Type: sse.TypeEditorChanged, Data: c})
	if c.Wrote && s.fileEvents {
		s.pub.PublishFileEvent("updated", c.Filename)
	}
}
