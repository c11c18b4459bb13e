// Package editor implements the text editor session: a document buffer, the
// file name it was last saved under, and the Mode that decides how each of
// the five operations behaves.
//
// Every (operation, mode) pair is listed in a single dispatch table; an
// operation computes the next buffer, file name and mode, and the session
// commits them only when the step succeeds. A failed or cancelled step
// leaves the session exactly as it was.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/starford/lotpad/internal/apperr"
)

// DefaultExtension is appended to prompted file names that lack it.
const DefaultExtension = ".txt"

// PromptMessage is shown when asking the user for a file name.
const PromptMessage = "Enter a File Name"

// Store is the persistence the session writes documents to.
type Store interface {
	Write(name, content string) error
}

// Prompter asks the user for a string. Returning "" or an error wrapping
// apperr.ErrPromptCancelled means the user declined.
type Prompter interface {
	Prompt(ctx context.Context, message string) (string, error)
}

// Listener is notified after each applied transition.
type Listener interface {
	Changed(Change)
}

// Change describes one applied transition.
type Change struct {
	Op       Op     `json:"op"`
	From     Mode   `json:"from"`
	To       Mode   `json:"to"`
	Label    string `json:"label"`
	Filename string `json:"filename,omitempty"`
	// Wrote is true when the transition wrote the buffer to the store.
	Wrote bool `json:"wrote"`
}

// State is a point-in-time copy of the session.
type State struct {
	Text     string `json:"text"`
	Filename string `json:"filename,omitempty"`
	Mode     Mode   `json:"mode"`
	Label    string `json:"label"`
}

// Session is a single editor instance. It is not safe for concurrent use;
// callers serialise access.
type Session struct {
	text     string
	filename string
	mode     Mode

	store    Store
	prompter Prompter
	listener Listener
	ext      string
}

// Option configures a Session.
type Option func(*Session)

// WithPrompter sets the prompter used by SaveAs.
func WithPrompter(p Prompter) Option {
	return func(s *Session) { s.prompter = p }
}

// WithListener sets the listener notified after transitions.
func WithListener(l Listener) Option {
	return func(s *Session) { s.listener = l }
}

// WithExtension overrides DefaultExtension. An empty ext disables
// normalisation.
func WithExtension(ext string) Option {
	return func(s *Session) { s.ext = ext }
}

// New returns a session in CleanUnsaved mode with an empty buffer.
func New(store Store, opts ...Option) *Session {
	s := &Session{
		mode:  CleanUnsaved,
		store: store,
		ext:   DefaultExtension,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Text returns the buffer.
func (s *Session) Text() string { return s.text }

// Filename returns the name the buffer was last saved under or opened from.
func (s *Session) Filename() string { return s.filename }

// Mode returns the current mode.
func (s *Session) Mode() Mode { return s.mode }

// Label returns the display label: "_", "*", "name" or "name *".
func (s *Session) Label() string {
	return Label(s.mode, s.filename)
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	return State{
		Text:     s.text,
		Filename: s.filename,
		Mode:     s.mode,
		Label:    s.Label(),
	}
}

// Edit replaces the buffer with text.
func (s *Session) Edit(text string) error {
	return s.dispatch(OpEdit, request{text: text})
}

// Save writes the buffer under the current file name, or behaves like
// SaveAs when there is none.
func (s *Session) Save(ctx context.Context) error {
	return s.dispatch(OpSave, request{ctx: ctx})
}

// SaveAs prompts for a new file name and writes the buffer under it.
// A declined prompt returns an error wrapping apperr.ErrPromptCancelled
// and changes nothing.
func (s *Session) SaveAs(ctx context.Context) error {
	return s.dispatch(OpSaveAs, request{ctx: ctx})
}

// NewFile clears the buffer and forgets the file name.
func (s *Session) NewFile() error {
	return s.dispatch(OpNewFile, request{})
}

// Open loads content as the buffer, associated with name.
func (s *Session) Open(name, content string) error {
	return s.dispatch(OpOpen, request{name: name, content: content})
}

type request struct {
	ctx     context.Context
	text    string
	name    string
	content string
}

// next is the state an action proposes.
type next struct {
	mode     Mode
	text     string
	filename string
	wrote    bool
}

type action func(s *Session, r request) (next, error)

var transitions = [numOps][numModes]action{
	OpEdit: {
		CleanUnsaved: editTo(DirtyUnsaved),
		DirtyUnsaved: editTo(DirtyUnsaved),
		CleanSaved:   editTo(DirtySaved),
		DirtySaved:   editTo(DirtySaved),
	},
	OpSave: {
		CleanUnsaved: promptAndWrite,
		DirtyUnsaved: promptAndWrite,
		CleanSaved:   writeCurrent,
		DirtySaved:   writeCurrent,
	},
	OpSaveAs: {
		CleanUnsaved: promptAndWrite,
		DirtyUnsaved: promptAndWrite,
		CleanSaved:   promptAndWrite,
		DirtySaved:   promptAndWrite,
	},
	OpNewFile: {
		CleanUnsaved: reset,
		DirtyUnsaved: reset,
		CleanSaved:   reset,
		DirtySaved:   reset,
	},
	OpOpen: {
		CleanUnsaved: load,
		DirtyUnsaved: load,
		CleanSaved:   load,
		DirtySaved:   load,
	},
}

func (s *Session) dispatch(op Op, r request) error {
	if op >= numOps || s.mode >= numModes {
		return fmt.Errorf("editor: %s in %s: %w", op, s.mode, apperr.ErrInvalidTransition)
	}
	n, err := transitions[op][s.mode](s, r)
	if err != nil {
		return err
	}
	if n.mode.Saved() == (n.filename == "") {
		return fmt.Errorf("editor: %s would leave %s with filename %q: %w",
			op, n.mode, n.filename, apperr.ErrInvalidTransition)
	}

	from := s.mode
	s.mode, s.text, s.filename = n.mode, n.text, n.filename

	if s.listener != nil && (op != OpEdit || from != n.mode) {
		s.listener.Changed(Change{
			Op:       op,
			From:     from,
			To:       n.mode,
			Label:    s.Label(),
			Filename: s.filename,
			Wrote:    n.wrote,
		})
	}
	return nil
}

func editTo(m Mode) action {
	return func(s *Session, r request) (next, error) {
		return next{mode: m, text: r.text, filename: s.filename}, nil
	}
}

func writeCurrent(s *Session, _ request) (next, error) {
	if s.filename == "" {
		return next{}, fmt.Errorf("editor: save in %s without filename: %w", s.mode, apperr.ErrInvalidTransition)
	}
	if err := s.write(s.filename); err != nil {
		return next{}, err
	}
	return next{mode: CleanSaved, text: s.text, filename: s.filename, wrote: true}, nil
}

func promptAndWrite(s *Session, r request) (next, error) {
	if s.prompter == nil {
		return next{}, fmt.Errorf("editor: no prompter configured: %w", apperr.ErrInvalidTransition)
	}
	ctx := r.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	answer, err := s.prompter.Prompt(ctx, PromptMessage)
	if err != nil {
		if errors.Is(err, apperr.ErrPromptCancelled) {
			return next{}, err
		}
		return next{}, fmt.Errorf("editor: prompt: %w", err)
	}
	name := NormalizeName(answer, s.ext)
	if name == "" {
		return next{}, fmt.Errorf("editor: empty file name: %w", apperr.ErrPromptCancelled)
	}
	if err := s.write(name); err != nil {
		return next{}, err
	}
	return next{mode: CleanSaved, text: s.text, filename: name, wrote: true}, nil
}

func reset(*Session, request) (next, error) {
	return next{mode: CleanUnsaved}, nil
}

func load(_ *Session, r request) (next, error) {
	if r.name == "" {
		return next{}, fmt.Errorf("editor: open without filename: %w", apperr.ErrInvalidTransition)
	}
	return next{mode: CleanSaved, text: r.content, filename: r.name}, nil
}

func (s *Session) write(name string) error {
	if s.store == nil {
		return fmt.Errorf("editor: no store configured: %w", apperr.ErrPersistence)
	}
	if err := s.store.Write(name, s.text); err != nil {
		return fmt.Errorf("editor: write %s: %w: %w", name, apperr.ErrPersistence, err)
	}
	return nil
}

// NormalizeName trims name and appends ext unless already present.
// It returns "" for a blank name.
func NormalizeName(name, ext string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if ext != "" && !strings.HasSuffix(name, ext) {
		name += ext
	}
	return name
}
