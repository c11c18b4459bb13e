// Package prompt provides non-interactive implementations of the editor's
// file-name prompt.
package prompt

import (
	"context"

	"github.com/starford/lotpad/internal/apperr"
)

// Static answers every prompt with the same string. Static("") always
// cancels.
type Static string

func (a Static) Prompt(context.Context, string) (string, error) {
	if a == "" {
		return "", apperr.ErrPromptCancelled
	}
	return string(a), nil
}

// Func adapts a function to the editor.Prompter interface.
type Func func(ctx context.Context, message string) (string, error)

func (f Func) Prompt(ctx context.Context, message string) (string, error) {
	return f(ctx, message)
}

type answerKey struct{}

// WithAnswer returns a context carrying the answer to the next prompt.
// Request-driven surfaces read the file name from the request and attach it
// here before invoking the session.
func WithAnswer(ctx context.Context, answer string) context.Context {
	return context.WithValue(ctx, answerKey{}, answer)
}

// Context answers prompts from the value set by WithAnswer. A context
// without an answer, or with an empty one, cancels.
type Context struct{}

func (Context) Prompt(ctx context.Context, _ string) (string, error) {
	answer, _ := ctx.Value(answerKey{}).(string)
	if answer == "" {
		return "", apperr.ErrPromptCancelled
	}
	return answer, nil
}
