// Package llm defines the completion contract the skill consumes. The
// model is an untrusted collaborator: callers validate every reply
// against their own output contract.
package llm

import (
	"context"
	"errors"
)

var ErrUnavailable = errors.New("llm unavailable")

// Completer produces one completion for a system/user prompt pair.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Disabled is the no-model fallback wired when no API key is
// configured. Every call reports ErrUnavailable.
type Disabled struct{}

func (Disabled) Complete(context.Context, string, string) (string, error) {
	return "", ErrUnavailable
}
