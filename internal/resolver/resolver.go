// Package resolver maps noisy voice-recognized entity names onto
// backend identifiers. Resolution order: exact name match, cache hit,
// then a language-model fallback with a strict output contract. One
// resolver instance serves multiple entity domains through cache
// namespaces.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/itplan/alice-worktime/internal/llm"
	"github.com/itplan/alice-worktime/internal/prompts"
)

// ErrContractViolation marks a model reply that is neither the literal
// "null" nor a well-formed identifier from the candidate list. It is
// surfaced distinctly because it signals prompt drift, not a miss.
var ErrContractViolation = errors.New("llm reply violates resolver contract")

type Candidate struct {
	ID   string
	Name string
}

// Store is the resolution cache, keyed by namespace and exact
// utterance text. Entries are shared across users: the vocabulary
// (task names, work types) is company-wide, and every hit is
// re-validated against the live candidate list before use, so a
// collision can only cost an eviction.
type Store interface {
	Get(ctx context.Context, namespace, utterance string) (string, bool, error)
	Set(ctx context.Context, namespace, utterance, id string) error
	Delete(ctx context.Context, namespace, utterance string) error
}

type Resolver struct {
	store   Store
	model   llm.Completer
	prompts *prompts.Set
	logger  *slog.Logger
}

func New(store Store, model llm.Completer, promptSet *prompts.Set, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		store:   store,
		model:   model,
		prompts: promptSet,
		logger:  logger.With("component", "resolver"),
	}
}

// Resolve returns the identifier matching the utterance, or "" when no
// candidate fits. The returned id is always present in candidates at
// call time; cache staleness is handled by eviction, never by trusting
// the cached value.
func (r *Resolver) Resolve(ctx context.Context, namespace string, candidates []Candidate, utterance string) (string, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" || len(candidates) == 0 {
		return "", nil
	}

	for _, candidate := range candidates {
		if candidate.Name == utterance {
			return candidate.ID, nil
		}
	}

	if cached, ok, err := r.store.Get(ctx, namespace, utterance); err != nil {
		r.logger.Warn("cache read failed", "namespace", namespace, "error", err)
	} else if ok {
		if containsID(candidates, cached) {
			return cached, nil
		}
		// The referenced entity disappeared from the authoritative
		// list; drop the entry and resolve from scratch.
		if err := r.store.Delete(ctx, namespace, utterance); err != nil {
			r.logger.Warn("cache eviction failed", "namespace", namespace, "error", err)
		}
	}

	id, err := r.askModel(ctx, candidates, utterance)
	if err != nil || id == "" {
		return "", err
	}
	if err := r.store.Set(ctx, namespace, utterance, id); err != nil {
		r.logger.Warn("cache write failed", "namespace", namespace, "error", err)
	}
	return id, nil
}

func (r *Resolver) askModel(ctx context.Context, candidates []Candidate, utterance string) (string, error) {
	var list strings.Builder
	for _, candidate := range candidates {
		fmt.Fprintf(&list, "name: %s id: %s\n", candidate.Name, candidate.ID)
	}
	fmt.Fprintf(&list, "\nФраза пользователя: %s", utterance)

	reply, err := r.model.Complete(ctx, r.prompts.Get(prompts.ResolverSystem), list.String())
	if err != nil {
		return "", fmt.Errorf("resolver completion: %w", err)
	}
	reply = strings.Trim(strings.TrimSpace(reply), `"'`)
	if strings.EqualFold(reply, "null") {
		return "", nil
	}
	if _, err := uuid.Parse(reply); err != nil {
		return "", fmt.Errorf("%w: reply %q is not an id", ErrContractViolation, truncate(reply, 120))
	}
	if !containsID(candidates, reply) {
		return "", fmt.Errorf("%w: id %s is not among candidates", ErrContractViolation, reply)
	}
	return reply, nil
}

func containsID(candidates []Candidate, id string) bool {
	for _, candidate := range candidates {
		if candidate.ID == id {
			return true
		}
	}
	return false
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
