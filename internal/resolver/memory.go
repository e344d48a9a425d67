package resolver

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMemoryEntries = 512

// MemoryStore is a bounded in-process cache, the default for a
// single-instance deployment.
type MemoryStore struct {
	cache *lru.Cache[string, string]
}

func NewMemoryStore(maxEntries int) (*MemoryStore, error) {
	if maxEntries <= 0 {
		maxEntries = defaultMemoryEntries
	}
	cache, err := lru.New[string, string](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create resolution cache: %w", err)
	}
	return &MemoryStore{cache: cache}, nil
}

func (s *MemoryStore) Get(_ context.Context, namespace, utterance string) (string, bool, error) {
	id, ok := s.cache.Get(memoryKey(namespace, utterance))
	return id, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, namespace, utterance, id string) error {
	s.cache.Add(memoryKey(namespace, utterance), id)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, namespace, utterance string) error {
	s.cache.Remove(memoryKey(namespace, utterance))
	return nil
}

func memoryKey(namespace, utterance string) string {
	return namespace + "\x00" + utterance
}
