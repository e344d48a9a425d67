// Package prompts owns the system-prompt templates the skill sends to
// the model. Defaults are compiled in; an optional override directory
// holds <key>.txt files that are hot-reloaded on change, so prompt
// drift can be fixed without a redeploy.
package prompts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

const (
	ResolverSystem    = "resolver.system"
	PunctuationSystem = "punctuation.system"
	SummarySystem     = "summary.system"
)

var defaults = map[string]string{
	ResolverSystem: "Ты сопоставляешь фразу пользователя со списком элементов. " +
		"Каждый элемент задан строкой вида \"name: <название> id: <идентификатор>\". " +
		"Выбери один элемент, название которого ближе всего по смыслу к фразе пользователя, " +
		"и ответь строго его идентификатором без кавычек и пояснений. " +
		"Если подходящего элемента нет, ответь строкой null.",
	PunctuationSystem: "Исправь пунктуацию и очевидные ошибки распознавания речи в тексте. " +
		"Сохрани смысл и формулировки, ничего не добавляй. Ответь только исправленным текстом.",
	SummarySystem: "Перескажи кратко, что сделано на проекте, используя данный список " +
		"описаний трудозатрат. Ответь связным текстом в несколько предложений.",
}

// Set is a concurrency-safe prompt registry.
type Set struct {
	dir    string
	logger *slog.Logger

	mu        sync.RWMutex
	overrides map[string]string
}

// New loads overrides from dir (may be empty, meaning defaults only).
func New(dir string, logger *slog.Logger) (*Set, error) {
	s := &Set{
		dir:       strings.TrimSpace(dir),
		logger:    logger,
		overrides: make(map[string]string),
	}
	if s.dir == "" {
		return s, nil
	}
	for key := range defaults {
		if err := s.loadOverride(key); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Get returns the active template for a key. Unknown keys resolve to
// the empty string.
func (s *Set) Get(key string) string {
	s.mu.RLock()
	override, ok := s.overrides[key]
	s.mu.RUnlock()
	if ok {
		return override
	}
	return defaults[key]
}

// Watch blocks reloading override files until the context is done.
// Without an override directory it just waits for cancellation.
func (s *Set) Watch(ctx context.Context) error {
	if s.dir == "" {
		<-ctx.Done()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create prompt watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("watch prompt dir %s: %w", s.dir, err)
	}
	s.logger.Info("prompt watcher started", "dir", s.dir)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("prompt watcher stopped")
			return nil
		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			key := strings.TrimSuffix(filepath.Base(event.Name), ".txt")
			if _, known := defaults[key]; !known {
				continue
			}
			if err := s.loadOverride(key); err != nil {
				s.logger.Error("prompt reload failed", "key", key, "error", err)
				continue
			}
			s.logger.Info("prompt reloaded", "key", key)
		case err := <-watcher.Errors:
			if err != nil {
				s.logger.Error("prompt watcher error", "error", err)
			}
		}
	}
}

func (s *Set) loadOverride(key string) error {
	path := filepath.Join(s.dir, key+".txt")
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.mu.Lock()
		delete(s.overrides, key)
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("read prompt override %s: %w", path, err)
	}
	text := strings.TrimSpace(string(raw))
	s.mu.Lock()
	if text == "" {
		delete(s.overrides, key)
	} else {
		s.overrides[key] = text
	}
	s.mu.Unlock()
	return nil
}
