// Package app wires the skill together and owns its run loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/itplan/alice-worktime/internal/auth"
	"github.com/itplan/alice-worktime/internal/config"
	"github.com/itplan/alice-worktime/internal/docflow"
	"github.com/itplan/alice-worktime/internal/llm"
	openaillm "github.com/itplan/alice-worktime/internal/llm/openai"
	"github.com/itplan/alice-worktime/internal/prompts"
	"github.com/itplan/alice-worktime/internal/refresher"
	"github.com/itplan/alice-worktime/internal/resolver"
	"github.com/itplan/alice-worktime/internal/skill"
	"github.com/itplan/alice-worktime/internal/webhook"
)

type Runtime struct {
	cfg        config.Config
	logger     *slog.Logger
	httpServer *http.Server
	refresher  *refresher.Service
	prompts    *prompts.Set
	closers    []io.Closer
}

func New(cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	promptSet, err := prompts.New(cfg.PromptDir, logger.With("component", "prompts"))
	if err != nil {
		return nil, err
	}

	var model llm.Completer = llm.Disabled{}
	if cfg.LLMAPIKey != "" {
		client, err := openaillm.New(openaillm.Config{
			APIKey:  cfg.LLMAPIKey,
			BaseURL: cfg.LLMBaseURL,
			Model:   cfg.LLMModel,
			Timeout: time.Duration(cfg.LLMTimeoutSec) * time.Second,
		}, logger.With("component", "llm"))
		if err != nil {
			return nil, err
		}
		model = client
	} else {
		logger.Warn("no LLM API key configured, name resolution falls back to exact matching")
	}

	runtime := &Runtime{cfg: cfg, logger: logger, prompts: promptSet}

	var cacheStore resolver.Store
	if cfg.CacheDBPath != "" {
		sqliteStore, err := resolver.NewSQLiteStore(cfg.CacheDBPath)
		if err != nil {
			return nil, err
		}
		runtime.closers = append(runtime.closers, sqliteStore)
		cacheStore = sqliteStore
	} else {
		memoryStore, err := resolver.NewMemoryStore(cfg.CacheMaxEntries)
		if err != nil {
			return nil, err
		}
		cacheStore = memoryStore
	}

	backend, err := docflow.New(docflow.Config{
		BaseURL:  cfg.DocflowBaseURL,
		Username: cfg.DocflowUsername,
		Password: cfg.DocflowPassword,
		Timeout:  time.Duration(cfg.DocflowTimeoutSec) * time.Second,
	}, logger)
	if err != nil {
		return nil, err
	}

	service, err := skill.New(skill.Deps{
		Backend:  backend,
		Resolver: resolver.New(cacheStore, model, promptSet, logger),
		Model:    model,
		Prompts:  promptSet,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	runtime.refresher, err = refresher.New(cfg.RefreshSchedule, func(ctx context.Context) error {
		_, err := service.RefreshWorkTypes(ctx)
		return err
	}, logger)
	if err != nil {
		return nil, err
	}

	handler := webhook.NewHandler(webhook.Deps{
		Service: service,
		Guard:   auth.NewGuard(cfg.JWTSecret),
		Logger:  logger.With("component", "webhook"),
	})
	runtime.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
	return runtime, nil
}

// Run serves the webhook and the background services until the context
// is cancelled, then drains in-flight requests.
func (r *Runtime) Run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		r.logger.Info("webhook listening", "addr", r.httpServer.Addr, "env", r.cfg.Environment)
		var err error
		if r.cfg.TLSCertFile != "" && r.cfg.TLSKeyFile != "" {
			err = r.httpServer.ListenAndServeTLS(r.cfg.TLSCertFile, r.cfg.TLSKeyFile)
		} else {
			err = r.httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("webhook server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		return r.refresher.Start(groupCtx)
	})

	if r.cfg.PromptDir != "" {
		group.Go(func() error {
			return r.prompts.Watch(groupCtx)
		})
	}

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Error("webhook shutdown failed", "error", err)
		}
		return nil
	})

	return group.Wait()
}

func (r *Runtime) Close() error {
	var firstErr error
	for _, closer := range r.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close runtime: %w", err)
		}
	}
	return firstErr
}
