// Package openai adapts an OpenAI-compatible chat completion API to
// the llm.Completer contract.
package openai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/itplan/alice-worktime/internal/llm"
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type Client struct {
	api    *openai.Client
	model  string
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: missing API key", llm.ErrUnavailable)
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	apiConfig := openai.DefaultConfig(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) != "" {
		apiConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	apiConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		api:    openai.NewClientWithConfig(apiConfig),
		model:  cfg.Model,
		logger: logger,
	}, nil
}

// Complete runs one chat completion at temperature zero. The caller
// owns reply validation; this layer only guarantees a non-empty string
// or an error.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	started := time.Now()
	response, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", llm.ErrUnavailable, err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choice list", llm.ErrUnavailable)
	}
	reply := strings.TrimSpace(response.Choices[0].Message.Content)
	c.logger.Debug("chat completion finished",
		"model", c.model,
		"duration_ms", time.Since(started).Milliseconds(),
		"reply_len", len(reply))
	if reply == "" {
		return "", fmt.Errorf("%w: blank completion", llm.ErrUnavailable)
	}
	return reply, nil
}
