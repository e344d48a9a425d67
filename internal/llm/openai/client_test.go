package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/itplan/alice-worktime/internal/llm"
)

func newChatServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var request struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(request.Messages) != 2 || request.Messages[0].Role != "system" {
			t.Errorf("unexpected message layout: %+v", request.Messages)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": reply}},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Parallel()
	if _, err := New(Config{}, nil); !errors.Is(err, llm.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for missing key, got %v", err)
	}
}

func TestCompleteReturnsTrimmedReply(t *testing.T) {
	t.Parallel()
	server := newChatServer(t, "  ответ модели  ")
	client, err := New(Config{APIKey: "sk-test", BaseURL: server.URL, Model: "gpt-4o-mini"}, nil)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	reply, err := client.Complete(context.Background(), "система", "вопрос")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if reply != "ответ модели" {
		t.Fatalf("expected trimmed reply, got %q", reply)
	}
}

func TestCompleteBlankReplyIsUnavailable(t *testing.T) {
	t.Parallel()
	server := newChatServer(t, "   ")
	client, err := New(Config{APIKey: "sk-test", BaseURL: server.URL}, nil)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	if _, err := client.Complete(context.Background(), "система", "вопрос"); !errors.Is(err, llm.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for blank completion, got %v", err)
	}
}

func TestCompleteUpstreamFailureIsUnavailable(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	client, err := New(Config{APIKey: "sk-test", BaseURL: server.URL}, nil)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if _, err := client.Complete(context.Background(), "система", "вопрос"); !errors.Is(err, llm.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for upstream failure, got %v", err)
	}
}

func TestDisabledCompleter(t *testing.T) {
	t.Parallel()
	if _, err := (llm.Disabled{}).Complete(context.Background(), "a", "b"); !errors.Is(err, llm.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable from disabled completer, got %v", err)
	}
}
