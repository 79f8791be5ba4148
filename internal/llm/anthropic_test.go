package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAnthropicProvider_Complete_Success(t *testing.T) {
	var got anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Expected x-api-key test-key, got %s", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != anthropicVersion {
			t.Errorf("Unexpected anthropic-version %s", r.Header.Get("anthropic-version"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}

		_, _ = w.Write([]byte(`{
			"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-3-5-haiku-20241022",
			"content": [{"type": "text", "text": "[{\"claim\": \"a\"}]"}],
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Complete(context.Background(), CompletionRequest{
		System:      "sys",
		Prompt:      "user",
		MaxTokens:   3072,
		Temperature: 0.3,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.Text != `[{"claim": "a"}]` {
		t.Errorf("Unexpected text: %s", resp.Text)
	}
	if resp.TokensUsed != 15 {
		t.Errorf("Expected 15 tokens, got %d", resp.TokensUsed)
	}
	if got.System != "sys" || got.MaxTokens != 3072 || got.Temperature != 0.3 {
		t.Errorf("Unexpected request: %+v", got)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Errorf("Unexpected messages: %+v", got.Messages)
	}
}

func TestAnthropicProvider_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer server.Close()

	provider, _ := NewAnthropicProvider(Config{APIKey: "k", BaseURL: server.URL, Timeout: 5})

	_, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "p"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "rate_limit_error") {
		t.Errorf("Expected error type in message, got %v", err)
	}
}

func TestAnthropicProvider_Complete_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	provider, _ := NewAnthropicProvider(Config{APIKey: "k", BaseURL: server.URL, Timeout: 5})

	if _, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "p"}); err == nil {
		t.Fatal("Expected error for malformed response")
	}
}

func TestAnthropicProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/models" && r.Header.Get("x-api-key") == "good" {
			_, _ = w.Write([]byte(`{"data": []}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	good, _ := NewAnthropicProvider(Config{APIKey: "good", BaseURL: server.URL, Timeout: 5})
	if !good.IsAvailable(context.Background()) {
		t.Error("Expected provider to be available")
	}

	bad, _ := NewAnthropicProvider(Config{APIKey: "bad", BaseURL: server.URL, Timeout: 5})
	if bad.IsAvailable(context.Background()) {
		t.Error("Expected provider with bad key to be unavailable")
	}
}

func TestAnthropicProvider_RequiresKey(t *testing.T) {
	if _, err := NewAnthropicProvider(Config{}); err == nil {
		t.Error("Expected error without API key")
	}
}
