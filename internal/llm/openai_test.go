package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
)

func chatCompletion(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		ID:      "chatcmpl-123",
		Object:  "chat.completion",
		Created: 1677652288,
		Model:   "phi4",
		Choices: []openai.ChatCompletionChoice{
			{
				Index: 0,
				Message: openai.ChatCompletionMessage{
					Role:    "assistant",
					Content: content,
				},
				FinishReason: "stop",
			},
		},
		Usage: openai.Usage{TotalTokens: 100},
	}
}

func TestLlamaCppProvider_Complete_RequestShape(t *testing.T) {
	var got openai.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("Expected path /v1/chat/completions, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(chatCompletion(`[{"claim":"x"}]`))
	}))
	defer server.Close()

	provider, err := NewLlamaCppProvider(Config{BaseURL: server.URL + "/v1", Model: "phi4", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if provider.Name() != "llamacpp" {
		t.Errorf("Expected name llamacpp, got %s", provider.Name())
	}

	resp, err := provider.Complete(context.Background(), CompletionRequest{
		System:      "sys",
		Prompt:      "user prompt",
		MaxTokens:   3072,
		Temperature: 0.3,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.Text != `[{"claim":"x"}]` {
		t.Errorf("Unexpected text: %s", resp.Text)
	}
	if resp.TokensUsed != 100 {
		t.Errorf("Expected 100 tokens, got %d", resp.TokensUsed)
	}

	if got.Model != "phi4" {
		t.Errorf("Expected model phi4, got %s", got.Model)
	}
	if got.MaxTokens != 3072 {
		t.Errorf("Expected max_tokens 3072, got %d", got.MaxTokens)
	}
	if got.Temperature < 0.29 || got.Temperature > 0.31 {
		t.Errorf("Expected temperature 0.3, got %v", got.Temperature)
	}
	if got.Stream {
		t.Error("Expected a non-streaming request")
	}
	if len(got.Messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(got.Messages))
	}
	if got.Messages[0].Role != openai.ChatMessageRoleSystem || got.Messages[0].Content != "sys" {
		t.Errorf("Unexpected system message: %+v", got.Messages[0])
	}
	if got.Messages[1].Role != openai.ChatMessageRoleUser || got.Messages[1].Content != "user prompt" {
		t.Errorf("Unexpected user message: %+v", got.Messages[1])
	}
}

func TestLlamaCppProvider_DefaultURL(t *testing.T) {
	provider, err := NewLlamaCppProvider(Config{})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if provider.config.BaseURL != DefaultLlamaCppURL {
		t.Errorf("Expected default base URL, got %s", provider.config.BaseURL)
	}
}

func TestOpenAIProvider_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}); err == nil {
		t.Error("Expected error without API key")
	}
}

func TestOpenAIProvider_Complete_Auth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}
		_ = json.NewEncoder(w).Encode(chatCompletion("ok"))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Model: "gpt-4o-mini", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "p"})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Text != "ok" {
		t.Errorf("Unexpected text: %s", resp.Text)
	}
}

func TestOpenAIProvider_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "model not loaded", "type": "server_error"}}`))
	}))
	defer server.Close()

	provider, _ := NewLlamaCppProvider(Config{BaseURL: server.URL, Timeout: 5})

	_, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "p"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("Expected status in error, got %v", err)
	}
}

func TestOpenAIProvider_Complete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := chatCompletion("")
		resp.Choices = nil
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, _ := NewLlamaCppProvider(Config{BaseURL: server.URL, Timeout: 5})

	if _, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "p"}); err == nil {
		t.Fatal("Expected error for empty choices")
	}
}

func TestOpenAIProvider_Complete_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(chatCompletion("late"))
	}))
	defer server.Close()

	provider, _ := NewLlamaCppProvider(Config{BaseURL: server.URL, Timeout: 5})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := provider.Complete(ctx, CompletionRequest{Prompt: "p"}); err == nil {
		t.Fatal("Expected timeout error")
	}
}

func TestOpenAIProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"phi4","object":"model"}]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider, _ := NewLlamaCppProvider(Config{BaseURL: server.URL, Timeout: 5})
	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected provider to be available")
	}

	down, _ := NewLlamaCppProvider(Config{BaseURL: "http://127.0.0.1:1", Timeout: 1})
	if down.IsAvailable(context.Background()) {
		t.Error("Expected unreachable provider to be unavailable")
	}
}
