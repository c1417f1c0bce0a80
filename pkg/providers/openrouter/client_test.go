package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"rotor-hq/rotor/pkg/providers"
)

func TestClient_Send(t *testing.T) {
	var gotAuth string
	var gotBody completionRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "the reply"}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, Model: "test-model"})

	reply, err := client.Send(context.Background(), "sk-or-123", &providers.ChatRequest{
		Prompt:       "hello",
		SystemPrompt: "be brief",
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if reply != "the reply" {
		t.Errorf("reply = %q", reply)
	}
	if gotAuth != "Bearer sk-or-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody.Model != "test-model" {
		t.Errorf("model = %q", gotBody.Model)
	}
	if len(gotBody.Messages) != 2 ||
		gotBody.Messages[0].Role != "system" || gotBody.Messages[0].Content != "be brief" ||
		gotBody.Messages[1].Role != "user" || gotBody.Messages[1].Content != "hello" {
		t.Errorf("messages = %+v", gotBody.Messages)
	}
}

func TestClient_SendEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})

	_, err := client.Send(context.Background(), "k", &providers.ChatRequest{Prompt: "p"})
	var trErr *providers.TransientError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected *TransientError for empty choices, got %v", err)
	}
}

func TestClient_SendRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exhausted", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})

	_, err := client.Send(context.Background(), "k", &providers.ChatRequest{Prompt: "p"})
	var rlErr *providers.RateLimitError
	if !errors.As(err, &rlErr) {
		t.Fatalf("expected *RateLimitError, got %v", err)
	}
}

func TestClient_Type(t *testing.T) {
	if got := NewClient(Config{}).Type(); got != "openrouter" {
		t.Errorf("Type() = %q", got)
	}
}
