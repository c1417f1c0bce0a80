package gemini

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
	var gotPath, gotKey, gotQuery string
	var gotBody generateRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		gotQuery = r.URL.RawQuery
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}

		resp := map[string]any{
			"candidates": []map[string]any{
				{
					"content": map[string]any{
						"parts": []map[string]string{{"text": "the reply"}},
					},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, Model: "gemini-1.5-flash"})

	reply, err := client.Send(context.Background(), "api-key-123", &providers.ChatRequest{
		Prompt:       "hello",
		SystemPrompt: "be brief",
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if reply != "the reply" {
		t.Errorf("reply = %q", reply)
	}
	if gotPath != "/v1beta/models/gemini-1.5-flash:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "api-key-123" {
		t.Errorf("x-goog-api-key = %q", gotKey)
	}
	if gotQuery != "" {
		t.Errorf("request URL carries a query string: %q", gotQuery)
	}
	if len(gotBody.Contents) != 1 || gotBody.Contents[0].Parts[0].Text != "hello" {
		t.Errorf("prompt not sent: %+v", gotBody.Contents)
	}
	if gotBody.SystemInstruction == nil || gotBody.SystemInstruction.Parts[0].Text != "be brief" {
		t.Errorf("system prompt not sent: %+v", gotBody.SystemInstruction)
	}
}

func TestClient_SendEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})

	_, err := client.Send(context.Background(), "k", &providers.ChatRequest{Prompt: "p"})
	var trErr *providers.TransientError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected *TransientError for empty candidates, got %v", err)
	}
}

func TestClient_SendUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})

	_, err := client.Send(context.Background(), "bad", &providers.ChatRequest{Prompt: "p"})
	var authErr *providers.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError, got %v", err)
	}
}

func TestClient_Type(t *testing.T) {
	if got := NewClient(Config{}).Type(); got != "gemini" {
		t.Errorf("Type() = %q", got)
	}
}
