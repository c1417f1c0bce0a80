package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"rotor-hq/rotor/pkg/credential"
	"rotor-hq/rotor/pkg/dispatch"
)

// Dispatcher runs one chat request through credential selection, the
// provider call and the retry policy. Implemented by dispatch.Orchestrator.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *dispatch.Request) (*dispatch.Result, error)
}

// ChatHandler serves /api/chat. The same operation is reachable via GET
// with query parameters and POST with a JSON body.
type ChatHandler struct {
	dispatcher Dispatcher
}

// NewChatHandler creates the chat endpoint handler.
func NewChatHandler(d Dispatcher) *ChatHandler {
	return &ChatHandler{dispatcher: d}
}

// ServeHTTP implements http.Handler.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req *chatRequest
	var err error

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req = &chatRequest{
			Prompt: q.Get("prompt"),
			LLM:    q.Get("llm"),
		}
		if q.Has("system_prompt") {
			sp := q.Get("system_prompt")
			req.SystemPrompt = &sp
		}
	case http.MethodPost:
		req, err = decodeChatRequest(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	if req.SystemPrompt == nil {
		writeError(w, http.StatusBadRequest, "system_prompt is required")
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), &dispatch.Request{
		Prompt:       req.Prompt,
		SystemPrompt: *req.SystemPrompt,
		Providers:    parseLLMFilter(req.LLM),
	})
	if err != nil {
		status := statusForError(err)
		if status >= 500 {
			slog.ErrorContext(r.Context(), "chat dispatch failed", "error", err)
		}
		writeError(w, status, publicMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Content:   result.Content,
		TokenType: result.TokenType,
	})
}

func decodeChatRequest(r *http.Request) (*chatRequest, error) {
	var req chatRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, errors.New("invalid request body")
	}
	return &req, nil
}

// parseLLMFilter splits the comma-separated llm parameter into provider
// tags, dropping empty segments.
func parseLLMFilter(llm string) []string {
	if llm == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(llm, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// publicMessage chooses the error text exposed to clients. Internal
// detail stays in the logs.
func publicMessage(err error) string {
	switch statusForError(err) {
	case http.StatusTooManyRequests:
		return credential.ErrNoneEligible.Error()
	case http.StatusServiceUnavailable:
		return "upstream providers unavailable, retries exhausted"
	case http.StatusUnauthorized:
		return "upstream rejected the credential"
	case http.StatusBadGateway:
		return "upstream request failed"
	default:
		return "internal server error"
	}
}
