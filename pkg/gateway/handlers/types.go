package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"rotor-hq/rotor/pkg/credential"
	"rotor-hq/rotor/pkg/dispatch"
	"rotor-hq/rotor/pkg/providers"
)

// chatRequest is the POST /api/chat body. The same fields arrive as
// query parameters on GET.
type chatRequest struct {
	// Prompt is the user prompt. Required.
	Prompt string `json:"prompt"`

	// SystemPrompt is the system instruction. The field must be present
	// but may be the empty string.
	SystemPrompt *string `json:"system_prompt"`

	// LLM optionally restricts which provider types may serve the
	// request, comma-separated (e.g. "gemini,openrouter").
	LLM string `json:"llm"`
}

// chatResponse is the success body.
type chatResponse struct {
	Content   string `json:"content"`
	TokenType string `json:"token_type"`
}

// errorResponse is the failure body.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusForError maps a dispatch error onto an HTTP status. Upstream
// failures never pass through verbatim; the mapping reflects what the
// caller can do about the failure.
func statusForError(err error) int {
	var (
		authErr *providers.AuthError
		permErr *providers.PermanentError
		exhErr  *dispatch.ExhaustedError
	)
	switch {
	case errors.Is(err, credential.ErrNoneEligible):
		return http.StatusTooManyRequests
	case errors.As(err, &exhErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.As(err, &permErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
