// Package gemini implements the provider client for Google's Gemini
// generateContent API.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rotor-hq/rotor/pkg/providers"
)

const (
	// DefaultBaseURL is the Gemini API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-1.5-flash"
)

// Config configures the Gemini client.
type Config struct {
	// BaseURL overrides the API endpoint (tests, regional endpoints).
	BaseURL string

	// Model is the model identifier to request.
	Model string

	// Timeout bounds each upstream call.
	Timeout time.Duration
}

// Client is the Gemini provider variant. The credential secret is the
// API key, sent in the x-goog-api-key header so it never appears in a
// URL that could surface in logs or error messages.
type Client struct {
	*providers.HTTPClient

	baseURL string
	model   string
}

// NewClient creates a Gemini client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	c := &Client{
		HTTPClient: providers.NewHTTPClient(providers.HTTPConfig{
			Provider: "gemini",
			Timeout:  cfg.Timeout,
		}),
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}

	slog.Info("gemini provider initialized",
		"model", cfg.Model,
		"base_url", cfg.BaseURL,
	)

	return c
}

// Type returns the provider tag.
func (c *Client) Type() string {
	return "gemini"
}

// generateRequest is the generateContent request body.
type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *systemPart       `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type systemPart struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

// generateResponse is the subset of the generateContent response we read.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Send performs one generateContent call.
func (c *Client) Send(ctx context.Context, secret string, req *providers.ChatRequest) (string, error) {
	body := &generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: req.Prompt}}},
		},
		SystemInstruction: &systemPart{
			Parts: []part{{Text: req.SystemPrompt}},
		},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "text/plain",
		},
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	headers := map[string]string{"x-goog-api-key": secret}

	var resp generateResponse
	if err := c.PostJSON(ctx, endpoint, body, &resp, headers); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &providers.TransientError{
			Provider: "gemini",
			Message:  "response contained no candidates",
		}
	}

	reply := resp.Candidates[0].Content.Parts[0].Text

	slog.Debug("gemini completion succeeded",
		"model", c.model,
		"reply_len", len(reply),
	)

	return reply, nil
}
