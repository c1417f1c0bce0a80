// Package openrouter implements the provider client for OpenRouter's
// OpenAI-compatible chat completions API.
package openrouter

import (
	"context"
	"log/slog"
	"time"

	"rotor-hq/rotor/pkg/providers"
)

const (
	// DefaultBaseURL is the OpenRouter API endpoint.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// DefaultModel is used when no model is configured.
	DefaultModel = "deepseek/deepseek-chat-v3-0324:free"
)

// Config configures the OpenRouter client.
type Config struct {
	// BaseURL overrides the API endpoint.
	BaseURL string

	// Model is the model identifier to request.
	Model string

	// Timeout bounds each upstream call.
	Timeout time.Duration
}

// Client is the OpenRouter provider variant. The credential secret is
// the API key, sent as a bearer token.
type Client struct {
	*providers.HTTPClient

	baseURL string
	model   string
}

// NewClient creates an OpenRouter client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	c := &Client{
		HTTPClient: providers.NewHTTPClient(providers.HTTPConfig{
			Provider: "openrouter",
			Timeout:  cfg.Timeout,
		}),
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}

	slog.Info("openrouter provider initialized",
		"model", cfg.Model,
		"base_url", cfg.BaseURL,
	)

	return c
}

// Type returns the provider tag.
func (c *Client) Type() string {
	return "openrouter"
}

// completionRequest is the chat completions request body.
type completionRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// completionResponse is the subset of the response we read.
type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Send performs one chat completions call.
func (c *Client) Send(ctx context.Context, secret string, req *providers.ChatRequest) (string, error) {
	body := &completionRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.Prompt},
		},
	}

	headers := map[string]string{
		"Authorization": "Bearer " + secret,
	}

	var resp completionResponse
	if err := c.PostJSON(ctx, c.baseURL+"/chat/completions", body, &resp, headers); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", &providers.TransientError{
			Provider: "openrouter",
			Message:  "response contained no choices",
		}
	}

	reply := resp.Choices[0].Message.Content

	slog.Debug("openrouter completion succeeded",
		"model", c.model,
		"reply_len", len(reply),
	)

	return reply, nil
}
