package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// HTTPConfig configures the shared HTTP base client.
type HTTPConfig struct {
	// Provider is the provider tag, used in error classification and logs.
	Provider string

	// Timeout bounds each upstream call. Default: 60s.
	Timeout time.Duration

	// MaxIdleConns is the connection pool size. Default: 100.
	MaxIdleConns int

	// MaxIdleConnsPerHost is the per-host pool size. Default: 10.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long idle connections stay pooled.
	// Default: 90s.
	IdleConnTimeout time.Duration
}

// HTTPClient is the base for HTTP provider variants. It performs a
// single attempt per call with connection pooling and a request timeout,
// and maps the response onto the classified error taxonomy. Retry is the
// orchestrator's job, so there is no retry loop here.
type HTTPClient struct {
	provider string
	client   *http.Client
}

// NewHTTPClient creates a base client with connection pooling.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 100
	}
	if cfg.MaxIdleConnsPerHost == 0 {
		cfg.MaxIdleConnsPerHost = 10
	}
	if cfg.IdleConnTimeout == 0 {
		cfg.IdleConnTimeout = 90 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &HTTPClient{
		provider: cfg.Provider,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
	}
}

// PostJSON sends one JSON POST and decodes the 2xx response body into
// respBody. Failures come back classified:
//
//	401/403        -> *AuthError
//	429            -> *RateLimitError
//	408, 5xx       -> *TransientError
//	other 4xx      -> *PermanentError
//	network/timeout, undecodable body -> *TransientError
func (h *HTTPClient) PostJSON(ctx context.Context, url string, reqBody, respBody any, headers map[string]string) error {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	slog.Debug("sending request to provider",
		"provider", h.provider,
		"url", sanitizeURL(url),
	)

	resp, err := h.client.Do(req)
	if err != nil {
		return &TransientError{
			Provider: h.provider,
			Message:  "request failed",
			Cause:    err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		responseBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return &TransientError{
				Provider: h.provider,
				Message:  "failed to read response body",
				Cause:    err,
			}
		}
		if err := json.Unmarshal(responseBytes, respBody); err != nil {
			return &TransientError{
				Provider: h.provider,
				Message:  "failed to decode response body",
				Cause:    err,
			}
		}
		return nil
	}

	errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return h.classifyStatus(resp, string(errorBody))
}

// classifyStatus maps a non-2xx response onto the error taxonomy.
func (h *HTTPClient) classifyStatus(resp *http.Response, body string) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{
			Provider: h.provider,
			Message:  body,
		}

	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			Provider:   h.provider,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    body,
		}

	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode >= 500:
		return &TransientError{
			Provider:   h.provider,
			StatusCode: resp.StatusCode,
			Message:    body,
		}

	default:
		return &PermanentError{
			Provider:   h.provider,
			StatusCode: resp.StatusCode,
			Message:    body,
		}
	}
}

// sanitizeURL strips the query string before a URL reaches log output;
// query parameters can carry credentials.
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "invalid-url"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// parseRetryAfter parses the Retry-After header value. It supports both
// delay-seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}

	return 0
}
