package providers

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// ChatRequest is one chat turn to send upstream.
type ChatRequest struct {
	// Prompt is the user prompt. Required, non-empty.
	Prompt string

	// SystemPrompt is the system instruction. Required but may be empty.
	SystemPrompt string
}

// Client sends a chat request to one upstream provider using one
// credential secret and returns the reply text or a classified failure
// (see errors.go).
//
// Implementations enforce their own network timeout and perform a single
// attempt per call; retry is owned by the dispatch orchestrator.
type Client interface {
	// Send performs one chat-completion call authenticated with secret.
	Send(ctx context.Context, secret string, req *ChatRequest) (string, error)

	// Type returns the provider tag this client serves (e.g. "gemini").
	Type() string
}

// Registry maps provider type tags to their Client variant. It is safe
// for concurrent use; registration happens at startup, lookups on the
// request path.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client
}

// NewRegistry creates an empty client registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

// Register adds a client variant, replacing any existing client for the
// same provider type.
func (r *Registry) Register(c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.Type()] = c
}

// Get returns the client for the given provider type.
func (r *Registry) Get(providerType string) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[providerType]
	if !ok {
		return nil, fmt.Errorf("unsupported token type %q", providerType)
	}
	return c, nil
}

// Types returns the registered provider tags in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.clients))
	for t := range r.clients {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
