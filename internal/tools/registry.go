// Package tools exposes the sync and search layers as named operations
// callable by external agents. Every call takes JSON arguments and returns
// a uniform envelope: the data on success, an error object otherwise. A
// handler error never escapes as a transport failure.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Handler executes one tool call against already-decoded JSON arguments.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Registry maps tool names to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	log      zerolog.Logger
}

// NewRegistry builds an empty registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		log:      log.With().Str("component", "tools").Logger(),
	}
}

// Register adds a named tool. Registering a duplicate name panics: tool
// names are wired once at startup and a collision is a programming error.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[name]; exists {
		panic(fmt.Sprintf("tool %q registered twice", name))
	}
	r.handlers[name] = h
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call dispatches a tool by name and wraps the outcome in the response
// envelope. Unknown tools and handler failures both come back as error
// envelopes, never as a Go error.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) json.RawMessage {
	r.mu.RLock()
	h, ok := r.handlers[name]
	r.mu.RUnlock()

	if !ok {
		return errorEnvelope(fmt.Sprintf("unknown tool: %s", name))
	}

	result, err := h(ctx, args)
	if err != nil {
		r.log.Warn().Err(err).Str("tool", name).Msg("tool call failed")
		return errorEnvelope(err.Error())
	}

	data, err := json.Marshal(result)
	if err != nil {
		r.log.Error().Err(err).Str("tool", name).Msg("failed to encode tool result")
		return errorEnvelope("failed to encode result")
	}
	return data
}

func errorEnvelope(msg string) json.RawMessage {
	data, _ := json.Marshal(map[string]any{
		"success": false,
		"error":   msg,
	})
	return data
}
