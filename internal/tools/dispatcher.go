package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brightline/frontdesk/internal/provider"
)

// Handler executes a tool call and returns the result as a string.
type Handler func(ctx context.Context, args string) (string, error)

// Dispatcher holds available tools and their handlers. Tool handlers simulate
// the latency of a real backend call; the wait blocks only the session turn
// that issued the call, never other sessions.
type Dispatcher struct {
	defs     []provider.Tool
	handlers map[string]Handler
	// delayOverride replaces the per-tool latency defaults. Zero keeps the
	// defaults; negative disables the simulated delay entirely.
	delayOverride time.Duration
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(delayOverride time.Duration) *Dispatcher {
	return &Dispatcher{
		handlers:      make(map[string]Handler),
		delayOverride: delayOverride,
	}
}

// Register adds a tool definition and its handler.
func (d *Dispatcher) Register(def provider.Tool, handler Handler) {
	d.defs = append(d.defs, def)
	d.handlers[def.Function.Name] = handler
}

// Definitions returns all tool definitions for the LLM request.
func (d *Dispatcher) Definitions() []provider.Tool {
	return d.defs
}

// Execute runs a tool by name with the given JSON arguments.
func (d *Dispatcher) Execute(ctx context.Context, name, args string) (string, error) {
	h, ok := d.handlers[name]
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", name)
	}
	return h(ctx, args)
}

func unmarshalArgs(args string, v interface{}) error {
	if err := json.Unmarshal([]byte(args), v); err != nil {
		return fmt.Errorf("parse args: %w", err)
	}
	return nil
}

// wait simulates backend latency for one tool call.
func (d *Dispatcher) wait(ctx context.Context, def time.Duration) error {
	delay := def
	if d.delayOverride != 0 {
		delay = d.delayOverride
	}
	if delay <= 0 {
		return nil
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
