// Package action defines the Action contract and Registry from spec.md
// §4.3. Grounded on the teacher's internal/plugin package (Plugin
// interface, RWMutex-guarded registration map) but narrowed to the single
// operation the spec names, and constructed explicitly per call site
// rather than held in a package-level global — see spec.md §9's design
// note and DESIGN.md's "Open Question decisions".
package action

import (
	"context"
	"fmt"
	"sync"

	"github.com/katonium/testflow/internal/model"
)

// Action executes one resolved step and returns its outcome. Implementations
// may block on I/O; the engine imposes no timeout. An Action may return an
// error instead of an ActionResult — the engine treats that identically to
// a panic recovered during dispatch (ActionResult{Success:false}).
type Action interface {
	Execute(ctx context.Context, step model.Step) (model.ActionResult, error)
}

// ActionFunc adapts a plain function to the Action interface.
type ActionFunc func(ctx context.Context, step model.Step) (model.ActionResult, error)

// Execute calls f.
func (f ActionFunc) Execute(ctx context.Context, step model.Step) (model.ActionResult, error) {
	return f(ctx, step)
}

// Registry is a process-wide mapping from action-kind to Action. Callers
// construct one explicitly (no package-level singleton) and register every
// kind before handing it to the Scheduler; the engine only ever reads it.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]Action
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]Action)}
}

// Register adds an Action under kind. Registering an already-registered
// kind is an error; the registry is meant to be populated once, at startup.
func (r *Registry) Register(kind string, a Action) error {
	if a == nil {
		return fmt.Errorf("action: nil Action for kind %q", kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.actions[kind]; exists {
		return fmt.Errorf("action: kind %q already registered", kind)
	}
	r.actions[kind] = a
	return nil
}

// Lookup returns the Action registered for kind.
func (r *Registry) Lookup(kind string) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actions[kind]
	return a, ok
}
