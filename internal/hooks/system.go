// ABOUTME: Hook system lifecycle façade: Uninitialized -> Initialized, one way
// ABOUTME: Owns registry, planner, runner, and handler; built lazily by the host

package hooks

import (
	"errors"
	"sync/atomic"

	"github.com/mauromedda/pi-hooks-go/internal/config"
)

// ErrNotInitialized is returned by EventHandler before Initialize succeeds.
var ErrNotInitialized = errors.New("hook system not initialized")

// System owns the engine's components for one host context. The host
// constructs it lazily, only when hooks are enabled, so disabled
// installations pay zero construction cost.
type System struct {
	registry    *Registry
	handler     *EventHandler
	initialized atomic.Bool
}

// NewSystem builds an uninitialized system over the configured hook
// definitions and a session-context provider.
func NewSystem(defs map[string][]config.HookDef, info SessionInfoFunc) *System {
	registry := NewRegistry(defs)
	return &System{
		registry: registry,
		handler:  NewEventHandler(NewPlanner(registry), NewRunner(), info),
	}
}

// Initialize validates and compiles the hook table. Idempotent; a
// configuration error aborts only the hook system, never the host.
func (s *System) Initialize() error {
	if err := s.registry.Initialize(); err != nil {
		return err
	}
	s.initialized.Store(true)
	return nil
}

// EventHandler returns the per-event façade, or ErrNotInitialized when
// Initialize has not succeeded yet.
func (s *System) EventHandler() (*EventHandler, error) {
	if !s.initialized.Load() {
		return nil, ErrNotInitialized
	}
	return s.handler, nil
}
