// ABOUTME: Hook registry: validates and compiles hook definitions once
// ABOUTME: Read-only after Initialize; lookups never fail

package hooks

import (
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/mauromedda/pi-hooks-go/internal/config"
)

// DefaultTimeout bounds a hook process that declares no timeout of its own.
const DefaultTimeout = 10 * time.Second

// compiledHook pairs a hook definition with its pre-compiled matcher and
// normalized execution settings.
type compiledHook struct {
	def     config.HookDef
	event   Event
	mode    Mode
	timeout time.Duration
	regex   *regexp.Regexp // nil means match-all
}

// RegistryLoadError reports a structurally invalid hook definition.
// It is only produced by Initialize; lookups never fail.
type RegistryLoadError struct {
	Event   string
	Command string
	Err     error
}

func (e *RegistryLoadError) Error() string {
	return fmt.Sprintf("hook registry: event %s, command %q: %v", e.Event, e.Command, e.Err)
}

func (e *RegistryLoadError) Unwrap() error { return e.Err }

// Registry holds the loaded table of hook definitions keyed by event.
// After a successful Initialize the table is immutable and safe for
// concurrent reads without locking.
type Registry struct {
	raw      map[string][]config.HookDef
	byEvent  map[Event][]compiledHook
	initOnce sync.Once
	initErr  error
}

// NewRegistry creates a registry over the given definitions.
// Nothing is validated until Initialize.
func NewRegistry(defs map[string][]config.HookDef) *Registry {
	return &Registry{raw: defs}
}

// Initialize validates and compiles all definitions. Idempotent: a second
// call is a no-op and returns the first call's outcome.
func (r *Registry) Initialize() error {
	r.initOnce.Do(func() {
		r.initErr = r.compile()
	})
	return r.initErr
}

func (r *Registry) compile() error {
	byEvent := make(map[Event][]compiledHook, len(r.raw))

	for name, defs := range r.raw {
		event := Event(name)
		if !event.Valid() {
			return &RegistryLoadError{Event: name, Err: fmt.Errorf("unknown event")}
		}

		for _, def := range defs {
			ch, err := compileHook(event, def)
			if err != nil {
				return &RegistryLoadError{Event: name, Command: def.Command, Err: err}
			}
			byEvent[event] = append(byEvent[event], ch)
		}
	}

	r.byEvent = byEvent
	return nil
}

func compileHook(event Event, def config.HookDef) (compiledHook, error) {
	if def.Command == "" {
		return compiledHook{}, fmt.Errorf("empty command")
	}

	mode := Mode(def.Mode)
	switch mode {
	case "":
		mode = ModeSequential
	case ModeSequential, ModeParallel:
	default:
		return compiledHook{}, fmt.Errorf("unknown mode %q", def.Mode)
	}

	timeout := DefaultTimeout
	if def.TimeoutMs > 0 {
		timeout = time.Duration(def.TimeoutMs) * time.Millisecond
	}

	ch := compiledHook{def: def, event: event, mode: mode, timeout: timeout}

	if def.Matcher != "" {
		re, err := regexp.Compile(def.Matcher)
		if err != nil {
			return compiledHook{}, fmt.Errorf("invalid matcher %q: %w", def.Matcher, err)
		}
		ch.regex = re
	}

	return ch, nil
}

// hooksFor returns all compiled hooks for the event in registration order,
// regardless of matcher. Matcher evaluation is the planner's job.
func (r *Registry) hooksFor(event Event) []compiledHook {
	return r.byEvent[event]
}
