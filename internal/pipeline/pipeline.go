// ABOUTME: Shared pipeline plumbing: hook dispatch and diagnostic notices
// ABOUTME: Hook warnings and blocks surface on an event bus for the host

package pipeline

import (
	"context"

	"github.com/mauromedda/pi-hooks-go/internal/eventbus"
	"github.com/mauromedda/pi-hooks-go/internal/hooks"
)

// Notice is a diagnostic event published after each hook firing: fail-open
// warnings and explicit blocks, for the host to log or display.
type Notice struct {
	Event    hooks.Event
	Warnings []hooks.Warning
	Blocked  bool
	Reason   string
}

// hookDispatch wraps an optional hook system. A nil system means hooks are
// disabled and every firing is a free no-op.
type hookDispatch struct {
	system *hooks.System
	bus    *eventbus.Bus[Notice]
}

// fire runs the event when hooks are enabled and publishes a notice for
// any warnings or blocks it produced.
func (d hookDispatch) fire(ctx context.Context, event hooks.Event, payload hooks.Payload) (hooks.Result, error) {
	if d.system == nil {
		return hooks.Result{Success: true}, nil
	}

	handler, err := d.system.EventHandler()
	if err != nil {
		return hooks.Result{}, err
	}

	result := handler.Fire(ctx, event, payload)

	if d.bus != nil && (len(result.Errors) > 0 || result.FinalOutput.Blocked()) {
		d.bus.Publish(Notice{
			Event:    event,
			Warnings: result.Errors,
			Blocked:  result.FinalOutput.Blocked(),
			Reason:   result.FinalOutput.BlockReason(),
		})
	}

	return result, nil
}

func (d hookDispatch) enabled() bool {
	return d.system != nil
}
