// ABOUTME: Hook runner: sequential chaining and parallel fan-out
// ABOUTME: Sequential feeds each output forward; parallel shares one input

package hooks

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mauromedda/pi-hooks-go/internal/log"
)

// Runner executes the hooks of an execution plan as external processes.
type Runner struct{}

// NewRunner creates a Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// RunSequential executes hooks one at a time in order. Each hook's parsed
// output is folded into the next hook's input; an explicit block stops the
// chain immediately. Returns the per-hook results and the final derived
// input, which seeds a following parallel phase.
func (r *Runner) RunSequential(ctx context.Context, hooks []compiledHook, input Input) ([]ExecutionResult, Input) {
	results := make([]ExecutionResult, 0, len(hooks))
	current := input

	for _, ch := range hooks {
		res := runHook(ctx, ch, current)
		r.logWarning(res)
		results = append(results, res)

		if res.Outcome.Decision.Blocked() {
			break
		}
		if res.Outcome.Kind == OutcomeParsed {
			current = ApplyOutputToInput(current, res.Outcome.Decision, ch.event)
		}
	}

	return results, current
}

// RunParallel spawns all hooks concurrently against the same input and
// waits for every one to finish or time out independently. A slow or hung
// hook never delays its siblings; results come back in registration order.
func (r *Runner) RunParallel(ctx context.Context, hooks []compiledHook, input Input) []ExecutionResult {
	results := make([]ExecutionResult, len(hooks))

	var g errgroup.Group
	for i, ch := range hooks {
		i, ch := i, ch
		g.Go(func() error {
			results[i] = runHook(ctx, ch, input)
			return nil
		})
	}
	// Hook failures are warnings inside results, never errors.
	_ = g.Wait()

	for _, res := range results {
		r.logWarning(res)
	}
	return results
}

func (r *Runner) logWarning(res ExecutionResult) {
	if res.Outcome.Kind != OutcomeWarning {
		return
	}
	w := res.Outcome.Warning
	if w.Stderr != "" {
		log.Warn("hook %q: %s (stderr: %s)", w.Command, w.Detail, w.Stderr)
		return
	}
	log.Warn("hook %q: %s", w.Command, w.Detail)
}
