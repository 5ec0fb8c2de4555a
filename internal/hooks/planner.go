// ABOUTME: Execution planning: matcher evaluation and mode grouping
// ABOUTME: Builds a transient per-event plan; nil plan means no hooks run

package hooks

// Plan is the transient execution plan for one fired event: the matching
// hooks split into a sequential phase and a parallel phase. The sequential
// phase runs first; its combined output becomes the parallel phase's shared
// input. Within each phase, order is registration order.
type Plan struct {
	Sequential []compiledHook
	Parallel   []compiledHook
}

// Planner selects the hooks that apply to a given event firing.
type Planner struct {
	registry *Registry
}

// NewPlanner creates a planner over an initialized registry.
func NewPlanner(registry *Registry) *Planner {
	return &Planner{registry: registry}
}

// CreatePlan evaluates each candidate's matcher against matcherCtx (the
// tool name for tool events, the model identifier for model events) and
// returns nil when nothing matches. Plans are never cached: matcher
// context varies per call.
func (p *Planner) CreatePlan(event Event, matcherCtx string) *Plan {
	candidates := p.registry.hooksFor(event)
	if len(candidates) == 0 {
		return nil
	}

	var plan Plan
	for _, ch := range candidates {
		if ch.regex != nil && !ch.regex.MatchString(matcherCtx) {
			continue
		}
		if ch.mode == ModeParallel {
			plan.Parallel = append(plan.Parallel, ch)
		} else {
			plan.Sequential = append(plan.Sequential, ch)
		}
	}

	if len(plan.Sequential) == 0 && len(plan.Parallel) == 0 {
		return nil
	}
	return &plan
}
