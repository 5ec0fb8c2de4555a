// ABOUTME: Per-event façade: envelope assembly, planning, dispatch, aggregation
// ABOUTME: Fire is the only entry point external callers use

package hooks

import (
	"context"
	"time"

	"github.com/mauromedda/pi-hooks-go/pkg/ai"
)

// SessionInfo carries the host-context fields every hook envelope needs.
type SessionInfo struct {
	SessionID      string
	CWD            string
	TranscriptPath string
}

// SessionInfoFunc supplies the current session context at fire time.
type SessionInfoFunc func() SessionInfo

// Payload carries the event-specific fields for one firing. Tool fields
// apply to tool events; Request/Response to model and selection events.
type Payload struct {
	ToolName   string
	ToolInput  map[string]any
	ToolOutput map[string]any
	Request    *ai.Request
	Response   *ai.Response
}

// EventHandler fires lifecycle events against the configured hooks.
type EventHandler struct {
	planner *Planner
	runner  *Runner
	info    SessionInfoFunc
	now     func() time.Time
}

// NewEventHandler wires a handler over a planner and runner.
func NewEventHandler(planner *Planner, runner *Runner, info SessionInfoFunc) *EventHandler {
	return &EventHandler{
		planner: planner,
		runner:  runner,
		info:    info,
		now:     time.Now,
	}
}

// Fire runs all hooks applicable to the event and returns their merged
// result. With no matching hooks this is a cheap no-op. Every call owns
// its own input, plan, and results; nothing is shared across firings.
func (h *EventHandler) Fire(ctx context.Context, event Event, payload Payload) Result {
	plan := h.planner.CreatePlan(event, matcherContext(event, payload))
	if plan == nil {
		return emptyResult(event)
	}

	input := h.buildInput(event, payload)

	results := make([]ExecutionResult, 0, len(plan.Sequential)+len(plan.Parallel))

	blocked := false
	if len(plan.Sequential) > 0 {
		seqResults, chained := h.runner.RunSequential(ctx, plan.Sequential, input)
		results = append(results, seqResults...)
		input = chained
		for _, res := range seqResults {
			if res.Outcome.Decision.Blocked() {
				blocked = true
			}
		}
	}

	// A sequential-phase block wins outright; the parallel phase never
	// runs and cannot override it.
	if len(plan.Parallel) > 0 && !blocked {
		results = append(results, h.runner.RunParallel(ctx, plan.Parallel, input)...)
	}

	return Aggregate(event, results)
}

// matcherContext picks the value hook matchers evaluate against: the tool
// name for tool events, the model identifier for model-call events.
func matcherContext(event Event, payload Payload) string {
	switch event.Family() {
	case FamilyModel, FamilyToolSelection:
		if payload.Request != nil {
			return payload.Request.Model
		}
		return ""
	default:
		return payload.ToolName
	}
}

// buildInput assembles the stdin envelope: session context plus translated
// event-specific fields.
func (h *EventHandler) buildInput(event Event, payload Payload) Input {
	info := h.info()
	return Input{
		SessionID:      info.SessionID,
		CWD:            info.CWD,
		Timestamp:      h.now().UTC().Format(time.RFC3339),
		EventName:      event,
		TranscriptPath: info.TranscriptPath,
		ToolName:       payload.ToolName,
		ToolInput:      payload.ToolInput,
		ToolOutput:     payload.ToolOutput,
		Request:        TranslateRequest(payload.Request),
		Response:       TranslateResponse(payload.Response),
	}
}
