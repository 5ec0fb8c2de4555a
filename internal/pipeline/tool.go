// ABOUTME: Tool pipeline: BeforeTool gate -> execution -> AfterTool effects
// ABOUTME: A blocked BeforeTool returns a terminal result without executing

package pipeline

import (
	"context"
	"fmt"

	"github.com/mauromedda/pi-hooks-go/internal/eventbus"
	"github.com/mauromedda/pi-hooks-go/internal/hooks"
	"github.com/mauromedda/pi-hooks-go/internal/session"
)

// ToolExecutor runs one tool invocation.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, input map[string]any) (map[string]any, error)
}

// ToolResult is the pipeline's terminal result for one tool call.
type ToolResult struct {
	Blocked           bool
	Reason            string
	Output            map[string]any
	AdditionalContext string
	SystemMessage     string
	SuppressOutput    bool
}

// ToolPipeline wraps tool execution with hook firings.
type ToolPipeline struct {
	dispatch   hookDispatch
	exec       ToolExecutor
	transcript *session.Writer
}

// NewToolPipeline wires a tool pipeline. system may be nil (hooks
// disabled); bus and transcript are optional.
func NewToolPipeline(system *hooks.System, exec ToolExecutor, bus *eventbus.Bus[Notice], transcript *session.Writer) *ToolPipeline {
	return &ToolPipeline{
		dispatch:   hookDispatch{system: system, bus: bus},
		exec:       exec,
		transcript: transcript,
	}
}

// Run executes one tool call through the hook gates. A hook block is a
// normal terminal result, not an error; only tool execution itself can
// fail.
func (p *ToolPipeline) Run(ctx context.Context, name string, input map[string]any) (*ToolResult, error) {
	before, err := p.dispatch.fire(ctx, hooks.BeforeTool, hooks.Payload{
		ToolName:  name,
		ToolInput: input,
	})
	if err != nil {
		return nil, err
	}

	if d := before.FinalOutput.Tool; d != nil {
		if d.Blocked {
			p.recordBlock(hooks.BeforeTool, name, d.Reason)
			return &ToolResult{Blocked: true, Reason: d.Reason, SystemMessage: d.SystemMessage}, nil
		}
		if d.ToolInput != nil {
			input = d.ToolInput
		}
	}

	p.record(session.RecordToolCall, session.ToolCallData{Tool: name, Input: input})

	output, err := p.exec.Execute(ctx, name, input)
	if err != nil {
		return nil, fmt.Errorf("executing tool %s: %w", name, err)
	}

	after, err := p.dispatch.fire(ctx, hooks.AfterTool, hooks.Payload{
		ToolName:   name,
		ToolInput:  input,
		ToolOutput: output,
	})
	if err != nil {
		return nil, err
	}

	result := &ToolResult{Output: output}
	if d := after.FinalOutput.Tool; d != nil {
		result.Blocked = d.Blocked
		result.Reason = d.Reason
		result.AdditionalContext = d.AdditionalContext
		result.SystemMessage = d.SystemMessage
		result.SuppressOutput = d.SuppressOutput
		if d.Blocked {
			p.recordBlock(hooks.AfterTool, name, d.Reason)
		}
	}

	p.record(session.RecordToolResult, session.ToolCallData{Tool: name})
	return result, nil
}

func (p *ToolPipeline) record(typ session.RecordType, data any) {
	if p.transcript == nil {
		return
	}
	// Transcript failures never interrupt the pipeline.
	_ = p.transcript.WriteRecord(typ, data)
}

func (p *ToolPipeline) recordBlock(event hooks.Event, tool, reason string) {
	if p.transcript == nil {
		return
	}
	_ = p.transcript.WriteRecord(session.RecordHookBlock, session.HookBlockData{
		Event:  string(event),
		Tool:   tool,
		Reason: reason,
	})
}
