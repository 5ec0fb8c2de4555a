// ABOUTME: Model pipeline: tool selection, BeforeModel gate, provider call, AfterModel
// ABOUTME: A blocked BeforeModel returns a synthetic response without calling the provider

package pipeline

import (
	"context"
	"fmt"

	"github.com/mauromedda/pi-hooks-go/internal/eventbus"
	"github.com/mauromedda/pi-hooks-go/internal/hooks"
	"github.com/mauromedda/pi-hooks-go/internal/session"
	"github.com/mauromedda/pi-hooks-go/pkg/ai"
)

// ModelPipeline wraps provider calls with hook firings.
type ModelPipeline struct {
	dispatch   hookDispatch
	provider   ai.Provider
	transcript *session.Writer
}

// NewModelPipeline wires a model pipeline. system may be nil (hooks
// disabled); bus and transcript are optional.
func NewModelPipeline(system *hooks.System, provider ai.Provider, bus *eventbus.Bus[Notice], transcript *session.Writer) *ModelPipeline {
	return &ModelPipeline{
		dispatch:   hookDispatch{system: system, bus: bus},
		provider:   provider,
		transcript: transcript,
	}
}

// Complete runs one model invocation through the hook gates: tool
// selection union, BeforeModel modifications or block, the provider call,
// then AfterModel field replacements and stop signals.
func (p *ModelPipeline) Complete(ctx context.Context, req *ai.Request) (*ai.Response, error) {
	if p.dispatch.enabled() {
		sel, err := p.dispatch.fire(ctx, hooks.BeforeToolSelection, hooks.Payload{Request: req})
		if err != nil {
			return nil, err
		}
		hooks.ApplyToolSelection(req, sel.FinalOutput.ToolSelection)

		before, err := p.dispatch.fire(ctx, hooks.BeforeModel, hooks.Payload{Request: req})
		if err != nil {
			return nil, err
		}
		if d := before.FinalOutput.Model; d != nil {
			if d.Blocked {
				p.recordBlock(hooks.BeforeModel, d.Reason)
				return syntheticResponse(d), nil
			}
			hooks.ApplyRequestFields(req, d.Fields)
		}
	}

	p.record(session.RecordModelCall, map[string]any{"model": req.Model})

	resp, err := p.provider.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}

	after, err := p.dispatch.fire(ctx, hooks.AfterModel, hooks.Payload{Request: req, Response: resp})
	if err != nil {
		return nil, err
	}
	if d := after.FinalOutput.Model; d != nil {
		hooks.ApplyResponseFields(resp, d.Fields)
		applyStopSignals(resp, d)
		if d.Blocked {
			p.recordBlock(hooks.AfterModel, d.Reason)
		}
	}

	return resp, nil
}

// syntheticResponse builds the response a blocked BeforeModel firing
// returns: empty unless the blocking hook supplied response fields.
func syntheticResponse(d *hooks.ModelDecision) *ai.Response {
	resp := &ai.Response{StopReason: ai.StopBlocked}
	if d.Reason != "" {
		resp.Metadata = map[string]any{"blocked_reason": d.Reason}
	}
	hooks.ApplyResponseFields(resp, d.Fields)
	return resp
}

// applyStopSignals honors an explicit shouldStop/stopReason decision.
// This is a policy signal, distinct from the diagnostic Success flag.
func applyStopSignals(resp *ai.Response, d *hooks.ModelDecision) {
	switch {
	case d.Blocked:
		resp.StopReason = ai.StopBlocked
		if d.Reason != "" {
			if resp.Metadata == nil {
				resp.Metadata = make(map[string]any)
			}
			resp.Metadata["blocked_reason"] = d.Reason
		}
	case d.ShouldStop:
		if d.StopReason != "" {
			resp.StopReason = ai.StopReason(d.StopReason)
		} else {
			resp.StopReason = ai.StopEndTurn
		}
	}
}

func (p *ModelPipeline) record(typ session.RecordType, data any) {
	if p.transcript == nil {
		return
	}
	_ = p.transcript.WriteRecord(typ, data)
}

func (p *ModelPipeline) recordBlock(event hooks.Event, reason string) {
	if p.transcript == nil {
		return
	}
	_ = p.transcript.WriteRecord(session.RecordHookBlock, session.HookBlockData{
		Event:  string(event),
		Reason: reason,
	})
}
