// ABOUTME: Result aggregation with event-family-specific merge rules
// ABOUTME: Tool events OR-block, model events last-writer-wins, selection unions

package hooks

// Aggregate merges per-hook execution results into one Result. Results must
// be passed in stable order (sequential phase first, then parallel phase,
// registration order within each) so tie-breaking is deterministic
// regardless of actual completion timing.
func Aggregate(event Event, results []ExecutionResult) Result {
	agg := Result{FinalOutput: emptyDecision(event), Success: true}

	for _, res := range results {
		switch res.Outcome.Kind {
		case OutcomeWarning:
			agg.Errors = append(agg.Errors, res.Outcome.Warning)
			agg.Success = false
		default:
			d := res.Outcome.Decision
			if d.IsZero() {
				continue
			}
			agg.AllOutputs = append(agg.AllOutputs, d)
			mergeDecision(event, &agg.FinalOutput, d)
		}
	}

	return agg
}

// ApplyOutputToInput derives the next hook's input from the previous hook's
// decision, using the same merge semantics as a two-element aggregation so
// sequential chaining and parallel merging compose consistently.
func ApplyOutputToInput(in Input, d Decision, event Event) Input {
	out := in.clone()

	switch event.Family() {
	case FamilyTool:
		if d.Tool != nil && d.Tool.ToolInput != nil {
			out.ToolInput = cloneMap(d.Tool.ToolInput)
		}
	case FamilyModel:
		if d.Model != nil && len(d.Model.Fields) > 0 {
			target := out.Request
			if event == AfterModel {
				target = out.Response
			}
			if target != nil {
				for k, v := range d.Model.Fields {
					target[k] = v
				}
			}
		}
	case FamilyToolSelection:
		if d.ToolSelection != nil && out.Request != nil {
			out.Request["tools"] = applySelectionToNames(requestToolNames(out.Request), d.ToolSelection)
		}
	}

	return out
}

// requestToolNames extracts the tool name list from a translated request,
// tolerating both the in-memory []string form and the decoded []any form.
func requestToolNames(req map[string]any) []string {
	switch v := req["tools"].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func mergeDecision(event Event, acc *Decision, d Decision) {
	switch event.Family() {
	case FamilyModel:
		if d.Model != nil {
			mergeModel(acc.Model, d.Model)
		}
	case FamilyToolSelection:
		if d.ToolSelection != nil {
			mergeToolSelection(acc.ToolSelection, d.ToolSelection)
		}
	default:
		if d.Tool != nil {
			mergeTool(acc.Tool, d.Tool)
		}
	}
}

// mergeTool is OR-decision: any block blocks, first blocking reason wins;
// messages concatenate, suppression unions, input replacement takes the
// later hook's value.
func mergeTool(acc, d *ToolDecision) {
	if d.Blocked && !acc.Blocked {
		acc.Blocked = true
		acc.Reason = d.Reason
	}
	acc.AdditionalContext = joinMessages(acc.AdditionalContext, d.AdditionalContext)
	acc.SystemMessage = joinMessages(acc.SystemMessage, d.SystemMessage)
	acc.SuppressOutput = acc.SuppressOutput || d.SuppressOutput
	if d.ToolInput != nil {
		acc.ToolInput = d.ToolInput
	}
}

// mergeModel is last-writer-wins per field; a block or stop signal is
// preserved once set, regardless of later non-blocking hooks.
func mergeModel(acc, d *ModelDecision) {
	if d.Blocked && !acc.Blocked {
		acc.Blocked = true
		acc.Reason = d.Reason
	}
	if d.ShouldStop && !acc.ShouldStop {
		acc.ShouldStop = true
		acc.StopReason = d.StopReason
	}
	if d.SystemMessage != "" {
		acc.SystemMessage = d.SystemMessage
	}
	for k, v := range d.Fields {
		if acc.Fields == nil {
			acc.Fields = make(map[string]any)
		}
		acc.Fields[k] = v
	}
}

// mergeToolSelection unions tool name sets.
func mergeToolSelection(acc, d *ToolSelectionDecision) {
	acc.EnabledTools = unionStrings(acc.EnabledTools, d.EnabledTools)
	acc.DisabledTools = unionStrings(acc.DisabledTools, d.DisabledTools)
}

func joinMessages(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "\n" + b
	}
}

// unionStrings appends items from b not already in a, preserving order.
func unionStrings(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]bool, len(a))
	for _, s := range a {
		seen[s] = true
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			a = append(a, s)
		}
	}
	return a
}
