// ABOUTME: Translation between runtime objects and hook JSON payloads
// ABOUTME: Pure functions; decision validation happens here at the parse boundary

package hooks

import (
	"encoding/json"
	"strings"

	"github.com/mauromedda/pi-hooks-go/pkg/ai"
)

// TranslateRequest flattens an assembled model request into the
// representation hooks receive.
func TranslateRequest(req *ai.Request) map[string]any {
	if req == nil {
		return nil
	}

	msgs := make([]map[string]any, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, map[string]any{
			"role": string(m.Role),
			"text": messageText(m),
		})
	}

	tools := make([]string, 0, len(req.Tools))
	for _, t := range req.Tools {
		tools = append(tools, t.Name)
	}

	out := map[string]any{
		"model":    req.Model,
		"messages": msgs,
	}
	if req.System != "" {
		out["system"] = req.System
	}
	if len(tools) > 0 {
		out["tools"] = tools
	}
	if req.Temperature != 0 {
		out["temperature"] = req.Temperature
	}
	if req.MaxTokens != 0 {
		out["max_tokens"] = req.MaxTokens
	}
	return out
}

// TranslateResponse flattens a model response into the representation
// hooks receive.
func TranslateResponse(resp *ai.Response) map[string]any {
	if resp == nil {
		return nil
	}
	out := map[string]any{
		"text":        resp.Text,
		"stop_reason": string(resp.StopReason),
		"usage": map[string]any{
			"input_tokens":  resp.Usage.InputTokens,
			"output_tokens": resp.Usage.OutputTokens,
		},
	}
	if resp.Model != "" {
		out["model"] = resp.Model
	}
	return out
}

func messageText(m ai.Message) string {
	var b strings.Builder
	for _, c := range m.Content {
		if c.Type == ai.ContentText {
			b.WriteString(c.Text)
		}
	}
	return b.String()
}

// ParseDecision converts a hook's stdout into a typed decision for the
// event's family. JSON objects become structured decisions; anything else
// is treated as a plain additive message. Empty stdout is a no-op.
func ParseDecision(event Event, stdout string) Decision {
	text := strings.TrimSpace(stdout)
	if text == "" {
		return Decision{}
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return additiveMessage(event, text)
	}

	switch event.Family() {
	case FamilyModel:
		return Decision{Model: parseModelDecision(raw)}
	case FamilyToolSelection:
		return Decision{ToolSelection: parseToolSelectionDecision(raw)}
	default:
		return Decision{Tool: parseToolDecision(raw)}
	}
}

// additiveMessage wraps non-JSON stdout as a message-only decision.
func additiveMessage(event Event, text string) Decision {
	switch event.Family() {
	case FamilyModel:
		return Decision{Model: &ModelDecision{SystemMessage: text}}
	case FamilyToolSelection:
		// Tool-selection decisions have no message channel; plain text
		// from a selection hook carries no verdict.
		return Decision{}
	default:
		return Decision{Tool: &ToolDecision{AdditionalContext: text}}
	}
}

// BlockDecision builds an explicit-block decision for the event's family,
// used for the exit-code-2 path.
func BlockDecision(event Event, reason string) Decision {
	switch event.Family() {
	case FamilyModel:
		return Decision{Model: &ModelDecision{Blocked: true, Reason: reason}}
	case FamilyToolSelection:
		// Selection hooks have no block channel; the runner reports
		// their exit-2 as a warning before reaching this point.
		return Decision{}
	default:
		return Decision{Tool: &ToolDecision{Blocked: true, Reason: reason}}
	}
}

func parseToolDecision(raw map[string]any) *ToolDecision {
	d := &ToolDecision{
		Blocked:           boolField(raw, "blocked"),
		Reason:            stringField(raw, "reason"),
		AdditionalContext: stringField(raw, "additionalContext"),
		SuppressOutput:    boolField(raw, "suppressOutput"),
		SystemMessage:     stringField(raw, "systemMessage"),
		ToolInput:         mapField(raw, "tool_input"),
	}

	for k, v := range raw {
		switch k {
		case "blocked", "reason", "additionalContext", "suppressOutput", "systemMessage", "tool_input":
		default:
			if d.Extra == nil {
				d.Extra = make(map[string]any)
			}
			d.Extra[k] = v
		}
	}
	return d
}

func parseModelDecision(raw map[string]any) *ModelDecision {
	d := &ModelDecision{
		Blocked:       boolField(raw, "blocked"),
		Reason:        stringField(raw, "reason"),
		ShouldStop:    boolField(raw, "shouldStop"),
		StopReason:    stringField(raw, "stopReason"),
		SystemMessage: stringField(raw, "systemMessage"),
	}

	// Everything else is a per-field override, applied last-writer-wins.
	for k, v := range raw {
		switch k {
		case "blocked", "reason", "shouldStop", "stopReason", "systemMessage":
		default:
			if d.Fields == nil {
				d.Fields = make(map[string]any)
			}
			d.Fields[k] = v
		}
	}
	return d
}

func parseToolSelectionDecision(raw map[string]any) *ToolSelectionDecision {
	return &ToolSelectionDecision{
		EnabledTools:  stringsField(raw, "enabledTools"),
		DisabledTools: stringsField(raw, "disabledTools"),
	}
}

func boolField(m map[string]any, key string) bool {
	v, _ := m[key].(bool)
	return v
}

func stringField(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func mapField(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

func stringsField(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// ApplyRequestFields applies model-hook field overrides to a typed request.
// Unrecognized keys are ignored here; they remain visible in the decision
// for diagnostics.
func ApplyRequestFields(req *ai.Request, fields map[string]any) {
	if req == nil {
		return
	}
	if v, ok := fields["model"].(string); ok {
		req.Model = v
	}
	if v, ok := fields["system"].(string); ok {
		req.System = v
	}
	if v, ok := fields["temperature"].(float64); ok {
		req.Temperature = v
	}
	if v, ok := fields["max_tokens"].(float64); ok {
		req.MaxTokens = int(v)
	}
}

// ApplyResponseFields applies model-hook field overrides to a typed
// response. Unrecognized keys land in Metadata, preserved but not
// interpreted.
func ApplyResponseFields(resp *ai.Response, fields map[string]any) {
	if resp == nil {
		return
	}
	for k, v := range fields {
		switch k {
		case "text":
			if s, ok := v.(string); ok {
				resp.Text = s
			}
		case "stop_reason":
			if s, ok := v.(string); ok {
				resp.StopReason = ai.StopReason(s)
			}
		case "model":
			if s, ok := v.(string); ok {
				resp.Model = s
			}
		default:
			if resp.Metadata == nil {
				resp.Metadata = make(map[string]any)
			}
			resp.Metadata[k] = v
		}
	}
}

// ApplyToolSelection applies a selection decision to a typed request:
// disabled tools are removed; a non-empty enabled set acts as an
// allow-list over the remaining tools.
func ApplyToolSelection(req *ai.Request, d *ToolSelectionDecision) {
	if req == nil || d == nil {
		return
	}
	req.Tools = filterToolList(req.Tools, d, func(t ai.Tool) string { return t.Name })
}

func filterToolList[T any](tools []T, d *ToolSelectionDecision, name func(T) string) []T {
	disabled := make(map[string]bool, len(d.DisabledTools))
	for _, t := range d.DisabledTools {
		disabled[t] = true
	}
	enabled := make(map[string]bool, len(d.EnabledTools))
	for _, t := range d.EnabledTools {
		enabled[t] = true
	}

	out := tools[:0:0]
	for _, t := range tools {
		n := name(t)
		if disabled[n] {
			continue
		}
		if len(enabled) > 0 && !enabled[n] {
			continue
		}
		out = append(out, t)
	}
	return out
}

// applySelectionToNames is the map-payload twin of ApplyToolSelection,
// used when chaining selection decisions through a serialized request.
func applySelectionToNames(names []string, d *ToolSelectionDecision) []string {
	return filterToolList(names, d, func(s string) string { return s })
}
