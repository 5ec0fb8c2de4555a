// ABOUTME: Hook lifecycle types: events, families, input envelope, decisions
// ABOUTME: Defines the wire contract between the engine and hook processes

package hooks

// Event identifies a lifecycle event in the agent runtime.
type Event string

const (
	BeforeTool          Event = "BeforeTool"
	AfterTool           Event = "AfterTool"
	BeforeModel         Event = "BeforeModel"
	AfterModel          Event = "AfterModel"
	BeforeToolSelection Event = "BeforeToolSelection"
)

// Family groups events that share an aggregation merge rule.
type Family int

const (
	FamilyTool Family = iota
	FamilyModel
	FamilyToolSelection
)

// Family returns the merge-rule family for the event.
func (e Event) Family() Family {
	switch e {
	case BeforeModel, AfterModel:
		return FamilyModel
	case BeforeToolSelection:
		return FamilyToolSelection
	default:
		return FamilyTool
	}
}

// Valid reports whether e is a known lifecycle event.
func (e Event) Valid() bool {
	switch e {
	case BeforeTool, AfterTool, BeforeModel, AfterModel, BeforeToolSelection:
		return true
	}
	return false
}

// Mode determines how hooks for one event run relative to each other.
type Mode string

const (
	ModeSequential Mode = "sequential"
	ModeParallel   Mode = "parallel"
)

// Input is the envelope written to a hook process's stdin as JSON.
// It is never mutated after serialization; sequential chaining derives
// a fresh Input via ApplyOutputToInput.
type Input struct {
	SessionID      string         `json:"session_id"`
	CWD            string         `json:"cwd"`
	Timestamp      string         `json:"timestamp"`
	EventName      Event          `json:"hook_event_name"`
	TranscriptPath string         `json:"transcript_path"`
	ToolName       string         `json:"tool_name,omitempty"`
	ToolInput      map[string]any `json:"tool_input,omitempty"`
	ToolOutput     map[string]any `json:"tool_output,omitempty"`
	Request        map[string]any `json:"request,omitempty"`
	Response       map[string]any `json:"response,omitempty"`
}

// clone returns a copy of the input with its maps duplicated one level deep,
// so chained derivations never alias a previously serialized envelope.
func (in Input) clone() Input {
	out := in
	out.ToolInput = cloneMap(in.ToolInput)
	out.ToolOutput = cloneMap(in.ToolOutput)
	out.Request = cloneMap(in.Request)
	out.Response = cloneMap(in.Response)
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ToolDecision is a hook's parsed verdict for BeforeTool/AfterTool events.
type ToolDecision struct {
	Blocked           bool           `json:"blocked,omitempty"`
	Reason            string         `json:"reason,omitempty"`
	AdditionalContext string         `json:"additionalContext,omitempty"`
	SuppressOutput    bool           `json:"suppressOutput,omitempty"`
	SystemMessage     string         `json:"systemMessage,omitempty"`
	ToolInput         map[string]any `json:"tool_input,omitempty"`
	// Extra holds unrecognized fields, preserved for diagnostics but
	// never interpreted.
	Extra map[string]any `json:"-"`
}

// ModelDecision is a hook's parsed verdict for BeforeModel/AfterModel events.
// Fields carries per-field request/response overrides; later hooks override
// earlier ones key by key.
type ModelDecision struct {
	Blocked       bool           `json:"blocked,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	ShouldStop    bool           `json:"shouldStop,omitempty"`
	StopReason    string         `json:"stopReason,omitempty"`
	SystemMessage string         `json:"systemMessage,omitempty"`
	Fields        map[string]any `json:"-"`
}

// ToolSelectionDecision is a hook's parsed verdict for BeforeToolSelection.
// Tool name sets are unioned across hooks, never overridden.
type ToolSelectionDecision struct {
	EnabledTools  []string `json:"enabledTools,omitempty"`
	DisabledTools []string `json:"disabledTools,omitempty"`
}

// Decision is the tagged per-family variant of a hook's structured output.
// Exactly one pointer is non-nil for a parsed decision; all nil means no-op.
type Decision struct {
	Tool          *ToolDecision
	Model         *ModelDecision
	ToolSelection *ToolSelectionDecision
}

// IsZero reports whether the decision carries no verdict at all.
func (d Decision) IsZero() bool {
	return d.Tool == nil && d.Model == nil && d.ToolSelection == nil
}

// Blocked reports whether the decision carries an explicit block.
func (d Decision) Blocked() bool {
	if d.Tool != nil && d.Tool.Blocked {
		return true
	}
	if d.Model != nil && d.Model.Blocked {
		return true
	}
	return false
}

// BlockReason returns the block reason, empty when not blocked.
func (d Decision) BlockReason() string {
	if d.Tool != nil && d.Tool.Blocked {
		return d.Tool.Reason
	}
	if d.Model != nil && d.Model.Blocked {
		return d.Model.Reason
	}
	return ""
}

// emptyDecision returns a no-op decision shaped for the event's family, used
// as the aggregation seed so FinalOutput always has the right variant.
func emptyDecision(event Event) Decision {
	switch event.Family() {
	case FamilyModel:
		return Decision{Model: &ModelDecision{}}
	case FamilyToolSelection:
		return Decision{ToolSelection: &ToolSelectionDecision{}}
	default:
		return Decision{Tool: &ToolDecision{}}
	}
}

// Warning records one fail-open infrastructure failure: the offending hook's
// command, its exit status or timeout, and captured stderr.
type Warning struct {
	Command string `json:"command"`
	Detail  string `json:"detail"`
	Stderr  string `json:"stderr,omitempty"`
}

// Result is the engine's aggregated return value for one fired event.
// Success is diagnostic only; policy decisions live inside FinalOutput.
type Result struct {
	FinalOutput Decision
	AllOutputs  []Decision
	Errors      []Warning
	Success     bool
}

// emptyResult is the fast-path result when no hook matched.
func emptyResult(event Event) Result {
	return Result{FinalOutput: emptyDecision(event), Success: true}
}
