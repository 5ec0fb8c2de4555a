// ABOUTME: Tests for system lifecycle and end-to-end event firing
// ABOUTME: Exercises envelope assembly, phase composition, and fail-open behavior

package hooks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mauromedda/pi-hooks-go/internal/config"
	"github.com/mauromedda/pi-hooks-go/pkg/ai"
)

func testInfo() SessionInfo {
	return SessionInfo{SessionID: "sess-test", CWD: "/work", TranscriptPath: "/work/t.jsonl"}
}

func newSystem(t *testing.T, defs map[string][]config.HookDef) *System {
	t.Helper()
	s := NewSystem(defs, testInfo)
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return s
}

func fireEvent(t *testing.T, s *System, event Event, payload Payload) Result {
	t.Helper()
	handler, err := s.EventHandler()
	if err != nil {
		t.Fatalf("EventHandler: %v", err)
	}
	return handler.Fire(context.Background(), event, payload)
}

func TestSystem_HandlerBeforeInitialize(t *testing.T) {
	t.Parallel()

	s := NewSystem(nil, testInfo)
	if _, err := s.EventHandler(); err != ErrNotInitialized {
		t.Errorf("err = %v, want ErrNotInitialized", err)
	}

	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if _, err := s.EventHandler(); err != nil {
		t.Errorf("EventHandler after Initialize: %v", err)
	}
}

func TestSystem_InitializeIdempotent(t *testing.T) {
	t.Parallel()

	s := newSystem(t, map[string][]config.HookDef{
		"BeforeTool": {{Command: "echo ok"}},
	})
	if err := s.Initialize(); err != nil {
		t.Errorf("second Initialize: %v", err)
	}
}

func TestSystem_ConfigErrorAbortsOnlyHookSystem(t *testing.T) {
	t.Parallel()

	s := NewSystem(map[string][]config.HookDef{
		"BeforeTool": {{Matcher: "[bad", Command: "echo ok"}},
	}, testInfo)

	if err := s.Initialize(); err == nil {
		t.Fatal("expected configuration error")
	}
	if _, err := s.EventHandler(); err != ErrNotInitialized {
		t.Errorf("failed init must leave the system uninitialized, got %v", err)
	}
}

func TestFire_NoMatchingHooks(t *testing.T) {
	t.Parallel()

	s := newSystem(t, map[string][]config.HookDef{
		"BeforeTool": {{Matcher: "^bash$", Command: "echo ok"}},
	})

	res := fireEvent(t, s, BeforeTool, Payload{ToolName: "read"})
	if !res.Success {
		t.Error("no-hook result must be success")
	}
	if len(res.AllOutputs) != 0 || len(res.Errors) != 0 {
		t.Errorf("expected empty outputs and errors, got %+v", res)
	}
	if res.FinalOutput.Tool == nil || res.FinalOutput.Tool.Blocked {
		t.Errorf("expected no-op tool decision, got %+v", res.FinalOutput)
	}
}

func TestFire_BlockedToolScenario(t *testing.T) {
	t.Parallel()

	// One BeforeTool hook matched on shell_exec exits 2 with a stderr reason.
	s := newSystem(t, map[string][]config.HookDef{
		"BeforeTool": {{
			Matcher: "shell_exec",
			Command: `echo "destructive command" >&2; exit 2`,
		}},
	})

	res := fireEvent(t, s, BeforeTool, Payload{
		ToolName:  "shell_exec",
		ToolInput: map[string]any{"command": "rm -rf /"},
	})

	if !res.FinalOutput.Tool.Blocked {
		t.Fatal("expected blocked result")
	}
	if res.FinalOutput.Tool.Reason != "destructive command" {
		t.Errorf("Reason = %q, want stderr text", res.FinalOutput.Tool.Reason)
	}
}

func TestFire_EnvelopeFields(t *testing.T) {
	t.Parallel()

	captured := filepath.Join(t.TempDir(), "envelope.json")
	s := newSystem(t, map[string][]config.HookDef{
		"AfterTool": {{Command: fmt.Sprintf("cat > %s", captured)}},
	})

	fireEvent(t, s, AfterTool, Payload{
		ToolName:   "read",
		ToolInput:  map[string]any{"path": "x"},
		ToolOutput: map[string]any{"content": "y"},
	})

	data, err := os.ReadFile(captured)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{
		`"session_id":"sess-test"`,
		`"cwd":"/work"`,
		`"hook_event_name":"AfterTool"`,
		`"transcript_path":"/work/t.jsonl"`,
		`"tool_name":"read"`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("envelope missing %s in %s", want, text)
		}
	}

	// Timestamp must be a parseable ISO-8601 string.
	var envelope Input
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatal(err)
	}
	if _, err := time.Parse(time.RFC3339, envelope.Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", envelope.Timestamp, err)
	}
}

func TestFire_SequentialPhaseFoldsIntoParallelPhase(t *testing.T) {
	t.Parallel()

	captured := filepath.Join(t.TempDir(), "parallel.json")
	s := newSystem(t, map[string][]config.HookDef{
		"BeforeTool": {
			{Command: `echo '{"tool_input":{"command":"sanitized"}}'`},
			{Command: fmt.Sprintf("cat > %s", captured), Mode: "parallel"},
		},
	})

	fireEvent(t, s, BeforeTool, Payload{
		ToolName:  "bash",
		ToolInput: map[string]any{"command": "raw"},
	})

	data, err := os.ReadFile(captured)
	if err != nil {
		t.Fatal(err)
	}
	var got Input
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.ToolInput["command"] != "sanitized" {
		t.Errorf("parallel phase saw %v, want sequential phase's output", got.ToolInput)
	}
}

func TestFire_SequentialBlockSkipsParallelPhase(t *testing.T) {
	t.Parallel()

	marker := filepath.Join(t.TempDir(), "ran")
	s := newSystem(t, map[string][]config.HookDef{
		"BeforeTool": {
			{Command: `echo "vetoed" >&2; exit 2`},
			{Command: fmt.Sprintf("touch %s", marker), Mode: "parallel"},
		},
	})

	res := fireEvent(t, s, BeforeTool, Payload{ToolName: "bash"})
	if !res.FinalOutput.Tool.Blocked || res.FinalOutput.Tool.Reason != "vetoed" {
		t.Fatalf("expected sequential block to win, got %+v", res.FinalOutput.Tool)
	}
	if _, err := os.Stat(marker); !os.IsNotExist(err) {
		t.Error("parallel phase must not run after a sequential block")
	}
}

func TestFire_FailOpenKeepsPipelineMoving(t *testing.T) {
	t.Parallel()

	s := newSystem(t, map[string][]config.HookDef{
		"BeforeTool": {
			{Command: "exit 7"},
			{Command: `echo '{"additionalContext":"survivor"}'`},
		},
	})

	res := fireEvent(t, s, BeforeTool, Payload{ToolName: "bash"})
	if res.FinalOutput.Tool.Blocked {
		t.Error("infrastructure failure must never block")
	}
	if len(res.Errors) != 1 {
		t.Fatalf("Errors = %+v, want 1 warning", res.Errors)
	}
	if res.FinalOutput.Tool.AdditionalContext != "survivor" {
		t.Error("later hooks must still run after a fail-open warning")
	}
	if res.Success {
		t.Error("Success is diagnostic and must reflect the warning")
	}
}

func TestFire_ModelEventMatcherUsesModelID(t *testing.T) {
	t.Parallel()

	s := newSystem(t, map[string][]config.HookDef{
		"AfterModel": {{Matcher: "^claude-", Command: `echo '{"text":"patched"}'`}},
	})

	resp := &ai.Response{Text: "raw", StopReason: ai.StopEndTurn}

	res := fireEvent(t, s, AfterModel, Payload{
		Request:  &ai.Request{Model: "claude-sonnet"},
		Response: resp,
	})
	if res.FinalOutput.Model.Fields["text"] != "patched" {
		t.Errorf("Fields = %v", res.FinalOutput.Model.Fields)
	}

	res = fireEvent(t, s, AfterModel, Payload{
		Request:  &ai.Request{Model: "gpt-4"},
		Response: resp,
	})
	if len(res.AllOutputs) != 0 {
		t.Error("hook must not fire for non-matching model id")
	}
}
