// ABOUTME: Tests for hook process execution: exit codes, timeouts, chaining
// ABOUTME: Uses real shell commands to exercise the full execution path

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
)

func mustCompile(t *testing.T, event Event, def config.HookDef) compiledHook {
	t.Helper()
	ch, err := compileHook(event, def)
	if err != nil {
		t.Fatalf("compileHook: %v", err)
	}
	return ch
}

func TestRunHook_ExitZeroJSON(t *testing.T) {
	t.Parallel()

	ch := mustCompile(t, BeforeTool, config.HookDef{Command: `echo '{"blocked":false,"systemMessage":"ok"}'`})
	res := runHook(context.Background(), ch, Input{EventName: BeforeTool})

	if res.Outcome.Kind != OutcomeParsed {
		t.Fatalf("Kind = %v, want OutcomeParsed", res.Outcome.Kind)
	}
	if res.Outcome.Decision.Tool.SystemMessage != "ok" {
		t.Errorf("SystemMessage = %q", res.Outcome.Decision.Tool.SystemMessage)
	}
}

func TestRunHook_ExitZeroPlainText(t *testing.T) {
	t.Parallel()

	ch := mustCompile(t, BeforeTool, config.HookDef{Command: `echo "not json at all"`})
	res := runHook(context.Background(), ch, Input{EventName: BeforeTool})

	if res.Outcome.Kind != OutcomeParsed {
		t.Fatalf("Kind = %v, want OutcomeParsed", res.Outcome.Kind)
	}
	if res.Outcome.Decision.Tool.AdditionalContext != "not json at all" {
		t.Errorf("AdditionalContext = %q", res.Outcome.Decision.Tool.AdditionalContext)
	}
}

func TestRunHook_ExitTwoBlocksWithStderrReason(t *testing.T) {
	t.Parallel()

	ch := mustCompile(t, BeforeTool, config.HookDef{Command: `echo "ignored stdout"; echo "destructive command" >&2; exit 2`})
	res := runHook(context.Background(), ch, Input{EventName: BeforeTool})

	if res.Outcome.Kind != OutcomeBlocked {
		t.Fatalf("Kind = %v, want OutcomeBlocked", res.Outcome.Kind)
	}
	if res.Outcome.Decision.Tool.Reason != "destructive command" {
		t.Errorf("Reason = %q, want stderr text", res.Outcome.Decision.Tool.Reason)
	}
}

func TestRunHook_ExitTwoFallsBackToStdoutReason(t *testing.T) {
	t.Parallel()

	ch := mustCompile(t, BeforeTool, config.HookDef{Command: `echo "stdout reason"; exit 2`})
	res := runHook(context.Background(), ch, Input{EventName: BeforeTool})

	if res.Outcome.Decision.Tool.Reason != "stdout reason" {
		t.Errorf("Reason = %q, want stdout fallback", res.Outcome.Decision.Tool.Reason)
	}
}

func TestRunHook_SelectionExitTwoIsWarning(t *testing.T) {
	t.Parallel()

	ch := mustCompile(t, BeforeToolSelection, config.HookDef{Command: `echo "no tools for you" >&2; exit 2`})
	res := runHook(context.Background(), ch, Input{EventName: BeforeToolSelection})

	if res.Outcome.Kind != OutcomeWarning {
		t.Fatalf("Kind = %v, want OutcomeWarning", res.Outcome.Kind)
	}
	if !strings.Contains(res.Outcome.Warning.Detail, "no tools for you") {
		t.Errorf("Detail = %q, want the veto reason surfaced", res.Outcome.Warning.Detail)
	}
	if !res.Outcome.Decision.IsZero() {
		t.Errorf("Decision = %+v, want no decision", res.Outcome.Decision)
	}
}

func TestRunHook_OtherExitCodeIsWarning(t *testing.T) {
	t.Parallel()

	ch := mustCompile(t, BeforeTool, config.HookDef{Command: `echo "oops" >&2; exit 3`})
	res := runHook(context.Background(), ch, Input{EventName: BeforeTool})

	if res.Outcome.Kind != OutcomeWarning {
		t.Fatalf("Kind = %v, want OutcomeWarning", res.Outcome.Kind)
	}
	if !strings.Contains(res.Outcome.Warning.Detail, "code 3") {
		t.Errorf("Detail = %q, want exit code mention", res.Outcome.Warning.Detail)
	}
	if res.Outcome.Warning.Stderr != "oops" {
		t.Errorf("Stderr = %q", res.Outcome.Warning.Stderr)
	}
	if res.Outcome.Decision.Blocked() {
		t.Error("a warning must carry a no-op decision")
	}
}

func TestRunHook_SignalIsWarning(t *testing.T) {
	t.Parallel()

	ch := mustCompile(t, BeforeTool, config.HookDef{Command: `kill -KILL $$`})
	res := runHook(context.Background(), ch, Input{EventName: BeforeTool})

	if res.Outcome.Kind != OutcomeWarning {
		t.Fatalf("Kind = %v, want OutcomeWarning", res.Outcome.Kind)
	}
	if res.Signal == "" {
		t.Error("expected recorded signal")
	}
}

func TestRunHook_TimeoutIsWarning(t *testing.T) {
	t.Parallel()

	ch := mustCompile(t, BeforeTool, config.HookDef{Command: "sleep 30", TimeoutMs: 200})

	start := time.Now()
	res := runHook(context.Background(), ch, Input{EventName: BeforeTool})
	elapsed := time.Since(start)

	if !res.TimedOut {
		t.Fatal("expected TimedOut")
	}
	if res.Outcome.Kind != OutcomeWarning {
		t.Errorf("Kind = %v, want OutcomeWarning", res.Outcome.Kind)
	}
	if elapsed > 5*time.Second {
		t.Errorf("hook took %v, expected kill around 200ms", elapsed)
	}
}

func TestRunHook_ReceivesInputOnStdin(t *testing.T) {
	t.Parallel()

	captured := filepath.Join(t.TempDir(), "input.json")
	ch := mustCompile(t, BeforeTool, config.HookDef{Command: fmt.Sprintf("cat > %s", captured)})

	input := Input{
		SessionID:      "sess-1",
		CWD:            "/work",
		Timestamp:      "2026-01-01T00:00:00Z",
		EventName:      BeforeTool,
		TranscriptPath: "/work/t.jsonl",
		ToolName:       "bash",
		ToolInput:      map[string]any{"command": "ls"},
	}
	if res := runHook(context.Background(), ch, input); res.Outcome.Kind != OutcomeParsed {
		t.Fatalf("outcome = %+v", res.Outcome)
	}

	data, err := os.ReadFile(captured)
	if err != nil {
		t.Fatalf("reading captured input: %v", err)
	}
	var got Input
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("captured input is not valid JSON: %v", err)
	}
	if got.SessionID != "sess-1" || got.EventName != BeforeTool || got.ToolName != "bash" {
		t.Errorf("envelope = %+v", got)
	}
	if got.ToolInput["command"] != "ls" {
		t.Errorf("tool_input = %v", got.ToolInput)
	}
}

func TestRunSequential_ChainsModifiedInput(t *testing.T) {
	t.Parallel()

	captured := filepath.Join(t.TempDir(), "second.json")
	chain := []compiledHook{
		mustCompile(t, BeforeTool, config.HookDef{Command: `echo '{"tool_input":{"command":"echo safe"}}'`}),
		mustCompile(t, BeforeTool, config.HookDef{Command: fmt.Sprintf("cat > %s", captured)}),
	}

	input := Input{EventName: BeforeTool, ToolName: "bash", ToolInput: map[string]any{"command": "rm -rf /"}}
	results, final := NewRunner().RunSequential(context.Background(), chain, input)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	data, err := os.ReadFile(captured)
	if err != nil {
		t.Fatalf("reading second hook's input: %v", err)
	}
	var got Input
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.ToolInput["command"] != "echo safe" {
		t.Errorf("second hook saw %v, want first hook's modification", got.ToolInput)
	}
	if final.ToolInput["command"] != "echo safe" {
		t.Errorf("final chained input = %v", final.ToolInput)
	}
}

func TestRunSequential_BlockStopsChain(t *testing.T) {
	t.Parallel()

	marker := filepath.Join(t.TempDir(), "ran")
	chain := []compiledHook{
		mustCompile(t, BeforeTool, config.HookDef{Command: `echo "no" >&2; exit 2`}),
		mustCompile(t, BeforeTool, config.HookDef{Command: fmt.Sprintf("touch %s", marker)}),
	}

	results, _ := NewRunner().RunSequential(context.Background(), chain, Input{EventName: BeforeTool})

	if len(results) != 1 {
		t.Fatalf("expected chain to stop after block, got %d results", len(results))
	}
	if _, err := os.Stat(marker); !os.IsNotExist(err) {
		t.Error("hook after a block must never run")
	}
}

func TestRunParallel_SlowHookDoesNotDelaySiblings(t *testing.T) {
	t.Parallel()

	batch := []compiledHook{
		mustCompile(t, BeforeTool, config.HookDef{Command: "sleep 30", Mode: "parallel", TimeoutMs: 1500}),
		mustCompile(t, BeforeTool, config.HookDef{Command: `echo '{"systemMessage":"fast"}'`, Mode: "parallel"}),
	}

	start := time.Now()
	results := NewRunner().RunParallel(context.Background(), batch, Input{EventName: BeforeTool})
	elapsed := time.Since(start)

	// Total wall clock is bounded by the slow hook's own timeout, not 30s.
	if elapsed > 10*time.Second {
		t.Fatalf("parallel batch took %v", elapsed)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	// Results come back in registration order regardless of completion order.
	if results[0].Outcome.Kind != OutcomeWarning {
		t.Errorf("slow hook outcome = %v, want timeout warning", results[0].Outcome.Kind)
	}
	if results[1].Outcome.Kind != OutcomeParsed || results[1].Outcome.Decision.Tool.SystemMessage != "fast" {
		t.Errorf("fast hook outcome = %+v", results[1].Outcome)
	}
}

func TestRunParallel_AllShareSameInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := filepath.Join(dir, "a.json")
	second := filepath.Join(dir, "b.json")
	batch := []compiledHook{
		mustCompile(t, BeforeTool, config.HookDef{Command: fmt.Sprintf("cat > %s", first), Mode: "parallel"}),
		mustCompile(t, BeforeTool, config.HookDef{Command: fmt.Sprintf("cat > %s", second), Mode: "parallel"}),
	}

	input := Input{EventName: BeforeTool, ToolInput: map[string]any{"k": "v"}}
	NewRunner().RunParallel(context.Background(), batch, input)

	a, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(second)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Errorf("parallel hooks saw different inputs:\n%s\n%s", a, b)
	}
}
