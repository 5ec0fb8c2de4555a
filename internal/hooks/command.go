// ABOUTME: Single hook process execution with timeout and outcome decoding
// ABOUTME: Pipes Input as JSON to stdin; decodes exit status into an Outcome

package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// OutcomeKind discriminates the decoded result of one hook process.
type OutcomeKind int

const (
	// OutcomeParsed: exit 0; stdout parsed as a structured decision or
	// treated as a plain additive message.
	OutcomeParsed OutcomeKind = iota
	// OutcomeBlocked: exit 2; a deliberate policy block, not an error.
	OutcomeBlocked
	// OutcomeWarning: any other exit code, a delivered signal, or a
	// timeout. Fail-open: decision defaults to no-op.
	OutcomeWarning
)

// Outcome is the exit status of a hook decoded into policy terms. Decoding
// happens immediately after process completion so aggregation never sees
// raw exit codes.
type Outcome struct {
	Kind     OutcomeKind
	Decision Decision
	Warning  Warning
}

// ExecutionResult is the raw and decoded outcome of one hook process.
// Single-use: consumed by aggregation, then discarded.
type ExecutionResult struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	Signal   string
	Outcome  Outcome
}

// runHook executes one hook command via sh -c with the input piped to stdin
// as JSON. The hook's timeout kills its whole process group; the failure
// surfaces as a warning outcome, never an error.
func runHook(ctx context.Context, ch compiledHook, input Input) ExecutionResult {
	res := ExecutionResult{Command: ch.def.Command}

	inputJSON, err := json.Marshal(input)
	if err != nil {
		res.Outcome = warningOutcome(res, fmt.Sprintf("marshal hook input: %v", err))
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, ch.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", ch.def.Command)
	cmd.Stdin = bytes.NewReader(inputJSON)
	setProcGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	cmd.Cancel = func() error {
		return killProcGroup(cmd)
	}

	runErr := cmd.Run()

	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	res.TimedOut = errors.Is(ctx.Err(), context.DeadlineExceeded)

	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
		res.ExitCode = 0
	case errors.As(runErr, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		res.Signal = exitSignal(exitErr)
	default:
		// Spawn failure: the command never ran.
		res.ExitCode = -1
		res.Outcome = warningOutcome(res, fmt.Sprintf("spawn failed: %v", runErr))
		return res
	}

	res.Outcome = decodeOutcome(ch, res)
	return res
}

// decodeOutcome maps the stable exit-code contract onto an Outcome:
// 0 parses stdout, 2 blocks with reason from stderr else stdout, and
// everything else (including signals and timeouts) degrades to a warning.
func decodeOutcome(ch compiledHook, res ExecutionResult) Outcome {
	switch {
	case res.TimedOut:
		return warningOutcome(res, fmt.Sprintf("timed out after %v", ch.timeout))
	case res.ExitCode == 0:
		return Outcome{Kind: OutcomeParsed, Decision: ParseDecision(ch.event, res.Stdout)}
	case res.ExitCode == 2:
		reason := strings.TrimSpace(res.Stderr)
		if reason == "" {
			reason = strings.TrimSpace(res.Stdout)
		}
		if ch.event.Family() == FamilyToolSelection {
			// Selection hooks have no block channel; the veto surfaces
			// as a warning instead of disappearing.
			return warningOutcome(res, fmt.Sprintf("requested a block (%q), but selection hooks cannot block", reason))
		}
		return Outcome{Kind: OutcomeBlocked, Decision: BlockDecision(ch.event, reason)}
	case res.Signal != "":
		return warningOutcome(res, fmt.Sprintf("terminated by signal %s", res.Signal))
	default:
		return warningOutcome(res, fmt.Sprintf("exited with code %d", res.ExitCode))
	}
}

func warningOutcome(res ExecutionResult, detail string) Outcome {
	return Outcome{
		Kind: OutcomeWarning,
		Warning: Warning{
			Command: res.Command,
			Detail:  detail,
			Stderr:  strings.TrimSpace(res.Stderr),
		},
	}
}
