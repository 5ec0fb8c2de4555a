// ABOUTME: Hook configuration checker and test-firing utility
// ABOUTME: Validates the loaded hook table or fires one event against it

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mauromedda/pi-hooks-go/internal/config"
	"github.com/mauromedda/pi-hooks-go/internal/hooks"
	"github.com/mauromedda/pi-hooks-go/internal/log"
	"github.com/mauromedda/pi-hooks-go/internal/session"
	"github.com/mauromedda/pi-hooks-go/pkg/ai"
)

func main() {
	args := parseFlags()
	if args.verbose {
		log.SetLevel(log.LevelDebug)
	}

	if err := run(args); err != nil {
		fmt.Fprintf(os.Stderr, "pi-hooks: %v\n", err)
		os.Exit(1)
	}
}

func run(args cliArgs) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving cwd: %w", err)
	}

	settings, err := config.Load(cwd)
	if err != nil {
		return err
	}

	if args.validate {
		return validate(settings)
	}

	if args.event == "" {
		return fmt.Errorf("--event is required (or use --validate)")
	}

	return fire(args, settings, cwd)
}

// validate compiles the hook table and reports its shape.
func validate(settings *config.Settings) error {
	registry := hooks.NewRegistry(settings.Hooks)
	if err := registry.Initialize(); err != nil {
		return err
	}

	total := 0
	for event, defs := range settings.Hooks {
		fmt.Printf("%s: %d hook(s)\n", event, len(defs))
		total += len(defs)
	}
	if total == 0 {
		fmt.Println("no hooks configured")
	}
	return nil
}

// fire runs one event against the configured hooks and prints the
// aggregated result as JSON.
func fire(args cliArgs, settings *config.Settings, cwd string) error {
	event := hooks.Event(args.event)
	if !event.Valid() {
		return fmt.Errorf("unknown event %q", args.event)
	}

	sess, err := session.New(cwd)
	if err != nil {
		return err
	}
	defer sess.Close()

	system := hooks.NewSystem(settings.Hooks, func() hooks.SessionInfo {
		return hooks.SessionInfo{
			SessionID:      sess.ID,
			CWD:            sess.CWD,
			TranscriptPath: sess.TranscriptPath(),
		}
	})
	if err := system.Initialize(); err != nil {
		return err
	}

	handler, err := system.EventHandler()
	if err != nil {
		return err
	}

	payload, err := buildPayload(event, args)
	if err != nil {
		return err
	}

	result := handler.Fire(context.Background(), event, payload)
	return printResult(result)
}

func buildPayload(event hooks.Event, args cliArgs) (hooks.Payload, error) {
	payload := hooks.Payload{ToolName: args.tool}

	if args.input != "" {
		var input map[string]any
		if err := json.Unmarshal([]byte(args.input), &input); err != nil {
			return hooks.Payload{}, fmt.Errorf("parsing --input: %w", err)
		}
		payload.ToolInput = input
	}

	if event.Family() != hooks.FamilyTool {
		payload.Request = &ai.Request{Model: args.model}
	}

	return payload, nil
}

func printResult(result hooks.Result) error {
	out := map[string]any{
		"success": result.Success,
		"blocked": result.FinalOutput.Blocked(),
		"outputs": len(result.AllOutputs),
	}
	if reason := result.FinalOutput.BlockReason(); reason != "" {
		out["reason"] = reason
	}
	if len(result.Errors) > 0 {
		out["errors"] = result.Errors
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
