// ABOUTME: CLI flag parsing using stdlib flag package
// ABOUTME: Supports --validate, --event, --tool, --input, --model, --verbose

package main

import "flag"

type cliArgs struct {
	validate bool
	event    string
	tool     string
	input    string
	model    string
	verbose  bool
}

func parseFlags() cliArgs {
	var args cliArgs

	flag.BoolVar(&args.validate, "validate", false, "Validate hook configuration and exit")
	flag.StringVar(&args.event, "event", "", "Event to fire (e.g., BeforeTool)")
	flag.StringVar(&args.tool, "tool", "", "Tool name for tool events")
	flag.StringVar(&args.input, "input", "", "Tool input as JSON for tool events")
	flag.StringVar(&args.model, "model", "", "Model id for model events")
	flag.BoolVar(&args.verbose, "verbose", false, "Enable debug logging")

	flag.Parse()
	return args
}
