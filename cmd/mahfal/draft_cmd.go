package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/draft"
)

// runDraftCmd implements `mahfal draft show|clear`.
func runDraftCmd(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		_, _ = fmt.Fprintln(stderr, "Usage: mahfal draft <show|clear> [--config file]")
		return 2
	}
	sub := args[0]
	if sub != "show" && sub != "clear" {
		_, _ = fmt.Fprintf(stderr, "Unknown draft subcommand: %s\n", sub)
		return 2
	}

	cmd := flag.NewFlagSet("draft "+sub, flag.ContinueOnError)
	cmd.SetOutput(stderr)
	var configPath string
	cmd.StringVar(&configPath, "config", "", "Optional YAML config file")
	if err := cmd.Parse(args[1:]); err != nil {
		return 2
	}

	ctx := context.Background()
	a, err := setup(ctx, setupOptions{configPath: configPath, needStore: true}, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer a.close(ctx)

	slot := draft.NewSlot(a.store)

	if sub == "clear" {
		if err := slot.Clear(ctx); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintln(stdout, "Draft cleared.")
		return 0
	}

	if _, ok, err := slot.Raw(ctx); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	} else if !ok {
		_, _ = fmt.Fprintln(stdout, "No draft saved.")
		return 0
	}

	b, err := json.MarshalIndent(slot.Load(ctx), "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(stdout, string(b))
	return 0
}
