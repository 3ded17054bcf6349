package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/clipboard"
	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/draft"
	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/lead"
	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/wizard"
)

// runSubmitCmd implements `mahfal submit`.
//
// The file is replayed through the wizard's steps against a throwaway
// draft slot, so the interactive draft is left untouched.
//
// Exit codes:
//
//	0 = request received
//	1 = submission failed
//	2 = usage, configuration, or validation error
func runSubmitCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("submit", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		file       string
		configPath string
		jsonOutput bool
	)

	cmd.StringVar(&file, "file", "", "Path to a YAML or JSON lead record (REQUIRED)")
	cmd.StringVar(&configPath, "config", "", "Optional YAML config file")
	cmd.BoolVar(&jsonOutput, "json", false, "Print the submitted record as JSON")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if file == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --file is required")
		return 2
	}

	rec, err := lead.LoadFile(file)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if err := rec.Validate(); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	ctx := context.Background()
	a, err := setup(ctx, setupOptions{configPath: configPath, needClient: true}, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer a.close(ctx)

	w, err := wizard.New(ctx, wizard.Deps{
		Draft:     draft.NewSlot(draft.NewMemoryStore()),
		Submitter: a.client,
		Clipboard: &clipboard.Buffer{},
		Recorder:  a.metrics,
		Logger:    a.logger.With("component", "wizard"),
	})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if err := fillRecord(ctx, w, rec); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: step %d: %v\n", w.Step(), err)
		return 2
	}

	if err := w.Submit(ctx); err != nil {
		if errors.Is(err, wizard.ErrStepIncomplete) {
			_, _ = fmt.Fprintln(stderr, "Error: full name, phone and consent are required")
			return 2
		}
		a.logger.ErrorContext(ctx, "submission failed", "error", err)
		_, _ = fmt.Fprintf(stderr, "%s%s%s\n", ColorRed, wizard.FailureNotice, ColorReset)
		return 1
	}

	printReceived(stdout, w)
	if jsonOutput {
		text, err := w.ExportJSON()
		if err == nil {
			_, _ = fmt.Fprintln(stdout, text)
		}
	}
	return 0
}

// fillRecord enters rec through the wizard's setters, advancing to the
// contact step.
func fillRecord(ctx context.Context, w *wizard.Wizard, rec lead.Record) error {
	if rec.OccasionType != "" {
		if err := w.SetOccasion(ctx, rec.OccasionType); err != nil {
			return err
		}
	}
	if rec.LocationArea != "" {
		if err := w.SetArea(ctx, rec.LocationArea); err != nil {
			return err
		}
	}
	if err := w.SetDate(ctx, rec.Date); err != nil {
		return err
	}
	if err := w.SetFlexibleDate(ctx, rec.IsFlexibleDate); err != nil {
		return err
	}
	if err := w.Next(); err != nil {
		return err
	}

	if err := w.SetGuests(ctx, lead.ClampGuests(rec.Guests)); err != nil {
		return err
	}
	if rec.BudgetRange != "" {
		if err := w.SetBudget(ctx, rec.BudgetRange); err != nil {
			return err
		}
	}
	if rec.VenuePreference != "" {
		if err := w.SetVenuePreference(ctx, rec.VenuePreference); err != nil {
			return err
		}
	}
	if err := w.Next(); err != nil {
		return err
	}

	for _, s := range rec.Suppliers {
		if err := w.ToggleSupplier(ctx, s); err != nil {
			return err
		}
	}
	for _, v := range rec.Vibe {
		if _, err := w.ToggleVibe(ctx, v); err != nil {
			return err
		}
	}
	if err := w.SetNotes(ctx, rec.Notes); err != nil {
		return err
	}
	if err := w.Next(); err != nil {
		return err
	}

	steps := []error{
		w.SetFullName(ctx, rec.FullName),
		w.SetPhone(ctx, rec.Phone),
		w.SetWhatsApp(ctx, rec.IsWhatsapp),
		w.SetEmail(ctx, rec.Email),
		w.SetConsent(ctx, rec.Consent),
	}
	return errors.Join(steps...)
}

func printReceived(out io.Writer, w *wizard.Wizard) {
	rec := w.Record()
	_, _ = fmt.Fprintf(out, "%s%sRequest received%s\n", ColorBold, ColorGreen, ColorReset)
	_, _ = fmt.Fprintf(out, "We'll contact you shortly with a curated shortlist for your %s.\n\n", rec.OccasionType)
	_, _ = fmt.Fprintf(out, "%sREQUEST SUMMARY%s\n", ColorBold, ColorReset)
	summary, err := w.Summary()
	if err != nil {
		return
	}
	for _, line := range summary {
		_, _ = fmt.Fprintf(out, "  %-10s %s\n", line.Label, line.Value)
	}
}
