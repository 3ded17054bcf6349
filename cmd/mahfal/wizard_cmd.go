package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/clipboard"
	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/draft"
	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/lead"
	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/wizard"
)

// errQuit ends the session with the draft kept.
var errQuit = errors.New("quit")

// newClipboard is a variable to allow substitution in tests.
var newClipboard = func() clipboard.Writer { return clipboard.NewSystem() }

// runWizardCmd implements `mahfal wizard`, the interactive intake flow.
// Every answer is saved to the draft store, so quitting (or EOF) at any
// prompt resumes at the same values next time.
func runWizardCmd(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("wizard", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var configPath string
	cmd.StringVar(&configPath, "config", "", "Optional YAML config file")
	if err := cmd.Parse(args); err != nil {
		return 2
	}

	ctx := context.Background()
	a, err := setup(ctx, setupOptions{configPath: configPath, needClient: true, needStore: true}, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer a.close(ctx)

	slot := draft.NewSlot(a.store)
	_, resumed, _ := slot.Raw(ctx)

	w, err := wizard.New(ctx, wizard.Deps{
		Draft:     slot,
		Submitter: a.client,
		Clipboard: newClipboard(),
		Recorder:  a.metrics,
		Logger:    a.logger.With("component", "wizard"),
	})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	p := &prompter{sc: bufio.NewScanner(stdin), out: stdout}
	if resumed {
		p.say("Resuming your saved draft.")
	}

	err = drive(ctx, p, w)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errQuit), errors.Is(err, io.EOF):
		if w.State() != wizard.StateSuccess {
			p.say("Draft saved. Run `mahfal wizard` to pick up where you left off.")
		}
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

// drive runs the state loop until the user quits or input ends.
func drive(ctx context.Context, p *prompter, w *wizard.Wizard) error {
	for {
		state := w.State()
		switch state {
		case wizard.StateStep1, wizard.StateStep2, wizard.StateStep3, wizard.StateStep4:
			p.say("")
			p.say(ColorBold + w.Progress() + ColorReset)
		}

		var err error
		switch state {
		case wizard.StateStep1:
			err = askEvent(ctx, p, w)
		case wizard.StateStep2:
			err = askBudget(ctx, p, w)
		case wizard.StateStep3:
			err = askDetails(ctx, p, w)
		case wizard.StateStep4:
			err = askContact(ctx, p, w)
		case wizard.StateFailed:
			err = onFailed(ctx, p, w)
		case wizard.StateSuccess:
			err = onSuccess(ctx, p, w)
		default:
			return fmt.Errorf("unexpected state %s", state)
		}
		if err != nil {
			return err
		}
	}
}

func askEvent(ctx context.Context, p *prompter, w *wizard.Wizard) error {
	rec := w.Record()

	occ, err := p.choose("What's the occasion?", labels(lead.Occasions, nil), string(rec.OccasionType))
	if err != nil {
		return err
	}
	if err := w.SetOccasion(ctx, lead.Occasion(occ)); err != nil {
		return err
	}

	area, err := p.choose("Where?", labels(lead.Areas, func(a lead.Area) string { return a.Label() }), string(rec.LocationArea))
	if err != nil {
		return err
	}
	if err := w.SetArea(ctx, lead.Area(area)); err != nil {
		return err
	}

	for {
		current := rec.Date
		if rec.IsFlexibleDate {
			current = "flexible"
		}
		in, err := p.line(fmt.Sprintf("When? (YYYY-MM-DD or 'flexible') [%s]: ", current))
		if err != nil {
			return err
		}
		if in == "" {
			break
		}
		if strings.EqualFold(in, "flexible") {
			_ = w.SetDate(ctx, "")
			_ = w.SetFlexibleDate(ctx, true)
			break
		}
		if err := w.SetDate(ctx, in); err != nil {
			p.say("Please enter a date like 2025-06-01.")
			continue
		}
		_ = w.SetFlexibleDate(ctx, false)
		break
	}

	return p.navigate(w, "[n]ext, [q]uit")
}

func askBudget(ctx context.Context, p *prompter, w *wizard.Wizard) error {
	rec := w.Record()

	for {
		in, err := p.line(fmt.Sprintf("Guests (%d-%d, steps of %d) [%d]: ", lead.MinGuests, lead.MaxGuests, lead.GuestStep, rec.Guests))
		if err != nil {
			return err
		}
		if in == "" {
			break
		}
		n, convErr := strconv.Atoi(in)
		if convErr == nil && w.SetGuests(ctx, n) == nil {
			break
		}
		p.say(fmt.Sprintf("Please enter a multiple of %d between %d and %d.", lead.GuestStep, lead.MinGuests, lead.MaxGuests))
	}

	budget, err := p.choose("Estimated Budget", labels(lead.Budgets, nil), string(rec.BudgetRange))
	if err != nil {
		return err
	}
	if err := w.SetBudget(ctx, lead.Budget(budget)); err != nil {
		return err
	}

	venue, err := p.choose("Preference", labels(lead.VenuePreferences, nil), string(rec.VenuePreference))
	if err != nil {
		return err
	}
	if err := w.SetVenuePreference(ctx, lead.VenuePreference(venue)); err != nil {
		return err
	}

	return p.navigate(w, "[n]ext, [b]ack, [q]uit")
}

func askDetails(ctx context.Context, p *prompter, w *wizard.Wizard) error {
	rec := w.Record()

	picks, err := p.multi("Add Suppliers (Optional)", labels(lead.Suppliers, nil), toStrings(rec.Suppliers))
	if err != nil {
		return err
	}
	for _, s := range picks {
		if err := w.ToggleSupplier(ctx, lead.Supplier(s)); err != nil {
			return err
		}
	}

	picks, err = p.multi(fmt.Sprintf("Vibe (Select up to %d)", lead.MaxVibes), labels(lead.Vibes, nil), toStrings(rec.Vibe))
	if err != nil {
		return err
	}
	for _, v := range picks {
		changed, err := w.ToggleVibe(ctx, lead.Vibe(v))
		if err != nil {
			return err
		}
		if !changed {
			p.say(fmt.Sprintf("Only %d vibes can be selected; %s skipped.", lead.MaxVibes, v))
		}
	}

	notes, err := p.line(fmt.Sprintf("Notes [%s]: ", rec.Notes))
	if err != nil {
		return err
	}
	if notes != "" {
		if err := w.SetNotes(ctx, notes); err != nil {
			return err
		}
	}

	return p.navigate(w, "[n]ext, [b]ack, [q]uit")
}

func askContact(ctx context.Context, p *prompter, w *wizard.Wizard) error {
	if err := askContactFields(ctx, p, w); err != nil {
		return err
	}
	return p.navigate(w, "[s]ubmit, [b]ack, [q]uit", submitAction(ctx, p, w))
}

func askContactFields(ctx context.Context, p *prompter, w *wizard.Wizard) error {
	rec := w.Record()

	text := []struct {
		prompt  string
		current string
		set     func(context.Context, string) error
	}{
		{"Full Name", rec.FullName, w.SetFullName},
		{"Phone Number", rec.Phone, w.SetPhone},
	}
	for _, f := range text {
		in, err := p.line(fmt.Sprintf("%s [%s]: ", f.prompt, f.current))
		if err != nil {
			return err
		}
		if in != "" {
			if err := f.set(ctx, in); err != nil {
				return err
			}
		}
	}

	whatsapp, err := p.yesNo("Contact me on WhatsApp", rec.IsWhatsapp)
	if err != nil {
		return err
	}
	if err := w.SetWhatsApp(ctx, whatsapp); err != nil {
		return err
	}

	email, err := p.line(fmt.Sprintf("Email (Optional) [%s]: ", rec.Email))
	if err != nil {
		return err
	}
	if email != "" {
		if err := w.SetEmail(ctx, email); err != nil {
			return err
		}
	}

	consent, err := p.yesNo("I agree to be contacted about this request", rec.Consent)
	if err != nil {
		return err
	}
	return w.SetConsent(ctx, consent)
}

// submitAction returns the handler for the "s" key.
func submitAction(ctx context.Context, p *prompter, w *wizard.Wizard) func() error {
	return func() error {
		p.say("Sending...")
		err := w.Submit(ctx)
		switch {
		case err == nil, w.State() == wizard.StateFailed:
			return nil
		case errors.Is(err, wizard.ErrStepIncomplete):
			p.say("Full name, phone number and consent are required.")
			return nil
		default:
			return err
		}
	}
}

func onFailed(ctx context.Context, p *prompter, w *wizard.Wizard) error {
	p.say(ColorRed + wizard.FailureNotice + ColorReset)
	for {
		in, err := p.line("[r]etry, [e]dit contact details, [b]ack, [q]uit [r]: ")
		if err != nil {
			return err
		}
		switch strings.ToLower(in) {
		case "", "r":
			return submitAction(ctx, p, w)()
		case "e":
			return askContactFields(ctx, p, w)
		case "b":
			return w.Back()
		case "q":
			return errQuit
		}
	}
}

func onSuccess(ctx context.Context, p *prompter, w *wizard.Wizard) error {
	printReceived(p.out, w)
	for {
		in, err := p.line("[c]opy JSON, [n]ew request, [q]uit [q]: ")
		if err != nil {
			return err
		}
		switch strings.ToLower(in) {
		case "c":
			err := w.Export(ctx)
			if err == nil {
				p.say("Copied to clipboard.")
				continue
			}
			// Without a clipboard, show the JSON instead.
			text, jerr := w.ExportJSON()
			if jerr != nil {
				return jerr
			}
			p.say(text)
		case "n":
			return w.NewRequest(ctx)
		case "", "q":
			return errQuit
		}
	}
}

type prompter struct {
	sc  *bufio.Scanner
	out io.Writer
}

func (p *prompter) say(s string) {
	_, _ = fmt.Fprintln(p.out, s)
}

// line prompts and returns the trimmed answer; io.EOF when input ends.
func (p *prompter) line(prompt string) (string, error) {
	_, _ = fmt.Fprint(p.out, prompt)
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.sc.Text()), nil
}

type option struct {
	value string
	label string
}

// choose asks for one numbered option. Enter keeps current.
func (p *prompter) choose(title string, opts []option, current string) (string, error) {
	p.say(title)
	for i, o := range opts {
		mark := " "
		if o.value == current {
			mark = "*"
		}
		p.say(fmt.Sprintf(" %s %d) %s", mark, i+1, o.label))
	}
	for {
		in, err := p.line("> ")
		if err != nil {
			return "", err
		}
		if in == "" && current != "" {
			return current, nil
		}
		if n, err := strconv.Atoi(in); err == nil && n >= 1 && n <= len(opts) {
			return opts[n-1].value, nil
		}
		p.say(fmt.Sprintf("Pick a number from 1 to %d.", len(opts)))
	}
}

// multi asks for comma-separated option numbers to toggle.
func (p *prompter) multi(title string, opts []option, selected []string) ([]string, error) {
	p.say(title + " (numbers to toggle, comma separated)")
	for i, o := range opts {
		mark := " "
		for _, s := range selected {
			if s == o.value {
				mark = "*"
			}
		}
		p.say(fmt.Sprintf(" %s %d) %s", mark, i+1, o.label))
	}
	for {
		in, err := p.line("> ")
		if err != nil {
			return nil, err
		}
		if in == "" {
			return nil, nil
		}
		var out []string
		ok := true
		for _, f := range strings.Split(in, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil || n < 1 || n > len(opts) {
				ok = false
				break
			}
			out = append(out, opts[n-1].value)
		}
		if ok {
			return out, nil
		}
		p.say(fmt.Sprintf("Use numbers from 1 to %d, e.g. 1,3.", len(opts)))
	}
}

func (p *prompter) yesNo(prompt string, current bool) (bool, error) {
	def := "y/N"
	if current {
		def = "Y/n"
	}
	for {
		in, err := p.line(fmt.Sprintf("%s? [%s]: ", prompt, def))
		if err != nil {
			return false, err
		}
		switch strings.ToLower(in) {
		case "":
			return current, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}

// navigate reads the step action. Enter moves forward. An optional
// forward handler replaces Next (used for submit).
func (p *prompter) navigate(w *wizard.Wizard, choices string, forward ...func() error) error {
	for {
		in, err := p.line(choices + ": ")
		if err != nil {
			return err
		}
		switch strings.ToLower(in) {
		case "", "n", "s":
			if len(forward) > 0 {
				return forward[0]()
			}
			if err := w.Next(); err != nil {
				if errors.Is(err, wizard.ErrStepIncomplete) {
					p.say("Please complete the required fields.")
					return nil
				}
				return err
			}
			return nil
		case "b":
			if err := w.Back(); err != nil {
				p.say("Already at the first step.")
				continue
			}
			return nil
		case "q":
			return errQuit
		}
	}
}

func labels[T ~string](values []T, label func(T) string) []option {
	out := make([]option, len(values))
	for i, v := range values {
		out[i] = option{value: string(v), label: string(v)}
		if label != nil {
			out[i].label = label(v)
		}
	}
	return out
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
