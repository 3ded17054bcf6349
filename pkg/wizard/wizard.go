// Package wizard drives the four-step concierge intake flow: it owns the
// lead record, gates step changes, persists drafts, and runs the
// submission lifecycle.
package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/clipboard"
	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/draft"
	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/lead"
)

// TotalSteps is the number of form steps.
const TotalSteps = 4

// FailureNotice is the user-facing message after a failed submission.
const FailureNotice = "Something went wrong. Please try again or contact us directly."

var (
	ErrFieldLocked        = errors.New("field is not editable in the current step")
	ErrInvalidValue       = errors.New("value is not one of the allowed options")
	ErrStepIncomplete     = errors.New("required fields are missing")
	ErrInvalidTransition  = errors.New("action not available in the current state")
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	ErrNotSubmitted       = errors.New("request has not been submitted")
)

// Submitter delivers a lead to the intake API.
type Submitter interface {
	SubmitLead(ctx context.Context, sub lead.Submission) error
}

// Recorder receives wizard metrics. All methods must be safe for
// concurrent use.
type Recorder interface {
	Transition(from, to string)
	SubmissionFinished(outcome string, elapsed time.Duration)
}

// Submission outcomes reported to Recorder.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Deps are the wizard's collaborators. Draft and Submitter are required.
type Deps struct {
	Draft     *draft.Slot
	Submitter Submitter
	Clipboard clipboard.Writer
	Recorder  Recorder
	Logger    *slog.Logger
	Now       func() time.Time
}

// Wizard is safe for concurrent use. The lock is not held while a
// submission is on the wire.
type Wizard struct {
	mu      sync.Mutex
	state   State
	record  lead.Record
	lastErr error

	draft     *draft.Slot
	submitter Submitter
	clip      clipboard.Writer
	recorder  Recorder
	logger    *slog.Logger
	now       func() time.Time
}

// New starts a session at Step1 with the persisted draft merged over
// defaults.
func New(ctx context.Context, deps Deps) (*Wizard, error) {
	if deps.Draft == nil {
		return nil, errors.New("wizard: draft slot is required")
	}
	if deps.Submitter == nil {
		return nil, errors.New("wizard: submitter is required")
	}
	w := &Wizard{
		state:     StateStep1,
		draft:     deps.Draft,
		submitter: deps.Submitter,
		clip:      deps.Clipboard,
		recorder:  deps.Recorder,
		logger:    deps.Logger,
		now:       deps.Now,
	}
	if w.logger == nil {
		w.logger = slog.Default().With("component", "wizard")
	}
	if w.now == nil {
		w.now = time.Now
	}
	w.record = w.draft.Load(ctx)
	return w, nil
}

// State returns the current state.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Step returns the form step (1-4) currently shown.
func (w *Wizard) Step() int {
	return w.State().Step()
}

// Progress returns the step caption, e.g. "Step 2 of 4".
func (w *Wizard) Progress() string {
	return fmt.Sprintf("Step %d of %d", w.Step(), TotalSteps)
}

// Record returns a copy of the lead record.
func (w *Wizard) Record() lead.Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.record.Clone()
}

// Notice returns FailureNotice after a failed submission, else "".
func (w *Wizard) Notice() string {
	if w.State() == StateFailed {
		return FailureNotice
	}
	return ""
}

// LastError returns the cause of the most recent failed submission.
func (w *Wizard) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// CanProceed reports whether the forward action of the current state
// (Next or Submit) would pass its guard.
func (w *Wizard) CanProceed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.state {
	case StateStep1, StateStep2, StateStep3:
		return Permitted(w.state, EventNext, w.record)
	case StateStep4, StateFailed:
		return Permitted(w.state, EventSubmit, w.record)
	default:
		return false
	}
}

// Next advances to the following step.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fire(EventNext)
}

// Back returns to the previous step.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fire(EventBack)
}

// fire applies ev under w.mu.
func (w *Wizard) fire(ev Event) error {
	if w.state == StateSubmitting && ev == EventSubmit {
		return ErrSubmissionInFlight
	}
	t, ok := transitions[w.state][ev]
	if !ok {
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, ev, w.state)
	}
	if t.guard != nil && !t.guard(w.record) {
		return ErrStepIncomplete
	}
	from := w.state
	w.state = t.to
	if w.recorder != nil {
		w.recorder.Transition(from.String(), t.to.String())
	}
	w.logger.Debug("wizard transition", "from", from, "event", ev, "to", t.to)
	return nil
}

// Submit sends the record to the intake API. It blocks until the API
// answers; ctx bounds only the transport. A second call while a
// submission is in flight returns ErrSubmissionInFlight.
func (w *Wizard) Submit(ctx context.Context) error {
	w.mu.Lock()
	if err := w.fire(EventSubmit); err != nil {
		w.mu.Unlock()
		return err
	}
	sub := lead.NewSubmission(w.record, w.now())
	w.lastErr = nil
	w.mu.Unlock()

	start := time.Now()
	sendErr := w.submitter.SubmitLead(ctx, sub)
	elapsed := time.Since(start)

	w.mu.Lock()
	defer w.mu.Unlock()

	if sendErr != nil {
		_ = w.fire(EventReject)
		w.lastErr = sendErr
		w.observe(OutcomeFailure, elapsed)
		w.logger.WarnContext(ctx, "lead submission failed", "error", sendErr)
		return fmt.Errorf("submit lead: %w", sendErr)
	}

	_ = w.fire(EventAck)
	w.observe(OutcomeSuccess, elapsed)
	if err := w.draft.Clear(ctx); err != nil {
		w.logger.WarnContext(ctx, "draft not cleared after submission", "error", err)
	}
	return nil
}

func (w *Wizard) observe(outcome string, elapsed time.Duration) {
	if w.recorder != nil {
		w.recorder.SubmissionFinished(outcome, elapsed)
	}
}

// NewRequest resets the record to defaults after a successful submission.
func (w *Wizard) NewRequest(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.fire(EventNewRequest); err != nil {
		return err
	}
	w.record = lead.Default()
	w.persist(ctx)
	return nil
}

// Summary returns the request summary of a successful submission.
func (w *Wizard) Summary() ([]lead.SummaryLine, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateSuccess {
		return nil, ErrNotSubmitted
	}
	return w.record.Summary(), nil
}

// ExportJSON renders the submitted record as 2-space indented JSON.
func (w *Wizard) ExportJSON() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateSuccess {
		return "", ErrNotSubmitted
	}
	b, err := json.MarshalIndent(w.record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	return string(b), nil
}

// Export copies the submitted record to the clipboard.
func (w *Wizard) Export(ctx context.Context) error {
	text, err := w.ExportJSON()
	if err != nil {
		return err
	}
	if w.clip == nil {
		return clipboard.ErrUnavailable
	}
	if err := w.clip.WriteText(ctx, text); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// persist writes the record to the draft slot under w.mu. Write failures
// are logged; the in-memory record stays authoritative.
func (w *Wizard) persist(ctx context.Context) {
	if err := w.draft.Save(ctx, w.record); err != nil {
		w.logger.WarnContext(ctx, "draft not saved", "error", err)
	}
}
