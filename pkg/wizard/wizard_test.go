package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/clipboard"
	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/crypto"
	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/draft"
	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/intake"
	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/lead"
)

var submittedAt = time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)

type fakeSubmitter struct {
	mu    sync.Mutex
	err   error
	gate  chan struct{}
	calls []lead.Submission
}

func (f *fakeSubmitter) SubmitLead(_ context.Context, sub lead.Submission) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sub)
	return f.err
}

func (f *fakeSubmitter) Calls() []lead.Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]lead.Submission(nil), f.calls...)
}

type fakeRecorder struct {
	mu          sync.Mutex
	transitions []string
	outcomes    []string
}

func (f *fakeRecorder) Transition(from, to string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transitions = append(f.transitions, from+">"+to)
}

func (f *fakeRecorder) SubmissionFinished(outcome string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, outcome)
}

type harness struct {
	w     *Wizard
	store *draft.MemoryStore
	slot  *draft.Slot
	sub   *fakeSubmitter
	clip  *clipboard.Buffer
	rec   *fakeRecorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store: draft.NewMemoryStore(),
		sub:   &fakeSubmitter{},
		clip:  &clipboard.Buffer{},
		rec:   &fakeRecorder{},
	}
	h.slot = draft.NewSlot(h.store)
	h.w = h.open(t)
	return h
}

// open starts a new session over the same draft store.
func (h *harness) open(t *testing.T) *Wizard {
	t.Helper()
	w, err := New(context.Background(), Deps{
		Draft:     h.slot,
		Submitter: h.sub,
		Clipboard: h.clip,
		Recorder:  h.rec,
		Now:       func() time.Time { return submittedAt },
	})
	require.NoError(t, err)
	return w
}

// fillToStep4 enters the end-to-end lead and stops on the contact step.
func fillToStep4(t *testing.T, w *Wizard) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, w.SetOccasion(ctx, lead.OccasionBirthday))
	require.NoError(t, w.SetArea(ctx, lead.AreaDowntown))
	require.NoError(t, w.SetDate(ctx, "2025-06-01"))
	require.NoError(t, w.Next())

	require.NoError(t, w.SetGuests(ctx, 50))
	require.NoError(t, w.SetBudget(ctx, lead.Budget5kTo10k))
	require.NoError(t, w.SetVenuePreference(ctx, lead.VenueEither))
	require.NoError(t, w.Next())

	require.NoError(t, w.Next())

	require.NoError(t, w.SetFullName(ctx, "Sarah Jones"))
	require.NoError(t, w.SetPhone(ctx, "+15550000000"))
	require.NoError(t, w.SetConsent(ctx, true))
	require.Equal(t, StateStep4, w.State())
}

func TestNew_RequiresDeps(t *testing.T) {
	_, err := New(context.Background(), Deps{Submitter: &fakeSubmitter{}})
	assert.Error(t, err)
	_, err = New(context.Background(), Deps{Draft: draft.NewSlot(draft.NewMemoryStore())})
	assert.Error(t, err)
}

func TestNew_StartsAtStep1WithDefaults(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, StateStep1, h.w.State())
	assert.Equal(t, "Step 1 of 4", h.w.Progress())
	assert.Equal(t, lead.Default(), h.w.Record())
	assert.False(t, h.w.CanProceed())
}

func TestStep1_RequiresDateOrFlexible(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.w.SetOccasion(ctx, lead.OccasionBirthday))
	require.NoError(t, h.w.SetArea(ctx, lead.AreaDowntown))

	assert.False(t, h.w.CanProceed())
	assert.ErrorIs(t, h.w.Next(), ErrStepIncomplete)
	assert.Equal(t, 1, h.w.Step())

	require.NoError(t, h.w.SetFlexibleDate(ctx, true))
	assert.True(t, h.w.CanProceed())
	require.NoError(t, h.w.Next())
	assert.Equal(t, 2, h.w.Step())
}

func TestEndToEnd_Success(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	fillToStep4(t, h.w)

	_, ok, err := h.slot.Raw(ctx)
	require.NoError(t, err)
	require.True(t, ok, "draft persisted while editing")

	require.NoError(t, h.w.Submit(ctx))

	assert.Equal(t, StateSuccess, h.w.State())
	_, ok, err = h.slot.Raw(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "draft cleared after success")

	calls := h.sub.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, completeRecord(), calls[0].Record)
	assert.Equal(t, "2025-05-20T09:00:00.000Z", calls[0].SubmittedAt)
	assert.Equal(t, lead.Source, calls[0].Source)

	summary, err := h.w.Summary()
	require.NoError(t, err)
	assert.Equal(t, "Birthday", summary[0].Value)

	assert.Equal(t, []string{OutcomeSuccess}, h.rec.outcomes)
	assert.Contains(t, h.rec.transitions, "submitting>success")
}

func TestFailure_KeepsRecordAndAllowsRetry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	fillToStep4(t, h.w)
	before := h.w.Record()

	h.sub.err = &intake.APIError{Status: http.StatusInternalServerError}
	err := h.w.Submit(ctx)

	var apiErr *intake.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, StateFailed, h.w.State())
	assert.Equal(t, FailureNotice, h.w.Notice())
	assert.Equal(t, before, h.w.Record())
	assert.ErrorIs(t, h.w.LastError(), apiErr)

	_, ok, _ := h.slot.Raw(ctx)
	assert.True(t, ok, "draft kept after failure")

	h.sub.err = nil
	require.NoError(t, h.w.Submit(ctx))
	assert.Equal(t, StateSuccess, h.w.State())
	assert.Empty(t, h.w.Notice())
	assert.Len(t, h.sub.Calls(), 2)
	assert.Equal(t, []string{OutcomeFailure, OutcomeSuccess}, h.rec.outcomes)
}

func TestFailed_ContactFieldsEditableAndBack(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	fillToStep4(t, h.w)

	h.sub.err = errors.New("network down")
	require.Error(t, h.w.Submit(ctx))

	require.NoError(t, h.w.SetPhone(ctx, "+15551111111"))
	assert.Equal(t, StateFailed, h.w.State())
	assert.ErrorIs(t, h.w.SetBudget(ctx, lead.BudgetUnder5k), ErrFieldLocked)

	require.NoError(t, h.w.Back())
	assert.Equal(t, StateStep3, h.w.State())
}

func TestSubmit_RejectsWhileInFlight(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	fillToStep4(t, h.w)

	h.sub.gate = make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- h.w.Submit(ctx) }()

	require.Eventually(t, func() bool { return h.w.State() == StateSubmitting },
		time.Second, time.Millisecond)

	assert.ErrorIs(t, h.w.Submit(ctx), ErrSubmissionInFlight)
	assert.ErrorIs(t, h.w.SetPhone(ctx, "+1"), ErrFieldLocked)
	assert.ErrorIs(t, h.w.Back(), ErrInvalidTransition)
	assert.False(t, h.w.CanProceed())

	close(h.sub.gate)
	require.NoError(t, <-done)
	assert.Equal(t, StateSuccess, h.w.State())
	assert.Len(t, h.sub.Calls(), 1)
}

func TestSubmit_IncompleteContact(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	fillToStep4(t, h.w)
	require.NoError(t, h.w.SetFullName(ctx, "   "))

	assert.ErrorIs(t, h.w.Submit(ctx), ErrStepIncomplete)
	assert.Equal(t, StateStep4, h.w.State())
	assert.Empty(t, h.sub.Calls())
}

func TestSubmit_FromWrongStep(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.w.Submit(context.Background()), ErrInvalidTransition)
	assert.ErrorIs(t, h.w.Back(), ErrInvalidTransition)
}

func TestFieldOwnership(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	assert.ErrorIs(t, h.w.SetBudget(ctx, lead.Budget25kPlus), ErrFieldLocked)
	assert.ErrorIs(t, h.w.ToggleSupplier(ctx, lead.SupplierCake), ErrFieldLocked)
	assert.ErrorIs(t, h.w.SetFullName(ctx, "X"), ErrFieldLocked)
	assert.Equal(t, lead.Default(), h.w.Record())
	assert.Equal(t, StateStep1, h.w.State())
}

func TestInvalidValues(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	assert.ErrorIs(t, h.w.SetOccasion(ctx, "Wedding"), ErrInvalidValue)
	assert.ErrorIs(t, h.w.SetArea(ctx, "Uptown"), ErrInvalidValue)
	assert.ErrorIs(t, h.w.SetDate(ctx, "June 1st"), ErrInvalidValue)
	assert.Equal(t, lead.Default(), h.w.Record())

	require.NoError(t, h.w.SetOccasion(ctx, lead.OccasionDinner))
	require.NoError(t, h.w.SetArea(ctx, lead.AreaNorth))
	require.NoError(t, h.w.SetFlexibleDate(ctx, true))
	require.NoError(t, h.w.Next())

	assert.ErrorIs(t, h.w.SetGuests(ctx, 55), ErrInvalidValue)
	assert.ErrorIs(t, h.w.SetGuests(ctx, 600), ErrInvalidValue)
	assert.ErrorIs(t, h.w.SetVenuePreference(ctx, "Rooftop"), ErrInvalidValue)
	assert.Equal(t, lead.DefaultGuests, h.w.Record().Guests)
}

func TestToggleVibe_SilentCap(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.w.SetOccasion(ctx, lead.OccasionOther))
	require.NoError(t, h.w.SetArea(ctx, lead.AreaHistoric))
	require.NoError(t, h.w.SetFlexibleDate(ctx, true))
	require.NoError(t, h.w.Next())
	require.NoError(t, h.w.SetBudget(ctx, lead.Budget25kPlus))
	require.NoError(t, h.w.SetVenuePreference(ctx, lead.VenueIndoor))
	require.NoError(t, h.w.Next())

	for _, v := range []lead.Vibe{lead.VibeElegant, lead.VibeModern, lead.VibeFun} {
		changed, err := h.w.ToggleVibe(ctx, v)
		require.NoError(t, err)
		require.True(t, changed)
	}

	changed, err := h.w.ToggleVibe(ctx, lead.VibeLuxury)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, []lead.Vibe{lead.VibeElegant, lead.VibeModern, lead.VibeFun}, h.w.Record().Vibe)
	assert.Equal(t, StateStep3, h.w.State())

	_, err = h.w.ToggleVibe(ctx, "Grunge")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestDraft_ResumesInNewSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.w.SetOccasion(ctx, lead.OccasionEngagement))
	require.NoError(t, h.w.SetArea(ctx, lead.AreaCoastal))
	require.NoError(t, h.w.SetDate(ctx, "2025-09-12"))
	require.NoError(t, h.w.Next())
	require.NoError(t, h.w.SetGuests(ctx, 120))
	require.NoError(t, h.w.SetBudget(ctx, lead.Budget10kTo25k))
	want := h.w.Record()

	resumed := h.open(t)
	assert.Equal(t, want, resumed.Record())
	assert.Equal(t, StateStep1, resumed.State())
}

func TestDraft_CorruptStartsFresh(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.Set(context.Background(), draft.DraftKey, "{{{"))

	assert.Equal(t, lead.Default(), h.open(t).Record())
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	assert.ErrorIs(t, h.w.Export(ctx), ErrNotSubmitted)
	_, err := h.w.Summary()
	assert.ErrorIs(t, err, ErrNotSubmitted)

	fillToStep4(t, h.w)
	require.NoError(t, h.w.Submit(ctx))
	require.NoError(t, h.w.Export(ctx))

	text := h.clip.Text()
	assert.Contains(t, text, "\n  \"fullName\": \"Sarah Jones\"")
	var got lead.Record
	require.NoError(t, json.Unmarshal([]byte(text), &got))
	assert.Equal(t, completeRecord(), got)
}

func TestExport_NoClipboard(t *testing.T) {
	h := newHarness(t)
	h.w.clip = nil
	fillToStep4(t, h.w)
	require.NoError(t, h.w.Submit(context.Background()))

	assert.ErrorIs(t, h.w.Export(context.Background()), clipboard.ErrUnavailable)
}

func TestNewRequest_ResetsRecord(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	assert.ErrorIs(t, h.w.NewRequest(ctx), ErrInvalidTransition)

	fillToStep4(t, h.w)
	require.NoError(t, h.w.Submit(ctx))
	require.NoError(t, h.w.NewRequest(ctx))

	assert.Equal(t, StateStep1, h.w.State())
	assert.Equal(t, lead.Default(), h.w.Record())
	assert.Equal(t, lead.Default(), h.slot.Load(ctx))
}

func TestEndToEnd_SignedIntake(t *testing.T) {
	signer, err := crypto.NewHMACSigner([]byte("demo_secret"))
	require.NoError(t, err)

	var verifyErr error
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		var body json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&body)
		verifyErr = signer.Verify(body, r.Header.Get(crypto.HeaderTimestamp), r.Header.Get(crypto.HeaderSignature), time.Minute)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	slot := draft.NewSlot(draft.NewMemoryStore())
	w, err := New(context.Background(), Deps{
		Draft:     slot,
		Submitter: intake.New(srv.URL, signer),
	})
	require.NoError(t, err)

	fillToStep4(t, w)
	require.NoError(t, w.Submit(context.Background()))

	assert.Equal(t, 1, hits)
	assert.NoError(t, verifyErr)
	assert.Equal(t, StateSuccess, w.State())
}
