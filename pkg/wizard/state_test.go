package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/lead"
)

func completeRecord() lead.Record {
	r := lead.Default()
	r.OccasionType = lead.OccasionBirthday
	r.LocationArea = lead.AreaDowntown
	r.Date = "2025-06-01"
	r.Guests = 50
	r.BudgetRange = lead.Budget5kTo10k
	r.VenuePreference = lead.VenueEither
	r.FullName = "Sarah Jones"
	r.Phone = "+15550000000"
	r.Consent = true
	return r
}

// TestTransitionTable_Exhaustive checks every (state, event) pair against
// the expected target with a record that satisfies all guards.
func TestTransitionTable_Exhaustive(t *testing.T) {
	type pair struct {
		from State
		ev   Event
	}
	want := map[pair]State{
		{StateStep1, EventNext}:         StateStep2,
		{StateStep2, EventNext}:         StateStep3,
		{StateStep2, EventBack}:         StateStep1,
		{StateStep3, EventNext}:         StateStep4,
		{StateStep3, EventBack}:         StateStep2,
		{StateStep4, EventSubmit}:       StateSubmitting,
		{StateStep4, EventBack}:         StateStep3,
		{StateSubmitting, EventAck}:     StateSuccess,
		{StateSubmitting, EventReject}:  StateFailed,
		{StateFailed, EventSubmit}:      StateSubmitting,
		{StateFailed, EventBack}:        StateStep3,
		{StateSuccess, EventNewRequest}: StateStep1,
	}

	r := completeRecord()
	for _, s := range States {
		for _, ev := range Events {
			to, ok := Lookup(s, ev)
			expected, defined := want[pair{s, ev}]
			assert.Equal(t, defined, ok, "%s --%s-->", s, ev)
			assert.Equal(t, defined, Permitted(s, ev, r), "%s --%s--> permitted", s, ev)
			if defined {
				assert.Equal(t, expected, to, "%s --%s-->", s, ev)
			}
		}
	}
}

func TestGuards(t *testing.T) {
	tests := []struct {
		name   string
		from   State
		ev     Event
		mutate func(r *lead.Record)
		want   bool
	}{
		{"step1 complete", StateStep1, EventNext, func(r *lead.Record) {}, true},
		{"step1 no date, not flexible", StateStep1, EventNext, func(r *lead.Record) { r.Date = "" }, false},
		{"step1 flexible date", StateStep1, EventNext, func(r *lead.Record) { r.Date = ""; r.IsFlexibleDate = true }, true},
		{"step1 no occasion", StateStep1, EventNext, func(r *lead.Record) { r.OccasionType = "" }, false},
		{"step1 no area", StateStep1, EventNext, func(r *lead.Record) { r.LocationArea = "" }, false},
		{"step2 no budget", StateStep2, EventNext, func(r *lead.Record) { r.BudgetRange = "" }, false},
		{"step2 no venue", StateStep2, EventNext, func(r *lead.Record) { r.VenuePreference = "" }, false},
		{"step3 always", StateStep3, EventNext, func(r *lead.Record) { *r = lead.Default() }, true},
		{"step4 blank name", StateStep4, EventSubmit, func(r *lead.Record) { r.FullName = "   " }, false},
		{"step4 blank phone", StateStep4, EventSubmit, func(r *lead.Record) { r.Phone = "\t" }, false},
		{"step4 no consent", StateStep4, EventSubmit, func(r *lead.Record) { r.Consent = false }, false},
		{"step4 email optional", StateStep4, EventSubmit, func(r *lead.Record) { r.Email = "" }, true},
		{"failed retry guarded", StateFailed, EventSubmit, func(r *lead.Record) { r.Consent = false }, false},
		{"back is unguarded", StateStep2, EventBack, func(r *lead.Record) { *r = lead.Default() }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := completeRecord()
			tt.mutate(&r)
			assert.Equal(t, tt.want, Permitted(tt.from, tt.ev, r))
		})
	}
}

func TestStateStep(t *testing.T) {
	assert.Equal(t, 1, StateStep1.Step())
	assert.Equal(t, 3, StateStep3.Step())
	assert.Equal(t, 4, StateSubmitting.Step())
	assert.Equal(t, 4, StateFailed.Step())
	assert.Equal(t, 0, State(99).Step())
	assert.Equal(t, "state(99)", State(99).String())
	assert.Equal(t, "new_request", EventNewRequest.String())
}
