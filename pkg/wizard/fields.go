package wizard

import (
	"context"
	"time"

	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/lead"
)

// Field owners. Contact fields stay editable after a failed submission.
var (
	eventStep   = []State{StateStep1}
	budgetStep  = []State{StateStep2}
	detailsStep = []State{StateStep3}
	contactStep = []State{StateStep4, StateFailed}
)

// update mutates the record if the current state owns the field, then
// persists the draft. The state never changes.
func (w *Wizard) update(ctx context.Context, owners []State, mutate func(r *lead.Record) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	owned := false
	for _, s := range owners {
		if s == w.state {
			owned = true
			break
		}
	}
	if !owned {
		return ErrFieldLocked
	}

	next := w.record.Clone()
	if err := mutate(&next); err != nil {
		return err
	}
	w.record = next
	w.persist(ctx)
	return nil
}

func (w *Wizard) SetOccasion(ctx context.Context, o lead.Occasion) error {
	return w.update(ctx, eventStep, func(r *lead.Record) error {
		if !o.Valid() {
			return ErrInvalidValue
		}
		r.OccasionType = o
		return nil
	})
}

func (w *Wizard) SetArea(ctx context.Context, a lead.Area) error {
	return w.update(ctx, eventStep, func(r *lead.Record) error {
		if !a.Valid() {
			return ErrInvalidValue
		}
		r.LocationArea = a
		return nil
	})
}

// SetDate sets the ISO event date; "" clears it.
func (w *Wizard) SetDate(ctx context.Context, date string) error {
	return w.update(ctx, eventStep, func(r *lead.Record) error {
		if date != "" {
			if _, err := time.Parse(lead.DateLayout, date); err != nil {
				return ErrInvalidValue
			}
		}
		r.Date = date
		return nil
	})
}

func (w *Wizard) SetFlexibleDate(ctx context.Context, flexible bool) error {
	return w.update(ctx, eventStep, func(r *lead.Record) error {
		r.IsFlexibleDate = flexible
		return nil
	})
}

// SetGuests accepts only slider values: 10 to 500 in steps of 10.
func (w *Wizard) SetGuests(ctx context.Context, n int) error {
	return w.update(ctx, budgetStep, func(r *lead.Record) error {
		if !lead.ValidGuests(n) {
			return ErrInvalidValue
		}
		r.Guests = n
		return nil
	})
}

func (w *Wizard) SetBudget(ctx context.Context, b lead.Budget) error {
	return w.update(ctx, budgetStep, func(r *lead.Record) error {
		if !b.Valid() {
			return ErrInvalidValue
		}
		r.BudgetRange = b
		return nil
	})
}

func (w *Wizard) SetVenuePreference(ctx context.Context, v lead.VenuePreference) error {
	return w.update(ctx, budgetStep, func(r *lead.Record) error {
		if !v.Valid() {
			return ErrInvalidValue
		}
		r.VenuePreference = v
		return nil
	})
}

func (w *Wizard) ToggleSupplier(ctx context.Context, s lead.Supplier) error {
	return w.update(ctx, detailsStep, func(r *lead.Record) error {
		if !s.Valid() {
			return ErrInvalidValue
		}
		r.ToggleSupplier(s)
		return nil
	})
}

// ToggleVibe adds or removes v. Adding a fourth vibe is ignored and
// reported as (false, nil).
func (w *Wizard) ToggleVibe(ctx context.Context, v lead.Vibe) (bool, error) {
	changed := false
	err := w.update(ctx, detailsStep, func(r *lead.Record) error {
		if !v.Valid() {
			return ErrInvalidValue
		}
		changed = r.ToggleVibe(v)
		return nil
	})
	return changed, err
}

func (w *Wizard) SetNotes(ctx context.Context, notes string) error {
	return w.update(ctx, detailsStep, func(r *lead.Record) error {
		r.Notes = lead.NormalizeText(notes)
		return nil
	})
}

func (w *Wizard) SetFullName(ctx context.Context, name string) error {
	return w.update(ctx, contactStep, func(r *lead.Record) error {
		r.FullName = lead.NormalizeText(name)
		return nil
	})
}

func (w *Wizard) SetPhone(ctx context.Context, phone string) error {
	return w.update(ctx, contactStep, func(r *lead.Record) error {
		r.Phone = lead.NormalizeText(phone)
		return nil
	})
}

func (w *Wizard) SetWhatsApp(ctx context.Context, whatsapp bool) error {
	return w.update(ctx, contactStep, func(r *lead.Record) error {
		r.IsWhatsapp = whatsapp
		return nil
	})
}

// SetEmail sets the optional email; it is not format-checked here.
func (w *Wizard) SetEmail(ctx context.Context, email string) error {
	return w.update(ctx, contactStep, func(r *lead.Record) error {
		r.Email = lead.NormalizeText(email)
		return nil
	})
}

func (w *Wizard) SetConsent(ctx context.Context, consent bool) error {
	return w.update(ctx, contactStep, func(r *lead.Record) error {
		r.Consent = consent
		return nil
	})
}
