package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/lead"
)

// DraftKey is the slot the wizard record is persisted under.
const DraftKey = "mahfal_draft_lead"

// Slot reads and writes a single lead record in a Store.
type Slot struct {
	store  Store
	key    string
	logger *slog.Logger
}

// NewSlot binds the default draft key in store.
func NewSlot(store Store) *Slot {
	return &Slot{
		store:  store,
		key:    DraftKey,
		logger: slog.Default().With("component", "draft"),
	}
}

// WithKey returns a copy of the slot bound to key.
func (s *Slot) WithKey(key string) *Slot {
	c := *s
	c.key = key
	return &c
}

// Key returns the slot's store key.
func (s *Slot) Key() string { return s.key }

// Load returns the persisted record merged over defaults. A missing,
// unreadable, or corrupt draft yields lead.Default.
func (s *Slot) Load(ctx context.Context) lead.Record {
	raw, ok, err := s.store.Get(ctx, s.key)
	if err != nil {
		s.logger.WarnContext(ctx, "draft unreadable, starting fresh", "key", s.key, "error", err)
		return lead.Default()
	}
	if !ok || raw == "" {
		return lead.Default()
	}

	r := lead.Default()
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		s.logger.WarnContext(ctx, "draft corrupt, starting fresh", "key", s.key, "error", err)
		return lead.Default()
	}
	r.Sanitize()
	return r
}

// Save overwrites the slot with r.
func (s *Slot) Save(ctx context.Context, r lead.Record) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	return s.store.Set(ctx, s.key, string(b))
}

// Clear removes the slot.
func (s *Slot) Clear(ctx context.Context) error {
	return s.store.Remove(ctx, s.key)
}

// Raw returns the stored JSON verbatim.
func (s *Slot) Raw(ctx context.Context) (string, bool, error) {
	return s.store.Get(ctx, s.key)
}
