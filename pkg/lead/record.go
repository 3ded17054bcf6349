// Package lead defines the concierge lead record collected by the intake
// wizard and the submission sent to the lead intake API.
package lead

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// DateLayout is the ISO calendar date format of Record.Date.
const DateLayout = "2006-01-02"

// Record is the wizard's working data.
type Record struct {
	OccasionType    Occasion        `json:"occasionType" yaml:"occasionType" validate:"omitempty,occasion"`
	LocationArea    Area            `json:"locationArea" yaml:"locationArea" validate:"omitempty,area"`
	Date            string          `json:"date" yaml:"date" validate:"omitempty,datetime=2006-01-02"`
	IsFlexibleDate  bool            `json:"isFlexibleDate" yaml:"isFlexibleDate"`
	Guests          int             `json:"guests" yaml:"guests" validate:"guests"`
	BudgetRange     Budget          `json:"budgetRange" yaml:"budgetRange" validate:"omitempty,budget"`
	VenuePreference VenuePreference `json:"venuePreference" yaml:"venuePreference" validate:"omitempty,venue"`
	Suppliers       []Supplier      `json:"suppliers" yaml:"suppliers" validate:"unique,dive,supplier"`
	Vibe            []Vibe          `json:"vibe" yaml:"vibe" validate:"max=3,unique,dive,vibe"`
	Notes           string          `json:"notes" yaml:"notes"`
	FullName        string          `json:"fullName" yaml:"fullName"`
	Phone           string          `json:"phone" yaml:"phone"`
	IsWhatsapp      bool            `json:"isWhatsapp" yaml:"isWhatsapp"`
	Email           string          `json:"email" yaml:"email" validate:"omitempty,email"`
	Consent         bool            `json:"consent" yaml:"consent"`
}

// Default returns a record with every field empty except the guest count.
func Default() Record {
	return Record{
		Guests:    DefaultGuests,
		Suppliers: []Supplier{},
		Vibe:      []Vibe{},
	}
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	c := r
	c.Suppliers = append([]Supplier{}, r.Suppliers...)
	c.Vibe = append([]Vibe{}, r.Vibe...)
	return c
}

// HasDate reports whether an explicit date is set or the date is flexible.
func (r Record) HasDate() bool {
	return r.Date != "" || r.IsFlexibleDate
}

// ToggleSupplier adds s when absent and removes it when present.
func (r *Record) ToggleSupplier(s Supplier) {
	r.Suppliers = toggle(r.Suppliers, s)
}

// ToggleVibe adds v when absent and removes it when present. Adding a vibe
// beyond MaxVibes is ignored; the return value reports whether the set changed.
func (r *Record) ToggleVibe(v Vibe) bool {
	if !contains(r.Vibe, v) && len(r.Vibe) >= MaxVibes {
		return false
	}
	r.Vibe = toggle(r.Vibe, v)
	return true
}

func toggle[T comparable](set []T, v T) []T {
	out := make([]T, 0, len(set)+1)
	found := false
	for _, s := range set {
		if s == v {
			found = true
			continue
		}
		out = append(out, s)
	}
	if !found {
		out = append(out, v)
	}
	return out
}

// Sanitize repairs a record read from untrusted storage: unknown labels are
// cleared, duplicate and unknown set members dropped, the vibe set cut to
// MaxVibes and guests snapped into range. Free text is left byte-for-byte
// as stored; setters normalize it on entry.
func (r *Record) Sanitize() {
	if !r.OccasionType.Valid() {
		r.OccasionType = ""
	}
	if !r.LocationArea.Valid() {
		r.LocationArea = ""
	}
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		r.Date = ""
	}
	if !r.BudgetRange.Valid() {
		r.BudgetRange = ""
	}
	if !r.VenuePreference.Valid() {
		r.VenuePreference = ""
	}
	r.Guests = ClampGuests(r.Guests)
	r.Suppliers = filterSet(r.Suppliers, Supplier.Valid, len(Suppliers))
	r.Vibe = filterSet(r.Vibe, Vibe.Valid, MaxVibes)
}

func filterSet[T comparable](set []T, valid func(T) bool, max int) []T {
	out := make([]T, 0, len(set))
	for _, v := range set {
		if len(out) == max {
			break
		}
		if valid(v) && !contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// ClampGuests snaps n to the nearest step inside [MinGuests, MaxGuests].
func ClampGuests(n int) int {
	if n < MinGuests {
		return MinGuests
	}
	if n > MaxGuests {
		return MaxGuests
	}
	return (n + GuestStep/2) / GuestStep * GuestStep
}

// ValidGuests reports whether n is a reachable slider value.
func ValidGuests(n int) bool {
	return n >= MinGuests && n <= MaxGuests && n%GuestStep == 0
}

// NormalizeText returns s in Unicode NFC form.
func NormalizeText(s string) string {
	return norm.NFC.String(s)
}

// SummaryLine is one row of the post-submission request summary.
type SummaryLine struct {
	Label string
	Value string
}

// Summary returns the request summary shown after a successful submission.
func (r Record) Summary() []SummaryLine {
	date := r.Date
	if r.IsFlexibleDate {
		date = "Flexible"
	}
	return []SummaryLine{
		{Label: "Occasion", Value: string(r.OccasionType)},
		{Label: "Date", Value: date},
		{Label: "Guests", Value: strconv.Itoa(r.Guests)},
		{Label: "Budget", Value: string(r.BudgetRange)},
	}
}

// Decode parses a YAML or JSON document over the default record.
func Decode(data []byte) (Record, error) {
	r := Default()
	if strings.TrimSpace(string(data)) == "" {
		return r, nil
	}
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("decode lead: %w", err)
	}
	if r.Suppliers == nil {
		r.Suppliers = []Supplier{}
	}
	if r.Vibe == nil {
		r.Vibe = []Vibe{}
	}
	return r, nil
}

// LoadFile reads a YAML or JSON lead record from path.
func LoadFile(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("read lead file: %w", err)
	}
	return Decode(data)
}
