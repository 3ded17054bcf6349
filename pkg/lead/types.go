package lead

// Occasion is the kind of event the lead is planning.
type Occasion string

const (
	OccasionBirthday   Occasion = "Birthday"
	OccasionEngagement Occasion = "Engagement"
	OccasionGraduation Occasion = "Graduation"
	OccasionCorporate  Occasion = "Corporate"
	OccasionDinner     Occasion = "Dinner"
	OccasionPhotoshoot Occasion = "Photoshoot"
	OccasionOther      Occasion = "Other"
)

// Occasions lists every occasion in display order.
var Occasions = []Occasion{
	OccasionBirthday, OccasionEngagement, OccasionGraduation, OccasionCorporate,
	OccasionDinner, OccasionPhotoshoot, OccasionOther,
}

func (o Occasion) Valid() bool { return contains(Occasions, o) }

// Area is the location area a venue should be in.
type Area string

const (
	AreaDowntown Area = "Downtown"
	AreaNorth    Area = "North"
	AreaCoastal  Area = "Coastal"
	AreaHistoric Area = "Historic"
	AreaSuburbs  Area = "Suburbs"
)

// Areas lists every area in display order.
var Areas = []Area{AreaDowntown, AreaNorth, AreaCoastal, AreaHistoric, AreaSuburbs}

var areaLabels = map[Area]string{
	AreaDowntown: "Downtown / City Center",
	AreaNorth:    "North Side",
	AreaCoastal:  "Coastal / Beach",
	AreaHistoric: "Historic District",
	AreaSuburbs:  "Suburbs",
}

func (a Area) Valid() bool { return contains(Areas, a) }

// Label returns the human readable name of the area.
func (a Area) Label() string {
	if l, ok := areaLabels[a]; ok {
		return l
	}
	return string(a)
}

// Budget is an estimated budget bracket.
type Budget string

const (
	BudgetUnder5k  Budget = "Under 5k"
	Budget5kTo10k  Budget = "5k - 10k"
	Budget10kTo25k Budget = "10k - 25k"
	Budget25kPlus  Budget = "25k+"
)

// Budgets lists every budget bracket in display order.
var Budgets = []Budget{BudgetUnder5k, Budget5kTo10k, Budget10kTo25k, Budget25kPlus}

func (b Budget) Valid() bool { return contains(Budgets, b) }

// VenuePreference is the indoor/outdoor preference.
type VenuePreference string

const (
	VenueIndoor  VenuePreference = "Indoor"
	VenueOutdoor VenuePreference = "Outdoor"
	VenueEither  VenuePreference = "Either"
)

// VenuePreferences lists every preference in display order.
var VenuePreferences = []VenuePreference{VenueIndoor, VenueOutdoor, VenueEither}

func (v VenuePreference) Valid() bool { return contains(VenuePreferences, v) }

// Supplier is an optional add-on service.
type Supplier string

const (
	SupplierCatering    Supplier = "Catering"
	SupplierPhotography Supplier = "Photography"
	SupplierDecoration  Supplier = "Decoration"
	SupplierDJ          Supplier = "DJ/Ents"
	SupplierLighting    Supplier = "Lighting"
	SupplierCake        Supplier = "Cake"
	SupplierNone        Supplier = "None"
)

// Suppliers lists every supplier in display order.
var Suppliers = []Supplier{
	SupplierCatering, SupplierPhotography, SupplierDecoration, SupplierDJ,
	SupplierLighting, SupplierCake, SupplierNone,
}

func (s Supplier) Valid() bool { return contains(Suppliers, s) }

// Vibe is a style tag; at most MaxVibes may be selected.
type Vibe string

const (
	VibeElegant     Vibe = "Elegant"
	VibeModern      Vibe = "Modern"
	VibeTraditional Vibe = "Traditional"
	VibeMinimal     Vibe = "Minimal"
	VibeLuxury      Vibe = "Luxury"
	VibeFun         Vibe = "Fun"
)

// Vibes lists every vibe in display order.
var Vibes = []Vibe{VibeElegant, VibeModern, VibeTraditional, VibeMinimal, VibeLuxury, VibeFun}

func (v Vibe) Valid() bool { return contains(Vibes, v) }

// Limits of the record.
const (
	MaxVibes      = 3
	MinGuests     = 10
	MaxGuests     = 500
	GuestStep     = 10
	DefaultGuests = 50
)

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
