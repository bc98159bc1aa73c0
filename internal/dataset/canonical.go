package dataset

// CanonicalTable is a static synonym map collapsing spelling variants of a
// categorical value to one canonical form. Tables are configuration, not
// derived from the data, and are versioned separately from the cleaning code.
type CanonicalTable map[string]string

// Apply returns the canonical form of v, or v unchanged when no synonym is
// registered. Keys are matched against already title-cased values.
func (t CanonicalTable) Apply(v string) string {
	if canonical, ok := t[v]; ok {
		return canonical
	}
	return v
}

// CityTable collapses metro-area spelling variants to one canonical city name.
var CityTable = CanonicalTable{
	"Bengaluru": "Bangalore",
	"New Delhi": "Delhi",
	"Gurugram":  "Gurgaon",
	"Hydrabad":  "Hyderabad",
}

// InvestmentTypeTable collapses funding-round naming variants.
var InvestmentTypeTable = CanonicalTable{
	"Seed/ Angel Funding": "Seed/Angel Funding",
}
