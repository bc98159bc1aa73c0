package dataset

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// dateLayout is the only accepted date form: day/month/4-digit-year, with
// slash separators. Days and months may be unpadded. The permissive
// two-digit-year mode seen in one upstream variant is deliberately not
// implemented; anything else is dropped.
const dateLayout = "2/1/2006"

// MissingSentinel replaces empty or missing categorical text. Never empty,
// never null: downstream group-bys rely on it.
const MissingSentinel = "Other"

// rejectedAmountUnits are markers of non-USD or unusable amounts. Matching is
// substring-based on the lowercased value, so "crore", "5 cr" and "Lakhs" are
// all rejected rather than converted. Only plain numeric USD is trusted.
var rejectedAmountUnits = []string{"lac", "lakh", "cr", "unknown", "n/a"}

// CleanAmount parses a raw amount cell into millions of USD. It strips
// thousands separators and currency symbols, rejects annotated units, then
// parses and scales. ok is false when the value is missing, unparseable or
// non-positive.
func CleanAmount(raw string) (float64, bool) {
	s := strings.ReplaceAll(raw, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	for _, unit := range rejectedAmountUnits {
		if strings.Contains(s, unit) {
			return 0, false
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	v /= 1_000_000
	if v <= 0 {
		return 0, false
	}
	return v, true
}

// CleanDate parses a raw date cell against the strict day/month/year layout.
// No alternate separators, no partial parsing; ok is false on any mismatch.
func CleanDate(raw string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CleanText normalizes a categorical cell: trim, title-case, and collapse
// the textual forms of missing data to the "Other" sentinel.
func CleanText(raw string) string {
	// cases.Caser is stateful, so build one per call rather than sharing.
	s := cases.Title(language.English).String(strings.TrimSpace(raw))
	switch s {
	case "", "Nan", "N/A":
		return MissingSentinel
	}
	return s
}
