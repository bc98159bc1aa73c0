package domain

import (
	"sort"
	"time"
)

// FundingRecord is one validated, normalized funding event. Records are
// immutable once published: consumers filter and aggregate over copies of
// the slice, never mutate elements in place.
type FundingRecord struct {
	Date              time.Time `json:"date"`
	StartupName       string    `json:"startup_name"`
	Sector            string    `json:"sector"`
	City              string    `json:"city"`
	InvestmentType    string    `json:"investment_type"`
	AmountMillionsUSD float64   `json:"amount_millions_usd"`
}

// Year returns the calendar year of the funding event.
func (r FundingRecord) Year() int {
	return r.Date.Year()
}

// MonthKey returns the month bucket key in "2006-01" form, the grain used
// by the funding-over-time aggregate.
func (r FundingRecord) MonthKey() string {
	return r.Date.Format("2006-01")
}

// RecordFilter mirrors the dashboard sidebar controls: a year range slider,
// a city multi-select and an amount range slider. Zero values leave the
// corresponding dimension unbounded; an empty Cities slice admits every city.
type RecordFilter struct {
	YearFrom  int      `json:"year_from,omitempty"`
	YearTo    int      `json:"year_to,omitempty"`
	Cities    []string `json:"cities,omitempty"`
	MinAmount float64  `json:"min_amount,omitempty"`
	MaxAmount float64  `json:"max_amount,omitempty"`
}

// Match reports whether the record passes every bound of the filter.
// Amount bounds are inclusive, matching the original range slider.
func (f RecordFilter) Match(r FundingRecord) bool {
	year := r.Year()
	if f.YearFrom != 0 && year < f.YearFrom {
		return false
	}
	if f.YearTo != 0 && year > f.YearTo {
		return false
	}
	if len(f.Cities) > 0 {
		found := false
		for _, c := range f.Cities {
			if c == r.City {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if r.AmountMillionsUSD < f.MinAmount {
		return false
	}
	if f.MaxAmount != 0 && r.AmountMillionsUSD > f.MaxAmount {
		return false
	}
	return true
}

// SummaryStats are the KPI card values: total funding, distinct startups,
// deal count and mean funding per deal, all in millions of USD.
type SummaryStats struct {
	TotalFundingMillions float64 `json:"total_funding_millions"`
	StartupCount         int     `json:"startup_count"`
	DealCount            int     `json:"deal_count"`
	MeanFundingMillions  float64 `json:"mean_funding_millions"`
}

// Summarize computes SummaryStats over a record set. An empty set yields
// all-zero stats, not an error.
func Summarize(records []FundingRecord) SummaryStats {
	if len(records) == 0 {
		return SummaryStats{}
	}
	stats := SummaryStats{DealCount: len(records)}
	startups := make(map[string]struct{}, len(records))
	for _, r := range records {
		stats.TotalFundingMillions += r.AmountMillionsUSD
		startups[r.StartupName] = struct{}{}
	}
	stats.StartupCount = len(startups)
	stats.MeanFundingMillions = stats.TotalFundingMillions / float64(stats.DealCount)
	return stats
}

// AggregateRow is one bucket of a group-by: the bucket key plus the summed
// amount and the number of deals that landed in it.
type AggregateRow struct {
	Key                 string  `json:"key"`
	TotalAmountMillions float64 `json:"total_amount_millions"`
	DealCount           int     `json:"deal_count"`
}

// FilterMetadata describes the bounds of the current record set so a
// consumer can render its filter widgets: year span, the sorted distinct
// city list and the amount span.
type FilterMetadata struct {
	YearMin   int      `json:"year_min"`
	YearMax   int      `json:"year_max"`
	Cities    []string `json:"cities"`
	AmountMin float64  `json:"amount_min"`
	AmountMax float64  `json:"amount_max"`
}

// BuildFilterMetadata derives FilterMetadata from a record set. An empty
// set produces zero bounds and an empty city list.
func BuildFilterMetadata(records []FundingRecord) FilterMetadata {
	meta := FilterMetadata{Cities: []string{}}
	if len(records) == 0 {
		return meta
	}
	cities := make(map[string]struct{})
	for i, r := range records {
		year := r.Year()
		if i == 0 {
			meta.YearMin, meta.YearMax = year, year
			meta.AmountMin, meta.AmountMax = r.AmountMillionsUSD, r.AmountMillionsUSD
		}
		if year < meta.YearMin {
			meta.YearMin = year
		}
		if year > meta.YearMax {
			meta.YearMax = year
		}
		if r.AmountMillionsUSD < meta.AmountMin {
			meta.AmountMin = r.AmountMillionsUSD
		}
		if r.AmountMillionsUSD > meta.AmountMax {
			meta.AmountMax = r.AmountMillionsUSD
		}
		cities[r.City] = struct{}{}
	}
	meta.Cities = make([]string, 0, len(cities))
	for c := range cities {
		meta.Cities = append(meta.Cities, c)
	}
	sort.Strings(meta.Cities)
	return meta
}
