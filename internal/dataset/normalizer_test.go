package dataset

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "fundingpulse/internal/errors"
)

// testPlan selects the six semantic columns by exact header name.
func testPlan() ColumnPlan {
	return ColumnPlan{
		Date:           Locator{Name: "Date"},
		StartupName:    Locator{Name: "Startup Name"},
		Sector:         Locator{Name: "Sector"},
		City:           Locator{Name: "City"},
		InvestmentType: Locator{Name: "Investment Type"},
		Amount:         Locator{Name: "Amount"},
	}
}

func testTable(rows [][]string) *RawTable {
	return &RawTable{
		Header: []string{"Date", "Startup Name", "Sector", "City", "Investment Type", "Amount"},
		Rows:   rows,
	}
}

func TestNormalizerEndToEnd(t *testing.T) {
	// Row A survives, row B has a rejected unit, row C an invalid date.
	table := testTable([][]string{
		{"01/01/2020", "acme labs", "fintech", "Bengaluru", "seed/ angel funding", "$2,000,000"},
		{"02/01/2020", "Beta", "Edtech", "Mumbai", "Series A", "5 cr"},
		{"13-13-2020", "Gamma", "Health", "Pune", "Series B", "3000000"},
	})

	n := NewNormalizer(testPlan(), slog.Default())
	records, err := n.Normalize(context.Background(), table)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.True(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).Equal(rec.Date))
	assert.Equal(t, "Acme Labs", rec.StartupName)
	assert.Equal(t, "Fintech", rec.Sector)
	assert.Equal(t, "Bangalore", rec.City)
	assert.Equal(t, "Seed/Angel Funding", rec.InvestmentType)
	assert.InDelta(t, 2.0, rec.AmountMillionsUSD, 1e-9)
}

func TestNormalizerOutlierCeiling(t *testing.T) {
	table := testTable([][]string{
		{"01/01/2020", "At Ceiling", "Tech", "Pune", "Series C", "1000000000"},  // exactly 1000M: excluded
		{"02/01/2020", "Below Ceiling", "Tech", "Pune", "Series C", "999990000"}, // 999.99M: retained
	})

	n := NewNormalizer(testPlan(), slog.Default())
	records, err := n.Normalize(context.Background(), table)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Below Ceiling", records[0].StartupName)
	assert.InDelta(t, 999.99, records[0].AmountMillionsUSD, 1e-9)
}

func TestNormalizerMissingCategoricalText(t *testing.T) {
	table := testTable([][]string{
		{"01/01/2020", "", "nan", "N/A", "   ", "1000000"},
	})

	n := NewNormalizer(testPlan(), slog.Default())
	records, err := n.Normalize(context.Background(), table)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Other", rec.StartupName)
	assert.Equal(t, "Other", rec.Sector)
	assert.Equal(t, "Other", rec.City)
	assert.Equal(t, "Other", rec.InvestmentType)
}

func TestNormalizerIdempotence(t *testing.T) {
	table := testTable([][]string{
		{"01/01/2020", "Acme", "Fintech", "Gurugram", "Seed Funding", "$1,500,000"},
		{"15/03/2016", "Beta", "Edtech", "New Delhi", "Private Equity", "25000000"},
	})

	n := NewNormalizer(testPlan(), slog.Default())
	first, err := n.Normalize(context.Background(), table)
	require.NoError(t, err)
	second, err := n.Normalize(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, "Gurgaon", first[0].City)
	assert.Equal(t, "Delhi", first[1].City)
}

func TestNormalizerRaggedRows(t *testing.T) {
	// A row too short to reach the amount column is dropped, not a panic.
	table := testTable([][]string{
		{"01/01/2020", "Acme"},
		{"01/01/2020", "Beta", "Edtech", "Mumbai", "Series A", "4000000"},
	})

	n := NewNormalizer(testPlan(), slog.Default())
	records, err := n.Normalize(context.Background(), table)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Beta", records[0].StartupName)
}

func TestNormalizerEmptyResultIsNotAnError(t *testing.T) {
	table := testTable([][]string{
		{"bad date", "Acme", "Fintech", "Pune", "Seed", "5 cr"},
	})

	n := NewNormalizer(testPlan(), slog.Default())
	records, err := n.Normalize(context.Background(), table)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestNormalizerConfigError(t *testing.T) {
	// No date-like column anywhere: a configuration error, not an empty set.
	table := &RawTable{
		Header: []string{"When", "Who", "What"},
		Rows:   [][]string{{"01/01/2020", "Acme", "1000000"}},
	}
	plan := testPlan()
	plan.Date = Locator{Match: "date"}

	n := NewNormalizer(plan, slog.Default())
	records, err := n.Normalize(context.Background(), table)
	require.Error(t, err)
	assert.Nil(t, records)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}
