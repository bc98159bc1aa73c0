package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "fundingpulse/internal/errors"
	"fundingpulse/internal/store"
	"fundingpulse/pkg/contracts/domain"
)

// fakeProvider serves a fixed snapshot or a fixed error.
type fakeProvider struct {
	snap *store.Snapshot
	err  error
}

func (f *fakeProvider) Load(ctx context.Context) (*store.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func testRecords() []domain.FundingRecord {
	return []domain.FundingRecord{
		{Date: date(2019, 1, 15), StartupName: "Acme", Sector: "Fintech", City: "Bangalore", InvestmentType: "Seed/Angel Funding", AmountMillionsUSD: 2},
		{Date: date(2019, 1, 20), StartupName: "Beta", Sector: "Fintech", City: "Mumbai", InvestmentType: "Private Equity", AmountMillionsUSD: 10},
		{Date: date(2019, 3, 5), StartupName: "Acme", Sector: "Edtech", City: "Bangalore", InvestmentType: "Seed/Angel Funding", AmountMillionsUSD: 1},
		{Date: date(2020, 6, 1), StartupName: "Gamma", Sector: "Health", City: "Delhi", InvestmentType: "Series A", AmountMillionsUSD: 50},
	}
}

func newTestService(records []domain.FundingRecord) *DataService {
	return NewDataService(&fakeProvider{snap: &store.Snapshot{Records: records}}, slog.Default())
}

func TestDataServiceRecords(t *testing.T) {
	tests := []struct {
		name   string
		filter domain.RecordFilter
		want   []string
	}{
		{
			name:   "no filter returns everything",
			filter: domain.RecordFilter{},
			want:   []string{"Acme", "Beta", "Acme", "Gamma"},
		},
		{
			name:   "year range",
			filter: domain.RecordFilter{YearFrom: 2020, YearTo: 2020},
			want:   []string{"Gamma"},
		},
		{
			name:   "city multi-select",
			filter: domain.RecordFilter{Cities: []string{"Bangalore"}},
			want:   []string{"Acme", "Acme"},
		},
		{
			name:   "amount range is inclusive",
			filter: domain.RecordFilter{MinAmount: 2, MaxAmount: 10},
			want:   []string{"Acme", "Beta"},
		},
		{
			name:   "combined filters",
			filter: domain.RecordFilter{YearFrom: 2019, YearTo: 2019, Cities: []string{"Bangalore", "Mumbai"}, MinAmount: 2},
			want:   []string{"Acme", "Beta"},
		},
	}

	svc := newTestService(testRecords())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := svc.Records(context.Background(), tt.filter)
			require.NoError(t, err)
			names := make([]string, len(records))
			for i, r := range records {
				names[i] = r.StartupName
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestDataServiceSummary(t *testing.T) {
	svc := newTestService(testRecords())

	stats, err := svc.Summary(context.Background(), domain.RecordFilter{})
	require.NoError(t, err)
	assert.InDelta(t, 63.0, stats.TotalFundingMillions, 1e-9)
	assert.Equal(t, 3, stats.StartupCount)
	assert.Equal(t, 4, stats.DealCount)
	assert.InDelta(t, 15.75, stats.MeanFundingMillions, 1e-9)
}

func TestDataServiceSummaryEmpty(t *testing.T) {
	svc := newTestService(nil)

	stats, err := svc.Summary(context.Background(), domain.RecordFilter{})
	require.NoError(t, err)
	assert.Equal(t, domain.SummaryStats{}, stats)
}

func TestDataServiceFundingByMonth(t *testing.T) {
	svc := newTestService(testRecords())

	rows, err := svc.FundingByMonth(context.Background(), domain.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2019-01", rows[0].Key)
	assert.InDelta(t, 12.0, rows[0].TotalAmountMillions, 1e-9)
	assert.Equal(t, 2, rows[0].DealCount)
	assert.Equal(t, "2019-03", rows[1].Key)
	assert.Equal(t, "2020-06", rows[2].Key)
}

func TestDataServiceTopCities(t *testing.T) {
	svc := newTestService(testRecords())

	rows, err := svc.TopCities(context.Background(), domain.RecordFilter{}, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Bangalore", rows[0].Key)
	assert.Equal(t, 2, rows[0].DealCount)
	// Delhi and Mumbai tie on deal count; ties break alphabetically.
	assert.Equal(t, "Delhi", rows[1].Key)
}

func TestDataServiceFundingByInvestmentType(t *testing.T) {
	svc := newTestService(testRecords())

	rows, err := svc.FundingByInvestmentType(context.Background(), domain.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Series A", rows[0].Key)
	assert.InDelta(t, 50.0, rows[0].TotalAmountMillions, 1e-9)
	assert.Equal(t, "Private Equity", rows[1].Key)
	assert.Equal(t, "Seed/Angel Funding", rows[2].Key)
	assert.InDelta(t, 3.0, rows[2].TotalAmountMillions, 1e-9)
}

func TestDataServiceFilterMetadata(t *testing.T) {
	svc := newTestService(testRecords())

	meta, err := svc.FilterMetadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2019, meta.YearMin)
	assert.Equal(t, 2020, meta.YearMax)
	assert.Equal(t, []string{"Bangalore", "Delhi", "Mumbai"}, meta.Cities)
	assert.InDelta(t, 1.0, meta.AmountMin, 1e-9)
	assert.InDelta(t, 50.0, meta.AmountMax, 1e-9)
}

func TestDataServiceFilterMetadataEmpty(t *testing.T) {
	svc := newTestService(nil)

	meta, err := svc.FilterMetadata(context.Background())
	require.NoError(t, err)
	assert.Zero(t, meta.YearMin)
	assert.Zero(t, meta.YearMax)
	assert.Empty(t, meta.Cities)
}

func TestDataServicePropagatesLoadErrors(t *testing.T) {
	svc := NewDataService(&fakeProvider{err: apperrors.NewConfigError("source file is not accessible", nil)}, slog.Default())

	_, err := svc.Records(context.Background(), domain.RecordFilter{})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}
