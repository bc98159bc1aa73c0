package services

import (
	"context"
	"log/slog"
	"sort"

	"fundingpulse/internal/store"
	"fundingpulse/pkg/contracts/domain"
)

// SnapshotProvider supplies the current normalized record set.
type SnapshotProvider interface {
	Load(ctx context.Context) (*store.Snapshot, error)
}

// DataService computes the consumer-facing views over the cached record
// set: filtered record lists, KPI summaries and the group-bys the dashboard
// charts were drawn from. An empty snapshot yields empty results, never an
// error.
type DataService struct {
	cache  SnapshotProvider
	logger *slog.Logger
}

// NewDataService creates a new data service.
func NewDataService(cache SnapshotProvider, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataService{
		cache:  cache,
		logger: logger.With(slog.String("component", "data_service")),
	}
}

// Records returns the filtered record set.
func (s *DataService) Records(ctx context.Context, filter domain.RecordFilter) ([]domain.FundingRecord, error) {
	return s.filtered(ctx, filter)
}

// Summary returns the KPI stats over the filtered set: total funding,
// distinct startups, deal count and mean funding per deal.
func (s *DataService) Summary(ctx context.Context, filter domain.RecordFilter) (domain.SummaryStats, error) {
	records, err := s.filtered(ctx, filter)
	if err != nil {
		return domain.SummaryStats{}, err
	}
	return domain.Summarize(records), nil
}

// FundingByMonth sums funding per "2006-01" month bucket, sorted
// chronologically.
func (s *DataService) FundingByMonth(ctx context.Context, filter domain.RecordFilter) ([]domain.AggregateRow, error) {
	records, err := s.filtered(ctx, filter)
	if err != nil {
		return nil, err
	}
	rows := groupBy(records, func(r domain.FundingRecord) string { return r.MonthKey() })
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows, nil
}

// TopCities returns the n cities with the most deals, most active first.
func (s *DataService) TopCities(ctx context.Context, filter domain.RecordFilter, n int) ([]domain.AggregateRow, error) {
	records, err := s.filtered(ctx, filter)
	if err != nil {
		return nil, err
	}
	return topByDealCount(groupBy(records, func(r domain.FundingRecord) string { return r.City }), n), nil
}

// TopSectors returns the n sectors with the most deals, most active first.
func (s *DataService) TopSectors(ctx context.Context, filter domain.RecordFilter, n int) ([]domain.AggregateRow, error) {
	records, err := s.filtered(ctx, filter)
	if err != nil {
		return nil, err
	}
	return topByDealCount(groupBy(records, func(r domain.FundingRecord) string { return r.Sector }), n), nil
}

// FundingByInvestmentType sums funding per investment type, largest share
// first.
func (s *DataService) FundingByInvestmentType(ctx context.Context, filter domain.RecordFilter) ([]domain.AggregateRow, error) {
	records, err := s.filtered(ctx, filter)
	if err != nil {
		return nil, err
	}
	rows := groupBy(records, func(r domain.FundingRecord) string { return r.InvestmentType })
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalAmountMillions != rows[j].TotalAmountMillions {
			return rows[i].TotalAmountMillions > rows[j].TotalAmountMillions
		}
		return rows[i].Key < rows[j].Key
	})
	return rows, nil
}

// FilterMetadata reports the bounds of the full record set so consumers can
// render year/city/amount filter widgets.
func (s *DataService) FilterMetadata(ctx context.Context) (domain.FilterMetadata, error) {
	snap, err := s.cache.Load(ctx)
	if err != nil {
		return domain.FilterMetadata{}, err
	}
	return domain.BuildFilterMetadata(snap.Records), nil
}

func (s *DataService) filtered(ctx context.Context, filter domain.RecordFilter) ([]domain.FundingRecord, error) {
	snap, err := s.cache.Load(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]domain.FundingRecord, 0, len(snap.Records))
	for _, r := range snap.Records {
		if filter.Match(r) {
			records = append(records, r)
		}
	}
	return records, nil
}

func groupBy(records []domain.FundingRecord, key func(domain.FundingRecord) string) []domain.AggregateRow {
	buckets := make(map[string]*domain.AggregateRow)
	for _, r := range records {
		k := key(r)
		row, ok := buckets[k]
		if !ok {
			row = &domain.AggregateRow{Key: k}
			buckets[k] = row
		}
		row.TotalAmountMillions += r.AmountMillionsUSD
		row.DealCount++
	}
	rows := make([]domain.AggregateRow, 0, len(buckets))
	for _, row := range buckets {
		rows = append(rows, *row)
	}
	return rows
}

func topByDealCount(rows []domain.AggregateRow, n int) []domain.AggregateRow {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DealCount != rows[j].DealCount {
			return rows[i].DealCount > rows[j].DealCount
		}
		return rows[i].Key < rows[j].Key
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}
