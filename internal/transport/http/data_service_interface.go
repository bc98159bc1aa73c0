package http

import (
	"context"

	"fundingpulse/pkg/contracts/domain"
)

// DataServiceInterface defines the data operations the handlers depend on.
type DataServiceInterface interface {
	Records(ctx context.Context, filter domain.RecordFilter) ([]domain.FundingRecord, error)
	Summary(ctx context.Context, filter domain.RecordFilter) (domain.SummaryStats, error)
	FundingByMonth(ctx context.Context, filter domain.RecordFilter) ([]domain.AggregateRow, error)
	TopCities(ctx context.Context, filter domain.RecordFilter, n int) ([]domain.AggregateRow, error)
	TopSectors(ctx context.Context, filter domain.RecordFilter, n int) ([]domain.AggregateRow, error)
	FundingByInvestmentType(ctx context.Context, filter domain.RecordFilter) ([]domain.AggregateRow, error)
	FilterMetadata(ctx context.Context) (domain.FilterMetadata, error)
}
