package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "fundingpulse/internal/errors"
	"fundingpulse/pkg/contracts/domain"
)

// MockDataService is a mock implementation of DataServiceInterface
type MockDataService struct {
	mock.Mock
}

func (m *MockDataService) Records(ctx context.Context, filter domain.RecordFilter) ([]domain.FundingRecord, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FundingRecord), args.Error(1)
}

func (m *MockDataService) Summary(ctx context.Context, filter domain.RecordFilter) (domain.SummaryStats, error) {
	args := m.Called(filter)
	return args.Get(0).(domain.SummaryStats), args.Error(1)
}

func (m *MockDataService) FundingByMonth(ctx context.Context, filter domain.RecordFilter) ([]domain.AggregateRow, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AggregateRow), args.Error(1)
}

func (m *MockDataService) TopCities(ctx context.Context, filter domain.RecordFilter, n int) ([]domain.AggregateRow, error) {
	args := m.Called(filter, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AggregateRow), args.Error(1)
}

func (m *MockDataService) TopSectors(ctx context.Context, filter domain.RecordFilter, n int) ([]domain.AggregateRow, error) {
	args := m.Called(filter, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AggregateRow), args.Error(1)
}

func (m *MockDataService) FundingByInvestmentType(ctx context.Context, filter domain.RecordFilter) ([]domain.AggregateRow, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AggregateRow), args.Error(1)
}

func (m *MockDataService) FilterMetadata(ctx context.Context) (domain.FilterMetadata, error) {
	args := m.Called()
	return args.Get(0).(domain.FilterMetadata), args.Error(1)
}

func newTestHandler(service DataServiceInterface) *DataHandler {
	logger := slog.Default()
	return NewDataHandler(service, logger, apierrors.NewErrorHandler(logger, false))
}

func doRequest(t *testing.T, h *DataHandler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestDataHandlerGetSummary(t *testing.T) {
	svc := new(MockDataService)
	svc.On("Summary", domain.RecordFilter{YearFrom: 2019, YearTo: 2020}).
		Return(domain.SummaryStats{TotalFundingMillions: 63, StartupCount: 3, DealCount: 4, MeanFundingMillions: 15.75}, nil)

	rec := doRequest(t, newTestHandler(svc), "/summary?year_from=2019&year_to=2020")

	require.Equal(t, http.StatusOK, rec.Code)
	var stats domain.SummaryStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.StartupCount)
	svc.AssertExpectations(t)
}

func TestDataHandlerGetRecords(t *testing.T) {
	svc := new(MockDataService)
	svc.On("Records", domain.RecordFilter{Cities: []string{"Bangalore", "Mumbai"}}).
		Return([]domain.FundingRecord{{StartupName: "Acme", City: "Bangalore"}}, nil)

	rec := doRequest(t, newTestHandler(svc), "/records?city=Bangalore&city=Mumbai")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Records []domain.FundingRecord `json:"records"`
		Count   int                    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "Acme", body.Records[0].StartupName)
}

func TestDataHandlerInvalidFilterParams(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{name: "non-numeric year", target: "/summary?year_from=abc"},
		{name: "inverted year range", target: "/summary?year_from=2021&year_to=2019"},
		{name: "non-numeric amount", target: "/records?min_amount=lots"},
		{name: "non-positive limit", target: "/aggregates/cities?limit=0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, newTestHandler(new(MockDataService)), tt.target)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var problem map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			assert.Equal(t, apierrors.TypeValidation, problem["type"])
		})
	}
}

func TestDataHandlerConfigErrorIsDistinguishable(t *testing.T) {
	svc := new(MockDataService)
	svc.On("Summary", domain.RecordFilter{}).
		Return(domain.SummaryStats{}, apierrors.NewConfigError("column plan field \"date\" does not resolve against source header", nil))

	rec := doRequest(t, newTestHandler(svc), "/summary")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, apierrors.TypeConfig, problem["type"])
}

func TestDataHandlerEmptyAggregateIsOK(t *testing.T) {
	svc := new(MockDataService)
	svc.On("FundingByMonth", domain.RecordFilter{}).Return([]domain.AggregateRow{}, nil)

	rec := doRequest(t, newTestHandler(svc), "/aggregates/monthly")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Rows  []domain.AggregateRow `json:"rows"`
		Count int                   `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotNil(t, body.Rows)
	assert.Zero(t, body.Count)
}

func TestDataHandlerTopCitiesDefaultLimit(t *testing.T) {
	svc := new(MockDataService)
	svc.On("TopCities", domain.RecordFilter{}, defaultTopN).
		Return([]domain.AggregateRow{{Key: "Bangalore", DealCount: 5}}, nil)

	rec := doRequest(t, newTestHandler(svc), "/aggregates/cities")

	require.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestDataHandlerExportCSV(t *testing.T) {
	svc := new(MockDataService)
	svc.On("Records", domain.RecordFilter{}).
		Return([]domain.FundingRecord{{StartupName: "Acme", Sector: "Fintech", City: "Bangalore", InvestmentType: "Seed/Angel Funding", AmountMillionsUSD: 2}}, nil)

	rec := doRequest(t, newTestHandler(svc), "/export/csv")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "funding_records.csv")
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "Acme"))
	assert.True(t, strings.Contains(body, "Startup Name"))
}
