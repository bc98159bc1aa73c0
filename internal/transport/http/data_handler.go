package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "fundingpulse/internal/errors"
	"fundingpulse/internal/exporter"
	"fundingpulse/pkg/contracts/domain"
)

// defaultTopN matches the dashboard's "top 10" charts.
const defaultTopN = 10

// DataHandler handles record and aggregate HTTP requests.
type DataHandler struct {
	service      DataServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates a new data handler with RFC 7807 error handling
func NewDataHandler(service DataServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the data routes with proper Chi patterns
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/records", h.GetRecords)
	r.Get("/summary", h.GetSummary)
	r.Get("/filters", h.GetFilterMetadata)

	r.Route("/aggregates", func(r chi.Router) {
		r.Get("/monthly", h.GetFundingByMonth)
		r.Get("/cities", h.GetTopCities)
		r.Get("/sectors", h.GetTopSectors)
		r.Get("/investment-types", h.GetFundingByInvestmentType)
	})

	r.Get("/export/csv", h.ExportCSV)

	return r
}

// GetRecords handles GET /api/records
func (h *DataHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	records, err := h.service.Records(r.Context(), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

// GetSummary handles GET /api/summary
func (h *DataHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	stats, err := h.service.Summary(r.Context(), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, stats)
}

// GetFilterMetadata handles GET /api/filters
func (h *DataHandler) GetFilterMetadata(w http.ResponseWriter, r *http.Request) {
	meta, err := h.service.FilterMetadata(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, meta)
}

// GetFundingByMonth handles GET /api/aggregates/monthly
func (h *DataHandler) GetFundingByMonth(w http.ResponseWriter, r *http.Request) {
	h.aggregate(w, r, func(filter domain.RecordFilter) ([]domain.AggregateRow, error) {
		return h.service.FundingByMonth(r.Context(), filter)
	})
}

// GetTopCities handles GET /api/aggregates/cities
func (h *DataHandler) GetTopCities(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.aggregate(w, r, func(filter domain.RecordFilter) ([]domain.AggregateRow, error) {
		return h.service.TopCities(r.Context(), filter, limit)
	})
}

// GetTopSectors handles GET /api/aggregates/sectors
func (h *DataHandler) GetTopSectors(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.aggregate(w, r, func(filter domain.RecordFilter) ([]domain.AggregateRow, error) {
		return h.service.TopSectors(r.Context(), filter, limit)
	})
}

// GetFundingByInvestmentType handles GET /api/aggregates/investment-types
func (h *DataHandler) GetFundingByInvestmentType(w http.ResponseWriter, r *http.Request) {
	h.aggregate(w, r, func(filter domain.RecordFilter) ([]domain.AggregateRow, error) {
		return h.service.FundingByInvestmentType(r.Context(), filter)
	})
}

// ExportCSV handles GET /api/export/csv
func (h *DataHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	records, err := h.service.Records(r.Context(), filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="funding_records.csv"`)
	if err := exporter.Write(w, records, exporter.WriteOptions{BOMPrefix: true}); err != nil {
		// Headers are already out; log rather than re-render.
		h.logger.ErrorContext(r.Context(), "csv export failed",
			slog.String("error", err.Error()))
	}
}

func (h *DataHandler) aggregate(w http.ResponseWriter, r *http.Request, fn func(domain.RecordFilter) ([]domain.AggregateRow, error)) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	rows, err := fn(filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if rows == nil {
		rows = []domain.AggregateRow{}
	}
	render.JSON(w, r, map[string]interface{}{
		"rows":  rows,
		"count": len(rows),
	})
}

// parseFilter reads the sidebar-equivalent query parameters: year_from,
// year_to, city (repeatable), min_amount, max_amount.
func parseFilter(q url.Values) (domain.RecordFilter, error) {
	var filter domain.RecordFilter
	var err error

	if filter.YearFrom, err = parseIntParam(q, "year_from"); err != nil {
		return domain.RecordFilter{}, err
	}
	if filter.YearTo, err = parseIntParam(q, "year_to"); err != nil {
		return domain.RecordFilter{}, err
	}
	if filter.YearFrom != 0 && filter.YearTo != 0 && filter.YearFrom > filter.YearTo {
		return domain.RecordFilter{}, apierrors.NewValidationError("year_from must not exceed year_to", nil)
	}
	if filter.MinAmount, err = parseFloatParam(q, "min_amount"); err != nil {
		return domain.RecordFilter{}, err
	}
	if filter.MaxAmount, err = parseFloatParam(q, "max_amount"); err != nil {
		return domain.RecordFilter{}, err
	}
	filter.Cities = q["city"]
	return filter, nil
}

func parseIntParam(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierrors.NewValidationError(fmt.Sprintf("parameter %q must be an integer", name), err)
	}
	return v, nil
}

func parseFloatParam(q url.Values, name string) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apierrors.NewValidationError(fmt.Sprintf("parameter %q must be a number", name), err)
	}
	return v, nil
}

func parseLimit(q url.Values) (int, error) {
	raw := q.Get("limit")
	if raw == "" {
		return defaultTopN, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, apierrors.NewValidationError(`parameter "limit" must be a positive integer`, err)
	}
	return v, nil
}
