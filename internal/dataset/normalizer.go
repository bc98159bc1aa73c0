package dataset

import (
	"context"
	"log/slog"

	"fundingpulse/pkg/contracts/domain"
)

// OutlierCeiling is the upper bound, in millions of USD, above which a
// funding amount is treated as unreliable and excluded. Applied to the whole
// record set as a final filter, after parsing.
const OutlierCeiling = 1000.0

// Normalizer converts raw tables into validated FundingRecord sets.
type Normalizer struct {
	plan   ColumnPlan
	logger *slog.Logger
}

// NewNormalizer creates a normalizer bound to a column-selection plan.
func NewNormalizer(plan ColumnPlan, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		plan:   plan,
		logger: logger.With(slog.String("component", "normalizer")),
	}
}

// Normalize produces the largest possible set of valid records from the raw
// table. Rows failing a cleaning rule are dropped silently; only the plan
// failing to resolve is an error. The transformation is pure: the same table
// always yields the same record set.
func (n *Normalizer) Normalize(ctx context.Context, table *RawTable) ([]domain.FundingRecord, error) {
	res, err := n.plan.Resolve(table.Header)
	if err != nil {
		return nil, err
	}

	records := make([]domain.FundingRecord, 0, len(table.Rows))
	dropped := 0
	for _, row := range table.Rows {
		rec, ok := normalizeRow(row, res)
		if !ok {
			dropped++
			continue
		}
		records = append(records, rec)
	}

	// Outlier ceiling as a final pass over the parsed set.
	kept := records[:0]
	for _, rec := range records {
		if rec.AmountMillionsUSD >= OutlierCeiling {
			dropped++
			continue
		}
		kept = append(kept, rec)
	}

	n.logger.DebugContext(ctx, "normalized raw table",
		slog.Int("source_rows", len(table.Rows)),
		slog.Int("records", len(kept)),
		slog.Int("dropped", dropped))
	return kept, nil
}

// normalizeRow applies the per-field cleaning rules. Each rule is
// independent; there is no cross-field inference.
func normalizeRow(row []string, res *Resolution) (domain.FundingRecord, bool) {
	amount, ok := CleanAmount(cell(row, res.Amount))
	if !ok {
		return domain.FundingRecord{}, false
	}
	date, ok := CleanDate(cell(row, res.Date))
	if !ok {
		return domain.FundingRecord{}, false
	}
	return domain.FundingRecord{
		Date:              date,
		StartupName:       CleanText(cell(row, res.StartupName)),
		Sector:            CleanText(cell(row, res.Sector)),
		City:              CityTable.Apply(CleanText(cell(row, res.City))),
		InvestmentType:    InvestmentTypeTable.Apply(CleanText(cell(row, res.InvestmentType))),
		AmountMillionsUSD: amount,
	}, true
}

// cell reads a column from a possibly ragged row; absent cells are empty.
func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
