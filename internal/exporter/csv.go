// Package exporter writes normalized funding records back out as CSV, for
// the batch CLI and the API download endpoint.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"fundingpulse/pkg/contracts/domain"
)

// Headers of the exported CSV, one column per FundingRecord field.
var Headers = []string{"Date", "Startup Name", "Sector", "City", "Investment Type", "Amount (M USD)"}

// dateLayout matches the normalizer's strict input layout, so an exported
// file re-read with an exact-name column plan round-trips losslessly.
const dateLayout = "02/01/2006"

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	// BOMPrefix adds a UTF-8 BOM so Excel recognizes the encoding.
	BOMPrefix bool
}

// Write streams the record set as CSV to w.
func Write(w io.Writer, records []domain.FundingRecord, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, rec := range records {
		row := []string{
			rec.Date.Format(dateLayout),
			rec.StartupName,
			rec.Sector,
			rec.City,
			rec.InvestmentType,
			strconv.FormatFloat(rec.AmountMillionsUSD*1_000_000, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the record set to a CSV file, creating parent
// directories as needed.
func WriteFile(path string, records []domain.FundingRecord, options WriteOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := Write(f, records, options); err != nil {
		return err
	}
	return f.Close()
}
