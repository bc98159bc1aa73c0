package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	apperrors "fundingpulse/internal/errors"
)

// Supported source encodings. Legacy exports of the funding spreadsheet are
// single-byte western encoded rather than UTF-8.
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "iso-8859-1"
)

// ReadOptions configures raw table loading.
type ReadOptions struct {
	// Encoding of CSV sources; one of EncodingUTF8 or EncodingLatin1.
	Encoding string
	// SkipLines is the number of leading metadata lines before the real
	// header row.
	SkipLines int
}

// RawTable is the unprocessed source: the trimmed header row plus every data
// row as untyped text cells. Rows may be ragged.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// ReadTable loads a raw table from a CSV or XLSX file. Missing or unreadable
// sources are configuration errors; the normalizer never sees a partial table.
func ReadTable(path string, opts ReadOptions) (*RawTable, error) {
	var rows [][]string
	var err error
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, err = readExcelRows(path)
	} else {
		rows, err = readCSVRows(path, opts.Encoding)
	}
	if err != nil {
		return nil, err
	}

	if opts.SkipLines >= len(rows) {
		return nil, apperrors.NewConfigError("source table has no header row after skipping metadata lines", nil)
	}
	rows = rows[opts.SkipLines:]

	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = strings.TrimSpace(cell)
	}
	return &RawTable{Header: header, Rows: rows[1:]}, nil
}

func readCSVRows(path, encoding string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to open source file", err)
	}
	defer f.Close()

	var r io.Reader = f
	switch strings.ToLower(encoding) {
	case "", EncodingUTF8:
	case EncodingLatin1, "latin1", "latin-1":
		r = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	default:
		return nil, apperrors.NewConfigError("unsupported source encoding: "+encoding, nil)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // the raw export is ragged
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, apperrors.NewConfigError("failed to read source CSV", err)
	}
	return rows, nil
}

// readExcelRows returns the rows of the first sheet that contains data.
func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to open source workbook", err)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		if len(rows) > 0 {
			return rows, nil
		}
	}
	return nil, apperrors.NewConfigError("source workbook has no sheet with data", nil)
}
