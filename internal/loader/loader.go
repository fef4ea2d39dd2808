// Package loader reads account snapshots from CSV and spreadsheet files into
// raw tables, and persists the most recent upload.
package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/edrs/internal/common"
	"github.com/Veraticus/edrs/internal/schema"
	"github.com/Veraticus/edrs/internal/table"
	"github.com/xuri/excelize/v2"
)

// Supported file suffixes. Legacy BIFF workbooks (.xls) are not readable
// by excelize and must be re-saved as .xlsx.
const (
	ExtCSV  = ".csv"
	ExtXLSX = ".xlsx"
)

// headerCandidates are the spreadsheet rows tried as the header. The UCI
// workbook carries a title row above the real header.
var headerCandidates = []int{0, 1}

// Supported reports whether the file suffix can be loaded.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtCSV, ExtXLSX:
		return true
	}
	return false
}

// LoadFile reads the file at path into a raw table, dispatching on suffix.
func LoadFile(ctx context.Context, path string) (table.Table, error) {
	if err := ctx.Err(); err != nil {
		return table.Table{}, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !Supported(path) {
		return table.Table{}, common.NewSchemaError("", fmt.Sprintf("unsupported file type %q", ext))
	}

	f, err := os.Open(path) //nolint:gosec // path is chosen by the operator
	if err != nil {
		return table.Table{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("Failed to close input file", "path", path, "error", cerr)
		}
	}()

	var t table.Table
	if ext == ExtCSV {
		t, err = ParseCSV(f)
	} else {
		t, err = ParseSpreadsheet(f)
	}
	if err != nil {
		return table.Table{}, fmt.Errorf("failed to load %s: %w", path, err)
	}

	slog.Debug("Loaded table", "path", path, "columns", len(t.Columns), "rows", t.Len())
	return t, nil
}

// ParseCSV reads a comma separated table, retrying with semicolons when the
// comma parse fails or yields a single column. Short rows are allowed; their
// missing cells read as blank.
func ParseCSV(r io.Reader) (table.Table, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return table.Table{}, fmt.Errorf("failed to read CSV: %w", err)
	}

	records, err := readCSV(content, ',')
	if err != nil || (len(records) > 0 && len(records[0]) == 1 && bytes.Contains(content, []byte{';'})) {
		semi, semiErr := readCSV(content, ';')
		if semiErr != nil {
			if err == nil {
				err = semiErr
			}
			return table.Table{}, fmt.Errorf("failed to parse CSV: %w", err)
		}
		records = semi
	}

	return fromRecords(records, 0)
}

func readCSV(content []byte, sep rune) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.Comma = sep
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r.ReadAll()
}

// ParseSpreadsheet reads the first sheet of a workbook. Row 0 is tried as
// the header first, then row 1; a candidate is accepted when it carries both
// the ID and LIMIT_BAL columns. Otherwise row 0 is used. Cells are read as
// stored values, ignoring number formats such as thousands separators.
func ParseSpreadsheet(r io.Reader) (table.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return table.Table{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("Failed to close workbook", "error", cerr)
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return table.Table{}, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return table.Table{}, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	for _, hdr := range headerCandidates {
		if hdr >= len(rows) {
			break
		}
		if schema.HasIdentity(headerNames(rows[hdr])) {
			return fromRecords(rows, hdr)
		}
	}
	return fromRecords(rows, 0)
}

// fromRecords builds a table using records[hdr] as the header and every
// later non-blank record as data.
func fromRecords(records [][]string, hdr int) (table.Table, error) {
	if len(records) <= hdr {
		return table.Table{}, common.NewSchemaError("", "file has no header row")
	}

	columns := headerNames(records[hdr])
	rows := make([][]string, 0, len(records)-hdr-1)
	for _, rec := range records[hdr+1:] {
		if blank(rec) {
			continue
		}
		rows = append(rows, rec)
	}
	return table.New(columns, rows), nil
}

// headerNames trims header cells and names blank ones "Unnamed: <i>" so the
// normalizer drops them.
func headerNames(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		c = strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))
		if c == "" {
			c = fmt.Sprintf("%s: %d", schema.UnnamedPrefix, i)
		}
		out[i] = c
	}
	return out
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
