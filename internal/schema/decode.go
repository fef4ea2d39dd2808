package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Veraticus/edrs/internal/common"
	"github.com/Veraticus/edrs/internal/model"
	"github.com/Veraticus/edrs/internal/table"
)

// Decode converts a validated table into accounts. Blank numeric cells
// decode as zero. Row numbers in errors are 1-based data rows.
func Decode(t table.Table, layout model.Layout) ([]model.Account, error) {
	idCol := t.Index(model.ColID)
	limitCol := t.Index(model.ColLimitBal)
	labelCol := t.Index(model.ColDefault)

	payCols := make(map[int]int, len(layout.PayLags))
	for _, lag := range layout.PayLags {
		payCols[lag] = t.Index(model.PayColumn(lag))
	}
	billCols := make(map[int]int, len(layout.BillPeriods))
	for _, p := range layout.BillPeriods {
		billCols[p] = t.Index(model.BillColumn(p))
	}
	payAmtCols := make(map[int]int, len(layout.PayAmtPeriods))
	for _, p := range layout.PayAmtPeriods {
		payAmtCols[p] = t.Index(model.PayAmtColumn(p))
	}

	extraCols := make(map[int]string)
	for i, c := range t.Columns {
		if _, canonical := Canonicalize(c); !canonical {
			extraCols[i] = c
		}
	}

	accounts := make([]model.Account, 0, t.Len())
	seen := make(map[int]int, t.Len())

	for r := 0; r < t.Len(); r++ {
		row := r + 1
		var acct model.Account

		id, err := parseID(t.Cell(r, idCol))
		if err != nil {
			return nil, rowError(row, model.ColID, err.Error())
		}
		if first, dup := seen[id]; dup {
			return nil, rowError(row, model.ColID, fmt.Sprintf("duplicate ID %d (first seen in row %d)", id, first))
		}
		seen[id] = row
		acct.ID = id

		if acct.LimitBal, err = parseNumber(t.Cell(r, limitCol)); err != nil {
			return nil, rowError(row, model.ColLimitBal, err.Error())
		}
		if acct.LimitBal < 0 {
			return nil, rowError(row, model.ColLimitBal, "must be non-negative")
		}

		if acct.Default, err = parseLabel(t.Cell(r, labelCol)); err != nil {
			return nil, rowError(row, model.ColDefault, err.Error())
		}

		for lag, col := range payCols {
			if acct.PayStatus[lag], err = parseStatus(t.Cell(r, col)); err != nil {
				return nil, rowError(row, model.PayColumn(lag), err.Error())
			}
		}
		for p, col := range billCols {
			if acct.BillAmt[p-1], err = parseNumber(t.Cell(r, col)); err != nil {
				return nil, rowError(row, model.BillColumn(p), err.Error())
			}
		}
		for p, col := range payAmtCols {
			if acct.PayAmt[p-1], err = parseNumber(t.Cell(r, col)); err != nil {
				return nil, rowError(row, model.PayAmtColumn(p), err.Error())
			}
		}

		if len(extraCols) > 0 {
			acct.Extra = make(map[string]string, len(extraCols))
			for col, name := range extraCols {
				acct.Extra[name] = t.Cell(r, col)
			}
		}

		accounts = append(accounts, acct)
	}

	return accounts, nil
}

func rowError(row int, column, reason string) error {
	return &common.SchemaError{Row: row, Column: column, Reason: reason}
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return v, nil
}

// parseStatus reads a repayment status, which counts whole months.
func parseStatus(s string) (float64, error) {
	v, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("repayment status must be a whole number, got %q", strings.TrimSpace(s))
	}
	return v, nil
}

func parseID(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("ID is empty")
	}
	if id, err := strconv.Atoi(s); err == nil {
		return id, nil
	}
	// Spreadsheet cells often carry integral values as "12.0".
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, fmt.Errorf("ID must be an integer, got %q", s)
	}
	return int(v), nil
}

func parseLabel(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return nil, nil
	}
	v, err := parseNumber(s)
	if err != nil {
		return nil, err
	}
	if v != 0 && v != 1 {
		return nil, fmt.Errorf("label must be 0 or 1, got %q", s)
	}
	label := int(v)
	return &label, nil
}
