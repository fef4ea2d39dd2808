// Package testutil provides builders for synthetic portfolios used across
// package tests.
package testutil

import (
	"strconv"

	"github.com/Veraticus/edrs/internal/model"
	"github.com/Veraticus/edrs/internal/table"
)

// Row describes one synthetic account. Pay is indexed by lag, Bill and
// PayAmt by period-1.
type Row struct {
	Extra   map[string]string
	Default *int
	ID      int
	Limit   float64
	Pay     [model.MaxPayLag + 1]float64
	Bill    [model.NumBillPeriods]float64
	PayAmt  [model.NumBillPeriods]float64
}

// Portfolio builds a raw table with a configurable layout.
type Portfolio struct {
	extra       []string
	rows        []Row
	payLags     []int
	billPeriods []int
	amtPeriods  []int
	noLabel     bool
}

// NewPortfolio starts a builder with the UCI credit-card layout: PAY_0 and
// PAY_2..PAY_6 (no PAY_1), six bill and six payment periods.
func NewPortfolio() *Portfolio {
	return &Portfolio{
		payLags:     []int{0, 2, 3, 4, 5, 6},
		billPeriods: []int{1, 2, 3, 4, 5, 6},
		amtPeriods:  []int{1, 2, 3, 4, 5, 6},
	}
}

// WithPayLags replaces the set of PAY_* columns.
func (p *Portfolio) WithPayLags(lags ...int) *Portfolio {
	p.payLags = lags
	return p
}

// WithBillPeriods replaces the set of BILL_AMT* columns.
func (p *Portfolio) WithBillPeriods(periods ...int) *Portfolio {
	p.billPeriods = periods
	return p
}

// WithExtraColumns adds pass-through columns, filled from Row.Extra.
func (p *Portfolio) WithExtraColumns(names ...string) *Portfolio {
	p.extra = append(p.extra, names...)
	return p
}

// WithoutLabel omits the default.payment.next.month column.
func (p *Portfolio) WithoutLabel() *Portfolio {
	p.noLabel = true
	return p
}

// Add appends rows.
func (p *Portfolio) Add(rows ...Row) *Portfolio {
	p.rows = append(p.rows, rows...)
	return p
}

// Build renders the table with canonical column names.
func (p *Portfolio) Build() table.Table {
	columns := []string{model.ColID, model.ColLimitBal}
	for _, lag := range p.payLags {
		columns = append(columns, model.PayColumn(lag))
	}
	for _, period := range p.billPeriods {
		columns = append(columns, model.BillColumn(period))
	}
	for _, period := range p.amtPeriods {
		columns = append(columns, model.PayAmtColumn(period))
	}
	columns = append(columns, p.extra...)
	if !p.noLabel {
		columns = append(columns, model.ColDefault)
	}

	rows := make([][]string, 0, len(p.rows))
	for _, r := range p.rows {
		cells := []string{strconv.Itoa(r.ID), formatFloat(r.Limit)}
		for _, lag := range p.payLags {
			cells = append(cells, formatFloat(r.Pay[lag]))
		}
		for _, period := range p.billPeriods {
			cells = append(cells, formatFloat(r.Bill[period-1]))
		}
		for _, period := range p.amtPeriods {
			cells = append(cells, formatFloat(r.PayAmt[period-1]))
		}
		for _, name := range p.extra {
			cells = append(cells, r.Extra[name])
		}
		if !p.noLabel {
			label := ""
			if r.Default != nil {
				label = strconv.Itoa(*r.Default)
			}
			cells = append(cells, label)
		}
		rows = append(rows, cells)
	}

	return table.New(columns, rows)
}

// Label returns a pointer to a label value.
func Label(v int) *int {
	return &v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Scenario returns a four-account portfolio covering each scoring path:
// account 2 is Very High, 3 is High, 1 and 4 are Very Low (4 has a zero
// last bill). Its priority order is 2, 3, 1, 4.
func Scenario() table.Table {
	return NewPortfolio().Add(
		Row{ID: 1, Limit: 50000, Bill: [6]float64{500}, PayAmt: [6]float64{500}, Default: Label(0)},
		Row{ID: 2, Limit: 20000, Pay: [7]float64{2, 0, 1}, Bill: [6]float64{1000}, PayAmt: [6]float64{100}, Default: Label(1)},
		Row{ID: 3, Limit: 80000, Pay: [7]float64{1}, Bill: [6]float64{2000}, PayAmt: [6]float64{1000}},
		Row{ID: 4, Limit: 20000, Bill: [6]float64{0}, PayAmt: [6]float64{50}},
	).Build()
}
