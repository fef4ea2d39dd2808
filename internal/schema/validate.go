package schema

import (
	"fmt"
	"strings"

	"github.com/Veraticus/edrs/internal/common"
	"github.com/Veraticus/edrs/internal/model"
	"github.com/Veraticus/edrs/internal/table"
)

// Options tune the validation gate.
type Options struct {
	// StrictRecency rejects tables without PAY_0, where the three-column
	// recency window would silently shift to older lags.
	StrictRecency bool
}

// Validate checks the normalized table against the hard preconditions of
// the pipeline and returns its column layout.
func Validate(t table.Table, opts Options) (model.Layout, error) {
	for _, col := range []string{model.ColID, model.ColLimitBal, model.ColDefault} {
		if !t.Has(col) {
			return model.Layout{}, common.NewSchemaError(col, "required column is missing")
		}
	}

	var layout model.Layout
	for lag := 0; lag <= model.MaxPayLag; lag++ {
		if t.Has(model.PayColumn(lag)) {
			layout.PayLags = append(layout.PayLags, lag)
		}
	}
	for period := 1; period <= model.NumBillPeriods; period++ {
		if t.Has(model.BillColumn(period)) {
			layout.BillPeriods = append(layout.BillPeriods, period)
		}
		if t.Has(model.PayAmtColumn(period)) {
			layout.PayAmtPeriods = append(layout.PayAmtPeriods, period)
		}
	}

	if len(layout.PayLags) < model.MinPayColumns {
		present := make([]string, len(layout.PayLags))
		for i, lag := range layout.PayLags {
			present[i] = model.PayColumn(lag)
		}
		return model.Layout{}, common.NewSchemaError("PAY_*",
			fmt.Sprintf("need at least %d repayment status columns, found [%s]",
				model.MinPayColumns, strings.Join(present, ", ")))
	}

	for _, col := range []string{model.BillColumn(1), model.PayAmtColumn(1)} {
		if !t.Has(col) {
			return model.Layout{}, common.NewSchemaError(col, "required column is missing")
		}
	}

	if opts.StrictRecency && !layout.HasPayLag(0) {
		return model.Layout{}, common.NewSchemaError(model.PayColumn(0),
			"missing; the recent-delinquency window would be ambiguous")
	}

	return layout, nil
}
