// Package features derives the behavioral indicators of each account from
// its repayment-status, bill and payment columns.
package features

import (
	"math"

	"github.com/Veraticus/edrs/internal/common"
	"github.com/Veraticus/edrs/internal/model"
)

const (
	// Epsilon keeps ratios and z-scores finite when a denominator is ~0.
	Epsilon = 1e-6
	// TrendThreshold is the minimum bill/time correlation for an upward trend.
	TrendThreshold = 0.3
	// MinTrendPeriods is the number of bill columns needed to measure a trend.
	MinTrendPeriods = 3
)

// Extractor computes features for accounts sharing one column layout.
type Extractor struct {
	recent  []int
	dpdLag  int
	layout  model.Layout
	timeZ   []float64
	doTrend bool
}

// NewExtractor prepares the recency window and the standardized time axis
// for a layout.
func NewExtractor(layout model.Layout) (*Extractor, error) {
	recent := layout.RecentLags()
	if len(recent) == 0 {
		return nil, common.NewSchemaError("PAY_*", "no repayment status columns")
	}

	dpdLag := recent[0]
	if layout.HasPayLag(0) {
		dpdLag = 0
	}

	e := &Extractor{
		layout:  layout,
		recent:  recent,
		dpdLag:  dpdLag,
		doTrend: len(layout.BillPeriods) >= MinTrendPeriods,
	}

	if e.doTrend {
		idx := make([]float64, len(layout.BillPeriods))
		for i := range idx {
			idx[i] = float64(i + 1)
		}
		e.timeZ = zscore(idx)
	}

	return e, nil
}

// Extract computes the feature set of every account, in input order.
func Extract(layout model.Layout, accounts []model.Account) ([]model.Features, error) {
	e, err := NewExtractor(layout)
	if err != nil {
		return nil, err
	}

	out := make([]model.Features, len(accounts))
	for i, acct := range accounts {
		f, err := e.Account(acct)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// Account computes the feature set of a single account.
func (e *Extractor) Account(acct model.Account) (model.Features, error) {
	var f model.Features

	for _, lag := range e.recent {
		v := floor(acct.Pay(lag))
		if v > 0 {
			f.CountTelat3m++
		}
		if v >= 2 {
			f.StreakTelat2Plus = 1
		}
	}

	var maxArrears float64
	for _, lag := range e.layout.PayLags {
		v := floor(acct.Pay(lag))
		if v > 0 {
			f.CountTelat6m++
		}
		maxArrears = math.Max(maxArrears, v)
	}
	f.MaxTunggakan6m = int(maxArrears)

	f.RatioBayarLast = RatioBayar(acct.Payment(1), acct.Bill(1))
	if math.IsNaN(f.RatioBayarLast) || math.IsInf(f.RatioBayarLast, 0) {
		return model.Features{}, &common.ComputationError{
			Op:     "ratio_bayar_last",
			ID:     acct.ID,
			Reason: "payment ratio is not finite",
		}
	}

	if e.doTrend {
		f.BillTrendUp = e.trendUp(acct)
	}

	if acct.Pay(e.dpdLag) > 0 {
		f.DPDProxyNow = 1
	}

	return f, nil
}

func (e *Extractor) trendUp(acct model.Account) bool {
	bills := make([]float64, len(e.layout.BillPeriods))
	for i, p := range e.layout.BillPeriods {
		bills[i] = acct.Bill(p)
	}
	return dot(zscore(bills), e.timeZ) > TrendThreshold
}

// RatioBayar divides a payment by the absolute bill with an epsilon guard.
// A zero bill yields payment/1e-6, a large finite value.
func RatioBayar(payment, bill float64) float64 {
	return payment / (math.Abs(bill) + Epsilon)
}

// zscore standardizes values with the population standard deviation.
func zscore(values []float64) []float64 {
	n := float64(len(values))
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= n

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	std := math.Sqrt(variance / n)

	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - mean) / (std + Epsilon)
	}
	return out
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func floor(v float64) float64 {
	return math.Max(0, v)
}
