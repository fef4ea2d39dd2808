// Package model defines the account, feature and score records that flow
// through the EDRS pipeline.
package model

import "fmt"

// Canonical column names.
const (
	ColID       = "ID"
	ColLimitBal = "LIMIT_BAL"
	ColDefault  = "default.payment.next.month"
)

// Column ranges of the canonical schema.
const (
	MaxPayLag      = 6
	NumBillPeriods = 6
	MinPayColumns  = 3
	RecentWindow   = 3
)

// PayColumn returns the canonical repayment-status column for a lag (0..6).
func PayColumn(lag int) string {
	return fmt.Sprintf("PAY_%d", lag)
}

// BillColumn returns the canonical bill-amount column for a period (1..6).
func BillColumn(period int) string {
	return fmt.Sprintf("BILL_AMT%d", period)
}

// PayAmtColumn returns the canonical payment-amount column for a period (1..6).
func PayAmtColumn(period int) string {
	return fmt.Sprintf("PAY_AMT%d", period)
}

// Layout records which optional canonical columns a portfolio carries.
// Lags and periods are kept in canonical order.
type Layout struct {
	PayLags       []int
	BillPeriods   []int
	PayAmtPeriods []int
}

// HasPayLag reports whether the PAY column for lag is present.
func (l Layout) HasPayLag(lag int) bool {
	for _, p := range l.PayLags {
		if p == lag {
			return true
		}
	}
	return false
}

// RecentLags returns the first RecentWindow present lags in preference order
// PAY_0, PAY_1, ..., PAY_6.
func (l Layout) RecentLags() []int {
	if len(l.PayLags) <= RecentWindow {
		return append([]int(nil), l.PayLags...)
	}
	return append([]int(nil), l.PayLags[:RecentWindow]...)
}

// Account is one decoded row of the portfolio. Values of absent or blank
// cells are zero; Layout says which columns were actually present.
type Account struct {
	Extra     map[string]string
	Default   *int
	ID        int
	LimitBal  float64
	PayStatus [MaxPayLag + 1]float64
	BillAmt   [NumBillPeriods]float64
	PayAmt    [NumBillPeriods]float64
}

// Pay returns the repayment status for a lag.
func (a Account) Pay(lag int) float64 {
	return a.PayStatus[lag]
}

// Bill returns the bill amount for a 1-based period.
func (a Account) Bill(period int) float64 {
	return a.BillAmt[period-1]
}

// Payment returns the payment amount for a 1-based period.
func (a Account) Payment(period int) float64 {
	return a.PayAmt[period-1]
}
