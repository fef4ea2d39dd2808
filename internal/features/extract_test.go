package features

import (
	"errors"
	"math"
	"testing"

	"github.com/Veraticus/edrs/internal/common"
	"github.com/Veraticus/edrs/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fullLayout = model.Layout{
	PayLags:       []int{0, 1, 2, 3, 4, 5, 6},
	BillPeriods:   []int{1, 2, 3, 4, 5, 6},
	PayAmtPeriods: []int{1, 2, 3, 4, 5, 6},
}

func extractOne(t *testing.T, layout model.Layout, acct model.Account) model.Features {
	t.Helper()
	got, err := Extract(layout, []model.Account{acct})
	require.NoError(t, err)
	require.Len(t, got, 1)
	return got[0]
}

func TestExtract_DelinquentAccount(t *testing.T) {
	acct := model.Account{
		ID:        1,
		PayStatus: [7]float64{2, 0, 1, 0, 0, 0, 0},
		BillAmt:   [6]float64{1000},
		PayAmt:    [6]float64{100},
	}

	f := extractOne(t, fullLayout, acct)

	assert.Equal(t, 2, f.CountTelat3m)
	assert.Equal(t, 2, f.CountTelat6m)
	assert.Equal(t, 2, f.MaxTunggakan6m)
	assert.InDelta(t, 0.0999, f.RatioBayarLast, 1e-4)
	assert.Equal(t, 1, f.DPDProxyNow)
	assert.Equal(t, 1, f.StreakTelat2Plus)
	assert.False(t, f.BillTrendUp)
}

func TestExtract_CurrentAccount(t *testing.T) {
	acct := model.Account{
		ID:      2,
		BillAmt: [6]float64{500},
		PayAmt:  [6]float64{500},
	}

	f := extractOne(t, fullLayout, acct)

	assert.Equal(t, 0, f.CountTelat3m)
	assert.Equal(t, 0, f.CountTelat6m)
	assert.Equal(t, 0, f.MaxTunggakan6m)
	assert.InDelta(t, 1.0, f.RatioBayarLast, 1e-6)
	assert.Equal(t, 0, f.DPDProxyNow)
	assert.Equal(t, 0, f.StreakTelat2Plus)
}

func TestExtract_CreditsNeverCountAsDelinquency(t *testing.T) {
	acct := model.Account{
		ID:        3,
		PayStatus: [7]float64{-2, -1, -2, -1, -1, -2, -2},
	}

	f := extractOne(t, fullLayout, acct)

	assert.Zero(t, f.CountTelat3m)
	assert.Zero(t, f.CountTelat6m)
	assert.Zero(t, f.MaxTunggakan6m)
	assert.Zero(t, f.DPDProxyNow)
}

func TestExtract_DivisionGuard(t *testing.T) {
	acct := model.Account{ID: 4, PayAmt: [6]float64{50}}

	f := extractOne(t, fullLayout, acct)

	assert.False(t, math.IsInf(f.RatioBayarLast, 0))
	assert.False(t, math.IsNaN(f.RatioBayarLast))
	assert.InDelta(t, 50/1e-6, f.RatioBayarLast, 1)
}

func TestExtract_NegativeBillUsesMagnitude(t *testing.T) {
	acct := model.Account{ID: 5, BillAmt: [6]float64{-200}, PayAmt: [6]float64{100}}

	f := extractOne(t, fullLayout, acct)

	assert.InDelta(t, 0.5, f.RatioBayarLast, 1e-6)
}

func TestExtract_BillTrend(t *testing.T) {
	tests := []struct {
		name   string
		layout model.Layout
		bills  [6]float64
		want   bool
	}{
		{name: "rising with period index", layout: fullLayout, bills: [6]float64{100, 200, 300, 400, 500, 600}, want: true},
		{name: "falling with period index", layout: fullLayout, bills: [6]float64{600, 500, 400, 300, 200, 100}, want: false},
		{name: "flat", layout: fullLayout, bills: [6]float64{300, 300, 300, 300, 300, 300}, want: false},
		{
			name:   "three periods suffice",
			layout: model.Layout{PayLags: []int{0, 2, 3}, BillPeriods: []int{1, 2, 3}, PayAmtPeriods: []int{1}},
			bills:  [6]float64{10, 20, 30},
			want:   true,
		},
		{
			name:   "two periods never trend",
			layout: model.Layout{PayLags: []int{0, 2, 3}, BillPeriods: []int{1, 2}, PayAmtPeriods: []int{1}},
			bills:  [6]float64{10, 20},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := extractOne(t, tt.layout, model.Account{ID: 6, BillAmt: tt.bills})
			assert.Equal(t, tt.want, f.BillTrendUp)
		})
	}
}

func TestExtract_RecentWindowFollowsPresentLags(t *testing.T) {
	// UCI layout lacks PAY_1, so the window is PAY_0, PAY_2, PAY_3.
	uci := model.Layout{PayLags: []int{0, 2, 3, 4, 5, 6}, BillPeriods: []int{1}, PayAmtPeriods: []int{1}}
	acct := model.Account{ID: 7, PayStatus: [7]float64{0, 5, 0, 0, 2, 0, 0}}

	f := extractOne(t, uci, acct)

	assert.Equal(t, 0, f.CountTelat3m, "PAY_1 is not part of the layout")
	assert.Equal(t, 1, f.CountTelat6m)
	assert.Equal(t, 2, f.MaxTunggakan6m)
	assert.Equal(t, 0, f.StreakTelat2Plus)
}

func TestExtract_DPDProxyWithoutPay0(t *testing.T) {
	layout := model.Layout{PayLags: []int{2, 3, 4}, BillPeriods: []int{1}, PayAmtPeriods: []int{1}}
	acct := model.Account{ID: 8, PayStatus: [7]float64{0, 0, 1, 0, 0, 0, 0}}

	f := extractOne(t, layout, acct)

	assert.Equal(t, 1, f.DPDProxyNow, "falls back to the first recent lag")
}

func TestExtract_EmptyLayout(t *testing.T) {
	_, err := Extract(model.Layout{}, []model.Account{{ID: 1}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrSchema))
}
