package cli

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/edrs/internal/model"
	"github.com/Veraticus/edrs/internal/pipeline"
	"github.com/Veraticus/edrs/internal/priority"
	"github.com/Veraticus/edrs/internal/testutil"
)

func lateAccount() model.ScoredAccount {
	return model.ScoredAccount{
		Account: model.Account{
			ID:       2,
			LimitBal: 20000,
			Default:  testutil.Label(1),
			Extra:    map[string]string{"sex": "2", "AGE": "24"},
		},
		Features: model.Features{
			CountTelat3m:     2,
			CountTelat6m:     2,
			MaxTunggakan6m:   2,
			RatioBayarLast:   0.1,
			DPDProxyNow:      1,
			StreakTelat2Plus: 1,
		},
		Score:  8,
		Bucket: model.BucketVeryHigh,
		Action: "Call today",
		Breakdown: []model.RuleContribution{
			{Rule: "late_recent_3m", Points: 4},
			{Rule: "dpd_now", Points: 1},
		},
	}
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	require.NoError(t, err)
	return n
}

func TestWriteCSV(t *testing.T) {
	acct := lateAccount()
	unlabeled := lateAccount()
	unlabeled.Account.ID = 9
	unlabeled.Account.Default = nil

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []model.ScoredAccount{acct, unlabeled}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(RankedColumns, ","), lines[0])
	assert.Equal(t, "2,20000,8,Very High,Call today,2,2,2,0.1,false,1,1,1", lines[1])
	assert.True(t, strings.HasSuffix(lines[2], ",1,1,"), "unlabeled row ends with an empty label: %q", lines[2])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, []model.ScoredAccount{lateAccount()}))

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Len(t, row, len(RankedColumns))
	for _, col := range RankedColumns {
		assert.Contains(t, row, col)
	}
	assert.InDelta(t, 2, row["ID"], 0)
	assert.Equal(t, "Very High", row["bucket"])
	assert.InDelta(t, 1, row["default.payment.next.month"], 0)
}

func TestWriteJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestRenderRanked(t *testing.T) {
	p, err := pipeline.Run(testutil.Scenario(), pipeline.DefaultConfig())
	require.NoError(t, err)

	out := RenderRanked(p.All)
	lines := strings.Split(out, "\n")

	// header, its underline, then one line per account
	require.Len(t, lines, 2+len(p.All))
	assert.Contains(t, lines[0], "Bucket")
	assert.Contains(t, lines[0], "Action")

	for i, s := range p.All {
		fields := strings.Fields(lines[2+i])
		require.GreaterOrEqual(t, len(fields), 2)
		assert.Equal(t, s.ID(), mustAtoi(t, fields[1]), "row %d", i)
	}
	assert.Contains(t, out, "Very High")
	assert.Contains(t, out, "80,000")
}

func TestRenderRanked_Empty(t *testing.T) {
	assert.Contains(t, RenderRanked(nil), "No accounts.")
	assert.Contains(t, RenderSummary(nil), "No accounts.")
}

func TestRenderSummary(t *testing.T) {
	summary := []priority.BucketSummary{
		{Bucket: model.BucketVeryHigh, Count: 2, AvgScore: 7.5, ShareLowPayment: 1, ShareDPD: 0.5},
		{Bucket: model.BucketVeryLow, Count: 10, AvgScore: 0.25},
	}

	out := RenderSummary(summary)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[2], "Very High")
	assert.Contains(t, lines[2], "7.50")
	assert.Contains(t, lines[2], "100.0%")
	assert.Contains(t, lines[2], "50.0%")
	assert.Contains(t, lines[3], "Very Low")
	assert.Contains(t, lines[3], "0.25")
}

func TestWriteSummaryCSV(t *testing.T) {
	summary := []priority.BucketSummary{
		{Bucket: model.BucketVeryHigh, Count: 2, AvgScore: 7.5, ShareLowPayment: 1, ShareDPD: 0.5},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummaryCSV(&buf, summary))
	assert.Equal(t, "bucket,n,avg_score,share_ratio_below_0_7,share_dpd\nVery High,2,7.5,1,0.5\n", buf.String())
}

func TestWriteSummaryJSON(t *testing.T) {
	summary := []priority.BucketSummary{
		{Bucket: model.BucketHigh, Count: 3, AvgScore: 5},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummaryJSON(&buf, summary))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "High", decoded[0]["bucket"])
	assert.InDelta(t, 3, decoded[0]["n"], 0)

	buf.Reset()
	require.NoError(t, WriteSummaryJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"long value", "x"}, {"s", "y"}}, plainCell)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Index(lines[2], "x"), strings.Index(lines[3], "y"))
	assert.Equal(t, strings.Index(lines[0], "B"), strings.Index(lines[2], "x"))
}

func TestGroupThousands(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{20000, "20,000"},
		{1234567, "1,234,567"},
		{-45000, "-45,000"},
		{1500.5, "1,500.5"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GroupThousands(tt.in), "GroupThousands(%v)", tt.in)
	}
}

func TestRenderAccount(t *testing.T) {
	d := AccountDetail{
		Account: lateAccount(),
		Layout: model.Layout{
			PayLags:     []int{0, 2, 3},
			BillPeriods: []int{1, 2},
		},
		Insight:    "Akun berisiko tinggi.",
		Conclusion: "Segera lakukan penagihan.",
		Source:     model.SourceFallback,
	}
	d.Account.Account.PayStatus[0] = 2
	d.Account.Account.BillAmt[0] = 1000

	out := RenderAccount(d)

	for _, want := range []string{
		"Account 2",
		"LIMIT_BAL", "20,000",
		"SEX", "AGE", "24",
		"Very High", "Call today",
		"PAY_0", "PAY_3", "BILL_AMT2", "1,000",
		"Last payment ratio", "0.10",
		"Currently past due", "Yes",
		"late_recent_3m", "+4",
		"Akun berisiko tinggi.",
		"Conclusion (fallback)",
		"Segera lakukan penagihan.",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "PAY_AMT1", "absent periods are not shown")
	assert.NotContains(t, out, "MARRIAGE")
}

func TestRenderAccount_Minimal(t *testing.T) {
	s := lateAccount()
	s.Account.Default = nil
	s.Breakdown = nil

	out := RenderAccount(AccountDetail{Account: s})
	assert.Contains(t, out, "No rule fired.")
	assert.NotContains(t, out, "Payment history")
	assert.NotContains(t, out, "Insight")
	assert.NotContains(t, out, "Conclusion")
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 3, "Narrating accounts...")
	fn := p.Func()

	fn(1, 3)
	fn(2, 3)
	assert.Equal(t, 2, p.Current())

	fn(3, 3)
	p.Finish()
	assert.Equal(t, 3, p.Current())
	assert.Contains(t, buf.String(), "Narrating accounts...")
}
