// Package report assembles collection-priority reports and renders them as
// Excel workbooks.
package report

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/edrs/internal/model"
	"github.com/Veraticus/edrs/internal/pipeline"
	"github.com/Veraticus/edrs/internal/priority"
	"github.com/Veraticus/edrs/internal/service"
)

// Category labels every report's title block.
const Category = "Prioritas Koleksi — EDRS (Rule-based)"

// TopLimit caps the per-bucket "Top" tabs.
const TopLimit = 200

// New builds the report content for a scored portfolio.
func New(p *pipeline.Portfolio, now time.Time) *service.Report {
	return &service.Report{
		ID:          uuid.New().String(),
		GeneratedAt: now,
		Category:    Category,
		All:         p.All,
		Summary:     priority.Summarize(p.All),
		TopVeryHigh: priority.Head(priority.FilterBuckets(p.All, model.BucketVeryHigh), TopLimit),
		TopHigh:     priority.Head(priority.FilterBuckets(p.All, model.BucketHigh), TopLimit),
	}
}

// Tab layout, 1-based rows: the title, a blank row, the metadata block, a
// blank row, then the header and data.
const (
	TitleRow  = 1
	MetaRow   = 3
	HeaderRow = 8
)

// DateLayout formats the report date.
const DateLayout = "02 January 2006, 15:04 MST"

// MetaField is one label/value line of a tab's title block.
type MetaField struct {
	Value any
	Label string
}

// Meta returns the title block lines shared by every tab.
func Meta(r *service.Report) []MetaField {
	return []MetaField{
		{Label: "Tanggal Laporan", Value: r.GeneratedAt.Format(DateLayout)},
		{Label: "Total Baris", Value: len(r.All)},
		{Label: "Kategori", Value: r.Category},
		{Label: "ID Laporan", Value: r.ID},
	}
}

// Grid lays a tab out as plain rows, starting at TitleRow.
func Grid(r *service.Report, tab Tab) [][]any {
	grid := make([][]any, 0, HeaderRow+len(tab.Rows))
	grid = append(grid, []any{tab.Title}, []any{})
	for _, m := range Meta(r) {
		grid = append(grid, []any{m.Label, m.Value})
	}
	for len(grid) < HeaderRow-1 {
		grid = append(grid, []any{})
	}

	header := make([]any, len(tab.Header))
	for i, h := range tab.Header {
		header[i] = h
	}
	grid = append(grid, header)
	return append(grid, tab.Rows...)
}

// Tab is one rendered sheet of a report.
type Tab struct {
	Name   string
	Title  string
	Header []string
	Rows   [][]any
}

// Tab names in output order.
const (
	TabAll         = "All"
	TabTopVeryHigh = "Top_Very_High"
	TabTopHigh     = "Top_High"
	TabSummary     = "Summary"
)

// AccountHeader is the display header of account tabs.
var AccountHeader = []string{
	"ID",
	"LIMIT BAL",
	"EDRS score",
	"Bucket",
	"Next best action",
	"Count telat 3m",
	"Count telat 6m",
	"Max tunggakan 6m",
	"Ratio bayar last",
	"Bill trend up",
	"DPD proxy now",
	"Streak telat 2+",
	"Default payment next month",
}

// SummaryHeader is the display header of the bucket summary tab.
var SummaryHeader = []string{
	"Bucket",
	"Jumlah nasabah",
	"Rata-rata skor",
	"Proporsi bayar <70%",
	"Proporsi DPD proxy",
}

// Tabs lays out the four report sheets.
func Tabs(r *service.Report) []Tab {
	summary := make([][]any, len(r.Summary))
	for i, s := range r.Summary {
		summary[i] = []any{s.Bucket.String(), s.Count, s.AvgScore, s.ShareLowPayment, s.ShareDPD}
	}

	return []Tab{
		{Name: TabAll, Title: "Status: Priorities EDRS (All Buckets, sorted)", Header: AccountHeader, Rows: accountRows(r.All)},
		{Name: TabTopVeryHigh, Title: "Status: Top Very High", Header: AccountHeader, Rows: accountRows(r.TopVeryHigh)},
		{Name: TabTopHigh, Title: "Status: Top High", Header: AccountHeader, Rows: accountRows(r.TopHigh)},
		{Name: TabSummary, Title: "Status: Ringkasan Bucket", Header: SummaryHeader, Rows: summary},
	}
}

func accountRows(view []model.ScoredAccount) [][]any {
	rows := make([][]any, len(view))
	for i, s := range view {
		rows[i] = AccountRow(s)
	}
	return rows
}

// AccountRow renders one account in AccountHeader order. A missing label is
// an empty string.
func AccountRow(s model.ScoredAccount) []any {
	var label any = ""
	if s.Account.Default != nil {
		label = *s.Account.Default
	}
	return []any{
		s.ID(),
		Amount(s.Account.LimitBal),
		s.Score,
		s.Bucket.String(),
		s.Action,
		s.Features.CountTelat3m,
		s.Features.CountTelat6m,
		s.Features.MaxTunggakan6m,
		s.Features.RatioBayarLast,
		s.Features.BillTrendUp,
		s.Features.DPDProxyNow,
		s.Features.StreakTelat2Plus,
		label,
	}
}

// Amount returns whole amounts as integers so they render without a
// decimal point.
func Amount(v float64) any {
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return int64(v)
	}
	return v
}
