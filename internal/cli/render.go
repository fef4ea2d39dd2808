package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/edrs/internal/model"
	"github.com/Veraticus/edrs/internal/priority"
)

// RankedColumns is the column order of ranked CSV output.
var RankedColumns = []string{
	model.ColID,
	model.ColLimitBal,
	"edrs_score",
	"bucket",
	"next_best_action",
	"count_telat_3m",
	"count_telat_6m",
	"max_tunggakan_6m",
	"ratio_bayar_last",
	"bill_trend_up",
	"dpd_proxy_now",
	"streak_telat2plus",
	model.ColDefault,
}

// ScoredRow is the flat export form of a scored account.
type ScoredRow struct {
	Default          *int         `json:"default.payment.next.month"`
	Bucket           model.Bucket `json:"bucket"`
	Action           string       `json:"next_best_action"`
	ID               int          `json:"ID"`
	LimitBal         float64      `json:"LIMIT_BAL"`
	Score            int          `json:"edrs_score"`
	CountTelat3m     int          `json:"count_telat_3m"`
	CountTelat6m     int          `json:"count_telat_6m"`
	MaxTunggakan6m   int          `json:"max_tunggakan_6m"`
	RatioBayarLast   float64      `json:"ratio_bayar_last"`
	BillTrendUp      bool         `json:"bill_trend_up"`
	DPDProxyNow      int          `json:"dpd_proxy_now"`
	StreakTelat2Plus int          `json:"streak_telat2plus"`
}

// NewScoredRow flattens s.
func NewScoredRow(s model.ScoredAccount) ScoredRow {
	f := s.Features
	return ScoredRow{
		ID:               s.ID(),
		LimitBal:         s.Account.LimitBal,
		Score:            s.Score,
		Bucket:           s.Bucket,
		Action:           s.Action,
		CountTelat3m:     f.CountTelat3m,
		CountTelat6m:     f.CountTelat6m,
		MaxTunggakan6m:   f.MaxTunggakan6m,
		RatioBayarLast:   f.RatioBayarLast,
		BillTrendUp:      f.BillTrendUp,
		DPDProxyNow:      f.DPDProxyNow,
		StreakTelat2Plus: f.StreakTelat2Plus,
		Default:          s.Account.Default,
	}
}

func (r ScoredRow) record() []string {
	label := ""
	if r.Default != nil {
		label = strconv.Itoa(*r.Default)
	}
	return []string{
		strconv.Itoa(r.ID),
		formatFloat(r.LimitBal),
		strconv.Itoa(r.Score),
		r.Bucket.String(),
		r.Action,
		strconv.Itoa(r.CountTelat3m),
		strconv.Itoa(r.CountTelat6m),
		strconv.Itoa(r.MaxTunggakan6m),
		formatFloat(r.RatioBayarLast),
		strconv.FormatBool(r.BillTrendUp),
		strconv.Itoa(r.DPDProxyNow),
		strconv.Itoa(r.StreakTelat2Plus),
		label,
	}
}

// WriteCSV writes accounts as CSV with a RankedColumns header.
func WriteCSV(w io.Writer, accounts []model.ScoredAccount) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RankedColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, s := range accounts {
		if err := cw.Write(NewScoredRow(s).record()); err != nil {
			return fmt.Errorf("failed to write account %d: %w", s.ID(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes accounts as an indented JSON array of ScoredRow.
func WriteJSON(w io.Writer, accounts []model.ScoredAccount) error {
	rows := make([]ScoredRow, len(accounts))
	for i, s := range accounts {
		rows[i] = NewScoredRow(s)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode accounts: %w", err)
	}
	return nil
}

// SummaryColumns is the column order of summary CSV output.
var SummaryColumns = []string{"bucket", "n", "avg_score", "share_ratio_below_0_7", "share_dpd"}

// WriteSummaryCSV writes a bucket summary as CSV with a SummaryColumns header.
func WriteSummaryCSV(w io.Writer, summary []priority.BucketSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SummaryColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, b := range summary {
		record := []string{
			b.Bucket.String(),
			strconv.Itoa(b.Count),
			formatFloat(b.AvgScore),
			formatFloat(b.ShareLowPayment),
			formatFloat(b.ShareDPD),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write bucket %s: %w", b.Bucket, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummaryJSON writes a bucket summary as an indented JSON array.
func WriteSummaryJSON(w io.Writer, summary []priority.BucketSummary) error {
	if summary == nil {
		summary = []priority.BucketSummary{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return nil
}

// RenderRanked renders accounts as a styled table in the order given.
func RenderRanked(accounts []model.ScoredAccount) string {
	if len(accounts) == 0 {
		return SubtleStyle.Render("No accounts.")
	}

	header := []string{"#", "ID", "Limit", "Score", "Bucket", "Late 3m", "Late 6m", "Max arrears", "Pay ratio", "DPD", "Action"}
	rows := make([][]string, len(accounts))
	styles := make([]lipgloss.Style, len(accounts))
	for i, s := range accounts {
		f := s.Features
		rows[i] = []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(s.ID()),
			GroupThousands(s.Account.LimitBal),
			strconv.Itoa(s.Score),
			s.Bucket.String(),
			strconv.Itoa(f.CountTelat3m),
			strconv.Itoa(f.CountTelat6m),
			strconv.Itoa(f.MaxTunggakan6m),
			fmt.Sprintf("%.2f", f.RatioBayarLast),
			strconv.Itoa(f.DPDProxyNow),
			s.Action,
		}
		styles[i] = BucketStyle(s.Bucket)
	}
	return renderTable(header, rows, func(row, col int) lipgloss.Style {
		if col == 4 {
			return styles[row]
		}
		return lipgloss.NewStyle()
	})
}

// RenderSummary renders per-bucket aggregates.
func RenderSummary(summary []priority.BucketSummary) string {
	if len(summary) == 0 {
		return SubtleStyle.Render("No accounts.")
	}

	header := []string{"Bucket", "Accounts", "Avg score", "Ratio < 0.7", "DPD"}
	rows := make([][]string, len(summary))
	for i, b := range summary {
		rows[i] = []string{
			b.Bucket.String(),
			strconv.Itoa(b.Count),
			fmt.Sprintf("%.2f", b.AvgScore),
			fmt.Sprintf("%.1f%%", b.ShareLowPayment*100),
			fmt.Sprintf("%.1f%%", b.ShareDPD*100),
		}
	}
	return renderTable(header, rows, func(row, col int) lipgloss.Style {
		if col == 0 {
			return BucketStyle(summary[row].Bucket)
		}
		return lipgloss.NewStyle()
	})
}

// renderTable pads every column to its widest cell. cellStyle colors a cell
// without changing its width.
func renderTable(header []string, rows [][]string, cellStyle func(row, col int) lipgloss.Style) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	headCells := make([]string, len(header))
	for i, h := range header {
		headCells[i] = TableCellStyle.Width(widths[i] + 2).Render(h)
	}
	b.WriteString(TableHeaderStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, headCells...)))
	b.WriteString("\n")

	for r, row := range rows {
		cells := make([]string, len(row))
		for c, cell := range row {
			cells[c] = TableCellStyle.Width(widths[c] + 2).Render(cellStyle(r, c).Render(cell))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// GroupThousands formats v with comma thousands separators, dropping the
// fraction when v is integral.
func GroupThousands(v float64) string {
	s := formatFloat(v)
	intPart, frac, _ := strings.Cut(s, ".")
	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
