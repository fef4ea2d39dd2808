package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/edrs/internal/model"
)

// profileColumns are the demographic columns shown when the input has them.
var profileColumns = []string{"SEX", "EDUCATION", "MARRIAGE", "AGE"}

// AccountDetail is everything the detail view shows for one account.
// Insight and Conclusion are optional.
type AccountDetail struct {
	Insight    string
	Conclusion string
	Source     string
	Account    model.ScoredAccount
	Layout     model.Layout
}

// RenderAccount renders the full detail view for one account.
func RenderAccount(d AccountDetail) string {
	s := d.Account
	sections := []string{
		FormatTitle(fmt.Sprintf("Account %d", s.ID())),
		renderFields(profileFields(d)),
	}

	if raw := renderHistory(d); raw != "" {
		sections = append(sections, SubtitleStyle.Render("Payment history"), raw)
	}

	sections = append(sections,
		SubtitleStyle.Render("Rules"),
		renderFields(ruleFields(s)),
		SubtitleStyle.Render("Score breakdown"),
		renderBreakdown(s.Breakdown),
	)

	if d.Insight != "" {
		sections = append(sections, SubtitleStyle.Render("Insight"), wrap(d.Insight))
	}
	if d.Conclusion != "" {
		title := "Conclusion"
		if d.Source == model.SourceFallback {
			title += " (fallback)"
		}
		sections = append(sections, SubtitleStyle.Render(title), wrap(d.Conclusion))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type field struct {
	label string
	value string
	style lipgloss.Style
}

func profileFields(d AccountDetail) []field {
	s := d.Account
	fields := []field{
		{label: model.ColID, value: strconv.Itoa(s.ID())},
		{label: model.ColLimitBal, value: GroupThousands(s.Account.LimitBal)},
	}
	for _, col := range profileColumns {
		if v, ok := extra(s.Account, col); ok {
			fields = append(fields, field{label: col, value: v})
		}
	}
	label := "-"
	if s.Account.Default != nil {
		label = strconv.Itoa(*s.Account.Default)
	}
	return append(fields,
		field{label: "Score", value: strconv.Itoa(s.Score)},
		field{label: "Bucket", value: s.Bucket.String(), style: BucketStyle(s.Bucket)},
		field{label: "Action", value: s.Action},
		field{label: "Label", value: label},
	)
}

func ruleFields(s model.ScoredAccount) []field {
	f := s.Features
	return []field{
		{label: "Late payments (3m)", value: strconv.Itoa(f.CountTelat3m)},
		{label: "Late payments (6m)", value: strconv.Itoa(f.CountTelat6m)},
		{label: "Max arrears (6m)", value: strconv.Itoa(f.MaxTunggakan6m)},
		{label: "Last payment ratio", value: fmt.Sprintf("%.2f", f.RatioBayarLast)},
		{label: "Bill trend up", value: yesNo(f.BillTrendUp)},
		{label: "Currently past due", value: yesNo(f.DPDProxyNow == 1)},
		{label: "Streak of 2+ arrears", value: strconv.Itoa(f.StreakTelat2Plus)},
	}
}

// extra looks up a passthrough column case-insensitively.
func extra(a model.Account, col string) (string, bool) {
	for k, v := range a.Extra {
		if strings.EqualFold(k, col) {
			return v, true
		}
	}
	return "", false
}

func renderFields(fields []field) string {
	width := 0
	for _, f := range fields {
		width = max(width, lipgloss.Width(f.label))
	}
	label := BoldStyle.Width(width + 2)

	lines := make([]string, len(fields))
	for i, f := range fields {
		lines[i] = label.Render(f.label) + f.style.Render(f.value)
	}
	return strings.Join(lines, "\n")
}

// renderHistory lays the raw PAY, BILL_AMT and PAY_AMT columns out as one
// row per series. Absent columns are skipped.
func renderHistory(d AccountDetail) string {
	a := d.Account.Account
	var out []string

	if len(d.Layout.PayLags) > 0 {
		header := make([]string, len(d.Layout.PayLags))
		row := make([]string, len(d.Layout.PayLags))
		for i, lag := range d.Layout.PayLags {
			header[i] = model.PayColumn(lag)
			row[i] = formatFloat(a.Pay(lag))
		}
		out = append(out, renderTable(header, [][]string{row}, plainCell))
	}

	series := []struct {
		column  func(int) string
		value   func(int) float64
		periods []int
	}{
		{column: model.BillColumn, value: a.Bill, periods: d.Layout.BillPeriods},
		{column: model.PayAmtColumn, value: a.Payment, periods: d.Layout.PayAmtPeriods},
	}
	for _, s := range series {
		if len(s.periods) == 0 {
			continue
		}
		header := make([]string, len(s.periods))
		row := make([]string, len(s.periods))
		for i, p := range s.periods {
			header[i] = s.column(p)
			row[i] = GroupThousands(s.value(p))
		}
		out = append(out, renderTable(header, [][]string{row}, plainCell))
	}
	return strings.Join(out, "\n\n")
}

func renderBreakdown(breakdown []model.RuleContribution) string {
	if len(breakdown) == 0 {
		return SubtleStyle.Render("No rule fired.")
	}
	rows := make([][]string, len(breakdown))
	for i, c := range breakdown {
		rows[i] = []string{c.Rule, fmt.Sprintf("+%d", c.Points)}
	}
	return renderTable([]string{"Rule", "Points"}, rows, plainCell)
}

func plainCell(int, int) lipgloss.Style {
	return lipgloss.NewStyle()
}

func wrap(text string) string {
	return lipgloss.NewStyle().Width(100).Render(text)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
