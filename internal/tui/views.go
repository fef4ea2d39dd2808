package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/edrs/internal/cli"
	"github.com/Veraticus/edrs/internal/model"
)

// fixedColumns is the total width of every column except Action.
const fixedColumns = 5 + 8 + 12 + 6 + 10 + 5 + 7

// columns sizes the ranked table, giving Action whatever width is left.
func columns(width int) []table.Column {
	action := max(width-fixedColumns-2*8, 20)
	return []table.Column{
		{Title: "#", Width: 5},
		{Title: "ID", Width: 8},
		{Title: "Limit", Width: 12},
		{Title: "Score", Width: 6},
		{Title: "Bucket", Width: 10},
		{Title: "DPD", Width: 5},
		{Title: "Ratio", Width: 7},
		{Title: "Action", Width: action},
	}
}

func tableRows(accounts []model.ScoredAccount) []table.Row {
	rows := make([]table.Row, len(accounts))
	for i, s := range accounts {
		rows[i] = table.Row{
			strconv.Itoa(i + 1),
			strconv.Itoa(s.ID()),
			cli.GroupThousands(s.Account.LimitBal),
			strconv.Itoa(s.Score),
			s.Bucket.String(),
			strconv.Itoa(s.Features.DPDProxyNow),
			fmt.Sprintf("%.2f", s.Features.RatioBayarLast),
			s.Action,
		}
	}
	return rows
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body, footer string
	switch m.state {
	case StateDetail:
		body = m.detail.View()
		footer = m.renderStatus()
	case StateJump:
		body = m.table.View()
		footer = m.jump.View()
	default:
		body = m.table.View()
		footer = m.renderStatus()
	}

	parts := []string{m.renderHeader(), body, footer}
	if m.config.ShowHelp {
		parts = append(parts, m.help.View(m.keymap))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderHeader renders the title line with the active filter and counts.
func (m Model) renderHeader() string {
	title := m.theme.Title.Render("EDRS collection priorities")

	filter := lipgloss.NewStyle().Foreground(m.theme.Muted).Render("all buckets")
	if m.filter != nil {
		filter = m.theme.Bucket(*m.filter).Render(m.filter.String())
	}

	count := m.theme.Subtitle.Render(fmt.Sprintf("%d of %d accounts", len(m.rows), m.portfolio.Len()))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", filter, "  ", count)
}

// renderStatus renders the last status message, or the selection hint.
func (m Model) renderStatus() string {
	if m.status.text == "" {
		if s, ok := m.selected(); ok && m.state == StateList {
			return m.theme.Bucket(s.Bucket).UnsetPadding().Render(s.Bucket.String()) +
				lipgloss.NewStyle().Foreground(m.theme.Muted).Render(fmt.Sprintf("  account %d, score %d", s.ID(), s.Score))
		}
		return ""
	}

	style := m.theme.StatusInfo
	switch m.status.level {
	case statusSuccess:
		style = m.theme.StatusSuccess
	case statusWarning:
		style = m.theme.StatusWarning
	case statusError:
		style = m.theme.StatusError
	}
	return style.Render(m.status.text)
}
