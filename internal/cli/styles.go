// Package cli renders scored portfolios for the terminal: styled tables,
// account details, machine-readable exports and progress feedback.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/edrs/internal/model"
)

// Palette.
var (
	accent = lipgloss.Color("#5B8DEF")
	muted  = lipgloss.Color("#7A7A7A")
	border = lipgloss.Color("#3A3A3A")
	good   = lipgloss.Color("#4ECDC4")
	warn   = lipgloss.Color("#FFE66D")
	bad    = lipgloss.Color("#FF6B6B")
	note   = lipgloss.Color("#95E1D3")

	bucketColors = map[model.Bucket]lipgloss.Color{
		model.BucketVeryHigh: lipgloss.Color("#FF4D4F"),
		model.BucketHigh:     lipgloss.Color("#FF9F43"),
		model.BucketMed:      warn,
		model.BucketLow:      good,
		model.BucketVeryLow:  note,
	}
)

var (
	// SubtitleStyle heads the sections of an account detail.
	SubtitleStyle = lipgloss.NewStyle().Foreground(muted).Underline(true)

	// SubtleStyle is for secondary text such as fallback markers.
	SubtleStyle = lipgloss.NewStyle().Foreground(muted)

	// BoldStyle labels key/value rows.
	BoldStyle = lipgloss.NewStyle().Bold(true)

	// TableHeaderStyle underlines the header row of a rendered table.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(border)

	// TableCellStyle separates table columns.
	TableCellStyle = lipgloss.NewStyle().PaddingRight(2)

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1)
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(1, 2)
)

// BucketStyle colors text by risk bucket; actionable buckets are bold.
func BucketStyle(b model.Bucket) lipgloss.Style {
	style := lipgloss.NewStyle()
	if c, ok := bucketColors[b]; ok {
		style = style.Foreground(c)
	}
	return style.Bold(b.Actionable())
}

// FormatTitle renders a section title.
func FormatTitle(title string) string {
	return titleStyle.Render("📋 " + title)
}

// FormatSuccess prefixes message with a check mark.
func FormatSuccess(message string) string {
	return lipgloss.NewStyle().Foreground(good).Render("✓ " + message)
}

// FormatWarning prefixes message with a warning sign.
func FormatWarning(message string) string {
	return lipgloss.NewStyle().Foreground(warn).Render("⚠️ " + message)
}

// FormatError prefixes message with a cross.
func FormatError(message string) string {
	return lipgloss.NewStyle().Foreground(bad).Render("✗ " + message)
}

// FormatInfo prefixes message with an info sign.
func FormatInfo(message string) string {
	return lipgloss.NewStyle().Foreground(note).Render("ℹ️ " + message)
}

// FormatPrompt renders a question awaiting input.
func FormatPrompt(prompt string) string {
	return promptStyle.Render(prompt + " → ")
}

// RenderBox draws content in a rounded box under title.
func RenderBox(title, content string) string {
	heading := titleStyle.UnsetMargins().Render(title)
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, heading, content))
}
