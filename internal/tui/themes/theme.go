// Package themes holds the color schemes of the portfolio viewer.
package themes

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/edrs/internal/model"
)

// Theme is the set of styles the viewer draws with.
type Theme struct {
	Buckets       map[model.Bucket]lipgloss.Color
	Selected      lipgloss.Style
	Header        lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusSuccess lipgloss.Style
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Primary       lipgloss.Color
	Muted         lipgloss.Color
}

// Bucket returns the badge style for a risk bucket.
func (t Theme) Bucket(b model.Bucket) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	if c, ok := t.Buckets[b]; ok {
		style = style.Foreground(c)
	}
	return style
}

// palette is the handful of colors a theme is derived from. The five risk
// colors run from Very High to Very Low.
type palette struct {
	risk     [5]lipgloss.Color
	primary  lipgloss.Color
	onAccent lipgloss.Color
	accent   lipgloss.Color
	text     lipgloss.Color
	subtext  lipgloss.Color
	muted    lipgloss.Color
	border   lipgloss.Color
}

func (p palette) theme() Theme {
	buckets := make(map[model.Bucket]lipgloss.Color, len(p.risk))
	for i, b := range model.AllBuckets() {
		buckets[b] = p.risk[i]
	}
	status := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}

	return Theme{
		Buckets: buckets,
		Primary: p.primary,
		Muted:   p.muted,
		Title:   lipgloss.NewStyle().Bold(true).Foreground(p.text),
		Subtitle: lipgloss.NewStyle().
			Foreground(p.subtext),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.accent).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(p.border),
		Selected: lipgloss.NewStyle().
			Background(p.primary).
			Foreground(p.onAccent).
			Bold(true),
		StatusSuccess: status(p.risk[4]),
		StatusWarning: status(p.risk[1]),
		StatusError:   status(p.risk[0]),
		StatusInfo:    status(p.risk[3]),
	}
}

var (
	// Default works on dark terminals.
	Default = palette{
		risk: [5]lipgloss.Color{"#ef4444", "#f59e0b", "#eab308", "#3b82f6", "#10b981"},

		primary:  "#7c3aed",
		onAccent: "#fafafa",
		accent:   "#a78bfa",
		text:     "#fafafa",
		subtext:  "#a3a3a3",
		muted:    "#737373",
		border:   "#404040",
	}.theme()

	// CatppuccinMocha follows the Catppuccin Mocha palette.
	CatppuccinMocha = palette{
		risk: [5]lipgloss.Color{"#f38ba8", "#fab387", "#f9e2af", "#89dceb", "#a6e3a1"},

		primary:  "#cba6f7",
		onAccent: "#1e1e2e",
		accent:   "#f5c2e7",
		text:     "#cdd6f4",
		subtext:  "#a6adc8",
		muted:    "#6c7086",
		border:   "#45475a",
	}.theme()
)

var byName = map[string]Theme{
	"default":          Default,
	"catppuccin-mocha": CatppuccinMocha,
}

// GetTheme returns the named theme, or Default for an unknown name.
func GetTheme(name string) Theme {
	if t, ok := byName[name]; ok {
		return t
	}
	return Default
}
