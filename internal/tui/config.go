package tui

import (
	"github.com/Veraticus/edrs/internal/narrative"
	"github.com/Veraticus/edrs/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme     themes.Theme
	Generator *narrative.Generator
	Width     int
	Height    int
	ShowHelp  bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:    themes.Default,
		Width:    120,
		Height:   32,
		ShowHelp: true,
	}
}

// WithGenerator enables on-demand narratives in the detail pane.
func WithGenerator(g *narrative.Generator) Option {
	return func(c *Config) {
		c.Generator = g
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithHelp shows or hides the help footer.
func WithHelp(show bool) Option {
	return func(c *Config) {
		c.ShowHelp = show
	}
}
