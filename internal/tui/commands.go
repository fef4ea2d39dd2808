package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/edrs/internal/model"
	"github.com/Veraticus/edrs/internal/narrative"
)

// narrate generates the conclusion for s in the background. Without a
// generator it only reports that narratives are off.
func (m Model) narrate(s model.ScoredAccount, refresh bool) tea.Cmd {
	gen := m.config.Generator
	if gen == nil {
		return func() tea.Msg {
			return statusMsg{text: "Narratives are not configured", level: statusWarning}
		}
	}
	if m.pending[s.ID()] {
		return nil
	}
	m.pending[s.ID()] = true

	ctx := m.ctx
	req := narrative.Request{Account: s, Percentile: m.percentile(s.ID())}
	return func() tea.Msg {
		res, err := gen.Generate(ctx, req, refresh)
		return narrativeMsg{accountID: req.Account.ID(), result: res, err: err}
	}
}
