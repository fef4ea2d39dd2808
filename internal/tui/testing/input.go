// Package testing drives the viewer model with synthetic terminal input.
package testing

import (
	tea "github.com/charmbracelet/bubbletea"
)

// KeyPress is typed text, delivered as one rune message.
func KeyPress(text string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)}
}

// Special keys.
func KeyDown() tea.KeyMsg  { return tea.KeyMsg{Type: tea.KeyDown} }
func KeyEnter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }
func KeyEsc() tea.KeyMsg   { return tea.KeyMsg{Type: tea.KeyEsc} }
func KeyCtrlC() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyCtrlC} }

// WindowSize is a terminal resize.
func WindowSize(width, height int) tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: width, Height: height}
}

// InputSequence is an ordered script of messages.
type InputSequence struct {
	msgs []tea.Msg
}

// NewInputSequence starts a script with msgs.
func NewInputSequence(msgs ...tea.Msg) *InputSequence {
	return &InputSequence{msgs: msgs}
}

// Add appends msg.
func (s *InputSequence) Add(msg tea.Msg) *InputSequence {
	s.msgs = append(s.msgs, msg)
	return s
}

// Type appends one key message per rune of text.
func (s *InputSequence) Type(text string) *InputSequence {
	for _, r := range text {
		s.msgs = append(s.msgs, KeyPress(string(r)))
	}
	return s
}

// Apply runs the script through m.Update and returns the final model with
// every non-nil command produced along the way. Commands are not executed.
func (s *InputSequence) Apply(m tea.Model) (tea.Model, []tea.Cmd) {
	var cmds []tea.Cmd
	for _, msg := range s.msgs {
		var cmd tea.Cmd
		if m, cmd = m.Update(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, cmds
}
