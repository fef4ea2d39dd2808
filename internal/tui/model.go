// Package tui is an interactive viewer for a scored portfolio: a ranked
// table with bucket filtering, jump to account ID and a detail pane.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/edrs/internal/cli"
	"github.com/Veraticus/edrs/internal/model"
	"github.com/Veraticus/edrs/internal/narrative"
	"github.com/Veraticus/edrs/internal/pipeline"
	"github.com/Veraticus/edrs/internal/priority"
	"github.com/Veraticus/edrs/internal/tui/themes"
)

// State represents the current state of the TUI.
type State int

const (
	StateList State = iota
	StateJump
	StateDetail
)

// chrome is the number of lines around the table: title, status, help and
// the table header with its border.
const chrome = 5

// Model holds the viewer state.
type Model struct {
	ctx        context.Context
	portfolio  *pipeline.Portfolio
	filter     *model.Bucket
	narratives map[int]*narrative.Result
	pending    map[int]bool
	theme      themes.Theme
	config     Config
	keymap     KeyMap
	status     statusMsg
	help       help.Model
	jump       textinput.Model
	detail     viewport.Model
	table      table.Model
	rows       []model.ScoredAccount
	detailID   int
	width      int
	height     int
	state      State
	quitting   bool
}

// New creates a viewer for p. The context bounds narrative generation.
func New(ctx context.Context, p *pipeline.Portfolio, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	keymap := DefaultKeyMap()

	tbl := table.New(
		table.WithColumns(columns(cfg.Width)),
		table.WithFocused(true),
		table.WithKeyMap(table.KeyMap{
			LineUp:       keymap.Up,
			LineDown:     keymap.Down,
			PageUp:       keymap.PageUp,
			PageDown:     keymap.PageDown,
			HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
			HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
			GotoTop:      keymap.Home,
			GotoBottom:   keymap.End,
		}),
	)
	styles := table.DefaultStyles()
	styles.Header = cfg.Theme.Header
	styles.Selected = cfg.Theme.Selected
	tbl.SetStyles(styles)

	jump := textinput.New()
	jump.Prompt = "Account ID: "
	jump.Placeholder = "e.g. 1042"
	jump.CharLimit = 12

	m := Model{
		ctx:        ctx,
		portfolio:  p,
		narratives: make(map[int]*narrative.Result),
		pending:    make(map[int]bool),
		theme:      cfg.Theme,
		config:     cfg,
		keymap:     keymap,
		help:       help.New(),
		jump:       jump,
		detail:     viewport.New(cfg.Width, cfg.Height-3),
		table:      tbl,
		width:      cfg.Width,
		height:     cfg.Height,
		state:      StateList,
	}
	m.applyFilter()
	m.resize()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case narrativeMsg:
		return m.handleNarrative(msg), nil

	case statusMsg:
		m.status = msg
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.ForceQuit) {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.state {
		case StateJump:
			return m.updateJump(msg)
		case StateDetail:
			return m.updateDetail(msg)
		default:
			return m.updateList(msg)
		}
	}

	// Non-key messages such as cursor blinks go to the focused component.
	var cmd tea.Cmd
	switch m.state {
	case StateJump:
		m.jump, cmd = m.jump.Update(msg)
	case StateDetail:
		m.detail, cmd = m.detail.Update(msg)
	default:
		m.table, cmd = m.table.Update(msg)
	}
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil

	case key.Matches(msg, m.keymap.Select):
		if s, ok := m.selected(); ok {
			m.openDetail(s)
		}
		return m, nil

	case key.Matches(msg, m.keymap.Jump):
		m.state = StateJump
		m.jump.SetValue("")
		return m, m.jump.Focus()

	case key.Matches(msg, m.keymap.Filter):
		m.cycleFilter()
		return m, nil

	case key.Matches(msg, m.keymap.All):
		m.filter = nil
		m.applyFilter()
		return m, nil

	case key.Matches(msg, m.keymap.Narrate):
		if s, ok := m.selected(); ok {
			return m, m.narrate(s, false)
		}
		return m, nil
	}

	m.status = statusMsg{}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.state = StateList
		m.jump.Blur()
		return m, nil

	case tea.KeyEnter:
		m.state = StateList
		m.jump.Blur()
		input := strings.TrimSpace(m.jump.Value())
		id, err := strconv.Atoi(input)
		if err != nil {
			m.status = statusMsg{text: fmt.Sprintf("Not an account ID: %q", input), level: statusWarning}
			return m, nil
		}
		if err := m.jumpTo(id); err != nil {
			m.status = statusMsg{text: err.Error(), level: statusWarning}
			return m, nil
		}
		m.status = statusMsg{text: fmt.Sprintf("Account %d", id), level: statusInfo}
		return m, nil
	}

	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	return m, cmd
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Back):
		m.state = StateList
		return m, nil

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil

	case key.Matches(msg, m.keymap.Narrate), key.Matches(msg, m.keymap.Refresh):
		s, err := m.portfolio.Find(m.detailID)
		if err != nil {
			return m, nil
		}
		refresh := key.Matches(msg, m.keymap.Refresh)
		cmd := m.narrate(s, refresh)
		m.refreshDetail()
		return m, cmd
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m Model) handleNarrative(msg narrativeMsg) Model {
	delete(m.pending, msg.accountID)
	if msg.err != nil {
		m.status = statusMsg{
			text:  fmt.Sprintf("Narrative for account %d failed: %v", msg.accountID, msg.err),
			level: statusError,
		}
	} else {
		m.narratives[msg.accountID] = msg.result
		text := fmt.Sprintf("Narrative ready for account %d", msg.accountID)
		level := statusSuccess
		switch {
		case msg.result.Cached:
			text += " (cached)"
		case msg.result.Narrative != nil && msg.result.Narrative.Source == model.SourceFallback:
			text += " (fallback)"
			level = statusWarning
		}
		m.status = statusMsg{text: text, level: level}
	}
	if m.state == StateDetail && m.detailID == msg.accountID {
		m.refreshDetail()
	}
	return m
}

// selected returns the account under the table cursor.
func (m Model) selected() (model.ScoredAccount, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return model.ScoredAccount{}, false
	}
	return m.rows[i], true
}

// cycleFilter steps through all buckets, then back to no filter.
func (m *Model) cycleFilter() {
	buckets := model.AllBuckets()
	switch {
	case m.filter == nil:
		b := buckets[0]
		m.filter = &b
	case int(*m.filter) == len(buckets)-1:
		m.filter = nil
	default:
		b := *m.filter + 1
		m.filter = &b
	}
	m.applyFilter()
}

// applyFilter rebuilds the table from the ranked view.
func (m *Model) applyFilter() {
	m.rows = m.portfolio.All
	if m.filter != nil {
		m.rows = priority.FilterBuckets(m.portfolio.All, *m.filter)
	}
	m.table.SetRows(tableRows(m.rows))
	m.table.SetCursor(0)
}

// jumpTo moves the cursor to an account. An account hidden by the filter
// clears the filter first.
func (m *Model) jumpTo(id int) error {
	if _, err := m.portfolio.Find(id); err != nil {
		return fmt.Errorf("account %d not found", id)
	}
	if i := indexOf(m.rows, id); i >= 0 {
		m.table.SetCursor(i)
		return nil
	}
	m.filter = nil
	m.applyFilter()
	m.table.SetCursor(indexOf(m.rows, id))
	return nil
}

func indexOf(rows []model.ScoredAccount, id int) int {
	for i, s := range rows {
		if s.ID() == id {
			return i
		}
	}
	return -1
}

func (m *Model) openDetail(s model.ScoredAccount) {
	m.state = StateDetail
	m.detailID = s.ID()
	m.refreshDetail()
	m.detail.GotoTop()
}

func (m *Model) refreshDetail() {
	s, err := m.portfolio.Find(m.detailID)
	if err != nil {
		return
	}
	d := cli.AccountDetail{
		Account: s,
		Layout:  m.portfolio.Layout,
		Insight: narrative.Insight(s, m.percentile(s.ID())),
	}
	switch res, ok := m.narratives[s.ID()]; {
	case m.pending[s.ID()]:
		d.Conclusion = "Generating..."
	case ok:
		d.Conclusion = res.Conclusion
		if res.Narrative != nil {
			d.Source = res.Narrative.Source
		}
	}
	m.detail.SetContent(cli.RenderAccount(d))
}

func (m Model) percentile(id int) float64 {
	pct, err := m.portfolio.LimitPercentile(id)
	if err != nil {
		return 0
	}
	return pct
}

// resize fits the table and detail pane to the window.
func (m *Model) resize() {
	helpLines := 1
	if m.help.ShowAll {
		helpLines = len(m.keymap.FullHelp()[0])
	}
	m.help.Width = m.width
	m.table.SetColumns(columns(m.width))
	m.table.SetWidth(m.width)
	m.table.SetHeight(max(m.height-chrome-helpLines+1, 3))
	m.detail.Width = m.width
	m.detail.Height = max(m.height-3-helpLines+1, 3)
}

// State returns the current state.
func (m Model) State() State {
	return m.state
}
