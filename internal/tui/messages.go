package tui

import "github.com/Veraticus/edrs/internal/narrative"

// narrativeMsg carries a finished narrative for one account.
type narrativeMsg struct {
	err       error
	result    *narrative.Result
	accountID int
}

// statusMsg replaces the status line.
type statusMsg struct {
	text  string
	level statusLevel
}

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusSuccess
	statusWarning
	statusError
)
