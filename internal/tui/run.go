package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/edrs/internal/common"
	"github.com/Veraticus/edrs/internal/pipeline"
)

// Run shows the viewer until the user quits or ctx is canceled.
func Run(ctx context.Context, p *pipeline.Portfolio, opts ...Option) error {
	if p == nil || p.Len() == 0 {
		return common.ErrNoAccounts
	}

	program := tea.NewProgram(
		New(ctx, p, opts...),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)

	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
