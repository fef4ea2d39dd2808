package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/edrs/internal/tui"
	"github.com/Veraticus/edrs/internal/tui/themes"
)

func viewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse the ranked portfolio interactively",
		Long: `Open an interactive viewer over the ranked portfolio.

Keys: ↑/↓ move, enter opens an account, / jumps to an account ID,
b cycles the bucket filter, a shows all buckets, n generates the
conclusion for an account, r regenerates it, ? shows help, q quits.`,
		RunE: runView,
	}

	cmd.Flags().String("file", "", "input CSV or Excel file (default: saved upload, then sample data)")
	cmd.Flags().String("theme", "", "color theme (default, catppuccin-mocha)")
	_ = viper.BindPFlag("tui.theme", cmd.Flags().Lookup("theme"))

	return cmd
}

func runView(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	file, _ := cmd.Flags().GetString("file")

	p, err := loadPortfolio(ctx, file)
	if err != nil {
		return err
	}

	gen, cleanup, err := newGenerator(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	return tui.Run(ctx, p,
		tui.WithGenerator(gen),
		tui.WithTheme(themes.GetTheme(viper.GetString("tui.theme"))),
	)
}
