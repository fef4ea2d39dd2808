package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/edrs/internal/cli"
	"github.com/Veraticus/edrs/internal/common"
	"github.com/Veraticus/edrs/internal/config"
	"github.com/Veraticus/edrs/internal/loader"
	"github.com/Veraticus/edrs/internal/priority"
)

func loadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <file>",
		Short: "Save a portfolio snapshot as the default input",
		Long: `Copy a CSV or Excel portfolio snapshot into the data directory so later
commands use it without --file. The file is scored once to validate it;
a snapshot that fails validation is not kept.`,
		Args: cobra.ExactArgs(1),
		RunE: runLoad,
	}
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	src := args[0]

	if !loader.Supported(src) {
		return common.NewUserError(fmt.Sprintf("cannot load %s: expected .csv or .xlsx", src), common.ErrSchema)
	}

	// Validate before replacing the current snapshot.
	p, err := loadPortfolio(ctx, src)
	if err != nil {
		return err
	}

	dst, err := loader.NewStore(config.DataDir()).Save(src)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Loaded %d accounts into %s", p.Len(), dst)))
	_, _ = fmt.Fprintln(out)
	_, err = fmt.Fprintln(out, cli.RenderSummary(priority.Summarize(p.All)))
	return err
}
