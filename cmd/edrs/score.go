package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Veraticus/edrs/internal/cli"
	"github.com/Veraticus/edrs/internal/common"
	"github.com/Veraticus/edrs/internal/model"
	"github.com/Veraticus/edrs/internal/pipeline"
	"github.com/Veraticus/edrs/internal/priority"
)

const (
	formatTable = "table"
	formatCSV   = "csv"
	formatJSON  = "json"
)

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score and rank the portfolio",
		Long: `Score every account, assign a risk bucket and list accounts in
collection-priority order.

Examples:
  edrs score --top 20
  edrs score --bucket "very high" --bucket high --format csv > priorities.csv
  edrs score --summary`,
		RunE: runScore,
	}

	cmd.Flags().String("file", "", "input CSV or Excel file (default: saved upload, then sample data)")
	cmd.Flags().Int("top", 20, "number of accounts to show (0 for all)")
	cmd.Flags().StringSlice("bucket", nil, "only show these buckets (repeatable)")
	cmd.Flags().Bool("actionable", false, "only show Very High and High accounts")
	cmd.Flags().String("format", formatTable, "output format (table, csv, json)")
	cmd.Flags().Bool("summary", false, "show the per-bucket summary instead of accounts")

	return cmd
}

// scoreOptions selects a slice of the ranked view.
type scoreOptions struct {
	buckets    []model.Bucket
	top        int
	actionable bool
}

func (o scoreOptions) view(p *pipeline.Portfolio) []model.ScoredAccount {
	view := p.All
	if o.actionable {
		view = p.Top
	}
	if len(o.buckets) > 0 {
		view = priority.FilterBuckets(view, o.buckets...)
	}
	if o.top > 0 {
		view = priority.Head(view, o.top)
	}
	return view
}

func runScore(cmd *cobra.Command, _ []string) error {
	file, _ := cmd.Flags().GetString("file")
	top, _ := cmd.Flags().GetInt("top")
	bucketNames, _ := cmd.Flags().GetStringSlice("bucket")
	actionable, _ := cmd.Flags().GetBool("actionable")
	format, _ := cmd.Flags().GetString("format")
	summary, _ := cmd.Flags().GetBool("summary")

	if top < 0 {
		return common.NewUserError("--top must not be negative", common.ErrInvalidConfig)
	}
	switch format {
	case formatTable, formatCSV, formatJSON:
	default:
		return common.NewUserError(fmt.Sprintf("unknown --format %q (table, csv, json)", format), common.ErrInvalidConfig)
	}

	buckets, err := parseBuckets(bucketNames)
	if err != nil {
		return err
	}

	p, err := loadPortfolio(cmd.Context(), file)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if summary {
		return writeSummary(out, priority.Summarize(p.All), format)
	}

	opts := scoreOptions{buckets: buckets, top: top, actionable: actionable}
	return writeAccounts(out, opts.view(p), p.Len(), format)
}

func writeAccounts(w io.Writer, view []model.ScoredAccount, total int, format string) error {
	switch format {
	case formatCSV:
		return cli.WriteCSV(w, view)
	case formatJSON:
		return cli.WriteJSON(w, view)
	}

	_, _ = fmt.Fprintln(w, cli.FormatTitle(fmt.Sprintf("Collection priorities (%d of %d accounts)", len(view), total)))
	_, _ = fmt.Fprintln(w)
	_, err := fmt.Fprintln(w, cli.RenderRanked(view))
	return err
}

func writeSummary(w io.Writer, summary []priority.BucketSummary, format string) error {
	if format == formatTable {
		_, _ = fmt.Fprintln(w, cli.FormatTitle("Bucket summary"))
		_, _ = fmt.Fprintln(w)
		_, err := fmt.Fprintln(w, cli.RenderSummary(summary))
		return err
	}
	if format == formatJSON {
		return cli.WriteSummaryJSON(w, summary)
	}
	return cli.WriteSummaryCSV(w, summary)
}
