package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Veraticus/edrs/internal/cli"
	"github.com/Veraticus/edrs/internal/common"
	"github.com/Veraticus/edrs/internal/model"
	"github.com/Veraticus/edrs/internal/narrative"
)

func narrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "narrate",
		Short: "Generate legal-collection conclusions for priority accounts",
		Long: `Generate the legal-collection conclusion for the highest-priority
accounts and store it in the narrative cache.

By default the top Very High and High accounts are narrated. Conclusions
already cached for an unchanged insight are reused unless --refresh is set.
Interrupting keeps every finished conclusion in the cache.`,
		RunE: runNarrate,
	}

	cmd.Flags().String("file", "", "input CSV or Excel file (default: saved upload, then sample data)")
	cmd.Flags().Int("top", 20, "number of accounts to narrate (0 for all)")
	cmd.Flags().StringSlice("bucket", nil, "narrate these buckets instead of Very High and High (repeatable)")
	cmd.Flags().Bool("refresh", false, "regenerate even when a cached conclusion exists")
	cmd.Flags().Bool("quiet", false, "print only the tally, not each conclusion")

	return cmd
}

func runNarrate(cmd *cobra.Command, _ []string) error {
	file, _ := cmd.Flags().GetString("file")
	top, _ := cmd.Flags().GetInt("top")
	bucketNames, _ := cmd.Flags().GetStringSlice("bucket")
	refresh, _ := cmd.Flags().GetBool("refresh")
	quiet, _ := cmd.Flags().GetBool("quiet")

	if top < 0 {
		return common.NewUserError("--top must not be negative", common.ErrInvalidConfig)
	}
	buckets, err := parseBuckets(bucketNames)
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Narration",
		"Finished narratives are cached. Re-run edrs narrate to continue.")
	ctx := handler.Watch(cmd.Context())
	defer handler.Stop()

	p, err := loadPortfolio(ctx, file)
	if err != nil {
		return err
	}

	opts := scoreOptions{buckets: buckets, top: top, actionable: len(buckets) == 0}
	view := opts.view(p)
	out := cmd.OutOrStdout()
	if len(view) == 0 {
		_, _ = fmt.Fprintln(out, cli.FormatInfo("No accounts to narrate."))
		return nil
	}

	gen, cleanup, err := newGenerator(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	reqs := make([]narrative.Request, len(view))
	for i, s := range view {
		reqs[i] = request(p, s)
	}

	bar := cli.NewProgress(cmd.ErrOrStderr(), len(reqs), "Narrating")
	results, err := gen.GenerateBatch(ctx, reqs, refresh, bar.Func())
	if err != nil {
		if handler.Interrupted() || ctx.Err() != nil {
			return common.NewUserError(
				fmt.Sprintf("narration stopped after %d of %d accounts", bar.Current(), len(reqs)), err)
		}
		return fmt.Errorf("narration failed: %w", err)
	}
	bar.Finish()

	if !quiet {
		writeConclusions(out, view, results)
	}
	_, err = fmt.Fprintln(out, cli.FormatSuccess(tally(results)))
	return err
}

func writeConclusions(w io.Writer, view []model.ScoredAccount, results []*narrative.Result) {
	for i, res := range results {
		s := view[i]
		title := fmt.Sprintf("Account %d · %s · score %d", s.ID(), s.Bucket, s.Score)
		if res.Narrative != nil && res.Narrative.Source == model.SourceFallback {
			title += " (fallback)"
		}
		_, _ = fmt.Fprintln(w, cli.RenderBox(title, res.Conclusion))
	}
}

// tally summarizes where each conclusion came from.
func tally(results []*narrative.Result) string {
	var llmCount, fallback, cached int
	for _, res := range results {
		switch {
		case res.Cached:
			cached++
		case res.Narrative != nil && res.Narrative.Source == model.SourceFallback:
			fallback++
		default:
			llmCount++
		}
	}
	return fmt.Sprintf("Narrated %d accounts: %d generated, %d fallback, %d cached",
		len(results), llmCount, fallback, cached)
}
