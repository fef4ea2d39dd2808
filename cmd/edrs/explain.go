package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/edrs/internal/cli"
	"github.com/Veraticus/edrs/internal/common"
	"github.com/Veraticus/edrs/internal/narrative"
)

func explainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Explain one account's score",
		Long: `Show an account's payment history, the rules that fired, its score
and bucket, and the generated insight.

With --narrate the legal-collection conclusion is generated as well
(or read from the narrative cache).`,
		RunE: runExplain,
	}

	cmd.Flags().String("file", "", "input CSV or Excel file (default: saved upload, then sample data)")
	cmd.Flags().Int("id", 0, "account ID (required)")
	cmd.Flags().Bool("narrate", false, "generate the legal-collection conclusion")
	cmd.Flags().Bool("refresh", false, "ignore the narrative cache (implies --narrate)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func runExplain(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	file, _ := cmd.Flags().GetString("file")
	id, _ := cmd.Flags().GetInt("id")
	narrate, _ := cmd.Flags().GetBool("narrate")
	refresh, _ := cmd.Flags().GetBool("refresh")

	p, err := loadPortfolio(ctx, file)
	if err != nil {
		return err
	}

	s, err := p.Find(id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewUserError(fmt.Sprintf("account %d is not in the portfolio", id), err)
		}
		return err
	}

	req := request(p, s)
	d := cli.AccountDetail{
		Account: s,
		Layout:  p.Layout,
		Insight: narrative.Insight(s, req.Percentile),
	}

	if narrate || refresh {
		gen, cleanup, err := newGenerator(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := gen.Generate(ctx, req, refresh)
		if err != nil {
			return fmt.Errorf("failed to generate narrative: %w", err)
		}
		d.Insight = res.Insight
		d.Conclusion = res.Conclusion
		if res.Narrative != nil {
			d.Source = res.Narrative.Source
		}
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderAccount(d))
	return err
}
