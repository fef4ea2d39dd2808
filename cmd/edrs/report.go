package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/edrs/internal/cli"
	"github.com/Veraticus/edrs/internal/common"
	"github.com/Veraticus/edrs/internal/config"
	"github.com/Veraticus/edrs/internal/report"
	"github.com/Veraticus/edrs/internal/service"
	"github.com/Veraticus/edrs/internal/sheets"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the collection-priority report",
		Long: `Write the collection-priority report: every account in priority order,
the top Very High and High accounts, and the per-bucket summary.

The report goes to an Excel workbook (--out), a Google spreadsheet
(--sheets, see 'edrs auth sheets'), or both. Without either flag a
workbook named after the current time is written to the working directory.`,
		RunE: runReport,
	}

	cmd.Flags().String("file", "", "input CSV or Excel file (default: saved upload, then sample data)")
	cmd.Flags().String("out", "", "Excel workbook path")
	cmd.Flags().Bool("sheets", false, "publish to Google Sheets")

	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	file, _ := cmd.Flags().GetString("file")
	out, _ := cmd.Flags().GetString("out")
	toSheets, _ := cmd.Flags().GetBool("sheets")

	now := time.Now()
	if out == "" && !toSheets {
		out = defaultReportName(now)
	}

	var writers []service.ReportWriter
	if out != "" {
		writers = append(writers, report.NewExcelWriter(config.ExpandPath(out), slog.Default()))
	}
	if toSheets {
		sheetsConfig, err := config.LoadSheetsConfig()
		if err != nil {
			return common.NewUserError("Google Sheets is not configured; run 'edrs auth sheets' or set sheets.service_account_path", err)
		}
		w, err := sheets.NewWriter(ctx, *sheetsConfig, slog.Default())
		if err != nil {
			return fmt.Errorf("failed to create sheets writer: %w", err)
		}
		writers = append(writers, w)
	}

	p, err := loadPortfolio(ctx, file)
	if err != nil {
		return err
	}

	r := report.New(p, now)
	if err := writeReport(ctx, r, writers); err != nil {
		return err
	}

	msg := fmt.Sprintf("Report %s: %d accounts, %d Very High, %d High", r.ID, len(r.All), len(r.TopVeryHigh), len(r.TopHigh))
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(msg))
	if out != "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Workbook: "+out))
	}
	return nil
}

// writeReport publishes r to every writer in turn, stopping at the first
// failure.
func writeReport(ctx context.Context, r *service.Report, writers []service.ReportWriter) error {
	for _, w := range writers {
		if err := w.Write(ctx, r); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}

func defaultReportName(now time.Time) string {
	return fmt.Sprintf("EDRS_Report_%s.xlsx", now.Format("20060102_1504"))
}
