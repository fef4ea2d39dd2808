package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/edrs/internal/common"
	"github.com/Veraticus/edrs/internal/report"
	"github.com/Veraticus/edrs/internal/service"
)

// Writer implements service.ReportWriter for Google Sheets. Each report tab
// becomes a sheet of the same name.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

var _ service.ReportWriter = (*Writer)(nil)

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return newWriterWithService(srv, config, logger), nil
}

func newWriterWithService(srv *sheets.Service, config Config, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	return &Writer{
		config:  config,
		service: srv,
		logger:  logger,
	}
}

// Write implements the ReportWriter interface.
func (w *Writer) Write(ctx context.Context, r *service.Report) error {
	w.logger.Info("starting sheets export",
		"report_id", r.ID,
		"accounts", len(r.All))

	retryOpts := common.RetryOptions{
		Logger:       w.logger,
		Operation:    "sheets export",
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	tabs := report.Tabs(r)
	names := make([]string, len(tabs))
	for i, tab := range tabs {
		names[i] = tab.Name
	}

	spreadsheetID, sheetIDs, err := w.getOrCreateSpreadsheet(ctx, names)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	for _, tab := range tabs {
		values := report.Grid(r, tab)

		if err := w.clearSheet(ctx, spreadsheetID, tab.Name); err != nil {
			return fmt.Errorf("failed to clear %s: %w", tab.Name, err)
		}

		err := common.WithRetry(ctx, func() error {
			return w.writeData(ctx, spreadsheetID, tab.Name, values)
		}, retryOpts)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", tab.Name, err)
		}

		if w.config.EnableFormatting {
			sheetID := sheetIDs[tab.Name]
			err = common.WithRetry(ctx, func() error {
				return w.applyFormatting(ctx, spreadsheetID, sheetID, len(tab.Header), len(values))
			}, retryOpts)
			if err != nil {
				// Unformatted data is still a usable report.
				w.logger.Warn("failed to apply formatting", "tab", tab.Name, "error", err)
			}
		}
	}

	w.logger.Info("sheets export completed",
		"spreadsheet_id", spreadsheetID,
		"tabs", len(tabs))

	return nil
}

// tokenSource authenticates as the service account when a key file is
// configured, otherwise as the user behind the OAuth refresh token.
func tokenSource(ctx context.Context, config Config) (oauth2.TokenSource, error) {
	if config.ServiceAccountPath == "" {
		token := &oauth2.Token{RefreshToken: config.RefreshToken, TokenType: "Bearer"}
		return oauthConfig(config.ClientID, config.ClientSecret, "").TokenSource(ctx, token), nil
	}

	key, err := os.ReadFile(config.ServiceAccountPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account key file: %w", err)
	}
	jwt, err := google.JWTConfigFromJSON(key, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account key: %w", err)
	}
	return jwt.TokenSource(ctx), nil
}

func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	ts, err := tokenSource(ctx, config)
	if err != nil {
		return nil, err
	}
	srv, err := sheets.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

// getOrCreateSpreadsheet resolves the target spreadsheet and makes sure it
// has a sheet for every tab. It returns the numeric sheet IDs by title.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context, tabs []string) (string, map[string]int64, error) {
	if w.config.SpreadsheetID == "" {
		return w.createSpreadsheet(ctx, tabs)
	}

	existing, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return "", nil, fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
	}

	ids := sheetIDs(existing.Sheets)
	var requests []*sheets.Request
	for _, tab := range tabs {
		if _, ok := ids[tab]; ok {
			continue
		}
		requests = append(requests, &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: tab},
			},
		})
	}
	if len(requests) == 0 {
		return w.config.SpreadsheetID, ids, nil
	}

	resp, err := w.service.Spreadsheets.BatchUpdate(w.config.SpreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return "", nil, fmt.Errorf("unable to add sheets: %w", err)
	}
	for _, reply := range resp.Replies {
		if reply.AddSheet != nil && reply.AddSheet.Properties != nil {
			ids[reply.AddSheet.Properties.Title] = reply.AddSheet.Properties.SheetId
		}
	}

	w.logger.Debug("added missing sheets", "count", len(requests))
	return w.config.SpreadsheetID, ids, nil
}

func (w *Writer) createSpreadsheet(ctx context.Context, tabs []string) (string, map[string]int64, error) {
	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
	}
	for _, tab := range tabs {
		spreadsheet.Sheets = append(spreadsheet.Sheets, &sheets.Sheet{
			Properties: &sheets.SheetProperties{Title: tab},
		})
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", nil, fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	return created.SpreadsheetId, sheetIDs(created.Sheets), nil
}

func sheetIDs(list []*sheets.Sheet) map[string]int64 {
	ids := make(map[string]int64, len(list))
	for _, s := range list {
		if s.Properties != nil {
			ids[s.Properties.Title] = s.Properties.SheetId
		}
	}
	return ids
}

// clearSheet clears all data from one tab.
func (w *Writer) clearSheet(ctx context.Context, spreadsheetID, tab string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, a1(tab, "A:Z"), &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// writeData writes the values to one tab.
func (w *Writer) writeData(ctx context.Context, spreadsheetID, tab string, values [][]any) error {
	// Write in batches to avoid API limits
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))

		batch := values[i:end]
		valueRange := &sheets.ValueRange{
			Values: batch,
		}

		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, a1(tab, fmt.Sprintf("A%d", i+1)), valueRange).
			ValueInputOption("RAW").
			Context(ctx).
			Do()

		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "tab", tab, "start_row", i+1, "rows", len(batch))
	}

	return nil
}

const formatFields = "userEnteredFormat(backgroundColor,textFormat)"

var (
	titleFill = &sheets.Color{Red: 0.776, Green: 0.878, Blue: 0.706}
	labelFill = &sheets.Color{Red: 0.95, Green: 0.95, Blue: 0.95}
)

// titleColumns is how far the merged title row spans.
const titleColumns = 5

func cells(sheetID int64, rows, cols [2]int64) *sheets.GridRange {
	return &sheets.GridRange{
		SheetId:          sheetID,
		StartRowIndex:    rows[0],
		EndRowIndex:      rows[1],
		StartColumnIndex: cols[0],
		EndColumnIndex:   cols[1],
	}
}

func paint(r *sheets.GridRange, fill *sheets.Color, text *sheets.TextFormat) *sheets.Request {
	return &sheets.Request{RepeatCell: &sheets.RepeatCellRequest{
		Range:  r,
		Cell:   &sheets.CellData{UserEnteredFormat: &sheets.CellFormat{BackgroundColor: fill, TextFormat: text}},
		Fields: formatFields,
	}}
}

// formatRequests styles one tab laid out by report.Grid: a merged title
// row, shaded metadata labels, a bold frozen header and fitted columns.
func formatRequests(sheetID int64, columns int) []*sheets.Request {
	header := int64(report.HeaderRow - 1)
	width := int64(columns)
	title := cells(sheetID, [2]int64{0, 1}, [2]int64{0, titleColumns})

	return []*sheets.Request{
		{MergeCells: &sheets.MergeCellsRequest{MergeType: "MERGE_ALL", Range: title}},
		paint(title, titleFill, &sheets.TextFormat{Bold: true, FontSize: 14}),
		paint(cells(sheetID, [2]int64{int64(report.MetaRow - 1), header - 1}, [2]int64{0, 1}), labelFill, &sheets.TextFormat{Bold: true}),
		paint(cells(sheetID, [2]int64{header, header + 1}, [2]int64{0, width}), labelFill, &sheets.TextFormat{Bold: true}),
		{AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
			Dimensions: &sheets.DimensionRange{SheetId: sheetID, Dimension: "COLUMNS", EndIndex: width},
		}},
		{UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: &sheets.SheetProperties{
				SheetId:        sheetID,
				GridProperties: &sheets.GridProperties{FrozenRowCount: header + 1},
			},
			Fields: "gridProperties.frozenRowCount",
		}},
	}
}

func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, sheetID int64, columns, totalRows int) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{Requests: formatRequests(sheetID, columns)}
	if _, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
		return err
	}
	w.logger.Debug("formatted tab", "sheet_id", sheetID, "rows", totalRows)
	return nil
}

// a1 qualifies a range with a quoted sheet title.
func a1(tab, rng string) string {
	return fmt.Sprintf("'%s'!%s", tab, rng)
}
