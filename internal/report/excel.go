package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/edrs/internal/service"
)

const (
	minColWidth = 10
	maxColWidth = 40
	// titleSpan is the number of columns the title cell is merged across.
	titleSpan = 5
)

// ExcelWriter saves reports as XLSX workbooks.
type ExcelWriter struct {
	logger *slog.Logger
	path   string
}

var _ service.ReportWriter = (*ExcelWriter)(nil)

// NewExcelWriter creates a writer targeting path.
func NewExcelWriter(path string, logger *slog.Logger) *ExcelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelWriter{path: path, logger: logger}
}

// Write renders the report and saves it, replacing any existing file.
func (w *ExcelWriter) Write(ctx context.Context, r *service.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := Render(r)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			w.logger.Warn("failed to close workbook", "error", cerr)
		}
	}()

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	w.logger.Info("wrote excel report",
		"path", w.path,
		"report_id", r.ID,
		"accounts", len(r.All))
	return nil
}

// WriteTo streams the rendered workbook to out.
func WriteTo(out io.Writer, r *service.Report) error {
	f, err := Render(r)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck // in-memory workbook

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

type styles struct {
	title, label, text, header, cell int
}

// Render builds the workbook in memory. Callers must Close it.
func Render(r *service.Report) (*excelize.File, error) {
	if r == nil {
		return nil, fmt.Errorf("render report: nil report")
	}

	f := excelize.NewFile()
	st, err := newStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	for i, tab := range Tabs(r) {
		if i == 0 {
			// Reuse the workbook's initial sheet so it stays active.
			if err := f.SetSheetName(f.GetSheetName(0), tab.Name); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("failed to name sheet %s: %w", tab.Name, err)
			}
		} else if _, err := f.NewSheet(tab.Name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to add sheet %s: %w", tab.Name, err)
		}
		if err := writeTab(f, st, r, tab); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("sheet %s: %w", tab.Name, err)
		}
	}

	return f, nil
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	grey := excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F2F2F2"}}

	defs := []struct {
		id    *int
		style *excelize.Style
	}{
		{&st.title, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Family: "Calibri", Size: 14},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"C6E0B4"}},
			Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		}},
		{&st.label, &excelize.Style{
			Font: &excelize.Font{Bold: true, Family: "Calibri"},
			Fill: grey,
		}},
		{&st.text, &excelize.Style{
			Font: &excelize.Font{Family: "Calibri", Size: 11},
		}},
		{&st.header, &excelize.Style{
			Font:   &excelize.Font{Bold: true, Family: "Calibri"},
			Fill:   grey,
			Border: border,
		}},
		{&st.cell, &excelize.Style{
			Font:   &excelize.Font{Family: "Calibri", Size: 11},
			Border: border,
		}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return st, fmt.Errorf("failed to create style: %w", err)
		}
		*d.id = id
	}
	return st, nil
}

func writeTab(f *excelize.File, st styles, r *service.Report, tab Tab) error {
	sheet := tab.Name

	lastTitleCol, _ := excelize.ColumnNumberToName(titleSpan)
	if err := f.MergeCell(sheet, cell(1, TitleRow), fmt.Sprintf("%s%d", lastTitleCol, TitleRow)); err != nil {
		return fmt.Errorf("failed to merge title: %w", err)
	}
	if err := setStyled(f, sheet, 1, TitleRow, tab.Title, st.title); err != nil {
		return err
	}

	for i, m := range Meta(r) {
		if err := setStyled(f, sheet, 1, MetaRow+i, m.Label, st.label); err != nil {
			return err
		}
		if err := setStyled(f, sheet, 2, MetaRow+i, m.Value, st.text); err != nil {
			return err
		}
	}

	widths := make([][]int, len(tab.Header))
	for j, h := range tab.Header {
		if err := setStyled(f, sheet, j+1, HeaderRow, h, st.header); err != nil {
			return err
		}
		widths[j] = make([]int, 0, len(tab.Rows))
	}

	for i, row := range tab.Rows {
		rowNum := HeaderRow + 1 + i
		if err := f.SetSheetRow(sheet, cell(1, rowNum), &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", rowNum, err)
		}
		for j, v := range row {
			if j < len(widths) {
				widths[j] = append(widths[j], len(fmt.Sprint(v)))
			}
		}
	}
	if len(tab.Rows) > 0 {
		last := cell(len(tab.Header), HeaderRow+len(tab.Rows))
		if err := f.SetCellStyle(sheet, cell(1, HeaderRow+1), last, st.cell); err != nil {
			return fmt.Errorf("failed to style rows: %w", err)
		}
	}

	for j, lens := range widths {
		col, _ := excelize.ColumnNumberToName(j + 1)
		if err := f.SetColWidth(sheet, col, col, columnWidth(lens)); err != nil {
			return fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      HeaderRow,
		TopLeftCell: cell(1, HeaderRow+1),
		ActivePane:  "bottomLeft",
	})
}

func setStyled(f *excelize.File, sheet string, col, row int, value any, style int) error {
	c := cell(col, row)
	if err := f.SetCellValue(sheet, c, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", c, err)
	}
	if err := f.SetCellStyle(sheet, c, c, style); err != nil {
		return fmt.Errorf("failed to style %s: %w", c, err)
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// columnWidth sizes a column to the 90th percentile of its value lengths
// plus padding, clamped to [minColWidth, maxColWidth].
func columnWidth(lens []int) float64 {
	if len(lens) == 0 {
		return minColWidth
	}
	sorted := append([]int(nil), lens...)
	sort.Ints(sorted)
	w := int(quantile(sorted, 0.9)) + 2
	return float64(min(max(minColWidth, w), maxColWidth))
}

// quantile interpolates linearly between closest ranks.
func quantile(sorted []int, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := pos - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[lo+1]-sorted[lo])
}
