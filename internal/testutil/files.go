package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/edrs/internal/table"
)

// WriteCSV writes tbl to dir/name as comma-separated values and returns the
// path.
func WriteCSV(t *testing.T, dir, name string, tbl table.Table) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path) //nolint:gosec // test fixture path
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(tbl.Columns); err != nil {
		t.Fatalf("failed to write header: %v", err)
	}
	if err := w.WriteAll(tbl.Rows); err != nil {
		t.Fatalf("failed to write rows: %v", err)
	}
	return path
}
