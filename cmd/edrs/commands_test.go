package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/edrs/internal/common"
	"github.com/Veraticus/edrs/internal/model"
	"github.com/Veraticus/edrs/internal/narrative"
	"github.com/Veraticus/edrs/internal/pipeline"
	"github.com/Veraticus/edrs/internal/report"
	"github.com/Veraticus/edrs/internal/service"
	"github.com/Veraticus/edrs/internal/sheets"
	"github.com/Veraticus/edrs/internal/testutil"
)

func readCSV(t *testing.T, out string) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestScore(t *testing.T) {
	env := newTestEnv(t)
	file := env.scenarioFile(t)

	out, err := env.run(t, "score", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Collection priorities (4 of 4 accounts)")
	assert.Contains(t, out, "Very High")
	assert.Contains(t, out, "80,000")
}

func TestScore_Formats(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantIDs []string
	}{
		{name: "priority order", args: nil, wantIDs: []string{"2", "3", "1", "4"}},
		{name: "top", args: []string{"--top", "2"}, wantIDs: []string{"2", "3"}},
		{name: "bucket filter", args: []string{"--bucket", "very low"}, wantIDs: []string{"1", "4"}},
		{name: "repeated bucket", args: []string{"--bucket", "high", "--bucket", "very_high"}, wantIDs: []string{"2", "3"}},
		{name: "actionable", args: []string{"--actionable", "--top", "0"}, wantIDs: []string{"2", "3"}},
		{name: "empty bucket", args: []string{"--bucket", "med"}, wantIDs: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			file := env.scenarioFile(t)

			args := append([]string{"score", "--file", file, "--format", "csv"}, tt.args...)
			out, err := env.run(t, args...)
			require.NoError(t, err)

			records := readCSV(t, out)
			require.NotEmpty(t, records)
			assert.Equal(t, model.ColID, records[0][0])

			var ids []string
			for _, rec := range records[1:] {
				ids = append(ids, rec[0])
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestScore_JSON(t *testing.T) {
	env := newTestEnv(t)
	file := env.scenarioFile(t)

	out, err := env.run(t, "score", "--file", file, "--format", "json", "--top", "1")
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.InDelta(t, 2, rows[0]["ID"], 0)
	assert.Equal(t, "Very High", rows[0]["bucket"])
}

func TestScore_Summary(t *testing.T) {
	env := newTestEnv(t)
	file := env.scenarioFile(t)

	out, err := env.run(t, "score", "--file", file, "--summary", "--format", "csv")
	require.NoError(t, err)

	records := readCSV(t, out)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"Very High", "High", "Very Low"}, []string{records[1][0], records[2][0], records[3][0]})
	assert.Equal(t, "2", records[3][1])

	out, err = env.run(t, "score", "--file", file, "--summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Bucket summary")
}

func TestScore_InvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "format", args: []string{"--format", "xml"}, want: "unknown --format"},
		{name: "bucket", args: []string{"--bucket", "urgent"}, want: "invalid --bucket"},
		{name: "top", args: []string{"--top", "-1"}, want: "--top must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			file := env.scenarioFile(t)

			_, err := env.run(t, append([]string{"score", "--file", file}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			var userErr *common.UserError
			assert.ErrorAs(t, err, &userErr)
		})
	}
}

func TestScore_NoInput(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "score")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Contains(t, err.Error(), "edrs load")
}

func TestScore_SchemaError(t *testing.T) {
	env := newTestEnv(t)
	file := testutil.WriteCSV(t, env.dir, "broken.csv", testutil.NewPortfolio().WithoutLabel().Add(
		testutil.Row{ID: 1, Limit: 1000},
	).Build())

	_, err := env.run(t, "score", "--file", file)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSchema)
	assert.Contains(t, err.Error(), "cannot score")
}

func TestLoad(t *testing.T) {
	env := newTestEnv(t)
	file := env.scenarioFile(t)

	out, err := env.run(t, "load", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 4 accounts")
	assert.FileExists(t, filepath.Join(env.dir, "data", "latest_data.csv"))

	// Later commands default to the saved snapshot.
	out, err = env.run(t, "score", "--format", "csv", "--top", "1")
	require.NoError(t, err)
	records := readCSV(t, out)
	require.Len(t, records, 2)
	assert.Equal(t, "2", records[1][0])
}

func TestLoad_Rejected(t *testing.T) {
	env := newTestEnv(t)

	txt := filepath.Join(env.dir, "portfolio.txt")
	require.NoError(t, os.WriteFile(txt, []byte("ID\n1\n"), 0o600))

	_, err := env.run(t, "load", txt)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSchema)

	broken := testutil.WriteCSV(t, env.dir, "broken.csv", testutil.NewPortfolio().WithoutLabel().Add(
		testutil.Row{ID: 1, Limit: 1000},
	).Build())
	_, err = env.run(t, "load", broken)
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(env.dir, "data", "latest_data.csv"), "invalid snapshots are not kept")

	_, err = env.run(t, "load")
	require.Error(t, err)
}

func TestExplain(t *testing.T) {
	env := newTestEnv(t)
	file := env.scenarioFile(t)

	out, err := env.run(t, "explain", "--file", file, "--id", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Account 2")
	assert.Contains(t, out, "Score breakdown")
	assert.Contains(t, out, "Insight")
	assert.NotContains(t, out, "Conclusion")
}

func TestExplain_Narrate(t *testing.T) {
	env := newTestEnv(t)
	file := env.scenarioFile(t)

	out, err := env.run(t, "explain", "--file", file, "--id", "3", "--narrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Conclusion (fallback)")
	assert.FileExists(t, filepath.Join(env.dir, "data", "edrs.db"))
}

func TestExplain_Errors(t *testing.T) {
	env := newTestEnv(t)
	file := env.scenarioFile(t)

	_, err := env.run(t, "explain", "--file", file, "--id", "99")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Contains(t, err.Error(), "account 99 is not in the portfolio")

	_, err = env.run(t, "explain", "--file", file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id")
}

func TestNarrate(t *testing.T) {
	env := newTestEnv(t)
	file := env.scenarioFile(t)

	out, err := env.run(t, "narrate", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Account 2")
	assert.Contains(t, out, "Account 3")
	assert.NotContains(t, out, "Account 1 ")
	assert.Contains(t, out, "Narrated 2 accounts: 0 generated, 2 fallback, 0 cached")

	out, err = env.run(t, "narrate", "--file", file, "--quiet")
	require.NoError(t, err)
	assert.NotContains(t, out, "Account 2")
	assert.Contains(t, out, "Narrated 2 accounts: 0 generated, 0 fallback, 2 cached")

	out, err = env.run(t, "narrate", "--file", file, "--quiet", "--refresh", "--bucket", "very low")
	require.NoError(t, err)
	assert.Contains(t, out, "Narrated 2 accounts: 0 generated, 2 fallback, 0 cached")
}

func TestNarrate_NothingToDo(t *testing.T) {
	env := newTestEnv(t)
	file := env.scenarioFile(t)

	out, err := env.run(t, "narrate", "--file", file, "--bucket", "low")
	require.NoError(t, err)
	assert.Contains(t, out, "No accounts to narrate.")
}

func TestCache(t *testing.T) {
	env := newTestEnv(t)
	file := env.scenarioFile(t)

	_, err := env.run(t, "narrate", "--file", file, "--quiet")
	require.NoError(t, err)

	out, err := env.run(t, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Entries:   2")
	assert.Contains(t, out, "Fallback:  2")
	assert.Contains(t, out, narrative.DefaultPromptVersion)

	env.stdin = "n\n"
	out, err = env.run(t, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache left unchanged.")

	env.stdin = "yes\n"
	out, err = env.run(t, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 2 cached narratives")

	env.stdin = ""
	out, err = env.run(t, "cache", "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 0 cached narratives")

	out, err = env.run(t, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Entries:   0")
}

func TestMigrate(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "migrate", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 0")
	assert.Contains(t, out, "2 migration(s) pending")

	out, err = env.run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Database at version 2 (was 0)")

	out, err = env.run(t, "migrate", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 2")
	assert.Contains(t, out, "up to date")
}

func TestReport(t *testing.T) {
	env := newTestEnv(t)
	file := env.scenarioFile(t)
	path := filepath.Join(env.dir, "out", "report.xlsx")

	out, err := env.run(t, "report", "--file", file, "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "4 accounts, 1 Very High, 1 High")
	assert.Contains(t, out, path)
	assert.FileExists(t, path)
}

func TestReport_SheetsNotConfigured(t *testing.T) {
	env := newTestEnv(t)
	file := env.scenarioFile(t)
	for _, name := range []string{
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "GOOGLE_SHEETS_CLIENT_ID",
		"GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_REFRESH_TOKEN",
	} {
		t.Setenv(name, "")
	}

	_, err := env.run(t, "report", "--file", file, "--sheets")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Google Sheets is not configured")
}

func TestWriteReport(t *testing.T) {
	p, err := pipeline.Run(testutil.Scenario(), pipeline.DefaultConfig())
	require.NoError(t, err)
	r := report.New(p, time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC))

	first, second := sheets.NewMockWriter(), sheets.NewMockWriter()
	require.NoError(t, writeReport(context.Background(), r, []service.ReportWriter{first, second}))
	first.AssertWriteCalled(t, 1)
	second.AssertWriteCalled(t, 1)
	assert.Equal(t, r.ID, first.GetWriteCalls()[0].Report.ID)

	failing, after := sheets.NewMockWriter(), sheets.NewMockWriter()
	failing.SetWriteError(errors.New("quota exceeded"))
	err = writeReport(context.Background(), r, []service.ReportWriter{failing, after})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	after.AssertWriteCalled(t, 0)
}

func TestDefaultReportName(t *testing.T) {
	name := defaultReportName(time.Date(2025, 3, 1, 9, 5, 0, 0, time.UTC))
	assert.Equal(t, "EDRS_Report_20250301_0905.xlsx", name)
}

func TestAuthSheets_MissingCredentials(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "")
	t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "")

	_, err := env.run(t, "auth", "sheets", "--client-id", "only-the-id")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestSheetsCredentials(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "env-id")
	t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "env-secret")

	cmd := authSheetsCmd()
	id, secret := sheetsCredentials(cmd)
	assert.Equal(t, "env-id", id)
	assert.Equal(t, "env-secret", secret)

	viper.Set("sheets.client_id", "config-id")
	require.NoError(t, cmd.Flags().Set("client-secret", "flag-secret"))
	id, secret = sheetsCredentials(cmd)
	assert.Equal(t, "config-id", id)
	assert.Equal(t, "flag-secret", secret)
}
