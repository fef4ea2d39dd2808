package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/edrs/internal/common"
	"github.com/Veraticus/edrs/internal/sheets"
)

var sheetsEnv = []string{
	"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH",
	"GOOGLE_SHEETS_CLIENT_ID",
	"GOOGLE_SHEETS_CLIENT_SECRET",
	"GOOGLE_SHEETS_REFRESH_TOKEN",
	"GOOGLE_SHEETS_SPREADSHEET_ID",
	"GOOGLE_SHEETS_SPREADSHEET_NAME",
	"GOOGLE_SHEETS_TIME_ZONE",
}

func isolate(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("HOME", "/home/analyst")
	t.Setenv("EDRS_TEST_DIR", "/srv/edrs")
	for _, name := range sheetsEnv {
		t.Setenv(name, "")
	}
}

func TestExpandPath(t *testing.T) {
	isolate(t)

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "~", want: "/home/analyst"},
		{in: "~/data/edrs.db", want: "/home/analyst/data/edrs.db"},
		{in: "$EDRS_TEST_DIR/cache.db", want: "/srv/edrs/cache.db"},
		{in: "/abs/path", want: "/abs/path"},
		{in: "relative/~/path", want: "relative/~/path"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestDataLocations(t *testing.T) {
	isolate(t)

	assert.Equal(t, "/home/analyst/.local/share/edrs", DataDir())
	assert.Equal(t, filepath.Join("/home/analyst/.local/share/edrs", DatabaseFile), DatabasePath())

	viper.Set("data.dir", "~/edrs-data")
	assert.Equal(t, "/home/analyst/edrs-data", DataDir())
	assert.Equal(t, "/home/analyst/edrs-data/edrs.db", DatabasePath())

	viper.Set("database.path", "$EDRS_TEST_DIR/narratives.db")
	assert.Equal(t, "/srv/edrs/narratives.db", DatabasePath())
}

func TestLoadSheetsConfig(t *testing.T) {
	tests := []struct {
		settings map[string]any
		env      map[string]string
		check    func(t *testing.T, c *sheets.Config)
		wantErr  error
		name     string
	}{
		{
			name: "service account from config",
			settings: map[string]any{
				"sheets.service_account_path": "~/keys/sa.json",
				"sheets.spreadsheet_id":       "sheet-123",
			},
			check: func(t *testing.T, c *sheets.Config) {
				t.Helper()
				assert.Equal(t, "/home/analyst/keys/sa.json", c.ServiceAccountPath)
				assert.Equal(t, "sheet-123", c.SpreadsheetID)
				assert.Equal(t, sheets.DefaultSpreadsheetName, c.SpreadsheetName)
			},
		},
		{
			name: "oauth from environment",
			env: map[string]string{
				"GOOGLE_SHEETS_CLIENT_ID":        "env-id",
				"GOOGLE_SHEETS_CLIENT_SECRET":    "env-secret",
				"GOOGLE_SHEETS_REFRESH_TOKEN":    "env-token",
				"GOOGLE_SHEETS_SPREADSHEET_NAME": "Desk A",
			},
			check: func(t *testing.T, c *sheets.Config) {
				t.Helper()
				assert.True(t, c.HasOAuth())
				assert.Equal(t, "Desk A", c.SpreadsheetName)
			},
		},
		{
			name: "config wins over environment",
			settings: map[string]any{
				"sheets.client_id":     "config-id",
				"sheets.client_secret": "config-secret",
				"sheets.refresh_token": "config-token",
				"sheets.time_zone":     "UTC",
				"sheets.batch_size":    250,
				"sheets.formatting":    false,
			},
			env: map[string]string{"GOOGLE_SHEETS_CLIENT_ID": "env-id"},
			check: func(t *testing.T, c *sheets.Config) {
				t.Helper()
				assert.Equal(t, "config-id", c.ClientID)
				assert.Equal(t, "UTC", c.TimeZone)
				assert.Equal(t, 250, c.BatchSize)
				assert.False(t, c.EnableFormatting)
			},
		},
		{
			name: "refresh token from saved token file",
			settings: map[string]any{
				"sheets.client_id":     "config-id",
				"sheets.client_secret": "config-secret",
				"sheets.token_file":    "testdata/sheets-token.json",
			},
			check: func(t *testing.T, c *sheets.Config) {
				t.Helper()
				assert.Equal(t, "saved-refresh", c.RefreshToken)
				assert.True(t, c.HasOAuth())
			},
		},
		{
			name:     "missing token file",
			settings: map[string]any{"sheets.token_file": "testdata/absent.json"},
			wantErr:  os.ErrNotExist,
		},
		{
			name:    "nothing configured",
			wantErr: common.ErrMissingConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.settings {
				viper.Set(k, v)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			c, err := LoadSheetsConfig()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}
