package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/Veraticus/edrs/internal/sheets"
)

// sheetsSetting binds one sheets.Config field to its viper key and its
// GOOGLE_SHEETS_* fallback.
type sheetsSetting struct {
	field  func(c *sheets.Config) *string
	key    string
	env    string
	isPath bool
}

var sheetsSettings = []sheetsSetting{
	{key: "sheets.service_account_path", env: "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", isPath: true,
		field: func(c *sheets.Config) *string { return &c.ServiceAccountPath }},
	{key: "sheets.client_id", env: "GOOGLE_SHEETS_CLIENT_ID",
		field: func(c *sheets.Config) *string { return &c.ClientID }},
	{key: "sheets.client_secret", env: "GOOGLE_SHEETS_CLIENT_SECRET",
		field: func(c *sheets.Config) *string { return &c.ClientSecret }},
	{key: "sheets.refresh_token", env: "GOOGLE_SHEETS_REFRESH_TOKEN",
		field: func(c *sheets.Config) *string { return &c.RefreshToken }},
	{key: "sheets.spreadsheet_id", env: "GOOGLE_SHEETS_SPREADSHEET_ID",
		field: func(c *sheets.Config) *string { return &c.SpreadsheetID }},
	{key: "sheets.spreadsheet_name", env: "GOOGLE_SHEETS_SPREADSHEET_NAME",
		field: func(c *sheets.Config) *string { return &c.SpreadsheetName }},
	{key: "sheets.time_zone", env: "GOOGLE_SHEETS_TIME_ZONE",
		field: func(c *sheets.Config) *string { return &c.TimeZone }},
}

// LoadSheetsConfig loads Google Sheets configuration. Each setting comes
// from viper (config file or EDRS_ env vars), then the matching
// GOOGLE_SHEETS_* variable, then sheets.DefaultConfig.
func LoadSheetsConfig() (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	for _, s := range sheetsSettings {
		v := viper.GetString(s.key)
		if v == "" {
			v = os.Getenv(s.env)
		}
		if v == "" {
			continue
		}
		if s.isPath {
			v = ExpandPath(v)
		}
		*s.field(&config) = v
	}

	// A token saved by 'edrs auth sheets' stands in for a missing refresh token.
	if config.RefreshToken == "" {
		if path := viper.GetString("sheets.token_file"); path != "" {
			token, err := sheets.LoadToken(ExpandPath(path))
			if err != nil {
				return nil, fmt.Errorf("failed to read sheets token: %w", err)
			}
			config.RefreshToken = token.RefreshToken
		}
	}

	if n := viper.GetInt("sheets.batch_size"); n > 0 {
		config.BatchSize = n
	}
	if viper.IsSet("sheets.formatting") {
		config.EnableFormatting = viper.GetBool("sheets.formatting")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
