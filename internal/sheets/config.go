// Package sheets publishes collection-priority reports to Google Sheets.
package sheets

import (
	"fmt"
	"time"
	_ "time/tzdata" // embedded zone database

	"github.com/Veraticus/edrs/internal/common"
)

// Config holds the configuration for the Google Sheets writer. Exactly one
// of the OAuth2 triple (ClientID, ClientSecret, RefreshToken) or
// ServiceAccountPath must be set.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	// SpreadsheetID selects an existing spreadsheet; empty creates one
	// named SpreadsheetName.
	SpreadsheetID   string
	SpreadsheetName string
	// TimeZone is an IANA zone name applied to created spreadsheets.
	TimeZone         string
	BatchSize        int
	RetryAttempts    int
	RetryDelay       time.Duration
	EnableFormatting bool
}

// DefaultSpreadsheetName names spreadsheets created without an explicit name.
const DefaultSpreadsheetName = "EDRS Collection Priorities"

// DefaultTimeZone is the zone of the collection desk.
const DefaultTimeZone = "Asia/Jakarta"

// DefaultConfig returns a Config with every setting but the credentials.
func DefaultConfig() Config {
	return Config{
		EnableFormatting: true,
		SpreadsheetName:  DefaultSpreadsheetName,
		TimeZone:         DefaultTimeZone,
		BatchSize:        1000,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
	}
}

// HasOAuth reports whether the full OAuth2 triple is present.
func (c *Config) HasOAuth() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// Validate checks credentials and limits. Missing credentials wrap
// common.ErrMissingConfig; every other problem wraps common.ErrInvalidConfig.
func (c *Config) Validate() error {
	hasServiceAccount := c.ServiceAccountPath != ""

	switch {
	case !c.HasOAuth() && !hasServiceAccount:
		return fmt.Errorf("no authentication method configured: %w", common.ErrMissingConfig)
	case c.HasOAuth() && hasServiceAccount:
		return fmt.Errorf("multiple authentication methods configured; use either OAuth2 or service account: %w", common.ErrInvalidConfig)
	}

	if c.SpreadsheetID == "" && c.SpreadsheetName == "" {
		return fmt.Errorf("spreadsheet id or name is required: %w", common.ErrInvalidConfig)
	}
	if c.TimeZone != "" {
		if _, err := time.LoadLocation(c.TimeZone); err != nil {
			return fmt.Errorf("time zone %q: %w", c.TimeZone, common.ErrInvalidConfig)
		}
	}

	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive: %w", common.ErrInvalidConfig)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("retry attempts cannot be negative: %w", common.ErrInvalidConfig)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay cannot be negative: %w", common.ErrInvalidConfig)
	}

	return nil
}
