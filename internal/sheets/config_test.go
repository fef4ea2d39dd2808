package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/edrs/internal/common"
)

func oauthConfigFixture() Config {
	c := DefaultConfig()
	c.ClientID = "test-client"
	c.ClientSecret = "test-secret"
	c.RefreshToken = "test-token"
	return c
}

func serviceAccountFixture() Config {
	c := DefaultConfig()
	c.ServiceAccountPath = "/path/to/key.json"
	return c
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		wantErr error
		modify  func(c *Config)
		base    func() Config
		name    string
		errMsg  string
	}{
		{name: "valid oauth config", base: oauthConfigFixture},
		{name: "valid service account config", base: serviceAccountFixture},
		{
			name:    "missing auth",
			base:    DefaultConfig,
			wantErr: common.ErrMissingConfig,
			errMsg:  "no authentication method configured",
		},
		{
			name:    "partial oauth credentials",
			base:    oauthConfigFixture,
			modify:  func(c *Config) { c.ClientSecret = "" },
			wantErr: common.ErrMissingConfig,
		},
		{
			name:    "multiple auth methods",
			base:    oauthConfigFixture,
			modify:  func(c *Config) { c.ServiceAccountPath = "/path/to/key.json" },
			wantErr: common.ErrInvalidConfig,
			errMsg:  "multiple authentication methods configured",
		},
		{
			name:    "no spreadsheet",
			base:    serviceAccountFixture,
			modify:  func(c *Config) { c.SpreadsheetName = "" },
			wantErr: common.ErrInvalidConfig,
			errMsg:  "spreadsheet id or name is required",
		},
		{
			name:   "existing spreadsheet without a name",
			base:   serviceAccountFixture,
			modify: func(c *Config) { c.SpreadsheetName, c.SpreadsheetID = "", "abc123" },
		},
		{
			name:    "unknown time zone",
			base:    serviceAccountFixture,
			modify:  func(c *Config) { c.TimeZone = "Mars/Olympus_Mons" },
			wantErr: common.ErrInvalidConfig,
			errMsg:  "Mars/Olympus_Mons",
		},
		{
			name:    "invalid batch size",
			base:    oauthConfigFixture,
			modify:  func(c *Config) { c.BatchSize = 0 },
			wantErr: common.ErrInvalidConfig,
			errMsg:  "batch size must be positive",
		},
		{
			name:    "negative retry attempts",
			base:    oauthConfigFixture,
			modify:  func(c *Config) { c.RetryAttempts = -1 },
			wantErr: common.ErrInvalidConfig,
			errMsg:  "retry attempts cannot be negative",
		},
		{
			name:   "zero retries are valid",
			base:   serviceAccountFixture,
			modify: func(c *Config) { c.RetryAttempts, c.RetryDelay = 0, 0 },
		},
		{
			name:    "negative retry delay",
			base:    serviceAccountFixture,
			modify:  func(c *Config) { c.RetryDelay = -time.Second },
			wantErr: common.ErrInvalidConfig,
			errMsg:  "retry delay cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := tt.base()
			if tt.modify != nil {
				tt.modify(&config)
			}

			err := config.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.True(t, config.EnableFormatting)
	assert.Equal(t, DefaultTimeZone, config.TimeZone)
	assert.Equal(t, DefaultSpreadsheetName, config.SpreadsheetName)
	assert.Equal(t, 1000, config.BatchSize)
	assert.Equal(t, 3, config.RetryAttempts)
	assert.Equal(t, time.Second, config.RetryDelay)
	assert.False(t, config.HasOAuth())
}
