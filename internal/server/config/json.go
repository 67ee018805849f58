package config

import (
	"encoding/json"
	"os"

	"github.com/statementkit/statementkit/internal/flagx"
	"github.com/statementkit/statementkit/internal/timex"
)

// JsonConfig is the intermediate DTO used only for reading JSON config files.
// Duration fields accept both strings ("3s") and integer nanoseconds.
// Pointer fields distinguish "absent" from zero so that an explicit 0 in the
// file still overrides a default.
type JsonConfig struct {
	EndpointAddrHTTP             string          `json:"endpoint_addr_http"`
	DatabaseDSN                  string          `json:"database_dsn"`
	SecretKey                    string          `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	ConversionDelay              *timex.Duration `json:"conversion_delay"`
	WelcomeBonus                 *int            `json:"welcome_bonus"`
	DailyBonus                   *int            `json:"daily_bonus"`
	ReferralBonus                *int            `json:"referral_bonus"`
	GuestMonthlyLimit            *int            `json:"guest_monthly_limit"`
	GuestPageLimit               *int            `json:"guest_page_limit"`
	MaxPagesPerFile              *int            `json:"max_pages_per_file"`
}

// parseJson overlays values from the JSON file named by -c/-config, if any.
// A missing flag means no file is loaded; an unreadable or malformed file
// panics, matching flag-parse failures.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.ConversionDelay != nil {
		config.ConversionDelay = c.ConversionDelay.Duration
	}
	if c.WelcomeBonus != nil {
		config.WelcomeBonus = *c.WelcomeBonus
	}
	if c.DailyBonus != nil {
		config.DailyBonus = *c.DailyBonus
	}
	if c.ReferralBonus != nil {
		config.ReferralBonus = *c.ReferralBonus
	}
	if c.GuestMonthlyLimit != nil {
		config.GuestMonthlyLimit = *c.GuestMonthlyLimit
	}
	if c.GuestPageLimit != nil {
		config.GuestPageLimit = *c.GuestPageLimit
	}
	if c.MaxPagesPerFile != nil {
		config.MaxPagesPerFile = *c.MaxPagesPerFile
	}
}
