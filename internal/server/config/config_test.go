package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 3*time.Second, cfg.ConversionDelay)
	assert.Equal(t, 25, cfg.WelcomeBonus)
	assert.Equal(t, 5, cfg.DailyBonus)
	assert.Equal(t, 15, cfg.ReferralBonus)
	assert.Equal(t, 1, cfg.GuestMonthlyLimit)
	assert.Equal(t, 5, cfg.MaxPagesPerFile)
}

func TestParseJson_Overlay(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	body := map[string]any{
		"endpoint_addr_http":             ":9090",
		"secret_key":                     "s3cr3t",
		"conversion_delay":               "1s",
		"welcome_bonus":                  50,
		"access_token_validity_duration": "30m",
	}
	b, err := json.Marshal(body)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, b, 0o600))

	os.Args = []string{"testbin", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, ":9090", cfg.EndpointAddrHTTP)
	assert.Equal(t, "s3cr3t", cfg.SecretKey)
	assert.Equal(t, time.Second, cfg.ConversionDelay)
	assert.Equal(t, 50, cfg.WelcomeBonus)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenValidityDuration)
	// untouched fields keep their defaults
	assert.Equal(t, 15, cfg.ReferralBonus)
}

func TestParseFlags_Overlay(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-a", ":7070", "-d", "memory", "-t", "5", "-y", "0"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":7070", cfg.EndpointAddrHTTP)
	assert.Equal(t, "memory", cfg.DatabaseDSN)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, time.Duration(0), cfg.ConversionDelay)
}
