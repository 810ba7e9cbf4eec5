package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 8*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 2*time.Hour, cfg.DraftTTL)
	assert.Equal(t, 24*time.Hour, cfg.AlertDismissTTL)
	assert.Equal(t, 10*time.Minute, cfg.ReportCacheTTL)
	assert.Equal(t, 30, cfg.ExpiryWindowDays)
	assert.Equal(t, "#2563eb", cfg.ExportThemeColor)
	assert.Equal(t, "id", cfg.ExportLocale)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DRAFT_TTL", "45m")
	t.Setenv("EXPIRY_WINDOW_DAYS", "14")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 45*time.Minute, cfg.DraftTTL)
	assert.Equal(t, 14, cfg.ExpiryWindowDays)
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRejectsEmptyWindow(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("EXPIRY_WINDOW_DAYS", "0")
	_, err := LoadConfig()
	assert.Error(t, err)
}
