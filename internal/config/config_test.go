package config

import (
	"testing"
	"time"

	"stockboard/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "BACKEND_URL", "BACKEND_TIMEOUT", "PIE_DEMO_FALLBACK", "API_PORT", "MAX_UPLOAD_MB", "RISK_FREE_RATE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://127.0.0.1:5000", cfg.Backend.URL)
	assert.Zero(t, cfg.Backend.Timeout)
	assert.False(t, cfg.Dashboard.PieDemoFallback)
	assert.Equal(t, "5000", cfg.API.Port)
	assert.Equal(t, 50, cfg.API.MaxUploadMB)
	assert.InDelta(t, 0.01, cfg.API.RiskFreeRate, 1e-12)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://analysis.local:9000/")
	t.Setenv("BACKEND_TIMEOUT", "15s")
	t.Setenv("PIE_DEMO_FALLBACK", "true")
	t.Setenv("MAX_UPLOAD_MB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://analysis.local:9000", cfg.Backend.URL)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.True(t, cfg.Dashboard.PieDemoFallback)
	assert.Equal(t, 50, cfg.API.MaxUploadMB)
}

func TestLoadRejectsRelativeBackendURL(t *testing.T) {
	t.Setenv("BACKEND_URL", "localhost-without-scheme")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
