package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"partsstore/internal/config"
)

func TestDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DSN", "LOG_LEVEL", "SLOT_BACKEND", "LOGIN_RATE_MAX", "SESSION_COOKIE_SECURE"} {
		t.Setenv(k, "")
	}
	cfg := config.Load()
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "partsstore.db", cfg.DBDSN)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, config.SlotSQL, cfg.SlotBackend)
	assert.Equal(t, 5, cfg.LoginRateMax)
	assert.False(t, cfg.SessionCookieSecure)
}

func TestOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SLOT_BACKEND", "file")
	t.Setenv("SLOT_DIR", "/tmp/slots")
	t.Setenv("API_RATE_MAX", "200")
	t.Setenv("LOGIN_RATE_MAX", "not-a-number")
	t.Setenv("SESSION_COOKIE_SECURE", "true")

	cfg := config.Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, config.SlotFile, cfg.SlotBackend)
	assert.Equal(t, "/tmp/slots", cfg.SlotDir)
	assert.Equal(t, 200, cfg.APIRateMax)
	assert.Equal(t, 5, cfg.LoginRateMax)
	assert.True(t, cfg.SessionCookieSecure)
}

func TestUnknownSlotBackendFallsBack(t *testing.T) {
	t.Setenv("SLOT_BACKEND", "redis")
	assert.Equal(t, config.SlotSQL, config.Load().SlotBackend)
}
