package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TOP_N", "")
	t.Setenv("WORKERS", "")
	t.Setenv("TELEGRAM_CHAT_IDS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.TopN)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 20, cfg.SMAPeriod)
	assert.Equal(t, 14, cfg.RSIPeriod)
	assert.Equal(t, 26, cfg.MACDSlowPeriod)
	assert.Equal(t, 5*time.Minute, cfg.VolatilityWindow)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.SendReport)
	assert.Empty(t, cfg.TelegramChatIDs)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TOP_N", "10")
	t.Setenv("WORKERS", "8")
	t.Setenv("REQUEST_TIMEOUT", "15")
	t.Setenv("VOLATILITY_WINDOW", "90s")
	t.Setenv("TELEGRAM_CHAT_IDS", "123, -456")
	t.Setenv("SEND_REPORT", "no")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.TopN)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 90*time.Second, cfg.VolatilityWindow)
	assert.Equal(t, []int64{123, -456}, cfg.TelegramChatIDs)
	assert.False(t, cfg.SendReport)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"too many workers", "WORKERS", "64"},
		{"bad log level", "LOG_LEVEL", "loud"},
		{"bad chat id", "TELEGRAM_CHAT_IDS", "abc"},
		{"slow not above fast", "MACD_SLOW_PERIOD", "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
