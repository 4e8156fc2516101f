package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, int64(42), cfg.MockSeed)
	assert.Equal(t, 12, cfg.MockMonths)
	assert.Empty(t, cfg.YouTubeAPIKey)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RETRY_ATTEMPTS", "5")
	t.Setenv("HTTP_TIMEOUT", "10s")
	t.Setenv("MOCK_MONTHS", "3")
	t.Setenv("YOUTUBE_API_KEY", "yt-key")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5, cfg.RetryAttempts)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 3, cfg.MockMonths)
	assert.Equal(t, "yt-key", cfg.YouTubeAPIKey)
}
