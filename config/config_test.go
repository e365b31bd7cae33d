package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	keys := []string{
		"PANEL_API_URL",
		"PANEL_NEWS_URL",
		"PANEL_POLL_INTERVAL",
		"PANEL_HTTP_TIMEOUT",
		"PANEL_DB_PATH",
		"PANEL_LOG_FILE",
	}
	for _, k := range keys {
		os.Unsetenv(k)
	}

	cfg := Load()

	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	assert.Equal(t, "http://localhost:8000/api", cfg.NewsBaseURL)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.NotEmpty(t, cfg.DBPath)
	assert.NotEmpty(t, cfg.LogFile)
}

func TestLoad_Overrides(t *testing.T) {
	os.Setenv("PANEL_API_URL", "https://panel.example.com")
	os.Setenv("PANEL_POLL_INTERVAL", "10s")
	defer os.Unsetenv("PANEL_API_URL")
	defer os.Unsetenv("PANEL_POLL_INTERVAL")

	cfg := Load()

	assert.Equal(t, "https://panel.example.com", cfg.APIBaseURL)
	// News mount follows the API base unless set explicitly.
	assert.Equal(t, "https://panel.example.com/api", cfg.NewsBaseURL)
	assert.Equal(t, 10*time.Second, cfg.PollInterval)
}

func TestLoad_BareSecondsInterval(t *testing.T) {
	os.Setenv("PANEL_POLL_INTERVAL", "45")
	defer os.Unsetenv("PANEL_POLL_INTERVAL")

	cfg := Load()
	assert.Equal(t, 45*time.Second, cfg.PollInterval)
}
