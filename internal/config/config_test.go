package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Config_FileIsRead(t *testing.T) {
	assert := assert.New(t)

	cfg, err := Load("../../configs/config.yaml")
	require.NoError(t, err)

	assert.Equal(LevelInfo, cfg.Logger.LogLevel)
	assert.Equal("stealth", cfg.Provider.Mode)
	assert.Equal(30*time.Second, cfg.Provider.Timeout)
	assert.Equal(60*time.Second, cfg.Provider.ProxyCooldown)
	assert.Equal(7, cfg.Scrape.PostedWithinDays)
	assert.Equal([]string{"translation", "experience", "languages", "education", "keywords"}, cfg.AI.Features)
	assert.False(cfg.AI.Enabled)
}

func Test_Config_DefaultsWithoutFile(t *testing.T) {
	assert := assert.New(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal("job_room", cfg.Provider.Name)
	assert.Equal("https://www.job-room.ch", cfg.Provider.BaseURL)
	assert.Equal(3, cfg.Provider.MaxRetries)
	assert.Equal("swiss_jobs.db", cfg.DB.ConnectionString)
	assert.Equal(30, cfg.DB.RetentionDays)
	assert.Equal(60, cfg.Scrape.PostedWithinDays)
}

func Test_Config_EnvironmentOverrideWorksCorrect(t *testing.T) {
	assert := assert.New(t)

	t.Setenv("SCRAPER_MODE", "aggressive")
	t.Setenv("PROVIDER_TIMEOUT", "5s")
	t.Setenv("PROXIES", "http://p1:8080,http://p2:8080")
	t.Setenv("ROTATE_PROXY_ON_RATE_LIMIT", "true")
	t.Setenv("AI_ENABLED", "true")
	t.Setenv("AI_KEY", "overrideKey")
	t.Setenv("AI_MODEL", "super_duper_model")
	t.Setenv("AI_MAX_REQUESTS_PER_MINUTE", "88")
	t.Setenv("DB_CONNECTION_STRING", "newConnectionString")
	t.Setenv("SCRAPE_SCHEDULE", "@hourly")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load("../../configs/config.yaml")
	require.NoError(t, err)

	assert.Equal("aggressive", cfg.Provider.Mode)
	assert.Equal(5*time.Second, cfg.Provider.Timeout)
	assert.Equal([]string{"http://p1:8080", "http://p2:8080"}, cfg.Provider.Proxies)
	assert.True(cfg.Provider.RotateProxyOnRateLimit)
	assert.True(cfg.AI.Enabled)
	assert.Equal("overrideKey", cfg.AI.Key)
	assert.Equal("super_duper_model", cfg.AI.Model)
	assert.Equal(float32(88), cfg.AI.MaxRequestsPerMinute)
	assert.Equal("newConnectionString", cfg.DB.ConnectionString)
	assert.Equal("@hourly", cfg.Scrape.Schedule)
	assert.Equal(LevelDebug, cfg.Logger.LogLevel)
}

func Test_Config_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown mode", env: map[string]string{"SCRAPER_MODE": "turbo"}},
		{name: "ai without key", env: map[string]string{"AI_ENABLED": "true"}},
		{name: "bad schedule", env: map[string]string{"SCRAPE_SCHEDULE": "sometimes"}},
		{name: "page size too large", env: map[string]string{"SCRAPE_PAGE_SIZE": "500"}},
		{name: "unknown log level", env: map[string]string{"LOG_LEVEL": "LOUD"}},
		{name: "posted within more than a year", env: map[string]string{"SCRAPE_POSTED_WITHIN_DAYS": "366"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			assert.Error(t, err)
		})
	}
}

func Test_Config_PostedWithinUpToAYear(t *testing.T) {
	t.Setenv("SCRAPE_POSTED_WITHIN_DAYS", "365")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 365, cfg.Scrape.PostedWithinDays)
}

func Test_Config_MalformedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("provider: [unclosed"), 0o600))

	_, err := Load(file)
	assert.Error(t, err)
}
