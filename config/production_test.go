// Package config provides configuration management and environment variable handling for the application
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProductionConfig(t *testing.T) {
	t.Setenv("IP_HASH_SECRET", "test-secret")
	t.Setenv("EMAIL_USE_MOCK", "true")

	t.Run("Defaults", func(t *testing.T) {
		cfg, err := LoadProductionConfig()
		require.NoError(t, err)

		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "redis", cfg.Cache.Provider)
		assert.Equal(t, 5, cfg.AntiSpam.SpamScoreThreshold)
		assert.Equal(t, 3, cfg.AntiSpam.RateLimitCount)
		assert.Equal(t, 10*time.Minute, cfg.AntiSpam.RateLimitWindow)
		assert.Equal(t, 60*time.Second, cfg.AntiSpam.EmailCooldown)
		assert.Equal(t, 24*time.Hour, cfg.AntiSpam.ConfirmTokenTTL)
		assert.Equal(t, "https://calendly.com/villellijulian/30min", cfg.Links.CalendlyBaseURL)
		assert.Contains(t, cfg.Links.WhatsAppTemplate, "{name}")
		assert.Equal(t, "stdout", cfg.Logging.Output)
		assert.True(t, cfg.Metrics.Enabled)
	})

	t.Run("EnvironmentOverrides", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "9000")
		t.Setenv("SPAM_SCORE_THRESHOLD", "8")
		t.Setenv("EMAIL_CONFIRM_TOKEN_TTL", "48h")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

		cfg, err := LoadProductionConfig()
		require.NoError(t, err)

		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, 8, cfg.AntiSpam.SpamScoreThreshold)
		assert.Equal(t, 48*time.Hour, cfg.AntiSpam.ConfirmTokenTTL)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
	})

	t.Run("InvalidValuesFallBackToDefaults", func(t *testing.T) {
		t.Setenv("DB_PORT", "not-a-number")
		t.Setenv("EMAIL_COOLDOWN", "soon")

		cfg, err := LoadProductionConfig()
		require.NoError(t, err)

		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, 60*time.Second, cfg.AntiSpam.EmailCooldown)
	})
}

func TestValidateProductionConfig(t *testing.T) {
	valid := func() *ProductionConfig {
		return &ProductionConfig{
			Database: DatabaseConfig{Host: "localhost", Port: 5432, Name: "villex_leads", User: "postgres"},
			Server:   ServerConfig{Port: 8080, ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second},
			Email:    EmailConfig{UseMock: true},
			Cache:    CacheConfig{Provider: "memory"},
			Links:    LinksConfig{CalendlyBaseURL: "https://calendly.com/x", FrontendURL: "https://villex.com.ar"},
			AntiSpam: AntiSpamConfig{
				IPHashSecret:       "secret",
				SpamScoreThreshold: 5,
				RateLimitCount:     3,
				ConfirmTokenTTL:    24 * time.Hour,
			},
		}
	}

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, ValidateProductionConfig(valid()))
	})

	t.Run("MissingIPHashSecret", func(t *testing.T) {
		cfg := valid()
		cfg.AntiSpam.IPHashSecret = ""
		err := ValidateProductionConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "IP_HASH_SECRET")
	})

	t.Run("RealEmailProviderNeedsCredentials", func(t *testing.T) {
		cfg := valid()
		cfg.Email.UseMock = false
		err := ValidateProductionConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EMAIL_HOST")
	})

	t.Run("UnknownCacheProvider", func(t *testing.T) {
		cfg := valid()
		cfg.Cache.Provider = "memcached"
		err := ValidateProductionConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CACHE_PROVIDER")
	})

	t.Run("MissingFrontendURL", func(t *testing.T) {
		cfg := valid()
		cfg.Links.FrontendURL = ""
		err := ValidateProductionConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "FRONTEND_URL")
	})
}
