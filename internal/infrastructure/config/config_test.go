package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"FUBA_APP_NAME":          os.Getenv("FUBA_APP_NAME"),
		"FUBA_APP_ENV":           os.Getenv("FUBA_APP_ENV"),
		"FUBA_APP_PORT":          os.Getenv("FUBA_APP_PORT"),
		"FUBA_DATABASE_HOST":     os.Getenv("FUBA_DATABASE_HOST"),
		"FUBA_DATABASE_PORT":     os.Getenv("FUBA_DATABASE_PORT"),
		"FUBA_DATABASE_USER":     os.Getenv("FUBA_DATABASE_USER"),
		"FUBA_DATABASE_PASSWORD": os.Getenv("FUBA_DATABASE_PASSWORD"),
		"FUBA_DATABASE_DBNAME":   os.Getenv("FUBA_DATABASE_DBNAME"),
		"FUBA_JWT_SECRET":        os.Getenv("FUBA_JWT_SECRET"),
		"FUBA_EMBED_SECRET":      os.Getenv("FUBA_EMBED_SECRET"),
		"FUBA_OPENAI_MODEL":      os.Getenv("FUBA_OPENAI_MODEL"),
		"FUBA_RATE_LIMIT_WINDOW": os.Getenv("FUBA_RATE_LIMIT_WINDOW"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "fub-assistant", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "fub_assistant", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
		assert.Equal(t, 128, cfg.OpenAI.MaxTokens)
		assert.InDelta(t, 0.6, cfg.OpenAI.Temperature, 0.001)
		assert.Equal(t, 10, cfg.RateLimit.AccountRequests)
		assert.Equal(t, 100, cfg.RateLimit.IPRequests)
		assert.True(t, cfg.RateLimit.Enabled)
		assert.Equal(t, "https://api.followupboss.com/v1", cfg.FUB.BaseURL)
	})

	t.Run("environment variables override defaults", func(t *testing.T) {
		clearEnv()
		os.Setenv("FUBA_APP_NAME", "assistant-test")
		os.Setenv("FUBA_DATABASE_HOST", "db.internal")
		os.Setenv("FUBA_OPENAI_MODEL", "gpt-4o")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "assistant-test", cfg.App.Name)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	})

	t.Run("production requires secrets", func(t *testing.T) {
		clearEnv()
		os.Setenv("FUBA_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})
}

func TestDatabaseConfigDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "app",
		Password: "p@ss w0rd",
		DBName:   "fub_assistant",
		SSLMode:  "disable",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "fub_assistant")
	assert.Contains(t, dsn, "sslmode=disable")
	// Password must be escaped, never raw
	assert.NotContains(t, dsn, "p@ss w0rd")
}

func TestRedisConfigAddr(t *testing.T) {
	r := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", r.Addr())
}
