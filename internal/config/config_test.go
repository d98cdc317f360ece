package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads config with defaults", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("REDIS_URL", "redis://localhost:6379")
		t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, 100, cfg.CreditPerRecord)
		assert.Equal(t, 60, cfg.AccessTokenTTLMinutes)
		assert.Equal(t, 90, cfg.RefreshTokenTTLDays)
	})

	t.Run("fails without required values", func(t *testing.T) {
		for _, key := range []string{"DATABASE_URL", "REDIS_URL", "JWT_SECRET"} {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Run("rejects short jwt secret", func(t *testing.T) {
		cfg := &Config{JWTSecret: "short", CreditPerRecord: 100}
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects non-positive credit rate", func(t *testing.T) {
		cfg := &Config{JWTSecret: "0123456789abcdef0123456789abcdef", CreditPerRecord: 0}
		assert.Error(t, cfg.Validate())
	})

	t.Run("accepts sane config", func(t *testing.T) {
		cfg := &Config{JWTSecret: "0123456789abcdef0123456789abcdef", CreditPerRecord: 100}
		assert.NoError(t, cfg.Validate())
	})
}

func TestConfig_Durations(t *testing.T) {
	cfg := &Config{
		AccessTokenTTLMinutes: 60,
		RefreshTokenTTLDays:   90,
	}
	assert.Equal(t, "1h0m0s", cfg.AccessTokenTTL().String())
	assert.Equal(t, "2160h0m0s", cfg.RefreshTokenTTL().String())
}
