package config

import (
	"testing"
	"time"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"APP_ENV", "PORT", "MONGODB_URI", "MONGODB_DB", "STORAGE_DRIVER",
	"JWT_SECRET", "TOKEN_EXPIRY", "APP_URL", "ALLOWED_ORIGINS",
	"SMTP_HOST", "SMTP_PORT", "SMTP_SENDER", "SMTP_PASSWORD",
	"REDIS_ADDR", "REDIS_PASSWORD", "CACHE_TTL",
	"IMPORT_BATCH_SIZE", "IMPORT_TIMEOUT", "IMPORT_MAX_BYTES",
	"IMPORT_DEFAULT_STATUS", "ENGLISH_IMPORT_DEFAULT_STATUS",
	"NOTIFICATION_RETENTION", "DIGEST_SCHEDULE", "LOG_LEVEL",
}

// clearEnv blanks every key LoadConfig reads; empty means "use default".
func clearEnv(t *testing.T) {
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg := LoadConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mongo", cfg.StorageDriver)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, 50, cfg.ImportBatchSize)
	assert.Equal(t, 2*time.Minute, cfg.ImportTimeout)
	assert.Equal(t, int64(10<<20), cfg.ImportMaxBytes)
	assert.Equal(t, models.StatusDisapproved, cfg.ImportDefault(models.TaxonomyDefault))
	assert.Equal(t, models.StatusApproved, cfg.ImportDefault(models.TaxonomyEnglish))
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("IMPORT_BATCH_SIZE", "10")
	t.Setenv("IMPORT_DEFAULT_STATUS", "pending")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("TOKEN_EXPIRY", "not-a-duration")

	cfg := LoadConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "memory", cfg.StorageDriver)
	assert.Equal(t, 10, cfg.ImportBatchSize)
	assert.Equal(t, models.StatusPending, cfg.ImportDefaultStatus)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenExpiry)
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	t.Run("placeholder secret in production", func(t *testing.T) {
		cfg := LoadConfig()
		cfg.Env = "production"
		assert.Error(t, cfg.Validate())

		cfg.JWTSecret = "a-real-secret"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown import status", func(t *testing.T) {
		cfg := LoadConfig()
		cfg.ImportDefaultStatus = "active"
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown storage driver", func(t *testing.T) {
		cfg := LoadConfig()
		cfg.StorageDriver = "postgres"
		assert.Error(t, cfg.Validate())
	})
}
