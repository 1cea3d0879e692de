package cmd

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"HTTP_PORT", "LMS_TIMEOUT", "LMS_RETRY_ATTEMPTS", "LMS_RETRY_DELAY",
		"LMS_RETRY_SCHEDULE", "LMS_RETRY_MAX", "HANDOVER_SLA_MINUTES", "SNOWFLAKE_NODE", "REDIS_ADDR"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig(filepath.Join(t.TempDir(), "missing.env"), discard)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 30*time.Second, cfg.LMSTimeout)
	assert.Equal(t, 3, cfg.LMSRetryAttempts)
	assert.Equal(t, time.Second, cfg.LMSRetryDelay)
	assert.Equal(t, "*/30 * * * * *", cfg.LMSRetrySchedule)
	assert.Equal(t, 10, cfg.LMSRetryMax)
	assert.Equal(t, time.Hour, cfg.HandoverSLA)
	assert.Equal(t, int64(1), cfg.SnowflakeNode)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("LMS_TIMEOUT", "5000")
	t.Setenv("LMS_RETRY_DELAY", "250ms")
	t.Setenv("LMS_RETRY_ATTEMPTS", "five")
	t.Setenv("HANDOVER_SLA_MINUTES", "45")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg := LoadConfig(filepath.Join(t.TempDir(), "missing.env"), discard)

	assert.Equal(t, 5*time.Second, cfg.LMSTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.LMSRetryDelay)
	assert.Equal(t, 3, cfg.LMSRetryAttempts)
	assert.Equal(t, 45*time.Minute, cfg.HandoverSLA)
	assert.True(t, cfg.MinIOUseSSL)
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	// godotenv never overrides variables that are already set
	unsetEnv(t, "DB_NAME")
	unsetEnv(t, "DB_HOST")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DB_NAME=wms\nDB_HOST=db.internal\n"), 0o600))

	cfg := LoadConfig(path, discard)

	assert.Equal(t, "wms", cfg.DBName)
	assert.Contains(t, cfg.DSN(), "host=db.internal")
	assert.Contains(t, cfg.DSN(), "dbname=wms")
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	prev, had := os.LookupEnv(key)
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() {
		if had {
			os.Setenv(key, prev)
		} else {
			os.Unsetenv(key)
		}
	})
}
