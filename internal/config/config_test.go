package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("MINIO_PUBLIC_URL", "https://cdn.example.com/")
	t.Setenv("ADMIN_SECRET", "s3cret")
	t.Setenv("MAX_UPLOAD_SIZE", "10MB")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "https://cdn.example.com", cfg.MinIO.PublicURL)
	assert.Equal(t, "s3cret", cfg.AdminSecret)
	assert.True(t, cfg.AdminSecretIsSet)
	assert.Equal(t, int64(10_000_000), cfg.MaxUploadSize)
}

func TestLoad_AdminSecretDefault(t *testing.T) {
	t.Setenv("ADMIN_SECRET", "")

	cfg := Load()

	assert.Equal(t, DefaultAdminSecret, cfg.AdminSecret)
	assert.False(t, cfg.AdminSecretIsSet)
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.UTC, (&AppConfig{}).Location())
	assert.Equal(t, time.UTC, (&AppConfig{Timezone: "Not/AZone"}).Location())

	loc := (&AppConfig{Timezone: "Europe/Istanbul"}).Location()
	assert.Equal(t, "Europe/Istanbul", loc.String())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvSize(t *testing.T) {
	key := "TEST_SIZE_VAR"

	t.Setenv(key, "2kB")
	assert.Equal(t, int64(2000), getEnvSize(key, 1))

	t.Setenv(key, "lots")
	assert.Equal(t, int64(1), getEnvSize(key, 1))

	t.Setenv(key, "0")
	assert.Equal(t, int64(1), getEnvSize(key, 1))
}

func TestGetEnvFloat(t *testing.T) {
	key := "TEST_FLOAT_VAR"

	t.Setenv(key, "0.25")
	assert.InDelta(t, 0.25, getEnvFloat(key, 1), 1e-9)

	t.Setenv(key, "half")
	assert.InDelta(t, 1.0, getEnvFloat(key, 1), 1e-9)
}

func TestLoad_BreakerDefaults(t *testing.T) {
	for _, k := range []string{"BLOB_BREAKER_MAX_REQUESTS", "BLOB_BREAKER_MIN_REQUESTS", "BLOB_BREAKER_FAILURE_RATE"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, uint32(3), cfg.Breaker.MaxRequests)
	assert.Equal(t, uint32(10), cfg.Breaker.MinRequests)
	assert.InDelta(t, 0.6, cfg.Breaker.FailureRate, 1e-9)
}
