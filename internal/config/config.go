// Package config reads process settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"
)

// DefaultAdminSecret is used when ADMIN_SECRET is unset. Local development only.
const DefaultAdminSecret = "dev-secret"

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
// PublicURL, when set, is the base under which stored objects are publicly reachable
// (e.g. a CDN or reverse proxy). Otherwise URLs are built from the endpoint and bucket.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

// BreakerConfig tunes the circuit breaker guarding object storage calls.
type BreakerConfig struct {
	MaxRequests uint32
	IntervalSec int
	TimeoutSec  int
	MinRequests uint32
	FailureRate float64
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string
	Format string
}

// AppConfig is everything the server needs at startup.
type AppConfig struct {
	Port             string
	AdminSecret      string
	AdminSecretIsSet bool
	MaxUploadSize    int64
	CORSAllowOrigins string
	PublicDir        string
	Timezone         string
	Log              LogConfig
	Database         DatabaseConfig
	MinIO            MinIOConfig
	Breaker          BreakerConfig
}

// Location resolves Timezone, falling back to UTC when it is empty or unknown.
func (c *AppConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads the environment. Values from a .env file arrive through godotenv/autoload in
// main; variables already set in the process win.
func Load() *AppConfig {
	secret, secretSet := os.LookupEnv("ADMIN_SECRET")
	secretSet = secretSet && secret != ""
	if !secretSet {
		secret = DefaultAdminSecret
	}

	return &AppConfig{
		Port:             getEnv("PORT", "3000"),
		AdminSecret:      secret,
		AdminSecretIsSet: secretSet,
		MaxUploadSize:    getEnvSize("MAX_UPLOAD_SIZE", 50*units.MB),
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
		PublicDir:        getEnv("PUBLIC_DIR", ""),
		Timezone:         getEnv("APP_TIMEZONE", "UTC"),
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			PublicURL: strings.TrimRight(getEnv("MINIO_PUBLIC_URL", ""), "/"),
		},
		Breaker: BreakerConfig{
			MaxRequests: uint32(getEnvInt("BLOB_BREAKER_MAX_REQUESTS", 3)),
			IntervalSec: getEnvInt("BLOB_BREAKER_INTERVAL_SEC", 60),
			TimeoutSec:  getEnvInt("BLOB_BREAKER_TIMEOUT_SEC", 30),
			MinRequests: uint32(getEnvInt("BLOB_BREAKER_MIN_REQUESTS", 10)),
			FailureRate: getEnvFloat("BLOB_BREAKER_FAILURE_RATE", 0.6),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseEnv returns def when key is unset or does not parse.
func parseEnv[T any](key string, def T, parse func(string) (T, error)) T {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	out, err := parse(v)
	if err != nil {
		return def
	}
	return out
}

func getEnvBool(key string, def bool) bool {
	return parseEnv(key, def, strconv.ParseBool)
}

func getEnvInt(key string, def int) int {
	return parseEnv(key, def, strconv.Atoi)
}

func getEnvFloat(key string, def float64) float64 {
	return parseEnv(key, def, func(v string) (float64, error) { return strconv.ParseFloat(v, 64) })
}

// getEnvSize accepts human readable sizes such as "20MB" or "512kB". Non-positive sizes
// fall back to def.
func getEnvSize(key string, def int64) int64 {
	n := parseEnv(key, def, units.FromHumanSize)
	if n <= 0 {
		return def
	}
	return n
}
