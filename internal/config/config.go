package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL connection settings for the activity log.
// An empty Host disables the database entirely.
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

// Enabled reports whether a database host was configured.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// UploadConfig bounds the size of an uploaded PDF.
type UploadConfig struct {
	MaxBytes int64
}

// RetentionConfig controls how long unlocked files are kept and how often the reaper runs.
type RetentionConfig struct {
	RetentionSec     int
	SweepIntervalSec int
}

// Retention returns the retention window as a duration.
func (c RetentionConfig) Retention() time.Duration {
	return time.Duration(c.RetentionSec) * time.Second
}

// SweepInterval returns the reaper interval as a duration.
func (c RetentionConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSec) * time.Second
}

// StoreConfig selects the backend holding unlocked files: "memory" or "minio".
type StoreConfig struct {
	Backend string
}

// NATSConfig enables lifecycle events when URL is set.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

// ClamAVConfig enables upload scanning when Address is set (e.g. tcp://localhost:3310).
type ClamAVConfig struct {
	Address string
}

// UnminifyConfig sizes the result cache. A zero CacheSize disables it.
type UnminifyConfig struct {
	CacheSize   int
	CacheTTLSec int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Port          string
	PublicBaseURL string
	Timezone      string
	LogLevel      string
	Upload        UploadConfig
	Retention     RetentionConfig
	Store         StoreConfig
	Database      DatabaseConfig
	MinIO         MinIOConfig
	NATS          NATSConfig
	ClamAV        ClamAVConfig
	Unminify      UnminifyConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() *AppConfig {
	return &AppConfig{
		Port:          getEnv("PORT", "5001"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
		Timezone:      getEnv("APP_TIMEZONE", "UTC"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Upload: UploadConfig{
			MaxBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 50*1024*1024)),
		},
		Retention: RetentionConfig{
			RetentionSec:     getEnvInt("FILE_RETENTION_SEC", 3600),
			SweepIntervalSec: getEnvInt("SWEEP_INTERVAL_SEC", 300),
		},
		Store: StoreConfig{
			Backend: strings.ToLower(getEnv("STORE_BACKEND", "memory")),
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
		},
		NATS: NATSConfig{
			URL:           getEnv("NATS_URL", ""),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "doctools"),
		},
		ClamAV: ClamAVConfig{
			Address: getEnv("CLAMAV_ADDRESS", ""),
		},
		Unminify: UnminifyConfig{
			CacheSize:   getEnvInt("UNMINIFY_CACHE_SIZE", 256),
			CacheTTLSec: getEnvInt("UNMINIFY_CACHE_TTL_SEC", 600),
		},
	}
}

// Location resolves the configured time zone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
