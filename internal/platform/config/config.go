// Package config reads the service configuration from the environment.
//
// A .env file in the working directory is loaded first when present; real
// environment variables always win over values from the file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppPort         = "8080"
	defaultAppEnv          = "local"
	defaultKVDriver        = "file"
	defaultKVPath          = "data/local.json"
	defaultRedisAddr       = "localhost:6379"
	defaultStorageRoot     = "storage"
	defaultStorageURL      = "http://localhost:8080/storage"
	defaultS3Region        = "us-east-1"
	defaultWhatsAppContact = "2348180129670"
	defaultJWTSecret       = "change-me-in-production"
	defaultSessionTTL      = 24 * time.Hour
	defaultCartTTL         = 30 * 24 * time.Hour
)

// Config holds every setting the service reads at start-up.
type Config struct {
	AppEnv  string
	AppPort string

	// DatabaseURL is the remote store DSN. Empty means the remote store is
	// not configured and the catalog/admin stores short-circuit.
	DatabaseURL string

	KVDriver      string // file | redis | memory
	KVPath        string
	RedisAddr     string
	RedisPassword string

	StorageRoot string
	StorageURL  string
	S3Bucket    string
	S3Region    string
	S3Key       string
	S3Secret    string
	S3Endpoint  string
	S3URL       string

	WhatsAppContact string

	JWTSecret  string
	SessionTTL time.Duration
	CartTTL    time.Duration

	// AdminPassword enables the legacy shared-password gate when non-empty.
	AdminPassword string
}

// Load reads .env (if any) and returns the resolved configuration.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return FromEnv(), nil
}

// FromEnv resolves the configuration from the process environment only.
func FromEnv() *Config {
	return &Config{
		AppEnv:          get("APP_ENV", defaultAppEnv),
		AppPort:         get("APP_PORT", defaultAppPort),
		DatabaseURL:     get("DATABASE_URL", ""),
		KVDriver:        strings.ToLower(get("KV_DRIVER", defaultKVDriver)),
		KVPath:          get("KV_PATH", defaultKVPath),
		RedisAddr:       get("REDIS_ADDR", defaultRedisAddr),
		RedisPassword:   get("REDIS_PASSWORD", ""),
		StorageRoot:     get("STORAGE_LOCAL_ROOT", defaultStorageRoot),
		StorageURL:      strings.TrimRight(get("STORAGE_URL", defaultStorageURL), "/"),
		S3Bucket:        get("S3_BUCKET", ""),
		S3Region:        get("S3_REGION", defaultS3Region),
		S3Key:           get("S3_KEY", ""),
		S3Secret:        get("S3_SECRET", ""),
		S3Endpoint:      get("S3_ENDPOINT", ""),
		S3URL:           strings.TrimRight(get("S3_URL", ""), "/"),
		WhatsAppContact: get("WHATSAPP_CONTACT", defaultWhatsAppContact),
		JWTSecret:       get("JWT_SECRET", defaultJWTSecret),
		SessionTTL:      duration("SESSION_TTL", defaultSessionTTL),
		CartTTL:         duration("CART_TTL", defaultCartTTL),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
	}
}

// RemoteConfigured reports whether a remote store DSN was supplied.
func (c *Config) RemoteConfigured() bool { return c.DatabaseURL != "" }

// Production reports whether the service runs with production defaults.
func (c *Config) Production() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}

func get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// duration accepts Go duration strings ("36h") or a bare number of seconds.
func duration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
