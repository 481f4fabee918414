package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/keyward/pkg/guard"
	"github.com/aussiebroadwan/keyward/pkg/licensekey"
	"github.com/aussiebroadwan/keyward/pkg/timeoracle"
)

type Config struct {
	DatabaseFile  string // Optional: path to SQLite database file (default: ./keyward.db)
	MasterKeyPath string // Optional: file holding the master key
	MasterKey     string // Optional: master key material, used when no file is set
	LicenseSecret string // Optional: explicit signed-license secret instead of the derived one
	KeyFormat     string // Optional: license key format (checksum, signed) (default: checksum)

	AdminSecret     string // Optional: admin API secret; empty disables the admin API
	AdminTOTPSecret string // Optional: base32 TOTP secret required alongside the admin secret

	TimeSources       string        // Comma separated time source URLs, "system" for the local clock
	TimeSourceTimeout time.Duration // Per-source timeout (default: 3s)

	SigningSkew   time.Duration // Allowed request timestamp skew (default: 60s)
	RedisURL      string        // Optional: Redis nonce store for multi-instance deployments
	APIKeysFile   string        // Optional: YAML api key seed file
	PurgeSchedule string        // Optional: cron spec for audit log rotation

	OwnerJWKSURL string // Optional: JWKS of the account service; enables the owner routes
	OwnerIssuer  string // Optional: expected issuer of owner tokens

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Sweep and api key reload interval (default: 1m)
}

func LoadConfig() Config {
	return Config{
		DatabaseFile:  getEnvOrDefault("KEYWARD_DATABASE_FILE", "keyward.db"),
		MasterKeyPath: os.Getenv("KEYWARD_MASTER_KEY_PATH"),
		MasterKey:     os.Getenv("KEYWARD_MASTER_KEY"),
		LicenseSecret: os.Getenv("KEYWARD_LICENSE_SECRET"),
		KeyFormat:     getEnvOrDefault("KEYWARD_KEY_FORMAT", licensekey.FormatChecksum),

		AdminSecret:     os.Getenv("KEYWARD_ADMIN_SECRET"),
		AdminTOTPSecret: os.Getenv("KEYWARD_ADMIN_TOTP_SECRET"),

		TimeSources:       getEnvOrDefault("KEYWARD_TIME_SOURCES", strings.Join(timeoracle.DefaultSources, ",")),
		TimeSourceTimeout: getEnvDurationOrDefault("KEYWARD_TIME_SOURCE_TIMEOUT", timeoracle.DefaultSourceTimeout),

		SigningSkew:   getEnvDurationOrDefault("KEYWARD_SIGNING_SKEW", guard.DefaultSkew),
		RedisURL:      os.Getenv("KEYWARD_REDIS_URL"),
		APIKeysFile:   os.Getenv("KEYWARD_API_KEYS_FILE"),
		PurgeSchedule: os.Getenv("KEYWARD_AUDIT_PURGE_SCHEDULE"),

		OwnerJWKSURL: os.Getenv("KEYWARD_OWNER_JWKS_URL"),
		OwnerIssuer:  os.Getenv("KEYWARD_OWNER_ISSUER"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Minute),
	}
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	var errs []error

	switch c.KeyFormat {
	case licensekey.FormatChecksum, licensekey.FormatSigned:
	default:
		errs = append(errs, fmt.Errorf("KEYWARD_KEY_FORMAT: unknown format %q", c.KeyFormat))
	}
	if strings.TrimSpace(c.TimeSources) == "" {
		errs = append(errs, errors.New("KEYWARD_TIME_SOURCES: at least one source is required"))
	}
	if c.SigningSkew <= 0 {
		errs = append(errs, errors.New("KEYWARD_SIGNING_SKEW: must be positive"))
	}
	if c.AdminTOTPSecret != "" && c.AdminSecret == "" {
		errs = append(errs, errors.New("KEYWARD_ADMIN_TOTP_SECRET: requires KEYWARD_ADMIN_SECRET"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT: %d out of range", c.Port))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
