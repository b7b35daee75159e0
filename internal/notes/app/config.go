package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/inkwell-app/inkwell/pkg/jwtx"
)

type Config struct {
	Issuer   string   // Issuer claim for tokens (default: inkwell)
	Audience []string // Optional: audience claims for tokens (comma separated)

	AccessSecret  string // Required in prod: HMAC secret for access tokens (dev: generated)
	RefreshSecret string // Required in prod: HMAC secret for refresh tokens (dev: generated)

	Algorithm      string        // Optional: JWT signing algorithm (HS256, HS384, HS512) (default: HS256)
	AccessTTL      time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTTL     time.Duration // Optional: refresh token lifetime (default: 7 days)
	RenewThreshold time.Duration // Optional: remaining lifetime below which access tokens are renewed in-flight (default: 5m)

	DatabaseFile string // Optional: path to SQLite database file (default: ./inkwell.db)
	PepperFile   string // Optional: path to file containing pepper for password hashing (default: ./pepper)

	CacheTTL           time.Duration // Optional: response cache entry lifetime (default: 30s)
	CacheSweepInterval time.Duration // Optional: expired entry sweep interval (default: 1m)

	RevokeBackend string // Optional: revocation backend (memory, redis) (default: memory)
	RedisAddr     string // Optional: redis address when RevokeBackend=redis (default: localhost:6379)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer: getEnvOrDefault("AUTH_ISSUER", "inkwell"),

		AccessSecret:  os.Getenv("AUTH_ACCESS_SECRET"),
		RefreshSecret: os.Getenv("AUTH_REFRESH_SECRET"),

		Algorithm:      getEnvOrDefault("AUTH_ALGORITHM", "HS256"),
		AccessTTL:      getEnvDurationOrDefault("AUTH_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:     getEnvDurationOrDefault("AUTH_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),
		RenewThreshold: getEnvDurationOrDefault("AUTH_RENEW_THRESHOLD", 5*time.Minute),

		DatabaseFile: getEnvOrDefault("DATABASE_FILE", "inkwell.db"),
		PepperFile:   getEnvOrDefault("PEPPER_FILE", "pepper"),

		CacheTTL:           getEnvDurationOrDefault("CACHE_TTL", 30*time.Second),
		CacheSweepInterval: getEnvDurationOrDefault("CACHE_SWEEP_INTERVAL", time.Minute),

		RevokeBackend: getEnvOrDefault("REVOKE_BACKEND", "memory"),
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if aud := os.Getenv("AUTH_AUDIENCE"); aud != "" {
		for _, part := range strings.Split(aud, ",") {
			if part = strings.TrimSpace(part); part != "" {
				cfg.Audience = append(cfg.Audience, part)
			}
		}
	}

	return cfg
}

// DevMode reports whether the service runs with relaxed error reporting.
func (c Config) DevMode() bool {
	return c.Env == "dev"
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

	// Accept duration strings (e.g. "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Accept plain integers as minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
