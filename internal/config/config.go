package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Enabled          bool
	Addr             string
	Password         string
	DB               int
	SuiteCacheTTLSec int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level    string
	Encoding string
}

// AuthConfig defines authentication parameters. It is loaded once at startup and
// shared read-only by pointer.
type AuthConfig struct {
	JWTSecret            string
	SessionTTLSeconds    int
	RenewalWindowSeconds int
	BcryptCost           int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "account-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Enabled:          getEnvAsBool("REDIS_ENABLED", true),
			Addr:             getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:         os.Getenv("REDIS_PASSWORD"),
			DB:               redisDB,
			SuiteCacheTTLSec: getEnvAsInt("REDIS_SUITE_CACHE_TTL_SECONDS", 600),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "json"),
		},
		Auth: AuthConfig{
			JWTSecret:            os.Getenv("AUTH_JWT_SECRET"),
			SessionTTLSeconds:    getEnvAsInt("AUTH_SESSION_TTL_SECONDS", 300),
			RenewalWindowSeconds: getEnvAsInt("AUTH_RENEWAL_WINDOW_SECONDS", 30),
			// 13 took ~240ms on the reference hardware; rerun cmd/bcrypt-bench per host.
			BcryptCost: getEnvAsInt("AUTH_BCRYPT_COST", 13),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot run safely with.
func (c *Config) Validate() error {
	return c.Auth.Validate()
}

// Validate checks the auth section on its own so token and hashing components can
// be constructed from it in isolation.
func (a *AuthConfig) Validate() error {
	if a == nil {
		return errors.New("auth config is required")
	}
	if a.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET must be set")
	}
	if a.BcryptCost < bcrypt.MinCost || a.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("AUTH_BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if a.RenewalWindowSeconds < 0 {
		return errors.New("AUTH_RENEWAL_WINDOW_SECONDS must not be negative")
	}
	if a.SessionTTLSeconds <= a.RenewalWindowSeconds {
		return errors.New("AUTH_SESSION_TTL_SECONDS must exceed AUTH_RENEWAL_WINDOW_SECONDS")
	}
	return nil
}

// SessionTTL returns the lifetime of a freshly minted session token.
func (a AuthConfig) SessionTTL() time.Duration {
	return time.Duration(a.SessionTTLSeconds) * time.Second
}

// RenewalWindow returns how close to expiry a token must be before it may be renewed.
func (a AuthConfig) RenewalWindow() time.Duration {
	return time.Duration(a.RenewalWindowSeconds) * time.Second
}

// SuiteCacheTTL returns how long a known suite id is cached.
func (r RedisConfig) SuiteCacheTTL() time.Duration {
	if r.SuiteCacheTTLSec <= 0 {
		return 0
	}
	return time.Duration(r.SuiteCacheTTLSec) * time.Second
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
