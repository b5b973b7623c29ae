package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string

	DBHost        string
	DBPort        int
	DBUser        string
	DBPassword    string
	DBName        string
	DBAutoMigrate bool

	SessionSecret       string
	SessionCookieName   string
	SessionMaxAge       time.Duration
	SessionSecureCookie bool

	AllowedEmailDomain string
	OrganizationName   string
	DefaultRedirect    string

	RedisAddr string
	RedisDB   int
	RedisPass string

	LogLevel    string
	LogFormat   string
	SwaggerHost string
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is applied first; variables already
// present in the process environment take precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8000"),

		DBHost:        getEnv("DB_HOST", "auth-db"),
		DBPort:        getEnvInt("DB_PORT", 3306),
		DBUser:        getEnv("DB_USER", "auth_user"),
		DBPassword:    getEnv("DB_PASSWORD", "auth_password"),
		DBName:        getEnv("DB_NAME", "auth_db"),
		DBAutoMigrate: getEnvBool("DB_AUTO_MIGRATE", false),

		SessionSecret:       getEnv("SESSION_SECRET", "change-me"),
		SessionCookieName:   getEnv("SESSION_COOKIE_NAME", "user_session"),
		SessionMaxAge:       getEnvDuration("SESSION_MAX_AGE", 14*24*time.Hour),
		SessionSecureCookie: getEnvBool("SESSION_SECURE_COOKIE", false),

		AllowedEmailDomain: getEnv("ALLOWED_EMAIL_DOMAIN", "capgemini.com"),
		OrganizationName:   getEnv("ORGANIZATION_NAME", "Capgemini"),
		DefaultRedirect:    getEnv("DEFAULT_REDIRECT", "/dashboard"),

		RedisAddr: os.Getenv("REDIS_ADDR"),
		RedisDB:   getEnvInt("REDIS_DB", 0),
		RedisPass: os.Getenv("REDIS_PASSWORD"),

		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the portal cannot run without.
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET must not be empty")
	}
	if c.SessionCookieName == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME must not be empty")
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE must be positive, got %s", c.SessionMaxAge)
	}
	if c.AllowedEmailDomain == "" {
		return fmt.Errorf("ALLOWED_EMAIL_DOMAIN must not be empty")
	}
	return nil
}

// MySQLDSN assembles the go-sql-driver DSN from the DB_* settings.
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
