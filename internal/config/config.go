// Package config loads the server configuration from the environment.
//
// A .env file in the working directory is read first (godotenv); variables already set in the
// environment take precedence. Values are mapped onto Config via go-simpler.org/env tags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const devJWTSecret = "hasker-dev-secret-change-in-production"

type Config struct {
	AppEnv  string `env:"APP_ENV" default:"development"`
	Port    string `env:"PORT" default:"8080"`
	BaseURL string `env:"BASE_URL" default:"http://localhost:8080"`

	DBDriver   string `env:"DB_DRIVER" default:"postgres"`
	DBHost     string `env:"DB_HOST"`
	DBPort     string `env:"DB_PORT" default:"5432"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBSSLMode  string `env:"DB_SSLMODE" default:"disable"`
	SQLitePath string `env:"SQLITE_PATH" default:"hasker.db"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" default:"72h"`

	RedisURL         string        `env:"REDIS_URL"`
	TrendingCacheTTL time.Duration `env:"TRENDING_CACHE_TTL" default:"1m"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"console"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" default:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" default:"20"`
	CORSOrigins    string  `env:"CORS_ORIGINS" default:"*"`

	TwilioAccountSID string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string `env:"TWILIO_FROM_NUMBER"`
}

// Load reads .env (if present) and the environment, applies defaults and validates the result.
func Load() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = devJWTSecret
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.DBDriver {
	case DriverPostgres:
		required := map[string]string{
			"DB_HOST": cfg.DBHost,
			"DB_USER": cfg.DBUser,
			"DB_NAME": cfg.DBName,
		}
		for name, value := range required {
			if value == "" {
				return fmt.Errorf("%s is required when DB_DRIVER=postgres", name)
			}
		}
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when DB_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.IsProduction() && cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required in production")
	}
	if cfg.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}

	twilio := []string{cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber}
	set := 0
	for _, v := range twilio {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != len(twilio) {
		return errors.New("TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_FROM_NUMBER must be set together")
	}

	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// TwilioEnabled reports whether SMS notifications are configured.
func (c *Config) TwilioEnabled() bool {
	return c.TwilioAccountSID != ""
}

// PostgresDSN builds the connection string the way the GORM postgres driver expects it.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
