package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"

	StrategyOptimistic = "optimistic"
	StrategySerialized = "serialized"

	maxBookingAttempts = 10
)

// Config holds every setting of the reservation service. Values come from
// an optional TOML file first, then the environment overrides them.
type Config struct {
	Port    string `toml:"port"`
	GinMode string `toml:"gin_mode"`

	DBDriver string `toml:"db_driver"`
	DBDSN    string `toml:"db_dsn"`

	JWTSecret    string `toml:"jwt_secret"`
	AuthRequired bool   `toml:"auth_required"`

	BookingStrategy    string        `toml:"booking_strategy"`
	BookingMaxAttempts int           `toml:"booking_max_attempts"`
	BookingBackoffBase time.Duration `toml:"booking_backoff_base"`
	BookingTimeout     time.Duration `toml:"booking_timeout"`

	RateLimitRPS   float64 `toml:"rate_limit_rps"`
	RateLimitBurst int     `toml:"rate_limit_burst"`
	CORSOrigin     string  `toml:"cors_origin"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Port:               "8080",
		DBDriver:           DriverSQLite,
		DBDSN:              "reservations.db",
		AuthRequired:       true,
		BookingStrategy:    StrategyOptimistic,
		BookingMaxAttempts: 3,
		BookingBackoffBase: 25 * time.Millisecond,
		BookingTimeout:     5 * time.Second,
		RateLimitRPS:       50,
		RateLimitBurst:     100,
		CORSOrigin:         "*",
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

// Load reads an optional .env file, an optional TOML file named by
// CONFIG_FILE, and then the environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := Default()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile decodes a TOML file over cfg. Durations are written as strings
// such as "250ms".
func LoadFile(path string, cfg *Config) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Port, "PORT")
	setString(&cfg.GinMode, "GIN_MODE")
	setString(&cfg.DBDriver, "DB_DRIVER")
	setString(&cfg.DBDSN, "DB_DSN")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.BookingStrategy, "BOOKING_STRATEGY")
	setString(&cfg.CORSOrigin, "CORS_ORIGIN")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")

	if v := env("AUTH_REQUIRED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("AUTH_REQUIRED: %w", err)
		}
		cfg.AuthRequired = b
	}
	if v := env("BOOKING_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BOOKING_MAX_ATTEMPTS: %w", err)
		}
		cfg.BookingMaxAttempts = n
	}
	if v := env("BOOKING_BACKOFF_BASE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("BOOKING_BACKOFF_BASE: %w", err)
		}
		cfg.BookingBackoffBase = d
	}
	if v := env("BOOKING_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("BOOKING_TIMEOUT: %w", err)
		}
		cfg.BookingTimeout = d
	}
	if v := env("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		cfg.RateLimitRPS = f
	}
	if v := env("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		cfg.RateLimitBurst = n
	}
	return nil
}

// Validate checks that the configuration can be used to start the service.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverMySQL, DriverMemory:
	default:
		return fmt.Errorf("DB_DRIVER must be one of sqlite, mysql, memory (got %q)", c.DBDriver)
	}
	if c.DBDriver != DriverMemory && c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required for driver %s", c.DBDriver)
	}
	switch c.BookingStrategy {
	case StrategyOptimistic, StrategySerialized:
	default:
		return fmt.Errorf("BOOKING_STRATEGY must be optimistic or serialized (got %q)", c.BookingStrategy)
	}
	if c.BookingMaxAttempts < 1 || c.BookingMaxAttempts > maxBookingAttempts {
		return fmt.Errorf("BOOKING_MAX_ATTEMPTS must be between 1 and %d", maxBookingAttempts)
	}
	if c.BookingBackoffBase < 0 || c.BookingTimeout < 0 {
		return fmt.Errorf("booking durations must not be negative")
	}
	if c.AuthRequired && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_REQUIRED is true")
	}
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func setString(dst *string, key string) {
	if v := env(key); v != "" {
		*dst = v
	}
}
