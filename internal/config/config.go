package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/service"
	"github.com/Veraticus/tally/internal/storage"
)

// Config is the resolved application configuration.
type Config struct {
	Database DatabaseConfig
	Logging  LoggingConfig
	Display  DisplayConfig
	Retry    service.RetryOptions
}

// DatabaseConfig selects and tunes the SQLite database.
type DatabaseConfig struct {
	Path         string
	Driver       string
	BusyTimeout  time.Duration
	MaxOpenConns int
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string
	Format string
}

// DisplayConfig controls how amounts are rendered.
type DisplayConfig struct {
	Currency string
}

// SetDefaults registers default values for every key Load reads.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("database.driver", storage.DriverMattn)
	v.SetDefault("database.busy_timeout", 5*time.Second)
	v.SetDefault("database.max_open_conns", 4)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("display.currency", "USD")
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_delay", 25*time.Millisecond)
}

// Load resolves configuration from Viper. Values come from flags, TALLY_ environment
// variables, the config file and finally the defaults registered by SetDefaults.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Path:         ExpandPath(v.GetString("database.path")),
			Driver:       strings.TrimSpace(v.GetString("database.driver")),
			BusyTimeout:  v.GetDuration("database.busy_timeout"),
			MaxOpenConns: v.GetInt("database.max_open_conns"),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(v.GetString("logging.level")),
			Format: strings.ToLower(v.GetString("logging.format")),
		},
		Display: DisplayConfig{
			Currency: strings.ToUpper(strings.TrimSpace(v.GetString("display.currency"))),
		},
		Retry: service.RetryOptions{
			MaxAttempts:  v.GetInt("retry.max_attempts"),
			InitialDelay: v.GetDuration("retry.initial_delay"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the application cannot run with.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	switch c.Database.Driver {
	case storage.DriverMattn, storage.DriverModernc:
	default:
		return fmt.Errorf("%w: database.driver must be %q or %q, got %q",
			common.ErrInvalidConfig, storage.DriverMattn, storage.DriverModernc, c.Database.Driver)
	}
	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("%w: database.busy_timeout must not be negative", common.ErrInvalidConfig)
	}
	if c.Database.MaxOpenConns < 0 {
		return fmt.Errorf("%w: database.max_open_conns must not be negative", common.ErrInvalidConfig)
	}
	if len(c.Display.Currency) != 3 {
		return fmt.Errorf("%w: display.currency must be an ISO 4217 code, got %q",
			common.ErrInvalidConfig, c.Display.Currency)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%w: retry.max_attempts must be at least 1", common.ErrInvalidConfig)
	}
	return nil
}

// StorageOptions converts the database settings to storage options.
func (c *Config) StorageOptions() []storage.Option {
	return []storage.Option{
		storage.WithDriver(c.Database.Driver),
		storage.WithBusyTimeout(c.Database.BusyTimeout),
		storage.WithMaxOpenConns(c.Database.MaxOpenConns),
	}
}
