package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Storage drivers accepted in STORAGE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port            int    `envconfig:"PORT" default:"8080"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	StorageDriver   string `envconfig:"STORAGE_DRIVER" default:"postgres"`
	DatabaseURL     string `envconfig:"DATABASE_URL" default:""`
	DatabaseMaxConn int32  `envconfig:"DATABASE_MAX_CONNS" default:"10"`
	SQLitePath      string `envconfig:"SQLITE_PATH" default:"formats.db"`
	AutoMigrate     bool   `envconfig:"AUTO_MIGRATE" default:"true"`
	ValueMaxLength  int    `envconfig:"VALUE_MAX_LENGTH" default:"255"`
	MetricsEnabled  bool   `envconfig:"METRICS_ENABLED" default:"true"`
	Version         string `envconfig:"VERSION" default:"dev"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"15"`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE_DRIVER is %q", DriverPostgres)
		}
	case DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.ValueMaxLength < 1 {
		return fmt.Errorf("VALUE_MAX_LENGTH must be positive, got %d", c.ValueMaxLength)
	}

	return nil
}
