// Package config loads server settings. Environment variables (MEDIMATE_*)
// override the config file, which overrides the built-in defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/musharraf10/MediMate/internal/errs"
)

// EnvPrefix is prepended to every environment override, e.g. MEDIMATE_HTTP_ADDR.
const EnvPrefix = "MEDIMATE"

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	HTTP struct {
		Addr            string
		CORSOrigins     []string      `mapstructure:"cors_origins"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"http"`

	Health struct {
		Enabled bool
		Addr    string
	} `mapstructure:"health"`

	Storage struct {
		Driver string
		DSN    string
	} `mapstructure:"storage"`

	Log struct {
		Level       string
		Development bool
	} `mapstructure:"log"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Scheduler struct {
		Enabled  bool
		Timezone string
	} `mapstructure:"scheduler"`

	Alerts struct {
		LowStockThreshold int `mapstructure:"low_stock_threshold"`
	} `mapstructure:"alerts"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.cors_origins", []string{"*"})
	v.SetDefault("http.shutdown_timeout", "5s")
	v.SetDefault("health.enabled", true)
	v.SetDefault("health.addr", ":9090")
	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.dsn", "medimate.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.timezone", "Local")
	v.SetDefault("alerts.low_stock_threshold", 5)
}

// Load reads path (skipped when empty) and applies env overrides.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return c, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate checks values that would otherwise fail late at startup.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("%w: storage.driver must be %q or %q, got %q", errs.ErrValidation, DriverPostgres, DriverSQLite, c.Storage.Driver)
	}
	if strings.TrimSpace(c.Storage.DSN) == "" {
		return fmt.Errorf("%w: storage.dsn is required", errs.ErrValidation)
	}
	if c.Alerts.LowStockThreshold <= 0 {
		return fmt.Errorf("%w: alerts.low_stock_threshold must be positive", errs.ErrValidation)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: scheduler.timezone: %v", errs.ErrValidation, err)
	}
	return nil
}

// Location resolves scheduler.timezone.
func (c Config) Location() (*time.Location, error) {
	switch c.Scheduler.Timezone {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	return time.LoadLocation(c.Scheduler.Timezone)
}
