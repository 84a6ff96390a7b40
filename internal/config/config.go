// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"rtrove/internal/observability"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendSQL    = "sql"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Env            string  `mapstructure:"APP_ENV"`
	Port           string  `mapstructure:"PORT"`
	StorageBackend string  `mapstructure:"STORAGE_BACKEND"`
	BadgerPath     string  `mapstructure:"BADGER_PATH"`
	BadgerInMemory bool    `mapstructure:"BADGER_IN_MEMORY"`
	RedisURL       string  `mapstructure:"REDIS_URL"`
	SQLDialect     string  `mapstructure:"SQL_DIALECT"`
	SQLDSN         string  `mapstructure:"SQL_DSN"`
	FeatureFlags   string  `mapstructure:"FEATURE_FLAGS"`
	LogLevel       string  `mapstructure:"LOG_LEVEL"`
	TracingEnabled bool    `mapstructure:"TRACING_ENABLED"`
	TracingExport  string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint   string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampler float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
	SeedUsers      int     `mapstructure:"SEED_USERS"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The config file is optional; env and defaults are enough.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env != "" && env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		observability.GlobalLogger.Info("loaded profile-specific configuration", "file", "config."+env+".yml")
	}

	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("PORT", "8375")
	viper.SetDefault("STORAGE_BACKEND", BackendBadger)
	viper.SetDefault("BADGER_PATH", "data/rtrove")
	viper.SetDefault("BADGER_IN_MEMORY", false)
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("SQL_DIALECT", "sqlite")
	viper.SetDefault("SQL_DSN", "rtrove.db")
	viper.SetDefault("FEATURE_FLAGS", "optimistic_chat=on")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)
	viper.SetDefault("SEED_USERS", 10)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.StorageBackend = strings.ToLower(strings.TrimSpace(config.StorageBackend))
	config.SQLDialect = strings.ToLower(strings.TrimSpace(config.SQLDialect))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and consistent.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if _, err := observability.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	switch c.StorageBackend {
	case BackendBadger:
		if !c.BadgerInMemory && c.BadgerPath == "" {
			return errors.New("BADGER_PATH is required unless BADGER_IN_MEMORY is set")
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis backend")
		}
	case BackendSQL:
		if c.SQLDialect != "sqlite" && c.SQLDialect != "postgres" {
			return fmt.Errorf("unsupported SQL_DIALECT %q", c.SQLDialect)
		}
		if c.SQLDSN == "" {
			return errors.New("SQL_DSN is required for the sql backend")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.StorageBackend)
	}

	if c.TracingEnabled {
		if c.TracingExport != "stdout" && c.TracingExport != "otlp" {
			return fmt.Errorf("unsupported TRACING_EXPORTER %q", c.TracingExport)
		}
		if c.TracingExport == "otlp" && c.OTLPEndpoint == "" {
			return errors.New("OTLP_ENDPOINT is required for the otlp exporter")
		}
	}

	if c.SeedUsers < 0 {
		return errors.New("SEED_USERS must not be negative")
	}

	return nil
}

// IsProduction reports whether the app runs with a production profile.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}
