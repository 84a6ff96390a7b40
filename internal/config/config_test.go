package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:            "development",
		Port:           "8375",
		StorageBackend: BackendBadger,
		BadgerPath:     "data/rtrove",
		LogLevel:       "info",
		TracingExport:  "stdout",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"unknown backend", func(c *Config) { c.StorageBackend = "etcd" }, true},
		{"badger without path", func(c *Config) { c.BadgerPath = "" }, true},
		{"badger in memory", func(c *Config) { c.BadgerPath = ""; c.BadgerInMemory = true }, false},
		{"redis without url", func(c *Config) { c.StorageBackend = BackendRedis }, true},
		{"redis with url", func(c *Config) { c.StorageBackend = BackendRedis; c.RedisURL = "redis://localhost:6379" }, false},
		{"sql bad dialect", func(c *Config) { c.StorageBackend = BackendSQL; c.SQLDialect = "oracle"; c.SQLDSN = "x" }, true},
		{"sql sqlite", func(c *Config) { c.StorageBackend = BackendSQL; c.SQLDialect = "sqlite"; c.SQLDSN = ":memory:" }, false},
		{"otlp without endpoint", func(c *Config) { c.TracingEnabled = true; c.TracingExport = "otlp" }, true},
		{"negative seed", func(c *Config) { c.SeedUsers = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("STORAGE_BACKEND", "  SQL ")
	t.Setenv("SQL_DIALECT", "sqlite")
	t.Setenv("SQL_DSN", ":memory:")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, BackendSQL, c.StorageBackend)
	assert.Equal(t, ":memory:", c.SQLDSN)
	assert.Equal(t, "8375", c.Port)
	assert.False(t, c.IsProduction())
}
