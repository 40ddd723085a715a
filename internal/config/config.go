package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. DUMMYDATA_LISTEN_ADDR.
const EnvPrefix = "DUMMYDATA"

// Config holds all service configuration.
type Config struct {
	ListenAddr string          `mapstructure:"listen_addr"` // HTTP listen address
	Log        LogConfig       `mapstructure:"log"`
	Generator  GeneratorConfig `mapstructure:"generator"`
	Metrics    MetricsConfig   `mapstructure:"metrics"`
	Tracing    TracingConfig   `mapstructure:"tracing"`
	CORS       CORSConfig      `mapstructure:"cors"`
	Server     ServerConfig    `mapstructure:"server"`
}

// LogConfig selects the log level and encoding.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
}

// GeneratorConfig tunes record generation.
type GeneratorConfig struct {
	Seed     int64 `mapstructure:"seed"`      // 0 picks a random seed
	MaxCount int   `mapstructure:"max_count"` // 0 disables the ceiling
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"` // OTLP/HTTP collector host:port
	ServiceName string `mapstructure:"service_name"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ServerConfig holds http.Server timeouts.
type ServerConfig struct {
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

var defaults = map[string]any{
	"listen_addr":             ":80",
	"log.level":               "info",
	"log.format":              "json",
	"generator.seed":          0,
	"generator.max_count":     0,
	"metrics.enabled":         true,
	"tracing.enabled":         false,
	"tracing.endpoint":        "localhost:4318",
	"tracing.service_name":    "dummydata",
	"cors.allowed_origins":    []string{"*"},
	"server.read_timeout":     30 * time.Second,
	"server.write_timeout":    30 * time.Second,
	"server.idle_timeout":     120 * time.Second,
	"server.shutdown_timeout": 10 * time.Second,
}

// Load reads configuration from the optional YAML file at path, then applies
// DUMMYDATA_* environment overrides on top of the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if cfg.Generator.MaxCount < 0 {
		return nil, fmt.Errorf("generator.max_count must not be negative, got %d", cfg.Generator.MaxCount)
	}

	return &cfg, nil
}
