// Package config loads the runtime configuration of the cmd binaries from a
// YAML file and environment overrides. Environment access goes through a
// LookupFunc supplied by the caller.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"

	"consensus_valuation/pkg/core/ingest"
)

// LookupFunc resolves an environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Environment variables recognized by Load.
const (
	EnvAPIKey      = "VALUATION_API_KEY"
	EnvBaseURL     = "VALUATION_API_URL"
	EnvDatabaseURL = "DATABASE_URL"
	EnvDataDir     = "VALUATION_DATA_DIR"
	EnvAddr        = "VALUATION_ADDR"
	EnvLogLevel    = "LOG_LEVEL"
	EnvWorkers     = "VALUATION_WORKERS"
)

// Config is the full runtime configuration.
type Config struct {
	Server      ServerConfig `yaml:"server"`
	Source      SourceConfig `yaml:"source"`
	Cache       CacheConfig  `yaml:"cache"`
	Log         LogConfig    `yaml:"log"`
	Assumptions string       `yaml:"assumptions"` // optional catalogue file
	Workers     int          `yaml:"workers"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// SourceConfig selects where raw rows come from. DataDir is consulted first
// when both are set.
type SourceConfig struct {
	DataDir string            `yaml:"data_dir"`
	HTTP    ingest.HTTPConfig `yaml:"http"`
}

type CacheConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Dir         string        `yaml:"dir"`
	MaxAge      time.Duration `yaml:"max_age"`
	DatabaseURL string        `yaml:"-"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		Source: SourceConfig{
			DataDir: "data",
			HTTP:    ingest.HTTPConfig{RequestsPerSecond: 5, Timeout: 30 * time.Second},
		},
		Cache:   CacheConfig{Dir: ".cache/raw", MaxAge: 24 * time.Hour},
		Log:     LogConfig{Level: "info", Format: "console"},
		Workers: 4,
	}
}

// Load reads the YAML file at path over the defaults and applies
// environment overrides. An empty path skips the file.
func Load(path string, lookup LookupFunc) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if lookup != nil {
		if err := cfg.applyEnv(lookup); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str(EnvAPIKey, &c.Source.HTTP.APIKey)
	str(EnvBaseURL, &c.Source.HTTP.BaseURL)
	str(EnvDatabaseURL, &c.Cache.DatabaseURL)
	str(EnvDataDir, &c.Source.DataDir)
	str(EnvAddr, &c.Server.Addr)
	str(EnvLogLevel, &c.Log.Level)

	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Source.DataDir == "" && c.Source.HTTP.BaseURL == "" {
		return errors.New("config: no data source configured (source.data_dir or source.http.base_url)")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("config: workers must be positive, got %d", c.Workers)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		return fmt.Errorf("config: invalid log level %q", c.Log.Level)
	}
	return nil
}

// WithDotEnv returns a lookup consulting next first and then the variables
// of the .env file at path. A missing file is not an error.
func WithDotEnv(path string, next LookupFunc) (LookupFunc, error) {
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		values = map[string]string{}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return func(key string) (string, bool) {
		if next != nil {
			if v, ok := next(key); ok {
				return v, true
			}
		}
		v, ok := values[key]
		return v, ok
	}, nil
}

// Logger builds the root logger. Console format is meant for terminals;
// json for log shipping.
func (c LogConfig) Logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(c.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if c.Format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
