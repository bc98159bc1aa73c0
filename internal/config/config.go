package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Dataset DatasetConfig `yaml:"dataset" envconfig:"DATASET"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// DatasetConfig describes the raw funding table: where it lives, how it is
// encoded, and how many metadata lines precede the real header.
type DatasetConfig struct {
	Path      string `yaml:"path" envconfig:"PATH" default:"startup_funding.csv" validate:"required"`
	Encoding  string `yaml:"encoding" envconfig:"ENCODING" default:"iso-8859-1"`
	SkipLines int    `yaml:"skip_lines" envconfig:"SKIP_LINES" default:"4" validate:"min=0"`
	// PlanFile optionally points at a YAML column-selection plan; empty
	// means the built-in default plan for the merged export.
	PlanFile string `yaml:"plan_file" envconfig:"PLAN_FILE"`
}

var configValidator = validator.New()

// Load loads configuration from environment variables and an optional
// config file. Environment variables take precedence over the file.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("FUNDING", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := os.Getenv("FUNDING_CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}
	if _, err := os.Stat(configFile); err == nil {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileCfg, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks field constraints via struct tags.
func (c *Config) Validate() error {
	return configValidator.Struct(c)
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence,
// file fills in whatever env left at its zero value).
func mergeConfigs(fileCfg, envCfg Config) Config {
	if fileCfg.Server.Port != 0 && envCfg.Server.Port == 8080 {
		envCfg.Server.Port = fileCfg.Server.Port
	}
	if fileCfg.Dataset.Path != "" && envCfg.Dataset.Path == "startup_funding.csv" {
		envCfg.Dataset.Path = fileCfg.Dataset.Path
	}
	if fileCfg.Dataset.Encoding != "" && envCfg.Dataset.Encoding == "iso-8859-1" {
		envCfg.Dataset.Encoding = fileCfg.Dataset.Encoding
	}
	if fileCfg.Dataset.SkipLines != 0 && envCfg.Dataset.SkipLines == 4 {
		envCfg.Dataset.SkipLines = fileCfg.Dataset.SkipLines
	}
	if fileCfg.Dataset.PlanFile != "" && envCfg.Dataset.PlanFile == "" {
		envCfg.Dataset.PlanFile = fileCfg.Dataset.PlanFile
	}
	if fileCfg.Logging.Level != "" && envCfg.Logging.Level == "info" {
		envCfg.Logging.Level = fileCfg.Logging.Level
	}
	if fileCfg.Logging.Format != "" && envCfg.Logging.Format == "json" {
		envCfg.Logging.Format = fileCfg.Logging.Format
	}
	if fileCfg.Logging.Output != "" && envCfg.Logging.Output == "stdout" {
		envCfg.Logging.Output = fileCfg.Logging.Output
	}
	return envCfg
}
