// Package config loads toolkit configuration from a YAML file with
// NEMCLI-prefixed environment overrides, validates it, and resolves the
// working directories.
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
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Compare CompareConfig `yaml:"compare" envconfig:"COMPARE"`
	Portal  PortalConfig  `yaml:"portal" envconfig:"PORTAL"`
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/nemcli.log"`
}

// PathsConfig contains the working directories for a comparison run
type PathsConfig struct {
	BeforeDir  string `yaml:"before_dir" envconfig:"BEFORE_DIR" default:"data/before_production"`
	AfterDir   string `yaml:"after_dir" envconfig:"AFTER_DIR" default:"data/after_production"`
	ResultsDir string `yaml:"results_dir" envconfig:"RESULTS_DIR" default:"results"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// CompareConfig controls the diff engine and the batch runner
type CompareConfig struct {
	// NumericTolerance switches value matching from exact string equality
	// to numeric comparison within Tolerance.
	NumericTolerance bool          `yaml:"numeric_tolerance" envconfig:"NUMERIC_TOLERANCE" default:"false"`
	Tolerance        float64       `yaml:"tolerance" envconfig:"TOLERANCE" default:"0.001" validate:"gte=0"`
	PairTimeout      time.Duration `yaml:"pair_timeout" envconfig:"PAIR_TIMEOUT" default:"300s" validate:"gt=0"`
}

// PortalConfig contains the metering-portal credentials and target report
// for the downloader. Credentials come from the environment in practice and
// are never logged.
type PortalConfig struct {
	BaseURL    string        `yaml:"base_url" envconfig:"BASE_URL" default:"https://portal.metrixa.example.com"`
	ReportName string        `yaml:"report_name" envconfig:"REPORT_NAME"`
	Email      string        `yaml:"email" envconfig:"EMAIL"`
	Password   string        `yaml:"password" envconfig:"PASSWORD"`
	Headless   bool          `yaml:"headless" envconfig:"HEADLESS" default:"true"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"120s" validate:"gt=0"`
}

// ServerConfig contains HTTP server configuration for the upload API
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
}

// Load loads configuration from the config file (if present) and
// environment variables, env taking precedence.
func Load() (*Config, error) {
	return LoadFrom(configFilePath())
}

// LoadFrom loads configuration from an explicit YAML path plus environment
// overrides.
func LoadFrom(configFile string) (*Config, error) {
	var cfg Config

	// Defaults and env overrides first.
	if err := envconfig.Process("NEMCLI", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileCfg, err := loadFromFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			cfg = mergeConfigs(*fileCfg, cfg)
		}
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
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
// zero-valued env fields fall back to the file).
func mergeConfigs(fileConfig, envConfig Config) Config {
	out := envConfig
	if out.Logging.Level == "" {
		out.Logging.Level = fileConfig.Logging.Level
	}
	if out.Logging.Format == "" {
		out.Logging.Format = fileConfig.Logging.Format
	}
	if out.Logging.Output == "" {
		out.Logging.Output = fileConfig.Logging.Output
	}
	if out.Logging.FilePath == "" {
		out.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if out.Paths.BeforeDir == "" {
		out.Paths.BeforeDir = fileConfig.Paths.BeforeDir
	}
	if out.Paths.AfterDir == "" {
		out.Paths.AfterDir = fileConfig.Paths.AfterDir
	}
	if out.Paths.ResultsDir == "" {
		out.Paths.ResultsDir = fileConfig.Paths.ResultsDir
	}
	if out.Paths.LogsDir == "" {
		out.Paths.LogsDir = fileConfig.Paths.LogsDir
	}
	if !out.Compare.NumericTolerance {
		out.Compare.NumericTolerance = fileConfig.Compare.NumericTolerance
	}
	if out.Compare.Tolerance == 0 {
		out.Compare.Tolerance = fileConfig.Compare.Tolerance
	}
	if out.Compare.PairTimeout == 0 {
		out.Compare.PairTimeout = fileConfig.Compare.PairTimeout
	}
	if out.Portal.BaseURL == "" {
		out.Portal.BaseURL = fileConfig.Portal.BaseURL
	}
	if out.Portal.ReportName == "" {
		out.Portal.ReportName = fileConfig.Portal.ReportName
	}
	if out.Portal.Email == "" {
		out.Portal.Email = fileConfig.Portal.Email
	}
	if out.Portal.Password == "" {
		out.Portal.Password = fileConfig.Portal.Password
	}
	if out.Portal.Timeout == 0 {
		out.Portal.Timeout = fileConfig.Portal.Timeout
	}
	if out.Server.Port == 0 {
		out.Server.Port = fileConfig.Server.Port
	}
	if out.Server.ReadTimeout == 0 {
		out.Server.ReadTimeout = fileConfig.Server.ReadTimeout
	}
	if out.Server.WriteTimeout == 0 {
		out.Server.WriteTimeout = fileConfig.Server.WriteTimeout
	}
	if out.Server.ShutdownTimeout == 0 {
		out.Server.ShutdownTimeout = fileConfig.Server.ShutdownTimeout
	}
	return out
}

// validate checks the configuration against the struct validation tags.
func (c *Config) validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}
	return nil
}
