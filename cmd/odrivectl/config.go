package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/odrive-host/odrive-go/pkg/interaction"
)

// Config holds the odrivectl configuration.
type Config struct {
	ConfigFile  string
	Serial      string
	Timeout     time.Duration
	ProtocolLog string
	SchemaCache string
	Simulate    bool
	Telemetry   bool
	LogLevel    string

	// Refresh ignores the schema cache and downloads the schema again.
	Refresh bool
}

// fileConfig is the on-disk form. Pointer fields distinguish absent keys
// from zero values.
type fileConfig struct {
	Serial      *string `yaml:"serial" toml:"serial"`
	Timeout     *string `yaml:"timeout" toml:"timeout"`
	ProtocolLog *string `yaml:"protocol_log" toml:"protocol_log"`
	SchemaCache *string `yaml:"schema_cache" toml:"schema_cache"`
	Simulate    *bool   `yaml:"simulate" toml:"simulate"`
	Telemetry   *bool   `yaml:"telemetry" toml:"telemetry"`
	LogLevel    *string `yaml:"log_level" toml:"log_level"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:  interaction.DefaultTimeout,
		LogLevel: "info",
	}
}

func newFlagSet(cfg *Config) *flag.FlagSet {
	fs := flag.NewFlagSet("odrivectl", flag.ContinueOnError)
	fs.StringVar(&cfg.ConfigFile, "config", "", "Configuration file path (.yaml, .yml or .toml)")
	fs.StringVar(&cfg.Serial, "serial", cfg.Serial, "Device serial number (hex); empty selects the first device")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-transfer timeout")
	fs.StringVar(&cfg.ProtocolLog, "protocol-log", cfg.ProtocolLog, "Write a protocol capture to this file (.zst compresses)")
	fs.StringVar(&cfg.SchemaCache, "schema-cache", cfg.SchemaCache, "Directory for cached schema documents")
	fs.BoolVar(&cfg.Simulate, "simulate", cfg.Simulate, "Use the built-in simulated device instead of USB")
	fs.BoolVar(&cfg.Telemetry, "telemetry", cfg.Telemetry, "Print OpenTelemetry spans and metrics to stderr")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.BoolVar(&cfg.Refresh, "refresh", false, "Ignore the schema cache and download the schema")
	return fs
}

// parseArgs parses command line flags and the optional config file.
// Flags set on the command line take precedence over file values.
func parseArgs(args []string) (Config, []string, error) {
	cfg := DefaultConfig()
	fs := newFlagSet(&cfg)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, nil, err
	}

	if cfg.ConfigFile != "" {
		file, err := loadConfigFile(cfg.ConfigFile)
		if err != nil {
			return Config{}, nil, err
		}
		set := make(map[string]bool)
		fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
		if err := cfg.apply(file, set); err != nil {
			return Config{}, nil, fmt.Errorf("config %s: %w", cfg.ConfigFile, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, nil, err
	}
	return cfg, fs.Args(), nil
}

func loadConfigFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var file fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &file); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config %s: unsupported format (use .yaml, .yml or .toml)", path)
	}
	return &file, nil
}

// apply copies file values for every setting not named in set.
func (c *Config) apply(file *fileConfig, set map[string]bool) error {
	if file.Serial != nil && !set["serial"] {
		c.Serial = strings.TrimSpace(*file.Serial)
	}
	if file.Timeout != nil && !set["timeout"] {
		d, err := time.ParseDuration(strings.TrimSpace(*file.Timeout))
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		c.Timeout = d
	}
	if file.ProtocolLog != nil && !set["protocol-log"] {
		c.ProtocolLog = strings.TrimSpace(*file.ProtocolLog)
	}
	if file.SchemaCache != nil && !set["schema-cache"] {
		c.SchemaCache = strings.TrimSpace(*file.SchemaCache)
	}
	if file.Simulate != nil && !set["simulate"] {
		c.Simulate = *file.Simulate
	}
	if file.Telemetry != nil && !set["telemetry"] {
		c.Telemetry = *file.Telemetry
	}
	if file.LogLevel != nil && !set["log-level"] {
		c.LogLevel = strings.TrimSpace(*file.LogLevel)
	}
	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s (use: debug, info, warn, error)", c.LogLevel)
	}
	return nil
}
