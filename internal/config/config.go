// Package config loads server configuration.
// Precedence: flags > environment (MEDDRONE_*) > YAML file > defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"vtol-medical-drone-system/internal/generator"
)

// DefaultPort is used when no valid port is configured
const DefaultPort = 8000

// DefaultConfigFile is picked up from the working directory when present
const DefaultConfigFile = "meddrone.yaml"

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	MaxPortAttempts int           `yaml:"max_port_attempts"`
	StaticDir       string        `yaml:"static_dir"`
	RequiredAssets  []string      `yaml:"required_assets"`
	OpenBrowser     bool          `yaml:"open_browser"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DataConfig holds mock data settings
type DataConfig struct {
	Variant          string `yaml:"variant"`
	Mode             string `yaml:"mode"`
	Aggregates       string `yaml:"aggregates"`
	Seed             uint64 `yaml:"seed"`
	Drones           int    `yaml:"drones"`
	Missions         int    `yaml:"missions"`
	InventoryLog     int    `yaml:"inventory_log"`
	BatteryWarning   int    `yaml:"battery_warning"`
	ExpiryWindowDays int    `yaml:"expiry_window_days"`
	System           string `yaml:"system"`
	Version          string `yaml:"version"`
	// DBPath points at a dataset archive; empty means generate in memory.
	DBPath string `yaml:"db_path"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config aggregates all configuration sections
type Config struct {
	Server ServerConfig `yaml:"server"`
	Data   DataConfig   `yaml:"data"`
	Log    LogConfig    `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "",
			Port:            DefaultPort,
			MaxPortAttempts: 10,
			StaticDir:       ".",
			RequiredAssets:  []string{"index.html", "app.js", "style.css"},
			OpenBrowser:     true,
			ShutdownTimeout: 5 * time.Second,
		},
		Data: DataConfig{
			Variant:          string(generator.VariantLiteral),
			Mode:             string(generator.ModeSnapshot),
			Aggregates:       string(generator.AggregatesDerived),
			Drones:           generator.DefaultSizes.Drones,
			Missions:         generator.DefaultSizes.Missions,
			InventoryLog:     generator.DefaultSizes.InventoryLog,
			BatteryWarning:   50,
			ExpiryWindowDays: 30,
			System:           "VTOL Medical Drone System",
			Version:          "1.0.0",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration from defaults, the YAML file at path and the
// environment. An empty path loads DefaultConfigFile if it exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Host = getEnv("MEDDRONE_HOST", c.Server.Host)
	c.Server.Port = getEnvAsInt("MEDDRONE_PORT", c.Server.Port)
	c.Server.StaticDir = getEnv("MEDDRONE_STATIC_DIR", c.Server.StaticDir)
	c.Data.Variant = getEnv("MEDDRONE_VARIANT", c.Data.Variant)
	c.Data.Mode = getEnv("MEDDRONE_MODE", c.Data.Mode)
	c.Data.Seed = uint64(getEnvAsInt("MEDDRONE_SEED", int(c.Data.Seed)))
	c.Data.DBPath = getEnv("MEDDRONE_DB", c.Data.DBPath)
	c.Data.Version = getEnv("MEDDRONE_VERSION", c.Data.Version)
	c.Log.Level = getEnv("MEDDRONE_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("MEDDRONE_LOG_FORMAT", c.Log.Format)
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if !ValidPort(c.Server.Port) {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.MaxPortAttempts < 1 {
		return fmt.Errorf("max_port_attempts must be at least 1")
	}
	switch generator.Variant(c.Data.Variant) {
	case generator.VariantLiteral, generator.VariantGenerated:
	default:
		return fmt.Errorf("invalid data variant: %q", c.Data.Variant)
	}
	switch generator.Mode(c.Data.Mode) {
	case generator.ModeSnapshot, generator.ModeLive:
	default:
		return fmt.Errorf("invalid generation mode: %q", c.Data.Mode)
	}
	switch generator.Aggregates(c.Data.Aggregates) {
	case generator.AggregatesDerived, generator.AggregatesLiteral:
	default:
		return fmt.Errorf("invalid aggregates mode: %q", c.Data.Aggregates)
	}
	if err := c.GeneratorOptions().Sizes.Validate(); err != nil {
		return err
	}
	if c.Data.BatteryWarning < 0 || c.Data.BatteryWarning > 100 {
		return fmt.Errorf("battery_warning must be between 0 and 100")
	}
	return nil
}

// GeneratorOptions converts the data section into generator options.
func (c *Config) GeneratorOptions() generator.Options {
	opts := generator.DefaultOptions()
	opts.System = c.Data.System
	opts.Version = c.Data.Version
	opts.Mode = generator.Mode(c.Data.Mode)
	opts.Aggregates = generator.Aggregates(c.Data.Aggregates)
	opts.Seed = c.Data.Seed
	opts.Sizes = generator.Sizes{
		Drones:       c.Data.Drones,
		Missions:     c.Data.Missions,
		InventoryLog: c.Data.InventoryLog,
	}
	opts.BatteryWarning = c.Data.BatteryWarning
	opts.ExpiryWindowDays = c.Data.ExpiryWindowDays
	return opts
}

// ValidPort reports whether port is a usable TCP port.
func ValidPort(port int) bool {
	return port > 0 && port <= 65535
}

// ParsePort parses a port argument.
func ParsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid port number %q: %w", s, err)
	}
	if !ValidPort(port) {
		return 0, fmt.Errorf("port %d out of range", port)
	}
	return port, nil
}

// getEnv reads environment variable with fallback default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads environment variable as integer with fallback default
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
