package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Assile/FTP-backup/internal/remote"
)

// DefaultPort is used when Host has no port.
const DefaultPort = "21"

// Environment variables read by LoadFromEnv.
const (
	EnvHost     = "FTP_HOST"
	EnvUser     = "FTP_USER"
	EnvPassword = "FTP_PASSWORD"
	EnvTimeout  = "FTP_TIMEOUT"
	EnvListing  = "FTP_LISTING"
	EnvTarget   = "FTP_BACKUP_TARGET"
)

// Config defines configuration for the ftp-backup CLI.
type Config struct {
	Host      string        `yaml:"host"`
	User      string        `yaml:"user"`
	Password  string        `yaml:"password"`
	Target    string        `yaml:"target"`
	Timestamp bool          `yaml:"timestamp"`
	Listing   string        `yaml:"listing"`
	Timeout   time.Duration `yaml:"timeout"`
	Verbose   bool          `yaml:"verbose"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Listing: remote.ListingDetailed,
		Timeout: 30 * time.Second,
	}
}

// ConfigError lists every problem found by Validate.
type ConfigError struct {
	Missing []string // Required settings with no value
	Invalid []string // Settings with a value that cannot be used
}

func (e *ConfigError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	parts = append(parts, e.Invalid...)
	return "config: " + strings.Join(parts, "; ")
}

// yamlConfig is used for YAML unmarshaling with a string timeout.
type yamlConfig struct {
	Host      string `yaml:"host"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	Target    string `yaml:"target"`
	Timestamp bool   `yaml:"timestamp"`
	Listing   string `yaml:"listing"`
	Timeout   string `yaml:"timeout"`
	Verbose   bool   `yaml:"verbose"`
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()
	cfg.Host = yc.Host
	cfg.User = yc.User
	cfg.Password = yc.Password
	cfg.Target = yc.Target
	cfg.Timestamp = yc.Timestamp
	cfg.Verbose = yc.Verbose
	if yc.Listing != "" {
		cfg.Listing = yc.Listing
	}
	if yc.Timeout != "" {
		d, err := time.ParseDuration(yc.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}

	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file into the process
// environment. Variables that are already set keep their value. A missing
// file is only an error when required is true.
func LoadEnvFile(path string, required bool) error {
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !required && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load env file %s: %w", path, err)
}

// LoadFromEnv loads configuration from environment variables.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv(EnvHost); v != "" {
		c.Host = v
	}
	if v := os.Getenv(EnvUser); v != "" {
		c.User = v
	}
	if v := os.Getenv(EnvPassword); v != "" {
		c.Password = v
	}
	if v := os.Getenv(EnvTarget); v != "" {
		c.Target = v
	}
	if v := os.Getenv(EnvListing); v != "" {
		c.Listing = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	return nil
}

// Validate checks that every required setting is present and usable.
// The returned error is a *ConfigError.
func (c *Config) Validate() error {
	e := &ConfigError{}

	if c.Host == "" {
		e.Missing = append(e.Missing, "host ("+EnvHost+")")
	}
	if c.User == "" {
		e.Missing = append(e.Missing, "user ("+EnvUser+")")
	}
	if c.Password == "" {
		e.Missing = append(e.Missing, "password ("+EnvPassword+")")
	}
	if c.Target == "" {
		e.Missing = append(e.Missing, "target")
	}

	switch c.Listing {
	case "", remote.ListingDetailed, remote.ListingPaired:
	default:
		e.Invalid = append(e.Invalid, fmt.Sprintf("listing must be %q or %q, got %q",
			remote.ListingDetailed, remote.ListingPaired, c.Listing))
	}
	if c.Timeout < 0 {
		e.Invalid = append(e.Invalid, "timeout must not be negative")
	}

	if len(e.Missing) > 0 || len(e.Invalid) > 0 {
		return e
	}
	return nil
}

// Addr returns the host with DefaultPort appended when it has no port.
func (c *Config) Addr() string {
	if _, _, err := net.SplitHostPort(c.Host); err == nil {
		return c.Host
	}
	return net.JoinHostPort(strings.Trim(c.Host, "[]"), DefaultPort)
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.Host != "" {
		c.Host = override.Host
	}
	if override.User != "" {
		c.User = override.User
	}
	if override.Password != "" {
		c.Password = override.Password
	}
	if override.Target != "" {
		c.Target = override.Target
	}
	if override.Timestamp {
		c.Timestamp = override.Timestamp
	}
	if override.Listing != "" {
		c.Listing = override.Listing
	}
	if override.Timeout != 0 {
		c.Timeout = override.Timeout
	}
	if override.Verbose {
		c.Verbose = override.Verbose
	}
	return c
}
