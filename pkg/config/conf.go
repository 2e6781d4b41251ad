package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"
	dirMode        = 0700
	fileMode       = 0600

	FormatJSON = "json"
	FormatYAML = "yaml"

	defaultAPIURL   = "http://localhost:3000"
	defaultTimeout  = 10 * time.Second
	defaultDebounce = 300 * time.Millisecond
	defaultLogLevel = "info"
)

// Config represents app config object.
type Config struct {
	APIURL   string        `yaml:"api_url" env:"MOTORISTA_API_URL"`
	Timeout  time.Duration `yaml:"timeout" env:"MOTORISTA_TIMEOUT"`
	Debounce time.Duration `yaml:"debounce" env:"MOTORISTA_DEBOUNCE"`
	LogLevel string        `yaml:"log_level" env:"MOTORISTA_LOG_LEVEL"`
	Format   string        `yaml:"format" env:"MOTORISTA_FORMAT"`

	// Token is never written to the config file.
	Token string `yaml:"-" env:"MOTORISTA_TOKEN"`
}

// Default returns the config used when nothing else is set.
func Default() *Config {
	return &Config{
		APIURL:   defaultAPIURL,
		Timeout:  defaultTimeout,
		Debounce: defaultDebounce,
		LogLevel: defaultLogLevel,
		Format:   FormatJSON,
	}
}

// Validate checks that the values are usable.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.APIURL) == "" {
		errs = append(errs, errors.New("api_url is required"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.Debounce < 0 {
		errs = append(errs, fmt.Errorf("debounce must not be negative, got %s", c.Debounce))
	}
	if c.Format != FormatJSON && c.Format != FormatYAML {
		errs = append(errs, fmt.Errorf("unsupported format %q (json, yaml)", c.Format))
	}
	return errors.Join(errs...)
}

// fill sets the zero fields of c from the defaults.
func (c *Config) fill() {
	d := Default()
	if c.APIURL == "" {
		c.APIURL = d.APIURL
	}
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
	if c.Debounce == 0 {
		c.Debounce = d.Debounce
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Format == "" {
		c.Format = d.Format
	}
}

func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	path := filepath.Join(dirPath, configFileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", configFileName, err)
	}
	return nil
}

// ReadOrCreate reads app config from directory or creates a new one.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if err := os.MkdirAll(dirPath, dirMode); err != nil {
		return nil, fmt.Errorf("failed to create dir %s: %w", dirPath, err)
	}

	path := filepath.Join(dirPath, configFileName)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating default config", "path", path)
		if err := Save(dirPath, Default()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("error unmarshalling config file %s: %w", path, err)
	}
	c.fill()
	return &c, nil
}

// ApplyEnv overrides c with the MOTORISTA_* variables that are set.
func ApplyEnv(c *Config) error {
	if c == nil {
		return errors.New("config required")
	}
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the config file in dirPath, applies the environment and
// validates the result.
func Load(dirPath string) (*Config, error) {
	c, err := ReadOrCreate(dirPath)
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

// GetOrCreateHomeDir returns the home directory for the current user.
// The create flag is set to true if the directory was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("failed to get user home dir: %w", err)
	}
	slog.Debug("home dir", "path", home)

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "path", dir)
		if err := os.Mkdir(dir, dirMode); err != nil {
			return "", false, fmt.Errorf("failed to create dir %s: %w", dir, err)
		}
		created = true
	}
	return dir, created, nil
}
