// Package config contains everything related to configuration
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration. It is built once at startup
// and never changes afterwards.
type Config struct {
	AdminURL              string
	AdminKey              string
	RequestTimeout        time.Duration
	RefreshInterval       time.Duration
	StaleAfter            int
	SurfaceToggleFailures bool
	DefaultModels         string
	DesktopAlerts         bool
	HistoryLimit          int
	LogPath               string
	LogLevel              string
	MetricsAddr           string

	// ConfigFile is the TOML file that was read, empty when none was found.
	ConfigFile string
	// Warnings lists unknown keys found in the config file.
	Warnings []string
}

// Overrides are values given on the command line. Zero values are ignored.
type Overrides struct {
	ConfigFile      string
	AdminURL        string
	AdminKey        string
	RefreshInterval time.Duration
	LogLevel        string
	MetricsAddr     string
}

// Default values
const (
	defaultAdminURL        = "http://localhost:8000"
	defaultRequestTimeout  = 10 * time.Second
	defaultRefreshInterval = 30 * time.Second
	defaultStaleAfter      = 3
	defaultModels          = "llama3, mistral"
	defaultHistoryLimit    = 120
	defaultLogLevel        = "info"
)

// Environment variable names.
const (
	EnvAdminURL              = "GWC_ADMIN_URL"
	EnvAdminKey              = "GWC_ADMIN_KEY"
	EnvRequestTimeout        = "GWC_REQUEST_TIMEOUT"
	EnvRefreshInterval       = "GWC_REFRESH_INTERVAL"
	EnvStaleAfter            = "GWC_STALE_AFTER"
	EnvSurfaceToggleFailures = "GWC_SURFACE_TOGGLE_FAILURES"
	EnvDefaultModels         = "GWC_DEFAULT_MODELS"
	EnvDesktopAlerts         = "GWC_DESKTOP_ALERTS"
	EnvHistoryLimit          = "GWC_HISTORY_LIMIT"
	EnvLogPath               = "GWC_LOG_PATH"
	EnvLogLevel              = "GWC_LOG_LEVEL"
	EnvMetricsAddr           = "GWC_METRICS_ADDR"
)

// ErrMissingAdminKey is returned when no admin key is configured anywhere.
var ErrMissingAdminKey = errors.New("admin key is required (set GWC_ADMIN_KEY, gateway.admin_key or --admin-key)")

// Default returns the configuration before any source is applied.
func Default() *Config {
	return &Config{
		AdminURL:        defaultAdminURL,
		RequestTimeout:  defaultRequestTimeout,
		RefreshInterval: defaultRefreshInterval,
		StaleAfter:      defaultStaleAfter,
		DefaultModels:   defaultModels,
		DesktopAlerts:   true,
		HistoryLimit:    defaultHistoryLimit,
		LogPath:         filepath.Join(configDir(), "console.log"),
		LogLevel:        defaultLogLevel,
	}
}

// Load builds the configuration from defaults, the TOML file, .env files and
// the environment, and finally the command line overrides.
func Load(o Overrides) (*Config, error) {
	cfg := Default()

	path := o.ConfigFile
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	if err := cfg.applyFile(path, explicit); err != nil {
		return nil, err
	}

	// Try loading .env from multiple locations
	for _, p := range getEnvPaths() {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}
	cfg.applyEnv()
	cfg.applyOverrides(o)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultConfigPath returns where the TOML file is looked up by default.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.toml")
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "gateway-console")
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	paths = append(paths, filepath.Join(configDir(), ".env"))

	return paths
}

func (c *Config) applyEnv() {
	c.AdminURL = getEnvString(EnvAdminURL, c.AdminURL)
	c.AdminKey = getEnvString(EnvAdminKey, c.AdminKey)
	c.RequestTimeout = getEnvDuration(EnvRequestTimeout, c.RequestTimeout)
	c.RefreshInterval = getEnvDuration(EnvRefreshInterval, c.RefreshInterval)
	c.StaleAfter = getEnvInt(EnvStaleAfter, c.StaleAfter)
	c.SurfaceToggleFailures = getEnvBool(EnvSurfaceToggleFailures, c.SurfaceToggleFailures)
	c.DefaultModels = getEnvString(EnvDefaultModels, c.DefaultModels)
	c.DesktopAlerts = getEnvBool(EnvDesktopAlerts, c.DesktopAlerts)
	c.HistoryLimit = getEnvInt(EnvHistoryLimit, c.HistoryLimit)
	c.LogPath = getEnvString(EnvLogPath, c.LogPath)
	c.LogLevel = getEnvString(EnvLogLevel, c.LogLevel)
	c.MetricsAddr = getEnvString(EnvMetricsAddr, c.MetricsAddr)
}

func (c *Config) applyOverrides(o Overrides) {
	if o.AdminURL != "" {
		c.AdminURL = o.AdminURL
	}
	if o.AdminKey != "" {
		c.AdminKey = o.AdminKey
	}
	if o.RefreshInterval > 0 {
		c.RefreshInterval = o.RefreshInterval
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.MetricsAddr != "" {
		c.MetricsAddr = o.MetricsAddr
	}
}

func (c *Config) validate() error {
	c.AdminURL = strings.TrimRight(strings.TrimSpace(c.AdminURL), "/")
	c.AdminKey = strings.TrimSpace(c.AdminKey)

	if c.AdminKey == "" {
		return ErrMissingAdminKey
	}
	if !strings.HasPrefix(c.AdminURL, "http://") && !strings.HasPrefix(c.AdminURL, "https://") {
		return fmt.Errorf("admin url %q must start with http:// or https://", c.AdminURL)
	}
	if c.RefreshInterval < time.Second {
		return fmt.Errorf("refresh interval %s is below the 1s minimum", c.RefreshInterval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.StaleAfter < 1 {
		c.StaleAfter = defaultStaleAfter
	}
	if c.HistoryLimit < 2 {
		c.HistoryLimit = defaultHistoryLimit
	}
	return nil
}

// MaskedAdminKey returns the admin key in a form safe to display.
func (c *Config) MaskedAdminKey() string {
	if len(c.AdminKey) <= 4 {
		return strings.Repeat("*", len(c.AdminKey))
	}
	return c.AdminKey[:4] + strings.Repeat("*", 8)
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, ok := parseDuration(value); ok {
			return d
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

// parseDuration accepts Go duration syntax or a bare number of seconds.
func parseDuration(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d, true
	}
	// Try parsing as seconds if no unit specified
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, true
	}
	return 0, false
}

// readFile returns nil data when the default file does not exist.
func readFile(path string, explicit bool) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return data, nil
}
