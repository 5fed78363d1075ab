package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var allEnv = []string{
	EnvAdminURL, EnvAdminKey, EnvRequestTimeout, EnvRefreshInterval, EnvStaleAfter,
	EnvSurfaceToggleFailures, EnvDefaultModels, EnvDesktopAlerts, EnvHistoryLimit,
	EnvLogPath, EnvLogLevel, EnvMetricsAddr,
}

// isolate clears every GWC_ variable and points HOME and the working
// directory at an empty temp dir so no real config or .env is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range allEnv {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func TestGetEnvString(t *testing.T) {
	key := "TEST_ENV_STRING"
	t.Setenv(key, "test_value")

	if got := getEnvString(key, "default"); got != "test_value" {
		t.Errorf("getEnvString() = %q, want %q", got, "test_value")
	}
	if got := getEnvString("NON_EXISTENT", "default"); got != "default" {
		t.Errorf("getEnvString() = %q, want %q", got, "default")
	}
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_ENV_DURATION"

	tests := []struct {
		name       string
		envVal     string
		defaultVal time.Duration
		want       time.Duration
	}{
		{"ValidDuration", "1m", time.Second, time.Minute},
		{"ValidSeconds", "60", time.Second, 60 * time.Second},
		{"Invalid", "invalid", time.Second, time.Second},
		{"Empty", "", time.Second, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(key, tt.envVal)
			if got := getEnvDuration(key, tt.defaultVal); got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvBoolAndInt(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_BAD_BOOL", "maybe")
	t.Setenv("TEST_INT", " 7 ")

	if !getEnvBool("TEST_BOOL", false) {
		t.Error("getEnvBool() should parse true")
	}
	if !getEnvBool("TEST_BAD_BOOL", true) {
		t.Error("getEnvBool() should fall back on unparsable values")
	}
	if got := getEnvInt("TEST_INT", 1); got != 7 {
		t.Errorf("getEnvInt() = %d, want 7", got)
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)
	t.Setenv(EnvAdminKey, "sk-admin")

	cfg, err := Load(Overrides{})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.AdminURL != defaultAdminURL {
		t.Errorf("AdminURL = %q", cfg.AdminURL)
	}
	if cfg.RefreshInterval != defaultRefreshInterval {
		t.Errorf("RefreshInterval = %v", cfg.RefreshInterval)
	}
	if cfg.StaleAfter != defaultStaleAfter || cfg.HistoryLimit != defaultHistoryLimit {
		t.Errorf("StaleAfter = %d, HistoryLimit = %d", cfg.StaleAfter, cfg.HistoryLimit)
	}
	if cfg.SurfaceToggleFailures {
		t.Error("toggle failures should be silent by default")
	}
	if cfg.DefaultModels != "llama3, mistral" {
		t.Errorf("DefaultModels = %q", cfg.DefaultModels)
	}
	if !cfg.DesktopAlerts {
		t.Error("desktop alerts should default to on")
	}
	if want := filepath.Join(dir, ".config", "gateway-console", "console.log"); cfg.LogPath != want {
		t.Errorf("LogPath = %q, want %q", cfg.LogPath, want)
	}
	if cfg.ConfigFile != "" {
		t.Errorf("ConfigFile = %q, want none", cfg.ConfigFile)
	}
}

func TestLoad_MissingAdminKey(t *testing.T) {
	isolate(t)

	_, err := Load(Overrides{})
	if !errors.Is(err, ErrMissingAdminKey) {
		t.Errorf("Load() error = %v, want ErrMissingAdminKey", err)
	}
}

func TestLoad_TOMLFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".config", "gateway-console", "config.toml"), `
[gateway]
url = "https://gw.example.com/"
admin_key = "from-file"
request_timeout = 5

[sync]
interval = "1m"
stale_after = 5

[ui]
surface_toggle_failures = true
default_models = "phi3"
desktop_alerts = false

[metrics]
addr = ":9100"

[extra]
foo = 1
`)

	cfg, err := Load(Overrides{})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.AdminURL != "https://gw.example.com" {
		t.Errorf("AdminURL = %q, trailing slash should be trimmed", cfg.AdminURL)
	}
	if cfg.AdminKey != "from-file" {
		t.Errorf("AdminKey = %q", cfg.AdminKey)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want 5s", cfg.RequestTimeout)
	}
	if cfg.RefreshInterval != time.Minute || cfg.StaleAfter != 5 {
		t.Errorf("sync = %v / %d", cfg.RefreshInterval, cfg.StaleAfter)
	}
	if !cfg.SurfaceToggleFailures || cfg.DesktopAlerts || cfg.DefaultModels != "phi3" {
		t.Errorf("ui section not applied: %+v", cfg)
	}
	if cfg.HistoryLimit != defaultHistoryLimit {
		t.Errorf("unset keys should keep defaults, HistoryLimit = %d", cfg.HistoryLimit)
	}
	if cfg.MetricsAddr != ":9100" {
		t.Errorf("MetricsAddr = %q", cfg.MetricsAddr)
	}
	if len(cfg.Warnings) == 0 || !strings.Contains(cfg.Warnings[0], "extra") {
		t.Errorf("Warnings = %v, want unknown key warning", cfg.Warnings)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	dir := isolate(t)
	t.Setenv(EnvAdminKey, "k")

	if _, err := Load(Overrides{ConfigFile: filepath.Join(dir, "nope.toml")}); err == nil {
		t.Error("an explicitly named config file must exist")
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.toml")
	writeFile(t, path, "[gateway\nurl = ")

	if _, err := Load(Overrides{ConfigFile: path}); err == nil {
		t.Error("Load() should fail on malformed TOML")
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "console.toml")
	writeFile(t, path, `
[gateway]
url = "http://file:1"
admin_key = "file-key"

[log]
level = "warn"
`)
	t.Setenv(EnvAdminURL, "http://env:2")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load(Overrides{ConfigFile: path, LogLevel: "error", RefreshInterval: 45 * time.Second})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.AdminKey != "file-key" {
		t.Errorf("AdminKey = %q, file value expected", cfg.AdminKey)
	}
	if cfg.AdminURL != "http://env:2" {
		t.Errorf("AdminURL = %q, env should win over file", cfg.AdminURL)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q, flag should win over env", cfg.LogLevel)
	}
	if cfg.RefreshInterval != 45*time.Second {
		t.Errorf("RefreshInterval = %v", cfg.RefreshInterval)
	}
	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile = %q", cfg.ConfigFile)
	}
}

func TestLoad_WithEnvFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".env"), "GWC_ADMIN_KEY=env-file-key\nGWC_STALE_AFTER=9\n")

	cfg, err := Load(Overrides{})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.AdminKey != "env-file-key" {
		t.Errorf("AdminKey = %q, want env-file-key", cfg.AdminKey)
	}
	if cfg.StaleAfter != 9 {
		t.Errorf("StaleAfter = %d, want 9", cfg.StaleAfter)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"BadScheme", map[string]string{EnvAdminURL: "ftp://gw"}},
		{"IntervalTooShort", map[string]string{EnvRefreshInterval: "100ms"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(EnvAdminKey, "k")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(Overrides{}); err == nil {
				t.Error("Load() should reject the configuration")
			}
		})
	}
}

func TestGetEnvPaths(t *testing.T) {
	paths := getEnvPaths()
	if len(paths) == 0 {
		t.Error("getEnvPaths() returned empty list")
	}

	// Basic check that it contains current directory
	cwd, _ := os.Getwd()
	found := false
	for _, p := range paths {
		if p == filepath.Join(cwd, ".env") {
			found = true
			break
		}
	}
	if !found {
		t.Error("getEnvPaths() missing current directory .env")
	}
}

func TestMaskedAdminKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", ""},
		{"abc", "***"},
		{"sk-admin-secret", "sk-a********"},
	}
	for _, tt := range tests {
		c := &Config{AdminKey: tt.key}
		if got := c.MaskedAdminKey(); got != tt.want {
			t.Errorf("MaskedAdminKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
