package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

type tomlFile struct {
	Gateway struct {
		URL            string   `toml:"url"`
		AdminKey       string   `toml:"admin_key"`
		RequestTimeout duration `toml:"request_timeout"`
	} `toml:"gateway"`
	Sync struct {
		Interval   duration `toml:"interval"`
		StaleAfter int      `toml:"stale_after"`
	} `toml:"sync"`
	UI struct {
		SurfaceToggleFailures bool   `toml:"surface_toggle_failures"`
		DefaultModels         string `toml:"default_models"`
		DesktopAlerts         bool   `toml:"desktop_alerts"`
		HistoryLimit          int    `toml:"history_limit"`
	} `toml:"ui"`
	Log struct {
		Path  string `toml:"path"`
		Level string `toml:"level"`
	} `toml:"log"`
	Metrics struct {
		Addr string `toml:"addr"`
	} `toml:"metrics"`
}

// duration decodes either a Go duration string or a number of seconds.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, ok := parseDuration(string(text))
	if !ok {
		return fmt.Errorf("invalid duration %q", text)
	}
	d.Duration = v
	return nil
}

func (d *duration) UnmarshalTOML(v any) error {
	switch n := v.(type) {
	case int64:
		d.Duration = time.Duration(n) * time.Second
		return nil
	case string:
		return d.UnmarshalText([]byte(n))
	default:
		return fmt.Errorf("invalid duration %v", v)
	}
}

// applyFile merges the keys present in the TOML file at path into c.
func (c *Config) applyFile(path string, explicit bool) error {
	data, err := readFile(path, explicit)
	if err != nil || data == nil {
		return err
	}

	var tf tomlFile
	md, err := toml.Decode(string(data), &tf)
	if err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	c.ConfigFile = path

	for _, key := range md.Undecoded() {
		c.Warnings = append(c.Warnings, fmt.Sprintf("unknown config key: %q", key.String()))
	}

	set := func(key ...string) bool { return md.IsDefined(key...) }

	if set("gateway", "url") {
		c.AdminURL = tf.Gateway.URL
	}
	if set("gateway", "admin_key") {
		c.AdminKey = tf.Gateway.AdminKey
	}
	if set("gateway", "request_timeout") {
		c.RequestTimeout = tf.Gateway.RequestTimeout.Duration
	}
	if set("sync", "interval") {
		c.RefreshInterval = tf.Sync.Interval.Duration
	}
	if set("sync", "stale_after") {
		c.StaleAfter = tf.Sync.StaleAfter
	}
	if set("ui", "surface_toggle_failures") {
		c.SurfaceToggleFailures = tf.UI.SurfaceToggleFailures
	}
	if set("ui", "default_models") {
		c.DefaultModels = tf.UI.DefaultModels
	}
	if set("ui", "desktop_alerts") {
		c.DesktopAlerts = tf.UI.DesktopAlerts
	}
	if set("ui", "history_limit") {
		c.HistoryLimit = tf.UI.HistoryLimit
	}
	if set("log", "path") {
		c.LogPath = tf.Log.Path
	}
	if set("log", "level") {
		c.LogLevel = tf.Log.Level
	}
	if set("metrics", "addr") {
		c.MetricsAddr = tf.Metrics.Addr
	}

	return nil
}
