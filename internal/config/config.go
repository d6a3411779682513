// Package config loads the notifyfwd client configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	yaml "go.yaml.in/yaml/v3"

	"github.com/esiqveland/notifyfwd/internal/logging"
)

// Environment variables overriding the file.
const (
	EnvNotifications         = "NOTIFYFWD_NOTIFICATIONS"
	EnvNativeNotifier        = "NOTIFYFWD_NATIVE_NOTIFIER"
	EnvThreadedNotifications = "NOTIFYFWD_THREADED_NOTIFICATIONS"
	EnvLogLevel              = "NOTIFYFWD_LOG_LEVEL"
)

const defaultServerURL = "ws://127.0.0.1:10000/notify"

type Config struct {
	// Notifications enables the notification feature.
	Notifications *bool `yaml:"notifications,omitempty"`
	// NativeNotifier allows the platform backends. When false no backend is
	// constructed and notifications are only logged.
	NativeNotifier *bool `yaml:"native_notifier,omitempty"`
	// ThreadedNotifications calls the backend on the packet goroutine.
	// When false calls are deferred to the main loop.
	ThreadedNotifications *bool `yaml:"threaded_notifications,omitempty"`

	ServerURL string         `yaml:"server_url,omitempty"`
	Log       logging.Config `yaml:"log"`
}

// NotificationsEnabled reports the effective notifications setting.
func (c *Config) NotificationsEnabled() bool { return boolOr(c.Notifications, true) }

// NativeNotifierEnabled reports the effective native_notifier setting.
func (c *Config) NativeNotifierEnabled() bool { return boolOr(c.NativeNotifier, true) }

// Threaded reports the effective threaded_notifications setting.
func (c *Config) Threaded() bool { return boolOr(c.ThreadedNotifications, true) }

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads path, applies defaults and environment overrides.
// An empty path loads the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if cfg, err = Parse(b); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Parse decodes a YAML document. Unknown keys are rejected.
func Parse(b []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ServerURL == "" {
		c.ServerURL = defaultServerURL
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for _, o := range []struct {
		name string
		dst  **bool
	}{
		{EnvNotifications, &c.Notifications},
		{EnvNativeNotifier, &c.NativeNotifier},
		{EnvThreadedNotifications, &c.ThreadedNotifications},
	} {
		v, ok := lookup(o.name)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", o.name, err)
		}
		*o.dst = &b
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	return nil
}
