package host

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level host configuration.
type Config struct {
	Title   string         `yaml:"title"`
	Refresh RefreshConfig  `yaml:"refresh"`
	Plugins []PluginConfig `yaml:"plugins"`
	Remote  RemoteConfig   `yaml:"remote"`
}

// RefreshConfig controls periodic reruns independent of user interaction,
// for plugins whose data changes on its own.
type RefreshConfig struct {
	Every string `yaml:"every"` // Go duration string, e.g. "5s"; empty disables
}

// Interval parses the refresh interval. Empty means disabled.
func (r RefreshConfig) Interval() (time.Duration, error) {
	if r.Every == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.Every)
	if err != nil {
		return 0, fmt.Errorf("host: config: refresh interval: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("host: config: refresh interval must not be negative")
	}
	return d, nil
}

// PluginConfig controls one registered plugin. Plugins register in code; the
// config only toggles them and carries their settings.
type PluginConfig struct {
	Name     string            `yaml:"name"`
	Disabled bool              `yaml:"disabled"`
	Settings map[string]string `yaml:"settings"`
}

// RemoteConfig holds the automation surface settings.
type RemoteConfig struct {
	MCP  MCPConfig  `yaml:"mcp"`
	Feed FeedConfig `yaml:"feed"`
}

// MCPConfig controls the MCP tool server on stdio.
type MCPConfig struct {
	Enabled bool `yaml:"enabled"`
}

// FeedConfig controls the WebSocket event feed.
type FeedConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"` // listen address, e.g. "127.0.0.1:8765"
}

// LoadConfig reads a YAML file and returns a Config.
// Environment variables referenced as ${VAR} or $VAR in the YAML are expanded
// before parsing, so deploy-specific values can be kept in the environment
// (e.g. loaded from a .env file) rather than committed in the config.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return Config{}, fmt.Errorf("host: load config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("host: parse config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if _, err := c.Refresh.Interval(); err != nil {
		return err
	}

	names := make(map[string]struct{}, len(c.Plugins))
	for _, p := range c.Plugins {
		if p.Name == "" {
			return fmt.Errorf("host: config: plugin name is required")
		}
		if _, dup := names[p.Name]; dup {
			return fmt.Errorf("host: config: duplicate plugin name %q", p.Name)
		}
		names[p.Name] = struct{}{}
	}

	if c.Remote.Feed.Enabled && c.Remote.Feed.Addr == "" {
		return fmt.Errorf("host: config: remote feed enabled but addr is empty")
	}

	return nil
}

// pluginConfig returns the config block for the named plugin, if any.
func (c Config) pluginConfig(name string) (PluginConfig, bool) {
	for _, p := range c.Plugins {
		if p.Name == name {
			return p, true
		}
	}
	return PluginConfig{}, false
}

// Enabled reports whether the named plugin should run. Plugins without a
// config block run by default.
func (c Config) Enabled(name string) bool {
	pc, ok := c.pluginConfig(name)
	if !ok {
		return true
	}
	return !pc.Disabled
}

// Settings returns the settings map for the named plugin. Missing blocks
// yield an empty map.
func (c Config) Settings(name string) map[string]string {
	pc, ok := c.pluginConfig(name)
	if !ok || pc.Settings == nil {
		return map[string]string{}
	}
	return pc.Settings
}
