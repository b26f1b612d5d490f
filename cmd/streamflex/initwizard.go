package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"gopkg.in/yaml.v3"

	"github.com/streamflex/streamflex/pkg/host"
)

// builtinPlugins lists the plugins compiled into this binary, offered by the
// init wizard.
var builtinPlugins = []string{"baseline", "monitor", "notes"}

type wizardConfig struct {
	Title     string
	Plugins   []string
	Threshold string
	FeedOn    bool
	FeedAddr  string
	MCPOn     bool
}

// runWizard walks the user through a starter config and returns it as YAML.
func runWizard() ([]byte, error) {
	cfg := wizardConfig{
		Title:     "StreamFlex",
		Plugins:   builtinPlugins,
		Threshold: "120",
		FeedAddr:  "127.0.0.1:8765",
	}

	opts := make([]huh.Option[string], len(builtinPlugins))
	for i, n := range builtinPlugins {
		opts[i] = huh.NewOption(n, n).Selected(true)
	}

	if err := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Dashboard title").Value(&cfg.Title),
		huh.NewMultiSelect[string]().
			Title("Enabled plugins").
			Options(opts...).
			Value(&cfg.Plugins),
	)).Run(); err != nil {
		return nil, err
	}

	if contains(cfg.Plugins, "monitor") {
		if err := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Monitor alert threshold").
				Value(&cfg.Threshold).
				Validate(validateInt),
		)).Run(); err != nil {
			return nil, err
		}
	}

	if err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title("Expose the MCP tool server (streamflex mcp)?").Value(&cfg.MCPOn),
		huh.NewConfirm().Title("Expose the WebSocket event feed?").Value(&cfg.FeedOn),
	)).Run(); err != nil {
		return nil, err
	}

	if cfg.FeedOn {
		if err := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Feed listen address").Value(&cfg.FeedAddr),
		)).Run(); err != nil {
			return nil, err
		}
	}

	return marshalWizardConfig(cfg)
}

// marshalWizardConfig converts wizard answers into the host config YAML.
// Every builtin plugin gets an entry; unselected ones are written disabled so
// the user can flip them later by hand.
func marshalWizardConfig(cfg wizardConfig) ([]byte, error) {
	yc := host.Config{Title: cfg.Title}

	for _, name := range builtinPlugins {
		pc := host.PluginConfig{
			Name:     name,
			Disabled: !contains(cfg.Plugins, name),
		}
		if name == "monitor" && cfg.Threshold != "" {
			pc.Settings = map[string]string{"threshold": cfg.Threshold}
		}
		yc.Plugins = append(yc.Plugins, pc)
	}

	yc.Remote.MCP.Enabled = cfg.MCPOn
	yc.Remote.Feed.Enabled = cfg.FeedOn
	if cfg.FeedOn {
		yc.Remote.Feed.Addr = cfg.FeedAddr
	}

	data, err := yaml.Marshal(yc)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func validateInt(s string) error {
	if _, err := strconv.Atoi(s); err != nil {
		return fmt.Errorf("must be an integer")
	}
	return nil
}
