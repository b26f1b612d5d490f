package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/streamflex/streamflex/pkg/host"
)

func TestMarshalWizardConfig(t *testing.T) {
	out, err := marshalWizardConfig(wizardConfig{
		Title:     "My Dashboard",
		Plugins:   []string{"baseline", "monitor"},
		Threshold: "50",
		FeedOn:    true,
		FeedAddr:  "127.0.0.1:9000",
		MCPOn:     true,
	})
	require.NoError(t, err)

	var cfg host.Config
	require.NoError(t, yaml.Unmarshal(out, &cfg))

	assert.Equal(t, "My Dashboard", cfg.Title)
	require.Len(t, cfg.Plugins, len(builtinPlugins))

	assert.True(t, cfg.Enabled("baseline"))
	assert.True(t, cfg.Enabled("monitor"))
	assert.False(t, cfg.Enabled("notes"))

	assert.Equal(t, map[string]string{"threshold": "50"}, cfg.Settings("monitor"))
	assert.True(t, cfg.Remote.MCP.Enabled)
	assert.True(t, cfg.Remote.Feed.Enabled)
	assert.Equal(t, "127.0.0.1:9000", cfg.Remote.Feed.Addr)
}

func TestMarshalWizardConfigFeedOff(t *testing.T) {
	out, err := marshalWizardConfig(wizardConfig{
		Title:   "t",
		Plugins: builtinPlugins,
	})
	require.NoError(t, err)

	var cfg host.Config
	require.NoError(t, yaml.Unmarshal(out, &cfg))
	assert.False(t, cfg.Remote.Feed.Enabled)
	assert.Empty(t, cfg.Remote.Feed.Addr)
}

func TestContains(t *testing.T) {
	assert.True(t, contains([]string{"a", "b"}, "b"))
	assert.False(t, contains([]string{"a"}, "z"))
}

func TestValidateInt(t *testing.T) {
	assert.NoError(t, validateInt("42"))
	assert.Error(t, validateInt("4.2"))
	assert.Error(t, validateInt("x"))
}
