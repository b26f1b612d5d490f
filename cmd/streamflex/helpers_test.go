package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsFloat(t *testing.T) {
	tests := []struct {
		input    any
		expected float64
		ok       bool
	}{
		{42, 42, true},
		{int64(7), 7, true},
		{3.5, 3.5, true},
		{float32(2), 2, true},
		{"nope", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, tt := range tests {
		f, ok := asFloat(tt.input)
		assert.Equal(t, tt.ok, ok, "asFloat(%v)", tt.input)
		assert.Equal(t, tt.expected, f, "asFloat(%v)", tt.input)
	}
}

func TestFmtValue(t *testing.T) {
	tests := []struct {
		input    any
		expected string
	}{
		{nil, ""},
		{"text", "text"},
		{true, "true"},
		{30, "30"},
		{60.0, "60"},
		{2.5, "2.5"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, fmtValue(tt.input), "fmtValue(%v)", tt.input)
	}
}

func TestParseNumber(t *testing.T) {
	n, err := parseNumber("42")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	f, err := parseNumber("2.5")
	require.NoError(t, err)
	assert.Equal(t, 2.5, f)

	_, err = parseNumber("abc")
	assert.Error(t, err)
}

func TestResolveConfigPath(t *testing.T) {
	assert.Equal(t, "custom.yaml", resolveConfigPath("custom.yaml", ".streamflex"))

	dir := t.TempDir()
	assert.Equal(t, "streamflex.yaml", resolveConfigPath("", dir))

	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("title: t\n"), 0o644))
	assert.Equal(t, cfg, resolveConfigPath("", dir))
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}
