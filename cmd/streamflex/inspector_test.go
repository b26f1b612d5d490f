package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotTextSortedKeys(t *testing.T) {
	text := snapshotText(map[string]any{
		"zeta":  1,
		"alpha": "hi",
	})
	assert.Equal(t, "alpha: \"hi\"\nzeta: 1\n", text)
}

func TestSnapshotTextEmpty(t *testing.T) {
	assert.Equal(t, "", snapshotText(nil))
}

func TestDiffSnapshotsNoChange(t *testing.T) {
	assert.Equal(t, "", diffSnapshots("a: 1\n", "a: 1\n"))
}

func TestDiffSnapshotsChange(t *testing.T) {
	before := "baseline_output: 60\nmonitor_alert: false\n"
	after := "baseline_output: 300\nmonitor_alert: true\n"

	diff := diffSnapshots(before, after)
	assert.Contains(t, diff, "-baseline_output: 60")
	assert.Contains(t, diff, "+baseline_output: 300")
	assert.Contains(t, diff, "+monitor_alert: true")
}

func TestRenderInspectorEmpty(t *testing.T) {
	out := renderInspector(nil, "")
	assert.Contains(t, out, "Shared data")
	assert.Contains(t, out, "(empty)")
}

func TestRenderInspectorWithDiff(t *testing.T) {
	out := renderInspector(map[string]any{"k": 1}, "+k: 1")
	assert.Contains(t, out, "k: 1")
	assert.Contains(t, out, "Last rerun")
}
