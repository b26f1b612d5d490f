package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// snapshotText renders a shared-data snapshot as sorted "key: value" lines so
// that consecutive snapshots diff cleanly.
func snapshotText(snap map[string]any) string {
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		v := snap[k]
		b, err := json.Marshal(v)
		if err != nil {
			sb.WriteString(fmt.Sprintf("%s: %v\n", k, v))
			continue
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", k, b))
	}
	return sb.String()
}

// diffSnapshots returns a unified diff between two snapshot texts, or "" when
// nothing changed.
func diffSnapshots(before, after string) string {
	if before == after {
		return ""
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "before rerun",
		ToFile:   "after rerun",
		Context:  2,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return strings.TrimRight(text, "\n")
}

// renderInspector builds the data inspector overlay: the current snapshot and
// the change introduced by the last rerun.
func renderInspector(snap map[string]any, lastDiff string) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Shared data"))
	sb.WriteString("\n")

	text := snapshotText(snap)
	if text == "" {
		sb.WriteString(dimStyle.Render("(empty)"))
	} else {
		sb.WriteString(strings.TrimRight(text, "\n"))
	}

	if lastDiff != "" {
		sb.WriteString("\n\n")
		sb.WriteString(titleStyle.Render("Last rerun"))
		sb.WriteString("\n")
		sb.WriteString(dimStyle.Render(lastDiff))
	}

	return inspectorStyle.Render(sb.String())
}
