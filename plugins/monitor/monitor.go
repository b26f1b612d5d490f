// Package monitor consumes the baseline output and renders an alert summary.
// It demonstrates the consumer side of cross-plugin data exchange, including
// the unavailable-data error path when the producer has not published yet.
package monitor

import (
	"context"
	"fmt"
	"strconv"

	"github.com/streamflex/streamflex/pkg/plugin"
	"github.com/streamflex/streamflex/pkg/widget"
)

// defaultThreshold is the alert threshold when no setting is configured.
const defaultThreshold = 120

// Plugin watches a data key and flags values above its threshold.
type Plugin struct {
	watchKey  string
	threshold int
}

// New creates a monitor for the given data key. Settings may carry a
// "threshold" override as a decimal string.
func New(watchKey string, settings map[string]string) (*Plugin, error) {
	threshold := defaultThreshold
	if raw, ok := settings["threshold"]; ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("monitor: threshold setting: %w", err)
		}
		threshold = n
	}

	return &Plugin{
		watchKey:  watchKey,
		threshold: threshold,
	}, nil
}

func (p *Plugin) Name() string    { return "monitor" }
func (p *Plugin) Version() string { return "1.1.0" }

// Metadata describes the plugin for the registry.
func (p *Plugin) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        p.Name(),
		Version:     p.Version(),
		Description: "Watches a shared data key and flags values over the threshold.",
		Tags:        []string{"demo", "consumer"},
	}
}

func (p *Plugin) Run(_ context.Context, rc *plugin.RunContext) error {
	enabled, err := rc.Widget(widget.Spec{
		Kind:  widget.KindCheckbox,
		Name:  "alerts",
		Label: "Alerts enabled",
	}, true)
	if err != nil {
		return err
	}

	mode, err := rc.Widget(widget.Spec{
		Kind:    widget.KindSelect,
		Name:    "mode",
		Label:   "Display",
		Options: []string{"summary", "detailed"},
	}, "summary")
	if err != nil {
		return err
	}

	v, err := rc.Data().Require(p.watchKey)
	if err != nil {
		// Still render something useful, then surface the missing
		// dependency to the host log.
		if _, werr := rc.Widget(widget.Spec{
			Kind: widget.KindMarkdown,
			Name: "status",
		}, "_Waiting for `"+p.watchKey+"`..._"); werr != nil {
			return werr
		}
		return err
	}

	n, ok := v.(int)
	if !ok {
		return fmt.Errorf("monitor: %s is %T, not int", p.watchKey, v)
	}

	body := p.render(n, mode == "detailed", enabled == true)
	if _, err := rc.Widget(widget.Spec{
		Kind: widget.KindMarkdown,
		Name: "status",
	}, body); err != nil {
		return err
	}

	rc.Data().Set("monitor_alert", enabled == true && n > p.threshold)
	return nil
}

// render builds the markdown body for the status widget.
func (p *Plugin) render(n int, detailed, enabled bool) string {
	state := "ok"
	if n > p.threshold {
		state = "ALERT"
	}
	if !enabled {
		state = "muted"
	}

	if !detailed {
		return fmt.Sprintf("**%s** — `%s` = %d", state, p.watchKey, n)
	}

	return fmt.Sprintf(
		"**%s**\n\n| key | value | threshold |\n| --- | --- | --- |\n| `%s` | %d | %d |",
		state, p.watchKey, n, p.threshold,
	)
}
