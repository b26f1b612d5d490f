// Package baseline is the canonical producer plugin: one persistent slider
// whose doubled value is published for other plugins to consume.
package baseline

import (
	"context"
	"fmt"

	"github.com/streamflex/streamflex/pkg/plugin"
	"github.com/streamflex/streamflex/pkg/widget"
)

// OutputKey is the data store key the plugin publishes under.
const OutputKey = "baseline_output"

// Plugin renders the baseline control slider.
type Plugin struct{}

// New creates the baseline plugin.
func New() *Plugin { return &Plugin{} }

func (p *Plugin) Name() string    { return "baseline" }
func (p *Plugin) Version() string { return "1.0.0" }

// Metadata describes the plugin for the registry.
func (p *Plugin) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        p.Name(),
		Version:     p.Version(),
		Description: "Baseline control slider feeding downstream plugins.",
		Tags:        []string{"demo", "producer"},
	}
}

func (p *Plugin) Run(_ context.Context, rc *plugin.RunContext) error {
	v, err := rc.Widget(widget.Spec{
		Kind:  widget.KindSlider,
		Name:  "control",
		Label: "Control Range:",
		Min:   0,
		Max:   100,
		Step:  1,
	}, 30)
	if err != nil {
		return err
	}

	n, ok := v.(int)
	if !ok {
		return fmt.Errorf("baseline: control value is %T, not int", v)
	}

	rc.Data().Set(OutputKey, n*2)
	return nil
}
