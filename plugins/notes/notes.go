// Package notes is a small scratchpad plugin: a persistent text input with a
// clear button and a live preview. It exercises the momentary button kind and
// direct widget-manager access from a plugin.
package notes

import (
	"context"
	"time"

	"github.com/streamflex/streamflex/pkg/plugin"
	"github.com/streamflex/streamflex/pkg/widget"
)

// Plugin renders the shared scratchpad.
type Plugin struct {
	clock func() time.Time
}

// New creates the notes plugin.
func New() *Plugin {
	return &Plugin{clock: time.Now}
}

func (p *Plugin) Name() string    { return "notes" }
func (p *Plugin) Version() string { return "0.3.0" }

// Metadata describes the plugin for the registry.
func (p *Plugin) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        p.Name(),
		Version:     p.Version(),
		Description: "Session scratchpad published to the shared data store.",
		Tags:        []string{"demo"},
	}
}

func (p *Plugin) Run(_ context.Context, rc *plugin.RunContext) error {
	cleared, err := rc.Widget(widget.Spec{
		Kind:  widget.KindButton,
		Name:  "clear",
		Label: "Clear",
	}, false)
	if err != nil {
		return err
	}

	if cleared == true {
		if err := rc.Widgets().SetValue(widget.Key(p.Name(), "text"), ""); err != nil {
			return err
		}
	}

	v, err := rc.Widget(widget.Spec{
		Kind:  widget.KindTextInput,
		Name:  "text",
		Label: "Note",
	}, "")
	if err != nil {
		return err
	}

	text, _ := v.(string)
	rc.Data().Set("notes_text", text)
	rc.Data().Set("notes_updated", p.clock().Format(time.RFC3339))

	return nil
}
