// Package plugin defines the contract a StreamFlex plugin implements and the
// registry the host resolves plugins from.
package plugin

import (
	"context"

	"github.com/streamflex/streamflex/pkg/data"
	"github.com/streamflex/streamflex/pkg/widget"
)

// Plugin is one self-contained dashboard unit. Run is invoked on every rerun
// of a session; it declares widgets through the RunContext and exchanges
// values with other plugins through the shared data store.
type Plugin interface {
	// Name returns the unique plugin name. It namespaces the plugin's widgets.
	Name() string
	// Version returns the plugin version string.
	Version() string
	// Run executes one rerun of the plugin against a session.
	Run(ctx context.Context, rc *RunContext) error
}

// Initializer is implemented by plugins that need setup before their first
// run.
type Initializer interface {
	Init(ctx context.Context) error
}

// Shutdowner is implemented by plugins that hold resources to release when
// the host closes.
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// Metadata holds descriptive information about a plugin. Name and Version are
// required; the registry fills them from the plugin itself when empty.
type Metadata struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description,omitempty"`
	Author      string   `json:"author,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// RunContext carries the two collaborator managers into one plugin rerun.
// Widget declarations made through it are namespaced by the plugin's name.
type RunContext struct {
	pluginName string
	data       *data.Store
	widgets    *widget.Manager
}

// NewRunContext builds a RunContext for one plugin rerun.
func NewRunContext(pluginName string, d *data.Store, w *widget.Manager) *RunContext {
	return &RunContext{
		pluginName: pluginName,
		data:       d,
		widgets:    w,
	}
}

// PluginName returns the name of the plugin this context was built for.
func (rc *RunContext) PluginName() string { return rc.pluginName }

// Data returns the cross-plugin data store.
func (rc *RunContext) Data() *data.Store { return rc.data }

// Widgets returns the session's widget manager. Prefer Widget for
// declarations; direct access is for inspection.
func (rc *RunContext) Widgets() *widget.Manager { return rc.widgets }

// Widget declares a persistent widget for this rerun and returns its current
// value. The key is namespaced with the plugin name automatically.
func (rc *RunContext) Widget(spec widget.Spec, def any) (any, error) {
	return rc.widgets.Create(rc.pluginName, spec, def)
}
