// Package widget provides the per-session registry of persistent UI controls.
// Plugins declare widgets on every rerun; the manager persists each widget's
// value across reruns, applies optional encode/decode hooks, and collects the
// declaration order of one rerun into a frame for the dashboard to render.
package widget

import (
	"errors"
	"fmt"
)

// Kind identifies the control type a widget renders as.
type Kind string

const (
	KindSlider      Kind = "slider"
	KindTextInput   Kind = "text_input"
	KindNumberInput Kind = "number_input"
	KindSelect      Kind = "select"
	KindCheckbox    Kind = "checkbox"
	KindButton      Kind = "button"
	KindMarkdown    Kind = "markdown"
)

// Sentinel errors for widget operations.
var (
	ErrDuplicateName = errors.New("widget: duplicate widget name in rerun")
	ErrUnknownWidget = errors.New("widget: unknown widget")
	ErrInvalidSpec   = errors.New("widget: invalid spec")
)

// Codec converts between a plugin-facing value and its stored representation.
// Encode runs before a value is persisted; Decode runs on every read. A nil
// Codec stores values as-is.
type Codec struct {
	Encode func(v any) (any, error)
	Decode func(v any) (any, error)
}

// Spec describes one widget declaration. Name must be unique within the
// declaring plugin; the manager namespaces it with the plugin name.
type Spec struct {
	Kind    Kind
	Name    string
	Label   string
	Min     float64  // slider and number_input lower bound
	Max     float64  // slider and number_input upper bound
	Step    float64  // slider increment; 1 when zero
	Options []string // select choices
	Codec   *Codec
}

// validate checks that the spec is internally consistent.
func (sp Spec) validate() error {
	if sp.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSpec)
	}

	switch sp.Kind {
	case KindSlider, KindNumberInput:
		if sp.Max < sp.Min {
			return fmt.Errorf("%w: %s: max %v < min %v", ErrInvalidSpec, sp.Name, sp.Max, sp.Min)
		}
	case KindSelect:
		if len(sp.Options) == 0 {
			return fmt.Errorf("%w: %s: select requires options", ErrInvalidSpec, sp.Name)
		}
	case KindTextInput, KindCheckbox, KindButton, KindMarkdown:
	default:
		return fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidSpec, sp.Name, sp.Kind)
	}

	return nil
}

// Rendered is one widget as declared during a rerun, with its current value
// already decoded.
type Rendered struct {
	Key    string
	Plugin string
	Spec   Spec
	Value  any
}

// Key builds the session-scoped widget key from the owning plugin's name and
// the widget name.
func Key(plugin, name string) string {
	return plugin + "/" + name
}
