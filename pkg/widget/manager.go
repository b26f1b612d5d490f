package widget

import (
	"fmt"
	"sort"
	"sync"
)

// entry is the persisted state of one widget. value holds the encoded form;
// defVal holds the encoded default for momentary kinds.
type entry struct {
	spec   Spec
	value  any
	defVal any
}

// Manager persists widget state for one user session. It is created with the
// session and destroyed with it. A rerun is bracketed by BeginPass/EndPass;
// Create calls in between build the frame in declaration order.
type Manager struct {
	mu      sync.Mutex
	entries map[string]*entry

	inPass bool
	pass   []Rendered
	seen   map[string]struct{}
}

// NewManager creates an empty widget manager for a fresh session.
func NewManager() *Manager {
	return &Manager{
		entries: make(map[string]*entry),
	}
}

// BeginPass starts collecting a new frame. Any widgets declared by a previous
// pass are discarded from the frame (their persisted values remain).
func (m *Manager) BeginPass() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.inPass = true
	m.pass = nil
	m.seen = make(map[string]struct{})
}

// EndPass finishes the current frame and returns the widgets in declaration
// order. Button values are momentary and reset to their defaults here, so the
// next rerun observes the button released.
func (m *Manager) EndPass() []Rendered {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.inPass = false
	frame := m.pass
	m.pass = nil
	m.seen = nil

	for _, r := range frame {
		e := m.entries[r.Key]
		if e != nil && e.spec.Kind == KindButton {
			e.value = e.defVal
		}
	}

	return frame
}

// Create declares a widget for the current pass and returns its current
// value. On the first declaration of a key the persisted state is initialized
// to def (encoded through the spec's Codec when present); on every
// declaration the stored value is decoded and returned. Declaring the same
// name twice within one pass is an error.
func (m *Manager) Create(plugin string, spec Spec, def any) (any, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	key := Key(plugin, spec.Name)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.inPass {
		if _, dup := m.seen[key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, key)
		}
		m.seen[key] = struct{}{}
	}

	e, ok := m.entries[key]
	if !ok {
		stored, err := encode(spec.Codec, def)
		if err != nil {
			return nil, fmt.Errorf("widget: %s: encode default: %w", key, err)
		}
		e = &entry{spec: spec, value: stored, defVal: stored}
		m.entries[key] = e
	} else {
		// The spec may evolve between reruns (label, bounds); the stored
		// value survives.
		e.spec = spec

		// Markdown is display-only: its content is whatever the plugin
		// declared this rerun, never a persisted interaction.
		if spec.Kind == KindMarkdown {
			stored, err := encode(spec.Codec, def)
			if err != nil {
				return nil, fmt.Errorf("widget: %s: encode content: %w", key, err)
			}
			e.value = stored
		}
	}

	v, err := decode(spec.Codec, e.value)
	if err != nil {
		return nil, fmt.Errorf("widget: %s: decode: %w", key, err)
	}

	if m.inPass {
		m.pass = append(m.pass, Rendered{Key: key, Plugin: plugin, Spec: spec, Value: v})
	}

	return v, nil
}

// SetValue stores the result of a user interaction with the widget identified
// by key. The value is encoded through the widget's Codec. Slider and number
// values are clamped to the declared bounds.
func (m *Manager) SetValue(key string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWidget, key)
	}

	v = clamp(e.spec, v)

	stored, err := encode(e.spec.Codec, v)
	if err != nil {
		return fmt.Errorf("widget: %s: encode: %w", key, err)
	}

	e.value = stored
	return nil
}

// Value returns the decoded current value for key and whether the widget
// exists.
func (m *Manager) Value(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}

	v, err := decode(e.spec.Codec, e.value)
	if err != nil {
		return nil, false
	}

	return v, true
}

// Keys returns a sorted slice of all persisted widget keys.
func (m *Manager) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// Reset discards all persisted widget state, as happens when a session ends.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]*entry)
	m.pass = nil
	m.seen = nil
	m.inPass = false
}

func encode(c *Codec, v any) (any, error) {
	if c == nil || c.Encode == nil {
		return v, nil
	}
	return c.Encode(v)
}

func decode(c *Codec, v any) (any, error) {
	if c == nil || c.Decode == nil {
		return v, nil
	}
	return c.Decode(v)
}

// clamp bounds numeric values for slider and number_input widgets.
func clamp(sp Spec, v any) any {
	if sp.Kind != KindSlider && sp.Kind != KindNumberInput {
		return v
	}

	switch n := v.(type) {
	case int:
		if f := clampFloat(sp, float64(n)); f != float64(n) {
			return int(f)
		}
		return n
	case float64:
		return clampFloat(sp, n)
	default:
		return v
	}
}

func clampFloat(sp Spec, f float64) float64 {
	if f < sp.Min {
		return sp.Min
	}
	if f > sp.Max {
		return sp.Max
	}
	return f
}
