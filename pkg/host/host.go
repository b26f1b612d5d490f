// Package host is the composition root of StreamFlex. It owns the shared data
// store, the plugin registry, the event bus, and the per-user sessions, and
// exposes them through a frontend-agnostic API.
package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/streamflex/streamflex/pkg/data"
	"github.com/streamflex/streamflex/pkg/plugin"
	"github.com/streamflex/streamflex/pkg/tools/toolbox"
)

// Host assembles the framework components and manages session lifecycles.
type Host struct {
	cfg      Config
	logger   *zap.Logger
	events   *EventBus
	store    *data.Store
	registry *plugin.Registry

	mu       sync.Mutex
	sessions map[string]*Session
}

// Options tune Host construction.
type Options struct {
	// Logger receives structured host logs. Nil means no logging.
	Logger *zap.Logger
}

// New creates a Host from the given configuration. Plugins are registered
// afterwards with Register and initialized with Start.
func New(cfg Config, opts Options) (*Host, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Host{
		cfg:      cfg,
		logger:   logger.With(zap.String("component", "host")),
		events:   NewEventBus(),
		store:    &data.Store{},
		registry: plugin.NewRegistry(logger),
		sessions: make(map[string]*Session),
	}, nil
}

// Config returns the host configuration.
func (h *Host) Config() Config { return h.cfg }

// Events returns the host's event bus.
func (h *Host) Events() *EventBus { return h.events }

// Data returns the cross-plugin data store.
func (h *Host) Data() *data.Store { return h.store }

// Registry returns the plugin registry.
func (h *Host) Registry() *plugin.Registry { return h.registry }

// Register adds a plugin to the host's registry.
func (h *Host) Register(p plugin.Plugin, md plugin.Metadata) error {
	return h.registry.Register(p, md)
}

// Start initializes all registered plugins. Individual init failures are
// collected; failed plugins are skipped by reruns.
func (h *Host) Start(ctx context.Context) error {
	return h.registry.InitAll(ctx)
}

// Close shuts down plugins and releases resources.
func (h *Host) Close(ctx context.Context) error {
	return h.registry.ShutdownAll(ctx)
}

// DataTools returns the toolbox the remote automation surface serves.
func (h *Host) DataTools() *toolbox.ToolBox {
	return h.store.Tools("streamflex")
}

// NewSession creates a new user session with empty widget state.
func (h *Host) NewSession() *Session {
	id := uuid.NewString()
	s := newSession(id, h)

	h.mu.Lock()
	h.sessions[id] = s
	h.mu.Unlock()

	h.logger.Info("session created", zap.String("session_id", id))
	h.events.Publish(Event{Kind: EventSessionCreated, SessionID: id, Timestamp: now()})

	return s
}

// Session returns an existing session by ID.
func (h *Host) Session(id string) (*Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[id]
	return s, ok
}

// RemoveSession destroys a session and its widget state.
func (h *Host) RemoveSession(id string) error {
	h.mu.Lock()
	s, ok := h.sessions[id]
	if ok {
		delete(h.sessions, id)
	}
	h.mu.Unlock()

	if !ok {
		return fmt.Errorf("host: session %s not found", id)
	}

	s.widgets.Reset()
	h.logger.Info("session removed", zap.String("session_id", id))
	h.events.Publish(Event{Kind: EventSessionRemoved, SessionID: id, Timestamp: now()})

	return nil
}

// enabledPlugins returns registered plugins in rerun order, honoring the
// config's disabled flags and skipping plugins whose init failed.
func (h *Host) enabledPlugins() []*plugin.Info {
	var out []*plugin.Info
	for _, info := range h.registry.List() {
		if info.State == plugin.StateFailed || info.State == plugin.StateShutdown {
			continue
		}
		if !h.cfg.Enabled(info.Metadata.Name) {
			continue
		}
		out = append(out, info)
	}
	return out
}
