package plugin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Sentinel errors for the plugin registry.
var (
	ErrAlreadyRegistered = errors.New("plugin already registered")
	ErrNotFound          = errors.New("plugin not found")
)

// State represents the lifecycle state of a registered plugin.
type State string

const (
	StateRegistered  State = "registered"
	StateInitialized State = "initialized"
	StateFailed      State = "failed"
	StateShutdown    State = "shutdown"
)

// Info bundles a plugin instance with its metadata and current state.
type Info struct {
	Plugin   Plugin   `json:"-"`
	Metadata Metadata `json:"metadata"`
	State    State    `json:"state"`
}

// Registry is a thread-safe in-memory plugin registry. The host resolves the
// rerun order from List, which preserves registration order.
type Registry struct {
	plugins map[string]*Info
	order   []string
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		plugins: make(map[string]*Info),
		logger:  logger.With(zap.String("component", "plugin_registry")),
	}
}

// Register adds a plugin in the Registered state. Metadata name and version
// default to the plugin's own when empty.
func (r *Registry) Register(p Plugin, md Metadata) error {
	if p == nil {
		return fmt.Errorf("plugin must not be nil")
	}
	name := p.Name()
	if name == "" {
		return fmt.Errorf("plugin name must not be empty")
	}
	if md.Name == "" {
		md.Name = name
	}
	if md.Version == "" {
		md.Version = p.Version()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}

	r.plugins[name] = &Info{
		Plugin:   p,
		Metadata: md,
		State:    StateRegistered,
	}
	r.order = append(r.order, name)

	r.logger.Info("plugin registered",
		zap.String("name", name),
		zap.String("version", md.Version))
	return nil
}

// Unregister removes a plugin. If it was initialized and implements
// Shutdowner, Shutdown is called first.
func (r *Registry) Unregister(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, exists := r.plugins[name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	if info.State == StateInitialized {
		if sd, ok := info.Plugin.(Shutdowner); ok {
			if err := sd.Shutdown(ctx); err != nil {
				r.logger.Warn("plugin shutdown failed during unregister",
					zap.String("name", name),
					zap.Error(err))
			}
		}
	}

	delete(r.plugins, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	r.logger.Info("plugin unregistered", zap.String("name", name))
	return nil
}

// Get returns plugin info by name.
func (r *Registry) Get(name string) (*Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.plugins[name]
	return info, ok
}

// List returns all plugins in registration order. Registration order is the
// rerun order, matching the top-to-bottom layout of the dashboard.
func (r *Registry) List() []*Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Info, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.plugins[name])
	}
	return result
}

// Search returns plugins that match any of the provided tags, sorted by name.
func (r *Registry) Search(tags []string) []*Info {
	if len(tags) == 0 {
		return nil
	}
	tagSet := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		tagSet[t] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Info
	for _, info := range r.plugins {
		for _, t := range info.Metadata.Tags {
			if _, ok := tagSet[t]; ok {
				result = append(result, info)
				break
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Metadata.Name < result[j].Metadata.Name
	})
	return result
}

// InitAll initializes all plugins in the Registered state that implement
// Initializer. Errors from individual plugins are logged but do not stop the
// batch; plugins without an Init step move straight to Initialized.
func (r *Registry) InitAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, name := range r.order {
		info := r.plugins[name]
		if info.State != StateRegistered {
			continue
		}

		if init, ok := info.Plugin.(Initializer); ok {
			if err := init.Init(ctx); err != nil {
				info.State = StateFailed
				r.logger.Error("plugin init failed",
					zap.String("name", name),
					zap.Error(err))
				errs = append(errs, fmt.Errorf("init plugin %s: %w", name, err))
				continue
			}
		}

		info.State = StateInitialized
		r.logger.Info("plugin initialized", zap.String("name", name))
	}

	return errors.Join(errs...)
}

// ShutdownAll shuts down all initialized plugins that implement Shutdowner.
// Errors from individual plugins are logged but do not stop the batch.
func (r *Registry) ShutdownAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, name := range r.order {
		info := r.plugins[name]
		if info.State != StateInitialized {
			continue
		}

		if sd, ok := info.Plugin.(Shutdowner); ok {
			if err := sd.Shutdown(ctx); err != nil {
				r.logger.Error("plugin shutdown failed",
					zap.String("name", name),
					zap.Error(err))
				errs = append(errs, fmt.Errorf("shutdown plugin %s: %w", name, err))
				continue
			}
		}

		info.State = StateShutdown
		r.logger.Info("plugin shut down", zap.String("name", name))
	}

	return errors.Join(errs...)
}
