package host

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/streamflex/streamflex/pkg/plugin"
	"github.com/streamflex/streamflex/pkg/widget"
)

// Session represents one user's dashboard. It owns the session's widget state
// and the rerun loop. Only one Rerun call may be active at a time.
type Session struct {
	id      string
	host    *Host
	widgets *widget.Manager

	mu     sync.Mutex
	active bool
	frame  []widget.Rendered
}

func newSession(id string, h *Host) *Session {
	return &Session{
		id:      id,
		host:    h,
		widgets: widget.NewManager(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Widgets returns the session's widget manager.
func (s *Session) Widgets() *widget.Manager { return s.widgets }

// Frame returns the widget frame produced by the most recent Rerun.
func (s *Session) Frame() []widget.Rendered {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.frame
}

// Rerun executes every enabled plugin in registration order against this
// session and returns the resulting widget frame. A plugin error is published
// and logged but does not abort the frame; the remaining plugins still run.
// Only one Rerun may be active per session.
func (s *Session) Rerun(ctx context.Context) ([]widget.Rendered, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	s.host.events.Publish(Event{
		Kind:      EventRerunStart,
		SessionID: s.id,
		Timestamp: now(),
	})

	s.widgets.BeginPass()

	for _, info := range s.host.enabledPlugins() {
		name := info.Metadata.Name
		rc := plugin.NewRunContext(name, s.host.store, s.widgets)

		if err := info.Plugin.Run(ctx, rc); err != nil {
			s.host.logger.Warn("plugin run failed",
				zap.String("session_id", s.id),
				zap.String("plugin", name),
				zap.Error(err))
			s.host.events.Publish(Event{
				Kind:      EventPluginError,
				SessionID: s.id,
				Plugin:    name,
				Timestamp: now(),
				Data:      err.Error(),
			})
		}

		if ctx.Err() != nil {
			s.widgets.EndPass()
			return nil, ctx.Err()
		}
	}

	frame := s.widgets.EndPass()

	s.mu.Lock()
	s.frame = frame
	s.mu.Unlock()

	s.host.events.Publish(Event{
		Kind:      EventRerunEnd,
		SessionID: s.id,
		Timestamp: now(),
		Data:      len(frame),
	})

	return frame, nil
}

// SetWidget stores a user interaction without triggering a rerun.
func (s *Session) SetWidget(key string, v any) error {
	if err := s.widgets.SetValue(key, v); err != nil {
		return err
	}

	s.host.events.Publish(Event{
		Kind:      EventWidgetChanged,
		SessionID: s.id,
		Timestamp: now(),
		Data:      key,
	})

	return nil
}

// Interact stores a user interaction and triggers the rerun it implies,
// returning the fresh frame. This is the path the dashboard takes on every
// widget change.
func (s *Session) Interact(ctx context.Context, key string, v any) ([]widget.Rendered, error) {
	if err := s.SetWidget(key, v); err != nil {
		return nil, err
	}
	return s.Rerun(ctx)
}

func (s *Session) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return fmt.Errorf("host: session %s: another rerun is already active", s.id)
	}
	s.active = true
	return nil
}

func (s *Session) release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = false
}

func now() time.Time { return time.Now() }
