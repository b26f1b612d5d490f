package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/streamflex/streamflex/pkg/host"
)

// feedBufSize is the per-client event buffer. Slow clients drop events rather
// than stalling the rerun loop, matching the event bus contract.
const feedBufSize = 64

// wireEvent is the JSON frame sent to feed clients.
type wireEvent struct {
	Kind      string    `json:"kind"`
	SessionID string    `json:"session_id,omitempty"`
	Plugin    string    `json:"plugin,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// Feed streams host events to WebSocket clients as JSON frames. Each
// connected client gets its own event bus subscription.
type Feed struct {
	bus    *host.EventBus
	logger *zap.Logger
}

// NewFeed creates a Feed over the given event bus.
func NewFeed(bus *host.EventBus, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		bus:    bus,
		logger: logger.With(zap.String("component", "event_feed")),
	}
}

// ServeHTTP upgrades the request to a WebSocket and streams events until the
// client disconnects or the request context ends.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		f.logger.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := r.Context()
	sub := f.bus.Subscribe(feedBufSize)
	defer f.bus.Unsubscribe(sub)

	f.logger.Info("feed client connected", zap.String("remote", r.RemoteAddr))

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub.C:
			if !ok {
				return
			}
			if err := f.write(ctx, conn, e); err != nil {
				f.logger.Info("feed client disconnected",
					zap.String("remote", r.RemoteAddr),
					zap.Error(err))
				return
			}
		}
	}
}

// write serializes one event and sends it as a text frame.
func (f *Feed) write(ctx context.Context, conn *websocket.Conn, e host.Event) error {
	we := wireEvent{
		Kind:      string(e.Kind),
		SessionID: e.SessionID,
		Plugin:    e.Plugin,
		Timestamp: e.Timestamp,
		Data:      e.Data,
	}

	b, err := json.Marshal(we)
	if err != nil {
		// Event payloads are host-controlled; an unmarshalable one is
		// downgraded to its string form rather than dropped.
		we.Data = fmt.Sprint(e.Data)
		if b, err = json.Marshal(we); err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
	}

	return conn.Write(ctx, websocket.MessageText, b)
}

// ListenAndServe serves the feed on addr until ctx is cancelled.
func (f *Feed) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           f,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return fmt.Errorf("remote: feed listen on %s: %w", addr, err)
	}
}
