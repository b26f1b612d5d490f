package main

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/streamflex/streamflex/pkg/host"
)

// startBridge launches the event watcher goroutine. It only calls p.Send() —
// it never touches model state directly. Returns a cancel function that stops
// the bridge and waits for the goroutine to exit, ensuring no stale messages
// are sent after return.
func startBridge(ctx context.Context, p *tea.Program, events *host.EventBus) context.CancelFunc {
	bridgeCtx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	sub := events.Subscribe(64)

	wg.Go(func() {
		defer events.Unsubscribe(sub)
		for {
			select {
			case <-bridgeCtx.Done():
				return
			case ev, ok := <-sub.C:
				if !ok {
					return
				}
				switch ev.Kind {
				case host.EventPluginError, host.EventWidgetChanged, host.EventError:
					p.Send(hostEventMsg{event: ev})
				}
			}
		}
	})

	return func() {
		cancel()
		wg.Wait()
	}
}
