package main

import (
	"fmt"
	"time"

	"github.com/streamflex/streamflex/cmd/streamflex/internal/format"
)

// statusBarModel shows session, rerun timing and error information.
type statusBarModel struct {
	sessionID string
	plugins   int
	widgets   int
	duration  time.Duration
	busy      bool
	lastError string
}

func newStatusBar(sessionID string, plugins int) statusBarModel {
	return statusBarModel{sessionID: sessionID, plugins: plugins}
}

func (m statusBarModel) View() string {
	short := m.sessionID
	if len(short) > 8 {
		short = short[:8]
	}

	line := fmt.Sprintf(" session %s · %d plugins · %d widgets", short, m.plugins, m.widgets)

	switch {
	case m.busy:
		line += " · rerunning..."
	case m.duration > 0:
		line += fmt.Sprintf(" · rerun %s", format.FmtDuration(m.duration))
	}

	out := statusStyle.Render(line)
	if m.lastError != "" {
		out += "\n" + errorBlockStyle.Render(format.Truncate(m.lastError, 120))
	}
	return out
}
