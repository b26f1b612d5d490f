package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/streamflex/streamflex/pkg/host"
	"github.com/streamflex/streamflex/pkg/widget"
)

// rerunDoneMsg is returned by the tea.Cmd that runs the plugin pass.
type rerunDoneMsg struct {
	frame    []widget.Rendered
	err      error
	duration time.Duration
}

// hostEventMsg delivers one event from the host bus bridge goroutine.
type hostEventMsg struct {
	event host.Event
}

// feedStoppedMsg signals that the WebSocket event feed listener exited.
type feedStoppedMsg struct {
	err error
}

// refreshTickMsg fires every config refresh interval to rerun plugins whose
// data changes without user interaction.
type refreshTickMsg struct{}

// programReadyMsg passes the *tea.Program to the model so it can start the
// event bridge goroutine.
type programReadyMsg struct {
	program *tea.Program
}
