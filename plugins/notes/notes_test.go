package notes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamflex/streamflex/pkg/data"
	"github.com/streamflex/streamflex/pkg/plugin"
	"github.com/streamflex/streamflex/pkg/widget"
)

func newRunContext() (*plugin.RunContext, *data.Store, *widget.Manager) {
	store := &data.Store{}
	wm := widget.NewManager()
	return plugin.NewRunContext("notes", store, wm), store, wm
}

func TestRunPublishesText(t *testing.T) {
	rc, store, wm := newRunContext()
	p := New()
	p.clock = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }

	require.NoError(t, p.Run(context.Background(), rc))
	require.NoError(t, wm.SetValue(widget.Key("notes", "text"), "remember the milk"))
	require.NoError(t, p.Run(context.Background(), rc))

	v, ok := store.Get("notes_text")
	require.True(t, ok)
	assert.Equal(t, "remember the milk", v)

	ts, ok := store.Get("notes_updated")
	require.True(t, ok)
	assert.Equal(t, "2026-06-01T12:00:00Z", ts)
}

func TestClearButtonEmptiesText(t *testing.T) {
	rc, store, wm := newRunContext()
	p := New()

	// Establish state, type something, then press clear.
	require.NoError(t, p.Run(context.Background(), rc))
	require.NoError(t, wm.SetValue(widget.Key("notes", "text"), "draft"))
	require.NoError(t, wm.SetValue(widget.Key("notes", "clear"), true))

	wm.BeginPass()
	require.NoError(t, p.Run(context.Background(), rc))
	wm.EndPass()

	v, _ := store.Get("notes_text")
	assert.Equal(t, "", v)

	// Button released on the following rerun; text stays cleared.
	wm.BeginPass()
	require.NoError(t, p.Run(context.Background(), rc))
	frame := wm.EndPass()

	assert.Equal(t, false, frame[0].Value)
}

func TestRunDeclaresWidgetsInOrder(t *testing.T) {
	rc, _, wm := newRunContext()
	p := New()

	wm.BeginPass()
	require.NoError(t, p.Run(context.Background(), rc))
	frame := wm.EndPass()

	require.Len(t, frame, 2)
	assert.Equal(t, widget.KindButton, frame[0].Spec.Kind)
	assert.Equal(t, widget.KindTextInput, frame[1].Spec.Kind)
}
