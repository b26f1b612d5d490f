package plugin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamflex/streamflex/pkg/data"
	"github.com/streamflex/streamflex/pkg/widget"
)

// fakePlugin is a minimal plugin for registry tests.
type fakePlugin struct {
	name    string
	version string
	runErr  error
	runs    int
}

func (p *fakePlugin) Name() string    { return p.name }
func (p *fakePlugin) Version() string { return p.version }

func (p *fakePlugin) Run(_ context.Context, _ *RunContext) error {
	p.runs++
	return p.runErr
}

// lifecyclePlugin additionally implements Initializer and Shutdowner.
type lifecyclePlugin struct {
	fakePlugin
	initErr     error
	shutdownErr error
	initCalls   int
	downCalls   int
}

func (p *lifecyclePlugin) Init(_ context.Context) error {
	p.initCalls++
	return p.initErr
}

func (p *lifecyclePlugin) Shutdown(_ context.Context) error {
	p.downCalls++
	return p.shutdownErr
}

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry(nil)
	p := &fakePlugin{name: "baseline", version: "1.0.0"}

	require.NoError(t, r.Register(p, Metadata{Description: "demo"}))

	info, ok := r.Get("baseline")
	require.True(t, ok)
	assert.Equal(t, "baseline", info.Metadata.Name)
	assert.Equal(t, "1.0.0", info.Metadata.Version)
	assert.Equal(t, StateRegistered, info.State)
}

func TestRegisterNil(t *testing.T) {
	r := NewRegistry(nil)
	require.Error(t, r.Register(nil, Metadata{}))
}

func TestRegisterEmptyName(t *testing.T) {
	r := NewRegistry(nil)
	require.Error(t, r.Register(&fakePlugin{}, Metadata{}))
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(&fakePlugin{name: "p", version: "1"}, Metadata{}))

	err := r.Register(&fakePlugin{name: "p", version: "2"}, Metadata{})
	require.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestListKeepsRegistrationOrder(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(&fakePlugin{name: "zeta", version: "1"}, Metadata{}))
	require.NoError(t, r.Register(&fakePlugin{name: "alpha", version: "1"}, Metadata{}))

	infos := r.List()
	require.Len(t, infos, 2)
	assert.Equal(t, "zeta", infos[0].Metadata.Name)
	assert.Equal(t, "alpha", infos[1].Metadata.Name)
}

func TestUnregister(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(&fakePlugin{name: "p", version: "1"}, Metadata{}))

	require.NoError(t, r.Unregister(context.Background(), "p"))

	_, ok := r.Get("p")
	assert.False(t, ok)
	assert.Empty(t, r.List())
}

func TestUnregisterNotFound(t *testing.T) {
	r := NewRegistry(nil)
	err := r.Unregister(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUnregisterShutsDownInitialized(t *testing.T) {
	r := NewRegistry(nil)
	p := &lifecyclePlugin{fakePlugin: fakePlugin{name: "p", version: "1"}}
	require.NoError(t, r.Register(p, Metadata{}))
	require.NoError(t, r.InitAll(context.Background()))

	require.NoError(t, r.Unregister(context.Background(), "p"))
	assert.Equal(t, 1, p.downCalls)
}

func TestSearchByTag(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(&fakePlugin{name: "b", version: "1"}, Metadata{Tags: []string{"charts"}}))
	require.NoError(t, r.Register(&fakePlugin{name: "a", version: "1"}, Metadata{Tags: []string{"charts", "demo"}}))
	require.NoError(t, r.Register(&fakePlugin{name: "c", version: "1"}, Metadata{Tags: []string{"io"}}))

	got := r.Search([]string{"charts"})
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Metadata.Name)
	assert.Equal(t, "b", got[1].Metadata.Name)

	assert.Nil(t, r.Search(nil))
}

func TestInitAll(t *testing.T) {
	r := NewRegistry(nil)
	lp := &lifecyclePlugin{fakePlugin: fakePlugin{name: "with-init", version: "1"}}
	plain := &fakePlugin{name: "plain", version: "1"}
	require.NoError(t, r.Register(lp, Metadata{}))
	require.NoError(t, r.Register(plain, Metadata{}))

	require.NoError(t, r.InitAll(context.Background()))

	assert.Equal(t, 1, lp.initCalls)

	info, _ := r.Get("with-init")
	assert.Equal(t, StateInitialized, info.State)
	info, _ = r.Get("plain")
	assert.Equal(t, StateInitialized, info.State)
}

func TestInitAllCollectsFailures(t *testing.T) {
	r := NewRegistry(nil)
	bad := &lifecyclePlugin{
		fakePlugin: fakePlugin{name: "bad", version: "1"},
		initErr:    errors.New("no database"),
	}
	good := &fakePlugin{name: "good", version: "1"}
	require.NoError(t, r.Register(bad, Metadata{}))
	require.NoError(t, r.Register(good, Metadata{}))

	err := r.InitAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")

	info, _ := r.Get("bad")
	assert.Equal(t, StateFailed, info.State)
	info, _ = r.Get("good")
	assert.Equal(t, StateInitialized, info.State)
}

func TestShutdownAll(t *testing.T) {
	r := NewRegistry(nil)
	lp := &lifecyclePlugin{fakePlugin: fakePlugin{name: "p", version: "1"}}
	require.NoError(t, r.Register(lp, Metadata{}))
	require.NoError(t, r.InitAll(context.Background()))

	require.NoError(t, r.ShutdownAll(context.Background()))
	assert.Equal(t, 1, lp.downCalls)

	info, _ := r.Get("p")
	assert.Equal(t, StateShutdown, info.State)
}

func TestShutdownAllCollectsFailures(t *testing.T) {
	r := NewRegistry(nil)
	lp := &lifecyclePlugin{
		fakePlugin:  fakePlugin{name: "p", version: "1"},
		shutdownErr: errors.New("stuck"),
	}
	require.NoError(t, r.Register(lp, Metadata{}))
	require.NoError(t, r.InitAll(context.Background()))

	err := r.ShutdownAll(context.Background())
	require.Error(t, err)
}

func TestRunContextNamespacesWidgets(t *testing.T) {
	store := &data.Store{}
	wm := widget.NewManager()
	rc := NewRunContext("baseline", store, wm)

	assert.Equal(t, "baseline", rc.PluginName())
	assert.Same(t, store, rc.Data())

	v, err := rc.Widget(widget.Spec{
		Kind:  widget.KindSlider,
		Name:  "control",
		Label: "Control Range:",
		Min:   0,
		Max:   100,
	}, 30)
	require.NoError(t, err)
	assert.Equal(t, 30, v)

	_, ok := wm.Value(widget.Key("baseline", "control"))
	assert.True(t, ok)
}
