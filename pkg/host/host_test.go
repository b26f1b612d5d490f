package host

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamflex/streamflex/pkg/plugin"
	"github.com/streamflex/streamflex/pkg/widget"
)

// sliderPlugin declares one slider and publishes twice its value, mirroring
// the classic producer plugin.
type sliderPlugin struct {
	name string
}

func (p *sliderPlugin) Name() string    { return p.name }
func (p *sliderPlugin) Version() string { return "1.0.0" }

func (p *sliderPlugin) Run(_ context.Context, rc *plugin.RunContext) error {
	v, err := rc.Widget(widget.Spec{
		Kind:  widget.KindSlider,
		Name:  "control",
		Label: "Control Range:",
		Min:   0,
		Max:   100,
	}, 30)
	if err != nil {
		return err
	}

	rc.Data().Set(p.name+"_output", v.(int)*2)
	return nil
}

// consumerPlugin requires the producer's output and republishes it.
type consumerPlugin struct {
	producerKey string
	lastErr     error
}

func (p *consumerPlugin) Name() string    { return "consumer" }
func (p *consumerPlugin) Version() string { return "1.0.0" }

func (p *consumerPlugin) Run(_ context.Context, rc *plugin.RunContext) error {
	v, err := rc.Data().Require(p.producerKey)
	if err != nil {
		p.lastErr = err
		return err
	}

	rc.Data().Set("consumer_seen", v)
	return nil
}

// failingPlugin always errors.
type failingPlugin struct{}

func (p *failingPlugin) Name() string    { return "failing" }
func (p *failingPlugin) Version() string { return "0.1.0" }

func (p *failingPlugin) Run(_ context.Context, _ *plugin.RunContext) error {
	return errors.New("boom")
}

func newTestHost(t *testing.T, cfg Config, plugins ...plugin.Plugin) *Host {
	t.Helper()

	h, err := New(cfg, Options{})
	require.NoError(t, err)

	for _, p := range plugins {
		require.NoError(t, h.Register(p, plugin.Metadata{}))
	}
	require.NoError(t, h.Start(context.Background()))

	return h
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{Plugins: []PluginConfig{{Name: "a"}, {Name: "a"}}}, Options{})
	require.Error(t, err)
}

func TestSessionLifecycle(t *testing.T) {
	h := newTestHost(t, Config{})

	s := h.NewSession()
	require.NotEmpty(t, s.ID())

	got, ok := h.Session(s.ID())
	require.True(t, ok)
	assert.Same(t, s, got)

	require.NoError(t, h.RemoveSession(s.ID()))
	_, ok = h.Session(s.ID())
	assert.False(t, ok)

	require.Error(t, h.RemoveSession(s.ID()))
}

func TestRerunProducesFrame(t *testing.T) {
	h := newTestHost(t, Config{}, &sliderPlugin{name: "baseline"})
	s := h.NewSession()

	frame, err := s.Rerun(context.Background())
	require.NoError(t, err)
	require.Len(t, frame, 1)

	assert.Equal(t, "baseline/control", frame[0].Key)
	assert.Equal(t, 30, frame[0].Value)

	// The producer published its doubled value.
	v, ok := h.Data().Get("baseline_output")
	require.True(t, ok)
	assert.Equal(t, 60, v)
}

func TestInteractRerunsWithNewValue(t *testing.T) {
	h := newTestHost(t, Config{}, &sliderPlugin{name: "baseline"})
	s := h.NewSession()

	_, err := s.Rerun(context.Background())
	require.NoError(t, err)

	frame, err := s.Interact(context.Background(), "baseline/control", 45)
	require.NoError(t, err)
	require.Len(t, frame, 1)
	assert.Equal(t, 45, frame[0].Value)

	v, _ := h.Data().Get("baseline_output")
	assert.Equal(t, 90, v)
}

func TestRerunOrderIsRegistrationOrder(t *testing.T) {
	producer := &sliderPlugin{name: "baseline"}
	consumer := &consumerPlugin{producerKey: "baseline_output"}
	h := newTestHost(t, Config{}, producer, consumer)
	s := h.NewSession()

	_, err := s.Rerun(context.Background())
	require.NoError(t, err)

	// Consumer ran after producer within the same rerun.
	v, ok := h.Data().Get("consumer_seen")
	require.True(t, ok)
	assert.Equal(t, 60, v)
}

func TestPluginErrorDoesNotAbortFrame(t *testing.T) {
	h := newTestHost(t, Config{}, &failingPlugin{}, &sliderPlugin{name: "baseline"})
	s := h.NewSession()

	sub := h.Events().Subscribe(16)
	defer h.Events().Unsubscribe(sub)

	frame, err := s.Rerun(context.Background())
	require.NoError(t, err)
	require.Len(t, frame, 1)

	var sawError bool
	for done := false; !done; {
		select {
		case e := <-sub.C:
			if e.Kind == EventPluginError && e.Plugin == "failing" {
				sawError = true
			}
			if e.Kind == EventRerunEnd {
				done = true
			}
		default:
			done = true
		}
	}
	assert.True(t, sawError)
}

func TestConsumerBeforeProducerLogsUnavailable(t *testing.T) {
	consumer := &consumerPlugin{producerKey: "baseline_output"}
	producer := &sliderPlugin{name: "baseline"}
	// Consumer registered first, so its first rerun runs before the producer
	// has published.
	h := newTestHost(t, Config{}, consumer, producer)
	s := h.NewSession()

	_, err := s.Rerun(context.Background())
	require.NoError(t, err)
	require.Error(t, consumer.lastErr)

	// On the second rerun the producer's value from the first rerun is there.
	_, err = s.Rerun(context.Background())
	require.NoError(t, err)
	v, ok := h.Data().Get("consumer_seen")
	require.True(t, ok)
	assert.Equal(t, 60, v)
}

func TestDisabledPluginSkipped(t *testing.T) {
	cfg := Config{Plugins: []PluginConfig{{Name: "baseline", Disabled: true}}}
	h := newTestHost(t, cfg, &sliderPlugin{name: "baseline"})
	s := h.NewSession()

	frame, err := s.Rerun(context.Background())
	require.NoError(t, err)
	assert.Empty(t, frame)

	_, ok := h.Data().Get("baseline_output")
	assert.False(t, ok)
}

func TestSessionsAreIsolated(t *testing.T) {
	h := newTestHost(t, Config{}, &sliderPlugin{name: "baseline"})

	s1 := h.NewSession()
	s2 := h.NewSession()

	_, err := s1.Rerun(context.Background())
	require.NoError(t, err)
	_, err = s2.Rerun(context.Background())
	require.NoError(t, err)

	frame, err := s1.Interact(context.Background(), "baseline/control", 80)
	require.NoError(t, err)
	assert.Equal(t, 80, frame[0].Value)

	// Session 2 keeps its own widget state.
	frame2, err := s2.Rerun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 30, frame2[0].Value)
}

func TestSetWidgetUnknownKey(t *testing.T) {
	h := newTestHost(t, Config{}, &sliderPlugin{name: "baseline"})
	s := h.NewSession()

	err := s.SetWidget("nope/none", 1)
	require.ErrorIs(t, err, widget.ErrUnknownWidget)
}

func TestRerunCancelledContext(t *testing.T) {
	h := newTestHost(t, Config{}, &sliderPlugin{name: "baseline"})
	s := h.NewSession()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Rerun(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDataToolsServeStore(t *testing.T) {
	h := newTestHost(t, Config{})
	h.Data().Set("k", "v")

	tb := h.DataTools()
	_, ok := tb.Get("streamflex_data_get")
	assert.True(t, ok)
}
