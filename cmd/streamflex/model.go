package main

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/streamflex/streamflex/cmd/streamflex/internal/format"
	"github.com/streamflex/streamflex/pkg/data"
	"github.com/streamflex/streamflex/pkg/host"
	"github.com/streamflex/streamflex/pkg/widget"
)

// appModel is the root bubbletea model: one dashboard session rendered as a
// scrollable list of plugin widget groups.
type appModel struct {
	ctx    context.Context
	sess   *host.Session
	store  *data.Store
	events *host.EventBus
	title  string

	frame   []widget.Rendered
	focus   int
	editing bool
	input   textinput.Model
	view    viewport.Model

	statusBar statusBarModel
	showData  bool
	prevSnap  string
	lastDiff  string

	refreshEvery time.Duration
	cancelBridge context.CancelFunc
	width        int
	height       int
	ready        bool
}

func newAppModel(ctx context.Context, h *host.Host, sess *host.Session, frame []widget.Rendered) appModel {
	ti := textinput.New()
	ti.CharLimit = 256

	// Config was validated when the host was built.
	refreshEvery, _ := h.Config().Refresh.Interval()

	m := appModel{
		ctx:          ctx,
		sess:         sess,
		store:        h.Data(),
		events:       h.Events(),
		title:        h.Config().Title,
		frame:        frame,
		input:        ti,
		statusBar:    newStatusBar(sess.ID(), len(h.Config().Plugins)),
		prevSnap:     snapshotText(h.Data().Snapshot()),
		refreshEvery: refreshEvery,
	}
	m.statusBar.widgets = len(frame)
	m.snapFocus(0)
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.refreshTick())
}

// refreshTick schedules the next auto-refresh, or nothing when disabled.
func (m appModel) refreshTick() tea.Cmd {
	if m.refreshEvery <= 0 {
		return nil
	}
	return tea.Tick(m.refreshEvery, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case programReadyMsg:
		m.cancelBridge = startBridge(m.ctx, msg.program, m.events)
		return m, nil

	case rerunDoneMsg:
		return m.handleRerunDone(msg)

	case refreshTickMsg:
		// Skip the pass while the user is mid-edit or a rerun is in
		// flight; the next tick picks it up.
		if m.editing || m.statusBar.busy {
			return m, m.refreshTick()
		}
		return m, tea.Batch(m.rerunCmd(), m.refreshTick())

	case hostEventMsg:
		if msg.event.Kind == host.EventPluginError {
			if text, ok := msg.event.Data.(string); ok {
				m.statusBar.lastError = msg.event.Plugin + ": " + text
			}
		}
		return m, nil

	case feedStoppedMsg:
		if msg.err != nil && m.ctx.Err() == nil {
			m.statusBar.lastError = "event feed: " + msg.err.Error()
		}
		return m, nil
	}

	if m.editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

func (m appModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := titleStyle.Render(" " + m.title)

	if m.showData {
		m.view.SetContent(renderInspector(m.store.Snapshot(), m.lastDiff))
	} else {
		m.view.SetContent(m.frameContent())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.view.View(),
		m.statusBar.View(),
		m.helpLine(),
	)
}

func (m appModel) helpLine() string {
	if m.editing {
		return dimStyle.Render(" enter confirm · esc cancel")
	}
	if m.showData {
		return dimStyle.Render(" d close inspector · q quit")
	}
	return dimStyle.Render(" tab focus · ←/→ adjust · enter activate · d data · r rerun · q quit")
}

func (m *appModel) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	format.InitMarkdownRenderer(m.width - 4)

	// Header, status bar (up to two lines) and help line.
	vh := m.height - 5
	if vh < 3 {
		vh = 3
	}
	if !m.ready {
		m.view = viewport.New(m.width, vh)
		m.ready = true
	} else {
		m.view.Width = m.width
		m.view.Height = vh
	}
	m.input.Width = m.width - labelColumn - 4

	return m, nil
}

func (m *appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		if m.cancelBridge != nil {
			m.cancelBridge()
		}
		return m, tea.Quit
	}

	if m.editing {
		return m.handleEditKey(msg)
	}

	switch msg.String() {
	case "q":
		if m.cancelBridge != nil {
			m.cancelBridge()
		}
		return m, tea.Quit

	case "d":
		m.showData = !m.showData
		return m, nil

	case "r":
		return m, m.rerunCmd()

	case "tab":
		m.moveFocus(1)
		return m, nil

	case "shift+tab":
		m.moveFocus(-1)
		return m, nil

	case "left", "h":
		return m.adjustFocused(-1)

	case "right", "l":
		return m.adjustFocused(1)

	case "enter", " ":
		return m.activateFocused()
	}

	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

func (m *appModel) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing = false
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		return m.commitEdit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// commitEdit parses the typed text according to the focused widget's kind and
// applies it through a full rerun.
func (m *appModel) commitEdit() (tea.Model, tea.Cmd) {
	m.editing = false
	m.input.Blur()

	r, ok := m.focused()
	if !ok {
		return m, nil
	}

	var v any = m.input.Value()
	if r.Spec.Kind == widget.KindNumberInput {
		n, err := parseNumber(m.input.Value())
		if err != nil {
			m.statusBar.lastError = err.Error()
			return m, nil
		}
		v = n
	}

	return m, m.interactCmd(r.Key, v)
}

// adjustFocused nudges sliders by one step and cycles select options.
func (m *appModel) adjustFocused(dir int) (tea.Model, tea.Cmd) {
	r, ok := m.focused()
	if !ok {
		return m, nil
	}

	switch r.Spec.Kind {
	case widget.KindSlider, widget.KindNumberInput:
		cur, ok := asFloat(r.Value)
		if !ok {
			cur = r.Spec.Min
		}
		step := r.Spec.Step
		if step == 0 {
			step = 1
		}
		next := cur + float64(dir)*step

		// Preserve int typing for int-valued widgets.
		var v any = next
		if _, isInt := r.Value.(int); isInt && next == float64(int(next)) {
			v = int(next)
		}
		return m, m.interactCmd(r.Key, v)

	case widget.KindSelect:
		idx := optionIndex(r.Spec.Options, fmtValue(r.Value))
		idx = (idx + dir + len(r.Spec.Options)) % len(r.Spec.Options)
		return m, m.interactCmd(r.Key, r.Spec.Options[idx])
	}

	return m, nil
}

// activateFocused toggles checkboxes, presses buttons and opens the text
// editor for input widgets.
func (m *appModel) activateFocused() (tea.Model, tea.Cmd) {
	r, ok := m.focused()
	if !ok {
		return m, nil
	}

	switch r.Spec.Kind {
	case widget.KindCheckbox:
		b, _ := r.Value.(bool)
		return m, m.interactCmd(r.Key, !b)

	case widget.KindButton:
		return m, m.interactCmd(r.Key, true)

	case widget.KindTextInput, widget.KindNumberInput:
		m.editing = true
		m.input.SetValue(fmtValue(r.Value))
		m.input.CursorEnd()
		return m, m.input.Focus()
	}

	return m, nil
}

// interactCmd applies one widget change and reruns all plugins off the UI
// goroutine.
func (m *appModel) interactCmd(key string, v any) tea.Cmd {
	ctx, sess := m.ctx, m.sess
	m.statusBar.busy = true
	m.statusBar.lastError = ""
	return func() tea.Msg {
		start := time.Now()
		frame, err := sess.Interact(ctx, key, v)
		return rerunDoneMsg{frame: frame, err: err, duration: time.Since(start)}
	}
}

// rerunCmd reruns all plugins without a widget change.
func (m *appModel) rerunCmd() tea.Cmd {
	ctx, sess := m.ctx, m.sess
	m.statusBar.busy = true
	m.statusBar.lastError = ""
	return func() tea.Msg {
		start := time.Now()
		frame, err := sess.Rerun(ctx)
		return rerunDoneMsg{frame: frame, err: err, duration: time.Since(start)}
	}
}

func (m *appModel) handleRerunDone(msg rerunDoneMsg) (tea.Model, tea.Cmd) {
	m.statusBar.busy = false
	m.statusBar.duration = msg.duration

	if msg.err != nil {
		if m.ctx.Err() == nil {
			m.statusBar.lastError = msg.err.Error()
		}
		return m, nil
	}

	m.frame = msg.frame
	m.statusBar.widgets = len(msg.frame)
	m.snapFocus(m.focus)

	snap := snapshotText(m.store.Snapshot())
	m.lastDiff = diffSnapshots(m.prevSnap, snap)
	m.prevSnap = snap

	return m, nil
}

// focused returns the widget under the focus cursor.
func (m *appModel) focused() (widget.Rendered, bool) {
	if m.focus < 0 || m.focus >= len(m.frame) {
		return widget.Rendered{}, false
	}
	r := m.frame[m.focus]
	if !interactive(r.Spec.Kind) {
		return widget.Rendered{}, false
	}
	return r, true
}

// moveFocus advances the cursor to the next interactive widget, wrapping
// around the frame.
func (m *appModel) moveFocus(dir int) {
	n := len(m.frame)
	if n == 0 {
		return
	}
	for i := 1; i <= n; i++ {
		idx := ((m.focus+dir*i)%n + n) % n
		if interactive(m.frame[idx].Spec.Kind) {
			m.focus = idx
			return
		}
	}
}

// snapFocus clamps the cursor into the frame and lands it on an interactive
// widget. Frames change between reruns, so the cursor is re-validated after
// each one.
func (m *appModel) snapFocus(at int) {
	n := len(m.frame)
	if n == 0 {
		m.focus = 0
		return
	}
	if at < 0 {
		at = 0
	}
	if at >= n {
		at = n - 1
	}
	m.focus = at
	if !interactive(m.frame[m.focus].Spec.Kind) {
		m.moveFocus(1)
	}
}

// frameContent renders the widget frame grouped by plugin in declaration
// order.
func (m *appModel) frameContent() string {
	if len(m.frame) == 0 {
		return dimStyle.Render("No widgets. Enable a plugin and press r.")
	}

	var sb strings.Builder
	for i, r := range m.frame {
		if i == 0 || r.Plugin != m.frame[i-1].Plugin {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(pluginStyle.Render(r.Plugin))
			sb.WriteString("\n")
		}

		prefix := treePipe
		if i == len(m.frame)-1 || m.frame[i+1].Plugin != r.Plugin {
			prefix = treeCorner
		}

		var body string
		if m.editing && i == m.focus {
			label := r.Spec.Label
			if label == "" {
				label = r.Spec.Name
			}
			body = focusedLabelStyle.Render(padLabel(label)) + " " + m.input.View()
		} else {
			body = renderWidget(r, i == m.focus && !m.showData, m.width-4)
		}

		lines := strings.Split(body, "\n")
		sb.WriteString(prefix)
		sb.WriteString(lines[0])
		sb.WriteString("\n")
		for _, line := range lines[1:] {
			sb.WriteString("  ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}
