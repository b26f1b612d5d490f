package main

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/streamflex/streamflex/cmd/streamflex/internal/format"
	"github.com/streamflex/streamflex/pkg/widget"
)

const (
	// sliderBarWidth is the character width of the slider track.
	sliderBarWidth = 24

	// labelColumn aligns widget values within a plugin group.
	labelColumn = 18
)

// interactive reports whether the widget kind accepts user input.
func interactive(k widget.Kind) bool {
	return k != widget.KindMarkdown
}

// renderWidget formats one widget line (or block, for markdown) for the
// dashboard.
func renderWidget(r widget.Rendered, focused bool, width int) string {
	if r.Spec.Kind == widget.KindMarkdown {
		s, _ := r.Value.(string)
		return format.RenderMarkdown(s)
	}

	label := r.Spec.Label
	if label == "" {
		label = r.Spec.Name
	}

	ls := labelStyle
	if focused {
		ls = focusedLabelStyle
	}

	var body string
	switch r.Spec.Kind {
	case widget.KindSlider:
		body = renderSlider(r.Spec, r.Value)
	case widget.KindNumberInput:
		body = valueStyle.Render(fmtValue(r.Value)) +
			dimStyle.Render(fmt.Sprintf(" (%s..%s)", fmtValue(r.Spec.Min), fmtValue(r.Spec.Max)))
	case widget.KindTextInput:
		maxText := width - labelColumn - 2
		if maxText < 8 {
			maxText = 8
		}
		body = valueStyle.Render(format.Truncate(fmtValue(r.Value), maxText))
	case widget.KindSelect:
		body = renderSelect(r.Spec, r.Value, focused)
	case widget.KindCheckbox:
		body = renderCheckbox(r.Value)
	case widget.KindButton:
		st := buttonStyle
		if focused {
			st = focusedButtonStyle
		}
		return st.Render(label)
	}

	return ls.Render(padLabel(label)) + " " + body
}

// padLabel pads a label to the value column, accounting for wide runes.
func padLabel(label string) string {
	w := runewidth.StringWidth(label)
	if w >= labelColumn {
		return label
	}
	return label + strings.Repeat(" ", labelColumn-w)
}

// renderSlider draws the track with a filled portion proportional to the
// value's position between Min and Max.
func renderSlider(sp widget.Spec, v any) string {
	f, ok := asFloat(v)
	if !ok {
		f = sp.Min
	}

	span := sp.Max - sp.Min
	frac := 0.0
	if span > 0 {
		frac = (f - sp.Min) / span
	}
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}

	fill := int(frac*float64(sliderBarWidth) + 0.5)
	bar := sliderFillStyle.Render(strings.Repeat("█", fill)) +
		sliderTrackStyle.Render(strings.Repeat("░", sliderBarWidth-fill))

	return bar + " " + valueStyle.Render(fmtValue(v))
}

// renderSelect shows the current choice; when focused, arrows hint that
// left/right cycles the options.
func renderSelect(sp widget.Spec, v any, focused bool) string {
	cur := fmtValue(v)
	idx := optionIndex(sp.Options, cur)
	pos := dimStyle.Render(fmt.Sprintf(" %d/%d", idx+1, len(sp.Options)))
	if focused {
		return valueStyle.Render("◂ "+cur+" ▸") + pos
	}
	return valueStyle.Render(cur) + pos
}

func renderCheckbox(v any) string {
	if b, _ := v.(bool); b {
		return valueStyle.Render("[x]")
	}
	return dimStyle.Render("[ ]")
}

// optionIndex returns the index of value in options, or 0 when absent.
func optionIndex(options []string, value string) int {
	for i, o := range options {
		if o == value {
			return i
		}
	}
	return 0
}
