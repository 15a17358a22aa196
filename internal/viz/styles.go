package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const panelWidth = 40

type styles struct {
	panel    lipgloss.Style
	header   lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	selected lipgloss.Style
	help     lipgloss.Style
	running  lipgloss.Style
	paused   lipgloss.Style
	err      lipgloss.Style
	graph    lipgloss.Style
	spark    lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Border).
			Padding(0, 1).
			Width(panelWidth),
		header:   lipgloss.NewStyle().Foreground(t.Title).Bold(true),
		label:    lipgloss.NewStyle().Foreground(t.Muted).Width(10),
		value:    lipgloss.NewStyle().Foreground(t.Text),
		selected: lipgloss.NewStyle().Foreground(t.Selected).Bold(true),
		help:     lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
		running:  lipgloss.NewStyle().Foreground(t.Running).Bold(true),
		paused:   lipgloss.NewStyle().Foreground(t.Paused).Bold(true),
		err:      lipgloss.NewStyle().Foreground(t.Error).Width(panelWidth - 2),
		graph:    lipgloss.NewStyle().Foreground(t.Accent),
		spark:    lipgloss.NewStyle().Foreground(t.Accent),
	}
}

// Sparkline renders values as one row of block glyphs scaled between
// their minimum and maximum, sampling the most recent width values.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / rng * float64(len(chars)-1))
		idx = max(0, min(len(chars)-1, idx))
		b.WriteRune(chars[idx])
	}
	return b.String()
}

// ParamBar shows v within [lo, hi] as a bar of width cells.
func ParamBar(v, lo, hi float64, width int) string {
	ratio := (v - lo) / (hi - lo)
	filled := int(max(0, min(1, ratio)) * float64(width))
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}

func hexColor(r, g, b int) string {
	return "#" + hexByte(r) + hexByte(g) + hexByte(b)
}

func hexByte(v int) string {
	v = max(0, min(255, v))
	const hex = "0123456789abcdef"
	return string(hex[v/16]) + string(hex[v%16])
}
