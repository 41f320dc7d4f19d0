package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are the lipgloss styles derived from one theme.
type Styles struct {
	Panel   lipgloss.Style
	Title   lipgloss.Style
	Header  lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Subtle  lipgloss.Style
	Warning lipgloss.Style

	sparkHigh lipgloss.Style
	sparkMid  lipgloss.Style
	sparkLow  lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(1, 2),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Secondary),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Text).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Muted),
		Label:   lipgloss.NewStyle().Foreground(t.Muted),
		Value:   lipgloss.NewStyle().Foreground(t.Secondary).Bold(true),
		Subtle:  lipgloss.NewStyle().Foreground(t.Muted),
		Warning: lipgloss.NewStyle().Foreground(t.Warning),

		sparkHigh: lipgloss.NewStyle().Foreground(t.Success),
		sparkMid:  lipgloss.NewStyle().Foreground(t.Warning),
		sparkLow:  lipgloss.NewStyle().Foreground(t.Error),
	}
}

// ProgressBar renders a fraction in [0, 1] as a bar of the given width.
func (s Styles) ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	if percent > 0.8 {
		return s.sparkHigh.Render(bar)
	} else if percent > 0.4 {
		return s.sparkMid.Render(bar)
	}
	return s.sparkLow.Render(bar)
}

// Sparkline renders values as a single row of block characters, sampling
// down to width.
func (s Styles) Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	rng := max - min
	if rng == 0 {
		rng = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var result strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - min) / rng
		idx := int(norm * float64(len(chars)-1))
		if idx >= len(chars) {
			idx = len(chars) - 1
		}
		if idx < 0 {
			idx = 0
		}

		c := string(chars[idx])
		if norm > 0.7 {
			result.WriteString(s.sparkHigh.Render(c))
		} else if norm > 0.3 {
			result.WriteString(s.sparkMid.Render(c))
		} else {
			result.WriteString(s.sparkLow.Render(c))
		}
	}

	return result.String()
}

func (s Styles) Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", mid-3)
	right := strings.Repeat("─", width-mid-3)
	return s.Subtle.Render(left + " ◆ " + right)
}
