package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/urdfsim/internal/dynamo"
	"github.com/san-kum/urdfsim/internal/vehicle"
)

const panelWidth = 44

func row(s Styles, label, value string) string {
	return s.Label.Render(fmt.Sprintf("%-12s", label)) + " " + s.Value.Render(value)
}

func RenderParameters(p *vehicle.Parameters, theme Theme) string {
	s := NewStyles(theme)
	var b strings.Builder

	b.WriteString(s.Title.Render("Vehicle parameters") + "\n\n")
	b.WriteString(row(s, "mass", fmt.Sprintf("%.6g", p.Mass)) + "\n")
	b.WriteString(row(s, "links", fmt.Sprintf("%d", len(p.Links))) + "\n")
	b.WriteString(row(s, "joints", fmt.Sprintf("%d", len(p.Joints))) + "\n\n")

	b.WriteString(s.Header.Render("inertia") + "\n")
	for _, r := range p.Inertia {
		b.WriteString(s.Value.Render(fmt.Sprintf("  %10.4g %10.4g %10.4g", r[0], r[1], r[2])) + "\n")
	}

	if len(p.Links) > 0 {
		b.WriteString("\n" + s.Header.Render("links") + "\n")
		for _, l := range p.Links {
			b.WriteString("  " + l + "\n")
		}
	}

	if len(p.Joints) > 0 {
		b.WriteString("\n" + s.Header.Render("joints") + "\n")
		for _, j := range p.Joints {
			b.WriteString(fmt.Sprintf("  %s %s %s → %s  axis [%s]\n",
				j.Name, s.Subtle.Render("("+j.Type+")"), deref(j.Parent), deref(j.Child), j.Axis))
		}
	}

	if len(p.Warnings) > 0 {
		b.WriteString("\n" + s.Separator(panelWidth) + "\n")
		for _, w := range p.Warnings {
			b.WriteString(s.Warning.Render("! "+w) + "\n")
		}
	}

	return s.Panel.Render(strings.TrimRight(b.String(), "\n"))
}

func RenderRun(result *dynamo.Result, theme Theme) string {
	s := NewStyles(theme)
	var b strings.Builder

	b.WriteString(s.Title.Render("Simulation") + "\n\n")
	if result.Len() > 0 {
		b.WriteString(row(s, "span", fmt.Sprintf("%g → %g s", result.Times[0], result.Times[result.Len()-1])) + "\n")
	}
	b.WriteString(row(s, "samples", fmt.Sprintf("%d", result.Len())) + "\n")
	b.WriteString(row(s, "steps", fmt.Sprintf("%d (%d rejected)", result.StepsTaken, result.StepsRejected)) + "\n")

	if final := result.Final(); len(final) >= 9 {
		b.WriteString("\n" + s.Header.Render("final state") + "\n")
		b.WriteString(row(s, "position", vec3(final[0:3])) + "\n")
		b.WriteString(row(s, "velocity", vec3(final[3:6])) + "\n")
		b.WriteString(row(s, "angular", vec3(final[6:9])) + "\n")

		speeds := make([]float64, result.Len())
		for i, x := range result.States {
			speeds[i] = math.Sqrt(x[3]*x[3] + x[4]*x[4] + x[5]*x[5])
		}
		b.WriteString("\n" + s.Label.Render("speed ") + s.Sparkline(speeds, panelWidth-8) + "\n")
	}

	if len(result.Metrics) > 0 {
		b.WriteString("\n" + s.Header.Render("metrics") + "\n")
		names := make([]string, 0, len(result.Metrics))
		for name := range result.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			v := result.Metrics[name]
			b.WriteString(row(s, name, fmt.Sprintf("%.6g", v)) + "\n")
			if name == "stability" {
				b.WriteString(strings.Repeat(" ", 13) + s.ProgressBar(v, 20) + "\n")
			}
		}
	}

	return s.Panel.Render(strings.TrimRight(b.String(), "\n"))
}

// Join places panels side by side.
func Join(panels ...string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, panels...)
}

func vec3(v []float64) string {
	return fmt.Sprintf("[%.4g, %.4g, %.4g]", v[0], v[1], v[2])
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
