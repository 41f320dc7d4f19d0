package viz

import (
	"strings"
	"testing"

	"github.com/san-kum/urdfsim/internal/dynamo"
	"github.com/san-kum/urdfsim/internal/vehicle"
)

func TestRenderParameters(t *testing.T) {
	parent, child := "base", "mast"
	p := &vehicle.Parameters{
		Links:    []string{"base", "mast"},
		Joints:   []vehicle.Joint{{Name: "mast_joint", Type: "revolute", Parent: &parent, Child: &child, Axis: "0 0 1"}},
		Mass:     2.5,
		Inertia:  vehicle.Diag(1.02, 1.02, 1.01),
		Warnings: []string{"link at 3: missing name"},
	}

	out := RenderParameters(p, GetTheme("minimal"))
	for _, want := range []string{"2.5", "base", "mast", "mast_joint", "revolute", "0 0 1", "missing name", "1.02"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderParametersEmpty(t *testing.T) {
	out := RenderParameters(&vehicle.Parameters{}, DefaultTheme)
	if !strings.Contains(out, "Vehicle parameters") {
		t.Errorf("missing title:\n%s", out)
	}
	if strings.Contains(out, "→") {
		t.Error("no joints should be listed")
	}
}

func TestRenderRun(t *testing.T) {
	r := &dynamo.Result{
		Times: []float64{0, 10, 20},
		States: []dynamo.State{
			{0, 0, 0, 0, 0, 0, 0, 0, 0},
			{1, 2, 0, 3, 4, 0, 0, 0, 0},
			{5, 6, 0, 6, 8, 0, 0, 0, 0},
		},
		StepsTaken:    12,
		StepsRejected: 1,
		Metrics:       map[string]float64{"stability": 1, "max_speed": 10},
	}

	out := RenderRun(r, GetTheme("ocean"))
	for _, want := range []string{"samples", "12 (1 rejected)", "max_speed", "stability", "[5, 6, 0]"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGetTheme(t *testing.T) {
	if GetTheme("ocean").Name != "ocean" {
		t.Error("expected ocean theme")
	}
	if GetTheme("nope").Name != DefaultTheme.Name {
		t.Error("unknown names should fall back to the default")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("ThemeNames should list every theme")
	}
}

func TestSparkline(t *testing.T) {
	s := NewStyles(ThemeMinimal)
	if got := s.Sparkline(nil, 5); got != "─────" {
		t.Errorf("empty sparkline = %q", got)
	}
	out := s.Sparkline([]float64{0, 1, 2, 3}, 4)
	if !strings.Contains(out, "▁") || !strings.Contains(out, "█") {
		t.Errorf("sparkline should span the full range: %q", out)
	}
}
