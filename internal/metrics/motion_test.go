package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/urdfsim/internal/dynamo"
)

func TestMaxSpeed(t *testing.T) {
	m := NewMaxSpeed()
	m.Observe(dynamo.State{0, 0, 0, 3, 4, 0, 0, 0, 0}, 0)
	m.Observe(dynamo.State{0, 0, 0, 1, 1, 1, 0, 0, 0}, 1)

	if m.Value() != 5 {
		t.Errorf("expected max speed 5, got %v", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestPathLength(t *testing.T) {
	m := NewPathLength()
	m.Observe(dynamo.State{0, 0, 0, 0, 0, 0, 0, 0, 0}, 0)
	m.Observe(dynamo.State{3, 4, 0, 0, 0, 0, 0, 0, 0}, 1)
	m.Observe(dynamo.State{3, 4, 2, 0, 0, 0, 0, 0, 0}, 2)

	if math.Abs(m.Value()-7) > 1e-12 {
		t.Errorf("expected path length 7, got %v", m.Value())
	}

	m.Reset()
	m.Observe(dynamo.State{10, 10, 10}, 0)
	if m.Value() != 0 {
		t.Errorf("first sample after reset should not add distance, got %v", m.Value())
	}
}

func TestStability(t *testing.T) {
	tests := []struct {
		name   string
		states []dynamo.State
		want   float64
	}{
		{"no samples", nil, 1.0},
		{"all within", []dynamo.State{{1, -1}, {0.5, 0}}, 1.0},
		{"half out", []dynamo.State{{1, 0}, {0, 20}}, 0.5},
		{"nan counts", []dynamo.State{{math.NaN(), 0}}, 0.0},
		{"inf counts", []dynamo.State{{0, math.Inf(-1)}, {0, 0}}, 0.5},
		{"on the bound", []dynamo.State{{10, -10}}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewStability(10)
			for i, x := range tt.states {
				m.Observe(x, float64(i))
			}
			if got := m.Value(); got != tt.want {
				t.Errorf("Value() = %v, want %v", got, tt.want)
			}
		})
	}
}
