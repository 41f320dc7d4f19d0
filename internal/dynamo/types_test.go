package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{1.0, 2.0, 3.0}, true},
		{"zeros", State{0.0, 0.0}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{1.0, math.Inf(1)}, false},
		{"with -Inf", State{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_Norm(t *testing.T) {
	tests := []struct {
		state    State
		expected float64
	}{
		{State{3, 4}, 5.0},
		{State{1, 0}, 1.0},
		{State{0, 0}, 0.0},
		{State{1, 1, 1, 1}, 2.0},
	}

	for _, tt := range tests {
		if got := tt.state.Norm(); math.Abs(got-tt.expected) > 1e-10 {
			t.Errorf("Norm(%v) = %v, want %v", tt.state, got, tt.expected)
		}
	}
}

func TestState_Sub(t *testing.T) {
	a := State{1, 2, 3}
	b := State{4, 5, 6}

	diff := b.Sub(a)
	if diff[0] != 3 || diff[1] != 3 || diff[2] != 3 {
		t.Errorf("Sub failed: got %v", diff)
	}

	short := b.Sub(State{1})
	if short[0] != 3 || short[1] != 5 || short[2] != 6 {
		t.Errorf("Sub with shorter operand: got %v", short)
	}

	clone := a.Clone()
	clone[0] = 99
	if a[0] == 99 {
		t.Error("Clone did not create independent copy")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Samples != 100 {
		t.Errorf("expected 100 samples, got %d", cfg.Samples)
	}
	if !cfg.Adaptive {
		t.Error("default config should be adaptive")
	}
}

func TestConfigValidate(t *testing.T) {
	base := DefaultConfig()
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative start", func(c *Config) { c.Start = -1 }},
		{"start equals end", func(c *Config) { c.Start, c.End = 5, 5 }},
		{"start after end", func(c *Config) { c.Start, c.End = 10, 5 }},
		{"one sample", func(c *Config) { c.Samples = 1 }},
		{"nan end", func(c *Config) { c.End = math.NaN() }},
		{"zero rtol", func(c *Config) { c.Tolerance.RTol = 0 }},
		{"zero budget", func(c *Config) { c.MaxSteps = 0 }},
		{"fixed without substeps", func(c *Config) { c.Adaptive = false; c.StepsPerSample = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSampleTimes(t *testing.T) {
	cfg := Config{Start: 0, End: 20, Samples: 100}
	times := cfg.SampleTimes()

	if len(times) != 100 {
		t.Fatalf("expected 100 times, got %d", len(times))
	}
	if times[0] != 0 || times[99] != 20 {
		t.Errorf("endpoints = %v, %v", times[0], times[99])
	}
	step := 20.0 / 99.0
	for i := 1; i < len(times); i++ {
		if math.Abs(times[i]-times[i-1]-step) > 1e-12 {
			t.Fatalf("uneven spacing at %d", i)
		}
	}

	odd := Config{Start: 0.1, End: 0.7, Samples: 7}.SampleTimes()
	if odd[6] != 0.7 {
		t.Errorf("last sample should be exactly the end, got %v", odd[6])
	}
}

func TestIntegrationError(t *testing.T) {
	err := &IntegrationError{Step: 12, Time: 1.5, Wrapped: ErrSingularInertia}
	if !errors.Is(err, ErrSingularInertia) {
		t.Error("IntegrationError should unwrap to its cause")
	}
	expected := "integration failed at step 12 (t=1.5): dynamo: inertia matrix is singular"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestResultAccessors(t *testing.T) {
	r := &Result{
		Times:  []float64{0, 1},
		States: []State{{1, 2}, {3, 4}},
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d", r.Len())
	}
	tm, s := r.Sample(1)
	if tm != 1 || s[0] != 3 {
		t.Errorf("Sample(1) = %v, %v", tm, s)
	}
	if c := r.Component(1); c[0] != 2 || c[1] != 4 {
		t.Errorf("Component(1) = %v", c)
	}
	if f := r.Final(); f[1] != 4 {
		t.Errorf("Final() = %v", f)
	}
}
