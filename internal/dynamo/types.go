package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Sub is the componentwise difference. Components missing from other count
// as zero.
func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System is an autonomous or time-dependent ODE. Derive must not modify x.
type System interface {
	Derive(x State, t float64) (State, error)
	StateDim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

type Stepper interface {
	Step(dyn System, x State, t, dt float64) (State, error)
}

// Tolerance bounds the local error of an adaptive step, per component:
// |err_i| <= ATol + RTol*max(|x_i|, |xNew_i|).
type Tolerance struct {
	RTol float64
	ATol float64
}

// StepResult is the outcome of one attempted adaptive step. When Accepted
// is false, State is the rejected candidate and must not be used.
type StepResult struct {
	State    State
	ErrNorm  float64
	NextDt   float64
	Accepted bool
}

type AdaptiveStepper interface {
	Stepper
	StepAdaptive(dyn System, x State, t, dt float64, tol Tolerance) (StepResult, error)
	InitialStep(dyn System, x State, t, span float64, tol Tolerance) (float64, error)
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnSample(x State, t float64)
}

type Config struct {
	Start   float64
	End     float64
	Samples int

	// Adaptive selects error-controlled stepping. Fixed stepping takes
	// StepsPerSample equal steps between consecutive samples.
	Adaptive       bool
	StepsPerSample int

	Tolerance     Tolerance
	MaxSteps      int
	FirstStep     float64
	ValidateState bool
}

const DefaultSamples = 100

func DefaultConfig() Config {
	return Config{
		Start:          0,
		End:            20,
		Samples:        DefaultSamples,
		Adaptive:       true,
		StepsPerSample: 10,
		Tolerance:      Tolerance{RTol: 1e-3, ATol: 1e-6},
		MaxSteps:       100000,
		ValidateState:  true,
	}
}

// Validate reports the first problem with the config, wrapping ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case math.IsNaN(c.Start) || math.IsInf(c.Start, 0) || math.IsNaN(c.End) || math.IsInf(c.End, 0):
		return fmt.Errorf("%w: time span must be finite", ErrInvalidConfig)
	case c.Start < 0:
		return fmt.Errorf("%w: start must be non-negative, got %g", ErrInvalidConfig, c.Start)
	case c.Start >= c.End:
		return fmt.Errorf("%w: start must be before end, got [%g, %g]", ErrInvalidConfig, c.Start, c.End)
	case c.Samples < 2:
		return fmt.Errorf("%w: need at least 2 samples, got %d", ErrInvalidConfig, c.Samples)
	case c.Adaptive && (c.Tolerance.RTol <= 0 || c.Tolerance.ATol <= 0):
		return fmt.Errorf("%w: tolerances must be positive for adaptive stepping", ErrInvalidConfig)
	case c.Adaptive && c.MaxSteps <= 0:
		return fmt.Errorf("%w: max steps must be positive", ErrInvalidConfig)
	case !c.Adaptive && c.StepsPerSample <= 0:
		return fmt.Errorf("%w: steps per sample must be positive", ErrInvalidConfig)
	case c.FirstStep < 0:
		return fmt.Errorf("%w: first step must not be negative", ErrInvalidConfig)
	}
	return nil
}

// SampleTimes returns Samples evenly spaced times covering [Start, End],
// with both endpoints exact.
func (c Config) SampleTimes() []float64 {
	times := make([]float64, c.Samples)
	span := c.End - c.Start
	last := c.Samples - 1
	for i := range times {
		times[i] = c.Start + float64(i)*span/float64(last)
	}
	times[last] = c.End
	return times
}

// Result is a sampled trajectory. Times and States have the same length.
type Result struct {
	Times         []float64
	States        []State
	Metrics       map[string]float64
	StepsTaken    int
	StepsRejected int
}

func (r *Result) Len() int { return len(r.Times) }

func (r *Result) Sample(i int) (float64, State) {
	return r.Times[i], r.States[i]
}

// Component returns the i-th state component over all samples.
func (r *Result) Component(i int) []float64 {
	out := make([]float64, len(r.States))
	for k, s := range r.States {
		if i < len(s) {
			out[k] = s[i]
		}
	}
	return out
}

func (r *Result) Final() State {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}
