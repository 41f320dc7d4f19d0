package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/san-kum/urdfsim/internal/dynamo"
	"github.com/san-kum/urdfsim/internal/integrators"
)

// Simulator drives a stepper over a system and records the state at evenly
// spaced sample times. A Simulator is not safe for concurrent use; Ensemble
// builds one per run.
type Simulator struct {
	dyn       dynamo.System
	stepper   dynamo.Stepper
	metrics   []dynamo.Metric
	observers []dynamo.Observer
	logger    zerolog.Logger
}

func New(dyn dynamo.System, stepper dynamo.Stepper) *Simulator {
	return &Simulator{
		dyn:       dyn,
		stepper:   stepper,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
		logger:    zerolog.Nop(),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) SetLogger(l zerolog.Logger)    { s.logger = l }

// Run integrates from cfg.Start to cfg.End and returns cfg.Samples states.
// Any failure aborts the run; no partial trajectory is returned.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := s.validate(x0, cfg); err != nil {
		return nil, err
	}

	times := cfg.SampleTimes()
	result := &dynamo.Result{
		Times:   times,
		States:  make([]dynamo.State, 0, len(times)),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	s.record(result, x, times[0])

	var err error
	if cfg.Adaptive {
		err = s.runAdaptive(ctx, x, times, cfg, result)
	} else {
		err = s.runFixed(ctx, x, times, cfg, result)
	}
	if err != nil {
		return nil, err
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.logger.Debug().
		Int("samples", result.Len()).
		Int("steps", result.StepsTaken).
		Int("rejected", result.StepsRejected).
		Msg("integration finished")

	return result, nil
}

func (s *Simulator) runAdaptive(ctx context.Context, x dynamo.State, times []float64, cfg dynamo.Config, result *dynamo.Result) error {
	as, ok := s.stepper.(dynamo.AdaptiveStepper)
	if !ok {
		return fmt.Errorf("%w: stepper %T does not support adaptive stepping", dynamo.ErrInvalidConfig, s.stepper)
	}

	t := times[0]
	attempts := 0

	dt := cfg.FirstStep
	if dt == 0 {
		h, err := as.InitialStep(s.dyn, x, t, cfg.End-cfg.Start, cfg.Tolerance)
		if err != nil {
			return &dynamo.IntegrationError{Step: 0, Time: t, Wrapped: err}
		}
		dt = h
	}

	for k := 1; k < len(times); k++ {
		target := times[k]

		for t < target {
			remaining := target - t
			if remaining <= minStep(t) {
				break
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if attempts >= cfg.MaxSteps {
				return &dynamo.IntegrationError{
					Step:    attempts,
					Time:    t,
					Wrapped: fmt.Errorf("%w: %d attempts", dynamo.ErrStepBudget, cfg.MaxSteps),
				}
			}

			h := math.Min(dt, remaining)
			if h < minStep(t) || math.IsNaN(h) {
				return &dynamo.IntegrationError{
					Step:    attempts,
					Time:    t,
					Wrapped: fmt.Errorf("%w: dt=%g", dynamo.ErrStepTooSmall, h),
				}
			}
			landing := h == remaining

			res, err := as.StepAdaptive(s.dyn, x, t, h, cfg.Tolerance)
			attempts++
			if err != nil {
				return &dynamo.IntegrationError{Step: attempts, Time: t, Wrapped: err}
			}

			if !res.Accepted {
				result.StepsRejected++
				dt = res.NextDt
				continue
			}

			if cfg.ValidateState && !res.State.IsValid() {
				return &dynamo.IntegrationError{Step: attempts, Time: t, Wrapped: dynamo.ErrInvalidState}
			}

			x = res.State
			result.StepsTaken++
			if landing {
				t = target
				// a clipped step says little about the unclipped size
				dt = math.Max(dt, res.NextDt)
			} else {
				t += h
				dt = res.NextDt
			}
		}

		t = target
		s.record(result, x, t)
	}

	return nil
}

func (s *Simulator) runFixed(ctx context.Context, x dynamo.State, times []float64, cfg dynamo.Config, result *dynamo.Result) error {
	n := cfg.StepsPerSample

	for k := 1; k < len(times); k++ {
		t := times[k-1]
		h := (times[k] - t) / float64(n)

		for j := 0; j < n; j++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			next, err := s.stepper.Step(s.dyn, x, t, h)
			if err != nil {
				return &dynamo.IntegrationError{Step: result.StepsTaken + 1, Time: t, Wrapped: err}
			}
			if cfg.ValidateState && !next.IsValid() {
				return &dynamo.IntegrationError{Step: result.StepsTaken + 1, Time: t, Wrapped: dynamo.ErrInvalidState}
			}

			x = next
			t += h
			result.StepsTaken++
		}

		s.record(result, x, times[k])
	}

	return nil
}

func (s *Simulator) record(result *dynamo.Result, x dynamo.State, t float64) {
	for _, m := range s.metrics {
		m.Observe(x, t)
	}
	for _, obs := range s.observers {
		obs.OnSample(x, t)
	}
	result.States = append(result.States, x.Clone())
}

func (s *Simulator) validate(x0 dynamo.State, cfg dynamo.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if len(x0) != s.dyn.StateDim() {
		return fmt.Errorf("%w: initial state has %d components, system wants %d",
			dynamo.ErrDimensionMismatch, len(x0), s.dyn.StateDim())
	}
	if cfg.ValidateState && !x0.IsValid() {
		return fmt.Errorf("%w: initial state", dynamo.ErrInvalidState)
	}
	return nil
}

// minStep is the smallest step that still moves t.
func minStep(t float64) float64 {
	a := math.Abs(t)
	return 10 * (math.Nextafter(a, math.Inf(1)) - a)
}

// Integrate runs the default adaptive RK45 over [start, end] with the
// default tolerances and step budget.
func Integrate(ctx context.Context, dyn dynamo.System, x0 dynamo.State, start, end float64, samples int) (*dynamo.Result, error) {
	cfg := dynamo.DefaultConfig()
	cfg.Start = start
	cfg.End = end
	cfg.Samples = samples
	return New(dyn, integrators.NewRK45()).Run(ctx, x0, cfg)
}
