package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/urdfsim/internal/dynamo"
)

// Ensemble runs independent simulations of one system from several initial
// states. Each run gets its own stepper and metrics from the factories; the
// system itself is shared and must be safe for concurrent Derive calls.
type Ensemble struct {
	dyn        dynamo.System
	newStepper func() dynamo.Stepper
	newMetrics func() []dynamo.Metric
	workers    int
}

func NewEnsemble(dyn dynamo.System, newStepper func() dynamo.Stepper, newMetrics func() []dynamo.Metric) *Ensemble {
	return &Ensemble{dyn: dyn, newStepper: newStepper, newMetrics: newMetrics}
}

// SetWorkers bounds the number of concurrent runs; zero or less means no limit.
func (e *Ensemble) SetWorkers(n int) { e.workers = n }

// Run returns one result per initial state, in the same order. The first
// failure cancels the remaining runs and is returned.
func (e *Ensemble) Run(ctx context.Context, initial []dynamo.State, cfg dynamo.Config) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, len(initial))

	g, gctx := errgroup.WithContext(ctx)
	if e.workers > 0 {
		g.SetLimit(e.workers)
	}

	for i, x0 := range initial {
		g.Go(func() error {
			s := New(e.dyn, e.newStepper())
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					s.AddMetric(m)
				}
			}

			res, err := s.Run(gctx, x0, cfg)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
