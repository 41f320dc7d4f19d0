package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/urdfsim/internal/dynamo"
	"github.com/san-kum/urdfsim/internal/integrators"
	"github.com/san-kum/urdfsim/internal/metrics"
	"github.com/san-kum/urdfsim/internal/vehicle"
)

// StabilityBound is the magnitude above which a state component counts as
// a stability violation.
const StabilityBound = 1e4

type Registry struct {
	integrators map[string]func() dynamo.Stepper
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Stepper),
	}

	r.integrators["rk45"] = func() dynamo.Stepper { return integrators.NewRK45() }
	r.integrators["rk4"] = func() dynamo.Stepper { return integrators.NewRK4() }
	r.integrators["euler"] = func() dynamo.Stepper { return integrators.NewEuler() }

	return r
}

func (r *Registry) GetIntegrator(name string) (dynamo.Stepper, error) {
	fn, err := r.IntegratorFactory(name)
	if err != nil {
		return nil, err
	}
	return fn(), nil
}

// IntegratorFactory returns a constructor, for callers that need a fresh
// stepper per run.
func (r *Registry) IntegratorFactory(name string) (func() dynamo.Stepper, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn, nil
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics(p *vehicle.Parameters, dyn dynamo.System) []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewKineticEnergy(p.Mass, p.Inertia),
		metrics.NewEnergyGain(dyn),
		metrics.NewMaxSpeed(),
		metrics.NewPathLength(),
		metrics.NewStability(StabilityBound),
	}
}
