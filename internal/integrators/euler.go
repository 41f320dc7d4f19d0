package integrators

import "github.com/san-kum/urdfsim/internal/dynamo"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, t float64, dt float64) (dynamo.State, error) {
	dx, err := dyn.Derive(x, t)
	if err != nil {
		return nil, err
	}
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result, nil
}
