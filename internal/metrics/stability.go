package metrics

import (
	"math"

	"github.com/san-kum/urdfsim/internal/dynamo"
)

// Stability is the fraction of samples that are finite and bounded by
// bound in every component. An empty run counts as stable.
type Stability struct {
	bound   float64
	bounded int
	total   int
}

func NewStability(bound float64) *Stability {
	return &Stability{bound: bound}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(x dynamo.State, _ float64) {
	s.total++
	if x.IsValid() && largest(x) <= s.bound {
		s.bounded++
	}
}

func (s *Stability) Value() float64 {
	if s.total == 0 {
		return 1
	}
	return float64(s.bounded) / float64(s.total)
}

func (s *Stability) Reset() { s.bounded, s.total = 0, 0 }

// largest is the infinity norm of x.
func largest(x dynamo.State) float64 {
	m := 0.0
	for _, v := range x {
		m = math.Max(m, math.Abs(v))
	}
	return m
}
