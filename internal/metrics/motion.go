package metrics

import (
	"math"

	"github.com/san-kum/urdfsim/internal/dynamo"
)

type MaxSpeed struct {
	name string
	max  float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Observe(x dynamo.State, t float64) {
	if len(x) < 6 {
		return
	}
	m.max = math.Max(m.max, x[3:6].Norm())
}

func (m *MaxSpeed) Value() float64 { return m.max }
func (m *MaxSpeed) Reset()         { m.max = 0 }

// PathLength sums the straight-line distance between consecutive sampled
// positions. It underestimates curved paths between samples.
type PathLength struct {
	name   string
	length float64
	last   dynamo.State
}

func NewPathLength() *PathLength {
	return &PathLength{name: "path_length"}
}

func (p *PathLength) Name() string { return p.name }

func (p *PathLength) Observe(x dynamo.State, t float64) {
	if len(x) < 3 {
		return
	}
	pos := x[0:3]
	if p.last != nil {
		p.length += pos.Sub(p.last).Norm()
	}
	p.last = pos.Clone()
}

func (p *PathLength) Value() float64 { return p.length }

func (p *PathLength) Reset() {
	p.length = 0
	p.last = nil
}
