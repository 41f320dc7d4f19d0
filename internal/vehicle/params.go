// Package vehicle aggregates rigid-body parameters from a parsed robot
// description: link names, joint topology, total mass and the summed
// diagonal inertia.
package vehicle

// DefaultAxis is used for joints without an axis element.
const DefaultAxis = "0 0 0"

// Matrix3 is a row-major 3x3 matrix.
type Matrix3 [3][3]float64

// Diag returns diag(a, b, c).
func Diag(a, b, c float64) Matrix3 {
	return Matrix3{{a, 0, 0}, {0, b, 0}, {0, 0, c}}
}

func (m Matrix3) Add(o Matrix3) Matrix3 {
	var out Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[i][j] + o[i][j]
		}
	}
	return out
}

// Rows returns the matrix as nested slices, the shape used for JSON output.
func (m Matrix3) Rows() [][]float64 {
	rows := make([][]float64, 3)
	for i := range rows {
		rows[i] = []float64{m[i][0], m[i][1], m[i][2]}
	}
	return rows
}

// Flat returns the matrix in row-major order.
func (m Matrix3) Flat() []float64 {
	out := make([]float64, 0, 9)
	for i := 0; i < 3; i++ {
		out = append(out, m[i][:]...)
	}
	return out
}

type Joint struct {
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Parent *string `json:"parent"`
	Child  *string `json:"child"`
	Axis   string  `json:"axis"`
}

// Parameters is the summary of one document. It is not modified after
// Extract returns it.
type Parameters struct {
	Links    []string
	Joints   []Joint
	Mass     float64
	Inertia  Matrix3
	Warnings []string
}

// Summary renders the parameters as a generic key/value structure.
func (p *Parameters) Summary() map[string]interface{} {
	links := p.Links
	if links == nil {
		links = []string{}
	}
	joints := p.Joints
	if joints == nil {
		joints = []Joint{}
	}
	return map[string]interface{}{
		"links":   links,
		"joints":  joints,
		"mass":    p.Mass,
		"inertia": p.Inertia.Rows(),
	}
}
