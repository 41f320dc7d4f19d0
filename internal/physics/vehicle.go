package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/urdfsim/internal/dynamo"
	"github.com/san-kum/urdfsim/internal/vehicle"
)

// StateDim is the length of the vehicle state
// [x, y, z, vx, vy, vz, wx, wy, wz].
const StateDim = 9

var ErrNilParameters = errors.New("physics: nil vehicle parameters")

// Environment holds the applied forcing. Drag and Torque are per-axis
// damping coefficients, Thrust is a constant force.
type Environment struct {
	Drag   r3.Vector
	Torque r3.Vector
	Thrust r3.Vector
}

func DefaultEnvironment() Environment {
	return Environment{
		Drag:   r3.Vector{X: 0.1, Y: 0.1, Z: 0.2},
		Torque: r3.Vector{X: 0.05, Y: 0.05, Z: 0.05},
		Thrust: r3.Vector{X: 10.0, Y: 5.0, Z: 0.0},
	}
}

func NewEnvironment(drag, torque, thrust [3]float64) Environment {
	return Environment{Drag: vec(drag), Torque: vec(torque), Thrust: vec(thrust)}
}

// Vehicle is the simplified rigid body: translation driven by thrust and
// linear drag, rotation damped through the inverse inertia. The two are
// not coupled.
type Vehicle struct {
	Mass    float64
	Inertia vehicle.Matrix3
	Env     Environment

	invInertia *mat.Dense
}

// NewVehicle validates the parameters and precomputes the inverse inertia,
// so zero mass or a singular inertia is reported before any integration.
func NewVehicle(p *vehicle.Parameters, env Environment) (*Vehicle, error) {
	if p == nil {
		return nil, ErrNilParameters
	}
	if err := checkMass(p.Mass); err != nil {
		return nil, err
	}
	inv, err := invertInertia(p.Inertia)
	if err != nil {
		return nil, err
	}
	return &Vehicle{
		Mass:       p.Mass,
		Inertia:    p.Inertia,
		Env:        env,
		invInertia: inv,
	}, nil
}

func (v *Vehicle) StateDim() int { return StateDim }

func (v *Vehicle) Derive(x dynamo.State, t float64) (dynamo.State, error) {
	if len(x) != StateDim {
		return nil, fmt.Errorf("%w: got %d components, want %d", dynamo.ErrDimensionMismatch, len(x), StateDim)
	}
	return derive(x, v.Mass, v.invInertia, v.Env), nil
}

// Energy is the kinetic energy ½m|v|² + ½ωᵀIω.
func (v *Vehicle) Energy(x dynamo.State) float64 {
	vel := r3.Vector{X: x[3], Y: x[4], Z: x[5]}
	omega := r3.Vector{X: x[6], Y: x[7], Z: x[8]}
	iw := mulMatrix(v.Inertia, omega)
	return 0.5*v.Mass*vel.Norm2() + 0.5*omega.Dot(iw)
}

// Derivative evaluates the vehicle dynamics for a single state without
// building a Vehicle. It does not modify its inputs.
func Derivative(x dynamo.State, p *vehicle.Parameters, env Environment) (dynamo.State, error) {
	if len(x) != StateDim {
		return nil, fmt.Errorf("%w: got %d components, want %d", dynamo.ErrDimensionMismatch, len(x), StateDim)
	}
	if p == nil {
		return nil, ErrNilParameters
	}
	if err := checkMass(p.Mass); err != nil {
		return nil, err
	}
	inv, err := invertInertia(p.Inertia)
	if err != nil {
		return nil, err
	}
	return derive(x, p.Mass, inv, env), nil
}

func derive(x dynamo.State, mass float64, invInertia *mat.Dense, env Environment) dynamo.State {
	vel := r3.Vector{X: x[3], Y: x[4], Z: x[5]}
	omega := r3.Vector{X: x[6], Y: x[7], Z: x[8]}

	drag := hadamard(env.Drag, vel).Mul(-1)
	force := env.Thrust.Add(drag)
	torque := hadamard(env.Torque, omega).Mul(-1)

	acc := r3.Vector{X: force.X / mass, Y: force.Y / mass, Z: force.Z / mass}

	var alpha mat.VecDense
	alpha.MulVec(invInertia, mat.NewVecDense(3, []float64{torque.X, torque.Y, torque.Z}))

	return dynamo.State{
		vel.X, vel.Y, vel.Z,
		acc.X, acc.Y, acc.Z,
		alpha.AtVec(0), alpha.AtVec(1), alpha.AtVec(2),
	}
}

func checkMass(m float64) error {
	if m == 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return fmt.Errorf("%w: %g", dynamo.ErrZeroMass, m)
	}
	return nil
}

func invertInertia(m vehicle.Matrix3) (*mat.Dense, error) {
	a := mat.NewDense(3, 3, m.Flat())
	det := mat.Det(a)
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return nil, fmt.Errorf("%w: det=%g", dynamo.ErrSingularInertia, det)
	}

	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		// ill-conditioned but finite inverses are usable
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, fmt.Errorf("%w: %v", dynamo.ErrSingularInertia, err)
		}
	}
	for _, v := range inv.RawMatrix().Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: inverse is not finite", dynamo.ErrSingularInertia)
		}
	}
	return &inv, nil
}

func hadamard(a, b r3.Vector) r3.Vector {
	return r3.Vector{X: a.X * b.X, Y: a.Y * b.Y, Z: a.Z * b.Z}
}

func mulMatrix(m vehicle.Matrix3, v r3.Vector) r3.Vector {
	return r3.Vector{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

func vec(a [3]float64) r3.Vector {
	return r3.Vector{X: a[0], Y: a[1], Z: a[2]}
}
