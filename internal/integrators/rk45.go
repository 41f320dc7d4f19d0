package integrators

import (
	"math"

	"github.com/san-kum/urdfsim/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	// 5th order minus embedded 4th order weights
	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// errorExponent is -1/(q+1) for the 4th order error estimator.
const errorExponent = -1.0 / 5.0

type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
	fixedTol dynamo.Tolerance
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
		fixedTol: dynamo.Tolerance{RTol: 1e-6, ATol: 1e-9},
	}
}

// Step advances by exactly dt, ignoring the error estimate.
func (r *RK45) Step(dyn dynamo.System, x dynamo.State, t, dt float64) (dynamo.State, error) {
	res, err := r.StepAdaptive(dyn, x, t, dt, r.fixedTol)
	if err != nil {
		return nil, err
	}
	return res.State, nil
}

// StepAdaptive attempts one step of size dt. The step is accepted when the
// RMS of the scaled local error is at most 1; NextDt is the proposed size of
// the following attempt either way.
func (r *RK45) StepAdaptive(dyn dynamo.System, x dynamo.State, t, dt float64, tol dynamo.Tolerance) (dynamo.StepResult, error) {
	n := len(x)

	k1, err := dyn.Derive(x, t)
	if err != nil {
		return dynamo.StepResult{}, err
	}

	x2 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + dt*b21*k1[i]
	}
	k2, err := dyn.Derive(x2, t+a2*dt)
	if err != nil {
		return dynamo.StepResult{}, err
	}

	x3 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x3[i] = x[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3, err := dyn.Derive(x3, t+a3*dt)
	if err != nil {
		return dynamo.StepResult{}, err
	}

	x4 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x4[i] = x[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4, err := dyn.Derive(x4, t+a4*dt)
	if err != nil {
		return dynamo.StepResult{}, err
	}

	x5 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x5[i] = x[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5, err := dyn.Derive(x5, t+a5*dt)
	if err != nil {
		return dynamo.StepResult{}, err
	}

	x6 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x6[i] = x[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6, err := dyn.Derive(x6, t+dt)
	if err != nil {
		return dynamo.StepResult{}, err
	}

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7, err := dyn.Derive(xNew, t+dt)
	if err != nil {
		return dynamo.StepResult{}, err
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := tol.ATol + tol.RTol*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		e := errEst / scale
		sum += e * e
	}
	errNorm := 0.0
	if n > 0 {
		errNorm = math.Sqrt(sum / float64(n))
	}

	res := dynamo.StepResult{State: xNew, ErrNorm: errNorm}
	switch {
	case math.IsNaN(errNorm) || math.IsInf(errNorm, 0):
		res.NextDt = dt * r.minScale
	case errNorm <= 1:
		res.Accepted = true
		if errNorm == 0 {
			res.NextDt = dt * r.maxScale
		} else {
			res.NextDt = dt * math.Min(r.maxScale, r.safety*math.Pow(errNorm, errorExponent))
		}
	default:
		res.NextDt = dt * math.Max(r.minScale, r.safety*math.Pow(errNorm, errorExponent))
	}
	return res, nil
}

// InitialStep estimates a first step size from the local derivative
// behaviour (Hairer, Nørsett & Wanner, II.4), capped by span.
func (r *RK45) InitialStep(dyn dynamo.System, x dynamo.State, t, span float64, tol dynamo.Tolerance) (float64, error) {
	n := len(x)
	if n == 0 {
		return span, nil
	}

	f0, err := dyn.Derive(x, t)
	if err != nil {
		return 0, err
	}

	scale := make([]float64, n)
	for i := range x {
		scale[i] = tol.ATol + math.Abs(x[i])*tol.RTol
	}

	d0 := rmsScaled(x, scale)
	d1 := rmsScaled(f0, scale)

	h0 := 1e-6
	if d0 >= 1e-5 && d1 >= 1e-5 {
		h0 = 0.01 * d0 / d1
	}
	h0 = math.Min(h0, span)

	x1 := make(dynamo.State, n)
	for i := range x {
		x1[i] = x[i] + h0*f0[i]
	}
	f1, err := dyn.Derive(x1, t+h0)
	if err != nil {
		return 0, err
	}

	diff := make([]float64, n)
	for i := range diff {
		diff[i] = f1[i] - f0[i]
	}
	d2 := rmsScaled(diff, scale) / h0

	var h1 float64
	if d1 <= 1e-15 && d2 <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/math.Max(d1, d2), -errorExponent)
	}

	return math.Min(math.Min(100*h0, h1), span), nil
}

func rmsScaled(v []float64, scale []float64) float64 {
	sum := 0.0
	for i := range v {
		e := v[i] / scale[i]
		sum += e * e
	}
	return math.Sqrt(sum / float64(len(v)))
}
