package metrics

import (
	"github.com/san-kum/urdfsim/internal/dynamo"
	"github.com/san-kum/urdfsim/internal/vehicle"
)

// KineticEnergy is the mean of ½m|v|² + ½ωᵀIω over the observed samples.
type KineticEnergy struct {
	name        string
	mass        float64
	inertia     vehicle.Matrix3
	samples     int
	totalEnergy float64
}

func NewKineticEnergy(mass float64, inertia vehicle.Matrix3) *KineticEnergy {
	return &KineticEnergy{
		name:    "kinetic_energy",
		mass:    mass,
		inertia: inertia,
	}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(x dynamo.State, t float64) {
	if len(x) < 9 {
		return
	}
	vx, vy, vz := x[3], x[4], x[5]
	w := [3]float64{x[6], x[7], x[8]}

	rot := 0.0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rot += w[i] * e.inertia[i][j] * w[j]
		}
	}

	e.totalEnergy += 0.5*e.mass*(vx*vx+vy*vy+vz*vz) + 0.5*rot
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *KineticEnergy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyGain is the kinetic energy at the last observed sample minus the
// energy at the first. Thrust adds energy and drag removes it, so a run from
// rest reports everything the vehicle picked up. Systems without an energy
// function report zero.
type EnergyGain struct {
	dyn     dynamo.Hamiltonian
	first   float64
	last    float64
	started bool
}

func NewEnergyGain(dyn dynamo.System) *EnergyGain {
	h, _ := dyn.(dynamo.Hamiltonian)
	return &EnergyGain{dyn: h}
}

func (e *EnergyGain) Name() string { return "energy_gain" }

func (e *EnergyGain) Observe(x dynamo.State, t float64) {
	if e.dyn == nil {
		return
	}
	energy := e.dyn.Energy(x)
	if !e.started {
		e.first = energy
		e.started = true
	}
	e.last = energy
}

func (e *EnergyGain) Value() float64 { return e.last - e.first }

func (e *EnergyGain) Reset() {
	e.first, e.last = 0, 0
	e.started = false
}
