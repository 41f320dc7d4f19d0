// Package physics provides the vehicle dynamics model for simulation.
//
// [Vehicle] implements the [dynamo.System] interface for the 9-component
// state [x, y, z, vx, vy, vz, wx, wy, wz]:
//
//	dp/dt = v
//	dv/dt = (thrust - drag ⊙ v) / mass
//	dω/dt = inverse(I) · (-torque ⊙ ω)
//
// Translation and rotation are independent; there is no attitude state.
//
// # Validation
//
// Build the model with [NewVehicle] so that zero mass and singular inertia
// surface as [dynamo.ErrZeroMass] and [dynamo.ErrSingularInertia] before
// integration starts:
//
//	dyn, err := physics.NewVehicle(params, physics.DefaultEnvironment())
//	if err != nil {
//	    return err
//	}
package physics
