// Package dynamo provides the simulation primitives shared by the vehicle
// model, the steppers and the simulator.
//
// The package defines the fundamental interfaces and types for numerical
// integration of ordinary differential equations dX/dt = f(X, t):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems
//   - [Stepper]: single-step numerical integrator
//   - [AdaptiveStepper]: stepper with an embedded error estimate
//   - [Metric]: scalar observed over a sampled trajectory
//
// # Errors
//
// Derivative evaluation reports [ErrZeroMass] and [ErrSingularInertia]
// instead of producing NaN or Inf. The simulator wraps every failure in an
// [IntegrationError] carrying the furthest time reached.
//
// # Thread Safety
//
// Steppers may keep scratch buffers and are NOT safe for concurrent use.
// Systems are read-only during integration and may be shared.
package dynamo
