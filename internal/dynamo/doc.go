// Package dynamo provides the step-driven simulation core.
//
// The package defines the interfaces a simulation is assembled from:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Preparer]: per-step hook run before the solver advances the state
//   - [Integrator]: numerical solver interface
//   - [Stimulus]: external input (injected current) interface
//   - [Simulator]: orchestrates simulation runs
//
// # Example
//
//	cell := neuron.New(comp, neuron.DefaultParams())
//	sim := dynamo.New(cell, integrators.NewEuler(), stimulus.NewNone(1))
//	result, _ := sim.Run(ctx, cell.InitialState(), cfg)
//
// # Step ordering
//
// Each step computes the stimulus, calls Prepare on systems implementing
// [Preparer], notifies metrics and observers, and only then lets the
// integrator advance the state. Prepare therefore always sees the state
// produced by the previous step.
//
// # Thread Safety
//
// Simulator and Session instances are NOT thread-safe and a step is never
// run concurrently with another.
package dynamo
