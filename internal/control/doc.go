// Package control provides homeostatic regulators that run as compartment
// mechanisms.
//
//   - [IntegralController]: drives a channel's gbar or a synapse's gmax so
//     that the compartment's calcium tracks a set-point.
//   - [CalciumTarget]: publishes a per-compartment calcium set-point that
//     controllers discover during Init.
//
// # Usage
//
//	ic, err := control.NewIntegralController(5000, 1000, 0)
//	if err != nil { ... }
//	if err := ic.Connect(channel); err != nil { ... }
//	// after every mechanism is connected
//	if err := comp.InitMechanisms(); err != nil { ... }
//
// Controllers implement [dynamo.Configurable] so tau_m and tau_g can be
// tuned while a simulation is running.
package control
