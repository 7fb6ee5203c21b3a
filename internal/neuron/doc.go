// Package neuron drives a single-compartment conductance-based model.
//
// A [Neuron] implements [dynamo.System] over the state [V, Ca] and
// [dynamo.Preparer] for the discrete per-step work: recording the previous
// calcium, updating calcium reversal potentials, advancing every gating
// variable and running the compartment's mechanisms. The membrane equation
// and calcium buffering are then advanced by any [dynamo.Integrator].
//
//	C dV/dt      = -sum_i g_i (V - E_i) + I_ext / A
//	tau_Ca dCa/dt = -f A I_Ca - Ca + Ca_in
package neuron
