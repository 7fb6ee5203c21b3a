// Package cell holds the model objects a simulation step operates on:
// compartments, the conductances and synapses they own, and the mechanism
// contract for pluggable add-ons such as homeostatic controllers.
//
// A [Compartment] owns its conductances and mechanisms. Conductances and
// mechanisms keep non-owning references back to the compartment they live
// in; a mechanism bound to a channel or synapse only observes it, writing
// nothing but the target's maximal conductance.
//
// Binding targets are the sealed [Target] union of [*Compartment],
// [*Conductance] and [*Synapse]. Mechanisms reject targets they cannot bind
// by returning an error and reporting it through their [Reporter].
package cell
