// Package kinetics provides gating kinetics for voltage- and calcium-gated
// conductances.
//
// A channel variant is described by a [Kinetics] value rather than by its own
// conductance type:
//
//   - [Spec]: data-driven sigmoid steady states and difference-of-logistics
//     time constants, optionally scaled by a saturating calcium term
//   - [NaV], [CaS]: variants whose time constants need their own formulas
//   - [Fixed]: voltage-independent kinetics, mostly useful for analysis
//
// Named presets are available through [Lookup]:
//
//	kin, err := kinetics.Lookup("ACurrent")
//	mInf, hInf := kin.Steady(-50, 0.05)
package kinetics
