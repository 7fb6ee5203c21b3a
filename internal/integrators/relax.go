package integrators

import "math"

// Relax advances a first-order relaxation dx/dt = (xInf - x) / tau over dt
// with xInf and tau frozen for the step:
//
//	x(dt) = xInf + (x0 - xInf) * exp(-dt / tau)
//
// The update is exact for constant coefficients and stable for any dt >= 0.
func Relax(x0, xInf, tau, dt float64) float64 {
	return xInf + (x0-xInf)*math.Exp(-dt/tau)
}
