package integrators

import (
	"math"

	"github.com/san-kum/homeosim/internal/dynamo"
)

// ExpEuler is the exponential Euler method. Each component relaxes exactly
// toward its steady state over dt with the rates frozen at the start of the
// step, which keeps stiff membranes stable at any step size. Systems that
// do not implement dynamo.Relaxing fall back to explicit Euler.
type ExpEuler struct{}

func NewExpEuler() *ExpEuler {
	return &ExpEuler{}
}

// Order is 0: a single low-order step like Euler.
func (e *ExpEuler) Order() int { return 0 }

func (e *ExpEuler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Input, t float64, dt float64) dynamo.State {
	rel, ok := dyn.(dynamo.Relaxing)
	if !ok {
		return (&Euler{}).Step(dyn, x, u, t, dt)
	}

	xInf, tau := rel.Relaxation(x, u, t)
	var dx dynamo.State
	result := make(dynamo.State, len(x))
	for i := range x {
		if tau[i] > 0 && !math.IsInf(tau[i], 0) && !math.IsNaN(tau[i]) {
			result[i] = Relax(x[i], xInf[i], tau[i], dt)
			continue
		}
		if dx == nil {
			dx = dyn.Derive(x, u, t)
		}
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
