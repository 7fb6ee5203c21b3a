package control

import "errors"

var (
	ErrInvalidTauG            = errors.New("tau_g must be > 0, perhaps you meant +Inf")
	ErrUnbound                = errors.New("controller is not bound to a conductance or synapse")
	ErrAlreadyBound           = errors.New("controller is already bound")
	ErrUnsupportedSolverOrder = errors.New("unsupported solver order")
	ErrInvalidTarget          = errors.New("calcium target must be a finite, non-negative value or NaN")
	ErrInvalidArea            = errors.New("compartment area must be positive")
)
