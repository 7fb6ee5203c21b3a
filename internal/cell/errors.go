package cell

import "errors"

var (
	// ErrCompartmentTarget is returned by mechanisms that may not bind a
	// compartment directly.
	ErrCompartmentTarget = errors.New("cell: mechanism cannot connect to a compartment")

	// ErrUnsupportedTarget is returned when a mechanism is connected to a
	// target kind it does not handle.
	ErrUnsupportedTarget = errors.New("cell: unsupported connection target")

	// ErrNotAttached indicates a channel or synapse that has not been
	// connected to a compartment yet.
	ErrNotAttached = errors.New("cell: target is not attached to a compartment")
)
