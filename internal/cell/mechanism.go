package cell

// Mechanism is the contract for pluggable add-ons integrated once per step
// alongside the conductances of a compartment.
type Mechanism interface {
	// Name identifies the mechanism type. It is used for discovery among a
	// compartment's mechanisms, e.g. to locate a calcium target provider.
	Name() string

	Connect(t Target) error
	Init() error
	Integrate(dt float64) error

	// CheckSolvers returns an error if the mechanism cannot run under the
	// solver of the given order.
	CheckSolvers(order int) error

	// State returns an introspection value; NaN for unknown indices.
	State(idx int) float64

	FullStateSize() int
	// FullState writes FullStateSize values into buf starting at idx and
	// returns the offset following the last value written.
	FullState(buf []float64, idx int) int
}
