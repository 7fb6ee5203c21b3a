package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type Input []float64

type System interface {
	Derive(x State, u Input, t float64) State
	StateDim() int
	InputDim() int
}

// Preparer is implemented by systems that hold discrete per-step state
// (gating variables, mechanisms) updated once before each solver step.
type Preparer interface {
	Prepare(x State, t, dt float64) error
}

// Relaxing is implemented by systems whose every component can be written
// as dx/dt = (xInf - x) / tau with xInf and tau depending on the state.
// A non-finite or non-positive tau marks a component with no relaxation.
type Relaxing interface {
	System
	Relaxation(x State, u Input, t float64) (xInf, tau State)
}

type Integrator interface {
	Step(dyn System, x State, u Input, t float64, dt float64) State
	// Order identifies the solver to mechanisms that only support some
	// solvers. 0 is the single explicit low-order step.
	Order() int
}

type Stimulus interface {
	Compute(x State, t float64) Input
}

type Metric interface {
	Name() string
	Observe(x State, u Input, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, u Input, t float64)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Config struct {
	Dt            float64
	Duration      float64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.05,
		Duration:      1000.0,
		ValidateState: true,
	}
}

type Result struct {
	States     []State
	Inputs     []Input
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}
