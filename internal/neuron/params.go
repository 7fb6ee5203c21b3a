package neuron

import (
	"fmt"
	"math"

	"github.com/san-kum/homeosim/internal/dynamo"
)

const (
	// ReferenceTemperature is the temperature in C at which kinetics are
	// specified. Q10 factors are applied relative to it.
	ReferenceTemperature = 11.0

	// millivolts per kelvin for a divalent ion, 1000 k_B / 2e.
	nernstPerKelvin = 500 * 8.6174e-5
)

type Params struct {
	C     float64 // membrane capacitance, nF/mm^2
	CaIn  float64 // resting intracellular calcium, uM
	CaOut float64 // extracellular calcium, uM
	TauCa float64 // calcium buffering time constant, ms
	F     float64 // current to concentration factor, uM/nA

	// Temperature in C.
	Temperature float64
}

func DefaultParams() Params {
	return Params{
		C:           10,
		CaIn:        0.05,
		CaOut:       3000,
		TauCa:       200,
		F:           14.96,
		Temperature: ReferenceTemperature,
	}
}

func (p Params) Validate() error {
	switch {
	case !(p.C > 0):
		return fmt.Errorf("%w: capacitance must be positive, got %v", dynamo.ErrInvalidConfig, p.C)
	case !(p.TauCa > 0):
		return fmt.Errorf("%w: tau_ca must be positive, got %v", dynamo.ErrInvalidConfig, p.TauCa)
	case p.CaIn < 0 || p.CaOut <= 0:
		return fmt.Errorf("%w: calcium concentrations must be positive", dynamo.ErrInvalidConfig)
	case p.F < 0:
		return fmt.Errorf("%w: f must be non-negative, got %v", dynamo.ErrInvalidConfig, p.F)
	}
	return nil
}

// DeltaTemp is the temperature offset from the reference in units of 10 C.
func (p Params) DeltaTemp() float64 {
	return (p.Temperature - ReferenceTemperature) / 10
}

// Nernst returns the calcium reversal potential in mV for an intracellular
// concentration ca.
func (p Params) Nernst(ca float64) float64 {
	if ca <= 0 {
		ca = 1e-9
	}
	return nernstPerKelvin * (p.Temperature + 273.15) * math.Log(p.CaOut/ca)
}
