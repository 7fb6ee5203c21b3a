package kinetics

import "math"

// NaV is the fast sodium conductance of Liu et al. 1998. Its inactivation
// time constant is a product of logistics, so it does not fit [Spec].
type NaV struct{}

func NewNaV() *NaV { return &NaV{} }

func (NaV) Name() string { return "NaV" }

func (NaV) Steady(v, ca float64) (float64, float64) {
	return Boltzmann(v, 25.5, -5.29), Boltzmann(v, 48.9, 5.18)
}

func (NaV) Taus(v float64) (float64, float64) {
	tauM := 1.32 - 1.26*Boltzmann(v, 120, -25)
	tauH := 0.67 * Boltzmann(v, 62.9, -10) * (1.5 + Boltzmann(v, 34.9, 3.6))
	return tauM, tauH
}

func (NaV) Exponents() (int, int) { return 3, 1 }

// CaS is the slow calcium conductance of Liu et al. 1998.
type CaS struct{}

func NewCaS() *CaS { return &CaS{} }

func (CaS) Name() string { return "CaS" }

func (CaS) Steady(v, ca float64) (float64, float64) {
	return Boltzmann(v, 33, -8.1), Boltzmann(v, 60, 6.2)
}

func (CaS) Taus(v float64) (float64, float64) {
	tauM := 1.4 + 7/(math.Exp((v+27)/10)+math.Exp((v+70)/-13))
	tauH := 60 + 150/(math.Exp((v+55)/9)+math.Exp((v+65)/-16))
	return tauM, tauH
}

func (CaS) Exponents() (int, int) { return 3, 1 }

func (CaS) CarriesCalcium() bool { return true }
