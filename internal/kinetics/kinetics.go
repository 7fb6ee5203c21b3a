package kinetics

import "math"

// Kinetics supplies the steady states, time constants and gate exponents of
// one channel variant. Implementations must be pure functions of their
// arguments.
type Kinetics interface {
	Name() string
	// Steady returns the activation and inactivation steady states at
	// membrane potential v (mV) and calcium concentration ca (uM).
	Steady(v, ca float64) (mInf, hInf float64)
	// Taus returns the activation and inactivation time constants (ms).
	Taus(v float64) (tauM, tauH float64)
	// Exponents returns p and q in g = gbar * m^p * h^q. q == 0 means the
	// variant has no inactivation gate.
	Exponents() (p, q int)
}

// CalciumCarrier is implemented by kinetics whose current carries calcium
// into the compartment.
type CalciumCarrier interface {
	CarriesCalcium() bool
}

// Carries reports whether k carries calcium.
func Carries(k Kinetics) bool {
	if cc, ok := k.(CalciumCarrier); ok {
		return cc.CarriesCalcium()
	}
	return false
}

// Boltzmann returns 1 / (1 + exp((v + vHalf) / slope)). A negative slope
// gives an activation curve, a positive one an inactivation curve.
func Boltzmann(v, vHalf, slope float64) float64 {
	return 1.0 / (1.0 + math.Exp((v+vHalf)/slope))
}

// Sigmoid is a steady-state curve parameterized for [Boltzmann].
type Sigmoid struct {
	VHalf float64 `yaml:"v_half"`
	Slope float64 `yaml:"slope"`
}

func (s Sigmoid) At(v float64) float64 {
	return Boltzmann(v, s.VHalf, s.Slope)
}

// TauCurve is a time constant of the form Base - Amp / (1 + exp((v+VHalf)/Slope)).
// It stays positive as long as Amp < Base.
type TauCurve struct {
	Base  float64 `yaml:"base"`
	Amp   float64 `yaml:"amp"`
	VHalf float64 `yaml:"v_half"`
	Slope float64 `yaml:"slope"`
}

func (c TauCurve) At(v float64) float64 {
	return c.Base - c.Amp*Boltzmann(v, c.VHalf, c.Slope)
}

// Gate pairs a steady-state curve with its time constant.
type Gate struct {
	Inf Sigmoid  `yaml:"inf"`
	Tau TauCurve `yaml:"tau"`
}

// Spec is the generic parameter set shared by most channel variants.
type Spec struct {
	Label string `yaml:"name"`
	M     Gate   `yaml:"m"`
	H     Gate   `yaml:"h"`
	P     int    `yaml:"p"`
	Q     int    `yaml:"q"`

	// CaHalf, when positive, scales m_inf by Ca / (Ca + CaHalf).
	CaHalf float64 `yaml:"ca_half"`

	Calcium bool `yaml:"calcium"`
}

func (s *Spec) Name() string { return s.Label }

func (s *Spec) Steady(v, ca float64) (mInf, hInf float64) {
	mInf, hInf = 1, 1
	if s.P > 0 {
		mInf = s.M.Inf.At(v)
		if s.CaHalf > 0 {
			mInf *= ca / (ca + s.CaHalf)
		}
	}
	if s.Q > 0 {
		hInf = s.H.Inf.At(v)
	}
	return mInf, hInf
}

func (s *Spec) Taus(v float64) (tauM, tauH float64) {
	tauM, tauH = 1, 1
	if s.P > 0 {
		tauM = s.M.Tau.At(v)
	}
	if s.Q > 0 {
		tauH = s.H.Tau.At(v)
	}
	return tauM, tauH
}

func (s *Spec) Exponents() (p, q int) { return s.P, s.Q }

func (s *Spec) CarriesCalcium() bool { return s.Calcium }

// Fixed kinetics hold steady states and time constants constant in v and ca.
type Fixed struct {
	Label string
	MInf  float64
	HInf  float64
	TauM  float64
	TauH  float64
	P, Q  int
}

func (f *Fixed) Name() string { return f.Label }

func (f *Fixed) Steady(v, ca float64) (float64, float64) {
	if f.Q == 0 {
		return f.MInf, 1
	}
	return f.MInf, f.HInf
}

func (f *Fixed) Taus(v float64) (float64, float64) {
	if f.Q == 0 {
		return f.TauM, 1
	}
	return f.TauM, f.TauH
}

func (f *Fixed) Exponents() (int, int) { return f.P, f.Q }

// Q10 holds per-channel temperature scaling factors. A factor that is not
// positive is treated as 1.
type Q10 struct {
	G    float64 `yaml:"q_g"`
	TauM float64 `yaml:"q_tau_m"`
	TauH float64 `yaml:"q_tau_h"`
}

// Factors returns the multipliers for gbar and for the effective decay of
// each gate at a temperature offset of delta.
func (q Q10) Factors(delta float64) (g, tauM, tauH float64) {
	return scale(q.G, delta), scale(q.TauM, delta), scale(q.TauH, delta)
}

func scale(q, delta float64) float64 {
	if q <= 0 || delta == 0 {
		return 1
	}
	return math.Pow(q, delta)
}
