package kinetics

// Delayed rectifier with temperature scaling, Soto-Trevino et al. 2005.
func NewKd() *Spec {
	return &Spec{
		Label: "Kd",
		M: Gate{
			Inf: Sigmoid{VHalf: 14.2, Slope: -11.8},
			Tau: TauCurve{Base: 7.2, Amp: 6.4, VHalf: 28.3, Slope: -19.2},
		},
		P: 4,
	}
}

// Calcium-dependent potassium, Soto-Trevino et al. 2005.
func NewKCaAB() *Spec {
	return &Spec{
		Label: "KCaAB",
		M: Gate{
			Inf: Sigmoid{VHalf: 51, Slope: -4},
			Tau: TauCurve{Base: 90.3, Amp: 75.09, VHalf: 46, Slope: -22.7},
		},
		P:      4,
		CaHalf: 30,
	}
}

// A-type potassium, Liu et al. 1998.
func NewACurrent() *Spec {
	return &Spec{
		Label: "ACurrent",
		M: Gate{
			Inf: Sigmoid{VHalf: 27.2, Slope: -8.7},
			Tau: TauCurve{Base: 11.6, Amp: 10.4, VHalf: 32.9, Slope: -15.2},
		},
		H: Gate{
			Inf: Sigmoid{VHalf: 56.9, Slope: 4.9},
			Tau: TauCurve{Base: 38.6, Amp: 29.2, VHalf: 38.9, Slope: -26.5},
		},
		P: 3,
		Q: 1,
	}
}

// Slow potassium, Lin et al. 2012.
func NewKslow() *Spec {
	return &Spec{
		Label: "Kslow",
		M: Gate{
			Inf: Sigmoid{VHalf: 12.85, Slope: -19.91},
			Tau: TauCurve{Base: 2.03, Amp: 1.96, VHalf: -29.83, Slope: 3.32},
		},
		P: 4,
	}
}

// Transient calcium, Liu et al. 1998.
func NewCaT() *Spec {
	return &Spec{
		Label: "CaT",
		M: Gate{
			Inf: Sigmoid{VHalf: 27.1, Slope: -7.2},
			Tau: TauCurve{Base: 21.7, Amp: 21.3, VHalf: 68.1, Slope: -20.5},
		},
		H: Gate{
			Inf: Sigmoid{VHalf: 32.1, Slope: 5.5},
			Tau: TauCurve{Base: 105, Amp: 89.8, VHalf: 55, Slope: -16.9},
		},
		P:       3,
		Q:       1,
		Calcium: true,
	}
}

// NewLeak returns ungated kinetics, g == gbar.
func NewLeak() *Spec {
	return &Spec{Label: "Leak"}
}
