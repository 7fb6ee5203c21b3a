package cell

import (
	"math"
	"testing"

	"github.com/san-kum/homeosim/internal/kinetics"
)

func TestConductanceWorkedExample(t *testing.T) {
	kin := &kinetics.Fixed{Label: "generic", MInf: 0.5, TauM: 10, P: 1}
	ch := NewConductance("", kin, 1, -80, 0, 0)

	ch.Integrate(-50, 0, 10, 0)

	if math.Abs(ch.M-0.3161) > 1e-4 {
		t.Errorf("m after one step = %.6f, want 0.3161", ch.M)
	}
	if ch.H != 1 {
		t.Errorf("h should stay pinned at 1 without inactivation, got %v", ch.H)
	}
	if math.Abs(ch.G-ch.M) > 1e-12 {
		t.Errorf("g = %v, want gbar*m = %v", ch.G, ch.M)
	}
	if ch.Name != "generic" {
		t.Errorf("name should default to the kinetics name, got %q", ch.Name)
	}
}

func TestConductanceFixedPoint(t *testing.T) {
	kin := kinetics.NewACurrent()
	v := -45.0
	mInf, hInf := kin.Steady(v, 0)

	for _, dt := range []float64{0, 0.025, 1, 50} {
		ch := NewConductance("A", kin, 50, -80, mInf, hInf)
		ch.Integrate(v, 0, dt, 0)
		if ch.M != mInf || ch.H != hInf {
			t.Errorf("dt=%v: gates moved from steady state: m=%v h=%v", dt, ch.M, ch.H)
		}
	}
}

func TestConductanceConvergesMonotonically(t *testing.T) {
	kin := kinetics.NewKd()
	v := -20.0
	mInf, _ := kin.Steady(v, 0)

	ch := NewConductance("Kd", kin, 100, -80, 0, 0)
	prev := math.Abs(ch.M - mInf)
	for i := 0; i < 200; i++ {
		ch.Integrate(v, 0, 0.1, 0)
		dist := math.Abs(ch.M - mInf)
		if dist > prev {
			t.Fatalf("step %d moved away from m_inf", i)
		}
		prev = dist
	}
	if prev > 1e-3 {
		t.Errorf("m did not converge to m_inf: distance %v", prev)
	}
}

func TestConductanceHugeStepReachesSteadyState(t *testing.T) {
	kin := kinetics.NewACurrent()
	v := -30.0
	mInf, hInf := kin.Steady(v, 0)

	ch := NewConductance("A", kin, 50, -80, 0.9, 0.05)
	ch.Integrate(v, 0, 1e9, 0)

	if math.Abs(ch.M-mInf) > 1e-12 || math.Abs(ch.H-hInf) > 1e-12 {
		t.Errorf("expected steady state after a huge step, got m=%v h=%v", ch.M, ch.H)
	}
	want := 50 * mInf * mInf * mInf * hInf
	if math.Abs(ch.G-want) > 1e-9 {
		t.Errorf("g = %v, want %v", ch.G, want)
	}
}

func TestConductanceTemperatureScaling(t *testing.T) {
	kin := &kinetics.Fixed{MInf: 1, TauM: 10, P: 1}

	cold := NewConductance("cold", kin, 2, 0, 0, 1)
	warm := NewConductance("warm", kin, 2, 0, 0, 1)
	warm.Q = kinetics.Q10{G: 2, TauM: 3}

	cold.Integrate(0, 0, 1, 1)
	warm.Integrate(0, 0, 1, 1)

	if warm.M <= cold.M {
		t.Errorf("Q_tau_m > 1 should speed up activation: warm %v, cold %v", warm.M, cold.M)
	}
	if want := 1 - math.Exp(-0.3); math.Abs(warm.M-want) > 1e-12 {
		t.Errorf("warm m = %v, want %v", warm.M, want)
	}
	if want := 2 * 2 * warm.M; math.Abs(warm.G-want) > 1e-12 {
		t.Errorf("warm g = %v, want %v", warm.G, want)
	}
}

func TestLeakConductance(t *testing.T) {
	ch := NewConductance("Leak", kinetics.NewLeak(), 0.1, -50, 0, 0)
	ch.Integrate(-60, 0, 0.05, 0)

	if ch.G != 0.1 {
		t.Errorf("leak g = %v, want gbar", ch.G)
	}
	if got := ch.Current(-60); math.Abs(got+1) > 1e-12 {
		t.Errorf("leak current = %v, want -1", got)
	}
}

func TestCalciumGatedUsesCalcium(t *testing.T) {
	ch := NewConductance("KCa", kinetics.NewKCaAB(), 100, -80, 0, 0)
	ch.Integrate(-20, 0, 1e6, 0)
	if ch.M != 0 {
		t.Errorf("without calcium m should relax to 0, got %v", ch.M)
	}

	ch.Integrate(-20, 50, 1e6, 0)
	if ch.M <= 0 {
		t.Errorf("with calcium m should open, got %v", ch.M)
	}
}
