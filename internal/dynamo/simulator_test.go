package dynamo

import (
	"context"
	"errors"
	"math"
	"testing"
)

type testDynamics struct{}

func (t *testDynamics) Derive(x State, u Input, time float64) State {
	return State{-x[0]}
}

func (t *testDynamics) StateDim() int { return 1 }
func (t *testDynamics) InputDim() int { return 0 }

type preparedDynamics struct {
	testDynamics
	calls []float64
	fail  error
}

func (p *preparedDynamics) Prepare(x State, t, dt float64) error {
	p.calls = append(p.calls, x[0])
	return p.fail
}

type testIntegrator struct{}

func (t *testIntegrator) Step(dyn System, x State, u Input, time float64, dt float64) State {
	dx := dyn.Derive(x, u, time)
	return State{x[0] + dt*dx[0]}
}

func (t *testIntegrator) Order() int { return 0 }

type testStimulus struct{}

func (t *testStimulus) Compute(x State, time float64) Input {
	return Input{}
}

func TestSimulatorRun(t *testing.T) {
	sim := New(&testDynamics{}, &testIntegrator{}, &testStimulus{})

	cfg := Config{
		Dt:       0.1,
		Duration: 1.0,
	}

	x0 := State{1.0}
	result, err := sim.Run(context.Background(), x0, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.States) != 11 {
		t.Errorf("expected 11 states, got %d", len(result.States))
	}

	if len(result.Times) != 11 {
		t.Errorf("expected 11 times, got %d", len(result.Times))
	}

	finalState := result.States[len(result.States)-1][0]
	expected := 1.0 * math.Exp(-1.0)
	if math.Abs(finalState-expected) > 0.2 {
		t.Errorf("expected final state ~%.4f, got %.4f", expected, finalState)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(&testDynamics{}, &testIntegrator{}, &testStimulus{})

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), State{1.0}, tt.cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSimulatorDimensionMismatch(t *testing.T) {
	sim := New(&testDynamics{}, &testIntegrator{}, &testStimulus{})

	_, err := sim.Run(context.Background(), State{1.0, 2.0}, DefaultConfig())
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestSimulatorPrepareSeesPreviousState(t *testing.T) {
	dyn := &preparedDynamics{}
	sim := New(dyn, &testIntegrator{}, &testStimulus{})

	result, err := sim.Run(context.Background(), State{1.0}, Config{Dt: 0.5, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(dyn.calls) != 2 {
		t.Fatalf("expected 2 prepare calls, got %d", len(dyn.calls))
	}
	for i, got := range dyn.calls {
		if got != result.States[i][0] {
			t.Errorf("prepare %d saw %v, want state %v", i, got, result.States[i][0])
		}
	}
}

func TestSimulatorPrepareError(t *testing.T) {
	boom := errors.New("misconfigured")
	dyn := &preparedDynamics{fail: boom}
	sim := New(dyn, &testIntegrator{}, &testStimulus{})

	result, err := sim.Run(context.Background(), State{1.0}, Config{Dt: 0.1, Duration: 1.0})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped prepare error, got %v", err)
	}

	var simErr *SimulationError
	if !errors.As(err, &simErr) || simErr.Step != 0 {
		t.Errorf("expected SimulationError at step 0, got %#v", err)
	}
	if result.StepsTaken != 0 {
		t.Errorf("expected no steps, got %d", result.StepsTaken)
	}
}

type divergingIntegrator struct{}

func (d *divergingIntegrator) Step(dyn System, x State, u Input, time float64, dt float64) State {
	return State{math.NaN()}
}

func (d *divergingIntegrator) Order() int { return 0 }

func TestSimulatorInvalidState(t *testing.T) {
	sim := New(&testDynamics{}, &divergingIntegrator{}, &testStimulus{})

	cfg := DefaultConfig()
	result, err := sim.Run(context.Background(), State{1.0}, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Errors) != 1 || !errors.Is(result.Errors[0], ErrInvalidState) {
		t.Errorf("expected a single ErrInvalidState, got %v", result.Errors)
	}
	if result.StepsTaken != 0 {
		t.Errorf("expected run to stop at the first invalid state, took %d steps", result.StepsTaken)
	}
}

func TestSimulatorCanceled(t *testing.T) {
	sim := New(&testDynamics{}, &testIntegrator{}, &testStimulus{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.Run(ctx, State{1.0}, DefaultConfig())
	if !errors.Is(err, ErrContextCanceled) || !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancellation error, got %v", err)
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(x State, u Input, time float64) {
	t.count++
	t.sum += x[0]
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

func TestSimulatorMetrics(t *testing.T) {
	sim := New(&testDynamics{}, &testIntegrator{}, &testStimulus{})

	metric := &testMetric{}
	sim.AddMetric(metric)

	cfg := Config{Dt: 0.1, Duration: 1.0}
	result, err := sim.Run(context.Background(), State{1.0}, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}

	if metric.count != 10 {
		t.Errorf("expected 10 observations, got %d", metric.count)
	}
}

func TestSessionStep(t *testing.T) {
	sim := New(&testDynamics{}, &testIntegrator{}, &testStimulus{})

	session, err := sim.Start(State{1.0}, Config{Dt: 0.5, Duration: 1.0})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	for !session.Done() {
		if _, err := session.Step(); err != nil {
			t.Fatalf("step failed: %v", err)
		}
	}

	if session.Steps() != 2 {
		t.Errorf("expected 2 steps, got %d", session.Steps())
	}
	if got := session.State()[0]; math.Abs(got-0.25) > 1e-12 {
		t.Errorf("expected 0.25 after two Euler halvings, got %v", got)
	}
}
