package experiment

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/homeosim/internal/cell"
	"github.com/san-kum/homeosim/internal/config"
	"github.com/san-kum/homeosim/internal/control"
	"github.com/san-kum/homeosim/internal/stimulus"
)

func silent() Option {
	return WithReporter(cell.ReporterFunc(func(error) {}))
}

func TestBuildHomeostaticPreset(t *testing.T) {
	cfg := config.GetPreset("homeostatic")
	e, err := Build(cfg, silent())
	require.NoError(t, err)

	assert.Len(t, e.Controllers(), 6)
	for _, ic := range e.Controllers() {
		assert.Equal(t, control.Channel, ic.Type())
		assert.Equal(t, 7.0, ic.Target, "controllers should resolve the CalciumTarget provider")
	}
	assert.Len(t, e.Neuron().Comp.Conductances(), 7)
	assert.NotNil(t, e.Trace())
}

func TestBuildRejectsHigherOrderSolverWithControllers(t *testing.T) {
	cfg := config.GetPreset("homeostatic")
	cfg.Integrator = "rk4"

	var reported []error
	_, err := Build(cfg, WithReporter(cell.ReporterFunc(func(err error) { reported = append(reported, err) })))

	assert.ErrorIs(t, err, control.ErrUnsupportedSolverOrder)
	assert.NotEmpty(t, reported)
}

func TestBuildAllowsRK4WithoutControllers(t *testing.T) {
	cfg := config.GetPreset("passive")
	require.Equal(t, "rk4", cfg.Integrator)

	_, err := Build(cfg, silent())
	assert.NoError(t, err)
}

func TestBuildInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Dt = 0
	_, err := Build(cfg)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestRunPassive(t *testing.T) {
	cfg := config.GetPreset("passive")
	cfg.Duration = 50
	e, err := Build(cfg, silent())
	require.NoError(t, err)

	result, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 1000, result.StepsTaken, 1)
	assert.Empty(t, result.Errors)
	assert.Len(t, e.Trace().Rows(), result.StepsTaken)
	assert.Contains(t, result.Metrics, "mean_voltage")
	assert.True(t, math.IsNaN(result.Metrics["calcium_error"]))
}

func TestRunDisabledControllersLeaveConductancesFixed(t *testing.T) {
	cfg := config.GetPreset("disabled")
	cfg.Duration = 20
	e, err := Build(cfg, silent(), WithoutTrace())
	require.NoError(t, err)

	before := e.Conductances()
	_, err = e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, before, e.Conductances())
}

func TestRunHomeostaticGrowsConductances(t *testing.T) {
	cfg := config.GetPreset("homeostatic")
	cfg.Duration = 100
	e, err := Build(cfg, silent(), WithoutTrace())
	require.NoError(t, err)

	before := e.Conductances()
	_, err = e.Run(context.Background())
	require.NoError(t, err)

	after := e.Conductances()
	assert.Greater(t, after["Kd"], before["Kd"], "calcium below target should grow gbar")
	assert.Equal(t, before["Leak"], after["Leak"], "unregulated channels stay fixed")
	for _, ic := range e.Controllers() {
		assert.Greater(t, ic.M, 0.0)
	}
}

func TestStimulusOverride(t *testing.T) {
	cfg := config.GetPreset("passive")
	manual := stimulus.NewManual()
	e, err := Build(cfg, silent(), WithStimulus(manual))
	require.NoError(t, err)
	assert.Same(t, manual, e.Stimulus())
}

func TestRunCanceled(t *testing.T) {
	cfg := config.GetPreset("passive")
	e, err := Build(cfg, silent())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"euler", "expeuler", "rk4"}, r.ListIntegrators())
	assert.Equal(t, []string{"constant", "manual", "none", "pulse"}, r.ListStimuli())

	_, err := r.GetIntegrator("verlet")
	assert.Error(t, err)

	s, err := r.GetStimulus(config.StimulusConfig{})
	require.NoError(t, err)
	assert.IsType(t, &stimulus.None{}, s)
}
