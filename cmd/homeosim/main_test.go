package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/homeosim/internal/config"
)

func newRunFlags() *cobra.Command {
	cmd := &cobra.Command{Use: "run"}
	cmd.Flags().StringVar(&configFile, "config", "", "")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "")
	cmd.Flags().Float64Var(&temperature, "temperature", config.DefaultTemperature, "")
	cmd.Flags().StringVar(&stimKind, "stimulus", "none", "")
	cmd.Flags().Float64Var(&stimAmp, "amp", 0, "")
	return cmd
}

func TestLoadConfigPresetKeepsUnsetFlags(t *testing.T) {
	cmd := newRunFlags()
	require.NoError(t, cmd.Flags().Parse([]string{"--time", "20"}))

	cfg, err := loadConfig(cmd, []string{"homeostatic"})
	require.NoError(t, err)

	preset := config.GetPreset("homeostatic")
	assert.Equal(t, 20.0, cfg.Duration)
	assert.Equal(t, preset.Dt, cfg.Dt)
	assert.Equal(t, preset.Integrator, cfg.Integrator)
}

func TestLoadConfigAmpImpliesConstantStimulus(t *testing.T) {
	cmd := newRunFlags()
	require.NoError(t, cmd.Flags().Parse([]string{"--amp", "0.5"}))

	cfg, err := loadConfig(cmd, nil)
	require.NoError(t, err)
	assert.Equal(t, "constant", cfg.Stimulus.Kind)
	assert.Equal(t, 0.5, cfg.Stimulus.Amp)
}

func TestLoadConfigRejectsBadFlags(t *testing.T) {
	cmd := newRunFlags()
	require.NoError(t, cmd.Flags().Parse([]string{"--integrator", "leapfrog"}))

	_, err := loadConfig(cmd, []string{"stg"})
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestLoadConfigUnknownPreset(t *testing.T) {
	_, err := loadConfig(newRunFlags(), []string{"nope"})
	assert.Error(t, err)
}

func TestTraceColumns(t *testing.T) {
	cols, err := traceColumns(config.GetPreset("homeostatic"))
	require.NoError(t, err)
	assert.Equal(t, []string{"t", "V", "Ca", "I_ext"}, cols[:4])
	assert.Contains(t, cols, "gbar_NaV")
}

func TestDownsample(t *testing.T) {
	data := make([]float64, 1000)
	for i := range data {
		data[i] = float64(i)
	}
	out := downsample(data, 10)
	assert.Len(t, out, 10)
	assert.Equal(t, 0.0, out[0])
	assert.Equal(t, 999.0, out[9])
	assert.Equal(t, data[:5], downsample(data[:5], 10))
}
