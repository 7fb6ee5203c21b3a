package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/homeosim/internal/config"
	"github.com/san-kum/homeosim/internal/dynamo"
	"github.com/san-kum/homeosim/internal/integrators"
	"github.com/san-kum/homeosim/internal/metrics"
	"github.com/san-kum/homeosim/internal/stimulus"
)

type Registry struct {
	integrators map[string]func() dynamo.Integrator
	stimuli     map[string]func(config.StimulusConfig) dynamo.Stimulus
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
		stimuli:     make(map[string]func(config.StimulusConfig) dynamo.Stimulus),
	}

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["expeuler"] = func() dynamo.Integrator { return integrators.NewExpEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }

	r.stimuli["none"] = func(config.StimulusConfig) dynamo.Stimulus { return stimulus.NewNone() }
	r.stimuli["constant"] = func(s config.StimulusConfig) dynamo.Stimulus {
		return stimulus.NewConstant(s.Amp)
	}
	r.stimuli["pulse"] = func(s config.StimulusConfig) dynamo.Stimulus {
		return stimulus.NewPulse(s.Amp, s.Start, s.Width, s.Period)
	}
	r.stimuli["manual"] = func(s config.StimulusConfig) dynamo.Stimulus {
		m := stimulus.NewManual()
		m.Set(s.Amp)
		return m
	}

	return r
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetStimulus(s config.StimulusConfig) (dynamo.Stimulus, error) {
	kind := s.Kind
	if kind == "" {
		kind = "none"
	}
	fn, ok := r.stimuli[kind]
	if !ok {
		return nil, fmt.Errorf("unknown stimulus: %s", kind)
	}
	return fn(s), nil
}

func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }

func (r *Registry) ListStimuli() []string { return sortedKeys(r.stimuli) }

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics(cfg *config.Config) []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewCalciumError(cfg.Target(), cfg.Metrics.Settle),
		metrics.NewMeanCalcium(),
		metrics.NewSpikeRate(cfg.Metrics.SpikeThreshold),
		metrics.NewMeanVoltage(),
		metrics.NewInjectedCurrent(),
	}
}
