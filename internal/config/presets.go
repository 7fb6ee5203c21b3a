package config

import (
	"math"
	"sort"
)

// stg builds the eight-channel stomatogastric neuron of Liu et al. 1998
// with the given maximal conductances (uS/mm^2).
// Controllers start with m = gbar*A, the fixed point of the conductance
// stage.
func stg(gbar map[string]float64, ctrl func(name string, m float64) *ControllerConfig) []ChannelConfig {
	specs := []struct {
		name, kind string
		e          float64
	}{
		{"NaV", "NaV", 50},
		{"CaT", "CaT", 30},
		{"CaS", "CaS", 30},
		{"ACurrent", "ACurrent", -80},
		{"KCa", "KCaAB", -80},
		{"Kd", "Kd", -80},
		{"Leak", "Leak", -50},
	}
	out := make([]ChannelConfig, 0, len(specs))
	for _, s := range specs {
		ch := ChannelConfig{Name: s.name, Kind: s.kind, Gbar: gbar[s.name], E: s.e}
		if ctrl != nil && s.kind != "Leak" {
			ch.Controller = ctrl(s.name, gbar[s.name]*DefaultArea)
		}
		out = append(out, ch)
	}
	return out
}

var bursting = map[string]float64{
	"NaV": 1000, "CaT": 25, "CaS": 60, "ACurrent": 500, "KCa": 50, "Kd": 1000, "Leak": 0.1,
}

var Presets = map[string]*Config{
	"passive": {
		Name: "passive", Integrator: "rk4", Dt: 0.05, Duration: 500,
		Temperature: DefaultTemperature,
		Compartment: defaultCompartment(),
		Channels: []ChannelConfig{
			{Name: "Leak", Kind: "Leak", Gbar: 0.1, E: -50},
		},
		Stimulus: StimulusConfig{Kind: "pulse", Amp: 0.5, Start: 100, Width: 200},
		Metrics:  MetricsConfig{SpikeThreshold: DefaultSpikeThresh},
	},
	"stg": {
		Name: "stg", Integrator: "expeuler", Dt: 0.05, Duration: 2000,
		Temperature: DefaultTemperature,
		Compartment: defaultCompartment(),
		Channels:    stg(bursting, nil),
		Stimulus:    StimulusConfig{Kind: "none"},
		Metrics:     MetricsConfig{SpikeThreshold: DefaultSpikeThresh, Settle: 500},
	},
	"homeostatic": {
		Name: "homeostatic", Integrator: "expeuler", Dt: 0.05, Duration: 20000,
		Temperature: DefaultTemperature,
		Compartment: withTarget(defaultCompartment(), 7),
		Channels: stg(map[string]float64{
			"NaV": 10, "CaT": 0.25, "CaS": 0.6, "ACurrent": 5, "KCa": 0.5, "Kd": 10, "Leak": 0.1,
		}, func(name string, m float64) *ControllerConfig {
			return &ControllerConfig{TauM: 5e6 / bursting[name], TauG: DefaultTauG, M: m}
		}),
		Stimulus: StimulusConfig{Kind: "none"},
		Metrics:  MetricsConfig{SpikeThreshold: DefaultSpikeThresh, Settle: 10000},
	},
	"disabled": {
		Name: "disabled", Integrator: "expeuler", Dt: 0.05, Duration: 2000,
		Temperature: DefaultTemperature,
		Compartment: defaultCompartment(),
		Channels: stg(bursting, func(_ string, m float64) *ControllerConfig {
			return &ControllerConfig{TauM: math.Inf(1), TauG: DefaultTauG, M: m}
		}),
		Stimulus: StimulusConfig{Kind: "none"},
		Metrics:  MetricsConfig{SpikeThreshold: DefaultSpikeThresh},
	},
	// synaptic regulates a synapse's gmax only. The single-compartment
	// driver passes no synaptic current, so calcium does not respond to gmax
	// and the loop is open: this preset shows the synapse update law, not
	// homeostasis.
	"synaptic": {
		Name: "synaptic", Integrator: "expeuler", Dt: 0.05, Duration: 5000,
		Temperature: DefaultTemperature,
		Compartment: withTarget(defaultCompartment(), 2),
		Channels: []ChannelConfig{
			{Name: "CaT", Kind: "CaT", Gbar: 10, E: 30},
			{Name: "Leak", Kind: "Leak", Gbar: 0.1, E: -50},
		},
		Synapses: []SynapseConfig{
			{Name: "input", Gmax: 50, E: 0, Controller: &ControllerConfig{TauM: 1000, TauG: 2000, M: 0.05}},
		},
		Stimulus: StimulusConfig{Kind: "constant", Amp: 0.2},
		Metrics:  MetricsConfig{SpikeThreshold: DefaultSpikeThresh},
	},
}

func defaultCompartment() CompartmentConfig {
	return Default().Compartment
}

func withTarget(c CompartmentConfig, target float64) CompartmentConfig {
	c.CalciumTarget = Float(target)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
