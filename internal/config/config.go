package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/homeosim/internal/kinetics"
)

const (
	DefaultDt          = 0.05
	DefaultDuration    = 1000.0
	DefaultIntegrator  = "expeuler"
	DefaultArea        = 0.0628
	DefaultCapacitance = 10.0
	DefaultV0          = -60.0
	DefaultCa0         = 0.05
	DefaultCaIn        = 0.05
	DefaultCaOut       = 3000.0
	DefaultTauCa       = 200.0
	DefaultF           = 14.96
	DefaultTemperature = 11.0
	DefaultTauG        = 5000.0
	DefaultSpikeThresh = -20.0
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Name        string            `yaml:"name,omitempty"`
	Integrator  string            `yaml:"integrator"`
	Dt          float64           `yaml:"dt"`
	Duration    float64           `yaml:"duration"`
	Temperature float64           `yaml:"temperature"`
	LogLevel    string            `yaml:"log_level,omitempty"`
	Compartment CompartmentConfig `yaml:"compartment"`
	Channels    []ChannelConfig   `yaml:"channels"`
	Synapses    []SynapseConfig   `yaml:"synapses,omitempty"`
	Stimulus    StimulusConfig    `yaml:"stimulus"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

type CompartmentConfig struct {
	Name        string  `yaml:"name"`
	Area        float64 `yaml:"area"`
	Capacitance float64 `yaml:"capacitance"`
	V0          float64 `yaml:"v0"`
	Ca0         float64 `yaml:"ca0"`
	CaIn        float64 `yaml:"ca_in"`
	CaOut       float64 `yaml:"ca_out"`
	TauCa       float64 `yaml:"tau_ca"`
	F           float64 `yaml:"f"`

	// CaTarget is the legacy per-compartment set-point. Absent means
	// regulation is disabled unless CalciumTarget is given.
	CaTarget *float64 `yaml:"ca_target,omitempty"`

	// CalciumTarget adds a CalciumTarget mechanism with this set-point.
	CalciumTarget *float64 `yaml:"calcium_target,omitempty"`
}

type ChannelConfig struct {
	Name       string            `yaml:"name"`
	Kind       string            `yaml:"kind"`
	Gbar       float64           `yaml:"gbar"`
	E          float64           `yaml:"e"`
	M          float64           `yaml:"m"`
	H          float64           `yaml:"h"`
	Q10        Q10Config         `yaml:"q10,omitempty"`
	Controller *ControllerConfig `yaml:"controller,omitempty"`
}

type Q10Config struct {
	G    float64 `yaml:"g,omitempty"`
	TauM float64 `yaml:"tau_m,omitempty"`
	TauH float64 `yaml:"tau_h,omitempty"`
}

// ControllerConfig configures an integral controller. tau_m accepts .inf.
type ControllerConfig struct {
	TauM float64 `yaml:"tau_m"`
	TauG float64 `yaml:"tau_g"`
	M    float64 `yaml:"m"`
}

type SynapseConfig struct {
	Name       string            `yaml:"name"`
	Gmax       float64           `yaml:"gmax"`
	E          float64           `yaml:"e"`
	Controller *ControllerConfig `yaml:"controller,omitempty"`
}

type StimulusConfig struct {
	Kind   string  `yaml:"kind"`
	Amp    float64 `yaml:"amp"`
	Start  float64 `yaml:"start,omitempty"`
	Width  float64 `yaml:"width,omitempty"`
	Period float64 `yaml:"period,omitempty"`
}

type MetricsConfig struct {
	SpikeThreshold float64 `yaml:"spike_threshold"`
	Settle         float64 `yaml:"settle"`
}

func Default() *Config {
	return &Config{
		Integrator:  DefaultIntegrator,
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		Temperature: DefaultTemperature,
		Compartment: CompartmentConfig{
			Name:        "soma",
			Area:        DefaultArea,
			Capacitance: DefaultCapacitance,
			V0:          DefaultV0,
			Ca0:         DefaultCa0,
			CaIn:        DefaultCaIn,
			CaOut:       DefaultCaOut,
			TauCa:       DefaultTauCa,
			F:           DefaultF,
		},
		Stimulus: StimulusConfig{Kind: "none"},
		Metrics:  MetricsConfig{SpikeThreshold: DefaultSpikeThresh},
	}
}

// Load reads a YAML model description on top of the defaults and validates
// it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write encodes cfg as YAML to w.
func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func (c *Config) Validate() error {
	if !(c.Dt > 0) {
		return invalid("dt must be positive, got %v", c.Dt)
	}
	if !(c.Duration > 0) {
		return invalid("duration must be positive, got %v", c.Duration)
	}
	switch c.Integrator {
	case "euler", "expeuler", "rk4":
	default:
		return invalid("unknown integrator %q", c.Integrator)
	}

	comp := c.Compartment
	if !(comp.Area > 0) {
		return invalid("compartment area must be positive, got %v", comp.Area)
	}
	if !(comp.Capacitance > 0) {
		return invalid("capacitance must be positive, got %v", comp.Capacitance)
	}
	if !(comp.TauCa > 0) {
		return invalid("tau_ca must be positive, got %v", comp.TauCa)
	}
	if comp.Ca0 < 0 || comp.CaIn < 0 || !(comp.CaOut > 0) {
		return invalid("calcium concentrations must be non-negative")
	}
	if t := comp.CalciumTarget; t != nil && !math.IsNaN(*t) && *t < 0 {
		return invalid("calcium_target must be non-negative, got %v", *t)
	}

	names := make(map[string]bool, len(c.Channels)+len(c.Synapses))
	for i, ch := range c.Channels {
		if ch.Name == "" {
			return invalid("channel %d has no name", i)
		}
		if names[ch.Name] {
			return invalid("duplicate name %q", ch.Name)
		}
		names[ch.Name] = true
		if _, err := kinetics.Lookup(ch.Kind); err != nil {
			return fmt.Errorf("%w: channel %s: %w", ErrInvalid, ch.Name, err)
		}
		if ch.Gbar < 0 {
			return invalid("channel %s: gbar must be non-negative", ch.Name)
		}
		if err := ch.Controller.validate(ch.Name); err != nil {
			return err
		}
	}
	for i, syn := range c.Synapses {
		if syn.Name == "" {
			return invalid("synapse %d has no name", i)
		}
		if names[syn.Name] {
			return invalid("duplicate name %q", syn.Name)
		}
		names[syn.Name] = true
		if syn.Gmax < 0 {
			return invalid("synapse %s: gmax must be non-negative", syn.Name)
		}
		if err := syn.Controller.validate(syn.Name); err != nil {
			return err
		}
	}

	switch c.Stimulus.Kind {
	case "", "none", "constant", "pulse", "manual":
	default:
		return invalid("unknown stimulus %q", c.Stimulus.Kind)
	}
	return nil
}

func (cc *ControllerConfig) validate(owner string) error {
	if cc == nil {
		return nil
	}
	if !(cc.TauG > 0) {
		return invalid("%s: controller tau_g must be > 0, got %v", owner, cc.TauG)
	}
	if math.IsNaN(cc.TauM) || cc.TauM <= 0 {
		return invalid("%s: controller tau_m must be > 0 or .inf, got %v", owner, cc.TauM)
	}
	if cc.M < 0 {
		return invalid("%s: controller m must be non-negative", owner)
	}
	return nil
}

// HasControllers reports whether any channel or synapse is regulated.
func (c *Config) HasControllers() bool {
	for _, ch := range c.Channels {
		if ch.Controller != nil {
			return true
		}
	}
	for _, syn := range c.Synapses {
		if syn.Controller != nil {
			return true
		}
	}
	return false
}

// Target returns the calcium set-point controllers will resolve: the
// provider value if given, else the legacy field, else NaN.
func (c *Config) Target() float64 {
	if t := c.Compartment.CalciumTarget; t != nil {
		return *t
	}
	if t := c.Compartment.CaTarget; t != nil {
		return *t
	}
	return math.NaN()
}

func (c *Config) Clone() *Config {
	out := *c
	out.Channels = make([]ChannelConfig, len(c.Channels))
	for i, ch := range c.Channels {
		if ch.Controller != nil {
			ctrl := *ch.Controller
			ch.Controller = &ctrl
		}
		out.Channels[i] = ch
	}
	out.Synapses = make([]SynapseConfig, len(c.Synapses))
	for i, syn := range c.Synapses {
		if syn.Controller != nil {
			ctrl := *syn.Controller
			syn.Controller = &ctrl
		}
		out.Synapses[i] = syn
	}
	out.Compartment.CaTarget = clonePtr(c.Compartment.CaTarget)
	out.Compartment.CalciumTarget = clonePtr(c.Compartment.CalciumTarget)
	return &out
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Float returns a pointer to v for optional fields.
func Float(v float64) *float64 { return &v }
