package dynamo

import (
	"context"
	"errors"
	"fmt"
)

type Simulator struct {
	dyn        System
	integrator Integrator
	stimulus   Stimulus
	metrics    []Metric
	observers  []Observer
}

func New(dyn System, integrator Integrator, stimulus Stimulus) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		stimulus:   stimulus,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	session, err := s.Start(x0, cfg)
	if err != nil {
		return nil, err
	}

	steps := int(cfg.Duration / cfg.Dt)
	result := &Result{
		States:  make([]State, 0, steps+1),
		Inputs:  make([]Input, 0, steps),
		Times:   make([]float64, 0, steps+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	result.States = append(result.States, session.State())
	result.Times = append(result.Times, session.Time())

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		default:
		}

		u, err := session.Step()
		if err != nil {
			if errors.Is(err, ErrInvalidState) {
				result.Errors = append(result.Errors, err)
				break
			}
			return result, err
		}

		result.StepsTaken++
		result.States = append(result.States, session.State())
		result.Inputs = append(result.Inputs, u)
		result.Times = append(result.Times, session.Time())
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// Start validates cfg and returns a session positioned at x0, t = 0.
// Metrics are reset.
func (s *Simulator) Start(x0 State, cfg Config) (*Session, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if dim := s.dyn.StateDim(); len(x0) != dim {
		return nil, fmt.Errorf("%w: state has %d entries, system expects %d", ErrDimensionMismatch, len(x0), dim)
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	return &Session{sim: s, cfg: cfg, x: x0.Clone()}, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	return nil
}

// Session advances a simulation one step at a time. Run drives a session to
// completion; interactive front ends drive it frame by frame.
type Session struct {
	sim  *Simulator
	cfg  Config
	x    State
	t    float64
	step int
}

func (ss *Session) State() State       { return ss.x.Clone() }
func (ss *Session) Time() float64      { return ss.t }
func (ss *Session) Steps() int         { return ss.step }
func (ss *Session) Dt() float64        { return ss.cfg.Dt }
func (ss *Session) Done() bool         { return ss.t >= ss.cfg.Duration }
func (ss *Session) Stimulus() Stimulus { return ss.sim.stimulus }

// Step advances the state by one dt and returns the input applied over it.
func (ss *Session) Step() (Input, error) {
	s := ss.sim
	dt := ss.cfg.Dt

	u := s.stimulus.Compute(ss.x, ss.t)

	if p, ok := s.dyn.(Preparer); ok {
		if err := p.Prepare(ss.x, ss.t, dt); err != nil {
			return u, &SimulationError{Step: ss.step, Time: ss.t, State: ss.x.Clone(), Wrapped: err}
		}
	}

	for _, m := range s.metrics {
		m.Observe(ss.x, u, ss.t)
	}
	for _, obs := range s.observers {
		obs.OnStep(ss.x, u, ss.t)
	}

	next := s.integrator.Step(s.dyn, ss.x, u, ss.t, dt)
	if ss.cfg.ValidateState && !next.IsValid() {
		return u, &SimulationError{Step: ss.step, Time: ss.t, State: next, Wrapped: ErrInvalidState}
	}

	ss.x = next
	ss.t += dt
	ss.step++

	return u, nil
}
