package stimulus

import (
	"fmt"
	"math"

	"github.com/san-kum/homeosim/internal/dynamo"
)

// Pulse injects Amp nA for Width ms starting at Start, repeating every
// Period ms. A non-positive Period gives a single pulse.
type Pulse struct {
	Amp    float64
	Start  float64
	Width  float64
	Period float64
}

func NewPulse(amp, start, width, period float64) *Pulse {
	return &Pulse{Amp: amp, Start: start, Width: width, Period: period}
}

func (p *Pulse) On(t float64) bool {
	if t < p.Start || p.Width <= 0 {
		return false
	}
	since := t - p.Start
	if p.Period > 0 {
		since = math.Mod(since, p.Period)
	}
	return since < p.Width
}

func (p *Pulse) Compute(x dynamo.State, t float64) dynamo.Input {
	if p.On(t) {
		return dynamo.Input{p.Amp}
	}
	return dynamo.Input{0}
}

func (p *Pulse) GetParams() map[string]float64 {
	return map[string]float64{
		"amp":    p.Amp,
		"start":  p.Start,
		"width":  p.Width,
		"period": p.Period,
	}
}

func (p *Pulse) SetParam(name string, value float64) error {
	switch name {
	case "amp":
		p.Amp = value
	case "start":
		p.Start = value
	case "width":
		p.Width = value
	case "period":
		p.Period = value
	default:
		return unknownParam(name)
	}
	return nil
}

func unknownParam(name string) error {
	return fmt.Errorf("unknown stimulus parameter %q", name)
}
