package stimulus

import (
	"math"
	"sync/atomic"

	"github.com/san-kum/homeosim/internal/dynamo"
)

// Manual passes a current set by the user to the neuron. It is safe to set
// from another goroutine while a simulation runs.
type Manual struct {
	bits atomic.Uint64
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Set(i float64) { m.bits.Store(math.Float64bits(i)) }

func (m *Manual) Current() float64 { return math.Float64frombits(m.bits.Load()) }

func (m *Manual) Compute(x dynamo.State, t float64) dynamo.Input {
	return dynamo.Input{m.Current()}
}

func (m *Manual) GetParams() map[string]float64 {
	return map[string]float64{"I": m.Current()}
}

func (m *Manual) SetParam(name string, value float64) error {
	if name != "I" {
		return unknownParam(name)
	}
	m.Set(value)
	return nil
}
