package metrics

import (
	"math"

	"github.com/san-kum/homeosim/internal/dynamo"
	"github.com/san-kum/homeosim/internal/neuron"
)

type MeanVoltage struct {
	name    string
	sum     float64
	samples int
}

func NewMeanVoltage() *MeanVoltage {
	return &MeanVoltage{
		name: "mean_voltage",
	}
}

func (m *MeanVoltage) Name() string {
	return m.name
}

func (m *MeanVoltage) Observe(x dynamo.State, u dynamo.Input, t float64) {
	m.sum += x[neuron.IdxV]
	m.samples++
}

func (m *MeanVoltage) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanVoltage) Reset() {
	m.sum = 0
	m.samples = 0
}

// InjectedCurrent is the mean absolute injected current in nA.
type InjectedCurrent struct {
	name    string
	sum     float64
	samples int
}

func NewInjectedCurrent() *InjectedCurrent {
	return &InjectedCurrent{
		name: "mean_injected_current",
	}
}

func (c *InjectedCurrent) Name() string {
	return c.name
}

func (c *InjectedCurrent) Observe(x dynamo.State, u dynamo.Input, t float64) {
	for _, val := range u {
		c.sum += math.Abs(val)
	}
	c.samples++
}

func (c *InjectedCurrent) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *InjectedCurrent) Reset() {
	c.sum = 0
	c.samples = 0
}
