package metrics

import (
	"math"

	"github.com/san-kum/homeosim/internal/dynamo"
	"github.com/san-kum/homeosim/internal/neuron"
)

// CalciumError is the mean absolute distance between calcium and its
// set-point over the samples taken after Settle ms.
type CalciumError struct {
	name    string
	target  float64
	settle  float64
	sum     float64
	samples int
}

func NewCalciumError(target, settle float64) *CalciumError {
	return &CalciumError{
		name:   "calcium_error",
		target: target,
		settle: settle,
	}
}

func (c *CalciumError) Name() string { return c.name }

func (c *CalciumError) Observe(x dynamo.State, u dynamo.Input, t float64) {
	if t < c.settle || math.IsNaN(c.target) || len(x) <= neuron.IdxCa {
		return
	}
	c.sum += math.Abs(c.target - x[neuron.IdxCa])
	c.samples++
}

// Value is NaN when no sample was taken.
func (c *CalciumError) Value() float64 {
	if c.samples == 0 {
		return math.NaN()
	}
	return c.sum / float64(c.samples)
}

func (c *CalciumError) Reset() {
	c.sum = 0
	c.samples = 0
}

type MeanCalcium struct {
	name    string
	sum     float64
	samples int
}

func NewMeanCalcium() *MeanCalcium {
	return &MeanCalcium{name: "mean_calcium"}
}

func (m *MeanCalcium) Name() string { return m.name }

func (m *MeanCalcium) Observe(x dynamo.State, u dynamo.Input, t float64) {
	if len(x) <= neuron.IdxCa {
		return
	}
	m.sum += x[neuron.IdxCa]
	m.samples++
}

func (m *MeanCalcium) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanCalcium) Reset() {
	m.sum = 0
	m.samples = 0
}
