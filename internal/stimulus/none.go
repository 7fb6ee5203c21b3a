package stimulus

import "github.com/san-kum/homeosim/internal/dynamo"

type None struct{}

func NewNone() *None {
	return &None{}
}

func (n *None) Compute(x dynamo.State, t float64) dynamo.Input {
	return dynamo.Input{0}
}

type Constant struct {
	I float64
}

func NewConstant(i float64) *Constant {
	return &Constant{I: i}
}

func (c *Constant) Compute(x dynamo.State, t float64) dynamo.Input {
	return dynamo.Input{c.I}
}

func (c *Constant) GetParams() map[string]float64 {
	return map[string]float64{"I": c.I}
}

func (c *Constant) SetParam(name string, value float64) error {
	if name != "I" {
		return unknownParam(name)
	}
	c.I = value
	return nil
}
