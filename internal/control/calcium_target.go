package control

import (
	"fmt"
	"math"

	"github.com/san-kum/homeosim/internal/cell"
)

// CalciumTargetName is the mechanism name controllers look for.
const CalciumTargetName = "CalciumTarget"

// CalciumTarget publishes a calcium set-point for its compartment through
// State(0). It has no dynamics of its own.
type CalciumTarget struct {
	Target float64
	comp   *cell.Compartment
}

func NewCalciumTarget(target float64) (*CalciumTarget, error) {
	if !math.IsNaN(target) && (target < 0 || math.IsInf(target, 0)) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidTarget, target)
	}
	return &CalciumTarget{Target: target}, nil
}

func (ct *CalciumTarget) Name() string { return CalciumTargetName }

// Connect registers the target with a compartment. Channels and synapses are
// rejected.
func (ct *CalciumTarget) Connect(t cell.Target) error {
	comp, ok := t.(*cell.Compartment)
	if !ok {
		return fmt.Errorf("%s: %w: %T", CalciumTargetName, cell.ErrUnsupportedTarget, t)
	}
	if ct.comp == comp {
		return nil
	}
	if ct.comp != nil {
		return fmt.Errorf("%s: %w", CalciumTargetName, ErrAlreadyBound)
	}
	ct.comp = comp
	comp.AddMechanism(ct)
	return nil
}

func (ct *CalciumTarget) Init() error                  { return nil }
func (ct *CalciumTarget) Integrate(dt float64) error   { return nil }
func (ct *CalciumTarget) CheckSolvers(order int) error { return nil }

func (ct *CalciumTarget) State(idx int) float64 {
	if idx == 0 {
		return ct.Target
	}
	return math.NaN()
}

func (ct *CalciumTarget) FullStateSize() int { return 0 }

func (ct *CalciumTarget) FullState(buf []float64, idx int) int { return idx }
