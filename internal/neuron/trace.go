package neuron

import (
	"fmt"

	"github.com/san-kum/homeosim/internal/cell"
	"github.com/san-kum/homeosim/internal/dynamo"
)

// RowWriter receives trace rows as they are produced.
type RowWriter interface {
	WriteRow(row []float64) error
}

// Labeler is implemented by mechanisms that name their FullState values.
type Labeler interface {
	StateLabels() []string
}

// Trace is an observer recording time, voltage, calcium, injected current,
// every channel's g and gbar, every synapse's gmax and every mechanism's full
// state in registration order.
type Trace struct {
	comp    *cell.Compartment
	columns []string
	rows    [][]float64
	sink    RowWriter
	keep    bool
	every   int
	seen    int
	err     error
}

type TraceOption func(*Trace)

// WithSink streams rows to w. Rows are still kept in memory unless
// WithoutMemory is also given.
func WithSink(w RowWriter) TraceOption { return func(t *Trace) { t.sink = w } }

func WithoutMemory() TraceOption { return func(t *Trace) { t.keep = false } }

// WithDecimation records one row every n steps.
func WithDecimation(n int) TraceOption {
	return func(t *Trace) {
		if n > 0 {
			t.every = n
		}
	}
}

func NewTrace(n *Neuron, opts ...TraceOption) *Trace {
	t := &Trace{comp: n.Comp, keep: true, every: 1}
	for _, opt := range opts {
		opt(t)
	}

	t.columns = []string{"t", "V", "Ca", "I_ext"}
	for _, ch := range n.Comp.Conductances() {
		t.columns = append(t.columns, "g_"+ch.Name, "gbar_"+ch.Name)
	}
	for _, syn := range n.Comp.Synapses() {
		t.columns = append(t.columns, "gmax_"+syn.Name)
	}
	for i, m := range n.Comp.Mechanisms() {
		size := m.FullStateSize()
		if size == 0 {
			continue
		}
		if l, ok := m.(Labeler); ok && len(l.StateLabels()) == size {
			t.columns = append(t.columns, l.StateLabels()...)
			continue
		}
		for k := 0; k < size; k++ {
			t.columns = append(t.columns, fmt.Sprintf("%s%d_%d", m.Name(), i, k))
		}
	}
	return t
}

func (t *Trace) Columns() []string { return t.columns }

func (t *Trace) Rows() [][]float64 { return t.rows }

// Err returns the first error returned by the sink. Once set, the sink is
// no longer written to.
func (t *Trace) Err() error { return t.err }

func (t *Trace) OnStep(x dynamo.State, u dynamo.Input, tm float64) {
	t.seen++
	if (t.seen-1)%t.every != 0 {
		return
	}

	row := make([]float64, len(t.columns))
	row[0] = tm
	row[1] = x[IdxV]
	row[2] = x[IdxCa]
	if len(u) > 0 {
		row[3] = u[0]
	}
	idx := 4
	for _, ch := range t.comp.Conductances() {
		row[idx] = ch.G
		row[idx+1] = ch.Gbar
		idx += 2
	}
	for _, syn := range t.comp.Synapses() {
		row[idx] = syn.Gmax
		idx++
	}
	for _, m := range t.comp.Mechanisms() {
		if m.FullStateSize() > 0 {
			idx = m.FullState(row, idx)
		}
	}

	if t.keep {
		t.rows = append(t.rows, row)
	}
	if t.sink != nil && t.err == nil {
		t.err = t.sink.WriteRow(row)
	}
}
