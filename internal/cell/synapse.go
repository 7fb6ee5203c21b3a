package cell

// Synapse exposes the strength a controller regulates and the compartment it
// terminates on.
type Synapse struct {
	Name string

	// Gmax is the maximal synaptic conductance (nS). It never goes negative.
	Gmax float64

	// E is the synaptic reversal potential (mV). It is carried for model
	// files; the single-compartment driver passes no synaptic current.
	E float64

	post *Compartment
}

func NewSynapse(name string, gmax, e float64) *Synapse {
	return &Synapse{Name: name, Gmax: gmax, E: e}
}

// Connect attaches the synapse to its post-synaptic compartment.
func (s *Synapse) Connect(post *Compartment) {
	s.post = post
	post.addSynapse(s)
}

func (s *Synapse) Post() *Compartment { return s.post }
