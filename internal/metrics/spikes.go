package metrics

import (
	"github.com/san-kum/homeosim/internal/dynamo"
	"github.com/san-kum/homeosim/internal/neuron"
)

// SpikeRate counts upward crossings of a voltage threshold and reports the
// firing rate in Hz. Times are in ms.
type SpikeRate struct {
	name      string
	threshold float64
	spikes    int
	above     bool
	first     float64
	last      float64
	samples   int
}

func NewSpikeRate(threshold float64) *SpikeRate {
	return &SpikeRate{
		name:      "spike_rate",
		threshold: threshold,
	}
}

func (s *SpikeRate) Name() string {
	return s.name
}

func (s *SpikeRate) Observe(x dynamo.State, u dynamo.Input, t float64) {
	v := x[neuron.IdxV]
	if s.samples == 0 {
		s.first = t
		s.above = v >= s.threshold
	} else if v >= s.threshold && !s.above {
		s.spikes++
		s.above = true
	} else if v < s.threshold {
		s.above = false
	}
	s.last = t
	s.samples++
}

func (s *SpikeRate) Spikes() int { return s.spikes }

func (s *SpikeRate) Value() float64 {
	span := s.last - s.first
	if span <= 0 {
		return 0
	}
	return float64(s.spikes) / span * 1000
}

func (s *SpikeRate) Reset() {
	s.spikes = 0
	s.above = false
	s.first = 0
	s.last = 0
	s.samples = 0
}
