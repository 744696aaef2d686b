package metrics

import (
	"math"

	"github.com/san-kum/wavestep/internal/sim"
)

// Stability is the fraction of observed steps where every |u| stayed at or
// below the threshold. Non-finite values count as violations.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(f *sim.Fields, t float64) {
	s.samples++
	m := MaxAbs(f.U)
	if math.IsNaN(m) || m > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
