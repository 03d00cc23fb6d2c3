package rng

// Sequence implements Source by replaying fixed samples for testing.
// Once the samples are exhausted it returns Fill for every further draw.
type Sequence struct {
	samples []float64
	pos     int

	// Fill is returned after the samples run out.
	Fill float64

	// Draws counts every Float64 call.
	Draws int
}

// NewSequence creates a Sequence replaying samples, then fill.
func NewSequence(fill float64, samples ...float64) *Sequence {
	return &Sequence{samples: samples, Fill: fill}
}

// Float64 returns the next replayed sample.
func (s *Sequence) Float64() float64 {
	s.Draws++
	if s.pos < len(s.samples) {
		v := s.samples[s.pos]
		s.pos++
		return v
	}
	return s.Fill
}

// IntN maps the next sample onto [0,n).
func (s *Sequence) IntN(n int) int {
	if n <= 0 {
		panic("rng: IntN called with non-positive n")
	}
	v := int(s.Float64() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}
