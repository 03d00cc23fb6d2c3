package sim

import "github.com/danieljhkim/lanesim/internal/lattice"

// Accumulator sums per-site occupancy over the measured steps.
type Accumulator struct {
	countA []int64
	countB []int64
}

// NewAccumulator creates an Accumulator for lanes of length l.
func NewAccumulator(l int) *Accumulator {
	return &Accumulator{
		countA: make([]int64, l),
		countB: make([]int64, l),
	}
}

// Add records the occupancy of s.
func (a *Accumulator) Add(s *lattice.State) {
	for i := range a.countA {
		a.countA[i] += int64(s.A[i])
		a.countB[i] += int64(s.B[i])
	}
}

// Densities divides the counters by measured.
func (a *Accumulator) Densities(measured int) (rhoA, rhoB []float64) {
	rhoA = make([]float64, len(a.countA))
	rhoB = make([]float64, len(a.countB))
	if measured <= 0 {
		return rhoA, rhoB
	}
	d := float64(measured)
	for i := range a.countA {
		rhoA[i] = float64(a.countA[i]) / d
		rhoB[i] = float64(a.countB[i]) / d
	}
	return rhoA, rhoB
}
