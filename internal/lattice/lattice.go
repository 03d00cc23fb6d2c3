// Package lattice holds the occupancy state of the two coupled lanes.
//
// A State is two binary lanes of equal length. Lane A carries particles
// forward (towards higher indices) and lane B carries them backward. Site 0
// of both lanes is the open end of the system.
package lattice

import (
	"errors"
	"fmt"

	"github.com/danieljhkim/lanesim/internal/rng"
)

// ErrTooManyParticles indicates the requested particle count cannot be
// placed without putting two particles on one site.
var ErrTooManyParticles = errors.New("particle count exceeds available sites")

// Lane identifies one of the two lanes.
type Lane uint8

const (
	// LaneA is the forward lane.
	LaneA Lane = iota
	// LaneB is the backward lane.
	LaneB
)

// String returns "A" or "B".
func (l Lane) String() string {
	switch l {
	case LaneA:
		return "A"
	case LaneB:
		return "B"
	default:
		return fmt.Sprintf("Lane(%d)", uint8(l))
	}
}

// Site identifies a single position on the lattice.
type Site struct {
	Lane  Lane
	Index int
}

// State is the occupancy of both lanes. Every value is 0 or 1.
type State struct {
	A []uint8
	B []uint8
}

// New creates an empty State with lanes of length l.
func New(l int) *State {
	return &State{
		A: make([]uint8, l),
		B: make([]uint8, l),
	}
}

// FromLanes creates a State from explicit lane contents. Both lanes must
// have the same length and hold only 0 or 1.
func FromLanes(a, b []uint8) (*State, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("lane lengths differ: %d != %d", len(a), len(b))
	}
	s := &State{
		A: append([]uint8(nil), a...),
		B: append([]uint8(nil), b...),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Place creates a State of length l holding n particles placed uniformly
// without replacement over the 2l slots.
//
// Slot ids [0, 2l) are shuffled with an unbiased Fisher-Yates pass and the
// first n ids are occupied. Ids below l map to lane A, the rest to lane B.
// l and n must not be negative.
func Place(l, n int, src rng.Source) (*State, error) {
	if n > 2*l {
		return nil, fmt.Errorf("%w: %d particles on %d sites", ErrTooManyParticles, n, 2*l)
	}

	slots := make([]int, 2*l)
	for i := range slots {
		slots[i] = i
	}
	for i := len(slots) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		slots[i], slots[j] = slots[j], slots[i]
	}

	s := New(l)
	for _, id := range slots[:n] {
		if id < l {
			s.A[id] = 1
		} else {
			s.B[id-l] = 1
		}
	}
	return s, nil
}

// Len returns the lane length.
func (s *State) Len() int {
	return len(s.A)
}

// Lane returns the occupancy slice of the given lane.
func (s *State) Lane(l Lane) []uint8 {
	if l == LaneA {
		return s.A
	}
	return s.B
}

// At returns the occupancy of a site.
func (s *State) At(site Site) uint8 {
	return s.Lane(site.Lane)[site.Index]
}

// Set writes the occupancy of a site.
func (s *State) Set(site Site, v uint8) {
	s.Lane(site.Lane)[site.Index] = v
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	return &State{
		A: append([]uint8(nil), s.A...),
		B: append([]uint8(nil), s.B...),
	}
}

// CopyFrom overwrites s with the contents of src without allocating.
// Both states must have the same length.
func (s *State) CopyFrom(src *State) {
	copy(s.A, src.A)
	copy(s.B, src.B)
}

// Count returns the total number of occupied sites over both lanes.
func (s *State) Count() int {
	n := 0
	for i := range s.A {
		n += int(s.A[i]) + int(s.B[i])
	}
	return n
}

// Validate checks that every occupancy value is 0 or 1.
func (s *State) Validate() error {
	for _, lane := range []Lane{LaneA, LaneB} {
		for i, v := range s.Lane(lane) {
			if v > 1 {
				return fmt.Errorf("site %s[%d] holds %d", lane, i, v)
			}
		}
	}
	return nil
}
