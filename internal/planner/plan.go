package planner

import (
	"github.com/danieljhkim/lanesim/internal/lattice"
	"github.com/danieljhkim/lanesim/internal/rng"
)

// Rates holds the per-step probabilities of the interior transitions.
type Rates struct {
	// HopA is the probability of a forward hop i -> i+1 on lane A.
	HopA float64 `json:"hop_a" yaml:"hop_a"`

	// ConvertAB is the probability of a conversion from lane A to lane B.
	ConvertAB float64 `json:"convert_ab" yaml:"convert_ab"`

	// HopB is the probability of a backward hop i -> i-1 on lane B.
	HopB float64 `json:"hop_b" yaml:"hop_b"`

	// ConvertBA is the probability of a conversion from lane B to lane A.
	ConvertBA float64 `json:"convert_ba" yaml:"convert_ba"`
}

// Proposal is the intent of the occupant of one source site to move.
type Proposal struct {
	// Valid is false when the source site proposed nothing this step.
	Valid bool

	// To is the destination site.
	To lattice.Site
}

// Plan holds the proposals of a single step, indexed by source site.
type Plan struct {
	// A holds proposals whose source is on lane A.
	A []Proposal

	// B holds proposals whose source is on lane B.
	B []Proposal
}

// NewPlan creates an empty Plan for lanes of length l.
func NewPlan(l int) *Plan {
	return &Plan{
		A: make([]Proposal, l),
		B: make([]Proposal, l),
	}
}

// Reset clears every proposal.
func (p *Plan) Reset() {
	clear(p.A)
	clear(p.B)
}

// Sources returns the proposals whose source is on the given lane.
func (p *Plan) Sources(l lattice.Lane) []Proposal {
	if l == lattice.LaneA {
		return p.A
	}
	return p.B
}

// Count returns the number of valid proposals.
func (p *Plan) Count() int {
	n := 0
	for i := range p.A {
		if p.A[i].Valid {
			n++
		}
		if p.B[i].Valid {
			n++
		}
	}
	return n
}

// Generate fills p with the proposals for one step.
//
// For every site i in increasing order four checks run: forward hop on A,
// backward hop on B, A->B conversion, B->A conversion. Each check draws one
// sample whether or not its site condition holds. A successful conversion
// replaces a hop proposed by the same source earlier in the same step.
func Generate(p *Plan, cur *lattice.State, rates Rates, src rng.Source) {
	p.Reset()

	a, b := cur.A, cur.B
	l := len(a)
	for i := 0; i < l; i++ {
		if u := src.Float64(); i < l-1 && a[i] == 1 && a[i+1] == 0 && u < rates.HopA {
			p.A[i] = Proposal{Valid: true, To: lattice.Site{Lane: lattice.LaneA, Index: i + 1}}
		}
		if u := src.Float64(); i > 0 && b[i] == 1 && b[i-1] == 0 && u < rates.HopB {
			p.B[i] = Proposal{Valid: true, To: lattice.Site{Lane: lattice.LaneB, Index: i - 1}}
		}
		if u := src.Float64(); a[i] == 1 && b[i] == 0 && u < rates.ConvertAB {
			p.A[i] = Proposal{Valid: true, To: lattice.Site{Lane: lattice.LaneB, Index: i}}
		}
		if u := src.Float64(); b[i] == 1 && a[i] == 0 && u < rates.ConvertBA {
			p.B[i] = Proposal{Valid: true, To: lattice.Site{Lane: lattice.LaneA, Index: i}}
		}
	}
}
