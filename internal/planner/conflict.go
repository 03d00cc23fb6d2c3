package planner

import "github.com/danieljhkim/lanesim/internal/lattice"

// Move is an accepted proposal.
type Move struct {
	From lattice.Site
	To   lattice.Site
}

// Resolution summarizes one call to Resolve.
type Resolution struct {
	// Accepted is the number of proposals that were applied.
	Accepted int

	// Dropped is the number of proposals whose destination was already claimed.
	Dropped int
}

// Resolver applies a Plan to a next-state buffer.
// Its claim sets and move log are reused across steps.
type Resolver struct {
	claimA []bool
	claimB []bool
	moves  []Move
}

// NewResolver creates a Resolver for lanes of length l.
func NewResolver(l int) *Resolver {
	return &Resolver{
		claimA: make([]bool, l),
		claimB: make([]bool, l),
	}
}

// Resolve applies the proposals of p to next.
//
// Lane A sources are processed before lane B sources, each in increasing
// source index. The first proposal to reach a destination claims it; later
// proposals for a claimed destination are dropped and their source stays put.
func (r *Resolver) Resolve(p *Plan, next *lattice.State) Resolution {
	clear(r.claimA)
	clear(r.claimB)
	r.moves = r.moves[:0]

	var res Resolution
	for _, lane := range []lattice.Lane{lattice.LaneA, lattice.LaneB} {
		for i, prop := range p.Sources(lane) {
			if !prop.Valid {
				continue
			}
			if !r.claim(prop.To) {
				res.Dropped++
				continue
			}
			from := lattice.Site{Lane: lane, Index: i}
			next.Set(from, 0)
			next.Set(prop.To, 1)
			r.moves = append(r.moves, Move{From: from, To: prop.To})
			res.Accepted++
		}
	}
	return res
}

// Moves returns the moves accepted by the last Resolve call.
// The slice is overwritten by the next call.
func (r *Resolver) Moves() []Move {
	return r.moves
}

// claim marks the destination as taken. It returns false if it already was.
func (r *Resolver) claim(site lattice.Site) bool {
	set := r.claimA
	if site.Lane == lattice.LaneB {
		set = r.claimB
	}
	if set[site.Index] {
		return false
	}
	set[site.Index] = true
	return true
}
