package sim

import (
	"github.com/danieljhkim/lanesim/internal/lattice"
	"github.com/danieljhkim/lanesim/internal/rng"
)

// BoundaryEvents reports what happened at the open end during one step.
type BoundaryEvents struct {
	Injected  bool
	Extracted bool
}

// applyBoundary performs injection into A[0] and extraction from B[0].
//
// Conditions read the pre-step state cur; writes go to next after interior
// moves have been resolved, so they override any interior write to the two
// endpoint sites. Both samples are drawn every step, injection first, even
// when B[0] is empty and extraction cannot happen. This keeps the per-step
// draw count at 4L+2, so the stream differs from a short-circuit draw.
func applyBoundary(cur, next *lattice.State, alpha, beta float64, src rng.Source) BoundaryEvents {
	var ev BoundaryEvents

	if u := src.Float64(); u < alpha && cur.A[0] == 0 {
		next.A[0] = 1
		ev.Injected = true
	}
	if u := src.Float64(); cur.B[0] == 1 && u < beta {
		next.B[0] = 0
		ev.Extracted = true
	}
	return ev
}
