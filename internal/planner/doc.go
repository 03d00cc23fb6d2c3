// Package planner handles the proposal phase of a simulation step.
//
// Each step is planned against the read-only current state: every occupied
// site may propose one move (a hop along its lane or a conversion to the
// other lane). The plan is then resolved deterministically into the
// next-state buffer.
//
// Key responsibilities:
//   - Generate a Plan with at most one proposal per (lane, source site)
//   - Keep the random draw order fixed so a seeded run is reproducible
//   - Resolve competing proposals for the same destination by priority
//     (lane A sources first, then lower source index first)
package planner
