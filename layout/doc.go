// Package layout positions diagram nodes with an iterative force simulation.
//
// The Engine applies three free forces per tick, each scaled by a cooling
// factor alpha: springs pull edge endpoints toward a rest distance, an
// inverse-square repulsion spreads every node pair, and a weak centering
// force draws nodes toward canvas center. After integration a collision pass
// enforces minimum separation from node radii, and a final anchoring pass
// translates the whole system so the focus node sits exactly at canvas
// center. Alpha decays every tick; once it falls below the configured
// minimum the run is settled and Tick reports false.
//
// Three restarts exist with distinct policies. Rebuild swaps in a new node
// set, keeping positions for surviving nodes and spiral-placing new ones.
// Improve raises repulsion and rest length and reheats in place. Reset
// clears drag pins, restores default parameters, and reheats in place. Each
// bumps the run generation so consumers can discard work from a superseded
// run.
//
// Trajectories are deterministic: the only randomness is seeded jitter on
// initial placement, so identical configs, seeds, and call sequences
// reproduce identical positions tick for tick.
//
// The Engine is single-owner. The loop driving ticks is the only writer;
// drags go through Pin, MovePin, and Unpin rather than touching positions.
package layout
