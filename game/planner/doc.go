// Package planner chooses the snake's next move so that an autoplay run
// can always continue safely, on any connected board graph.
//
// New inspects the board once and picks a strategy:
//
// When a Hamiltonian cycle over the board can be found (closed-form for
// rectangular layouts, bounded backtracking search otherwise), the
// planner walks that cycle. Following a Hamiltonian cycle can never
// self-collide and visits every cell, so the run provably ends with the
// board filled. To keep the animation lively the walker may shortcut
// across the cycle toward the food, but only when the jump stays inside
// the proven-safe window and a flood-fill check confirms the tail
// remains reachable.
//
// Boards with no discoverable cycle fall back to a conservative greedy
// policy: every legal move is vetted by a flood fill proving the tail
// stays reachable from the new head, then the safe move closest to the
// food is taken, with ties broken by the board's deterministic neighbor
// order. When no move passes the vet the run ends with ErrNoSafeMove,
// an expected terminal condition rather than a defect.
//
// All choices iterate cells in ascending order, so a fixed board, start
// cell and seed reproduce the identical move sequence.
package planner
