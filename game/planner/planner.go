package planner

import (
	"errors"

	"github.com/snakelights/snakelights/game/board"
	"github.com/snakelights/snakelights/game/engine"
)

// ErrNoSafeMove reports that the fallback policy found no move that
// keeps the tail reachable. The run ends cleanly; on Hamiltonian boards
// this should never happen before a full win.
var ErrNoSafeMove = errors.New("no safe move")

// Strategy names reported by Planner.Strategy.
const (
	StrategyCycle  = "hamiltonian-cycle"
	StrategyGreedy = "greedy-safe"
)

// Planner chooses the next head cell for the current state.
type Planner interface {
	// Next returns the cell the head should move into this tick.
	Next(st *engine.State) (board.Cell, error)

	// Strategy names the active policy, for diagnostics.
	Strategy() string
}

// New selects the strongest strategy the board supports: the
// Hamiltonian cycle walker when a cycle is found, the greedy safe
// policy otherwise.
func New(g *board.Graph) Planner {
	if route, ok := FindCycle(g); ok {
		return newCyclePlanner(g, route)
	}
	return &greedyPlanner{g: g}
}

// tailReachable reports whether target (the snake's tail after the
// candidate move) can be reached from start through cells free in
// occupied. The tail cell itself counts as passable since it vacates
// on the following tick.
func tailReachable(g *board.Graph, occupied []bool, start, target board.Cell) bool {
	if start == target {
		return true
	}

	visited := make([]bool, g.CellCount())
	visited[start] = true
	queue := []board.Cell{start}

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, n := range g.Neighbors(c) {
			if n == target {
				return true
			}
			if !visited[n] && !occupied[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}

	return false
}

// bfsDistance returns the shortest path length from start to target
// through cells free in occupied (target itself is always passable).
// ok is false when target is unreachable.
func bfsDistance(g *board.Graph, occupied []bool, start, target board.Cell) (int, bool) {
	if start == target {
		return 0, true
	}

	dist := make([]int, g.CellCount())
	for i := range dist {
		dist[i] = -1
	}
	dist[start] = 0
	queue := []board.Cell{start}

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, n := range g.Neighbors(c) {
			if n == target {
				return dist[c] + 1, true
			}
			if dist[n] < 0 && !occupied[n] {
				dist[n] = dist[c] + 1
				queue = append(queue, n)
			}
		}
	}

	return 0, false
}
