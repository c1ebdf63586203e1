package planner

import (
	"fmt"

	"github.com/snakelights/snakelights/game/board"
	"github.com/snakelights/snakelights/game/engine"
)

// unreachableDistance ranks candidates whose path to the food is
// currently blocked; they are still taken over no move at all.
const unreachableDistance = 1 << 30

// greedyPlanner is the fallback for boards without a known Hamiltonian
// cycle. Every legal move is vetted for tail reachability, then the
// safe move with the shortest path to the food wins; ties go to the
// lowest cell id. It is safe but not complete: some runs end early
// with ErrNoSafeMove instead of a full board.
type greedyPlanner struct {
	g *board.Graph
}

func (p *greedyPlanner) Strategy() string {
	return StrategyGreedy
}

func (p *greedyPlanner) Next(st *engine.State) (board.Cell, error) {
	if st.Over {
		return 0, fmt.Errorf("%w: run already over", ErrNoSafeMove)
	}

	head := st.Head()
	best := board.Cell(-1)
	bestDist := 0

	for _, c := range p.g.Neighbors(head) {
		if st.Occupied(c) && c != st.Tail() {
			continue
		}

		occupied, newTail := p.simulate(st, c)
		if !tailReachable(p.g, occupied, c, newTail) {
			continue
		}

		dist := unreachableDistance
		if st.HasFood {
			if d, ok := bfsDistance(p.g, occupied, c, st.Food); ok {
				dist = d
			}
		}

		if best < 0 || dist < bestDist {
			best = c
			bestDist = dist
		}
	}

	if best < 0 {
		return 0, fmt.Errorf("%w: head %d is boxed in at tick %d", ErrNoSafeMove, head, st.Tick)
	}
	return best, nil
}

// simulate applies the candidate move to a scratch occupancy set and
// returns it together with the tail cell the snake would then have.
func (p *greedyPlanner) simulate(st *engine.State, next board.Cell) ([]bool, board.Cell) {
	occupied := make([]bool, p.g.CellCount())
	for _, c := range st.Body {
		occupied[c] = true
	}

	newTail := st.Tail()
	if !(st.HasFood && next == st.Food) {
		occupied[newTail] = false
		if st.Length() > 1 {
			newTail = st.Body[st.Length()-2]
		} else {
			newTail = next
		}
	}
	occupied[next] = true

	return occupied, newTail
}
