package planner

import (
	"fmt"

	"github.com/snakelights/snakelights/game/board"
	"github.com/snakelights/snakelights/game/engine"
)

// shortcutNum/shortcutDen: shortcuts are only considered while the body
// covers less than 3/4 of the board. Beyond that the free space is too
// tight to be worth the risk and the plain cycle walk finishes the run.
const (
	shortcutNum = 3
	shortcutDen = 4
)

// cyclePlanner walks a precomputed Hamiltonian cycle. Its steady state
// is "advance to the cycle successor", with opportunistic shortcuts
// toward the food when they can be proven safe.
type cyclePlanner struct {
	g     *board.Graph
	route []board.Cell
	index []int // cell -> position on the cycle
}

func newCyclePlanner(g *board.Graph, route []board.Cell) *cyclePlanner {
	index := make([]int, g.CellCount())
	for i, c := range route {
		index[c] = i
	}
	return &cyclePlanner{g: g, route: route, index: index}
}

func (p *cyclePlanner) Strategy() string {
	return StrategyCycle
}

// Route exposes the underlying cycle, for tests and diagnostics.
func (p *cyclePlanner) Route() []board.Cell {
	route := make([]board.Cell, len(p.route))
	copy(route, p.route)
	return route
}

func (p *cyclePlanner) Next(st *engine.State) (board.Cell, error) {
	if st.Over {
		return 0, fmt.Errorf("%w: run already over", ErrNoSafeMove)
	}

	head := st.Head()
	succ := p.route[(p.index[head]+1)%len(p.route)]

	if cut, ok := p.shortcut(st); ok {
		return cut, nil
	}
	return succ, nil
}

// shortcut looks for a neighbor of the head that jumps forward along
// the cycle toward the food. Measured from the tail, the body occupies
// the low end of the cycle ordering and cells ahead of the head are
// free, so any jump that stays ahead of the head and at or before the
// food keeps the ordering invariant intact. A flood-fill check from the
// would-be head backs up the argument before the jump is taken.
func (p *cyclePlanner) shortcut(st *engine.State) (board.Cell, bool) {
	if !st.HasFood {
		return 0, false
	}
	if st.Length()*shortcutDen >= p.g.CellCount()*shortcutNum {
		return 0, false
	}

	n := len(p.route)
	tailIdx := p.index[st.Tail()]
	rel := func(c board.Cell) int {
		return ((p.index[c]-tailIdx)%n + n) % n
	}

	head := st.Head()
	relHead := rel(head)
	relFood := rel(st.Food)
	if relFood <= relHead {
		// Food is behind on the cycle; the plain walk reaches it after
		// the wraparound.
		return 0, false
	}

	succ := p.route[(p.index[head]+1)%n]
	best := board.Cell(-1)
	bestRel := rel(succ)

	for _, c := range p.g.Neighbors(head) {
		if st.Occupied(c) {
			continue
		}
		r := rel(c)
		if r <= relHead || r > relFood || r <= bestRel {
			continue
		}
		if !p.safeJump(st, c) {
			continue
		}
		best = c
		bestRel = r
	}

	if best < 0 {
		return 0, false
	}
	return best, true
}

// safeJump simulates the candidate move and confirms the tail is still
// reachable from the new head.
func (p *cyclePlanner) safeJump(st *engine.State, next board.Cell) bool {
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

	return tailReachable(p.g, occupied, next, newTail)
}
