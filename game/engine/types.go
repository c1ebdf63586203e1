package engine

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/snakelights/snakelights/game/board"
)

// ErrIllegalMove reports a move target that violates adjacency or
// occupancy rules. It indicates a defect in whatever chose the move and
// is fatal to the run, never a normal game-over.
var ErrIllegalMove = errors.New("illegal move")

// State is the complete game state of one run. Body is head-first:
// Body[0] is the head, Body[len-1] the tail, and consecutive entries
// are always adjacent on the board.
type State struct {
	Body    []board.Cell `json:"body"`
	Food    board.Cell   `json:"food"`
	HasFood bool         `json:"has_food"`
	Tick    int          `json:"tick"`
	Score   int          `json:"score"`
	Won     bool         `json:"won"`
	Over    bool         `json:"over"`

	occupied []bool // per-cell body membership, kept in sync by Advance
}

// NewState creates the initial state: a length-1 snake at start and one
// food cell placed uniformly among the free cells using rng.
func NewState(g *board.Graph, start board.Cell, rng *rand.Rand) (*State, error) {
	if !g.Contains(start) {
		return nil, fmt.Errorf("start cell %d outside board of %d cells", start, g.CellCount())
	}

	st := &State{
		Body:     []board.Cell{start},
		occupied: make([]bool, g.CellCount()),
	}
	st.occupied[start] = true
	st.placeFood(g, rng)

	return st, nil
}

// StateFromBody builds a state with an explicit body and food cell,
// validating the structural invariants. It exists for planners and
// tests that need a mid-run position without replaying the moves that
// would produce it.
func StateFromBody(g *board.Graph, body []board.Cell, food board.Cell, hasFood bool) (*State, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("empty body")
	}
	st := &State{
		Body:     append([]board.Cell(nil), body...),
		Food:     food,
		HasFood:  hasFood,
		occupied: make([]bool, g.CellCount()),
	}
	for _, c := range st.Body {
		if !g.Contains(c) {
			return nil, fmt.Errorf("body cell %d outside board of %d cells", c, g.CellCount())
		}
		st.occupied[c] = true
	}
	if hasFood && !g.Contains(food) {
		return nil, fmt.Errorf("food cell %d outside board of %d cells", food, g.CellCount())
	}
	if err := st.checkInvariants(g); err != nil {
		return nil, err
	}
	return st, nil
}

// Head returns the snake's head cell.
func (st *State) Head() board.Cell {
	return st.Body[0]
}

// Tail returns the snake's tail cell.
func (st *State) Tail() board.Cell {
	return st.Body[len(st.Body)-1]
}

// Length returns the snake's body length.
func (st *State) Length() int {
	return len(st.Body)
}

// Occupied reports whether c is currently part of the snake body.
func (st *State) Occupied(c board.Cell) bool {
	return int(c) < len(st.occupied) && st.occupied[c]
}

// placeFood puts food on a uniformly chosen free cell. When no free
// cell remains the board is full and the run is won.
func (st *State) placeFood(g *board.Graph, rng *rand.Rand) {
	free := make([]board.Cell, 0, g.CellCount()-len(st.Body))
	for _, c := range g.Cells() {
		if !st.occupied[c] {
			free = append(free, c)
		}
	}

	if len(free) == 0 {
		st.HasFood = false
		st.Won = true
		st.Over = true
		return
	}

	st.Food = free[rng.Intn(len(free))]
	st.HasFood = true
}

// checkInvariants verifies the structural invariants of the state
// against the board. It exists for tests and debug assertions.
func (st *State) checkInvariants(g *board.Graph) error {
	seen := make(map[board.Cell]bool, len(st.Body))
	for i, c := range st.Body {
		if seen[c] {
			return fmt.Errorf("body cell %d duplicated", c)
		}
		seen[c] = true
		if i > 0 && !g.Adjacent(st.Body[i-1], c) {
			return fmt.Errorf("body cells %d and %d not adjacent", st.Body[i-1], c)
		}
	}
	if st.HasFood && seen[st.Food] {
		return fmt.Errorf("food cell %d is on the body", st.Food)
	}
	if len(st.Body) > g.CellCount() {
		return fmt.Errorf("body length %d exceeds board size %d", len(st.Body), g.CellCount())
	}
	return nil
}
