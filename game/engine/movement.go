package engine

import (
	"fmt"
	"math/rand"

	"github.com/snakelights/snakelights/game/board"
)

// Advance applies one tick: moves the head into next, handles food,
// growth and tail movement, and increments the tick counter. The target
// cell must be adjacent to the head and must not be occupied by the
// body, except for the tail cell, which vacates this same tick.
//
// Any violation returns an error wrapping ErrIllegalMove and leaves the
// state untouched.
func Advance(g *board.Graph, st *State, next board.Cell, rng *rand.Rand) error {
	if st.Over {
		return fmt.Errorf("%w: advance on a finished run (tick %d)", ErrIllegalMove, st.Tick)
	}

	head := st.Head()
	if !g.Adjacent(head, next) {
		return fmt.Errorf("%w: cell %d is not adjacent to head %d", ErrIllegalMove, next, head)
	}
	if st.Occupied(next) && next != st.Tail() {
		return fmt.Errorf("%w: cell %d is occupied by the body", ErrIllegalMove, next)
	}

	eating := st.HasFood && next == st.Food

	if !eating {
		// Tail vacates first so that moving into it stays consistent.
		tail := st.Tail()
		st.occupied[tail] = false
		st.Body = st.Body[:len(st.Body)-1]
	}

	st.Body = append(st.Body, 0)
	copy(st.Body[1:], st.Body)
	st.Body[0] = next
	st.occupied[next] = true

	st.Tick++

	if eating {
		st.Score++
		st.placeFood(g, rng)
	}

	return nil
}
