package engine

import (
	"strings"

	"github.com/snakelights/snakelights/game/board"
)

// Frame is one rendered snapshot: an ordered mapping from every cell of
// the board to its lit state, indexed by cell. Frames are immutable
// value objects; EmitFrame always allocates a fresh Lit slice.
type Frame struct {
	Tick int    `json:"tick"`
	Lit  []bool `json:"lit"`
}

// On reports the lit state of c.
func (f Frame) On(c board.Cell) bool {
	return int(c) < len(f.Lit) && f.Lit[c]
}

// Equal reports whether two frames are identical.
func (f Frame) Equal(other Frame) bool {
	if f.Tick != other.Tick || len(f.Lit) != len(other.Lit) {
		return false
	}
	for i := range f.Lit {
		if f.Lit[i] != other.Lit[i] {
			return false
		}
	}
	return true
}

// EmitFrame projects st onto g: exactly one entry per board cell, lit
// for cells occupied by the snake body or holding food.
func EmitFrame(g *board.Graph, st *State) Frame {
	lit := make([]bool, g.CellCount())
	for _, c := range st.Body {
		lit[c] = true
	}
	if st.HasFood {
		lit[st.Food] = true
	}
	return Frame{Tick: st.Tick, Lit: lit}
}

// Glyphs used by RenderState.
const (
	glyphSnake = 'S'
	glyphFood  = 'F'
	glyphFree  = '.'
)

// RenderState draws st as text for previews and debugging. Boards with
// render coordinates come out as a 2D grid of S/F/. glyphs; boards
// without geometry come out as a single line in cell order.
func RenderState(g *board.Graph, st *State) string {
	width, height, ok := g.Bounds()
	if !ok {
		var b strings.Builder
		for _, c := range g.Cells() {
			b.WriteRune(glyphFor(st, c))
		}
		return b.String()
	}

	rows := make([][]rune, height)
	for y := range rows {
		rows[y] = make([]rune, width)
		for x := range rows[y] {
			rows[y][x] = ' '
		}
	}
	for _, c := range g.Cells() {
		co, _ := g.Coord(c)
		rows[co.Y][co.X] = glyphFor(st, c)
	}

	var b strings.Builder
	for y, row := range rows {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x, r := range row {
			if x > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

func glyphFor(st *State, c board.Cell) rune {
	switch {
	case st.Occupied(c):
		return glyphSnake
	case st.HasFood && st.Food == c:
		return glyphFood
	default:
		return glyphFree
	}
}
