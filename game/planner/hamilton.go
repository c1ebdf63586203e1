package planner

import (
	"sort"

	"github.com/snakelights/snakelights/game/board"
)

// searchBudget caps the number of extension steps the backtracking
// search may spend before giving up. Hamiltonian cycle detection is
// NP-hard in general, so unsolved-within-budget means "fall back", not
// "no cycle exists".
const searchBudget = 500000

// FindCycle attempts to compute a Hamiltonian cycle over g: an ordering
// of all cells in which consecutive cells (including the wraparound)
// are adjacent. Rectangular coordinate layouts get a closed-form
// boustrophedon construction; everything else goes through a bounded
// backtracking search.
func FindCycle(g *board.Graph) ([]board.Cell, bool) {
	if route, ok := boustrophedonCycle(g); ok {
		return route, true
	}
	return searchCycle(g)
}

// validCycle verifies that route visits every cell exactly once with
// every consecutive pair (and the wraparound) adjacent.
func validCycle(g *board.Graph, route []board.Cell) bool {
	if len(route) != g.CellCount() {
		return false
	}
	seen := make([]bool, g.CellCount())
	for i, c := range route {
		if !g.Contains(c) || seen[c] {
			return false
		}
		seen[c] = true
		if !g.Adjacent(c, route[(i+1)%len(route)]) {
			return false
		}
	}
	return true
}

// boustrophedonCycle builds the classic serpentine cycle for boards
// whose render coordinates tile a full width x height rectangle: one
// full edge row, a serpentine over the remaining columns, and a return
// run along column zero. It needs one even dimension; a grid with both
// sides odd has an odd cell count and no cycle on orthogonal edges.
func boustrophedonCycle(g *board.Graph) ([]board.Cell, bool) {
	width, height, ok := g.Bounds()
	if !ok || width < 2 || height < 2 || width*height != g.CellCount() {
		return nil, false
	}

	at := make(map[board.Coord]board.Cell, g.CellCount())
	for _, c := range g.Cells() {
		co, _ := g.Coord(c)
		if _, dup := at[co]; dup {
			return nil, false
		}
		at[co] = c
	}

	var route []board.Cell
	switch {
	case height%2 == 0:
		route = serpentine(at, width, height, false)
	case width%2 == 0:
		route = serpentine(at, height, width, true)
	default:
		return nil, false
	}

	// The coordinates may belong to a sparse or exotic layout whose
	// edges do not actually follow the grid; trust nothing unverified.
	if !validCycle(g, route) {
		return nil, false
	}
	return route, true
}

// serpentine emits the boustrophedon order for an even number of rows.
// transposed swaps the coordinate axes so the same construction covers
// the even-width case.
func serpentine(at map[board.Coord]board.Cell, width, height int, transposed bool) []board.Cell {
	lookup := func(x, y int) board.Cell {
		if transposed {
			x, y = y, x
		}
		return at[board.Coord{X: x, Y: y}]
	}

	route := make([]board.Cell, 0, width*height)

	for x := 0; x < width; x++ {
		route = append(route, lookup(x, 0))
	}
	for y := 1; y < height; y++ {
		if y%2 == 1 {
			for x := width - 1; x >= 1; x-- {
				route = append(route, lookup(x, y))
			}
		} else {
			for x := 1; x <= width-1; x++ {
				route = append(route, lookup(x, y))
			}
		}
	}
	route = append(route, lookup(0, height-1))
	for y := height - 2; y >= 1; y-- {
		route = append(route, lookup(0, y))
	}

	return route
}

// searchCycle runs a backtracking search with Warnsdorff ordering and a
// step budget. Deterministic: candidates are sorted by remaining degree
// then cell id, and the start cell is always cell 0.
func searchCycle(g *board.Graph) ([]board.Cell, bool) {
	n := g.CellCount()
	if n < 3 {
		return nil, false
	}
	// A Hamiltonian cycle needs degree 2 everywhere.
	for _, c := range g.Cells() {
		if len(g.Neighbors(c)) < 2 {
			return nil, false
		}
	}

	visited := make([]bool, n)
	path := make([]board.Cell, 1, n)
	path[0] = 0
	visited[0] = true
	budget := searchBudget

	var extend func() bool
	extend = func() bool {
		if budget <= 0 {
			return false
		}
		budget--

		last := path[len(path)-1]
		if len(path) == n {
			return g.Adjacent(last, path[0])
		}

		candidates := make([]board.Cell, 0, len(g.Neighbors(last)))
		for _, c := range g.Neighbors(last) {
			if !visited[c] {
				candidates = append(candidates, c)
			}
		}
		// Warnsdorff: most constrained cells first, ties by id.
		sort.SliceStable(candidates, func(i, j int) bool {
			return unvisitedDegree(g, visited, candidates[i]) < unvisitedDegree(g, visited, candidates[j])
		})

		for _, c := range candidates {
			visited[c] = true
			path = append(path, c)
			if extend() {
				return true
			}
			path = path[:len(path)-1]
			visited[c] = false
		}
		return false
	}

	if !extend() {
		return nil, false
	}

	route := make([]board.Cell, n)
	copy(route, path)
	return route, true
}

func unvisitedDegree(g *board.Graph, visited []bool, c board.Cell) int {
	d := 0
	for _, n := range g.Neighbors(c) {
		if !visited[n] {
			d++
		}
	}
	return d
}
