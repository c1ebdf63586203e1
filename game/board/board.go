package board

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMalformedBoard reports a board description that violates a
// construction invariant (self-loop, duplicate edge, isolated cell,
// disconnected graph, bad dimensions). All construction failures wrap it.
var ErrMalformedBoard = errors.New("malformed board")

// Cell identifies one addressable unit on a board. Cells are dense
// indexes 0..CellCount-1, unique and stable for the lifetime of a Graph.
type Cell int

// Coord is optional per-cell geometry used only for rendering and
// debugging. Gameplay logic never consults it.
type Coord struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Graph is a finite set of cells plus a symmetric adjacency relation.
// It is immutable after construction and safe for concurrent readers.
type Graph struct {
	neighbors [][]Cell // per-cell adjacency lists, sorted ascending
	coords    []Coord  // geometric metadata, nil when the adapter has none
	edgeCount int
}

// newGraph validates the cell/edge description and assembles a Graph.
// Edges are given as unordered pairs; coords may be nil.
func newGraph(cellCount int, edges [][2]Cell, coords []Coord) (*Graph, error) {
	if cellCount < 2 {
		return nil, fmt.Errorf("%w: board needs at least 2 cells, got %d", ErrMalformedBoard, cellCount)
	}
	if coords != nil && len(coords) != cellCount {
		return nil, fmt.Errorf("%w: %d coords for %d cells", ErrMalformedBoard, len(coords), cellCount)
	}

	neighbors := make([][]Cell, cellCount)
	seen := make(map[[2]Cell]bool, len(edges))

	for _, e := range edges {
		a, b := e[0], e[1]
		if a < 0 || int(a) >= cellCount || b < 0 || int(b) >= cellCount {
			return nil, fmt.Errorf("%w: edge (%d,%d) out of range", ErrMalformedBoard, a, b)
		}
		if a == b {
			return nil, fmt.Errorf("%w: self-loop on cell %d", ErrMalformedBoard, a)
		}
		if a > b {
			a, b = b, a
		}
		if seen[[2]Cell{a, b}] {
			return nil, fmt.Errorf("%w: duplicate edge (%d,%d)", ErrMalformedBoard, a, b)
		}
		seen[[2]Cell{a, b}] = true
		neighbors[a] = append(neighbors[a], b)
		neighbors[b] = append(neighbors[b], a)
	}

	for c, ns := range neighbors {
		if len(ns) == 0 {
			return nil, fmt.Errorf("%w: cell %d has no neighbors", ErrMalformedBoard, c)
		}
		sort.Slice(ns, func(i, j int) bool { return ns[i] < ns[j] })
	}

	g := &Graph{
		neighbors: neighbors,
		coords:    coords,
		edgeCount: len(seen),
	}

	if !g.connected() {
		return nil, fmt.Errorf("%w: graph is not connected", ErrMalformedBoard)
	}

	return g, nil
}

// connected reports whether every cell is reachable from cell 0.
func (g *Graph) connected() bool {
	visited := make([]bool, len(g.neighbors))
	queue := []Cell{0}
	visited[0] = true
	count := 1

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, n := range g.neighbors[c] {
			if !visited[n] {
				visited[n] = true
				count++
				queue = append(queue, n)
			}
		}
	}

	return count == len(g.neighbors)
}

// CellCount returns the total number of cells.
func (g *Graph) CellCount() int {
	return len(g.neighbors)
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// Cells enumerates every cell in stable ascending order.
func (g *Graph) Cells() []Cell {
	cells := make([]Cell, len(g.neighbors))
	for i := range cells {
		cells[i] = Cell(i)
	}
	return cells
}

// Contains reports whether c is a cell of this graph.
func (g *Graph) Contains(c Cell) bool {
	return c >= 0 && int(c) < len(g.neighbors)
}

// Neighbors returns the cells adjacent to c in ascending order. The
// order is deterministic across calls and is relied on for tie-breaking
// by the planner. The returned slice must not be modified.
func (g *Graph) Neighbors(c Cell) []Cell {
	if !g.Contains(c) {
		return nil
	}
	return g.neighbors[c]
}

// Adjacent reports whether the snake may move directly between a and b.
func (g *Graph) Adjacent(a, b Cell) bool {
	if !g.Contains(a) || !g.Contains(b) {
		return false
	}
	ns := g.neighbors[a]
	i := sort.Search(len(ns), func(i int) bool { return ns[i] >= b })
	return i < len(ns) && ns[i] == b
}

// Coord returns the geometric metadata for c, if the adapter attached
// any. The second return is false for boards without geometry.
func (g *Graph) Coord(c Cell) (Coord, bool) {
	if g.coords == nil || !g.Contains(c) {
		return Coord{}, false
	}
	return g.coords[c], true
}

// Bounds returns the exclusive maxima of the attached coordinates,
// i.e. width and height for rectangular layouts. ok is false when the
// graph carries no geometry.
func (g *Graph) Bounds() (width, height int, ok bool) {
	if g.coords == nil {
		return 0, 0, false
	}
	for _, co := range g.coords {
		if co.X >= width {
			width = co.X + 1
		}
		if co.Y >= height {
			height = co.Y + 1
		}
	}
	return width, height, true
}
