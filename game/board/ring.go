package board

import "fmt"

// Ring builds a closed loop of n cells, the natural topology of an LED
// ring or a marquee strip whose ends meet. Cell i connects to its two
// loop neighbors; no render coordinates are attached.
func Ring(n int) (*Graph, error) {
	cfg := &Config{Kind: KindRing, Cells: n}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	edges := make([][2]Cell, 0, n)
	for i := 0; i < n; i++ {
		edges = append(edges, [2]Cell{Cell(i), Cell((i + 1) % n)})
	}

	g, err := newGraph(n, edges, nil)
	if err != nil {
		return nil, fmt.Errorf("ring %d: %w", n, err)
	}
	return g, nil
}

// Custom builds a board from an explicit edge list, for irregular
// physical layouts that no structured adapter covers. Edges index cells
// 0..cells-1; coords are optional render metadata (nil or one per cell).
func Custom(cells int, edges [][2]int, coords []Coord) (*Graph, error) {
	cfg := &Config{Kind: KindCustom, Cells: cells, Edges: edges, Coords: coords}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cellEdges := make([][2]Cell, len(edges))
	for i, e := range edges {
		cellEdges[i] = [2]Cell{Cell(e[0]), Cell(e[1])}
	}

	var co []Coord
	if len(coords) == cells {
		co = make([]Coord, cells)
		copy(co, coords)
	}

	g, err := newGraph(cells, cellEdges, co)
	if err != nil {
		return nil, fmt.Errorf("custom board: %w", err)
	}
	return g, nil
}
