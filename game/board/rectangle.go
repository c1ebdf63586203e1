package board

import "fmt"

// Rectangle builds a width x height grid. Cells are numbered row-major:
// cell = y*width + x, with (x, y) attached as render coordinates. Mode
// NeighborMode4 connects orthogonal neighbors, NeighborMode8 also
// connects diagonals.
func Rectangle(width, height int, mode string) (*Graph, error) {
	cfg := &Config{Kind: KindRectangle, Width: width, Height: height, NeighborMode: mode}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	diagonal := mode == NeighborMode8

	coords := make([]Coord, width*height)
	var edges [][2]Cell

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := Cell(y*width + x)
			coords[c] = Coord{X: x, Y: y}

			// Right and down edges only, so each pair appears once.
			if x+1 < width {
				edges = append(edges, [2]Cell{c, c + 1})
			}
			if y+1 < height {
				edges = append(edges, [2]Cell{c, c + Cell(width)})
			}
			if diagonal {
				if x+1 < width && y+1 < height {
					edges = append(edges, [2]Cell{c, c + Cell(width) + 1})
				}
				if x > 0 && y+1 < height {
					edges = append(edges, [2]Cell{c, c + Cell(width) - 1})
				}
			}
		}
	}

	g, err := newGraph(width*height, edges, coords)
	if err != nil {
		return nil, fmt.Errorf("rectangle %dx%d: %w", width, height, err)
	}
	return g, nil
}
