// Package board models the playable topology for the snake generator.
//
// A board is a graph of addressable cells: the cells are the lights of a
// physical display (a pixel grid, an LED ring, a vending-machine keypad)
// and the edges say which cells the snake may move between in one tick.
// Gameplay code only ever sees the graph; geometric coordinates are
// optional metadata carried for rendering and debugging.
//
// Core Types:
//
// Graph is the immutable cell/adjacency structure, built once per
// simulation. Config describes a board in a serializable form and is
// turned into a Graph by Build, which dispatches to one of the adapters
// (rectangle, ring, custom edge list).
//
// Usage:
//
//	g, err := board.Build(&board.Config{
//		Kind:         board.KindRectangle,
//		Width:        8,
//		Height:       8,
//		NeighborMode: board.NeighborMode4,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, c := range g.Cells() {
//		fmt.Println(c, g.Neighbors(c))
//	}
//
// Construction validates the graph: no self-loops, no duplicate edges,
// no isolated cells, and a single connected component. A board that
// fails any of these checks is unplayable and Build returns an error
// wrapping ErrMalformedBoard; no partial Graph is ever returned.
package board
