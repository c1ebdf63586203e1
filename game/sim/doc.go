// Package sim wires a board, a planner and the move engine into a full
// autoplay run and exposes the resulting frames as a lazy stream.
//
// A Simulation resolves one tick per Next call: the planner picks the
// move, the engine applies it, and the resulting state is emitted as a
// Frame. The first Next returns the initial state before any move. The
// stream is finite (a run either fills the board, runs out of safe
// moves, or hits the tick budget) and restartable: Reset rewinds to the
// initial state with the same seed, so the identical sequence can be
// generated again.
//
//	g, _ := board.Build(&board.Config{Kind: board.KindRectangle, Width: 8, Height: 8})
//	s, err := sim.New(g, sim.Options{Seed: 42})
//	if err != nil {
//		log.Fatal(err)
//	}
//	for {
//		frame, err := s.Next()
//		if errors.Is(err, sim.ErrDone) {
//			break
//		}
//		if err != nil {
//			log.Fatal(err)
//		}
//		emit(frame)
//	}
//
// Each Simulation is single-threaded by design; independent simulations
// share nothing mutable and may run on parallel workers, including over
// the same read-only Graph.
package sim
