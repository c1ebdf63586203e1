// Package engine holds the mutable snake game state and the move engine
// that advances it one tick at a time.
//
// The engine does not choose moves; a planner supplies the next head
// cell and Advance applies it, enforcing the snake rules: the target
// must be adjacent to the head and unoccupied (the vacating tail cell
// is a legal target), eating grows the body and respawns food, filling
// the board wins. A violating target means the caller's planning is
// broken, so Advance fails with ErrIllegalMove instead of treating it
// as a normal game over.
//
// Randomness for food placement is injected as a *rand.Rand so that a
// fixed seed reproduces the exact run.
//
// EmitFrame projects a state onto the board as a Frame: one boolean per
// cell, lit for snake body and food. Frames are the output the whole
// system exists to produce.
package engine
