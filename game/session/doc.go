// Package session manages the lifecycle of live autoplay runs.
//
// Manager keeps runs in memory keyed by id (uuid by default) and
// optionally persists them through a RunPersistence. Persistence stores
// only the run descriptor: config, options and the number of frames
// already emitted. Because runs are deterministic for a fixed seed, a
// restored run is rebuilt from its config and replayed to the same
// frame, which keeps generated sequences out of any on-disk format.
package session
