// Package mcp exposes the run service over the Model Context Protocol.
//
// The MCP surface lets an AI agent (or any MCP client) drive the
// generator: list configurations, create runs, advance them, inspect
// results and preview the board as text.
//
// Tools:
//   - list_configs: List available board/run configurations
//   - create_run: Create a run from a configuration (seed override supported)
//   - list_runs: List active runs
//   - run_state: Get a run's summary and result
//   - advance_run: Advance a run by N ticks and return the frames
//   - reset_run: Rewind a run to its initial state
//   - delete_run: Remove a run
//   - preview_run: Render the run's current board state as text
//
// Transport Modes:
//
// The server supports stdio for local MCP clients and an HTTP handler
// for mounting at /mcp on the main server; both are driven by the same
// tool registry.
package mcp
