// Package api provides the HTTP REST surface over the run service.
//
// The api package implements:
//   - RESTful endpoints for run lifecycle and frame generation
//   - Configuration listing, retrieval and creation
//   - WebSocket upgrade handling for frame subscribers
//
// Endpoints:
//
// Run lifecycle:
//   - POST   /api/runs            - Create a run (config id + option overrides)
//   - GET    /api/runs            - List runs
//   - GET    /api/runs/{id}       - Get a run summary
//   - DELETE /api/runs/{id}       - Delete a run
//
// Frame generation:
//   - POST /api/runs/{id}/advance - Advance N ticks, returns the frames
//   - POST /api/runs/{id}/frames  - Drain the run to its end
//   - POST /api/runs/{id}/reset   - Rewind to the initial state
//   - GET  /api/runs/{id}/state   - Current game state
//
// Configuration:
//   - GET  /api/configs           - List available configurations
//   - POST /api/configs           - Save a new configuration
//   - GET  /api/configs/{name}    - Get a configuration
//
// WebSocket:
//   - GET /ws?run={id}            - Subscribe to a run's frame stream
//
// All endpoints accept and return JSON. Frames produced by advance and
// frames calls are also broadcast to the run's WebSocket subscribers,
// so a display bridge can follow a run that something else drives.
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
package api
