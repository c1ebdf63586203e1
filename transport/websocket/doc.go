// Package websocket streams generated frames to display clients.
//
// The package uses a hub-and-spoke model: a central Hub tracks the
// clients subscribed to each run, and every frame batch produced by an
// advance is broadcast to that run's subscribers as JSON. A hardware
// bridge (or a browser visualizer) connects with the run id as a query
// parameter (?run=<id>) and simply consumes frames; the socket is
// one-way, incoming messages are ignored.
//
// Message Protocol:
//
// Outgoing messages are JSON-encoded:
//   - {run_id, event: "frame", frame: {tick, lit: [...]}}
//   - {run_id, event: "finished", result: {...}}
//   - {run_id, event: "reset"}
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("run"))
//	})
//
// Concurrency:
//
// The hub event loop serializes registration and broadcast; each client
// gets dedicated read and write goroutines with ping/pong keepalive, so
// a slow display cannot block frame generation.
package websocket
