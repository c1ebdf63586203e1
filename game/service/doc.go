// Package service defines the application-facing facade over runs and
// configurations.
//
// RunService is the single interface the REST, WebSocket, MCP and CLI
// consumers program against: create and manage autoplay runs, advance
// them by a number of ticks or to completion, fetch their state, and
// work with named configurations. Implementations compose a config
// manager and a run manager; the core game packages stay free of any
// transport concerns.
package service
