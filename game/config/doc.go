// Package config loads and caches named run configurations from a
// directory of JSON or YAML files.
//
// A run configuration pairs a board description with default simulation
// options (start cell, seed, tick budget). Files are validated on load
// by actually building the board, so a configuration the manager hands
// out is always playable. A built-in default (an 8x8 rectangle) is used
// when no explicit configuration is requested.
package config
