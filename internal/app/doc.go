// Package app provides application bootstrap and lifecycle management for quiver.
//
// # Architecture Overview
//
// The app package is the composition root. It owns no domain logic; it loads
// configuration and wires the other packages together:
//
//  1. **Configuration (`config.go`)**: command-line overrides on top of the loaded file
//  2. **Bootstrap (`bootstrap.go`)**: load and validate config, initialize logging, build services
//  3. **Services (`services.go`)**: registry, meta-tools, catalog, metrics, tracing, MCP server
//  4. **Modes (`modes.go`)**: the serve loop
//
// # Wiring
//
//	config ──► registry ◄── metatools
//	             ▲  │
//	   catalog ──┘  ├──► metrics (event listener)
//	   (watcher)    └──► server (event listener, resync)
//
// Every component receives the registry through the api.RegistryHandler
// interface; there are no package-level singletons.
//
// # Lifecycle
//
// Run starts the catalog watcher, the metrics endpoint and the MCP server
// under an errgroup. The first failure or a SIGINT/SIGTERM cancels the group,
// after which the server is stopped and pending spans are flushed.
//
// One-shot commands (list, stats, validate) use LoadRegistry instead, which
// builds a registry from a catalog directory without starting anything.
package app
