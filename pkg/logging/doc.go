// Package logging provides subsystem-tagged structured logging for quiver.
//
// The package wraps Go's log/slog with a small set of helpers so every line
// carries a "subsystem" attribute identifying the component that wrote it:
//
//	logging.Init(logging.LevelInfo, logging.FormatText, os.Stderr)
//
//	logging.Info("Registry", "Registered tool %s", name)
//	logging.Warn("Registry", "Executing deprecated tool %s", name)
//	logging.Error("Server", err, "Streamable HTTP server error")
//
// Until Init is called all messages are discarded, which keeps package tests
// quiet unless they opt in.
//
// # Subsystems
//
//   - **App**: composition root and lifecycle
//   - **Config**: configuration loading and validation
//   - **Registry**: registration, execution and event delivery
//   - **Discovery**: query processing
//   - **Catalog**: capability catalog loading and hot reload
//   - **Server**: MCP protocol surface
//   - **Metrics** / **Tracing**: observability
//
// When the MCP server runs over stdio, logs must go to stderr so they do not
// corrupt the protocol stream on stdout.
package logging
