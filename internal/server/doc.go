// Package server exposes a capability registry over the Model Context
// Protocol using mark3labs/mcp-go.
//
// # Advertising
//
// At start the server lists every non-deprecated tool and prompt from the
// registry. It then listens for registry events. Registration, removal and
// clear events push a signal into a one-slot channel; a background goroutine
// drains it and resyncs, so a burst of changes collapses into one update.
// Execution events are ignored.
//
// Deprecated entries are withdrawn from tools/list and prompts/list but
// remain callable through the call_tool and get_prompt meta-tools.
//
// # Dispatch
//
// tools/call and prompts/get go straight to ExecuteTool and ExecutePrompt.
// Handler results are converted:
//
//   - *mcp.CallToolResult and *mcp.GetPromptResult pass through
//   - strings become text content
//   - anything else is encoded as JSON text
//
// Handler and validation failures are reported as tool error results so the
// client can show them; an unknown name is a protocol error. Each call runs
// inside an OpenTelemetry span.
//
// # Transports
//
// streamable-http (default, /mcp), sse (/sse and /message) and stdio.
package server
