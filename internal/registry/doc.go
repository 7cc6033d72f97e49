// Package registry implements the capability registry: registration with
// name, duplicate and version policy, per-call dispatch to the owning
// handler, synchronous lifecycle events and the discovery façade.
//
// # Concurrency
//
// The tool and prompt maps are guarded by a single RWMutex. The lock is
// never held while a handler runs or while listeners are notified, so a
// slow handler only blocks its own caller and listeners may call back into
// the registry. Two concurrent executions of the same entry run
// independently; handlers must be safe for concurrent use.
//
// # Events
//
// Every mutation and execution emits an api.Event after the state change is
// visible. Listeners run in registration order on the caller's goroutine. A
// panicking listener is logged and skipped.
package registry
