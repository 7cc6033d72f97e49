// Package api holds the types shared by the registry, discovery, catalog and
// server packages: entries and their public definitions, registry
// configuration, discovery queries and results, lifecycle events, the
// per-call execution context and the typed errors the registry returns.
//
// Keeping these in one leaf package lets the components depend on each other
// only through interfaces and plain data, never through concrete packages.
//
// Error handling follows one pattern throughout: operations return typed
// errors (*ValidationError, *DuplicateEntryError, *NotFoundError and version
// errors), and callers branch with IsValidation, IsDuplicate, IsNotFound and
// IsVersion, which all use errors.As and therefore see through wrapping.
package api
