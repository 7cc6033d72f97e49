// Package discovery implements the read-only query surface over registered
// capabilities: filtering, locale-aware ordering, pagination and the
// aggregate metadata and statistics views.
//
// The engine is stateless. Each call reads a fresh copy of the entries from
// an api.EntrySource, so results always reflect the registry at call time.
// Malformed filter input, such as an unparsable version range, never raises;
// the offending filter simply matches nothing.
package discovery
