// Package version implements the three-part semantic versions attached to
// registered capabilities: parsing, ordering, range satisfaction and the
// aggregate helpers used by discovery statistics.
//
// Comparison is lexicographic on (major, minor, patch). Range checks come in
// two flavours: CheckRange returns an *Error for malformed input, while
// SatisfiesRange folds that case into "does not match" so a single bad filter
// never aborts a discovery query.
package version
