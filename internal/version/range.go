package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckRange reports whether v satisfies the range expression r.
//
// A caret range "^X.Y.Z" matches versions with major X that compare >= X.Y.Z,
// including the 0.x series. A bare "X.Y.Z" matches exactly. Any other form is
// handed to the semver constraint parser (">=1.2.0", "~1.4", "1.x",
// ">=1.0.0 <2.0.0", "^1.0.0 || ^2.0.0").
//
// A malformed range yields a non-nil *Error.
func CheckRange(v VersionInfo, r string) (bool, error) {
	expr := strings.TrimSpace(r)
	if expr == "" {
		return false, &Error{Input: r, Reason: "empty range"}
	}

	if strings.HasPrefix(expr, "^") && !strings.Contains(expr, " ") {
		base, err := Parse(expr[1:])
		if err != nil {
			return false, &Error{Input: r, Reason: "malformed caret range", Err: err}
		}
		return v.Major == base.Major && Compare(v, base) >= 0, nil
	}

	if exact, err := Parse(expr); err == nil {
		return Compare(v, exact) == 0, nil
	}

	constraint, err := semver.NewConstraint(expr)
	if err != nil {
		return false, &Error{Input: r, Reason: "malformed range", Err: err}
	}
	return constraint.Check(v.semver()), nil
}

// SatisfiesRange is CheckRange with malformed ranges treated as non-matching.
func SatisfiesRange(v VersionInfo, r string) bool {
	ok, err := CheckRange(v, r)
	return err == nil && ok
}
