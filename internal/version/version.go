package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// VersionInfo is an immutable three-part semantic version.
type VersionInfo struct {
	Major int `json:"major" yaml:"major"`
	Minor int `json:"minor" yaml:"minor"`
	Patch int `json:"patch" yaml:"patch"`
}

// Default is the version assigned to entries registered without one.
var Default = VersionInfo{Major: 1, Minor: 0, Patch: 0}

// New returns a VersionInfo, rejecting negative components.
func New(major, minor, patch int) (VersionInfo, error) {
	if major < 0 || minor < 0 || patch < 0 {
		return VersionInfo{}, &Error{
			Input:  fmt.Sprintf("%d.%d.%d", major, minor, patch),
			Reason: "version components must be non-negative",
		}
	}
	return VersionInfo{Major: major, Minor: minor, Patch: patch}, nil
}

// String formats the version as "major.minor.patch".
func (v VersionInfo) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func (v VersionInfo) semver() *semver.Version {
	return semver.New(uint64(v.Major), uint64(v.Minor), uint64(v.Patch), "", "")
}

// Format returns the canonical string form of v.
func Format(v VersionInfo) string {
	return v.String()
}

// Parse reads a strict "major.minor.patch" string. A leading "v" is accepted;
// pre-release and build metadata are rejected.
func Parse(s string) (VersionInfo, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "v")
	if raw == "" {
		return VersionInfo{}, &Error{Input: s, Reason: "empty version"}
	}

	sv, err := semver.StrictNewVersion(raw)
	if err != nil {
		return VersionInfo{}, &Error{Input: s, Reason: "not a major.minor.patch version", Err: err}
	}
	if sv.Prerelease() != "" || sv.Metadata() != "" {
		return VersionInfo{}, &Error{Input: s, Reason: "pre-release and build metadata are not supported"}
	}

	return VersionInfo{
		Major: int(sv.Major()),
		Minor: int(sv.Minor()),
		Patch: int(sv.Patch()),
	}, nil
}

// MustParse is like Parse but panics on malformed input. Intended for constants and tests.
func MustParse(s string) VersionInfo {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare orders a and b lexicographically by (major, minor, patch) and
// returns -1, 0 or 1.
func Compare(a, b VersionInfo) int {
	switch {
	case a.Major != b.Major:
		return sign(a.Major - b.Major)
	case a.Minor != b.Minor:
		return sign(a.Minor - b.Minor)
	default:
		return sign(a.Patch - b.Patch)
	}
}

func sign(d int) int {
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	default:
		return 0
	}
}

// Max returns the greatest of vs, or the zero version when vs is empty.
func Max(vs ...VersionInfo) VersionInfo {
	var max VersionInfo
	for i, v := range vs {
		if i == 0 || Compare(v, max) > 0 {
			max = v
		}
	}
	return max
}

// Average returns the component-wise mean of vs, each component rounded down.
func Average(vs ...VersionInfo) VersionInfo {
	if len(vs) == 0 {
		return VersionInfo{}
	}
	var major, minor, patch int
	for _, v := range vs {
		major += v.Major
		minor += v.Minor
		patch += v.Patch
	}
	n := len(vs)
	return VersionInfo{Major: major / n, Minor: minor / n, Patch: patch / n}
}
