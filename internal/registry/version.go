package registry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// BumpPart selects which semver field to increment.
type BumpPart string

const (
	BumpMajor BumpPart = "major"
	BumpMinor BumpPart = "minor"
	BumpPatch BumpPart = "patch"
)

// numberedPattern matches the "v<N>" numbered convention.
var numberedPattern = strOnlyDigitsAfterV

// ValidVersion reports whether v is well-formed under convention.
func ValidVersion(v string, convention Convention) bool {
	switch convention {
	case ConventionSemver:
		_, err := semver.NewVersion(strings.TrimPrefix(v, "v"))
		return err == nil
	default:
		n, ok := numberedPattern(v)
		return ok && n >= 1
	}
}

// strOnlyDigitsAfterV parses "v<N>" and reports whether it parsed; it
// accepts N == 0, and ValidVersion applies the N>=1 rule.
func strOnlyDigitsAfterV(v string) (int, bool) {
	if !strings.HasPrefix(v, "v") {
		return 0, false
	}
	digits := v[1:]
	if digits == "" {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// CompareVersions returns -1, 0, or 1 comparing a and b under convention,
// per spec.md §4.2.
func CompareVersions(a, b string, convention Convention) (int, error) {
	switch convention {
	case ConventionSemver:
		va, err := semver.NewVersion(strings.TrimPrefix(a, "v"))
		if err != nil {
			return 0, ValidationError(a, "invalid semantic version: %v", err)
		}
		vb, err := semver.NewVersion(strings.TrimPrefix(b, "v"))
		if err != nil {
			return 0, ValidationError(b, "invalid semantic version: %v", err)
		}
		return va.Compare(vb), nil
	default:
		na, ok := numberedPattern(a)
		if !ok {
			return 0, ValidationError(a, "invalid numbered version, want vN")
		}
		nb, ok := numberedPattern(b)
		if !ok {
			return 0, ValidationError(b, "invalid numbered version, want vN")
		}
		switch {
		case na < nb:
			return -1, nil
		case na > nb:
			return 1, nil
		default:
			return 0, nil
		}
	}
}

// BumpVersion computes the next version from previous under convention.
// An empty previous means "no version registered yet" and returns the
// convention's starting version (spec.md §4.2).
func BumpVersion(previous string, part BumpPart, convention Convention) (string, error) {
	switch convention {
	case ConventionSemver:
		if previous == "" {
			return "v0.0.1", nil
		}
		v, err := semver.NewVersion(strings.TrimPrefix(previous, "v"))
		if err != nil {
			return "", ValidationError(previous, "invalid semantic version: %v", err)
		}
		var next semver.Version
		switch part {
		case BumpMajor:
			next = v.IncMajor()
		case BumpMinor:
			next = v.IncMinor()
		case BumpPatch, "":
			next = v.IncPatch()
		default:
			return "", ValidationError(string(part), "unknown bump part")
		}
		return "v" + next.String(), nil
	default:
		if previous == "" {
			return "v1", nil
		}
		n, ok := numberedPattern(previous)
		if !ok {
			return "", ValidationError(previous, "invalid numbered version, want vN")
		}
		return fmt.Sprintf("v%d", n+1), nil
	}
}

// GreatestVersion returns the greatest of vs under convention's total
// order. An empty vs yields a NotFound error.
func GreatestVersion(vs []string, convention Convention) (string, error) {
	if len(vs) == 0 {
		return "", NotFoundError("", "no versions to compare")
	}
	best := vs[0]
	for _, v := range vs[1:] {
		cmp, err := CompareVersions(v, best, convention)
		if err != nil {
			return "", err
		}
		if cmp > 0 {
			best = v
		}
	}
	return best, nil
}
