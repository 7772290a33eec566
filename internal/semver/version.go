package semver

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	msemver "github.com/Masterminds/semver/v3"
)

// ErrInvalidVersion is returned for strings that are not semantic versions.
var ErrInvalidVersion = errors.New("invalid version")

// parse accepts an optional leading "v" or "=" and surrounding whitespace,
// then requires a strict major.minor.patch version.
func parse(s string) (*msemver.Version, error) {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimLeft(trimmed, "=v")
	v, err := msemver.StrictNewVersion(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidVersion, s)
	}
	return v, nil
}

// Valid returns the normalized form of s, or "" if s is not a version.
func Valid(s string) string {
	v, err := parse(s)
	if err != nil {
		return ""
	}
	return v.String()
}

// IsValid reports whether s parses as a semantic version.
func IsValid(s string) bool {
	return Valid(s) != ""
}

// Clean normalizes s. It behaves like Valid and exists for call sites that
// read better with the clean wording.
func Clean(s string) string {
	return Valid(s)
}

// CheckValid returns an error when s is not a semantic version.
func CheckValid(s string) error {
	_, err := parse(s)
	return err
}

// Compare returns -1, 0 or 1 comparing a with b.
func Compare(a, b string) (int, error) {
	va, err := parse(a)
	if err != nil {
		return 0, err
	}
	vb, err := parse(b)
	if err != nil {
		return 0, err
	}
	return va.Compare(vb), nil
}

// LessThan reports a < b. Invalid versions compare as not less.
func LessThan(a, b string) bool {
	c, err := Compare(a, b)
	return err == nil && c < 0
}

// Greatest returns the highest version in the list. Every entry must be valid.
func Greatest(versions []string) (string, error) {
	if len(versions) == 0 {
		return "", errors.New("no versions to compare")
	}
	parsed := make([]*msemver.Version, 0, len(versions))
	for _, s := range versions {
		v, err := parse(s)
		if err != nil {
			return "", err
		}
		parsed = append(parsed, v)
	}
	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].GreaterThan(parsed[j])
	})
	return parsed[0].String(), nil
}

// Increment bumps version by level and resets lower components. Prerelease
// and build metadata are dropped.
func Increment(version string, level Level) (string, error) {
	v, err := parse(version)
	if err != nil {
		return "", err
	}

	base, err := msemver.NewVersion(fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch()))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidVersion, version)
	}

	// A pre-release whose lower components are already zero bumps to its
	// release: 1.2.0-rc.1 minor is 1.2.0, 1.0.0-rc.1 major is 1.0.0.
	pre := v.Prerelease() != ""
	var next msemver.Version
	switch level {
	case LevelMajor:
		if pre && v.Minor() == 0 && v.Patch() == 0 {
			return base.String(), nil
		}
		next = base.IncMajor()
	case LevelMinor:
		if pre && v.Patch() == 0 {
			return base.String(), nil
		}
		next = base.IncMinor()
	case LevelPatch:
		if pre {
			return base.String(), nil
		}
		next = base.IncPatch()
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidLevel, level)
	}
	return next.String(), nil
}
