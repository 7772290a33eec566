// Package semver provides increment levels and semantic version helpers.
package semver

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidLevel is returned when a Level is outside the known set.
var ErrInvalidLevel = errors.New("invalid increment level")

// Level is the semantic version component a commit asks to bump.
// Declaration order encodes precedence.
type Level int

const (
	LevelNone Level = iota
	LevelPatch
	LevelMinor
	LevelMajor
)

// ValidLevels lists the bump levels in ascending precedence.
var ValidLevels = []Level{LevelPatch, LevelMinor, LevelMajor}

func (l Level) String() string {
	switch l {
	case LevelNone:
		return ""
	case LevelPatch:
		return "patch"
	case LevelMinor:
		return "minor"
	case LevelMajor:
		return "major"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// IsValid reports whether l is patch, minor or major.
func (l Level) IsValid() bool {
	return l >= LevelPatch && l <= LevelMajor
}

// ParseLevel parses a level name. The empty string and "none" map to LevelNone.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return LevelNone, nil
	case "patch":
		return LevelPatch, nil
	case "minor":
		return LevelMinor, nil
	case "major":
		return LevelMajor, nil
	default:
		return LevelNone, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Higher returns the level with greater precedence. Both arguments must be
// either LevelNone or a valid level.
func Higher(a, b Level) (Level, error) {
	for _, l := range []Level{a, b} {
		if l != LevelNone && !l.IsValid() {
			return LevelNone, fmt.Errorf("%w: %s", ErrInvalidLevel, l)
		}
	}
	if a > b {
		return a, nil
	}
	return b, nil
}
