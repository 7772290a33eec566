package presets

import (
	"strings"

	"github.com/MyCarrier-DevOps/go-versionist/internal/semver"
)

// IncrementSemver bumps version by level following semantic versioning.
func IncrementSemver(version string, level semver.Level) (string, error) {
	return semver.Increment(version, level)
}

// VPrefix turns 1.0.0 into the tag name v1.0.0.
func VPrefix(version string) string {
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}
