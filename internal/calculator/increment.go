// Package calculator folds classified commits into a version bump and the
// next version.
package calculator

import (
	"errors"
	"fmt"

	"github.com/MyCarrier-DevOps/go-versionist/internal/gitlog"
	"github.com/MyCarrier-DevOps/go-versionist/internal/semver"
)

// ErrNoCommits is returned when there is nothing to classify.
var ErrNoCommits = errors.New("no commits to calculate the next increment level from")

// Classifier returns the bump a single commit asks for. A commit that names
// a level outside patch, minor and major is an error.
type Classifier func(commit gitlog.Commit) (semver.Level, error)

// NextIncrementLevel returns the highest level any commit asks for, or
// LevelNone when no commit asks for a bump. The result does not depend on
// commit order.
func NextIncrementLevel(commits []gitlog.Commit, classify Classifier) (semver.Level, error) {
	if len(commits) == 0 {
		return semver.LevelNone, ErrNoCommits
	}
	if classify == nil {
		return semver.LevelNone, errors.New("missing commit classifier")
	}

	level := semver.LevelNone
	for _, c := range commits {
		classified, err := classify(c)
		if err != nil {
			return semver.LevelNone, fmt.Errorf("classifying commit %s: %w", c.Hash, err)
		}
		next, err := semver.Higher(level, classified)
		if err != nil {
			return semver.LevelNone, fmt.Errorf("classifying commit %s: %w", c.Hash, err)
		}
		level = next
	}
	return level, nil
}
