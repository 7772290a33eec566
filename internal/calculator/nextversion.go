package calculator

import (
	"errors"

	"github.com/MyCarrier-DevOps/go-versionist/internal/gitlog"
	"github.com/MyCarrier-DevOps/go-versionist/internal/semver"
)

// Incrementer bumps a version by a level.
type Incrementer func(version string, level semver.Level) (string, error)

// Options holds the inputs of NextVersion.
type Options struct {
	CurrentVersion string
	Classify       Classifier
	Increment      Incrementer
}

// NextVersion returns the version that follows CurrentVersion given the
// commits. When no commit asks for a bump the current version is returned.
func NextVersion(commits []gitlog.Commit, opts Options) (string, error) {
	if opts.CurrentVersion == "" {
		return "", errors.New("missing the current version")
	}
	if opts.Increment == nil {
		return "", errors.New("missing the version incrementer")
	}

	level, err := NextIncrementLevel(commits, opts.Classify)
	if err != nil {
		return "", err
	}
	if level == semver.LevelNone {
		return opts.CurrentVersion, nil
	}
	return opts.Increment(opts.CurrentVersion, level)
}
