// Package context provides the RunContext, the immutable snapshot of
// repository state, file locations and run options a versionist run works
// against.
package context

import (
	"time"

	"github.com/MyCarrier-DevOps/go-versionist/internal/config"
)

// RunContext holds the resolved state of one invocation. It is created once
// and read by every stage.
type RunContext struct {
	// Dir is the absolute working directory updaters run in.
	Dir string

	// HeadSha is the commit the run ends at.
	HeadSha string

	// ChangelogPath and HistoryPath are the absolute locations of the
	// changelog and the YAML history file.
	ChangelogPath string
	HistoryPath   string

	// CurrentVersion overrides the documented base version when set.
	CurrentVersion string

	// ForcedVersion replaces the computed next version when set.
	ForcedVersion string

	// Date stamps the generated entry.
	Date time.Time

	// DryRun skips every write.
	DryRun bool

	// Config is the resolved configuration.
	Config *config.Config
}

// HasOverride reports whether the base version comes from the caller.
func (rc *RunContext) HasOverride() bool {
	return rc.CurrentVersion != ""
}
