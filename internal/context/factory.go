package context

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/MyCarrier-DevOps/go-versionist/internal/config"
	"github.com/MyCarrier-DevOps/go-versionist/internal/git"
	"github.com/MyCarrier-DevOps/go-versionist/internal/semver"
)

// Options configures what the factory resolves.
type Options struct {
	// CurrentVersion overrides the documented base version.
	CurrentVersion string

	// ForcedVersion skips the next version calculation.
	ForcedVersion string

	// DryRun disables writes.
	DryRun bool

	// Now stamps the entry. Defaults to time.Now.
	Now func() time.Time
}

// NewContext creates a RunContext by resolving the working directory, HEAD,
// the changelog and history file locations and the version overrides.
func NewContext(repo git.Repository, cfg *config.Config, opts Options) (*RunContext, error) {
	if cfg == nil {
		return nil, errors.New("missing configuration")
	}

	// 1. Resolve the working directory against the repository root.
	dir := cfg.Path
	if dir == "" {
		dir = repo.WorkingDirectory()
	} else if !filepath.IsAbs(dir) {
		dir = filepath.Join(repo.WorkingDirectory(), dir)
	}

	// 2. Resolve HEAD.
	head, err := repo.HeadSha()
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}

	// 3. Validate the version overrides.
	if opts.CurrentVersion != "" {
		if err := semver.CheckValid(opts.CurrentVersion); err != nil {
			return nil, fmt.Errorf("checking current version: %w", err)
		}
	}
	if opts.ForcedVersion != "" {
		if err := semver.CheckValid(opts.ForcedVersion); err != nil {
			return nil, fmt.Errorf("checking version to set: %w", err)
		}
	}

	// 4. Stamp the run.
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	return &RunContext{
		Dir:            dir,
		HeadSha:        head,
		ChangelogPath:  within(dir, cfg.ChangelogFile),
		HistoryPath:    within(dir, cfg.HistoryFile),
		CurrentVersion: opts.CurrentVersion,
		ForcedVersion:  opts.ForcedVersion,
		Date:           now(),
		DryRun:         opts.DryRun,
		Config:         cfg,
	}, nil
}

func within(dir, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dir, file)
}
