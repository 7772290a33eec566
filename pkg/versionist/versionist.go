// Package versionist provides a public Go API for releasing from annotated
// commits: computing the next version, prepending its changelog entry and
// updating version files.
//
// Basic usage:
//
//	result, err := versionist.Run(ctx, versionist.Options{
//	    Path: "/path/to/repo",
//	})
//	fmt.Println(result.Version) // "1.3.0"
//
// Hooks can be replaced with Go functions, bypassing presets:
//
//	result, err := versionist.Run(ctx, versionist.Options{
//	    Overrides: map[string]any{
//	        "getIncrementLevelFromCommit": func(c versionist.Commit) (versionist.Level, error) {
//	            return versionist.LevelPatch, nil
//	        },
//	    },
//	})
package versionist

import (
	"context"
	"fmt"

	"github.com/MyCarrier-DevOps/go-versionist/internal/config"
	"github.com/MyCarrier-DevOps/go-versionist/internal/git"
	"github.com/MyCarrier-DevOps/go-versionist/internal/gitlog"
	"github.com/MyCarrier-DevOps/go-versionist/internal/output"
	"github.com/MyCarrier-DevOps/go-versionist/internal/presets"
	"github.com/MyCarrier-DevOps/go-versionist/internal/semver"
	"github.com/MyCarrier-DevOps/go-versionist/internal/versionist"
)

// Types hooks receive and return.
type (
	Commit  = gitlog.Commit
	Release = gitlog.Release
	Subject = gitlog.Subject
	Level   = semver.Level
)

// Increment levels.
const (
	LevelNone  = semver.LevelNone
	LevelPatch = semver.LevelPatch
	LevelMinor = semver.LevelMinor
	LevelMajor = semver.LevelMajor
)

// Errors a run can end with.
var (
	ErrNoValidReference   = versionist.ErrNoValidReference
	ErrNoAnnotatedCommits = versionist.ErrNoAnnotatedCommits
	ErrInvalidPreset      = config.ErrInvalidPreset
	ErrInvalidOptionValue = config.ErrInvalidOptionValue
	ErrInvalidLevel       = semver.ErrInvalidLevel
)

// ParseLevel parses "patch", "minor" or "major". The empty string and
// "none" are LevelNone.
func ParseLevel(s string) (Level, error) {
	return semver.ParseLevel(s)
}

// Options configures a run against a local repository.
type Options struct {
	// Path to the git repository. Defaults to "." if empty.
	Path string

	// ConfigPath is the path to a versionist YAML config file.
	// If empty, auto-detects .github/versionist.yml, .versionist.yml or
	// versionist.yml in the repo root.
	ConfigPath string

	// CurrentVersion replaces the latest documented version.
	CurrentVersion string

	// Version is released instead of the calculated next version.
	Version string

	// DryRun computes the release without writing anything.
	DryRun bool

	// Overrides take precedence over the config file and the environment.
	// Values are preset names, preset objects, literals or Go functions
	// with a hook's signature.
	Overrides map[string]any

	// SkipEnv ignores VERSIONIST_* variables and .env.
	SkipEnv bool
}

// Result holds the released version and what changed.
type Result struct {
	Version   string
	Reference string
	Entry     string
	DryRun    bool

	// ChangelogBefore and ChangelogAfter hold the changelog around the edit.
	ChangelogBefore string
	ChangelogAfter  string

	// Explanation is the human-readable explain text (same as CLI --explain).
	Explanation string

	// Variables are the VERSIONIST_* names printed by --output env.
	Variables map[string]string
}

// Run releases the next version.
func Run(ctx context.Context, opts Options) (*Result, error) {
	runner, err := newRunner(opts)
	if err != nil {
		return nil, err
	}

	res, err := runner.Run(ctx)
	if err != nil {
		return nil, err
	}

	out := output.Result{
		Version:   res.Version,
		Reference: res.Reference,
		Entry:     res.Entry,
		DryRun:    res.DryRun,
	}
	return &Result{
		Version:         res.Version,
		Reference:       res.Reference,
		Entry:           res.Entry,
		DryRun:          res.DryRun,
		ChangelogBefore: res.ChangelogBefore,
		ChangelogAfter:  res.ChangelogAfter,
		Explanation:     output.FormatExplanation(res.Explanation),
		Variables:       output.Variables(out),
	}, nil
}

// NextVersion returns the version Run would release, without writing.
func NextVersion(ctx context.Context, opts Options) (string, error) {
	opts.DryRun = true
	res, err := Run(ctx, opts)
	if err != nil {
		return "", err
	}
	return res.Version, nil
}

// CurrentVersion returns the latest documented version.
func CurrentVersion(opts Options) (string, error) {
	runner, err := newRunner(opts)
	if err != nil {
		return "", err
	}
	return runner.CurrentVersion()
}

// Reference returns the git reference of the latest documented version.
func Reference(opts Options) (string, error) {
	runner, err := newRunner(opts)
	if err != nil {
		return "", err
	}
	return runner.CurrentReference()
}

// ParseOptions controls ParseCommitLog.
type ParseOptions struct {
	// SubjectParser names a preset ("angular") or is empty for plain subjects.
	SubjectParser string
	// SkipFooterTags leaves trailing tag lines in the body.
	SkipFooterTags bool
	// KeepFooterCase keeps footer keys as written.
	KeepFooterCase bool
}

// ParseCommitLog structures the output of
//
//	git log --pretty=format:<LogPrettyFormat>
func ParseCommitLog(data []byte, opts ParseOptions) ([]Commit, error) {
	parse := gitlog.Options{
		SubjectParser:       gitlog.PlainSubject,
		BodyParser:          gitlog.PlainBody,
		ParseFooterTags:     !opts.SkipFooterTags,
		LowerCaseFooterTags: !opts.KeepFooterCase,
	}
	switch opts.SubjectParser {
	case "":
	case "angular":
		parse.SubjectParser = presets.AngularSubject
	default:
		return nil, fmt.Errorf("%w: %s. The `subjectParser` option must be angular or empty", config.ErrInvalidPreset, opts.SubjectParser)
	}
	return gitlog.ParseYAML(data, parse)
}

// LogPrettyFormat is the git log format ParseCommitLog reads.
const LogPrettyFormat = gitlog.LogPrettyFormat

func newRunner(opts Options) (*versionist.Runner, error) {
	path := opts.Path
	if path == "" {
		path = "."
	}

	// 1. Open repository.
	repo, err := git.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}

	// 2. Load configuration.
	overrides := config.FromMap(opts.Overrides)
	if _, ok := overrides[config.PropPath]; !ok && opts.Path != "" {
		overrides[config.PropPath] = config.String(repo.WorkingDirectory())
	}
	cfg, err := config.Load(presets.NewRegistry(presets.Deps{Repo: repo}), config.LoadOptions{
		Dir:       repo.WorkingDirectory(),
		File:      opts.ConfigPath,
		Overrides: overrides,
		SkipEnv:   opts.SkipEnv,
	})
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	// 3. Snapshot the run.
	return versionist.New(repo, cfg, versionist.Options{
		CurrentVersion: opts.CurrentVersion,
		ForcedVersion:  opts.Version,
		DryRun:         opts.DryRun,
	})
}
