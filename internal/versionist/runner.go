// Package versionist runs the release pipeline: it reads the documented
// versions, walks the commits since the last release, computes the next
// version, renders its changelog entry and writes it out.
package versionist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/MyCarrier-DevOps/go-versionist/internal/calculator"
	"github.com/MyCarrier-DevOps/go-versionist/internal/changelog"
	"github.com/MyCarrier-DevOps/go-versionist/internal/config"
	runctx "github.com/MyCarrier-DevOps/go-versionist/internal/context"
	"github.com/MyCarrier-DevOps/go-versionist/internal/git"
	"github.com/MyCarrier-DevOps/go-versionist/internal/gitlog"
	"github.com/MyCarrier-DevOps/go-versionist/internal/logger"
	"github.com/MyCarrier-DevOps/go-versionist/internal/output"
	"github.com/MyCarrier-DevOps/go-versionist/internal/semver"
)

var (
	// ErrNoValidReference is returned when the reference of the latest
	// documented version neither exists nor can be recovered.
	ErrNoValidReference = errors.New("no valid git reference was found")

	// ErrNoAnnotatedCommits is returned when the next version is one the
	// changelog already documents.
	ErrNoAnnotatedCommits = errors.New("no commits were annotated with a change type")
)

// ReferenceError names the reference that could not be found.
type ReferenceError struct {
	Reference string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("omitting %s. No valid git reference was found", e.Reference)
}

func (e *ReferenceError) Unwrap() error {
	return ErrNoValidReference
}

// Options configures a Runner.
type Options struct {
	// CurrentVersion overrides the latest documented version.
	CurrentVersion string
	// ForcedVersion is released instead of the computed next version.
	ForcedVersion string
	// DryRun computes everything and writes nothing.
	DryRun bool
	// Now stamps the entry. Defaults to time.Now.
	Now func() time.Time
}

// Result reports a completed run.
type Result struct {
	Version   string
	Reference string
	Entry     string
	DryRun    bool

	// ChangelogPath is the changelog the entry was, or would be, added to.
	ChangelogPath string
	// ChangelogEdited is false when editChangelog is off and the entry
	// was only rendered.
	ChangelogEdited bool
	// ChangelogBefore and ChangelogAfter hold the changelog around the
	// edit. Dry runs compute them without touching the file.
	ChangelogBefore string
	ChangelogAfter  string

	Explanation output.Explanation
}

// Runner executes the pipeline stages in order. Each stage stores its
// output on the Runner for the stages after it.
type Runner struct {
	repo git.Repository
	rc   *runctx.RunContext
	cfg  *config.Config

	documented        []string
	nothingDocumented bool
	reference         string
	recovered         bool
	commits           []gitlog.Commit
	current           string
	level             semver.Level
	levels            map[string]string
	next              string
	entry             string
	data              changelog.TemplateData
}

// New snapshots the repository and configuration for a run.
func New(repo git.Repository, cfg *config.Config, opts Options) (*Runner, error) {
	rc, err := runctx.NewContext(repo, cfg, runctx.Options{
		CurrentVersion: opts.CurrentVersion,
		ForcedVersion:  opts.ForcedVersion,
		DryRun:         opts.DryRun,
		Now:            opts.Now,
	})
	if err != nil {
		return nil, err
	}
	return &Runner{repo: repo, rc: rc, cfg: cfg}, nil
}

// Context returns the run snapshot.
func (r *Runner) Context() *runctx.RunContext {
	return r.rc
}

// Run executes every stage and returns what was released.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	// 1. Versions already in the changelog.
	if err := r.documentedVersions(); err != nil {
		return nil, err
	}

	// 2. Where the history starts.
	if err := r.startReference(); err != nil {
		return nil, err
	}

	// 3. Commits since then.
	if err := r.history(); err != nil {
		return nil, err
	}

	// 4. Version the commits build on.
	if err := r.currentVersion(); err != nil {
		return nil, err
	}

	// 5. Version to release.
	if err := r.nextVersion(); err != nil {
		return nil, err
	}

	// 6. Changelog entry.
	if err := r.renderEntry(ctx); err != nil {
		return nil, err
	}

	result := &Result{
		Version:         r.next,
		Reference:       r.cfg.GetGitReferenceFromVersion(r.next),
		Entry:           r.entry,
		DryRun:          r.rc.DryRun,
		ChangelogPath:   r.rc.ChangelogPath,
		ChangelogEdited: r.cfg.EditChangelog,
		Explanation:     r.Explain(),
	}

	// 7. Writes.
	if r.rc.DryRun {
		if err := r.preview(result); err != nil {
			return nil, err
		}
		return result, nil
	}
	if err := r.persist(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// CurrentVersion returns the latest documented version, or the
// configured initial version when nothing is documented yet.
func (r *Runner) CurrentVersion() (string, error) {
	if err := r.documentedVersions(); err != nil {
		return "", err
	}
	if err := r.currentVersion(); err != nil {
		return "", err
	}
	return r.current, nil
}

// CurrentReference returns the git reference of CurrentVersion.
func (r *Runner) CurrentReference() (string, error) {
	version, err := r.CurrentVersion()
	if err != nil {
		return "", err
	}
	return r.cfg.GetGitReferenceFromVersion(version), nil
}

func (r *Runner) documentedVersions() error {
	versions, err := r.cfg.GetChangelogDocumentedVersions(r.rc.ChangelogPath)
	if err != nil {
		return fmt.Errorf("reading documented versions: %w", err)
	}
	r.nothingDocumented = len(versions) == 0
	if r.nothingDocumented {
		versions = []string{r.cfg.DefaultInitialVersion}
	}
	r.documented = versions
	logger.Debug("documented versions", "versions", versions, "initial", r.nothingDocumented)
	return nil
}

func (r *Runner) startReference() error {
	greatest, err := semver.Greatest(r.documented)
	if err != nil {
		return fmt.Errorf("finding the latest documented version: %w", err)
	}
	ref := r.cfg.GetGitReferenceFromVersion(greatest)

	// 1. The reference exists.
	_, err = r.repo.ResolveReference(ref)
	if err == nil {
		r.reference = ref
		logger.Debug("start reference", "reference", ref)
		return nil
	}
	if !errors.Is(err, git.ErrReferenceNotFound) {
		return fmt.Errorf("resolving %s: %w", ref, err)
	}

	// 2. Nothing released yet, so the whole history counts.
	if r.nothingDocumented {
		logger.Debug("start reference", "reference", "(none)")
		return nil
	}

	// 3. Recover it from the release commit.
	commit, ok, err := r.repo.FindCommitByMessage(strings.TrimSpace(ref))
	if err != nil {
		return fmt.Errorf("looking for the release commit of %s: %w", ref, err)
	}
	if !ok {
		return &ReferenceError{Reference: ref}
	}
	r.recovered = true
	if r.rc.DryRun {
		r.reference = commit.Sha
		logger.Debug("start reference", "reference", ref, "commit", commit.ShortSha(), "tagged", false)
		return nil
	}
	if err := r.repo.CreateTag(ref, commit.Sha); err != nil {
		return fmt.Errorf("tagging %s as %s: %w", commit.ShortSha(), ref, err)
	}
	r.reference = ref
	logger.Debug("start reference", "reference", ref, "commit", commit.ShortSha(), "tagged", true)
	return nil
}

func (r *Runner) history() error {
	log, err := r.repo.CommitLog(r.reference, r.rc.HeadSha, r.cfg.IncludeMergeCommits)
	if err != nil {
		return fmt.Errorf("reading commit history: %w", err)
	}

	raws := make([]gitlog.RawCommit, 0, len(log))
	for _, c := range log {
		subject, body := gitlog.SplitMessage(c.Message)
		raws = append(raws, gitlog.RawCommit{Hash: c.Sha, Subject: &subject, Body: &body})
	}

	commits, err := gitlog.Parse(raws, gitlog.Options{
		SubjectParser:       r.cfg.SubjectParser,
		BodyParser:          r.cfg.BodyParser,
		ParseFooterTags:     r.cfg.ParseFooterTags,
		LowerCaseFooterTags: r.cfg.LowerCaseFooterTags,
	})
	if err != nil {
		return fmt.Errorf("parsing commit history: %w", err)
	}
	r.commits = commits
	logger.Debug("history", "commits", len(commits))
	return nil
}

func (r *Runner) currentVersion() error {
	if r.rc.HasOverride() {
		r.current = r.rc.CurrentVersion
		return nil
	}
	current, err := r.cfg.GetCurrentBaseVersion(r.documented)
	if err != nil {
		return fmt.Errorf("finding the current version: %w", err)
	}
	r.current = current
	logger.Debug("current version", "version", current)
	return nil
}

func (r *Runner) nextVersion() error {
	if r.rc.ForcedVersion != "" {
		r.next = r.rc.ForcedVersion
		logger.Debug("next version", "version", r.next, "forced", true)
		return nil
	}

	// Each commit is classified once; the levels are kept for Explain.
	r.levels = make(map[string]string, len(r.commits))
	classify := func(c gitlog.Commit) (semver.Level, error) {
		level, err := r.cfg.GetIncrementLevelFromCommit(c)
		if err != nil {
			r.levels[c.Hash] = "invalid"
			return level, err
		}
		r.levels[c.Hash] = level.String()
		return level, nil
	}
	level, err := calculator.NextIncrementLevel(r.commits, classify)
	if err != nil {
		return fmt.Errorf("calculating next version: %w", err)
	}

	next := r.current
	if level != semver.LevelNone {
		if next, err = r.cfg.IncrementVersion(r.current, level); err != nil {
			return fmt.Errorf("calculating next version: %w", err)
		}
	}
	r.level = level
	r.next = next
	logger.Debug("next version", "version", next, "level", level.String())

	if slices.Contains(r.documented, next) {
		logger.Debug("omitting", "version", next)
		return ErrNoAnnotatedCommits
	}
	return nil
}

func (r *Runner) renderEntry(ctx context.Context) error {
	entry, data, err := changelog.Generate(ctx, r.commits, changelog.Options{
		Template:          r.cfg.Template,
		Version:           r.next,
		Date:              r.rc.Date,
		IncludeCommitWhen: r.cfg.IncludeCommitWhen,
		Transform:         r.cfg.TransformTemplateData,
		TransformAsync:    r.cfg.TransformTemplateDataAsync,
	})
	if err != nil {
		return fmt.Errorf("generating changelog entry: %w", err)
	}
	r.entry = entry
	r.data = data
	return nil
}

func (r *Runner) persist(ctx context.Context, result *Result) error {
	// 1. Changelog.
	if r.cfg.EditChangelog {
		before, err := readOptional(r.rc.ChangelogPath)
		if err != nil {
			return err
		}
		if err := r.cfg.AddEntryToChangelog(r.rc.ChangelogPath, r.entry); err != nil {
			return fmt.Errorf("adding entry to changelog: %w", err)
		}
		after, err := readOptional(r.rc.ChangelogPath)
		if err != nil {
			return err
		}
		result.ChangelogBefore, result.ChangelogAfter = before, after
		logger.Debug("changelog updated", "file", r.rc.ChangelogPath)
	}

	// 2. History file.
	if err := r.cfg.AddEntryToHistoryFile(r.rc.HistoryPath, r.data); err != nil {
		return fmt.Errorf("adding entry to history file: %w", err)
	}

	// 3. Manifests.
	if r.cfg.EditVersion {
		if err := r.cfg.UpdateVersion(ctx, r.rc.Dir, r.next); err != nil {
			return fmt.Errorf("updating version: %w", err)
		}
		logger.Debug("version updated", "dir", r.rc.Dir, "version", r.next)
	}
	return nil
}

// preview applies the changelog edit to a scratch copy of the changelog.
func (r *Runner) preview(result *Result) error {
	before, err := readOptional(r.rc.ChangelogPath)
	if err != nil {
		return err
	}
	result.ChangelogBefore, result.ChangelogAfter = before, before
	if !r.cfg.EditChangelog {
		return nil
	}

	dir, err := os.MkdirTemp("", "versionist-preview-")
	if err != nil {
		return fmt.Errorf("creating preview directory: %w", err)
	}
	defer os.RemoveAll(dir)

	scratch := filepath.Join(dir, filepath.Base(r.rc.ChangelogPath))
	if _, err := os.Stat(r.rc.ChangelogPath); err == nil {
		if err := os.WriteFile(scratch, []byte(before), 0o644); err != nil {
			return fmt.Errorf("copying changelog: %w", err)
		}
	}
	if err := r.cfg.AddEntryToChangelog(scratch, r.entry); err != nil {
		return fmt.Errorf("adding entry to changelog: %w", err)
	}
	after, err := readOptional(scratch)
	if err != nil {
		return err
	}
	result.ChangelogAfter = after
	return nil
}

// Explain summarizes the stages that have run so far.
func (r *Runner) Explain() output.Explanation {
	e := output.Explanation{
		BaseVersion:        r.current,
		RecoveredReference: r.recovered,
		StartReference:     r.reference,
		Level:              r.level.String(),
		Version:            r.next,
	}
	if !r.nothingDocumented {
		e.DocumentedVersions = r.documented
	}
	for _, c := range r.commits {
		ec := output.ExplainedCommit{Sha: c.Hash, Subject: c.Subject.Text, Level: r.levels[c.Hash], Included: true}
		if r.cfg.IncludeCommitWhen != nil {
			ec.Included = r.cfg.IncludeCommitWhen(c)
		}
		e.Commits = append(e.Commits, ec)
	}
	return e
}

func readOptional(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
