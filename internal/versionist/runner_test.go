package versionist

import (
	"context"
	"errors"
	"maps"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/go-versionist/internal/changelog"
	"github.com/MyCarrier-DevOps/go-versionist/internal/config"
	"github.com/MyCarrier-DevOps/go-versionist/internal/git"
	"github.com/MyCarrier-DevOps/go-versionist/internal/presets"
	"github.com/MyCarrier-DevOps/go-versionist/internal/semver"
	"github.com/MyCarrier-DevOps/go-versionist/internal/testutil"
)

const entryTemplate = "## {{.Version}}\n\n{{range .Commits}}- {{capitalize (.Footer.Value \"changelog-entry\")}}\n{{end}}"

var fixedNow = func() time.Time { return time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC) }

// scenario configures the footer-driven setup most tests share.
func scenario(extra map[string]config.Value) map[string]config.Value {
	values := map[string]config.Value{
		config.PropSubjectParser:               config.String("angular"),
		config.PropEditVersion:                 config.Bool(false),
		config.PropAddEntryToChangelog:         config.Object{"preset": config.String("prepend"), "fromLine": config.Number(0)},
		config.PropIncludeCommitWhen:           config.String("has-changelog-entry"),
		config.PropGetIncrementLevelFromCommit: config.String("change-type"),
		config.PropTemplate:                    config.String(entryTemplate),
	}
	maps.Copy(values, extra)
	return values
}

func newRunner(t *testing.T, tr *testutil.TestRepo, values map[string]config.Value, opts Options) *Runner {
	t.Helper()
	repo, err := git.Open(tr.Path())
	require.NoError(t, err)

	overrides := map[string]config.Value{config.PropPath: config.String(tr.Path())}
	maps.Copy(overrides, values)
	cfg, err := config.Load(presets.NewRegistry(presets.Deps{Repo: repo, Now: fixedNow}), config.LoadOptions{
		Dir:       tr.Path(),
		Overrides: overrides,
		SkipEnv:   true,
	})
	require.NoError(t, err)

	if opts.Now == nil {
		opts.Now = fixedNow
	}
	r, err := New(repo, cfg, opts)
	require.NoError(t, err)
	return r
}

// threeCommits is a fresh repository with an empty changelog and three
// annotated commits.
func threeCommits(t *testing.T) *testutil.TestRepo {
	t.Helper()
	tr := testutil.NewTestRepo(t)
	tr.WriteFile("CHANGELOG.md", "")
	tr.AddCommit("feat: implement x\n\nChangelog-Entry: Implement x\nChange-Type: minor")
	tr.AddCommit("fix: fix y\n\nChangelog-Entry: Fix y\nChange-Type: patch")
	tr.AddCommit("fix: fix z\n\nChangelog-Entry: Fix z\nChange-Type: patch")
	return tr
}

func TestRunner_Run_FirstRelease(t *testing.T) {
	tr := threeCommits(t)
	r := newRunner(t, tr, scenario(nil), Options{})

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, "0.1.0", result.Version)
	require.Equal(t, "v0.1.0", result.Reference)
	require.Equal(t, "## 0.1.0\n\n- Fix z\n- Fix y\n- Implement x\n", result.Entry)
	require.Equal(t, "## 0.1.0\n\n- Fix z\n- Fix y\n- Implement x\n", tr.ReadFile("CHANGELOG.md"))
	require.True(t, result.ChangelogEdited)
	require.Empty(t, result.ChangelogBefore)
	require.Equal(t, tr.ReadFile("CHANGELOG.md"), result.ChangelogAfter)

	e := result.Explanation
	require.Empty(t, e.DocumentedVersions)
	require.Empty(t, e.StartReference)
	require.Equal(t, "0.0.1", e.BaseVersion)
	require.Equal(t, "minor", e.Level)
	require.Len(t, e.Commits, 3)
	require.Equal(t, "fix z", e.Commits[0].Subject)
	require.Equal(t, "patch", e.Commits[0].Level)
	require.True(t, e.Commits[0].Included)
}

func TestRunner_Run_FromReference(t *testing.T) {
	tr := threeCommits(t)
	tr.WriteFile("CHANGELOG.md", "## 0.1.0\n\n- Fix z\n")
	tr.CreateTag("v0.1.0", tr.HeadSha())
	tr.AddCommit("fix: fix w\n\nChangelog-Entry: Fix w\nChange-Type: patch")
	tr.AddCommit("chore: tidy up")

	r := newRunner(t, tr, scenario(nil), Options{})
	result, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, "0.1.1", result.Version)
	require.Equal(t, "## 0.1.1\n\n- Fix w\n\n## 0.1.0\n\n- Fix z\n", tr.ReadFile("CHANGELOG.md"))

	e := result.Explanation
	require.Equal(t, []string{"0.1.0"}, e.DocumentedVersions)
	require.Equal(t, "v0.1.0", e.StartReference)
	require.False(t, e.RecoveredReference)
	require.Len(t, e.Commits, 2)
	require.False(t, e.Commits[0].Included)
	require.Empty(t, e.Commits[0].Level)
}

func TestRunner_Run_RecoversReference(t *testing.T) {
	tr := threeCommits(t)
	release := tr.AddCommit("v0.1.0")
	tr.WriteFile("CHANGELOG.md", "## 0.1.0\n\n- Fix z\n")
	tr.AddCommit("feat: add w\n\nChangelog-Entry: Add w\nChange-Type: minor")

	r := newRunner(t, tr, scenario(nil), Options{})
	result, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, "0.2.0", result.Version)
	require.True(t, result.Explanation.RecoveredReference)
	require.Len(t, result.Explanation.Commits, 1)

	repo, err := git.Open(tr.Path())
	require.NoError(t, err)
	sha, err := repo.ResolveReference("v0.1.0")
	require.NoError(t, err)
	require.Equal(t, release, sha)
}

func TestRunner_Run_DryRunDoesNotTag(t *testing.T) {
	tr := threeCommits(t)
	tr.AddCommit("v0.1.0")
	tr.WriteFile("CHANGELOG.md", "## 0.1.0\n\n- Fix z\n")
	tr.AddCommit("feat: add w\n\nChangelog-Entry: Add w\nChange-Type: minor")

	r := newRunner(t, tr, scenario(nil), Options{DryRun: true})
	result, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, "0.2.0", result.Version)

	repo, err := git.Open(tr.Path())
	require.NoError(t, err)
	_, err = repo.ResolveReference("v0.1.0")
	require.ErrorIs(t, err, git.ErrReferenceNotFound)
}

func TestRunner_Run_NoValidReference(t *testing.T) {
	tr := threeCommits(t)
	tr.WriteFile("CHANGELOG.md", "## 0.1.0\n\n- Fix z\n")

	r := newRunner(t, tr, scenario(nil), Options{})
	_, err := r.Run(context.Background())
	require.ErrorIs(t, err, ErrNoValidReference)
	require.EqualError(t, err, "omitting v0.1.0. No valid git reference was found")

	var refErr *ReferenceError
	require.True(t, errors.As(err, &refErr))
	require.Equal(t, "v0.1.0", refErr.Reference)
}

func TestRunner_Run_NoAnnotatedCommits(t *testing.T) {
	tr := testutil.NewTestRepo(t)
	tr.AddCommit("feat: implement x\n\nChangelog-Entry: Implement x")

	r := newRunner(t, tr, scenario(nil), Options{})
	_, err := r.Run(context.Background())
	require.ErrorIs(t, err, ErrNoAnnotatedCommits)
	require.NoFileExists(t, filepath.Join(tr.Path(), "CHANGELOG.md"))
}

func TestRunner_Run_MisspelledChangeType(t *testing.T) {
	tr := threeCommits(t)
	tr.AddCommit("feat: add w\n\nChangelog-Entry: Add w\nChange-Type: mnior")

	r := newRunner(t, tr, scenario(map[string]config.Value{
		config.PropIncludeCommitWhen:           config.String("has-changetype"),
		config.PropGetIncrementLevelFromCommit: config.String("change-type-or-subject"),
	}), Options{})
	_, err := r.Run(context.Background())
	require.ErrorIs(t, err, semver.ErrInvalidLevel)
	require.ErrorContains(t, err, "invalid increment level: mnior")
	require.Empty(t, tr.ReadFile("CHANGELOG.md"))

	e := r.Explain()
	require.Equal(t, "invalid", e.Commits[0].Level)
}

func TestRunner_Run_ForcedVersion(t *testing.T) {
	tr := threeCommits(t)

	r := newRunner(t, tr, scenario(nil), Options{ForcedVersion: "3.0.1"})
	result, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, "3.0.1", result.Version)
	require.Equal(t, "## 3.0.1\n\n- Fix z\n- Fix y\n- Implement x\n", tr.ReadFile("CHANGELOG.md"))
}

func TestRunner_Run_CurrentOverride(t *testing.T) {
	tr := threeCommits(t)

	r := newRunner(t, tr, scenario(nil), Options{CurrentVersion: "1.4.2"})
	result, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, "1.5.0", result.Version)
	require.Equal(t, "1.4.2", result.Explanation.BaseVersion)
}

func TestRunner_Run_DryRun(t *testing.T) {
	tr := threeCommits(t)
	tr.WriteFile("CHANGELOG.md", "# Changelog\n")

	r := newRunner(t, tr, scenario(map[string]config.Value{
		config.PropAddEntryToChangelog: config.Object{"preset": config.String("prepend"), "fromLine": config.Number(1)},
	}), Options{DryRun: true})
	result, err := r.Run(context.Background())
	require.NoError(t, err)
	require.True(t, result.DryRun)
	require.Equal(t, "# Changelog\n", tr.ReadFile("CHANGELOG.md"))
	require.Equal(t, "# Changelog\n", result.ChangelogBefore)
	require.Equal(t, "# Changelog\n\n## 0.1.0\n\n- Fix z\n- Fix y\n- Implement x\n", result.ChangelogAfter)
}

func TestRunner_Run_DryRunMissingChangelog(t *testing.T) {
	tr := testutil.NewTestRepo(t)
	tr.AddCommit("fix: fix y\n\nChangelog-Entry: Fix y\nChange-Type: patch")

	r := newRunner(t, tr, scenario(nil), Options{DryRun: true})
	result, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, result.ChangelogBefore)
	require.Contains(t, result.ChangelogAfter, presets.InitialChangelog)
	require.Contains(t, result.ChangelogAfter, "## 0.0.2\n\n- Fix y\n")
	require.NoFileExists(t, filepath.Join(tr.Path(), "CHANGELOG.md"))
}

func TestRunner_Run_EditChangelogOff(t *testing.T) {
	tr := threeCommits(t)

	r := newRunner(t, tr, scenario(map[string]config.Value{
		config.PropEditChangelog: config.Bool(false),
	}), Options{})
	result, err := r.Run(context.Background())
	require.NoError(t, err)
	require.False(t, result.ChangelogEdited)
	require.Equal(t, "## 0.1.0\n\n- Fix z\n- Fix y\n- Implement x\n", result.Entry)
	require.Empty(t, tr.ReadFile("CHANGELOG.md"))
}

func TestRunner_Run_UpdatesVersion(t *testing.T) {
	tr := threeCommits(t)

	r := newRunner(t, tr, scenario(map[string]config.Value{
		config.PropEditVersion:   config.Bool(true),
		config.PropUpdateVersion: config.String("update-version-file"),
	}), Options{})
	_, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, "0.1.0", tr.ReadFile("VERSION"))
}

func TestRunner_Run_HistoryFile(t *testing.T) {
	tr := threeCommits(t)
	tr.WriteFile(".versionbot/CHANGELOG.yml", "")

	r := newRunner(t, tr, scenario(nil), Options{})
	_, err := r.Run(context.Background())
	require.NoError(t, err)

	releases, err := changelog.ReadHistory(filepath.Join(tr.Path(), ".versionbot", "CHANGELOG.yml"))
	require.NoError(t, err)
	require.Len(t, releases, 1)
	require.Equal(t, "0.1.0", releases[0].Version)
	require.Len(t, releases[0].Commits, 3)
	require.Equal(t, "Fix z", releases[0].Commits[0].Subject.Text)
	require.Equal(t, "Test", releases[0].Commits[0].Author)
}

func TestRunner_CurrentVersion(t *testing.T) {
	tr := threeCommits(t)
	r := newRunner(t, tr, scenario(nil), Options{})

	version, err := r.CurrentVersion()
	require.NoError(t, err)
	require.Equal(t, "0.0.1", version)

	ref, err := r.CurrentReference()
	require.NoError(t, err)
	require.Equal(t, "v0.0.1", ref)

	_, err = r.Run(context.Background())
	require.NoError(t, err)

	r = newRunner(t, tr, scenario(nil), Options{})
	version, err = r.CurrentVersion()
	require.NoError(t, err)
	require.Equal(t, "0.1.0", version)
}

func TestRunner_Run_CommitLogError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "CHANGELOG.md"), nil, 0o644))
	repo := &git.MockRepository{
		WorkingDirectoryFunc: func() string { return dir },
		HeadShaFunc:          func() (string, error) { return "abc", nil },
		CommitLogFunc: func(string, string, bool) ([]git.Commit, error) {
			return nil, errors.New("object not found")
		},
	}
	cfg, err := config.Load(presets.NewRegistry(presets.Deps{Repo: repo}), config.LoadOptions{
		Dir:       dir,
		Overrides: scenario(map[string]config.Value{config.PropPath: config.String(dir)}),
		SkipEnv:   true,
	})
	require.NoError(t, err)

	r, err := New(repo, cfg, Options{})
	require.NoError(t, err)
	_, err = r.Run(context.Background())
	require.EqualError(t, err, "reading commit history: object not found")
}
