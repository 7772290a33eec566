// Package presets provides the named behaviors a configuration can select
// by name instead of supplying its own hooks.
package presets

import (
	"context"
	"time"

	"github.com/MyCarrier-DevOps/go-versionist/internal/calculator"
	"github.com/MyCarrier-DevOps/go-versionist/internal/changelog"
	"github.com/MyCarrier-DevOps/go-versionist/internal/config"
	"github.com/MyCarrier-DevOps/go-versionist/internal/git"
	"github.com/MyCarrier-DevOps/go-versionist/internal/gitlog"
)

// Source reads files from a hosted upstream repository.
type Source interface {
	FetchFile(ctx context.Context, owner, repo, ref, path string) ([]byte, error)
	DefaultBranch(ctx context.Context, owner, repo string) (string, error)
}

// SourceFactory returns the Source serving an upstream.
type SourceFactory func(ctx context.Context, up Upstream) (Source, error)

// Deps are the collaborators presets reach outside the process for.
type Deps struct {
	// Repo is the repository being versioned. Presets that need it
	// degrade gracefully when it is nil.
	Repo git.Repository
	// Sources defaults to DefaultSources.
	Sources SourceFactory
	// Now defaults to time.Now.
	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) sources() SourceFactory {
	if d.Sources != nil {
		return d.Sources
	}
	return DefaultSources
}

// NewRegistry returns a registry holding every built-in preset.
func NewRegistry(deps Deps) *config.Registry {
	r := config.NewRegistry()

	r.Register(config.PropSubjectParser, "angular", fixed(gitlog.SubjectParser(AngularSubject)))

	r.Register(config.PropIncludeCommitWhen, "angular", fixed(changelog.Predicate(IsAngularCommit)))
	r.Register(config.PropIncludeCommitWhen, "has-changetype", fixed(changelog.Predicate(HasChangeType)))
	r.Register(config.PropIncludeCommitWhen, "has-changelog-entry", fixed(changelog.Predicate(HasChangelogEntry)))

	r.Register(config.PropGetIncrementLevelFromCommit, "change-type", fixed(calculator.Classifier(ChangeTypeLevel)))
	r.Register(config.PropGetIncrementLevelFromCommit, "subject", fixed(calculator.Classifier(SubjectLevel)))
	r.Register(config.PropGetIncrementLevelFromCommit, "change-type-or-subject", fixed(calculator.Classifier(ChangeTypeOrSubjectLevel)))

	r.Register(config.PropGetChangelogDocumentedVersions, "changelog-headers", func(opts config.Options) (config.Value, error) {
		clean, err := cleanFunc(opts)
		if err != nil {
			return nil, err
		}
		return config.Literal(ChangelogHeaders(clean)), nil
	})

	r.Register(config.PropGetCurrentBaseVersion, "latest-documented", fixed(config.BaseVersionFunc(LatestDocumented)))

	r.Register(config.PropAddEntryToChangelog, "prepend", func(opts config.Options) (config.Value, error) {
		return config.Literal(Prepend(opts.Int("fromLine", defaultFromLine))), nil
	})

	r.Register(config.PropAddEntryToHistoryFile, "yml-prepend", fixed(config.HistoryWriter(YAMLPrepend)))

	r.Register(config.PropTransformTemplateData, "changelog-entry", func(config.Options) (config.Value, error) {
		return config.Literal(ChangelogEntry(deps.Repo)), nil
	})

	r.Register(config.PropTransformTemplateDataAsync, "passthrough", fixed(changelog.AsyncTransform(Passthrough)))
	r.Register(config.PropTransformTemplateDataAsync, "nested-changelogs", func(opts config.Options) (config.Value, error) {
		upstreams, err := parseUpstreams(opts)
		if err != nil {
			return nil, err
		}
		return config.Literal(NestedChangelogs(deps, upstreams)), nil
	})

	r.Register(config.PropIncrementVersion, "semver", fixed(calculator.Incrementer(IncrementSemver)))
	r.Register(config.PropGetGitReferenceFromVersion, "v-prefix", fixed(config.ReferenceFunc(VPrefix)))

	for name, build := range updaters(deps) {
		r.Register(config.PropUpdateVersion, name, build)
	}

	r.Register(config.PropTemplate, "default", func(config.Options) (config.Value, error) {
		return config.String(changelog.DefaultTemplate), nil
	})
	r.Register(config.PropTemplate, "oneline", func(config.Options) (config.Value, error) {
		return config.String(changelog.OnelineTemplate), nil
	})

	return r
}

// fixed wraps a hook that takes no options.
func fixed(hook any) config.Preset {
	return func(config.Options) (config.Value, error) {
		return config.Literal(hook), nil
	}
}
