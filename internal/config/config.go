// Package config describes the properties versionist accepts, resolves user
// values and named presets against a registry, and loads configuration from
// files and the environment.
package config

import (
	"context"
	"fmt"

	"github.com/MyCarrier-DevOps/go-versionist/internal/calculator"
	"github.com/MyCarrier-DevOps/go-versionist/internal/changelog"
	"github.com/MyCarrier-DevOps/go-versionist/internal/gitlog"
)

// Config is the typed form of a Resolved configuration.
type Config struct {
	Path                  string
	ChangelogFile         string
	HistoryFile           string
	DefaultInitialVersion string
	GitDirectory          string
	ParseFooterTags       bool
	LowerCaseFooterTags   bool
	EditChangelog         bool
	EditVersion           bool
	IncludeMergeCommits   bool
	Template              string

	SubjectParser                  gitlog.SubjectParser
	BodyParser                     gitlog.BodyParser
	IncludeCommitWhen              changelog.Predicate
	TransformTemplateData          changelog.Transform
	TransformTemplateDataAsync     changelog.AsyncTransform
	GetChangelogDocumentedVersions DocumentedVersionsFunc
	GetCurrentBaseVersion          BaseVersionFunc
	GetIncrementLevelFromCommit    calculator.Classifier
	IncrementVersion               calculator.Incrementer
	GetGitReferenceFromVersion     ReferenceFunc
	AddEntryToChangelog            ChangelogWriter
	AddEntryToHistoryFile          HistoryWriter
	UpdateVersion                  VersionUpdater
}

// Build converts resolved values into a Config. An array of updaters
// becomes one updater running them in order.
func Build(r Resolved) (*Config, error) {
	b := typed{r: r}
	cfg := &Config{
		Path:                  b.str(PropPath),
		ChangelogFile:         b.str(PropChangelogFile),
		HistoryFile:           b.str(PropHistoryFile),
		DefaultInitialVersion: b.str(PropDefaultInitialVersion),
		GitDirectory:          b.str(PropGitDirectory),
		ParseFooterTags:       b.boolean(PropParseFooterTags),
		LowerCaseFooterTags:   b.boolean(PropLowerCaseFooterTags),
		EditChangelog:         b.boolean(PropEditChangelog),
		EditVersion:           b.boolean(PropEditVersion),
		IncludeMergeCommits:   b.boolean(PropIncludeMergeCommits),
		Template:              b.str(PropTemplate),
	}

	cfg.SubjectParser = fn[gitlog.SubjectParser](&b, PropSubjectParser)
	cfg.BodyParser = fn[gitlog.BodyParser](&b, PropBodyParser)
	cfg.IncludeCommitWhen = fn[changelog.Predicate](&b, PropIncludeCommitWhen)
	cfg.TransformTemplateData = fn[changelog.Transform](&b, PropTransformTemplateData)
	cfg.TransformTemplateDataAsync = fn[changelog.AsyncTransform](&b, PropTransformTemplateDataAsync)
	cfg.GetChangelogDocumentedVersions = fn[DocumentedVersionsFunc](&b, PropGetChangelogDocumentedVersions)
	cfg.GetCurrentBaseVersion = fn[BaseVersionFunc](&b, PropGetCurrentBaseVersion)
	cfg.GetIncrementLevelFromCommit = fn[calculator.Classifier](&b, PropGetIncrementLevelFromCommit)
	cfg.IncrementVersion = fn[calculator.Incrementer](&b, PropIncrementVersion)
	cfg.GetGitReferenceFromVersion = fn[ReferenceFunc](&b, PropGetGitReferenceFromVersion)
	cfg.AddEntryToChangelog = fn[ChangelogWriter](&b, PropAddEntryToChangelog)
	cfg.AddEntryToHistoryFile = fn[HistoryWriter](&b, PropAddEntryToHistoryFile)
	cfg.UpdateVersion = b.updater(PropUpdateVersion)

	if b.err != nil {
		return nil, b.err
	}
	return cfg, nil
}

// typed reads values out of a Resolved map, keeping the first error.
type typed struct {
	r   Resolved
	err error
}

func (b *typed) fail(prop string, v Value) {
	if b.err == nil {
		b.err = fmt.Errorf("%w: %s. The `%s` option has an unexpected value", ErrInvalidOptionValue, format(v), prop)
	}
}

func (b *typed) str(prop string) string {
	s, ok := b.r[prop].(String)
	if !ok {
		b.fail(prop, b.r[prop])
	}
	return string(s)
}

func (b *typed) boolean(prop string) bool {
	v, ok := b.r[prop].(Bool)
	if !ok {
		b.fail(prop, b.r[prop])
	}
	return bool(v)
}

func fn[F any](b *typed, prop string) F {
	f, ok := b.r[prop].(Func)
	if !ok {
		b.fail(prop, b.r[prop])
		var zero F
		return zero
	}
	h, ok := AsHook[F](f.Impl)
	if !ok {
		b.fail(prop, f)
	}
	return h
}

func (b *typed) updater(prop string) VersionUpdater {
	arr, ok := b.r[prop].(Array)
	if !ok {
		return fn[VersionUpdater](b, prop)
	}
	updaters := make([]VersionUpdater, 0, len(arr))
	for _, e := range arr {
		f, ok := e.(Func)
		if !ok {
			b.fail(prop, e)
			return nil
		}
		u, ok := AsHook[VersionUpdater](f.Impl)
		if !ok {
			b.fail(prop, e)
			return nil
		}
		updaters = append(updaters, u)
	}
	return func(ctx context.Context, dir, version string) error {
		for _, u := range updaters {
			if err := u(ctx, dir, version); err != nil {
				return err
			}
		}
		return nil
	}
}
