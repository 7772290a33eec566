package config

import (
	"os"

	"github.com/MyCarrier-DevOps/go-versionist/internal/calculator"
	"github.com/MyCarrier-DevOps/go-versionist/internal/changelog"
	"github.com/MyCarrier-DevOps/go-versionist/internal/gitlog"
)

// Property names.
const (
	PropPath                           = "path"
	PropChangelogFile                  = "changelogFile"
	PropHistoryFile                    = "historyFile"
	PropDefaultInitialVersion          = "defaultInitialVersion"
	PropGitDirectory                   = "gitDirectory"
	PropParseFooterTags                = "parseFooterTags"
	PropLowerCaseFooterTags            = "lowerCaseFooterTags"
	PropEditChangelog                  = "editChangelog"
	PropEditVersion                    = "editVersion"
	PropIncludeMergeCommits            = "includeMergeCommits"
	PropSubjectParser                  = "subjectParser"
	PropBodyParser                     = "bodyParser"
	PropIncludeCommitWhen              = "includeCommitWhen"
	PropTransformTemplateData          = "transformTemplateData"
	PropTransformTemplateDataAsync     = "transformTemplateDataAsync"
	PropGetChangelogDocumentedVersions = "getChangelogDocumentedVersions"
	PropGetCurrentBaseVersion          = "getCurrentBaseVersion"
	PropGetIncrementLevelFromCommit    = "getIncrementLevelFromCommit"
	PropIncrementVersion               = "incrementVersion"
	PropGetGitReferenceFromVersion     = "getGitReferenceFromVersion"
	PropAddEntryToChangelog            = "addEntryToChangelog"
	PropAddEntryToHistoryFile          = "addEntryToHistoryFile"
	PropUpdateVersion                  = "updateVersion"
	PropTemplate                       = "template"
)

// Descriptor declares what a property accepts.
type Descriptor struct {
	Kinds         []Kind
	Default       Value
	AllowsPresets bool
	// Check validates function implementations. Nil accepts any function.
	Check func(impl any) bool
}

func (d Descriptor) accepts(k Kind) bool {
	for _, kind := range d.Kinds {
		if kind == k {
			return true
		}
	}
	return false
}

func literal(def Value) Descriptor {
	return Descriptor{Kinds: []Kind{def.Kind()}, Default: def}
}

func hook[F any](def Value) Descriptor {
	return Descriptor{
		Kinds:         []Kind{KindFunction},
		Default:       def,
		AllowsPresets: true,
		Check:         HookCheck[F](),
	}
}

// Defaults returns the descriptor of every known property.
func Defaults() map[string]Descriptor {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	updater := hook[VersionUpdater](Ref("npm", nil))
	updater.Kinds = []Kind{KindFunction, KindArray}

	template := Descriptor{Kinds: []Kind{KindString}, Default: Ref("default", nil), AllowsPresets: true}

	return map[string]Descriptor{
		PropPath:                  literal(String(cwd)),
		PropChangelogFile:         literal(String("CHANGELOG.md")),
		PropHistoryFile:           literal(String(".versionbot/CHANGELOG.yml")),
		PropDefaultInitialVersion: literal(String("0.0.1")),
		PropGitDirectory:          literal(String(".git")),
		PropParseFooterTags:       literal(Bool(true)),
		PropLowerCaseFooterTags:   literal(Bool(true)),
		PropEditChangelog:         literal(Bool(true)),
		PropEditVersion:           literal(Bool(true)),
		PropIncludeMergeCommits:   literal(Bool(false)),

		PropSubjectParser:                  hook[gitlog.SubjectParser](Literal(gitlog.SubjectParser(gitlog.PlainSubject))),
		PropBodyParser:                     hook[gitlog.BodyParser](Literal(gitlog.BodyParser(gitlog.PlainBody))),
		PropIncludeCommitWhen:              hook[changelog.Predicate](Ref("has-changetype", nil)),
		PropTransformTemplateData:          hook[changelog.Transform](Ref("changelog-entry", nil)),
		PropTransformTemplateDataAsync:     hook[changelog.AsyncTransform](Ref("passthrough", nil)),
		PropGetChangelogDocumentedVersions: hook[DocumentedVersionsFunc](Ref("changelog-headers", nil)),
		PropGetCurrentBaseVersion:          hook[BaseVersionFunc](Ref("latest-documented", nil)),
		PropGetIncrementLevelFromCommit:    hook[calculator.Classifier](Ref("change-type-or-subject", nil)),
		PropIncrementVersion:               hook[calculator.Incrementer](Ref("semver", nil)),
		PropGetGitReferenceFromVersion:     hook[ReferenceFunc](Ref("v-prefix", nil)),
		PropAddEntryToChangelog:            hook[ChangelogWriter](Ref("prepend", Options{"fromLine": Number(6)})),
		PropAddEntryToHistoryFile:          hook[HistoryWriter](Ref("yml-prepend", nil)),
		PropUpdateVersion:                  updater,
		PropTemplate:                       template,
	}
}
