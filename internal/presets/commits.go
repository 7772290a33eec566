package presets

import (
	"regexp"
	"strings"

	"github.com/MyCarrier-DevOps/go-versionist/internal/gitlog"
	"github.com/MyCarrier-DevOps/go-versionist/internal/semver"
)

const (
	changeTypeKey     = "change-type"
	changelogEntryKey = "changelog-entry"
)

var (
	angularSubjectPattern = regexp.MustCompile(`^(?:fixup!\s*)?(\w*)(\(([\w$.*/-]*)\))?: (.*)$`)
	subjectLevelPattern   = regexp.MustCompile(`(?i)^(patch|minor|major):`)

	angularTypes = []string{"feat", "fix", "perf"}
)

// AngularSubject splits "type(scope): title" subjects. Subjects that do not
// follow the convention keep their text and get no type.
func AngularSubject(subject string) gitlog.Subject {
	m := angularSubjectPattern.FindStringSubmatch(subject)
	if m == nil {
		return gitlog.Subject{Text: subject}
	}
	title := m[4]
	if title == "" {
		title = subject
	}
	return gitlog.Subject{Type: m[1], Scope: m[3], Text: title}
}

func structured(s gitlog.Subject) bool {
	return s.Type != "" || s.Scope != ""
}

// IsAngularCommit keeps features, fixes and performance changes.
func IsAngularCommit(c gitlog.Commit) bool {
	for _, t := range angularTypes {
		if structured(c.Subject) {
			if c.Subject.Type == t {
				return true
			}
		} else if strings.HasPrefix(c.Subject.Text, t) {
			return true
		}
	}
	return false
}

// HasChangeType keeps commits that declare a version impact either in a
// change-type footer or in the subject. A misspelled change type still
// counts, so that classifying the commit reports it.
func HasChangeType(c gitlog.Commit) bool {
	if changeType, ok := c.Footer.Find(changeTypeKey); ok && incremental(changeType) {
		return true
	}
	level, err := SubjectLevel(c)
	return err == nil && level != semver.LevelNone
}

// HasChangelogEntry keeps commits with a non-empty changelog-entry footer.
func HasChangelogEntry(c gitlog.Commit) bool {
	return c.Footer.Value(changelogEntryKey) != ""
}

func incremental(changeType string) bool {
	ct := strings.ToLower(strings.TrimSpace(changeType))
	return ct != "" && ct != "none"
}

// ChangeTypeLevel reads the change-type footer, matching the key in any
// case. A missing footer or "none" is no change; any other value must name
// a level.
func ChangeTypeLevel(c gitlog.Commit) (semver.Level, error) {
	changeType, ok := c.Footer.Find(changeTypeKey)
	if !ok || !incremental(changeType) {
		return semver.LevelNone, nil
	}
	return semver.ParseLevel(changeType)
}

// SubjectLevel reads a "patch:", "minor:" or "major:" subject prefix. For
// structured subjects the parsed type is used instead.
func SubjectLevel(c gitlog.Commit) (semver.Level, error) {
	candidate := c.Subject.Text
	if structured(c.Subject) {
		candidate = c.Subject.Type + ":"
	}
	m := subjectLevelPattern.FindStringSubmatch(candidate)
	if m == nil {
		return semver.LevelNone, nil
	}
	return semver.ParseLevel(m[1])
}

// ChangeTypeOrSubjectLevel prefers the footer and falls back to the subject.
func ChangeTypeOrSubjectLevel(c gitlog.Commit) (semver.Level, error) {
	level, err := ChangeTypeLevel(c)
	if err != nil || level != semver.LevelNone {
		return level, err
	}
	return SubjectLevel(c)
}
