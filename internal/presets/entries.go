package presets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/MyCarrier-DevOps/go-versionist/internal/changelog"
	"github.com/MyCarrier-DevOps/go-versionist/internal/config"
	"github.com/MyCarrier-DevOps/go-versionist/internal/git"
	"github.com/MyCarrier-DevOps/go-versionist/internal/gitlog"
	"github.com/MyCarrier-DevOps/go-versionist/internal/semver"
)

const (
	defaultFromLine = 6
	unknownAuthor   = "Unknown author"
)

// InitialChangelog is written to a changelog file that does not exist yet.
const InitialChangelog = `# Changelog

All notable changes to this project will be documented in this file
automatically by Versionist. DO NOT EDIT THIS FILE MANUALLY!
This project adheres to [Semantic Versioning](http://semver.org/).

`

// ErrAllCommitsFiltered is returned by ChangelogEntry when the include
// predicate removed every commit.
var ErrAllCommitsFiltered = errors.New("all commits were filtered out for this version")

// cleanFunc reads the clean option: true normalizes with semver, a string
// is a pattern whose first match is removed, false leaves versions untouched.
func cleanFunc(opts config.Options) (func(string) string, error) {
	v, ok := opts.Get("clean")
	if !ok {
		return semver.Clean, nil
	}
	switch t := v.(type) {
	case config.Bool:
		if t {
			return semver.Clean, nil
		}
		return func(s string) string { return s }, nil
	case config.String:
		re, err := regexp.Compile(string(t))
		if err != nil {
			return nil, fmt.Errorf("compiling clean pattern: %w", err)
		}
		return func(s string) string {
			loc := re.FindStringIndex(s)
			if loc == nil {
				return s
			}
			return s[:loc[0]] + s[loc[1]:]
		}, nil
	default:
		return nil, fmt.Errorf("clean option must be a boolean or a pattern, got %s", v.Kind())
	}
}

// ChangelogHeaders lists the versions named in a changelog's headings. A
// missing file documents nothing.
func ChangelogHeaders(clean func(string) string) config.DocumentedVersionsFunc {
	return func(file string) ([]string, error) {
		data, err := os.ReadFile(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return []string{}, nil
			}
			return nil, fmt.Errorf("reading changelog: %w", err)
		}

		versions := []string{}
		for _, title := range changelog.ExtractTitles(data) {
			for _, word := range strings.Split(title, " ") {
				if semver.IsValid(word) {
					versions = append(versions, clean(word))
				}
			}
		}
		return versions, nil
	}
}

// LatestDocumented returns the greatest documented version.
func LatestDocumented(versions []string) (string, error) {
	return semver.Greatest(versions)
}

// Prepend inserts entry into file after the first fromLine lines, creating
// the file with the standard header when needed. Blank lines around the
// seams collapse to one.
func Prepend(fromLine int) config.ChangelogWriter {
	if fromLine < 0 {
		fromLine = 0
	}
	return func(file, entry string) error {
		if err := touchChangelog(file); err != nil {
			return err
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading changelog: %w", err)
		}

		lines := strings.Split(string(data), "\n")
		cut := min(fromLine, len(lines))

		var out []string
		for _, part := range [][]string{lines[:cut], strings.Split(entry, "\n"), lines[cut:]} {
			head := dropTrailingBlank(out)
			body := dropLeadingBlank(part)
			if len(head) == 0 {
				out = body
				continue
			}
			out = append(append(head, ""), body...)
		}

		if err := os.WriteFile(file, []byte(strings.Join(out, "\n")), 0o644); err != nil {
			return fmt.Errorf("writing changelog: %w", err)
		}
		return nil
	}
}

func touchChangelog(file string) error {
	if _, err := os.Stat(file); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking changelog: %w", err)
	}
	if err := os.WriteFile(file, []byte(InitialChangelog), 0o644); err != nil {
		return fmt.Errorf("creating changelog: %w", err)
	}
	return nil
}

func dropTrailingBlank(lines []string) []string {
	end := len(lines)
	for end > 0 && lines[end-1] == "" {
		end--
	}
	return append([]string(nil), lines[:end]...)
}

func dropLeadingBlank(lines []string) []string {
	start := 0
	for start < len(lines) && lines[start] == "" {
		start++
	}
	return lines[start:]
}

// YAMLPrepend adds release to the front of an existing history file.
// Projects without a history file are left alone.
func YAMLPrepend(file string, release gitlog.Release) error {
	if _, err := os.Stat(file); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("checking history file: %w", err)
	}
	releases, err := changelog.ReadHistory(file)
	if err != nil {
		return err
	}
	return changelog.WriteHistory(file, append([]gitlog.Release{release}, releases...))
}

// ChangelogEntry shows the changelog-entry footer in place of the subject
// and credits each commit's author.
func ChangelogEntry(repo git.Repository) changelog.Transform {
	return func(data changelog.TemplateData) (changelog.TemplateData, error) {
		if len(data.Commits) == 0 {
			return data, ErrAllCommitsFiltered
		}

		commits := make([]gitlog.Commit, len(data.Commits))
		for i, c := range data.Commits {
			if entry := c.Footer.Value(changelogEntryKey); entry != "" {
				c.Subject.Text = entry
			}
			author, err := commitAuthor(repo, c)
			if err != nil {
				return data, err
			}
			c.Author = author
			commits[i] = c
		}
		data.Commits = commits
		return data, nil
	}
}

func commitAuthor(repo git.Repository, c gitlog.Commit) (string, error) {
	if c.Hash == "" {
		return unknownAuthor, nil
	}
	if repo == nil {
		if c.Author != "" {
			return c.Author, nil
		}
		return unknownAuthor, nil
	}
	author, err := repo.CommitAuthor(c.Hash)
	if err != nil {
		return "", fmt.Errorf("looking up author of %s: %w", c.Hash, err)
	}
	return author, nil
}
