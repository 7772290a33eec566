package gitlog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MyCarrier-DevOps/go-versionist/internal/tags"
)

var (
	// ErrMissingSubject is returned for a raw commit without a subject field.
	ErrMissingSubject = errors.New("invalid commit: no subject")
	// ErrMissingBody is returned for a raw commit without a body field.
	ErrMissingBody = errors.New("invalid commit: no body")
)

// RawCommit is a commit as read from history. Nil fields are missing, which
// is different from present but empty.
type RawCommit struct {
	Hash    string  `yaml:"hash"`
	Subject *string `yaml:"subject"`
	Body    *string `yaml:"body"`
}

// Options controls how raw commits are structured.
type Options struct {
	SubjectParser       SubjectParser
	BodyParser          BodyParser
	ParseFooterTags     bool
	LowerCaseFooterTags bool
}

// DefaultOptions parses footers and keeps subject and body untouched.
func DefaultOptions() Options {
	return Options{
		SubjectParser:       PlainSubject,
		BodyParser:          PlainBody,
		ParseFooterTags:     true,
		LowerCaseFooterTags: true,
	}
}

func (o Options) withDefaults() Options {
	if o.SubjectParser == nil {
		o.SubjectParser = PlainSubject
	}
	if o.BodyParser == nil {
		o.BodyParser = PlainBody
	}
	return o
}

// Parse structures each raw commit. Order is preserved.
func Parse(raws []RawCommit, opts Options) ([]Commit, error) {
	opts = opts.withDefaults()
	commits := make([]Commit, 0, len(raws))
	for i, raw := range raws {
		c, err := parseCommit(raw, opts)
		if err != nil {
			return nil, fmt.Errorf("commit %d (%s): %w", i, raw.Hash, err)
		}
		commits = append(commits, c)
	}
	return commits, nil
}

func parseCommit(raw RawCommit, opts Options) (Commit, error) {
	if raw.Subject == nil {
		return Commit{}, ErrMissingSubject
	}
	if raw.Body == nil {
		return Commit{}, ErrMissingBody
	}

	commit := Commit{
		Hash:    raw.Hash,
		Subject: opts.SubjectParser(*raw.Subject),
	}

	if !opts.ParseFooterTags {
		commit.Body = opts.BodyParser(*raw.Body)
		return commit, nil
	}

	body, footer := splitFooter(strings.Split(*raw.Body, "\n"))
	commit.Body = opts.BodyParser(strings.Join(body, "\n"))
	commit.Footer = tags.ParseFooterTagLines(footer, tags.Options{
		LowerCase: opts.LowerCaseFooterTags,
	})
	return commit, nil
}

// splitFooter walks the lines from the bottom. Footer lines are the trailing
// run of tag lines; the first blank or non-tag line ends the run for good
// and it, and everything above it, belongs to the body.
func splitFooter(lines []string) ([]string, []string) {
	considerTags := true
	var body, footer []string
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if strings.TrimSpace(line) == "" || !tags.IsTagLine(line) {
			considerTags = false
		}
		if considerTags {
			footer = append([]string{line}, footer...)
		} else {
			body = append([]string{line}, body...)
		}
	}
	return body, footer
}
