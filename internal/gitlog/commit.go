// Package gitlog turns raw commit records into structured commits with a
// subject, a body and a footer of trailing tags.
package gitlog

import (
	"encoding/json"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MyCarrier-DevOps/go-versionist/internal/tags"
)

// Subject is a parsed commit subject. Text is what changelogs display.
type Subject struct {
	Text  string `yaml:"text" json:"text"`
	Type  string `yaml:"type,omitempty" json:"type,omitempty"`
	Scope string `yaml:"scope,omitempty" json:"scope,omitempty"`
}

func (s Subject) String() string {
	return s.Text
}

// MarshalYAML writes plain subjects as a scalar.
func (s Subject) MarshalYAML() (interface{}, error) {
	if s.Type == "" && s.Scope == "" {
		return s.Text, nil
	}
	type plain Subject
	return plain(s), nil
}

// MarshalJSON mirrors MarshalYAML.
func (s Subject) MarshalJSON() ([]byte, error) {
	if s.Type == "" && s.Scope == "" {
		return json.Marshal(s.Text)
	}
	type plain Subject
	return json.Marshal(plain(s))
}

// UnmarshalYAML accepts either a scalar or a mapping.
func (s *Subject) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*s = Subject{Text: value.Value}
		return nil
	}
	type plain Subject
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*s = Subject(p)
	return nil
}

// Commit is one structured history entry.
type Commit struct {
	Hash    string      `yaml:"hash,omitempty" json:"hash,omitempty"`
	Subject Subject     `yaml:"subject" json:"subject"`
	Body    string      `yaml:"body" json:"body"`
	Footer  tags.Footer `yaml:"footer" json:"footer"`
	Author  string      `yaml:"author,omitempty" json:"author,omitempty"`
	Nested  []Release   `yaml:"nested,omitempty" json:"nested,omitempty"`
}

// Release groups the commits that make up one version. It is the data handed
// to changelog templates and the record kept in the YAML history file.
type Release struct {
	Commits []Commit  `yaml:"commits" json:"commits"`
	Version string    `yaml:"version" json:"version"`
	Date    time.Time `yaml:"date" json:"date"`
}

// SubjectParser post-processes a raw subject line.
type SubjectParser func(subject string) Subject

// BodyParser post-processes a body after footer extraction.
type BodyParser func(body string) string

// PlainSubject is the identity subject parser.
func PlainSubject(subject string) Subject {
	return Subject{Text: subject}
}

// PlainBody is the identity body parser.
func PlainBody(body string) string {
	return body
}

// SplitMessage splits a full commit message the way git's %s and %b
// placeholders do: the subject is the first paragraph joined into one line,
// the body is everything after the first blank line, trailing newlines
// removed.
func SplitMessage(message string) (string, string) {
	message = strings.ReplaceAll(message, "\r\n", "\n")
	message = strings.TrimLeft(message, "\n")

	lines := strings.Split(message, "\n")
	var subject []string
	i := 0
	for ; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			break
		}
		subject = append(subject, strings.TrimSpace(lines[i]))
	}

	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}

	body := strings.Join(lines[i:], "\n")
	body = strings.TrimRight(body, "\n")
	return strings.Join(subject, " "), body
}
