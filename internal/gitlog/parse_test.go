package gitlog

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSubject = "refactor: group AppImage related stuff (#498)"

// formatCommit renders a commit the way git does with LogPrettyFormat.
func formatCommit(hash, subject, body string) string {
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = "    " + l
		}
	}
	return strings.Join([]string{
		"- hash: " + hash,
		"  subject: >-",
		"    " + subject,
		"  body: |-",
		"    XXX",
		strings.Join(lines, "\n"),
	}, "\n")
}

func parseOne(t *testing.T, body string, opts Options) Commit {
	t.Helper()
	commits, err := ParseYAML([]byte(formatCommit("abc123", testSubject, body)), opts)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	return commits[0]
}

func TestParseYAML_NoHooks(t *testing.T) {
	body := "Currently we had AppImage scripts and other resources in various\ndifferent places in the code base."
	c := parseOne(t, body, Options{ParseFooterTags: true})
	require.Equal(t, "abc123", c.Hash)
	require.Equal(t, testSubject, c.Subject.String())
	require.Equal(t, body, c.Body)
	require.Equal(t, 0, c.Footer.Len())
}

func TestParseYAML_MultipleCommits(t *testing.T) {
	data := formatCommit("a1", "first", "Change-Type: patch") + "\n" + formatCommit("b2", "second", "hello")
	commits, err := ParseYAML([]byte(data), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, commits, 2)
	require.Equal(t, "first", commits[0].Subject.Text)
	require.Equal(t, "patch", commits[0].Footer.Value("change-type"))
	require.Equal(t, "hello", commits[1].Body)
}

func TestParseYAML_MissingSubject(t *testing.T) {
	data := "- body: |-\n    XXX\n    Foo bar\n"
	_, err := ParseYAML([]byte(data), DefaultOptions())
	require.ErrorIs(t, err, ErrMissingSubject)
	require.Contains(t, err.Error(), "invalid commit: no subject")
}

func TestParseYAML_MissingBody(t *testing.T) {
	data := "- subject: >-\n    Foo bar\n"
	_, err := ParseYAML([]byte(data), DefaultOptions())
	require.ErrorIs(t, err, ErrMissingBody)
}

func TestParseYAML_InvalidYAML(t *testing.T) {
	_, err := ParseYAML([]byte("- subject: [unterminated"), DefaultOptions())
	require.Error(t, err)
}

func TestParseYAML_SubjectParser(t *testing.T) {
	c := parseOne(t, "body", Options{
		SubjectParser: func(s string) Subject { return Subject{Text: strings.ToUpper(s)} },
	})
	require.Equal(t, "REFACTOR: GROUP APPIMAGE RELATED STUFF (#498)", c.Subject.Text)
}

func TestParseYAML_BodyParser(t *testing.T) {
	c := parseOne(t, "Some body", Options{BodyParser: strings.ToUpper})
	require.Equal(t, "SOME BODY", c.Body)
}

func TestParseYAML_FooterTagsByDefault(t *testing.T) {
	body := "Currently we had AppImage scripts.\n\nFoo: bar\nBar: baz"
	c := parseOne(t, body, Options{ParseFooterTags: true})
	require.Equal(t, "Currently we had AppImage scripts.\n", c.Body)
	require.Equal(t, []string{"Foo", "Bar"}, c.Footer.Keys())
	require.Equal(t, "baz", c.Footer.Value("Bar"))
}

func TestParseYAML_FooterTagsDisabled(t *testing.T) {
	body := "Currently we had AppImage scripts.\n\nFoo: bar\nBar: baz"
	c := parseOne(t, body, Options{ParseFooterTags: false})
	require.Equal(t, body, c.Body)
	require.Equal(t, 0, c.Footer.Len())
}

func TestParseYAML_FooterOnly(t *testing.T) {
	c := parseOne(t, "Foo: bar\nBar: baz", Options{ParseFooterTags: true})
	require.Equal(t, "", c.Body)
	require.Equal(t, "bar", c.Footer.Value("Foo"))
}

func TestParseYAML_FooterWithHyphens(t *testing.T) {
	c := parseOne(t, "Change-Type: minor\nSigned-off-by: someone", Options{ParseFooterTags: true})
	require.Equal(t, "", c.Body)
	require.Equal(t, []string{"Change-Type", "Signed-off-by"}, c.Footer.Keys())
}

func TestParseYAML_StopAfterBlankLine(t *testing.T) {
	body := "Currently we had AppImage scripts and other resources in various\n" +
		"different places in the code base.\n\nFoo: bar\nBar: baz\n\nBaz: qux"
	c := parseOne(t, body, Options{ParseFooterTags: true})
	require.Equal(t, "Currently we had AppImage scripts and other resources in various\n"+
		"different places in the code base.\n\nFoo: bar\nBar: baz\n", c.Body)
	require.Equal(t, []string{"Baz"}, c.Footer.Keys())
	require.Equal(t, "qux", c.Footer.Value("Baz"))
}

func TestParseYAML_StopAfterNonTagLine(t *testing.T) {
	body := "Currently we had AppImage scripts.\n\nFoo: bar\nHello World\nBaz: qux"
	c := parseOne(t, body, Options{ParseFooterTags: true})
	require.Equal(t, "Currently we had AppImage scripts.\n\nFoo: bar\nHello World", c.Body)
	require.Equal(t, []string{"Baz"}, c.Footer.Keys())
}

func TestParseYAML_WeirdColonSpacing(t *testing.T) {
	c := parseOne(t, "Foo     :     bar\nBar:baz\nBaz    :qux\nHey:    there", Options{ParseFooterTags: true})
	require.Equal(t, "", c.Body)
	require.Equal(t, []string{"Foo", "Bar", "Baz", "Hey"}, c.Footer.Keys())
	require.Equal(t, "there", c.Footer.Value("Hey"))
}

func TestParseYAML_IndentedBody(t *testing.T) {
	for _, indent := range []string{" ", "    "} {
		t.Run(fmt.Sprintf("%d spaces", len(indent)), func(t *testing.T) {
			body := indent + "Currently we had AppImage scripts\n" + indent + "in the code base.\n\nFoo: bar\nBar: baz"
			c := parseOne(t, body, Options{ParseFooterTags: true})
			require.Equal(t, indent+"Currently we had AppImage scripts\n"+indent+"in the code base.\n", c.Body)
			require.Equal(t, []string{"Foo", "Bar"}, c.Footer.Keys())
		})
	}
}

func TestParseYAML_LowerCaseFooterTags(t *testing.T) {
	c := parseOne(t, "Change-Type: minor", Options{ParseFooterTags: true, LowerCaseFooterTags: true})
	require.Equal(t, []string{"Change-Type", "change-type"}, c.Footer.Keys())
}

func TestParse_EmptyBodyPresent(t *testing.T) {
	subject, body := "fix: thing", ""
	commits, err := Parse([]RawCommit{{Subject: &subject, Body: &body}}, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, "", commits[0].Body)
	require.Equal(t, 0, commits[0].Footer.Len())
}

func TestParse_WrapsIndex(t *testing.T) {
	subject := "ok"
	_, err := Parse([]RawCommit{{Hash: "deadbeef", Subject: &subject}}, DefaultOptions())
	require.ErrorIs(t, err, ErrMissingBody)
	require.Contains(t, err.Error(), "deadbeef")
}

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name    string
		message string
		subject string
		body    string
	}{
		{"subject only", "fix: y\n", "fix: y", ""},
		{"subject and body", "fix: y\n\nLonger text\n\nChange-Type: patch\n", "fix: y", "Longer text\n\nChange-Type: patch"},
		{"multi line subject", "fix: y\ncontinued\n\nbody", "fix: y continued", "body"},
		{"extra blank lines", "\nfix: y\n\n\n\nbody\n\n", "fix: y", "body"},
		{"crlf", "fix: y\r\n\r\nbody\r\n", "fix: y", "body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, body := SplitMessage(tt.message)
			require.Equal(t, tt.subject, subject)
			require.Equal(t, tt.body, body)
		})
	}
}

func TestSubject_String(t *testing.T) {
	require.Equal(t, "add x", Subject{Text: "add x", Type: "feat"}.String())
}
