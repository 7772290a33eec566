// Package tags parses commit footer tag lines such as "Change-Type: minor".
package tags

import (
	"regexp"
	"strconv"
	"strings"
)

// tagLinePattern accepts "key:" followed by end of line or any character
// other than "/", so URLs like https://host are not mistaken for tags.
var tagLinePattern = regexp.MustCompile(`^[\w-]+\s*:([^/]|$)`)

// Tag is a single parsed footer line. A nil Value means the tag had no value.
type Tag struct {
	Key   string
	Value *string
}

// Options controls footer parsing.
type Options struct {
	// LowerCase also stores every key that is not already lowercase under
	// its lowercased form.
	LowerCase bool
}

// IsTagLine reports whether line has the shape of a footer tag.
func IsTagLine(line string) bool {
	return tagLinePattern.MatchString(line)
}

// ParseTagLine splits line at its first colon.
func ParseTagLine(line string) Tag {
	key, value, _ := strings.Cut(line, ":")
	tag := Tag{Key: strings.TrimSpace(key)}
	if v := strings.TrimSpace(value); v != "" {
		tag.Value = &v
	}
	return tag
}

// accumulator carries the fold state of ParseFooterTagLines.
type accumulator struct {
	counter int
	footer  Footer
}

func (a accumulator) insert(tag Tag) accumulator {
	key := tag.Key
	if a.footer.Has(key) {
		key += strconv.Itoa(a.counter)
		a.counter++
	}
	a.footer.set(key, tag.Value)
	return a
}

// ParseFooterTagLines parses already isolated footer lines. Blank lines are
// skipped. A repeated key gets a numeric suffix taken from a counter shared
// by every collision in the call, so three "Foo" lines become Foo, Foo1, Foo2.
func ParseFooterTagLines(lines []string, opts Options) Footer {
	acc := accumulator{counter: 1}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		tag := ParseTagLine(line)
		acc = acc.insert(tag)
		if opts.LowerCase {
			if lower := strings.ToLower(tag.Key); lower != tag.Key {
				acc = acc.insert(Tag{Key: lower, Value: tag.Value})
			}
		}
	}
	return acc.footer
}
