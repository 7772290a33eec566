// Package git provides the repository access versionist needs: commit
// ranges, reference lookup, tagging and submodule pointers.
package git

import (
	"errors"
	"strings"
	"time"
)

const tagRefPrefix = "refs/tags/"

var (
	// ErrReferenceNotFound is returned when a revision does not resolve.
	ErrReferenceNotFound = errors.New("reference not found")
	// ErrNoTag is returned by Describe when no tag is reachable.
	ErrNoTag = errors.New("no tag reachable")
)

// Commit represents a git commit.
type Commit struct {
	Sha     string
	Parents []string // parent SHAs; len > 1 means merge commit
	When    time.Time
	Author  string
	Message string
}

// IsMerge returns true if the commit has more than one parent.
func (c Commit) IsMerge() bool {
	return len(c.Parents) > 1
}

// ShortSha returns the first 7 characters of the SHA.
func (c Commit) ShortSha() string {
	if len(c.Sha) >= 7 {
		return c.Sha[:7]
	}
	return c.Sha
}

// IsEmpty returns true if the commit has no SHA (zero value).
func (c Commit) IsEmpty() bool {
	return c.Sha == ""
}

// Tag is a tag name and the commit it ultimately points to.
type Tag struct {
	Name      string
	TargetSha string
}

// tagName strips the refs/tags/ prefix.
func tagName(ref string) string {
	return strings.TrimPrefix(ref, tagRefPrefix)
}
