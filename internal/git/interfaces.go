package git

// Repository provides the git operations versionist relies on.
// This is the key abstraction point for testing.
type Repository interface {
	// Path returns the path to the .git directory.
	Path() string

	// WorkingDirectory returns the path to the working directory.
	WorkingDirectory() string

	// HeadSha returns the commit HEAD points to.
	HeadSha() (string, error)

	// ResolveReference resolves a tag, branch or SHA to a commit SHA.
	// Unknown names return ErrReferenceNotFound.
	ResolveReference(name string) (string, error)

	// Tags returns all tags, peeled to their commits.
	Tags() ([]Tag, error)

	// CommitLog returns commits reachable from 'to' but not from 'from',
	// newest first. An empty from walks the whole history. Merge commits
	// are skipped unless includeMerges is set.
	CommitLog(from, to string, includeMerges bool) ([]Commit, error)

	// FindCommitByMessage returns the newest commit reachable from HEAD
	// whose trimmed message equals message. ok is false when none does.
	FindCommitByMessage(message string) (commit Commit, ok bool, err error)

	// CreateTag creates a lightweight tag at sha.
	CreateTag(name, sha string) error

	// CommitAuthor returns the author name of a commit.
	CommitAuthor(sha string) (string, error)

	// SubmoduleCommits returns the gitlink SHAs recorded for path in
	// HEAD's first parent and in HEAD.
	SubmoduleCommits(path string) (before, after string, err error)

	// OpenSubmodule opens the checkout of the submodule at path.
	OpenSubmodule(path string) (Repository, error)

	// Describe returns the nearest tag reachable from sha, like
	// `git describe --abbrev=0`. ErrNoTag when there is none.
	Describe(sha string) (string, error)
}
