package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// Compile-time check that GoGitRepository implements Repository.
var _ Repository = (*GoGitRepository)(nil)

// GoGitRepository implements Repository using go-git.
type GoGitRepository struct {
	repo    *gogit.Repository
	path    string
	workDir string
}

// Open opens the git repository containing path.
func Open(path string) (*GoGitRepository, error) {
	return open(path, true)
}

func open(path string, detect bool) (*GoGitRepository, error) {
	r, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{
		DetectDotGit: detect,
	})
	if err != nil {
		return nil, fmt.Errorf("opening git repository at %s: %w", path, err)
	}

	wt, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	root := wt.Filesystem.Root()

	return &GoGitRepository{
		repo:    r,
		path:    filepath.Join(root, ".git"),
		workDir: root,
	}, nil
}

func (r *GoGitRepository) Path() string {
	return r.path
}

func (r *GoGitRepository) WorkingDirectory() string {
	return r.workDir
}

func (r *GoGitRepository) HeadSha() (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}

func (r *GoGitRepository) ResolveReference(name string) (string, error) {
	hash, err := r.resolve(name)
	if err != nil {
		return "", err
	}
	return hash.String(), nil
}

func (r *GoGitRepository) resolve(name string) (plumbing.Hash, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(name))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: %s", ErrReferenceNotFound, name)
	}
	return *hash, nil
}

func (r *GoGitRepository) Tags() ([]Tag, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	var tags []Tag
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		sha, err := r.peel(ref)
		if err != nil {
			return nil // skip tags that don't point at commits
		}
		tags = append(tags, Tag{Name: tagName(string(ref.Name())), TargetSha: sha})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	return tags, nil
}

// peel resolves a tag reference to its target commit SHA.
func (r *GoGitRepository) peel(ref *plumbing.Reference) (string, error) {
	hash := ref.Hash()

	// Try as an annotated tag first.
	if tagObj, err := r.repo.TagObject(hash); err == nil {
		commit, err := tagObj.Commit()
		if err != nil {
			return "", fmt.Errorf("peeling annotated tag %s: %w", ref.Name().Short(), err)
		}
		return commit.Hash.String(), nil
	}

	if _, err := r.repo.CommitObject(hash); err != nil {
		return "", fmt.Errorf("tag %s does not point to a commit: %w", ref.Name().Short(), err)
	}
	return hash.String(), nil
}

func (r *GoGitRepository) CommitLog(from, to string, includeMerges bool) ([]Commit, error) {
	toHash, err := r.resolve(to)
	if err != nil {
		return nil, err
	}

	// 1. Everything reachable from 'from' is excluded.
	excluded := make(map[plumbing.Hash]struct{})
	if from != "" {
		fromHash, err := r.resolve(from)
		if err != nil {
			return nil, err
		}
		iter, err := r.repo.Log(&gogit.LogOptions{From: fromHash})
		if err != nil {
			return nil, fmt.Errorf("getting commit log: %w", err)
		}
		err = iter.ForEach(func(c *object.Commit) error {
			excluded[c.Hash] = struct{}{}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("iterating commits: %w", err)
		}
	}

	// 2. Walk from 'to', newest first.
	iter, err := r.repo.Log(&gogit.LogOptions{
		From:  toHash,
		Order: gogit.LogOrderCommitterTime,
	})
	if err != nil {
		return nil, fmt.Errorf("getting commit log: %w", err)
	}

	var commits []Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if _, ok := excluded[c.Hash]; ok {
			return nil
		}
		if !includeMerges && c.NumParents() > 1 {
			return nil
		}
		commits = append(commits, convertCommit(c))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating commits: %w", err)
	}

	return commits, nil
}

func (r *GoGitRepository) FindCommitByMessage(message string) (Commit, bool, error) {
	head, err := r.repo.Head()
	if err != nil {
		return Commit{}, false, fmt.Errorf("getting HEAD: %w", err)
	}

	iter, err := r.repo.Log(&gogit.LogOptions{
		From:  head.Hash(),
		Order: gogit.LogOrderCommitterTime,
	})
	if err != nil {
		return Commit{}, false, fmt.Errorf("getting commit log: %w", err)
	}

	var found *object.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if strings.TrimSpace(c.Message) == message {
			found = c
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return Commit{}, false, fmt.Errorf("iterating commits: %w", err)
	}
	if found == nil {
		return Commit{}, false, nil
	}
	return convertCommit(found), true, nil
}

func (r *GoGitRepository) CreateTag(name, sha string) error {
	if _, err := r.repo.CreateTag(name, plumbing.NewHash(sha), nil); err != nil {
		return fmt.Errorf("creating tag %s: %w", name, err)
	}
	return nil
}

func (r *GoGitRepository) CommitAuthor(sha string) (string, error) {
	c, err := r.repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return "", fmt.Errorf("loading commit %s: %w", sha, err)
	}
	return c.Author.Name, nil
}

func (r *GoGitRepository) SubmoduleCommits(path string) (string, string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", "", fmt.Errorf("getting HEAD: %w", err)
	}
	after, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return "", "", fmt.Errorf("loading HEAD commit: %w", err)
	}
	if after.NumParents() == 0 {
		return "", "", fmt.Errorf("HEAD has no parent to compare submodule %s against", path)
	}
	before, err := after.Parent(0)
	if err != nil {
		return "", "", fmt.Errorf("loading HEAD^1: %w", err)
	}

	beforeSha, err := gitlink(before, path)
	if err != nil {
		return "", "", err
	}
	afterSha, err := gitlink(after, path)
	if err != nil {
		return "", "", err
	}
	return beforeSha, afterSha, nil
}

// gitlink returns the submodule commit recorded at path in c's tree.
func gitlink(c *object.Commit, path string) (string, error) {
	tree, err := c.Tree()
	if err != nil {
		return "", fmt.Errorf("loading tree of %s: %w", c.Hash, err)
	}
	entry, err := tree.FindEntry(path)
	if err != nil {
		return "", fmt.Errorf("finding %s in %s: %w", path, c.Hash, err)
	}
	if entry.Mode != filemode.Submodule {
		return "", fmt.Errorf("%s is not a submodule in %s", path, c.Hash)
	}
	return entry.Hash.String(), nil
}

func (r *GoGitRepository) OpenSubmodule(path string) (Repository, error) {
	return open(filepath.Join(r.workDir, path), false)
}

func (r *GoGitRepository) Describe(sha string) (string, error) {
	start, err := r.resolve(sha)
	if err != nil {
		return "", err
	}

	tags, err := r.Tags()
	if err != nil {
		return "", err
	}
	byCommit := make(map[string][]string, len(tags))
	for _, t := range tags {
		byCommit[t.TargetSha] = append(byCommit[t.TargetSha], t.Name)
	}

	iter, err := r.repo.Log(&gogit.LogOptions{
		From:  start,
		Order: gogit.LogOrderCommitterTime,
	})
	if err != nil {
		return "", fmt.Errorf("getting commit log: %w", err)
	}

	var name string
	err = iter.ForEach(func(c *object.Commit) error {
		if names, ok := byCommit[c.Hash.String()]; ok {
			sort.Strings(names)
			name = names[len(names)-1]
			return storer.ErrStop
		}
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return "", fmt.Errorf("iterating commits: %w", err)
	}
	if name == "" {
		return "", fmt.Errorf("%w from %s", ErrNoTag, sha)
	}
	return name, nil
}

// convertCommit converts a go-git commit to our Commit type.
func convertCommit(c *object.Commit) Commit {
	parents := make([]string, 0, c.NumParents())
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}

	return Commit{
		Sha:     c.Hash.String(),
		Parents: parents,
		When:    c.Committer.When,
		Author:  c.Author.Name,
		Message: c.Message,
	}
}
