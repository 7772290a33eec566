package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v68/github"
)

// ErrFileNotFound is returned when a path does not exist on a branch.
var ErrFileNotFound = errors.New("file not found")

// Fetcher reads files from GitHub repositories.
type Fetcher struct {
	client *gh.Client
	cache  *apiCache
}

// NewFetcher wraps an API client.
func NewFetcher(client *gh.Client) *Fetcher {
	return &Fetcher{client: client, cache: newCache()}
}

// DefaultBranch returns the default branch of owner/repo.
func (f *Fetcher) DefaultBranch(ctx context.Context, owner, repo string) (string, error) {
	key := repoKey(owner, repo)
	if branch, ok := f.cache.getDefaultBranch(key); ok {
		return branch, nil
	}

	r, _, err := f.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return "", fmt.Errorf("getting repository %s: %w", key, err)
	}
	branch := r.GetDefaultBranch()
	f.cache.putDefaultBranch(key, branch)
	return branch, nil
}

// FetchFile reads path at the head of branch ref. It walks the branch's
// tree one directory at a time and downloads the final blob.
func (f *Fetcher) FetchFile(ctx context.Context, owner, repo, ref, path string) ([]byte, error) {
	key := fileKey(owner, repo, ref, path)
	if data, ok := f.cache.getFile(key); ok {
		return data, nil
	}

	// 1. Branch head tree.
	// GetBranch reports a missing branch as a plain status error, not an
	// ErrorResponse, so the response code is checked too.
	branch, resp, err := f.client.Repositories.GetBranch(ctx, owner, repo, ref, 1)
	if err != nil {
		if IsNotFoundError(err) || (resp != nil && resp.StatusCode == http.StatusNotFound) {
			return nil, fmt.Errorf("%w: branch %s of %s", ErrFileNotFound, ref, repoKey(owner, repo))
		}
		return nil, fmt.Errorf("getting branch %s of %s: %w", ref, repoKey(owner, repo), err)
	}
	sha := branch.GetCommit().GetCommit().GetTree().GetSHA()

	// 2. Walk directories down to the blob.
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, part := range parts {
		want := "tree"
		if i == len(parts)-1 {
			want = "blob"
		}
		tree, _, err := f.client.Git.GetTree(ctx, owner, repo, sha, false)
		if err != nil {
			return nil, fmt.Errorf("getting tree %s of %s: %w", sha, repoKey(owner, repo), err)
		}
		entry := findEntry(tree, part, want)
		if entry == nil {
			return nil, fmt.Errorf("%w: %s in %s@%s", ErrFileNotFound, path, repoKey(owner, repo), ref)
		}
		sha = entry.GetSHA()
	}

	// 3. Blob content.
	blob, _, err := f.client.Git.GetBlob(ctx, owner, repo, sha)
	if err != nil {
		return nil, fmt.Errorf("getting blob %s of %s: %w", sha, repoKey(owner, repo), err)
	}
	data, err := decodeBlob(blob)
	if err != nil {
		return nil, err
	}

	f.cache.putFile(key, data)
	return data, nil
}

func findEntry(tree *gh.Tree, name, kind string) *gh.TreeEntry {
	for _, e := range tree.Entries {
		if e.GetPath() == name && e.GetType() == kind {
			return e
		}
	}
	return nil
}

func decodeBlob(blob *gh.Blob) ([]byte, error) {
	content := blob.GetContent()
	if blob.GetEncoding() != "base64" {
		return []byte(content), nil
	}
	data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("decoding blob %s: %w", blob.GetSHA(), err)
	}
	return data, nil
}
