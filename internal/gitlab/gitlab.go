// Package gitlab fetches files from upstream GitLab projects.
package gitlab

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"

	gl "gitlab.com/gitlab-org/api/client-go"
)

const defaultBaseURL = "https://gitlab.com/api/v4"

// ErrFileNotFound is returned when a path does not exist at a ref.
var ErrFileNotFound = errors.New("file not found")

// ClientConfig holds the configuration for creating a GitLab API client.
type ClientConfig struct {
	// Token falls back to GITLAB_TOKEN. Public projects need none.
	Token string
	// BaseURL falls back to GITLAB_API_URL, then gitlab.com.
	BaseURL string
}

// NewClient creates a GitLab API client.
func NewClient(cfg ClientConfig) (*gl.Client, error) {
	token := cfg.Token
	if token == "" {
		token = os.Getenv("GITLAB_TOKEN")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("GITLAB_API_URL")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	client, err := gl.NewClient(token, gl.WithBaseURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("creating GitLab client: %w", err)
	}
	return client, nil
}

// Fetcher reads files from GitLab projects. Results are kept for the
// lifetime of the Fetcher.
type Fetcher struct {
	client *gl.Client

	mu       sync.RWMutex
	branches map[string]string
	files    map[string][]byte
}

// NewFetcher wraps an API client.
func NewFetcher(client *gl.Client) *Fetcher {
	return &Fetcher{
		client:   client,
		branches: make(map[string]string),
		files:    make(map[string][]byte),
	}
}

func projectID(owner, repo string) string {
	return owner + "/" + repo
}

// DefaultBranch returns the default branch of the project owner/repo.
func (f *Fetcher) DefaultBranch(ctx context.Context, owner, repo string) (string, error) {
	pid := projectID(owner, repo)

	f.mu.RLock()
	branch, ok := f.branches[pid]
	f.mu.RUnlock()
	if ok {
		return branch, nil
	}

	project, _, err := f.client.Projects.GetProject(pid, nil, gl.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("getting project %s: %w", pid, err)
	}

	f.mu.Lock()
	f.branches[pid] = project.DefaultBranch
	f.mu.Unlock()
	return project.DefaultBranch, nil
}

// FetchFile reads path at ref.
func (f *Fetcher) FetchFile(ctx context.Context, owner, repo, ref, path string) ([]byte, error) {
	pid := projectID(owner, repo)
	key := pid + "@" + ref + ":" + path

	f.mu.RLock()
	data, ok := f.files[key]
	f.mu.RUnlock()
	if ok {
		return data, nil
	}

	file, resp, err := f.client.RepositoryFiles.GetFile(pid, path, &gl.GetFileOptions{Ref: gl.Ptr(ref)}, gl.WithContext(ctx))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s in %s@%s", ErrFileNotFound, path, pid, ref)
		}
		return nil, fmt.Errorf("getting %s from %s@%s: %w", path, pid, ref, err)
	}

	data = []byte(file.Content)
	if file.Encoding == "base64" {
		if data, err = base64.StdEncoding.DecodeString(file.Content); err != nil {
			return nil, fmt.Errorf("decoding %s from %s: %w", path, pid, err)
		}
	}

	f.mu.Lock()
	f.files[key] = data
	f.mu.Unlock()
	return data, nil
}
