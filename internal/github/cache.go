package github

import "sync"

// apiCache keeps GitHub API responses for the lifetime of one run.
// Upstreams are fetched concurrently, so access is guarded.
type apiCache struct {
	mu sync.RWMutex

	defaultBranches map[string]string // "owner/repo" → branch
	files           map[string][]byte // "owner/repo@ref:path" → content
}

func newCache() *apiCache {
	return &apiCache{
		defaultBranches: make(map[string]string),
		files:           make(map[string][]byte),
	}
}

func (c *apiCache) getDefaultBranch(repo string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	branch, ok := c.defaultBranches[repo]
	return branch, ok
}

func (c *apiCache) putDefaultBranch(repo, branch string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultBranches[repo] = branch
}

func (c *apiCache) getFile(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.files[key]
	return data, ok
}

func (c *apiCache) putFile(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[key] = data
}

func repoKey(owner, repo string) string {
	return owner + "/" + repo
}

func fileKey(owner, repo, ref, path string) string {
	return repoKey(owner, repo) + "@" + ref + ":" + path
}
