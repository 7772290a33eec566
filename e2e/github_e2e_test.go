package e2e

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/MyCarrier-DevOps/go-versionist/internal/testutil"
	"github.com/MyCarrier-DevOps/go-versionist/pkg/versionist"

	"github.com/stretchr/testify/require"
)

const libHistory = `- version: 1.2.0
  date: 2024-03-05T00:00:00Z
  commits:
    - subject: Faster builds
- version: 1.1.0
  date: 2024-02-05T00:00:00Z
  commits:
    - subject: Smaller images
- version: 1.0.0
  date: 2024-01-05T00:00:00Z
  commits:
    - subject: First
`

// ghMock serves one upstream repository's .versionbot/CHANGELOG.yml
// through the GitHub REST API.
type ghMock struct {
	mux      *http.ServeMux
	requests atomic.Int32
}

func newGHMock(owner, repo, branch, history string) *ghMock {
	m := &ghMock{mux: http.NewServeMux()}
	base := "/api/v3/repos/" + owner + "/" + repo

	m.handle(base, map[string]interface{}{"name": repo, "default_branch": branch})
	m.handle(base+"/branches/"+branch, map[string]interface{}{
		"name": branch,
		"commit": map[string]interface{}{
			"sha":    "c1",
			"commit": map[string]interface{}{"tree": map[string]interface{}{"sha": "root"}},
		},
	})
	m.handle(base+"/git/trees/root", map[string]interface{}{
		"sha":  "root",
		"tree": []map[string]interface{}{{"path": ".versionbot", "type": "tree", "sha": "vb"}},
	})
	m.handle(base+"/git/trees/vb", map[string]interface{}{
		"sha":  "vb",
		"tree": []map[string]interface{}{{"path": "CHANGELOG.yml", "type": "blob", "sha": "blob1"}},
	})
	m.handle(base+"/git/blobs/blob1", map[string]interface{}{
		"sha":      "blob1",
		"encoding": "base64",
		"content":  base64.StdEncoding.EncodeToString([]byte(history)),
	})
	return m
}

func (m *ghMock) handle(path string, body interface{}) {
	m.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		m.requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	})
}

func nestedConfig(baseURL string) string {
	return `subjectParser: angular
editVersion: false
addEntryToChangelog:
  preset: prepend
  fromLine: 0
includeCommitWhen: has-changelog-entry
getIncrementLevelFromCommit: change-type
transformTemplateDataAsync:
  preset: nested-changelogs
  upstream:
    - pattern: lib
      owner: balena
      repo: lib
      baseUrl: ` + baseURL + `
template: |-
  ## {{.Version}}

  {{range .Commits}}- {{capitalize (.Footer.Value "changelog-entry")}}
  {{range .Nested}}  - {{.Version}}
  {{end}}{{end}}
`
}

func TestE2E_GitHub_NestedChangelog(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GH_APP_ID", "")
	t.Setenv("GITHUB_API_URL", "")

	mock := newGHMock("balena", "lib", "main", libHistory)
	server := httptest.NewServer(mock.mux)
	defer server.Close()

	repo := testutil.NewTestRepo(t)
	repo.WriteConfig(nestedConfig(server.URL + "/"))
	repo.WriteFile("CHANGELOG.md", "")
	repo.AddCommit("chore: initial commit")
	annotate(repo, "fix: fix y", "fix y", "patch")
	annotate(repo, "chore: update lib\n\nUpdate lib from 1.0.0 to 1.2.0", "update lib", "minor")

	result, err := versionist.Run(context.Background(), versionist.Options{Path: repo.Path(), SkipEnv: true})
	require.NoError(t, err)
	require.Equal(t, "0.1.0", result.Version)

	// The newest commit pulls in upstream releases, so it moves last.
	require.Equal(t,
		"## 0.1.0\n\n- Fix y\n- Update lib\n  - lib-1.2.0\n  - lib-1.1.0\n",
		repo.ReadFile("CHANGELOG.md"),
	)
	require.Positive(t, mock.requests.Load())
}

func TestE2E_GitHub_UpstreamWithoutHistory(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GH_APP_ID", "")
	t.Setenv("GITHUB_API_URL", "")

	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	repo := testutil.NewTestRepo(t)
	repo.WriteConfig(nestedConfig(server.URL + "/"))
	repo.WriteFile("CHANGELOG.md", "")
	repo.AddCommit("chore: initial commit")
	annotate(repo, "chore: update lib\n\nUpdate lib from 1.0.0 to 1.2.0", "update lib", "minor")

	_, err := versionist.Run(context.Background(), versionist.Options{Path: repo.Path(), SkipEnv: true})
	require.ErrorContains(t, err, "could not find .versionbot/CHANGELOG.yml in lib")
	require.Empty(t, repo.ReadFile("CHANGELOG.md"))
}

func TestE2E_GitHub_UnrelatedCommitsSkipUpstream(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GH_APP_ID", "")
	t.Setenv("GITHUB_API_URL", "")

	mock := newGHMock("balena", "lib", "main", libHistory)
	server := httptest.NewServer(mock.mux)
	defer server.Close()

	repo := testutil.NewTestRepo(t)
	repo.WriteConfig(nestedConfig(server.URL + "/"))
	repo.WriteFile("CHANGELOG.md", "")
	repo.AddCommit("chore: initial commit")
	annotate(repo, "fix: fix y", "fix y", "patch")

	result, err := versionist.Run(context.Background(), versionist.Options{Path: repo.Path(), SkipEnv: true})
	require.NoError(t, err)
	require.Equal(t, "0.0.2", result.Version)
	require.Equal(t, "## 0.0.2\n\n- Fix y\n", repo.ReadFile("CHANGELOG.md"))
	require.Zero(t, mock.requests.Load())
}
