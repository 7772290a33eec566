package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	gh "github.com/google/go-github/v68/github"
	"github.com/stretchr/testify/require"
)

// writeJSON encodes v as JSON to the response writer. Panics on error (test only).
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic(err)
	}
}

// newTestFetcher creates a Fetcher backed by a test server.
func newTestFetcher(t *testing.T, mux *http.ServeMux) *Fetcher {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	client, err := gh.NewClient(nil).WithEnterpriseURLs(server.URL+"/", server.URL+"/")
	require.NoError(t, err)
	return NewFetcher(client)
}

const historyYAML = "- version: 1.1.0\n  date: 2024-03-05T10:00:00Z\n  commits: []\n"

// versionbotMux serves balena/lib with .versionbot/CHANGELOG.yml on main.
func versionbotMux(branchHits *int32) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/repos/balena/lib", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"name": "lib", "default_branch": "main"})
	})
	mux.HandleFunc("/api/v3/repos/balena/lib/branches/main", func(w http.ResponseWriter, r *http.Request) {
		if branchHits != nil {
			atomic.AddInt32(branchHits, 1)
		}
		writeJSON(w, map[string]interface{}{
			"name":   "main",
			"commit": map[string]interface{}{"sha": "c1", "commit": map[string]interface{}{"tree": map[string]interface{}{"sha": "root"}}},
		})
	})
	mux.HandleFunc("/api/v3/repos/balena/lib/git/trees/root", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"sha": "root",
			"tree": []map[string]interface{}{
				{"path": "README.md", "type": "blob", "sha": "readme"},
				{"path": ".versionbot", "type": "tree", "sha": "vb"},
			},
		})
	})
	mux.HandleFunc("/api/v3/repos/balena/lib/git/trees/vb", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"sha":  "vb",
			"tree": []map[string]interface{}{{"path": "CHANGELOG.yml", "type": "blob", "sha": "blob1"}},
		})
	})
	mux.HandleFunc("/api/v3/repos/balena/lib/git/blobs/blob1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"sha":      "blob1",
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(historyYAML)),
		})
	})
	return mux
}

func TestFetchFile(t *testing.T) {
	var hits int32
	f := newTestFetcher(t, versionbotMux(&hits))

	data, err := f.FetchFile(context.Background(), "balena", "lib", "main", ".versionbot/CHANGELOG.yml")
	require.NoError(t, err)
	require.Equal(t, historyYAML, string(data))

	// Second read is served from the cache.
	_, err = f.FetchFile(context.Background(), "balena", "lib", "main", ".versionbot/CHANGELOG.yml")
	require.NoError(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestFetchFile_MissingPath(t *testing.T) {
	f := newTestFetcher(t, versionbotMux(nil))

	_, err := f.FetchFile(context.Background(), "balena", "lib", "main", ".versionbot/HISTORY.yml")
	require.ErrorIs(t, err, ErrFileNotFound)

	_, err = f.FetchFile(context.Background(), "balena", "lib", "main", "docs/CHANGELOG.yml")
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestFetchFile_MissingBranch(t *testing.T) {
	mux := versionbotMux(nil)
	mux.HandleFunc("/api/v3/repos/balena/lib/branches/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]string{"message": "Branch not found"})
	})
	f := newTestFetcher(t, mux)

	_, err := f.FetchFile(context.Background(), "balena", "lib", "gone", ".versionbot/CHANGELOG.yml")
	require.ErrorIs(t, err, ErrFileNotFound)
}

func TestFetchFile_ServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/repos/balena/lib/branches/main", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	})
	f := newTestFetcher(t, mux)

	_, err := f.FetchFile(context.Background(), "balena", "lib", "main", ".versionbot/CHANGELOG.yml")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrFileNotFound)
	require.Contains(t, err.Error(), "getting branch main of balena/lib")
}

func TestDefaultBranch(t *testing.T) {
	f := newTestFetcher(t, versionbotMux(nil))

	branch, err := f.DefaultBranch(context.Background(), "balena", "lib")
	require.NoError(t, err)
	require.Equal(t, "main", branch)

	cached, ok := f.cache.getDefaultBranch("balena/lib")
	require.True(t, ok)
	require.Equal(t, "main", cached)
}

func TestDecodeBlob_Plain(t *testing.T) {
	data, err := decodeBlob(&gh.Blob{Content: gh.Ptr("raw"), Encoding: gh.Ptr("utf-8")})
	require.NoError(t, err)
	require.Equal(t, "raw", string(data))

	_, err = decodeBlob(&gh.Blob{Content: gh.Ptr("!!!"), Encoding: gh.Ptr("base64")})
	require.Error(t, err)
}
