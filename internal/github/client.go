// Package github fetches files such as the .versionbot history of upstream
// repositories through the GitHub API.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/bradleyfalzon/ghinstallation/v2"
	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

// ClientConfig holds the configuration for creating a GitHub API client.
type ClientConfig struct {
	// Token is a GitHub token. Falls back to GITHUB_TOKEN.
	Token string

	// AppID is the GitHub App ID for app authentication.
	// Falls back to GH_APP_ID.
	AppID int64

	// AppKeyPath is the path to a GitHub App private key PEM file.
	// Falls back to GH_APP_PRIVATE_KEY.
	AppKeyPath string

	// BaseURL is the API URL of a GitHub Enterprise server.
	// Falls back to GITHUB_API_URL.
	BaseURL string

	// Owner selects the app installation to authenticate as.
	Owner string
}

// NewClient creates a GitHub API client. Auth resolution order: token,
// GITHUB_TOKEN, app credentials, then anonymous access, which is enough for
// public upstream repositories.
func NewClient(ctx context.Context, cfg ClientConfig) (*gh.Client, error) {
	baseURL := resolveString(cfg.BaseURL, "GITHUB_API_URL")

	if token := resolveString(cfg.Token, "GITHUB_TOKEN"); token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		return withBaseURL(gh.NewClient(oauth2.NewClient(ctx, ts)), baseURL)
	}

	appID := cfg.AppID
	if appID == 0 {
		if s := os.Getenv("GH_APP_ID"); s != "" {
			if v, err := strconv.ParseInt(s, 10, 64); err == nil {
				appID = v
			}
		}
	}
	appKey := resolveString(cfg.AppKeyPath, "GH_APP_PRIVATE_KEY")
	if appID != 0 && appKey != "" {
		return newAppClient(ctx, appID, appKey, cfg.Owner, baseURL)
	}

	return withBaseURL(gh.NewClient(nil), baseURL)
}

func withBaseURL(client *gh.Client, baseURL string) (*gh.Client, error) {
	if baseURL == "" {
		return client, nil
	}
	client, err := client.WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, fmt.Errorf("setting enterprise URL: %w", err)
	}
	return client, nil
}

func newAppClient(ctx context.Context, appID int64, keyPath, owner, baseURL string) (*gh.Client, error) {
	if owner == "" {
		return nil, errors.New("GitHub App authentication needs the upstream owner")
	}

	// 1. App-level transport to discover the installation.
	appTransport, err := ghinstallation.NewAppsTransportKeyFromFile(http.DefaultTransport, appID, keyPath)
	if err != nil {
		return nil, fmt.Errorf("creating GitHub App transport: %w", err)
	}
	if baseURL != "" {
		appTransport.BaseURL = baseURL
	}
	appClient, err := withBaseURL(gh.NewClient(&http.Client{Transport: appTransport}), baseURL)
	if err != nil {
		return nil, err
	}

	installationID, err := findInstallation(ctx, appClient, owner)
	if err != nil {
		return nil, err
	}

	// 2. Installation-level transport.
	installTransport, err := ghinstallation.NewKeyFromFile(http.DefaultTransport, appID, installationID, keyPath)
	if err != nil {
		return nil, fmt.Errorf("creating installation transport: %w", err)
	}
	if baseURL != "" {
		installTransport.BaseURL = baseURL
	}
	return withBaseURL(gh.NewClient(&http.Client{Transport: installTransport}), baseURL)
}

// findInstallation finds the GitHub App installation for the given owner.
func findInstallation(ctx context.Context, client *gh.Client, owner string) (int64, error) {
	opts := &gh.ListOptions{PerPage: 100}

	for {
		installations, resp, err := client.Apps.ListInstallations(ctx, opts)
		if err != nil {
			return 0, fmt.Errorf("listing GitHub App installations: %w", err)
		}

		for _, inst := range installations {
			if inst.GetAccount().GetLogin() == owner {
				return inst.GetID(), nil
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return 0, fmt.Errorf("no GitHub App installation found for owner %q", owner)
}

// IsNotFoundError reports whether err is an HTTP 404 from the GitHub API.
func IsNotFoundError(err error) bool {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) {
		return ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}

// resolveString returns value if non-empty, otherwise the env var value.
func resolveString(value, envKey string) string {
	if value != "" {
		return value
	}
	return os.Getenv(envKey)
}
