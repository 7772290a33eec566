package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	ghprovider "github.com/MyCarrier-DevOps/go-versionist/internal/github"
	glprovider "github.com/MyCarrier-DevOps/go-versionist/internal/gitlab"
	"github.com/MyCarrier-DevOps/go-versionist/internal/output"
	"github.com/MyCarrier-DevOps/go-versionist/internal/presets"
	"github.com/MyCarrier-DevOps/go-versionist/internal/semver"
)

var (
	flagProvider   string
	flagToken      string
	flagAppID      int64
	flagAppKeyPath string
	flagAPIURL     string
	flagRef        string
)

var remoteCmd = &cobra.Command{
	Use:   "remote owner/repo",
	Short: "Print the latest version recorded in an upstream repository",
	Long: `Read the .versionbot/CHANGELOG.yml history file of a GitHub or GitLab
repository through its API and print the latest released version. This is
the file nested changelogs are built from, so it is a quick way to check an
upstream before listing it in the configuration.

Authentication (checked in order):
  1. --token flag, or GITHUB_TOKEN / GITLAB_TOKEN
  2. --github-app-id + --github-app-key-path, or GH_APP_ID + GH_APP_PRIVATE_KEY
  3. anonymous access, enough for public repositories

Examples:
  versionist remote balena-io/etcher
  versionist remote mygroup/myproject --provider gitlab --ref develop`,
	Args: cobra.ExactArgs(1),
	RunE: remoteRunE,
}

func init() {
	remoteCmd.Flags().StringVar(&flagProvider, "provider", presets.ProviderGitHub, "repository host: github or gitlab")
	remoteCmd.Flags().StringVar(&flagToken, "token", "", "API token (or set GITHUB_TOKEN / GITLAB_TOKEN)")
	remoteCmd.Flags().Int64Var(&flagAppID, "github-app-id", 0, "GitHub App ID (or set GH_APP_ID env var)")
	remoteCmd.Flags().StringVar(&flagAppKeyPath, "github-app-key-path", "", "path to GitHub App private key PEM file (or set GH_APP_PRIVATE_KEY env var)")
	remoteCmd.Flags().StringVar(&flagAPIURL, "api-url", "", "API base URL for GitHub Enterprise or self-hosted GitLab")
	remoteCmd.Flags().StringVar(&flagRef, "ref", "", "branch to read (default: repo default branch)")

	rootCmd.AddCommand(remoteCmd)
}

func remoteRunE(cmd *cobra.Command, args []string) error {
	// 1. Parse owner/repo.
	owner, repo, err := parseOwnerRepo(args[0])
	if err != nil {
		return err
	}

	// 2. Create the API source.
	source, err := remoteSource(cmd.Context(), owner)
	if err != nil {
		return err
	}

	// 3. Read the history file.
	history, err := presets.FetchHistory(cmd.Context(), source, presets.Upstream{
		Owner:    owner,
		Repo:     repo,
		Ref:      flagRef,
		Provider: flagProvider,
	})
	if err != nil {
		return err
	}

	// 4. Pick the latest release.
	versions := make([]string, 0, len(history))
	for _, r := range history {
		versions = append(versions, r.Version)
	}
	if len(versions) == 0 {
		return fmt.Errorf("no releases recorded in %s/%s", owner, repo)
	}
	latest, err := semver.Greatest(versions)
	if err != nil {
		return fmt.Errorf("reading releases of %s/%s: %w", owner, repo, err)
	}

	// 5. Write output.
	w := cmd.OutOrStdout()
	if done, err := output.WriteMachine(w, flagOutput, output.Result{Version: latest}); done || err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, latest)
	return err
}

// remoteSource creates the API client for --provider.
func remoteSource(ctx context.Context, owner string) (presets.Source, error) {
	switch flagProvider {
	case presets.ProviderGitHub:
		client, err := ghprovider.NewClient(ctx, ghprovider.ClientConfig{
			Token:      flagToken,
			AppID:      flagAppID,
			AppKeyPath: flagAppKeyPath,
			BaseURL:    flagAPIURL,
			Owner:      owner,
		})
		if err != nil {
			return nil, fmt.Errorf("creating GitHub client: %w", err)
		}
		return ghprovider.NewFetcher(client), nil
	case presets.ProviderGitLab:
		client, err := glprovider.NewClient(glprovider.ClientConfig{Token: flagToken, BaseURL: flagAPIURL})
		if err != nil {
			return nil, err
		}
		return glprovider.NewFetcher(client), nil
	default:
		return nil, fmt.Errorf("unknown provider %q, expected github or gitlab", flagProvider)
	}
}

func parseOwnerRepo(s string) (string, string, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository format %q, expected owner/repo", s)
	}
	return parts[0], parts[1], nil
}
