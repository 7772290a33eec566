package presets

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/MyCarrier-DevOps/go-versionist/internal/changelog"
	"github.com/MyCarrier-DevOps/go-versionist/internal/config"
	"github.com/MyCarrier-DevOps/go-versionist/internal/github"
	"github.com/MyCarrier-DevOps/go-versionist/internal/gitlab"
	"github.com/MyCarrier-DevOps/go-versionist/internal/gitlog"
	"github.com/MyCarrier-DevOps/go-versionist/internal/logger"
	"github.com/MyCarrier-DevOps/go-versionist/internal/semver"
)

// HistoryPath is where upstream projects keep their YAML history.
const HistoryPath = ".versionbot/CHANGELOG.yml"

// Providers understood by DefaultSources.
const (
	ProviderGitHub = "github"
	ProviderGitLab = "gitlab"
)

const nestedFetchLimit = 8

// Upstream is a dependency whose own history gets embedded when a commit
// updates it.
type Upstream struct {
	// Pattern is matched after "Update " in commit bodies. For submodule
	// updates it is also the submodule path.
	Pattern  string
	Owner    string
	Repo     string
	Ref      string
	Provider string
	BaseURL  string

	update  *regexp.Regexp
	between *regexp.Regexp
}

func parseUpstreams(opts config.Options) ([]Upstream, error) {
	var upstreams []Upstream
	for _, o := range opts.Objects("upstream") {
		up := Upstream{
			Pattern:  o.String("pattern", ""),
			Owner:    o.String("owner", ""),
			Repo:     o.String("repo", ""),
			Ref:      o.String("ref", ""),
			Provider: o.String("provider", ProviderGitHub),
			BaseURL:  o.String("baseUrl", ""),
		}
		if err := up.compile(); err != nil {
			return nil, err
		}
		upstreams = append(upstreams, up)
	}
	return upstreams, nil
}

func (u *Upstream) compile() error {
	if u.Pattern == "" {
		return fmt.Errorf("upstream %s/%s has no pattern", u.Owner, u.Repo)
	}
	if u.Owner == "" || u.Repo == "" {
		return fmt.Errorf("upstream %s needs an owner and a repo", u.Pattern)
	}
	var err error
	if u.between, err = regexp.Compile(`[Uu]pdate ` + u.Pattern + ` from (\S+) to (\S+)`); err != nil {
		return fmt.Errorf("compiling upstream pattern %s: %w", u.Pattern, err)
	}
	if u.update, err = regexp.Compile(`[Uu]pdate ` + u.Pattern); err != nil {
		return fmt.Errorf("compiling upstream pattern %s: %w", u.Pattern, err)
	}
	return nil
}

func (u Upstream) sourceKey() string {
	return u.Provider + "|" + u.BaseURL + "|" + u.Owner
}

// DefaultSources serves github upstreams through the GitHub API and gitlab
// upstreams through the GitLab API, reading credentials from the
// environment.
func DefaultSources(ctx context.Context, up Upstream) (Source, error) {
	switch up.Provider {
	case "", ProviderGitHub:
		client, err := github.NewClient(ctx, github.ClientConfig{BaseURL: up.BaseURL, Owner: up.Owner})
		if err != nil {
			return nil, err
		}
		return github.NewFetcher(client), nil
	case ProviderGitLab:
		client, err := gitlab.NewClient(gitlab.ClientConfig{BaseURL: up.BaseURL})
		if err != nil {
			return nil, err
		}
		return gitlab.NewFetcher(client), nil
	default:
		return nil, fmt.Errorf("unknown upstream provider %q", up.Provider)
	}
}

// Passthrough returns the data unchanged.
func Passthrough(_ context.Context, data changelog.TemplateData) (changelog.TemplateData, error) {
	return data, nil
}

// NestedChangelogs attaches the upstream releases a commit pulls in to
// that commit. Commits carrying nested releases are moved last.
func NestedChangelogs(deps Deps, upstreams []Upstream) changelog.AsyncTransform {
	return func(ctx context.Context, data changelog.TemplateData) (changelog.TemplateData, error) {
		if len(upstreams) == 0 || len(data.Commits) == 0 {
			return data, nil
		}

		n := &nester{deps: deps, sources: make(map[string]Source)}
		commits := make([]gitlog.Commit, len(data.Commits))
		copy(commits, data.Commits)

		nested := make([][][]gitlog.Release, len(commits))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(nestedFetchLimit)
		for i := range commits {
			nested[i] = make([][]gitlog.Release, len(upstreams))
			for j, up := range upstreams {
				g.Go(func() error {
					releases, err := n.attach(gctx, commits[i], up)
					nested[i][j] = releases
					return err
				})
			}
		}
		if err := g.Wait(); err != nil {
			return data, err
		}

		for i := range commits {
			var all []gitlog.Release
			for _, releases := range nested[i] {
				all = append(all, releases...)
			}
			commits[i].Nested = all
		}
		sort.SliceStable(commits, func(a, b int) bool {
			return len(commits[a].Nested) == 0 && len(commits[b].Nested) > 0
		})

		data.Commits = commits
		return data, nil
	}
}

// nester holds the sources shared by one transform run.
type nester struct {
	deps    Deps
	mu      sync.Mutex
	sources map[string]Source
}

func (n *nester) source(ctx context.Context, up Upstream) (Source, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if s, ok := n.sources[up.sourceKey()]; ok {
		return s, nil
	}
	s, err := n.deps.sources()(ctx, up)
	if err != nil {
		return nil, err
	}
	n.sources[up.sourceKey()] = s
	return s, nil
}

func (n *nester) attach(ctx context.Context, c gitlog.Commit, up Upstream) ([]gitlog.Release, error) {
	// 1. Explicit "Update x from a to b" in the body.
	if m := up.between.FindStringSubmatch(c.Body); m != nil {
		return n.releasesBetween(ctx, up, m[1], m[2])
	}

	// 2. "Update x" with the range read from the submodule pointer.
	if !up.update.MatchString(c.Body) || n.deps.Repo == nil {
		return nil, nil
	}
	before, after, err := n.deps.Repo.SubmoduleCommits(up.Pattern)
	if err != nil {
		logger.Debug("no submodule update found", "path", up.Pattern, "err", err)
		return nil, nil
	}
	sub, err := n.deps.Repo.OpenSubmodule(up.Pattern)
	if err != nil {
		return nil, fmt.Errorf("opening submodule %s: %w", up.Pattern, err)
	}
	start, err := sub.Describe(before)
	if err != nil {
		return nil, fmt.Errorf("describing submodule %s: %w", up.Pattern, err)
	}
	end, err := sub.Describe(after)
	if err != nil {
		return nil, fmt.Errorf("describing submodule %s: %w", up.Pattern, err)
	}
	return n.releasesBetween(ctx, up, start, end)
}

func (n *nester) releasesBetween(ctx context.Context, up Upstream, start, end string) ([]gitlog.Release, error) {
	source, err := n.source(ctx, up)
	if err != nil {
		return nil, err
	}
	logger.Debug("fetching nested changelog", "repo", up.Repo, "from", start, "to", end)
	history, err := FetchHistory(ctx, source, up)
	if err != nil {
		return nil, err
	}
	return between(history, up.Repo, start, end), nil
}

// FetchHistory reads the history file of an upstream at its ref, or at the
// default branch when the upstream names none.
func FetchHistory(ctx context.Context, source Source, up Upstream) ([]gitlog.Release, error) {
	ref := up.Ref
	if ref == "" {
		var err error
		if ref, err = source.DefaultBranch(ctx, up.Owner, up.Repo); err != nil {
			return nil, fmt.Errorf("could not find %s in %s: %w", HistoryPath, up.Repo, err)
		}
	}

	data, err := source.FetchFile(ctx, up.Owner, up.Repo, ref, HistoryPath)
	if err != nil {
		return nil, fmt.Errorf("could not find %s in %s under branch %s: %w", HistoryPath, up.Repo, ref, err)
	}
	history, err := changelog.ParseHistory(data)
	if err != nil {
		return nil, fmt.Errorf("could not find %s in %s under branch %s: %w", HistoryPath, up.Repo, ref, err)
	}
	return history, nil
}

// between keeps releases with start < version <= end and prefixes their
// versions with the repository name.
func between(history []gitlog.Release, repo, start, end string) []gitlog.Release {
	var out []gitlog.Release
	for _, r := range history {
		lower, err := semver.Compare(start, r.Version)
		if err != nil || lower >= 0 {
			continue
		}
		upper, err := semver.Compare(r.Version, end)
		if err != nil || upper > 0 {
			continue
		}
		r.Version = repo + "-" + r.Version
		out = append(out, r)
	}
	return out
}
