package changelog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MyCarrier-DevOps/go-versionist/internal/gitlog"
	"github.com/MyCarrier-DevOps/go-versionist/internal/semver"
)

// ErrNoCommits is returned when Generate has nothing to work with.
var ErrNoCommits = errors.New("no commits to generate the changelog from")

// Predicate decides whether a commit belongs in the changelog.
type Predicate func(commit gitlog.Commit) bool

// Transform rewrites template data before rendering.
type Transform func(data TemplateData) (TemplateData, error)

// AsyncTransform rewrites template data and may perform I/O.
type AsyncTransform func(ctx context.Context, data TemplateData) (TemplateData, error)

// Options configures Generate. Template and Version are required.
type Options struct {
	Template          string
	Version           string
	Date              time.Time
	IncludeCommitWhen Predicate
	Transform         Transform
	TransformAsync    AsyncTransform
}

// Generate filters commits, runs the transforms in order and renders the
// entry. It returns the rendered text and the data it was rendered from.
func Generate(ctx context.Context, commits []gitlog.Commit, opts Options) (string, TemplateData, error) {
	if len(commits) == 0 {
		return "", TemplateData{}, ErrNoCommits
	}
	if opts.Template == "" {
		return "", TemplateData{}, errors.New("missing the template option")
	}
	if opts.Version == "" {
		return "", TemplateData{}, errors.New("missing the version option")
	}
	if err := semver.CheckValid(opts.Version); err != nil {
		return "", TemplateData{}, err
	}

	date := opts.Date
	if date.IsZero() {
		date = time.Now()
	}

	data := TemplateData{
		Commits: filter(commits, opts.IncludeCommitWhen),
		Version: opts.Version,
		Date:    date,
	}

	var err error
	if opts.Transform != nil {
		if data, err = opts.Transform(data); err != nil {
			return "", TemplateData{}, fmt.Errorf("transforming template data: %w", err)
		}
	}
	if opts.TransformAsync != nil {
		if data, err = opts.TransformAsync(ctx, data); err != nil {
			return "", TemplateData{}, fmt.Errorf("transforming template data: %w", err)
		}
	}

	entry, err := Render(opts.Template, data)
	if err != nil {
		return "", TemplateData{}, err
	}
	return entry, data, nil
}

func filter(commits []gitlog.Commit, keep Predicate) []gitlog.Commit {
	out := make([]gitlog.Commit, 0, len(commits))
	for _, c := range commits {
		if keep == nil || keep(c) {
			out = append(out, c)
		}
	}
	return out
}
