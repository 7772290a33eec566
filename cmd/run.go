package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MyCarrier-DevOps/go-versionist/internal/config"
	"github.com/MyCarrier-DevOps/go-versionist/internal/git"
	"github.com/MyCarrier-DevOps/go-versionist/internal/output"
	"github.com/MyCarrier-DevOps/go-versionist/internal/presets"
	"github.com/MyCarrier-DevOps/go-versionist/internal/versionist"
)

func runRunE(cmd *cobra.Command, _ []string) error {
	return release(cmd, versionist.Options{})
}

// release runs the full pipeline and reports the result.
func release(cmd *cobra.Command, opts versionist.Options) error {
	// 1. Build the runner.
	opts.CurrentVersion = flagCurrent
	opts.DryRun = flagDry
	runner, err := newRunner(cmd, opts)
	if err != nil {
		return err
	}

	// 2. Run it.
	result, err := runner.Run(cmd.Context())
	if flagExplain {
		if werr := output.WriteExplanation(cmd.ErrOrStderr(), runner.Explain()); werr != nil {
			return fmt.Errorf("writing explanation: %w", werr)
		}
	}
	if err != nil {
		return err
	}

	// 3. Report it.
	return writeResult(cmd.OutOrStdout(), runner.Context().Dir, result)
}

// newRunner opens the repository, loads the configuration and snapshots
// the run.
func newRunner(cmd *cobra.Command, opts versionist.Options) (*versionist.Runner, error) {
	// 1. Open repository.
	repo, err := git.Open(flagPath)
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}

	// 2. Load configuration.
	cfg, err := loadConfig(cmd, repo)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	// 3. Snapshot the run.
	return versionist.New(repo, cfg, opts)
}

// loadConfig layers the config file, the environment and the --path flag
// over the defaults, with presets bound to repo.
func loadConfig(cmd *cobra.Command, repo git.Repository) (*config.Config, error) {
	overrides := map[string]config.Value{}
	if cmd.Flags().Changed("path") {
		abs, err := filepath.Abs(flagPath)
		if err != nil {
			return nil, fmt.Errorf("resolving path: %w", err)
		}
		overrides[config.PropPath] = config.String(abs)
	}

	return config.Load(presets.NewRegistry(presets.Deps{Repo: repo}), config.LoadOptions{
		Dir:       repo.WorkingDirectory(),
		File:      flagConfig,
		Overrides: overrides,
	})
}

// writeResult writes a run result in the requested format.
func writeResult(w io.Writer, dir string, result *versionist.Result) error {
	r := output.Result{
		Version:   result.Version,
		Reference: result.Reference,
		Entry:     result.Entry,
		DryRun:    result.DryRun,
	}

	if done, err := output.WriteMachine(w, flagOutput, r); done || err != nil {
		return err
	}

	if result.DryRun || !result.ChangelogEdited {
		if err := output.WritePreview(w, result.Entry); err != nil {
			return err
		}
	}
	if result.DryRun {
		name, err := filepath.Rel(dir, result.ChangelogPath)
		if err != nil {
			name = result.ChangelogPath
		}
		if err := output.WriteDiff(w, name, result.ChangelogBefore, result.ChangelogAfter); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, result.Version)
	return err
}
