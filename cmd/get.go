package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MyCarrier-DevOps/go-versionist/internal/output"
	"github.com/MyCarrier-DevOps/go-versionist/internal/versionist"
)

var getCmd = &cobra.Command{
	Use:       "get version|reference",
	Short:     "Print the latest documented version or its git reference",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"version", "reference"},
	RunE:      getRunE,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func getRunE(cmd *cobra.Command, args []string) error {
	runner, err := newRunner(cmd, versionist.Options{CurrentVersion: flagCurrent})
	if err != nil {
		return err
	}

	version, err := runner.CurrentVersion()
	if err != nil {
		return err
	}
	reference, err := runner.CurrentReference()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	r := output.Result{Version: version, Reference: reference}
	if done, err := output.WriteMachine(w, flagOutput, r); done || err != nil {
		return err
	}

	if args[0] == "reference" {
		_, err = fmt.Fprintln(w, reference)
		return err
	}
	_, err = fmt.Fprintln(w, version)
	return err
}
