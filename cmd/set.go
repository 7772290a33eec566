package cmd

import (
	"github.com/spf13/cobra"

	"github.com/MyCarrier-DevOps/go-versionist/internal/versionist"
)

var setCmd = &cobra.Command{
	Use:   "set <version>",
	Short: "Release the given version instead of the calculated one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return release(cmd, versionist.Options{ForcedVersion: args[0]})
	},
}

func init() {
	rootCmd.AddCommand(setCmd)
}
