package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/borzacchiello/smtpipe"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "smtpipe %s (%s, %s/%s)\n", smtpipe.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
