package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/borzacchiello/smtpipe/logging"
)

// cmdLogger is replaced once the persistent flags are parsed.
var cmdLogger = logging.NewLogger(zerolog.InfoLevel, true).NewSubLogger("module", logging.CLI_SERVICE)

var rootCmd = &cobra.Command{
	Use:               "smtpipe",
	Short:             "An incremental SMT-LIB v2 command interpreter",
	Long:              "smtpipe reads SMT-LIB v2 commands as they become available and invokes them on a Z3-backed engine",
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().Int("verbosity", 0, "diagnostic verbosity, from 0 (warnings only) to 5")
	rootCmd.PersistentFlags().String("log-format", string(logging.UNSTRUCTURED),
		fmt.Sprintf("format of diagnostics on stderr, %q or %q", logging.UNSTRUCTURED, logging.STRUCTURED))
}

// setupLogging configures the global logger every engine and parser derives its logger from.
func setupLogging(cmd *cobra.Command, args []string) error {
	verbosity, err := cmd.Flags().GetInt("verbosity")
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("log-format")
	if err != nil {
		return err
	}

	level := logging.LevelFromVerbosity(verbosity)
	switch logging.LogFormat(format) {
	case logging.UNSTRUCTURED:
		logging.GlobalLogger = logging.NewLogger(level, true)
	case logging.STRUCTURED:
		logging.GlobalLogger = logging.NewLogger(level, false)
		logging.GlobalLogger.AddWriter(cmd.ErrOrStderr(), logging.STRUCTURED)
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	cmdLogger = logging.GlobalLogger.NewSubLogger("module", logging.CLI_SERVICE)
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
