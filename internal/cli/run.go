package cli

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/borzacchiello/smtpipe"
	"github.com/borzacchiello/smtpipe/internal/cli/exitcodes"
	"github.com/borzacchiello/smtpipe/smtlib"
)

var runCmd = &cobra.Command{
	Use:   "run [files...]",
	Short: "Runs SMT-LIB v2 scripts",
	Long: `Runs SMT-LIB v2 scripts, each on a fresh engine. Commands are invoked as soon as
the line completing them is read, so the interpreter can be driven interactively.
Without files, or with "-", commands are read from stdin.`,
	Args:              cobra.ArbitraryArgs,
	ValidArgsFunction: cmdValidRunArgs,
	RunE:              cmdRunRun,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	addRunFlags()
	rootCmd.AddCommand(runCmd)
}

// cmdValidRunArgs completes the flags not used yet, then SMT-LIB files.
func cmdValidRunArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var unusedFlags []string
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		}
	})
	if len(toComplete) > 0 && toComplete[0] == '-' {
		return unusedFlags, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"smt2"}, cobra.ShellCompDirectiveFilterFileExt
}

func loadOptions(cmd *cobra.Command) (smtpipe.Options, error) {
	opts := smtpipe.DefaultOptions()
	path, err := cmd.Flags().GetString("options-file")
	if err != nil {
		return opts, err
	}
	if path != "" {
		cmdLogger.Info("Reading the options file at ", path)
		opts, err = smtpipe.ReadOptionsFromFile(path)
		if err != nil {
			return opts, err
		}
	}
	return opts, updateOptionsWithRunFlags(cmd, &opts)
}

// outputFor resolves the :regular-output-channel option.
func outputFor(cmd *cobra.Command, channel string) (io.Writer, func() error, error) {
	switch channel {
	case "", "stdout":
		return cmd.OutOrStdout(), func() error { return nil }, nil
	case "stderr":
		return cmd.ErrOrStderr(), func() error { return nil }, nil
	}
	f, err := os.Create(channel)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "could not open the output channel %s", channel)
	}
	return f, f.Close, nil
}

func cmdRunRun(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		cmdLogger.Error("Failed to run the run command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	echo, err := cmd.Flags().GetBool("echo-commands")
	if err != nil {
		return err
	}
	out, closeOut, err := outputFor(cmd, opts.RegularOutputChannel)
	if err != nil {
		cmdLogger.Error("Failed to run the run command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	defer closeOut()

	// Stop reading on keyboard interrupts
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if len(args) == 0 {
		args = []string{"-"}
	}
	for _, path := range args {
		exited, err := runScript(ctx, path, cmd.InOrStdin(), out, opts, echo)
		if errors.Is(err, context.Canceled) {
			cmdLogger.Warn("Interrupted while running ", path)
			return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeInterrupted)
		}
		if err != nil {
			cmdLogger.Error("Failed to run ", path, err)
			return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
		}
		if exited {
			break
		}
	}
	return nil
}

// runScript interprets one input on a fresh engine. It reports whether the script asked to exit.
func runScript(ctx context.Context, path string, stdin io.Reader, out io.Writer, opts smtpipe.Options, echo bool) (bool, error) {
	engine := smtpipe.NewEngine(opts)
	builder := smtlib.NewParserBuilder(engine, "<stdin>").WithInputLanguage("smt2")
	if path == "-" {
		builder.WithLineBufferedStreamInput(stdin)
	} else {
		builder.WithFileInput(path)
	}
	parser, err := builder.Build()
	if err != nil {
		return false, err
	}
	defer parser.Close()

	interpreter := smtlib.NewInterpreter(parser, engine, out)
	interpreter.EchoCommands = echo
	if err := interpreter.Run(ctx); err != nil {
		return false, err
	}
	cmdLogger.Debug("finished ", path, " on engine ", engine.ID(), ": ", engine.Stats().Checks, " checks")
	return interpreter.Exited(), nil
}
