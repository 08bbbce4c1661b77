package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/borzacchiello/smtpipe"
	"github.com/borzacchiello/smtpipe/internal/cli/exitcodes"
	"github.com/borzacchiello/smtpipe/smtlib"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Feeds commands to the interpreter through a pipe in two batches",
	Long: `Writes a first batch of commands to a pipe, interprets every command available,
then writes and interprets a second batch on the same engine. The first check-sat is
sat and the second, which contradicts the first assertion, is unsat.`,
	Args:          cobra.NoArgs,
	RunE:          cmdRunDemo,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

var demoBatches = [][]string{
	{
		"(set-logic QF_LIA)",
		"(declare-fun x () Int)",
		"(assert (= x 5))",
		"(check-sat)",
	},
	{
		"(assert (= x 10))",
		"(check-sat)",
	},
}

func cmdRunDemo(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := runDemo(ctx, cmd.OutOrStdout()); err != nil {
		cmdLogger.Error("Failed to run the demo", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	return nil
}

func runDemo(ctx context.Context, out io.Writer) error {
	opts := smtpipe.DefaultOptions()
	opts.Incremental = true
	opts.OutputLanguage = smtpipe.LANG_SMT2
	engine := smtpipe.NewEngine(opts)

	pipe := smtlib.NewPipe()
	defer pipe.Close()

	parser, err := smtlib.NewParserBuilder(engine, "<string 1>").
		WithInputLanguage("smt2").
		WithLineBufferedStreamInput(pipe).
		Build()
	if err != nil {
		return err
	}
	interpreter := smtlib.NewInterpreter(parser, engine, out)
	interpreter.EchoCommands = true

	for _, batch := range demoBatches {
		for _, line := range batch {
			if _, err := fmt.Fprintln(pipe, line); err != nil {
				return err
			}
		}
		if err := pipe.Flush(); err != nil {
			return err
		}
		if _, err := interpreter.Drain(ctx); err != nil {
			return err
		}
	}
	return nil
}
