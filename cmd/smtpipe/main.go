package main

import (
	"fmt"
	"os"

	"github.com/borzacchiello/smtpipe/internal/cli"
	"github.com/borzacchiello/smtpipe/internal/cli/exitcodes"
)

func main() {
	err := cli.Execute()

	// Obtain the actual error and exit code from the error, if any.
	var exitCode int
	err, exitCode = exitcodes.GetInnerErrorAndExitCode(err)

	if err != nil && exitCode != exitcodes.ExitCodeHandledError {
		fmt.Fprintln(os.Stderr, err)
	}
	if exitCode != exitcodes.ExitCodeSuccess {
		os.Exit(exitCode)
	}
}
