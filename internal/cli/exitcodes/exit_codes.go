package exitcodes

// Process exit codes. 2-5 are left to shells.
const (
	ExitCodeSuccess      = 0
	ExitCodeGeneralError = 1

	// ExitCodeHandledError: the error was already logged, main only exits.
	ExitCodeHandledError = 6
	ExitCodeInterrupted  = 7
)
