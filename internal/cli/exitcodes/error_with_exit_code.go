package exitcodes

import "errors"

// ErrorWithExitCode carries the exit code for err.
type ErrorWithExitCode struct {
	err      error
	exitCode int
}

func NewErrorWithExitCode(err error, exitCode int) *ErrorWithExitCode {
	return &ErrorWithExitCode{err: err, exitCode: exitCode}
}

func (e *ErrorWithExitCode) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e *ErrorWithExitCode) Unwrap() error {
	return e.err
}

// GetInnerErrorAndExitCode finds an ErrorWithExitCode anywhere in err's chain. Other errors
// exit with ExitCodeGeneralError.
func GetInnerErrorAndExitCode(err error) (error, int) {
	if err == nil {
		return nil, ExitCodeSuccess
	}
	var withCode *ErrorWithExitCode
	if errors.As(err, &withCode) {
		return withCode.err, withCode.exitCode
	}
	return err, ExitCodeGeneralError
}
