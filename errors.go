package smtpipe

import "fmt"

// SortError reports an ill-sorted term construction.
type SortError struct {
	Op  string
	Msg string
}

func (e *SortError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func sortErrorf(op string, format string, args ...any) *SortError {
	return &SortError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// ModalError reports a command that is not allowed in the engine's current mode.
type ModalError struct {
	Msg string
}

func (e *ModalError) Error() string {
	return e.Msg
}

// UnsupportedError reports well-formed input outside of what the engine handles.
type UnsupportedError struct {
	What string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported: %s", e.What)
}
