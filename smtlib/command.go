package smtlib

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/borzacchiello/smtpipe"
)

// Command is one parsed SMT-LIB command. Invoke runs it on an engine and writes the
// response to out; a failing command writes its error response and returns the error.
type Command interface {
	fmt.Stringer
	Name() string
	Invoke(e *smtpipe.Engine, out io.Writer) error
}

// base carries the printer terms are rendered with when a command is printed.
type base struct {
	printer smtpipe.Printer
}

func (b base) term(t *smtpipe.Term) string {
	return b.printer.Term(t)
}

func (b base) terms(ts []*smtpipe.Term) string {
	s := make([]string, 0, len(ts))
	for _, t := range ts {
		s = append(s, b.printer.Term(t))
	}
	return strings.Join(s, " ")
}

func printSuccess(e *smtpipe.Engine, out io.Writer) error {
	if e.Options().PrintSuccess {
		fmt.Fprintln(out, "success")
	}
	return nil
}

// printFailure writes the response to a failed command: unsupported for input outside of
// what the engine handles, an error otherwise.
func printFailure(out io.Writer, err error) error {
	var unsupported *smtpipe.UnsupportedError
	if errors.As(err, &unsupported) {
		fmt.Fprintln(out, "unsupported")
		return err
	}
	fmt.Fprintf(out, "(error %s)\n", smtpipe.QuoteString(err.Error()))
	return err
}

func respond(e *smtpipe.Engine, out io.Writer, err error) error {
	if err != nil {
		return printFailure(out, err)
	}
	return printSuccess(e, out)
}
