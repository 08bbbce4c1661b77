package smtlib

import (
	"fmt"
	"io"
	"strings"

	"github.com/borzacchiello/smtpipe"
)

type SetLogicCommand struct {
	Logic string
}

func (c *SetLogicCommand) Name() string { return "set-logic" }

func (c *SetLogicCommand) String() string {
	return fmt.Sprintf("(set-logic %s)", smtpipe.QuoteSymbol(c.Logic))
}

func (c *SetLogicCommand) Invoke(e *smtpipe.Engine, out io.Writer) error {
	return respond(e, out, e.SetLogic(c.Logic))
}

// SetOptionCommand holds the option value both as text for the engine and as written.
type SetOptionCommand struct {
	Option string
	Value  string
	Raw    string
}

func (c *SetOptionCommand) Name() string { return "set-option" }

func (c *SetOptionCommand) String() string {
	return fmt.Sprintf("(set-option %s %s)", c.Option, c.Raw)
}

func (c *SetOptionCommand) Invoke(e *smtpipe.Engine, out io.Writer) error {
	return respond(e, out, e.SetOption(c.Option, c.Value))
}

type GetOptionCommand struct {
	Option string
}

func (c *GetOptionCommand) Name() string { return "get-option" }

func (c *GetOptionCommand) String() string {
	return fmt.Sprintf("(get-option %s)", c.Option)
}

func (c *GetOptionCommand) Invoke(e *smtpipe.Engine, out io.Writer) error {
	v, err := e.GetOption(c.Option)
	if err != nil {
		return printFailure(out, err)
	}
	fmt.Fprintln(out, v)
	return nil
}

type SetInfoCommand struct {
	Key   string
	Value string
}

func (c *SetInfoCommand) Name() string { return "set-info" }

func (c *SetInfoCommand) String() string {
	if c.Value == "" {
		return fmt.Sprintf("(set-info %s)", c.Key)
	}
	return fmt.Sprintf("(set-info %s %s)", c.Key, c.Value)
}

func (c *SetInfoCommand) Invoke(e *smtpipe.Engine, out io.Writer) error {
	return respond(e, out, e.SetInfo(c.Key, c.Value))
}

type GetInfoCommand struct {
	Key string
}

func (c *GetInfoCommand) Name() string { return "get-info" }

func (c *GetInfoCommand) String() string {
	return fmt.Sprintf("(get-info %s)", c.Key)
}

func (c *GetInfoCommand) Invoke(e *smtpipe.Engine, out io.Writer) error {
	v, err := e.GetInfo(c.Key)
	if err != nil {
		return printFailure(out, err)
	}
	fmt.Fprintf(out, "(%s %s)\n", c.Key, v)
	return nil
}

// DeclareCommand is declare-const, or declare-fun without arguments.
type DeclareCommand struct {
	base
	Const  bool
	Symbol string
	Sort   smtpipe.Sort
}

func (c *DeclareCommand) Name() string {
	if c.Const {
		return "declare-const"
	}
	return "declare-fun"
}

func (c *DeclareCommand) String() string {
	name, sort := c.printer.Symbol(c.Symbol), c.printer.Sort(c.Sort)
	if c.Const {
		return fmt.Sprintf("(declare-const %s %s)", name, sort)
	}
	return fmt.Sprintf("(declare-fun %s () %s)", name, sort)
}

func (c *DeclareCommand) Invoke(e *smtpipe.Engine, out io.Writer) error {
	_, err := e.Declare(c.Symbol, c.Sort)
	return respond(e, out, err)
}

// DefineFunCommand binds a macro. The binding happens while parsing; invoking it only
// reports success.
type DefineFunCommand struct {
	base
	Macro *Macro
}

func (c *DefineFunCommand) Name() string { return "define-fun" }

func (c *DefineFunCommand) String() string {
	params := make([]string, 0, len(c.Macro.Params))
	for _, p := range c.Macro.Params {
		params = append(params, fmt.Sprintf("(%s %s)", c.printer.Symbol(p.Name()), c.printer.Sort(p.Sort())))
	}
	return fmt.Sprintf("(define-fun %s (%s) %s %s)",
		c.printer.Symbol(c.Macro.Name), strings.Join(params, " "), c.printer.Sort(c.Macro.Sort()), c.term(c.Macro.Body))
}

func (c *DefineFunCommand) Invoke(e *smtpipe.Engine, out io.Writer) error {
	return printSuccess(e, out)
}

type DefineSortCommand struct {
	base
	Symbol string
	Sort   smtpipe.Sort
}

func (c *DefineSortCommand) Name() string { return "define-sort" }

func (c *DefineSortCommand) String() string {
	return fmt.Sprintf("(define-sort %s () %s)", c.printer.Symbol(c.Symbol), c.printer.Sort(c.Sort))
}

func (c *DefineSortCommand) Invoke(e *smtpipe.Engine, out io.Writer) error {
	return printSuccess(e, out)
}

type PushCommand struct {
	Levels int
}

func (c *PushCommand) Name() string { return "push" }

func (c *PushCommand) String() string {
	return fmt.Sprintf("(push %d)", c.Levels)
}

func (c *PushCommand) Invoke(e *smtpipe.Engine, out io.Writer) error {
	return respond(e, out, e.Push(c.Levels))
}

type PopCommand struct {
	Levels int
}

func (c *PopCommand) Name() string { return "pop" }

func (c *PopCommand) String() string {
	return fmt.Sprintf("(pop %d)", c.Levels)
}

func (c *PopCommand) Invoke(e *smtpipe.Engine, out io.Writer) error {
	return respond(e, out, e.Pop(c.Levels))
}

type AssertCommand struct {
	base
	Term *smtpipe.Term
}

func (c *AssertCommand) Name() string { return "assert" }

func (c *AssertCommand) String() string {
	return fmt.Sprintf("(assert %s)", c.term(c.Term))
}

func (c *AssertCommand) Invoke(e *smtpipe.Engine, out io.Writer) error {
	return respond(e, out, e.Assert(c.Term))
}

// CheckSatCommand is check-sat, or check-sat-assuming when Assuming is set.
type CheckSatCommand struct {
	base
	Assuming    bool
	Assumptions []*smtpipe.Term
}

func (c *CheckSatCommand) Name() string {
	if c.Assuming {
		return "check-sat-assuming"
	}
	return "check-sat"
}

func (c *CheckSatCommand) String() string {
	if c.Assuming {
		return fmt.Sprintf("(check-sat-assuming (%s))", c.terms(c.Assumptions))
	}
	return "(check-sat)"
}

func (c *CheckSatCommand) Invoke(e *smtpipe.Engine, out io.Writer) error {
	r, err := e.CheckSat(c.Assumptions)
	if r != smtpipe.RESULT_ERROR {
		fmt.Fprintln(out, smtpipe.ResultString(r))
	}
	if err != nil {
		return printFailure(out, err)
	}
	return nil
}

type GetModelCommand struct{}

func (c *GetModelCommand) Name() string { return "get-model" }

func (c *GetModelCommand) String() string { return "(get-model)" }

func (c *GetModelCommand) Invoke(e *smtpipe.Engine, out io.Writer) error {
	model, err := e.GetModel()
	if err != nil {
		return printFailure(out, err)
	}
	p := e.Printer()
	b := strings.Builder{}
	b.WriteString("(\n")
	for _, entry := range model {
		fmt.Fprintf(&b, "(define-fun %s () %s %s)\n",
			p.Symbol(entry.Symbol.Name()), p.Sort(entry.Symbol.Sort()), p.Term(entry.Value))
	}
	b.WriteString(")")
	fmt.Fprintln(out, b.String())
	return nil
}

type GetValueCommand struct {
	base
	Terms []*smtpipe.Term
}

func (c *GetValueCommand) Name() string { return "get-value" }

func (c *GetValueCommand) String() string {
	return fmt.Sprintf("(get-value (%s))", c.terms(c.Terms))
}

func (c *GetValueCommand) Invoke(e *smtpipe.Engine, out io.Writer) error {
	values, err := e.GetValue(c.Terms)
	if err != nil {
		return printFailure(out, err)
	}
	p := e.Printer()
	pairs := make([]string, 0, len(values))
	for i, v := range values {
		pairs = append(pairs, fmt.Sprintf("(%s %s)", p.Term(c.Terms[i]), p.Term(v)))
	}
	fmt.Fprintf(out, "(%s)\n", strings.Join(pairs, " "))
	return nil
}

type GetAssertionsCommand struct{}

func (c *GetAssertionsCommand) Name() string { return "get-assertions" }

func (c *GetAssertionsCommand) String() string { return "(get-assertions)" }

func (c *GetAssertionsCommand) Invoke(e *smtpipe.Engine, out io.Writer) error {
	p := e.Printer()
	assertions := e.GetAssertions()
	s := make([]string, 0, len(assertions))
	for _, a := range assertions {
		s = append(s, p.Term(a))
	}
	fmt.Fprintf(out, "(%s)\n", strings.Join(s, " "))
	return nil
}

type ResetCommand struct{}

func (c *ResetCommand) Name() string { return "reset" }

func (c *ResetCommand) String() string { return "(reset)" }

func (c *ResetCommand) Invoke(e *smtpipe.Engine, out io.Writer) error {
	e.Reset()
	return printSuccess(e, out)
}

type ResetAssertionsCommand struct{}

func (c *ResetAssertionsCommand) Name() string { return "reset-assertions" }

func (c *ResetAssertionsCommand) String() string { return "(reset-assertions)" }

func (c *ResetAssertionsCommand) Invoke(e *smtpipe.Engine, out io.Writer) error {
	e.ResetAssertions()
	return printSuccess(e, out)
}

type EchoCommand struct {
	Text string
}

func (c *EchoCommand) Name() string { return "echo" }

func (c *EchoCommand) String() string {
	return fmt.Sprintf("(echo %s)", smtpipe.QuoteString(c.Text))
}

func (c *EchoCommand) Invoke(e *smtpipe.Engine, out io.Writer) error {
	fmt.Fprintln(out, smtpipe.QuoteString(c.Text))
	return nil
}

type ExitCommand struct{}

func (c *ExitCommand) Name() string { return "exit" }

func (c *ExitCommand) String() string { return "(exit)" }

func (c *ExitCommand) Invoke(e *smtpipe.Engine, out io.Writer) error {
	return printSuccess(e, out)
}

// UnsupportedCommand is a standard command outside of the supported fragment.
type UnsupportedCommand struct {
	Command string
	Raw     string
}

func (c *UnsupportedCommand) Name() string { return c.Command }

func (c *UnsupportedCommand) String() string { return c.Raw }

func (c *UnsupportedCommand) Invoke(e *smtpipe.Engine, out io.Writer) error {
	return printFailure(out, &smtpipe.UnsupportedError{What: c.Command})
}
