package smtlib

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/borzacchiello/smtpipe"
	"github.com/borzacchiello/smtpipe/logging"
)

// unsupportedCommands are standard commands answered with unsupported.
var unsupportedCommands = map[string]bool{
	"declare-sort": true, "declare-datatype": true, "declare-datatypes": true,
	"define-fun-rec": true, "define-funs-rec": true, "get-proof": true,
	"get-unsat-core": true, "get-unsat-assumptions": true, "get-assignment": true,
}

func isInputLanguage(lang string) bool {
	switch strings.ToLower(lang) {
	case "smt2", "smtlib2", "smt2.6", "smtlib2.6", "smt2.5", "smt2.0", "smt", "smtlib":
		return true
	}
	return false
}

// ParserBuilder configures and creates a Parser bound to an engine.
type ParserBuilder struct {
	engine *smtpipe.Engine
	name   string
	lang   string
	src    io.Reader
	closer io.Closer
	err    error
}

// NewParserBuilder starts building a parser for e. name is used in error positions.
func NewParserBuilder(e *smtpipe.Engine, name string) *ParserBuilder {
	return &ParserBuilder{engine: e, name: name, lang: "smt2"}
}

func (b *ParserBuilder) WithInputLanguage(lang string) *ParserBuilder {
	b.lang = lang
	return b
}

// WithLineBufferedStreamInput reads commands from r as lines become available.
// r may return ErrNoInput when it has nothing to offer yet.
func (b *ParserBuilder) WithLineBufferedStreamInput(r io.Reader) *ParserBuilder {
	b.src, b.closer = r, nil
	return b
}

func (b *ParserBuilder) WithStringInput(s string) *ParserBuilder {
	b.src, b.closer = strings.NewReader(s), nil
	return b
}

func (b *ParserBuilder) WithFileInput(path string) *ParserBuilder {
	f, err := os.Open(path)
	if err != nil {
		b.err = errors.Wrapf(err, "could not open %s", path)
		return b
	}
	b.name = path
	b.src, b.closer = f, f
	return b
}

func (b *ParserBuilder) Build() (*Parser, error) {
	if b.err != nil {
		return nil, b.err
	}
	if !isInputLanguage(b.lang) {
		return nil, &smtpipe.UnsupportedError{What: "input language " + b.lang}
	}
	if b.src == nil {
		return nil, errors.New("no input configured")
	}
	return &Parser{
		name:    b.name,
		engine:  b.engine,
		tb:      b.engine.TermBuilder(),
		reader:  NewReader(b.name, b.src),
		closer:  b.closer,
		symbols: NewSymbolTable(),
		logger:  logging.GlobalLogger.NewSubLogger("module", logging.PARSER_SERVICE).NewSubLogger("input", b.name),
	}, nil
}

// Parser turns the S-expressions of an input into commands. Declarations and definitions
// are bound while parsing, so a command may refer to names introduced by earlier ones.
type Parser struct {
	name    string
	engine  *smtpipe.Engine
	tb      *smtpipe.TermBuilder
	reader  *Reader
	closer  io.Closer
	symbols *SymbolTable
	// level is the symbol table depth when the current command started
	level  int
	logger *logging.Logger
	done   bool
}

// NextCommand returns the next complete command. It returns (nil, nil) when no complete
// command is available, either for now or because the input ended; Done tells them apart.
// A *ParseError is returned for malformed commands, which are skipped.
func (p *Parser) NextCommand() (Command, error) {
	if p.done {
		return nil, nil
	}
	d, err := p.reader.Next()
	switch {
	case err == nil:
	case errors.Is(err, ErrNoInput):
		return nil, nil
	case errors.Is(err, io.EOF):
		p.done = true
		return nil, nil
	default:
		return nil, err
	}

	cmd, err := p.command(d)
	if err != nil {
		p.logger.Debug("rejected ", d, ": ", err)
		return nil, err
	}
	p.logger.Trace("parsed ", cmd.Name())
	return cmd, nil
}

// Done reports whether the input has ended.
func (p *Parser) Done() bool {
	return p.done
}

// Close releases a file opened by WithFileInput.
func (p *Parser) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

func (p *Parser) expectArgs(d *Datum, n int) error {
	if len(d.List)-1 != n {
		return p.errorf(d, "%s expects %d arguments, got %d", d.Head(), n, len(d.List)-1)
	}
	return nil
}

func (p *Parser) keyword(d *Datum) (string, error) {
	if d.Kind != DATUM_KEYWORD {
		return "", p.errorf(d, "expected a keyword, got %s", d)
	}
	return d.Text, nil
}

func (p *Parser) printer() smtpipe.Printer {
	return p.engine.Printer()
}

func (p *Parser) global() bool {
	return p.engine.Options().GlobalDeclarations
}

func (p *Parser) command(d *Datum) (Command, error) {
	if d.Kind != DATUM_LIST || d.Head() == "" {
		return nil, p.errorf(d, "expected a command, got %s", d)
	}
	head := d.Head()
	args := d.List[1:]
	p.level = p.symbols.Depth()

	switch head {
	case "set-logic":
		if err := p.expectArgs(d, 1); err != nil {
			return nil, err
		}
		name, err := p.symbol(args[0])
		if err != nil {
			return nil, err
		}
		return &SetLogicCommand{Logic: name}, nil

	case "set-option":
		if err := p.expectArgs(d, 2); err != nil {
			return nil, err
		}
		key, err := p.keyword(args[0])
		if err != nil {
			return nil, err
		}
		value := args[1].Text
		if args[1].Kind == DATUM_LIST {
			value = args[1].String()
		}
		return &SetOptionCommand{Option: key, Value: value, Raw: args[1].String()}, nil

	case "get-option", "get-info":
		if err := p.expectArgs(d, 1); err != nil {
			return nil, err
		}
		key, err := p.keyword(args[0])
		if err != nil {
			return nil, err
		}
		if head == "get-option" {
			return &GetOptionCommand{Option: key}, nil
		}
		return &GetInfoCommand{Key: key}, nil

	case "set-info":
		if len(args) < 1 || len(args) > 2 {
			return nil, p.errorf(d, "set-info expects a keyword and an optional value")
		}
		key, err := p.keyword(args[0])
		if err != nil {
			return nil, err
		}
		c := &SetInfoCommand{Key: key}
		if len(args) == 2 {
			c.Value = args[1].String()
		}
		return c, nil

	case "declare-const", "declare-fun":
		return p.declare(d)
	case "define-fun":
		return p.defineFun(d)
	case "define-sort":
		return p.defineSort(d)

	case "push", "pop":
		n := 1
		if len(args) > 1 {
			return nil, p.errorf(d, "%s expects at most 1 argument", head)
		}
		if len(args) == 1 {
			v, err := p.numeral(args[0])
			if err != nil {
				return nil, err
			}
			n = int(v)
		}
		if head == "push" {
			if n > smtpipe.MaxAssertionLevels-p.symbols.Depth() {
				return nil, p.errorf(d, "cannot push %d levels, the assertion stack is limited to %d", n, smtpipe.MaxAssertionLevels)
			}
			p.pushScopes(n)
			return &PushCommand{Levels: n}, nil
		}
		p.popScopes(n)
		return &PopCommand{Levels: n}, nil

	case "assert":
		if err := p.expectArgs(d, 1); err != nil {
			return nil, err
		}
		t, err := p.term(args[0])
		if err != nil {
			return nil, err
		}
		if !t.Sort().IsBool() {
			return nil, p.errorf(args[0], "assert expects a Bool term, got %s", t.Sort())
		}
		return &AssertCommand{base: base{p.printer()}, Term: t}, nil

	case "check-sat":
		if err := p.expectArgs(d, 0); err != nil {
			return nil, err
		}
		return &CheckSatCommand{base: base{p.printer()}}, nil

	case "check-sat-assuming", "get-value":
		if err := p.expectArgs(d, 1); err != nil {
			return nil, err
		}
		if args[0].Kind != DATUM_LIST {
			return nil, p.errorf(args[0], "%s expects a list of terms", head)
		}
		terms := make([]*smtpipe.Term, 0, len(args[0].List))
		for _, a := range args[0].List {
			t, err := p.term(a)
			if err != nil {
				return nil, err
			}
			terms = append(terms, t)
		}
		if head == "get-value" {
			if len(terms) == 0 {
				return nil, p.errorf(d, "get-value expects at least one term")
			}
			return &GetValueCommand{base: base{p.printer()}, Terms: terms}, nil
		}
		return &CheckSatCommand{base: base{p.printer()}, Assuming: true, Assumptions: terms}, nil

	case "get-model", "get-assertions", "reset", "reset-assertions", "exit":
		if err := p.expectArgs(d, 0); err != nil {
			return nil, err
		}
		switch head {
		case "get-model":
			return &GetModelCommand{}, nil
		case "get-assertions":
			return &GetAssertionsCommand{}, nil
		case "reset":
			p.symbols.Clear(false)
			return &ResetCommand{}, nil
		case "reset-assertions":
			p.symbols.Clear(p.global())
			return &ResetAssertionsCommand{}, nil
		}
		return &ExitCommand{}, nil

	case "echo":
		if err := p.expectArgs(d, 1); err != nil {
			return nil, err
		}
		if args[0].Kind != DATUM_STRING {
			return nil, p.errorf(args[0], "echo expects a string, got %s", args[0])
		}
		return &EchoCommand{Text: args[0].Text}, nil
	}

	if unsupportedCommands[head] {
		return &UnsupportedCommand{Command: head, Raw: d.String()}, nil
	}
	return nil, p.errorf(d.List[0], "unknown command %s", head)
}

// pushScopes mirrors push in the symbol table. Without incremental solving the engine
// rejects push, so the table is left untouched.
func (p *Parser) pushScopes(n int) {
	if !p.engine.Options().Incremental || p.global() {
		return
	}
	for i := 0; i < n; i++ {
		p.symbols.PushScope()
	}
}

func (p *Parser) popScopes(n int) {
	if !p.engine.Options().Incremental || p.global() || n > p.symbols.Depth() {
		return
	}
	for i := 0; i < n; i++ {
		p.symbols.PopScope()
	}
}

func (p *Parser) checkFresh(d *Datum, name string) error {
	if p.symbols.IsBound(name) {
		return p.errorf(d, "symbol %s already declared", smtpipe.QuoteSymbol(name))
	}
	if _, builtin := builtinOps[name]; builtin || name == "true" || name == "false" || name == "ite" || name == "-" {
		return p.errorf(d, "cannot redefine builtin symbol %s", name)
	}
	return nil
}

func (p *Parser) declare(d *Datum) (Command, error) {
	isConst := d.Head() == "declare-const"
	args := d.List[1:]
	want := 3
	if isConst {
		want = 2
	}
	if err := p.expectArgs(d, want); err != nil {
		return nil, err
	}
	name, err := p.symbol(args[0])
	if err != nil {
		return nil, err
	}
	if !isConst {
		if args[1].Kind != DATUM_LIST {
			return nil, p.errorf(args[1], "expected a list of argument sorts, got %s", args[1])
		}
		if len(args[1].List) > 0 {
			return &UnsupportedCommand{Command: "declare-fun with arguments", Raw: d.String()}, nil
		}
	}
	sort, err := p.sort(args[len(args)-1])
	if err != nil {
		return nil, err
	}
	if err := p.checkFresh(args[0], name); err != nil {
		return nil, err
	}

	sym := p.tb.Sym(name, sort)
	p.symbols.Bind(&Macro{Name: name, Body: sym}, p.global())
	return &DeclareCommand{base: base{p.printer()}, Const: isConst, Symbol: name, Sort: sort}, nil
}

func (p *Parser) defineFun(d *Datum) (Command, error) {
	if err := p.expectArgs(d, 4); err != nil {
		return nil, err
	}
	args := d.List[1:]
	name, err := p.symbol(args[0])
	if err != nil {
		return nil, err
	}
	if err := p.checkFresh(args[0], name); err != nil {
		return nil, err
	}
	if args[1].Kind != DATUM_LIST {
		return nil, p.errorf(args[1], "expected a list of parameters, got %s", args[1])
	}

	params := make([]*smtpipe.Term, 0, len(args[1].List))
	seen := make(map[string]bool)
	for _, pd := range args[1].List {
		if pd.Kind != DATUM_LIST || len(pd.List) != 2 {
			return nil, p.errorf(pd, "malformed parameter %s", pd)
		}
		pname, err := p.symbol(pd.List[0])
		if err != nil {
			return nil, err
		}
		if seen[pname] {
			return nil, p.errorf(pd, "parameter %s declared twice", smtpipe.QuoteSymbol(pname))
		}
		seen[pname] = true
		psort, err := p.sort(pd.List[1])
		if err != nil {
			return nil, err
		}
		params = append(params, p.tb.Var(pname, psort))
	}
	sort, err := p.sort(args[2])
	if err != nil {
		return nil, err
	}

	p.symbols.PushScope()
	for _, param := range params {
		p.symbols.Bind(&Macro{Name: param.Name(), Body: param}, false)
	}
	body, err := p.term(args[3])
	p.symbols.PopScope()
	if err != nil {
		return nil, err
	}
	if body.Sort() != sort {
		return nil, p.errorf(args[3], "body of %s has sort %s, expected %s", smtpipe.QuoteSymbol(name), body.Sort(), sort)
	}

	m := &Macro{Name: name, Params: params, Body: body}
	p.symbols.Bind(m, p.global())
	return &DefineFunCommand{base: base{p.printer()}, Macro: m}, nil
}

func (p *Parser) defineSort(d *Datum) (Command, error) {
	if err := p.expectArgs(d, 3); err != nil {
		return nil, err
	}
	args := d.List[1:]
	name, err := p.symbol(args[0])
	if err != nil {
		return nil, err
	}
	if args[1].Kind != DATUM_LIST {
		return nil, p.errorf(args[1], "expected a list of sort parameters, got %s", args[1])
	}
	if len(args[1].List) > 0 {
		return &UnsupportedCommand{Command: "define-sort with parameters", Raw: d.String()}, nil
	}
	if name == "Bool" || name == "Int" || p.symbols.IsSortBound(name) {
		return nil, p.errorf(args[0], "sort %s already declared", smtpipe.QuoteSymbol(name))
	}
	sort, err := p.sort(args[2])
	if err != nil {
		return nil, err
	}
	p.symbols.BindSort(name, sort, p.global())
	return &DefineSortCommand{base: base{p.printer()}, Symbol: name, Sort: sort}, nil
}

