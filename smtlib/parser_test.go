package smtlib

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borzacchiello/smtpipe"
)

func newStringParser(t *testing.T, e *smtpipe.Engine, src string) *Parser {
	p, err := NewParserBuilder(e, "test").WithStringInput(src).Build()
	require.NoError(t, err)
	return p
}

func parseOne(t *testing.T, src string) (Command, error) {
	return newStringParser(t, smtpipe.NewEngine(smtpipe.DefaultOptions()), src).NextCommand()
}

func TestParserPrintsCommands(t *testing.T) {
	lines := []struct{ in, out string }{
		{"(set-option :produce-models true)", ""},
		{"(declare-fun x () Int)", ""},
		{"(declare-const p Bool)", ""},
		{"(declare-const |a b| (_ BitVec 8))", ""},
		{"(assert (=> p (> x 0)))", ""},
		{"(check-sat-assuming (p))", ""},
		{"(push)", "(push 1)"},
		{"(pop 2)", ""},
		{"(get-value (x (- x 1)))", "(get-value (x (+ x (- 1))))"},
		{"(define-fun f ((a Int) (b Int)) Bool (< a b))", ""},
		{"(define-sort Byte () (_ BitVec 8))", ""},
		{"(declare-const w Byte)", "(declare-const w (_ BitVec 8))"},
		{"(assert (= ((_ extract 3 0) w) #xa))", ""},
		{"(assert (f x 3))", "(assert (< x 3))"},
		{"(set-info :status sat)", ""},
		{`(echo "a ""b""")`, ""},
		{"(get-info :version)", ""},
		{"(get-model)", ""},
		{"(reset-assertions)", ""},
		{"(exit)", ""},
	}

	src := strings.Builder{}
	for _, l := range lines {
		src.WriteString(l.in + "\n")
	}
	p := newStringParser(t, smtpipe.NewEngine(smtpipe.DefaultOptions()), src.String())

	for _, l := range lines {
		cmd, err := p.NextCommand()
		require.NoError(t, err, l.in)
		require.NotNil(t, cmd, l.in)
		expected := l.out
		if expected == "" {
			expected = l.in
		}
		assert.Equal(t, expected, cmd.String())
	}
	cmd, err := p.NextCommand()
	assert.NoError(t, err)
	assert.Nil(t, cmd)
	assert.True(t, p.Done())
}

func TestParserBitVectorOperators(t *testing.T) {
	p := newStringParser(t, smtpipe.NewEngine(smtpipe.DefaultOptions()), `
(declare-const b (_ BitVec 4))
(assert (= ((_ rotate_left 1) b) ((_ repeat 2) #b10)))
(assert (= (bvcomp b b) #b1))
(assert (= (bvnand b #xf) ((_ zero_extend 3) (_ bv1 1))))
`)
	_, err := p.NextCommand()
	require.NoError(t, err)

	cmd, err := p.NextCommand()
	require.NoError(t, err)
	assert.Equal(t, "(assert (= (concat ((_ extract 2 0) b) ((_ extract 3 3) b)) #xa))", cmd.String())

	cmd, err = p.NextCommand()
	require.NoError(t, err)
	assert.Equal(t, smtpipe.TY_BOOL_CONST, cmd.(*AssertCommand).Term.Kind())

	cmd, err = p.NextCommand()
	require.NoError(t, err)
	assert.Equal(t, "(assert (= (bvnot b) #x1))", cmd.String())
}

func TestParserLetAndNamed(t *testing.T) {
	opts := smtpipe.DefaultOptions()
	p := newStringParser(t, smtpipe.NewEngine(opts), `
(declare-const x Int)
(assert (! (let ((x 1) (y x)) (> y x)) :named g :weight 3))
(assert (not g))
(assert (let ((x 1)) x))
`)
	_, err := p.NextCommand()
	require.NoError(t, err)

	cmd, err := p.NextCommand()
	require.NoError(t, err)
	// let bindings are parallel: y refers to the outer x
	assert.Equal(t, "(assert (> x 1))", cmd.String())

	cmd, err = p.NextCommand()
	require.NoError(t, err)
	assert.Equal(t, "(assert (not (> x 1)))", cmd.String())

	_, err = p.NextCommand()
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Msg, "assert expects a Bool term")
}

func TestParserNamedInsideLet(t *testing.T) {
	opts := smtpipe.DefaultOptions()
	opts.Incremental = true
	p := newStringParser(t, smtpipe.NewEngine(opts), `
(declare-const x Int)
(push 1)
(assert (let ((a x)) (! (> a 0) :named pos)))
(get-value (pos))
(assert a)
(pop 1)
(get-value (pos))
`)
	for i := 0; i < 3; i++ {
		_, err := p.NextCommand()
		require.NoError(t, err)
	}

	cmd, err := p.NextCommand()
	require.NoError(t, err, "a name given inside a let body outlives the let")
	assert.Equal(t, "(get-value ((> x 0)))", cmd.String())

	_, err = p.NextCommand()
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Msg, "symbol a not declared")

	_, err = p.NextCommand()
	require.NoError(t, err)
	_, err = p.NextCommand()
	require.ErrorAs(t, err, &perr, "the name belongs to the popped level")
	assert.Contains(t, perr.Msg, "symbol pos not declared")
}

func TestParserQuotedLiterals(t *testing.T) {
	cmd, err := parseOne(t, "(assert (and |true| (not |false|)))")
	require.NoError(t, err)
	assert.Equal(t, "(assert true)", cmd.String())
}

func TestParserPushLimit(t *testing.T) {
	opts := smtpipe.DefaultOptions()
	opts.Incremental = true
	p := newStringParser(t, smtpipe.NewEngine(opts), "(push 50000000)\n(push 3)\n")

	_, err := p.NextCommand()
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Msg, "assertion stack is limited to 65536")
	assert.Equal(t, 0, p.symbols.Depth())

	cmd, err := p.NextCommand()
	require.NoError(t, err)
	assert.Equal(t, "(push 3)", cmd.String())
	assert.Equal(t, 3, p.symbols.Depth())
}

func TestParserErrors(t *testing.T) {
	cases := []struct{ in, msg string }{
		{"(assert x)", "symbol x not declared"},
		{"(assert 5)", "assert expects a Bool term"},
		{"(foo)", "unknown command foo"},
		{"check-sat", "expected a command"},
		{"(declare-const true Bool)", "cannot redefine builtin symbol true"},
		{"(declare-const and Bool)", "cannot redefine builtin symbol and"},
		{"(assert (+ 1))", "+ expects at least 2 arguments, got 1"},
		{"(assert (= 1 true))", "operands of sort Int and Bool"},
		{"(declare-const r Real)", "unsupported: sort Real"},
		{"(assert (forall ((v Int)) true))", "unsupported: forall"},
		{"(assert (> 1.5 0))", "unsupported: real literal"},
		{"(define-fun g ((v Int)) Bool v)", "body of g has sort Int, expected Bool"},
		{"(set-logic QF_LIA extra)", "set-logic expects 1 arguments, got 2"},
		{"(declare-const b (_ BitVec 0))", "positive width"},
		{"(assert (= ((_ extract 9 0) #xff) #x00))", "invalid range"},
	}
	for _, c := range cases {
		_, err := parseOne(t, c.in)
		var perr *ParseError
		if assert.ErrorAs(t, err, &perr, c.in) {
			assert.Contains(t, perr.Msg, c.msg, c.in)
			assert.Equal(t, "test", perr.Name)
		}
	}
}

func TestParserUnsupportedCommands(t *testing.T) {
	for _, in := range []string{"(declare-sort U 0)", "(get-unsat-core)", "(declare-fun f (Int) Int)", "(define-sort Pair (X) X)"} {
		cmd, err := parseOne(t, in)
		require.NoError(t, err, in)
		assert.IsType(t, &UnsupportedCommand{}, cmd, in)
		assert.Equal(t, in, cmd.String())
	}
}

func TestParserLogicGating(t *testing.T) {
	e := smtpipe.NewEngine(smtpipe.DefaultOptions())
	require.NoError(t, e.SetLogic("QF_LIA"))

	p := newStringParser(t, e, `
(declare-const a (_ BitVec 8))
(declare-const x Int)
(assert (= (* x x) 4))
(assert (= (* 3 x) 6))
(assert (= (mod x x) 0))
(assert (= #x01 #x01))
`)
	expected := []string{
		"sort (_ BitVec 8) is not allowed in logic QF_LIA",
		"",
		"nonlinear multiplication is not allowed in logic QF_LIA",
		"",
		"mod by a non-literal is not allowed in logic QF_LIA",
		"sort (_ BitVec 8) is not allowed in logic QF_LIA",
	}
	for _, msg := range expected {
		_, err := p.NextCommand()
		if msg == "" {
			assert.NoError(t, err)
			continue
		}
		var perr *ParseError
		if assert.ErrorAs(t, err, &perr) {
			assert.Contains(t, perr.Msg, msg)
		}
	}
}

func TestParserScopes(t *testing.T) {
	opts := smtpipe.DefaultOptions()
	opts.Incremental = true
	e := smtpipe.NewEngine(opts)

	p := newStringParser(t, e, `
(push 1)
(declare-const y Int)
(assert (> y 0))
(pop 1)
(assert (> y 0))
`)
	for i := 0; i < 4; i++ {
		_, err := p.NextCommand()
		require.NoError(t, err)
	}
	_, err := p.NextCommand()
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Msg, "symbol y not declared")
}

func TestParserGlobalDeclarations(t *testing.T) {
	opts := smtpipe.DefaultOptions()
	opts.Incremental = true
	opts.GlobalDeclarations = true
	e := smtpipe.NewEngine(opts)

	p := newStringParser(t, e, `
(push 1)
(declare-const y Int)
(pop 1)
(assert (> y 0))
(reset-assertions)
(assert (> y 0))
(reset)
(assert (> y 0))
`)
	for i := 0; i < 7; i++ {
		_, err := p.NextCommand()
		require.NoError(t, err)
	}
	_, err := p.NextCommand()
	assert.Error(t, err, "reset drops global declarations")
}

func TestParserPositions(t *testing.T) {
	p := newStringParser(t, smtpipe.NewEngine(smtpipe.DefaultOptions()), "(check-sat)\n  (assert (= y 1))")
	_, err := p.NextCommand()
	require.NoError(t, err)
	_, err = p.NextCommand()
	assert.EqualError(t, err, "Parse Error: test:2.14: symbol y not declared")
}

func TestParserBuilder(t *testing.T) {
	e := smtpipe.NewEngine(smtpipe.DefaultOptions())

	_, err := NewParserBuilder(e, "x").WithInputLanguage("tptp").WithStringInput("").Build()
	var u *smtpipe.UnsupportedError
	assert.ErrorAs(t, err, &u)

	_, err = NewParserBuilder(e, "x").Build()
	assert.Error(t, err)

	_, err = NewParserBuilder(e, "x").WithFileInput("/does/not/exist.smt2").Build()
	assert.Error(t, err)
}

func TestParserWaitsForInput(t *testing.T) {
	pipe := NewPipe()
	p, err := NewParserBuilder(smtpipe.NewEngine(smtpipe.DefaultOptions()), "pipe").
		WithLineBufferedStreamInput(pipe).
		Build()
	require.NoError(t, err)

	cmd, err := p.NextCommand()
	assert.NoError(t, err)
	assert.Nil(t, cmd)
	assert.False(t, p.Done(), "no input is not the end of the input")

	pipe.WriteString("(check-sat)\n")
	pipe.Flush()
	cmd, err = p.NextCommand()
	require.NoError(t, err)
	assert.Equal(t, "check-sat", cmd.Name())

	pipe.Close()
	cmd, err = p.NextCommand()
	assert.NoError(t, err)
	assert.Nil(t, cmd)
	assert.True(t, p.Done())
}
