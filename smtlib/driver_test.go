package smtlib

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borzacchiello/smtpipe"
)

func interpret(t *testing.T, opts smtpipe.Options, src string) string {
	e := smtpipe.NewEngine(opts)
	p := newStringParser(t, e, src)
	out := &bytes.Buffer{}
	require.NoError(t, NewInterpreter(p, e, out).Run(context.Background()))
	return out.String()
}

// TestDrainBatches feeds two batches through a pipe, draining after each one.
func TestDrainBatches(t *testing.T) {
	opts := smtpipe.DefaultOptions()
	opts.Incremental = true
	e := smtpipe.NewEngine(opts)

	pipe := NewPipe()
	p, err := NewParserBuilder(e, "<string 1>").WithLineBufferedStreamInput(pipe).Build()
	require.NoError(t, err)
	out := &bytes.Buffer{}
	in := NewInterpreter(p, e, out)

	pipe.WriteString("(set-logic QF_LIA)\n(declare-fun x () Int)\n(assert (= x 5))\n(check-sat)\n")
	pipe.Flush()
	exited, err := in.Drain(context.Background())
	require.NoError(t, err)
	assert.False(t, exited)
	assert.Equal(t, "sat\n", out.String())

	out.Reset()
	pipe.WriteString("(assert (= x 10))\n(check-sat)\n")
	pipe.Flush()
	_, err = in.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "unsat\n", out.String())
}

// TestDrainPartialCommand checks that a command split across flushes runs once it is complete.
func TestDrainPartialCommand(t *testing.T) {
	e := smtpipe.NewEngine(smtpipe.DefaultOptions())
	pipe := NewPipe()
	p, err := NewParserBuilder(e, "pipe").WithLineBufferedStreamInput(pipe).Build()
	require.NoError(t, err)
	out := &bytes.Buffer{}
	in := NewInterpreter(p, e, out)
	in.EchoCommands = true

	pipe.WriteString("(echo\n")
	pipe.Flush()
	_, err = in.Drain(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out.String())

	pipe.WriteString("\"done\")\n")
	pipe.Flush()
	_, err = in.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "(echo \"done\")\n\"done\"\n", out.String())
}

func TestNonIncrementalSecondQuery(t *testing.T) {
	out := interpret(t, smtpipe.DefaultOptions(), `
(set-logic QF_LIA)
(declare-fun x () Int)
(assert (= x 5))
(check-sat)
(assert (= x 10))
(check-sat)
`)
	assert.Equal(t, "sat\n(error \"cannot make multiple queries unless incremental solving is enabled (try --incremental)\")\n", out)
}

func TestParseErrorsContinue(t *testing.T) {
	out := interpret(t, smtpipe.DefaultOptions(), "(assert (= y 1))\n(check-sat)\n")
	assert.Equal(t, "(error \"Parse Error: test:1.12: symbol y not declared\")\nsat\n", out)

	out = interpret(t, smtpipe.DefaultOptions(), "(assert (> #z\n  1 0))\n(check-sat)\n")
	assert.Equal(t, "(error \"Parse Error: test:1.12: invalid literal #z\")\nsat\n", out, "one error per malformed command")
}

func TestNamedTermValue(t *testing.T) {
	opts := smtpipe.DefaultOptions()
	opts.ProduceModels = true
	out := interpret(t, opts, `
(set-logic QF_LIA)
(declare-fun x () Int)
(assert (let ((a x)) (! (> a 0) :named pos)))
(check-sat)
(get-value (pos))
`)
	assert.Equal(t, "sat\n(((> x 0) true))\n", out)
}

func TestModelCommands(t *testing.T) {
	opts := smtpipe.DefaultOptions()
	opts.ProduceModels = true
	out := interpret(t, opts, `
(set-logic QF_LIA)
(declare-const x Int)
(define-fun double ((v Int)) Int (* 2 v))
(assert (= (double x) (let ((z 3)) (+ z z))))
(check-sat)
(get-model)
(get-value (x (+ x 1)))
(get-assertions)
`)
	assert.Equal(t, "sat\n(\n(define-fun x () Int 3)\n)\n((x 3) ((+ x 1) 4))\n((= (* x 2) 6))\n", out)
}

func TestModelWithoutProduceModels(t *testing.T) {
	out := interpret(t, smtpipe.DefaultOptions(), "(check-sat)\n(get-model)\n")
	assert.Equal(t, "sat\n(error \"cannot get model when produce-models is false\")\n", out)
}

func TestPrintSuccessAndExit(t *testing.T) {
	out := interpret(t, smtpipe.DefaultOptions(), `
(set-option :print-success true)
(set-logic QF_BV)
(declare-const a (_ BitVec 4))
(exit)
(check-sat)
`)
	assert.Equal(t, "success\nsuccess\nsuccess\nsuccess\n", out)
}

func TestUnsupportedResponses(t *testing.T) {
	out := interpret(t, smtpipe.DefaultOptions(), `
(declare-sort U 0)
(get-info :foo)
(set-option :foo 1)
(set-logic QF_LRA)
(get-option :incremental)
(get-info :name)
(echo "hi")
`)
	assert.Equal(t, "unsupported\nunsupported\nunsupported\nunsupported\nfalse\n(:name \"smtpipe\")\n\"hi\"\n", out)
}

func TestPushPopScripts(t *testing.T) {
	opts := smtpipe.DefaultOptions()
	opts.Incremental = true
	out := interpret(t, opts, `
(set-logic QF_BV)
(declare-const a (_ BitVec 8))
(assert (bvult a #x10))
(push 1)
(assert (bvugt a #x20))
(check-sat)
(pop 1)
(check-sat)
(get-info :assertion-stack-levels)
(pop 1)
`)
	assert.Equal(t, "unsat\nsat\n(:assertion-stack-levels 0)\n(error \"cannot pop 1 levels, the assertion stack has 0\")\n", out)
}

func TestCheckSatAssuming(t *testing.T) {
	opts := smtpipe.DefaultOptions()
	opts.Incremental = true
	out := interpret(t, opts, `
(declare-const p Bool)
(declare-const q Bool)
(assert (or p q))
(check-sat-assuming ((not p) (not q)))
(check-sat-assuming ((not p)))
`)
	assert.Equal(t, "unsat\nsat\n", out)
}

func TestRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.smt2")
	require.NoError(t, os.WriteFile(path, []byte("(set-logic QF_UF)\n(declare-const p Bool)\n(assert (and p (not p)))\n(check-sat)\n"), 0644))

	e := smtpipe.NewEngine(smtpipe.DefaultOptions())
	p, err := NewParserBuilder(e, "ignored").WithFileInput(path).Build()
	require.NoError(t, err)
	defer p.Close()

	out := &bytes.Buffer{}
	in := NewInterpreter(p, e, out)
	require.NoError(t, in.Run(context.Background()))
	assert.Equal(t, "unsat\n", out.String())
	assert.True(t, p.Done())
	assert.False(t, in.Exited())
}

func TestDrainCancelled(t *testing.T) {
	e := smtpipe.NewEngine(smtpipe.DefaultOptions())
	p := newStringParser(t, e, "(check-sat)\n")
	in := NewInterpreter(p, e, &bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := in.Drain(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
