package smtlib

import (
	"strconv"

	"github.com/borzacchiello/smtpipe"
)

type naryFunc func(args ...*smtpipe.Term) (*smtpipe.Term, error)
type binaryFunc func(lhs, rhs *smtpipe.Term) (*smtpipe.Term, error)
type unaryFunc func(e *smtpipe.Term) (*smtpipe.Term, error)

// opSpec describes a builtin function: its arity bounds (max < 0 means unbounded) and its constructor.
type opSpec struct {
	min, max int
	nary     func(tb *smtpipe.TermBuilder) naryFunc
	binary   func(tb *smtpipe.TermBuilder) binaryFunc
	unary    func(tb *smtpipe.TermBuilder) unaryFunc
}

func nary(min int, f func(tb *smtpipe.TermBuilder) naryFunc) opSpec {
	return opSpec{min: min, max: -1, nary: f}
}

func binary(f func(tb *smtpipe.TermBuilder) binaryFunc) opSpec {
	return opSpec{min: 2, max: 2, binary: f}
}

func unary(f func(tb *smtpipe.TermBuilder) unaryFunc) opSpec {
	return opSpec{min: 1, max: 1, unary: f}
}

var builtinOps = map[string]opSpec{
	// core
	"not":      unary(func(tb *smtpipe.TermBuilder) unaryFunc { return tb.Not }),
	"and":      nary(1, func(tb *smtpipe.TermBuilder) naryFunc { return tb.And }),
	"or":       nary(1, func(tb *smtpipe.TermBuilder) naryFunc { return tb.Or }),
	"xor":      nary(2, func(tb *smtpipe.TermBuilder) naryFunc { return tb.Xor }),
	"=>":       nary(2, func(tb *smtpipe.TermBuilder) naryFunc { return tb.Implies }),
	"=":        nary(2, func(tb *smtpipe.TermBuilder) naryFunc { return tb.Eq }),
	"distinct": nary(2, func(tb *smtpipe.TermBuilder) naryFunc { return tb.Distinct }),

	// ints
	"+":   nary(2, func(tb *smtpipe.TermBuilder) naryFunc { return tb.IntAdd }),
	"*":   nary(2, func(tb *smtpipe.TermBuilder) naryFunc { return tb.IntMul }),
	"div": binary(func(tb *smtpipe.TermBuilder) binaryFunc { return tb.IntDiv }),
	"mod": binary(func(tb *smtpipe.TermBuilder) binaryFunc { return tb.IntMod }),
	"abs": unary(func(tb *smtpipe.TermBuilder) unaryFunc { return tb.IntAbs }),
	"<":   nary(2, func(tb *smtpipe.TermBuilder) naryFunc { return tb.IntLt }),
	"<=":  nary(2, func(tb *smtpipe.TermBuilder) naryFunc { return tb.IntLe }),
	">":   nary(2, func(tb *smtpipe.TermBuilder) naryFunc { return tb.IntGt }),
	">=":  nary(2, func(tb *smtpipe.TermBuilder) naryFunc { return tb.IntGe }),

	// bit-vectors
	"bvnot":  unary(func(tb *smtpipe.TermBuilder) unaryFunc { return tb.BVNot }),
	"bvneg":  unary(func(tb *smtpipe.TermBuilder) unaryFunc { return tb.BVNeg }),
	"bvand":  nary(2, func(tb *smtpipe.TermBuilder) naryFunc { return tb.BVAnd }),
	"bvor":   nary(2, func(tb *smtpipe.TermBuilder) naryFunc { return tb.BVOr }),
	"bvxor":  nary(2, func(tb *smtpipe.TermBuilder) naryFunc { return tb.BVXor }),
	"bvadd":  nary(2, func(tb *smtpipe.TermBuilder) naryFunc { return tb.BVAdd }),
	"bvsub":  nary(2, func(tb *smtpipe.TermBuilder) naryFunc { return tb.BVSub }),
	"bvmul":  nary(2, func(tb *smtpipe.TermBuilder) naryFunc { return tb.BVMul }),
	"concat": nary(2, func(tb *smtpipe.TermBuilder) naryFunc { return tb.Concat }),
	"bvudiv": binary(func(tb *smtpipe.TermBuilder) binaryFunc { return tb.BVUDiv }),
	"bvsdiv": binary(func(tb *smtpipe.TermBuilder) binaryFunc { return tb.BVSDiv }),
	"bvurem": binary(func(tb *smtpipe.TermBuilder) binaryFunc { return tb.BVURem }),
	"bvsrem": binary(func(tb *smtpipe.TermBuilder) binaryFunc { return tb.BVSRem }),
	"bvshl":  binary(func(tb *smtpipe.TermBuilder) binaryFunc { return tb.BVShl }),
	"bvlshr": binary(func(tb *smtpipe.TermBuilder) binaryFunc { return tb.BVLShr }),
	"bvashr": binary(func(tb *smtpipe.TermBuilder) binaryFunc { return tb.BVAShr }),
	"bvult":  binary(func(tb *smtpipe.TermBuilder) binaryFunc { return tb.BVULt }),
	"bvule":  binary(func(tb *smtpipe.TermBuilder) binaryFunc { return tb.BVULe }),
	"bvugt":  binary(func(tb *smtpipe.TermBuilder) binaryFunc { return tb.BVUGt }),
	"bvuge":  binary(func(tb *smtpipe.TermBuilder) binaryFunc { return tb.BVUGe }),
	"bvslt":  binary(func(tb *smtpipe.TermBuilder) binaryFunc { return tb.BVSLt }),
	"bvsle":  binary(func(tb *smtpipe.TermBuilder) binaryFunc { return tb.BVSLe }),
	"bvsgt":  binary(func(tb *smtpipe.TermBuilder) binaryFunc { return tb.BVSGt }),
	"bvsge":  binary(func(tb *smtpipe.TermBuilder) binaryFunc { return tb.BVSGe }),
}

// apply builds the application of a builtin function to parsed arguments.
func (p *Parser) apply(d *Datum, name string, args []*smtpipe.Term) (*smtpipe.Term, error) {
	t, err := p.applyBuiltin(d, name, args)
	if err != nil {
		return nil, p.wrap(d, err)
	}
	return t, nil
}

func (p *Parser) applyBuiltin(d *Datum, name string, args []*smtpipe.Term) (*smtpipe.Term, error) {
	switch name {
	case "ite":
		if len(args) != 3 {
			return nil, p.errorf(d, "ite expects 3 arguments, got %d", len(args))
		}
		return p.tb.ITE(args[0], args[1], args[2])
	case "-":
		if len(args) == 1 {
			return p.tb.IntNeg(args[0])
		}
		if len(args) == 0 {
			return nil, p.errorf(d, "- expects at least 1 argument")
		}
		return p.tb.IntSub(args...)
	case "*":
		if err := p.checkLinearMul(d, args); err != nil {
			return nil, err
		}
	case "div", "mod":
		if err := p.checkLinearDiv(d, name, args); err != nil {
			return nil, err
		}
	case "bvnand", "bvnor", "bvxnor":
		return p.negatedBV(d, name, args)
	case "bvcomp":
		return p.bvcomp(d, args)
	}

	spec, ok := builtinOps[name]
	if !ok {
		return nil, p.errorf(d, "symbol %s not declared", smtpipe.QuoteSymbol(name))
	}
	if len(args) < spec.min || (spec.max >= 0 && len(args) > spec.max) {
		return nil, p.errorf(d, "%s expects %s, got %d", name, arityString(spec), len(args))
	}
	switch {
	case spec.unary != nil:
		return spec.unary(p.tb)(args[0])
	case spec.binary != nil:
		return spec.binary(p.tb)(args[0], args[1])
	}
	if len(args) == 1 {
		// (and t) and (or t) are t itself
		return args[0], checkBoolArg(name, args[0])
	}
	return spec.nary(p.tb)(args...)
}

func checkBoolArg(name string, t *smtpipe.Term) error {
	if !t.Sort().IsBool() {
		return &smtpipe.SortError{Op: name, Msg: "expects Bool arguments, got " + t.Sort().String()}
	}
	return nil
}

func arityString(spec opSpec) string {
	switch {
	case spec.max == spec.min && spec.min == 1:
		return "1 argument"
	case spec.max == spec.min:
		return strconv.Itoa(spec.min) + " arguments"
	}
	return "at least " + strconv.Itoa(spec.min) + " arguments"
}

// checkLinearMul rejects products of two non-literal factors in linear logics.
func (p *Parser) checkLinearMul(d *Datum, args []*smtpipe.Term) error {
	l := p.engine.Logic()
	if !l.Linear {
		return nil
	}
	nonConst := 0
	for _, a := range args {
		if !a.IsConst() {
			nonConst++
		}
	}
	if nonConst > 1 {
		return p.errorf(d, "nonlinear multiplication is not allowed in logic %s", l.Name)
	}
	return nil
}

func (p *Parser) checkLinearDiv(d *Datum, name string, args []*smtpipe.Term) error {
	l := p.engine.Logic()
	if !l.Linear || len(args) != 2 {
		return nil
	}
	if !args[1].IsConst() {
		return p.errorf(d, "%s by a non-literal is not allowed in logic %s", name, l.Name)
	}
	return nil
}

func (p *Parser) negatedBV(d *Datum, name string, args []*smtpipe.Term) (*smtpipe.Term, error) {
	if len(args) != 2 {
		return nil, p.errorf(d, "%s expects 2 arguments, got %d", name, len(args))
	}
	var inner *smtpipe.Term
	var err error
	switch name {
	case "bvnand":
		inner, err = p.tb.BVAnd(args...)
	case "bvnor":
		inner, err = p.tb.BVOr(args...)
	default:
		inner, err = p.tb.BVXor(args...)
	}
	if err != nil {
		return nil, err
	}
	return p.tb.BVNot(inner)
}

func (p *Parser) bvcomp(d *Datum, args []*smtpipe.Term) (*smtpipe.Term, error) {
	if len(args) != 2 {
		return nil, p.errorf(d, "bvcomp expects 2 arguments, got %d", len(args))
	}
	if !args[0].Sort().IsBitVec() {
		return nil, &smtpipe.SortError{Op: "bvcomp", Msg: "expects bit-vector arguments, got " + args[0].Sort().String()}
	}
	eq, err := p.tb.Eq(args...)
	if err != nil {
		return nil, err
	}
	return p.tb.ITE(eq, p.tb.BVV(1, 1), p.tb.BVV(0, 1))
}
