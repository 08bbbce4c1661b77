package smtpipe

import "math/big"

func checkInt(op string, args ...*Term) error {
	for _, a := range args {
		if !a.sort.IsInt() {
			return sortErrorf(op, "expects Int operands, got %s", a.sort)
		}
	}
	return nil
}

func (tb *TermBuilder) IntAdd(args ...*Term) (*Term, error) {
	if len(args) < 1 {
		return nil, sortErrorf("+", "expects at least 1 argument")
	}
	if err := checkInt("+", args...); err != nil {
		return nil, err
	}

	children := make([]*Term, 0, len(args))
	sum := big.NewInt(0)
	for _, c := range flatten(TY_INT_ADD, args) {
		if c.kind == TY_INT_CONST {
			sum.Add(sum, c.intVal)
			continue
		}
		children = append(children, c)
	}
	if sum.Sign() != 0 {
		children = append(children, tb.IntValBig(sum))
	}

	switch len(children) {
	case 0:
		return tb.IntVal(0), nil
	case 1:
		return children[0], nil
	}
	return tb.mk(TY_INT_ADD, IntSort, children...), nil
}

// IntSub is (- a b ...) with two or more operands; use IntNeg for unary minus.
func (tb *TermBuilder) IntSub(args ...*Term) (*Term, error) {
	if len(args) < 2 {
		return nil, sortErrorf("-", "expects at least 2 arguments, got %d", len(args))
	}
	if err := checkInt("-", args...); err != nil {
		return nil, err
	}

	terms := []*Term{args[0]}
	for _, a := range args[1:] {
		n, _ := tb.IntNeg(a)
		terms = append(terms, n)
	}
	return tb.IntAdd(terms...)
}

func (tb *TermBuilder) IntNeg(e *Term) (*Term, error) {
	if err := checkInt("-", e); err != nil {
		return nil, err
	}
	if e.kind == TY_INT_CONST {
		return tb.IntValBig(new(big.Int).Neg(e.intVal)), nil
	}
	if e.kind == TY_INT_NEG {
		return e.children[0], nil
	}
	return tb.mk(TY_INT_NEG, IntSort, e), nil
}

func (tb *TermBuilder) IntMul(args ...*Term) (*Term, error) {
	if len(args) < 2 {
		return nil, sortErrorf("*", "expects at least 2 arguments, got %d", len(args))
	}
	if err := checkInt("*", args...); err != nil {
		return nil, err
	}

	children := make([]*Term, 0, len(args))
	prod := big.NewInt(1)
	for _, c := range flatten(TY_INT_MUL, args) {
		if c.kind == TY_INT_CONST {
			prod.Mul(prod, c.intVal)
			continue
		}
		children = append(children, c)
	}
	if prod.Sign() == 0 {
		return tb.IntVal(0), nil
	}
	if prod.Cmp(one) != 0 {
		children = append(children, tb.IntValBig(prod))
	}

	switch len(children) {
	case 0:
		return tb.IntVal(1), nil
	case 1:
		return children[0], nil
	}
	return tb.mk(TY_INT_MUL, IntSort, children...), nil
}

// IntDiv is Euclidean division. Division by a literal zero is left uninterpreted.
func (tb *TermBuilder) IntDiv(lhs, rhs *Term) (*Term, error) {
	if err := checkInt("div", lhs, rhs); err != nil {
		return nil, err
	}
	if lhs.kind == TY_INT_CONST && rhs.kind == TY_INT_CONST && rhs.intVal.Sign() != 0 {
		return tb.IntValBig(new(big.Int).Div(lhs.intVal, rhs.intVal)), nil
	}
	if rhs.isIntConst(1) {
		return lhs, nil
	}
	return tb.mk(TY_INT_DIV, IntSort, lhs, rhs), nil
}

// IntMod is the Euclidean remainder, always non-negative for a non-zero divisor.
func (tb *TermBuilder) IntMod(lhs, rhs *Term) (*Term, error) {
	if err := checkInt("mod", lhs, rhs); err != nil {
		return nil, err
	}
	if lhs.kind == TY_INT_CONST && rhs.kind == TY_INT_CONST && rhs.intVal.Sign() != 0 {
		return tb.IntValBig(new(big.Int).Mod(lhs.intVal, rhs.intVal)), nil
	}
	if rhs.isIntConst(1) || rhs.isIntConst(-1) {
		return tb.IntVal(0), nil
	}
	return tb.mk(TY_INT_MOD, IntSort, lhs, rhs), nil
}

func (tb *TermBuilder) IntAbs(e *Term) (*Term, error) {
	if err := checkInt("abs", e); err != nil {
		return nil, err
	}
	if e.kind == TY_INT_CONST {
		return tb.IntValBig(new(big.Int).Abs(e.intVal)), nil
	}
	if e.kind == TY_INT_ABS {
		return e, nil
	}
	return tb.mk(TY_INT_ABS, IntSort, e), nil
}

// intCmp builds a chainable comparison: (< a b c) is (and (< a b) (< b c)).
func (tb *TermBuilder) intCmp(op string, kind int, holds func(c int) bool, args []*Term) (*Term, error) {
	if len(args) < 2 {
		return nil, sortErrorf(op, "expects at least 2 arguments, got %d", len(args))
	}
	if err := checkInt(op, args...); err != nil {
		return nil, err
	}

	conj := make([]*Term, 0, len(args)-1)
	for i := 1; i < len(args); i++ {
		lhs, rhs := args[i-1], args[i]
		switch {
		case lhs.kind == TY_INT_CONST && rhs.kind == TY_INT_CONST:
			conj = append(conj, tb.BoolVal(holds(lhs.intVal.Cmp(rhs.intVal))))
		case lhs == rhs:
			conj = append(conj, tb.BoolVal(holds(0)))
		default:
			conj = append(conj, tb.mk(kind, BoolSort, lhs, rhs))
		}
	}
	return tb.And(conj...)
}

func (tb *TermBuilder) IntLt(args ...*Term) (*Term, error) {
	return tb.intCmp("<", TY_INT_LT, func(c int) bool { return c < 0 }, args)
}

func (tb *TermBuilder) IntLe(args ...*Term) (*Term, error) {
	return tb.intCmp("<=", TY_INT_LE, func(c int) bool { return c <= 0 }, args)
}

func (tb *TermBuilder) IntGt(args ...*Term) (*Term, error) {
	return tb.intCmp(">", TY_INT_GT, func(c int) bool { return c > 0 }, args)
}

func (tb *TermBuilder) IntGe(args ...*Term) (*Term, error) {
	return tb.intCmp(">=", TY_INT_GE, func(c int) bool { return c >= 0 }, args)
}
