package smtpipe

func checkBool(op string, args ...*Term) error {
	for _, a := range args {
		if !a.sort.IsBool() {
			return sortErrorf(op, "expects Bool operands, got %s", a.sort)
		}
	}
	return nil
}

func (tb *TermBuilder) Not(e *Term) (*Term, error) {
	if err := checkBool("not", e); err != nil {
		return nil, err
	}
	if e.kind == TY_BOOL_CONST {
		return tb.BoolVal(!e.boolVal), nil
	}
	if e.kind == TY_BOOL_NOT {
		return e.children[0], nil
	}
	return tb.mk(TY_BOOL_NOT, BoolSort, e), nil
}

// isNegationOf reports whether a is (not b) or b is (not a).
func isNegationOf(a, b *Term) bool {
	return (a.kind == TY_BOOL_NOT && a.children[0] == b) || (b.kind == TY_BOOL_NOT && b.children[0] == a)
}

// naryBool implements and/or: absorbing is the value that decides the result, neutral is dropped.
func (tb *TermBuilder) naryBool(op string, kind int, absorbing bool, args []*Term) (*Term, error) {
	if err := checkBool(op, args...); err != nil {
		return nil, err
	}

	children := make([]*Term, 0, len(args))
	seen := make(map[uintptr]bool)
	for _, c := range flatten(kind, args) {
		if c.kind == TY_BOOL_CONST {
			if c.boolVal == absorbing {
				return tb.BoolVal(absorbing), nil
			}
			continue
		}
		if seen[c.Id()] {
			continue
		}
		seen[c.Id()] = true
		children = append(children, c)
	}

	for i := 0; i < len(children); i++ {
		for j := i + 1; j < len(children); j++ {
			if isNegationOf(children[i], children[j]) {
				return tb.BoolVal(absorbing), nil
			}
		}
	}

	switch len(children) {
	case 0:
		return tb.BoolVal(!absorbing), nil
	case 1:
		return children[0], nil
	}
	return tb.mk(kind, BoolSort, children...), nil
}

func (tb *TermBuilder) And(args ...*Term) (*Term, error) {
	return tb.naryBool("and", TY_BOOL_AND, false, args)
}

func (tb *TermBuilder) Or(args ...*Term) (*Term, error) {
	return tb.naryBool("or", TY_BOOL_OR, true, args)
}

// Xor is left associative over args.
func (tb *TermBuilder) Xor(args ...*Term) (*Term, error) {
	if len(args) < 2 {
		return nil, sortErrorf("xor", "expects at least 2 arguments, got %d", len(args))
	}
	if err := checkBool("xor", args...); err != nil {
		return nil, err
	}

	res := args[0]
	for _, rhs := range args[1:] {
		lhs := res
		switch {
		case lhs.kind == TY_BOOL_CONST && rhs.kind == TY_BOOL_CONST:
			res = tb.BoolVal(lhs.boolVal != rhs.boolVal)
		case lhs == rhs:
			res = tb.False()
		case lhs.IsFalse():
			res = rhs
		case rhs.IsFalse():
			res = lhs
		case lhs.IsTrue():
			res, _ = tb.Not(rhs)
		case rhs.IsTrue():
			res, _ = tb.Not(lhs)
		default:
			res = tb.mk(TY_BOOL_XOR, BoolSort, lhs, rhs)
		}
	}
	return res, nil
}

// Implies is right associative: (=> a b c) is (=> a (=> b c)).
func (tb *TermBuilder) Implies(args ...*Term) (*Term, error) {
	if len(args) < 2 {
		return nil, sortErrorf("=>", "expects at least 2 arguments, got %d", len(args))
	}
	if err := checkBool("=>", args...); err != nil {
		return nil, err
	}

	res := args[len(args)-1]
	for i := len(args) - 2; i >= 0; i-- {
		lhs, rhs := args[i], res
		switch {
		case lhs.IsFalse() || rhs.IsTrue() || lhs == rhs:
			res = tb.True()
		case lhs.IsTrue():
			res = rhs
		case rhs.IsFalse():
			res, _ = tb.Not(lhs)
		default:
			res = tb.mk(TY_BOOL_IMPLIES, BoolSort, lhs, rhs)
		}
	}
	return res, nil
}
