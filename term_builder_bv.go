package smtpipe

func checkBV(op string, args ...*Term) error {
	for _, a := range args {
		if !a.sort.IsBitVec() {
			return sortErrorf(op, "expects bitvector operands, got %s", a.sort)
		}
		if a.sort.Width != args[0].sort.Width {
			return sortErrorf(op, "different sizes %d and %d", args[0].sort.Width, a.sort.Width)
		}
	}
	return nil
}

type bvNaryOp struct {
	op        string
	kind      int
	fold      func(acc, c *BVConst) error
	neutral   func(c *BVConst) bool
	absorbing func(c *BVConst) bool
}

// bvNary flattens args, folds every literal operand into one, and drops the neutral element.
func (tb *TermBuilder) bvNary(o bvNaryOp, args []*Term) (*Term, error) {
	if len(args) < 2 {
		return nil, sortErrorf(o.op, "expects at least 2 arguments, got %d", len(args))
	}
	if err := checkBV(o.op, args...); err != nil {
		return nil, err
	}
	size := args[0].sort.Width

	var acc *BVConst
	children := make([]*Term, 0, len(args))
	for _, c := range flatten(o.kind, args) {
		if c.kind != TY_CONST {
			children = append(children, c)
			continue
		}
		if acc == nil {
			acc = c.bvVal.Copy()
		} else if err := o.fold(acc, c.bvVal); err != nil {
			return nil, err
		}
	}

	if acc != nil {
		if o.absorbing != nil && o.absorbing(acc) {
			return tb.BVConstTerm(acc), nil
		}
		if len(children) == 0 {
			return tb.BVConstTerm(acc), nil
		}
		if !o.neutral(acc) {
			children = append(children, tb.BVConstTerm(acc))
		}
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return tb.mk(o.kind, BitVecSort(size), children...), nil
}

func (tb *TermBuilder) BVAdd(args ...*Term) (*Term, error) {
	return tb.bvNary(bvNaryOp{
		op:      "bvadd",
		kind:    TY_ADD,
		fold:    func(acc, c *BVConst) error { return acc.Add(c) },
		neutral: func(c *BVConst) bool { return c.IsZero() },
	}, args)
}

func (tb *TermBuilder) BVMul(args ...*Term) (*Term, error) {
	return tb.bvNary(bvNaryOp{
		op:        "bvmul",
		kind:      TY_MUL,
		fold:      func(acc, c *BVConst) error { return acc.Mul(c) },
		neutral:   func(c *BVConst) bool { return c.IsOne() },
		absorbing: func(c *BVConst) bool { return c.IsZero() },
	}, args)
}

func (tb *TermBuilder) BVAnd(args ...*Term) (*Term, error) {
	return tb.bvNary(bvNaryOp{
		op:        "bvand",
		kind:      TY_AND,
		fold:      func(acc, c *BVConst) error { return acc.And(c) },
		neutral:   func(c *BVConst) bool { return c.HasAllBitsSet() },
		absorbing: func(c *BVConst) bool { return c.IsZero() },
	}, args)
}

func (tb *TermBuilder) BVOr(args ...*Term) (*Term, error) {
	return tb.bvNary(bvNaryOp{
		op:        "bvor",
		kind:      TY_OR,
		fold:      func(acc, c *BVConst) error { return acc.Or(c) },
		neutral:   func(c *BVConst) bool { return c.IsZero() },
		absorbing: func(c *BVConst) bool { return c.HasAllBitsSet() },
	}, args)
}

func (tb *TermBuilder) BVXor(args ...*Term) (*Term, error) {
	return tb.bvNary(bvNaryOp{
		op:      "bvxor",
		kind:    TY_XOR,
		fold:    func(acc, c *BVConst) error { return acc.Xor(c) },
		neutral: func(c *BVConst) bool { return c.IsZero() },
	}, args)
}

func (tb *TermBuilder) BVSub(args ...*Term) (*Term, error) {
	if len(args) < 2 {
		return nil, sortErrorf("bvsub", "expects at least 2 arguments, got %d", len(args))
	}
	if err := checkBV("bvsub", args...); err != nil {
		return nil, err
	}
	terms := []*Term{args[0]}
	for _, a := range args[1:] {
		n, _ := tb.BVNeg(a)
		terms = append(terms, n)
	}
	return tb.BVAdd(terms...)
}

func (tb *TermBuilder) BVNeg(e *Term) (*Term, error) {
	if err := checkBV("bvneg", e); err != nil {
		return nil, err
	}
	if e.kind == TY_CONST {
		c := e.bvVal.Copy()
		c.Neg()
		return tb.BVConstTerm(c), nil
	}
	if e.kind == TY_NEG {
		return e.children[0], nil
	}
	return tb.mk(TY_NEG, e.sort, e), nil
}

func (tb *TermBuilder) BVNot(e *Term) (*Term, error) {
	if err := checkBV("bvnot", e); err != nil {
		return nil, err
	}
	if e.kind == TY_CONST {
		c := e.bvVal.Copy()
		c.Not()
		return tb.BVConstTerm(c), nil
	}
	if e.kind == TY_NOT {
		return e.children[0], nil
	}
	return tb.mk(TY_NOT, e.sort, e), nil
}

func (tb *TermBuilder) bvBin(op string, kind int, lhs, rhs *Term, fold func(a, b *BVConst) error) (*Term, error) {
	if err := checkBV(op, lhs, rhs); err != nil {
		return nil, err
	}
	if lhs.kind == TY_CONST && rhs.kind == TY_CONST {
		c := lhs.bvVal.Copy()
		if err := fold(c, rhs.bvVal); err != nil {
			return nil, err
		}
		return tb.BVConstTerm(c), nil
	}
	return tb.mk(kind, lhs.sort, lhs, rhs), nil
}

func (tb *TermBuilder) BVUDiv(lhs, rhs *Term) (*Term, error) {
	if rhs.isBVOne() && lhs.sort == rhs.sort {
		return lhs, nil
	}
	return tb.bvBin("bvudiv", TY_UDIV, lhs, rhs, func(a, b *BVConst) error { return a.UDiv(b) })
}

func (tb *TermBuilder) BVSDiv(lhs, rhs *Term) (*Term, error) {
	if rhs.isBVOne() && lhs.sort == rhs.sort {
		return lhs, nil
	}
	return tb.bvBin("bvsdiv", TY_SDIV, lhs, rhs, func(a, b *BVConst) error { return a.SDiv(b) })
}

func (tb *TermBuilder) BVURem(lhs, rhs *Term) (*Term, error) {
	return tb.bvBin("bvurem", TY_UREM, lhs, rhs, func(a, b *BVConst) error { return a.URem(b) })
}

func (tb *TermBuilder) BVSRem(lhs, rhs *Term) (*Term, error) {
	return tb.bvBin("bvsrem", TY_SREM, lhs, rhs, func(a, b *BVConst) error { return a.SRem(b) })
}

func (tb *TermBuilder) BVShl(lhs, rhs *Term) (*Term, error) {
	if rhs.isBVZero() && lhs.sort == rhs.sort {
		return lhs, nil
	}
	return tb.bvBin("bvshl", TY_SHL, lhs, rhs, func(a, b *BVConst) error {
		a.Shl(a.shiftAmount(b))
		return nil
	})
}

func (tb *TermBuilder) BVLShr(lhs, rhs *Term) (*Term, error) {
	if rhs.isBVZero() && lhs.sort == rhs.sort {
		return lhs, nil
	}
	return tb.bvBin("bvlshr", TY_LSHR, lhs, rhs, func(a, b *BVConst) error {
		a.LShr(a.shiftAmount(b))
		return nil
	})
}

func (tb *TermBuilder) BVAShr(lhs, rhs *Term) (*Term, error) {
	if rhs.isBVZero() && lhs.sort == rhs.sort {
		return lhs, nil
	}
	return tb.bvBin("bvashr", TY_ASHR, lhs, rhs, func(a, b *BVConst) error {
		a.AShr(a.shiftAmount(b))
		return nil
	})
}

// Concat places args[0] in the most significant position.
func (tb *TermBuilder) Concat(args ...*Term) (*Term, error) {
	if len(args) < 2 {
		return nil, sortErrorf("concat", "expects at least 2 arguments, got %d", len(args))
	}
	var size uint
	for _, a := range args {
		if !a.sort.IsBitVec() {
			return nil, sortErrorf("concat", "expects bitvector operands, got %s", a.sort)
		}
		size += a.sort.Width
	}

	children := make([]*Term, 0, len(args))
	for _, c := range flatten(TY_CONCAT, args) {
		last := len(children) - 1
		if c.kind == TY_CONST && last >= 0 && children[last].kind == TY_CONST {
			merged := children[last].bvVal.Copy()
			merged.Concat(c.bvVal)
			children[last] = tb.BVConstTerm(merged)
			continue
		}
		children = append(children, c)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return tb.mk(TY_CONCAT, BitVecSort(size), children...), nil
}

func (tb *TermBuilder) Extract(e *Term, high, low uint) (*Term, error) {
	if err := checkBV("extract", e); err != nil {
		return nil, err
	}
	if high < low || high >= e.sort.Width {
		return nil, sortErrorf("extract", "invalid range [%d:%d] on a bitvector of size %d", high, low, e.sort.Width)
	}
	if low == 0 && high == e.sort.Width-1 {
		return e, nil
	}
	if e.kind == TY_CONST {
		return tb.BVConstTerm(e.bvVal.Slice(high, low)), nil
	}
	if e.kind == TY_EXTRACT {
		inner := e.children[0]
		base := e.indices[1]
		return tb.Extract(inner, high+base, low+base)
	}
	return tb.getOrCreate(&Term{
		kind:     TY_EXTRACT,
		sort:     BitVecSort(high - low + 1),
		children: []*Term{e},
		indices:  []uint{high, low},
	}), nil
}

func (tb *TermBuilder) extend(op string, kind int, e *Term, n uint, fold func(c *BVConst)) (*Term, error) {
	if err := checkBV(op, e); err != nil {
		return nil, err
	}
	if n == 0 {
		return e, nil
	}
	if e.kind == TY_CONST {
		c := e.bvVal.Copy()
		fold(c)
		return tb.BVConstTerm(c), nil
	}
	return tb.getOrCreate(&Term{
		kind:     kind,
		sort:     BitVecSort(e.sort.Width + n),
		children: []*Term{e},
		indices:  []uint{n},
	}), nil
}

func (tb *TermBuilder) ZExt(e *Term, n uint) (*Term, error) {
	return tb.extend("zero_extend", TY_ZEXT, e, n, func(c *BVConst) { c.ZExt(n) })
}

func (tb *TermBuilder) SExt(e *Term, n uint) (*Term, error) {
	return tb.extend("sign_extend", TY_SEXT, e, n, func(c *BVConst) { c.SExt(n) })
}

func (tb *TermBuilder) bvCmp(op string, kind int, lhs, rhs *Term, reflexive bool, holds func(a, b *BVConst) (bool, error)) (*Term, error) {
	if err := checkBV(op, lhs, rhs); err != nil {
		return nil, err
	}
	if lhs.kind == TY_CONST && rhs.kind == TY_CONST {
		v, err := holds(lhs.bvVal, rhs.bvVal)
		if err != nil {
			return nil, err
		}
		return tb.BoolVal(v), nil
	}
	if lhs == rhs {
		return tb.BoolVal(reflexive), nil
	}
	return tb.mk(kind, BoolSort, lhs, rhs), nil
}

func (tb *TermBuilder) BVULt(lhs, rhs *Term) (*Term, error) {
	return tb.bvCmp("bvult", TY_ULT, lhs, rhs, false, func(a, b *BVConst) (bool, error) { return a.ULt(b) })
}

func (tb *TermBuilder) BVULe(lhs, rhs *Term) (*Term, error) {
	return tb.bvCmp("bvule", TY_ULE, lhs, rhs, true, func(a, b *BVConst) (bool, error) { return a.ULe(b) })
}

func (tb *TermBuilder) BVUGt(lhs, rhs *Term) (*Term, error) {
	return tb.bvCmp("bvugt", TY_UGT, lhs, rhs, false, func(a, b *BVConst) (bool, error) { return b.ULt(a) })
}

func (tb *TermBuilder) BVUGe(lhs, rhs *Term) (*Term, error) {
	return tb.bvCmp("bvuge", TY_UGE, lhs, rhs, true, func(a, b *BVConst) (bool, error) { return b.ULe(a) })
}

func (tb *TermBuilder) BVSLt(lhs, rhs *Term) (*Term, error) {
	return tb.bvCmp("bvslt", TY_SLT, lhs, rhs, false, func(a, b *BVConst) (bool, error) { return a.SLt(b) })
}

func (tb *TermBuilder) BVSLe(lhs, rhs *Term) (*Term, error) {
	return tb.bvCmp("bvsle", TY_SLE, lhs, rhs, true, func(a, b *BVConst) (bool, error) { return a.SLe(b) })
}

func (tb *TermBuilder) BVSGt(lhs, rhs *Term) (*Term, error) {
	return tb.bvCmp("bvsgt", TY_SGT, lhs, rhs, false, func(a, b *BVConst) (bool, error) { return b.SLt(a) })
}

func (tb *TermBuilder) BVSGe(lhs, rhs *Term) (*Term, error) {
	return tb.bvCmp("bvsge", TY_SGE, lhs, rhs, true, func(a, b *BVConst) (bool, error) { return b.SLe(a) })
}
