package smtpipe

import "fmt"

// Substitute rebuilds t replacing every symbol or bound variable found in mapping.
// Replacements must have the sort of the term they replace.
func (tb *TermBuilder) Substitute(t *Term, mapping map[*Term]*Term) (*Term, error) {
	for from, to := range mapping {
		if from.sort != to.sort {
			return nil, sortErrorf("substitute", "%s of sort %s replaced by a term of sort %s", from.name, from.sort, to.sort)
		}
	}
	cache := make(map[uintptr]*Term)
	return tb.substitute(t, cache, mapping)
}

func (tb *TermBuilder) substitute(t *Term, cache map[uintptr]*Term, mapping map[*Term]*Term) (*Term, error) {
	if r, ok := cache[t.Id()]; ok {
		return r, nil
	}
	if r, ok := mapping[t]; ok {
		return r, nil
	}
	if t.IsLeaf() {
		return t, nil
	}

	children := make([]*Term, len(t.children))
	changed := false
	for i, c := range t.children {
		nc, err := tb.substitute(c, cache, mapping)
		if err != nil {
			return nil, err
		}
		children[i] = nc
		changed = changed || nc != c
	}

	result := t
	if changed {
		var err error
		result, err = tb.rebuild(t, children)
		if err != nil {
			return nil, err
		}
	}
	cache[t.Id()] = result
	return result, nil
}

// Eval replaces the symbols of t with the literals in model and folds the result.
// Symbols missing from the model are left in place, so the result is a literal
// only when the model covers every free symbol.
func (tb *TermBuilder) Eval(t *Term, model map[*Term]*Term) (*Term, error) {
	return tb.Substitute(t, model)
}

// rebuild constructs a term of t's kind over new children, going through the
// simplifying constructors.
func (tb *TermBuilder) rebuild(t *Term, c []*Term) (*Term, error) {
	switch t.kind {
	case TY_BOOL_NOT:
		return tb.Not(c[0])
	case TY_BOOL_AND:
		return tb.And(c...)
	case TY_BOOL_OR:
		return tb.Or(c...)
	case TY_BOOL_XOR:
		return tb.Xor(c...)
	case TY_BOOL_IMPLIES:
		return tb.Implies(c...)
	case TY_ITE:
		return tb.ITE(c[0], c[1], c[2])
	case TY_EQ:
		return tb.Eq(c...)

	case TY_INT_ADD:
		return tb.IntAdd(c...)
	case TY_INT_MUL:
		return tb.IntMul(c...)
	case TY_INT_NEG:
		return tb.IntNeg(c[0])
	case TY_INT_DIV:
		return tb.IntDiv(c[0], c[1])
	case TY_INT_MOD:
		return tb.IntMod(c[0], c[1])
	case TY_INT_ABS:
		return tb.IntAbs(c[0])
	case TY_INT_LT:
		return tb.IntLt(c...)
	case TY_INT_LE:
		return tb.IntLe(c...)
	case TY_INT_GT:
		return tb.IntGt(c...)
	case TY_INT_GE:
		return tb.IntGe(c...)

	case TY_NOT:
		return tb.BVNot(c[0])
	case TY_NEG:
		return tb.BVNeg(c[0])
	case TY_AND:
		return tb.BVAnd(c...)
	case TY_OR:
		return tb.BVOr(c...)
	case TY_XOR:
		return tb.BVXor(c...)
	case TY_ADD:
		return tb.BVAdd(c...)
	case TY_MUL:
		return tb.BVMul(c...)
	case TY_UDIV:
		return tb.BVUDiv(c[0], c[1])
	case TY_SDIV:
		return tb.BVSDiv(c[0], c[1])
	case TY_UREM:
		return tb.BVURem(c[0], c[1])
	case TY_SREM:
		return tb.BVSRem(c[0], c[1])
	case TY_SHL:
		return tb.BVShl(c[0], c[1])
	case TY_LSHR:
		return tb.BVLShr(c[0], c[1])
	case TY_ASHR:
		return tb.BVAShr(c[0], c[1])
	case TY_CONCAT:
		return tb.Concat(c...)
	case TY_EXTRACT:
		return tb.Extract(c[0], t.indices[0], t.indices[1])
	case TY_ZEXT:
		return tb.ZExt(c[0], t.indices[0])
	case TY_SEXT:
		return tb.SExt(c[0], t.indices[0])
	case TY_ULT:
		return tb.BVULt(c[0], c[1])
	case TY_ULE:
		return tb.BVULe(c[0], c[1])
	case TY_UGT:
		return tb.BVUGt(c[0], c[1])
	case TY_UGE:
		return tb.BVUGe(c[0], c[1])
	case TY_SLT:
		return tb.BVSLt(c[0], c[1])
	case TY_SLE:
		return tb.BVSLe(c[0], c[1])
	case TY_SGT:
		return tb.BVSGt(c[0], c[1])
	case TY_SGE:
		return tb.BVSGe(c[0], c[1])
	}
	return nil, fmt.Errorf("rebuild: unexpected term kind %d", t.kind)
}
