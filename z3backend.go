package smtpipe

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/aclements/go-z3/z3"
)

type z3backend struct {
	ctx    *z3.Context
	cfg    *z3.Config
	solver *z3.Solver

	cache     map[uintptr]z3.Value
	lastModel *z3.Model
}

func newZ3Backend() *z3backend {
	cfg := z3.NewContextConfig()
	ctx := z3.NewContext(cfg)
	return &z3backend{
		ctx:    ctx,
		cfg:    cfg,
		solver: z3.NewSolver(ctx),
	}
}

func (s *z3backend) check(assertions []*Term) (int, string) {
	s.solver.Reset()
	s.cache = make(map[uintptr]z3.Value)
	s.lastModel = nil

	for _, a := range assertions {
		s.solver.Assert(s.convert(a).(z3.Bool))
	}

	r, err := s.solver.Check()
	if err != nil {
		return RESULT_UNKNOWN, err.Error()
	}
	if r {
		s.lastModel = s.solver.Model()
		return RESULT_SAT, ""
	}
	return RESULT_UNSAT, ""
}

func (s *z3backend) eval(tb *TermBuilder, t *Term) (*Term, error) {
	if s.lastModel == nil {
		return nil, fmt.Errorf("no model available")
	}
	v := s.lastModel.Eval(s.convert(t), true)
	if v == nil {
		return nil, fmt.Errorf("unable to evaluate %s", t)
	}
	return convertZ3Literal(tb, v.String(), t.Sort())
}

// convertZ3Literal reads back a literal printed by Z3.
func convertZ3Literal(tb *TermBuilder, s string, sort Sort) (*Term, error) {
	switch sort.Kind {
	case SORT_BOOL:
		switch s {
		case "true":
			return tb.True(), nil
		case "false":
			return tb.False(), nil
		}
	case SORT_INT:
		neg := false
		if strings.HasPrefix(s, "(- ") && strings.HasSuffix(s, ")") {
			neg = true
			s = strings.TrimSpace(s[3 : len(s)-1])
		}
		if v, ok := new(big.Int).SetString(s, 10); ok {
			if neg {
				v.Neg(v)
			}
			return tb.IntValBig(v), nil
		}
	case SORT_BITVEC:
		var c *BVConst
		switch {
		case strings.HasPrefix(s, "#x"):
			c = MakeBVConstFromString(s[2:], 16, sort.Width)
		case strings.HasPrefix(s, "#b"):
			c = MakeBVConstFromString(s[2:], 2, sort.Width)
		}
		if c != nil {
			return tb.BVConstTerm(c), nil
		}
	}
	return nil, fmt.Errorf("model value %s is not a literal of sort %s", s, sort)
}

func (s *z3backend) sort(srt Sort) z3.Sort {
	switch srt.Kind {
	case SORT_BOOL:
		return s.ctx.BoolSort()
	case SORT_INT:
		return s.ctx.IntSort()
	case SORT_BITVEC:
		return s.ctx.BVSort(int(srt.Width))
	}
	panic("invalid sort")
}

func (s *z3backend) bools(ts []*Term) []z3.Bool {
	res := make([]z3.Bool, 0, len(ts))
	for _, t := range ts {
		res = append(res, s.convert(t).(z3.Bool))
	}
	return res
}

func (s *z3backend) ints(ts []*Term) []z3.Int {
	res := make([]z3.Int, 0, len(ts))
	for _, t := range ts {
		res = append(res, s.convert(t).(z3.Int))
	}
	return res
}

func (s *z3backend) bvs(ts []*Term) []z3.BV {
	res := make([]z3.BV, 0, len(ts))
	for _, t := range ts {
		res = append(res, s.convert(t).(z3.BV))
	}
	return res
}

func (s *z3backend) convert(e *Term) z3.Value {
	if v, ok := s.cache[e.Id()]; ok {
		return v
	}

	var result z3.Value
	switch e.kind {
	case TY_SYM:
		result = s.ctx.Const(e.name, s.sort(e.sort))
	case TY_BOOL_CONST:
		result = s.ctx.FromBool(e.boolVal)
	case TY_INT_CONST:
		result = s.ctx.FromBigInt(e.intVal, s.ctx.IntSort())
	case TY_CONST:
		result = s.ctx.FromBigInt(e.bvVal.value, s.ctx.BVSort(int(e.sort.Width)))

	case TY_BOOL_NOT:
		result = s.convert(e.children[0]).(z3.Bool).Not()
	case TY_BOOL_AND:
		c := s.bools(e.children)
		result = c[0].And(c[1:]...)
	case TY_BOOL_OR:
		c := s.bools(e.children)
		result = c[0].Or(c[1:]...)
	case TY_BOOL_XOR:
		c := s.bools(e.children)
		result = c[0].Xor(c[1])
	case TY_BOOL_IMPLIES:
		c := s.bools(e.children)
		result = c[0].Implies(c[1])
	case TY_ITE:
		guard := s.convert(e.children[0]).(z3.Bool)
		iftrue := s.convert(e.children[1])
		iffalse := s.convert(e.children[2])
		result = guard.IfThenElse(iftrue, iffalse)
	case TY_EQ:
		lhs := s.convert(e.children[0])
		rhs := s.convert(e.children[1])
		switch l := lhs.(type) {
		case z3.Bool:
			result = l.Eq(rhs.(z3.Bool))
		case z3.Int:
			result = l.Eq(rhs.(z3.Int))
		case z3.BV:
			result = l.Eq(rhs.(z3.BV))
		default:
			panic("invalid equality operands")
		}

	case TY_INT_ADD:
		c := s.ints(e.children)
		result = c[0].Add(c[1:]...)
	case TY_INT_MUL:
		c := s.ints(e.children)
		result = c[0].Mul(c[1:]...)
	case TY_INT_NEG:
		result = s.convert(e.children[0]).(z3.Int).Neg()
	case TY_INT_DIV:
		c := s.ints(e.children)
		result = c[0].Div(c[1])
	case TY_INT_MOD:
		c := s.ints(e.children)
		result = c[0].Mod(c[1])
	case TY_INT_ABS:
		x := s.convert(e.children[0]).(z3.Int)
		zero := s.ctx.FromInt(0, s.ctx.IntSort()).(z3.Int)
		result = x.GE(zero).IfThenElse(x, x.Neg())
	case TY_INT_LT:
		c := s.ints(e.children)
		result = c[0].LT(c[1])
	case TY_INT_LE:
		c := s.ints(e.children)
		result = c[0].LE(c[1])
	case TY_INT_GT:
		c := s.ints(e.children)
		result = c[0].GT(c[1])
	case TY_INT_GE:
		c := s.ints(e.children)
		result = c[0].GE(c[1])

	case TY_EXTRACT:
		child := s.convert(e.children[0]).(z3.BV)
		result = child.Extract(int(e.indices[0]), int(e.indices[1]))
	case TY_CONCAT:
		c := s.bvs(e.children)
		res := c[0]
		for i := 1; i < len(c); i++ {
			res = res.Concat(c[i])
		}
		result = res
	case TY_ZEXT:
		child := s.convert(e.children[0]).(z3.BV)
		result = child.ZeroExtend(int(e.indices[0]))
	case TY_SEXT:
		child := s.convert(e.children[0]).(z3.BV)
		result = child.SignExtend(int(e.indices[0]))
	case TY_NOT:
		result = s.convert(e.children[0]).(z3.BV).Not()
	case TY_NEG:
		result = s.convert(e.children[0]).(z3.BV).Neg()
	case TY_AND, TY_OR, TY_XOR, TY_ADD, TY_MUL:
		c := s.bvs(e.children)
		res := c[0]
		for i := 1; i < len(c); i++ {
			switch e.kind {
			case TY_AND:
				res = res.And(c[i])
			case TY_OR:
				res = res.Or(c[i])
			case TY_XOR:
				res = res.Xor(c[i])
			case TY_ADD:
				res = res.Add(c[i])
			case TY_MUL:
				res = res.Mul(c[i])
			}
		}
		result = res
	case TY_SHL:
		c := s.bvs(e.children)
		result = c[0].Lsh(c[1])
	case TY_LSHR:
		c := s.bvs(e.children)
		result = c[0].URsh(c[1])
	case TY_ASHR:
		c := s.bvs(e.children)
		result = c[0].SRsh(c[1])
	case TY_SDIV:
		c := s.bvs(e.children)
		result = c[0].SDiv(c[1])
	case TY_UDIV:
		c := s.bvs(e.children)
		result = c[0].UDiv(c[1])
	case TY_SREM:
		c := s.bvs(e.children)
		result = c[0].SRem(c[1])
	case TY_UREM:
		c := s.bvs(e.children)
		result = c[0].URem(c[1])
	case TY_ULT:
		c := s.bvs(e.children)
		result = c[0].ULT(c[1])
	case TY_ULE:
		c := s.bvs(e.children)
		result = c[0].ULE(c[1])
	case TY_UGT:
		c := s.bvs(e.children)
		result = c[0].UGT(c[1])
	case TY_UGE:
		c := s.bvs(e.children)
		result = c[0].UGE(c[1])
	case TY_SLT:
		c := s.bvs(e.children)
		result = c[0].SLT(c[1])
	case TY_SLE:
		c := s.bvs(e.children)
		result = c[0].SLE(c[1])
	case TY_SGT:
		c := s.bvs(e.children)
		result = c[0].SGT(c[1])
	case TY_SGE:
		c := s.bvs(e.children)
		result = c[0].SGE(c[1])
	default:
		panic("invalid term kind")
	}

	s.cache[e.Id()] = result
	return result
}
