package smtpipe

import (
	"testing"
)

func TestSolverSat(t *testing.T) {
	tb := NewTermBuilder()
	s := NewZ3Solver(tb)

	x := tb.Sym("x", IntSort)
	c, _ := tb.Eq(x, tb.IntVal(5))
	if err := s.Add(c); err != nil {
		t.Error(err)
		return
	}
	if r := s.CheckSat(); r != RESULT_SAT {
		t.Errorf("expected sat, got %s", ResultString(r))
		return
	}
	v, err := s.Eval(x)
	if isErr(t, err) {
		return
	}
	if !v.isIntConst(5) {
		t.Errorf("expected 5, got %s", v)
	}
}

func TestSolverUnsat(t *testing.T) {
	tb := NewTermBuilder()
	s := NewZ3Solver(tb)

	x := tb.Sym("x", IntSort)
	c1, _ := tb.Eq(x, tb.IntVal(5))
	c2, _ := tb.Eq(x, tb.IntVal(10))
	s.Add(c1)
	s.Add(c2)
	if r := s.CheckSat(); r != RESULT_UNSAT {
		t.Errorf("expected unsat, got %s", ResultString(r))
	}
	if s.HasModel() {
		t.Error("an unsat check should not leave a model")
	}
	if _, err := s.Eval(x); err == nil {
		t.Error("eval without a model should fail")
	}
}

func TestSolverBV(t *testing.T) {
	tb := NewTermBuilder()
	s := NewZ3Solver(tb)

	a := tb.BVS("a", 8)
	sum, _ := tb.BVAdd(a, tb.BVV(1, 8))
	c, _ := tb.Eq(sum, tb.BVV(0, 8))
	s.Add(c)
	if r := s.CheckSat(); r != RESULT_SAT {
		t.Errorf("expected sat, got %s", ResultString(r))
		return
	}
	v, err := s.Eval(a)
	if isErr(t, err) {
		return
	}
	if v.String() != "#xff" {
		t.Errorf("expected #xff, got %s", v)
	}
}

func TestSolverPushPop(t *testing.T) {
	tb := NewTermBuilder()
	s := NewZ3Solver(tb)

	x := tb.Sym("x", IntSort)
	gt, _ := tb.IntGt(x, tb.IntVal(0))
	lt, _ := tb.IntLt(x, tb.IntVal(0))
	s.Add(gt)

	s.Push(1)
	s.Add(lt)
	if len(s.Assertions()) != 2 || s.Depth() != 1 {
		t.Errorf("unexpected assertion stack %v", s.Assertions())
	}
	if r := s.CheckSat(); r != RESULT_UNSAT {
		t.Errorf("expected unsat, got %s", ResultString(r))
	}

	if err := s.Pop(1); isErr(t, err) {
		return
	}
	if r := s.CheckSat(); r != RESULT_SAT {
		t.Errorf("expected sat, got %s", ResultString(r))
	}
	if err := s.Pop(1); err == nil {
		t.Error("popping below the base level should fail")
	}
}

func TestSolverAssumptions(t *testing.T) {
	tb := NewTermBuilder()
	s := NewZ3Solver(tb)

	p := tb.Sym("p", BoolSort)
	s.Add(p)
	np, _ := tb.Not(p)
	if r := s.CheckSat(np); r != RESULT_UNSAT {
		t.Errorf("expected unsat, got %s", ResultString(r))
	}
	if len(s.Assertions()) != 1 {
		t.Error("assumptions should not be retained")
	}
	if r := s.CheckSat(tb.IntVal(1)); r != RESULT_ERROR {
		t.Errorf("an Int assumption should be an error, got %s", ResultString(r))
	}
}

type unknownBackend struct{}

func (unknownBackend) check(assertions []*Term) (int, string) {
	return RESULT_UNKNOWN, "timeout"
}

func (unknownBackend) eval(tb *TermBuilder, t *Term) (*Term, error) {
	return nil, nil
}

func TestSolverUnknown(t *testing.T) {
	tb := NewTermBuilder()
	s := newSolver(tb, unknownBackend{})

	s.Add(tb.Sym("p", BoolSort))
	if r := s.CheckSat(); r != RESULT_UNKNOWN || s.ReasonUnknown() != "timeout" {
		t.Errorf("unexpected %s (%s)", ResultString(r), s.ReasonUnknown())
	}

	// a trivially false query never reaches the backend
	s.Add(tb.False())
	if r := s.CheckSat(); r != RESULT_UNSAT {
		t.Errorf("expected unsat, got %s", ResultString(r))
	}
}

func TestConvertZ3Literal(t *testing.T) {
	tb := NewTermBuilder()

	v, err := convertZ3Literal(tb, "(- 12)", IntSort)
	if isErr(t, err) {
		return
	}
	if !v.isIntConst(-12) {
		t.Errorf("unexpected %s", v)
	}
	v, _ = convertZ3Literal(tb, "#b101", BitVecSort(3))
	if v.String() != "#b101" {
		t.Errorf("unexpected %s", v)
	}
	if _, err := convertZ3Literal(tb, "(ite p 1 2)", IntSort); err == nil {
		t.Error("non literal values should be rejected")
	}
}
