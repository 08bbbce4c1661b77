package smtpipe

import "testing"

func TestSubstitute(t *testing.T) {
	tb := NewTermBuilder()
	x := tb.Sym("x", IntSort)
	y := tb.Sym("y", IntSort)

	sum, _ := tb.IntAdd(x, y)
	e, _ := tb.IntGt(sum, tb.IntVal(3))

	r, err := tb.Substitute(e, map[*Term]*Term{x: tb.IntVal(1), y: tb.IntVal(2)})
	if isErr(t, err) {
		return
	}
	if !r.IsFalse() {
		t.Errorf("1 + 2 > 3 should fold to false, got %s", r)
	}

	r, _ = tb.Substitute(e, map[*Term]*Term{x: y})
	if r.String() != "(> (+ y y) 3)" {
		t.Errorf("unexpected %s", r)
	}

	if _, err := tb.Substitute(e, map[*Term]*Term{x: tb.True()}); err == nil {
		t.Error("replacing an Int with a Bool should fail")
	}
}

func TestSubstituteMacro(t *testing.T) {
	tb := NewTermBuilder()
	p := tb.Var("p", BitVecSort(8))
	body, _ := tb.BVAdd(p, p)

	r, err := tb.Substitute(body, map[*Term]*Term{p: tb.BVV(3, 8)})
	if isErr(t, err) {
		return
	}
	if r.String() != "#x06" {
		t.Errorf("unexpected %s", r)
	}
	// a symbol of the same name is not the bound variable
	r, _ = tb.Substitute(body, map[*Term]*Term{tb.BVS("p", 8): tb.BVV(3, 8)})
	if r != body {
		t.Errorf("unexpected %s", r)
	}
}

func TestEvalPartialModel(t *testing.T) {
	tb := NewTermBuilder()
	a := tb.BVS("a", 4)
	b := tb.BVS("b", 4)

	ex, _ := tb.Extract(a, 1, 0)
	c, _ := tb.Concat(ex, b)
	r, err := tb.Eval(c, map[*Term]*Term{a: tb.BVV(0xe, 4)})
	if isErr(t, err) {
		return
	}
	if r.String() != "(concat #b10 b)" {
		t.Errorf("unexpected %s", r)
	}
}
