package smtpipe

import (
	"sync"
	"testing"
)

func isErr(t *testing.T, err error) bool {
	if err != nil {
		t.Error(err)
		return true
	}
	return false
}

func TestCache1(t *testing.T) {
	tb := NewTermBuilder()

	s1 := tb.BVS("s1", 32)
	s2 := tb.BVS("s2", 32)
	e, err := tb.BVAdd(s1, s2)
	if isErr(t, err) {
		return
	}

	ss1 := tb.BVS("s1", 32)
	if s1.Id() != ss1.Id() {
		t.Error("should be the same object")
		return
	}
	ee, _ := tb.BVAdd(ss1, s2)
	if e.Id() != ee.Id() {
		t.Error("should be the same object")
		return
	}

	other := tb.BVS("s1", 16)
	if other.Id() == s1.Id() {
		t.Error("symbols of different sorts should differ")
	}
	if tb.Sym("x", IntSort) == tb.Var("x", IntSort) {
		t.Error("bound variables and constants should differ")
	}
}

func TestCacheStats(t *testing.T) {
	tb := NewTermBuilder()
	tb.IntVal(1)
	tb.IntVal(1)
	tb.IntVal(2)

	stats := tb.GetStats()
	if stats.CachedTerms != 2 || stats.CacheHits != 1 || stats.CacheLookups != 3 {
		t.Errorf("unexpected stats %s", stats)
	}
}

func TestCacheConcurrent(t *testing.T) {
	tb := NewTermBuilder()
	res := make([]*Term, 8)

	wg := sync.WaitGroup{}
	for i := range res {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			x := tb.Sym("x", IntSort)
			res[i], _ = tb.IntAdd(x, tb.IntVal(1))
		}(i)
	}
	wg.Wait()

	for _, r := range res[1:] {
		if r != res[0] {
			t.Error("concurrent constructions should be interned once")
		}
	}
}

func TestBool1(t *testing.T) {
	tb := NewTermBuilder()
	a := tb.Sym("a", BoolSort)
	b := tb.Sym("b", BoolSort)

	na, _ := tb.Not(a)
	e, err := tb.And(a, b, na)
	if isErr(t, err) {
		return
	}
	if !e.IsFalse() {
		t.Errorf("a and not a should be false, got %s", e)
	}

	e, _ = tb.Or(a, na)
	if !e.IsTrue() {
		t.Errorf("a or not a should be true, got %s", e)
	}

	e, _ = tb.And(a, tb.True(), a)
	if e != a {
		t.Errorf("expected a, got %s", e)
	}

	nna, _ := tb.Not(na)
	if nna != a {
		t.Error("double negation should cancel")
	}

	e, _ = tb.Eq(a, tb.False())
	if e != na {
		t.Errorf("(= a false) should be (not a), got %s", e)
	}

	e, _ = tb.Implies(tb.False(), a)
	if !e.IsTrue() {
		t.Errorf("false implies anything, got %s", e)
	}

	e, _ = tb.Xor(a, a)
	if !e.IsFalse() {
		t.Errorf("a xor a should be false, got %s", e)
	}

	if _, err := tb.And(a, tb.IntVal(1)); err == nil {
		t.Error("and over an Int should fail")
	}
}

func TestFlatten(t *testing.T) {
	tb := NewTermBuilder()
	a := tb.Sym("a", BoolSort)
	b := tb.Sym("b", BoolSort)
	c := tb.Sym("c", BoolSort)

	ab, _ := tb.And(a, b)
	abc, _ := tb.And(ab, c)
	if abc.NumChildren() != 3 || abc.String() != "(and a b c)" {
		t.Errorf("nested and should be flattened, got %s", abc)
	}
}

func TestIntFolding(t *testing.T) {
	tb := NewTermBuilder()
	x := tb.Sym("x", IntSort)

	e, err := tb.IntAdd(tb.IntVal(2), x, tb.IntVal(3))
	if isErr(t, err) {
		return
	}
	if e.String() != "(+ x 5)" {
		t.Errorf("unexpected %s", e)
	}

	e, _ = tb.IntSub(x, x)
	if e.Kind() != TY_INT_ADD {
		t.Errorf("unexpected %s", e)
	}

	e, _ = tb.IntMul(x, tb.IntVal(0))
	if !e.isIntConst(0) {
		t.Errorf("x * 0 should be 0, got %s", e)
	}

	e, _ = tb.IntMul(tb.IntVal(-2), tb.IntVal(3))
	if !e.isIntConst(-6) {
		t.Errorf("unexpected %s", e)
	}

	e, _ = tb.IntNeg(tb.IntVal(4))
	if e.String() != "(- 4)" {
		t.Errorf("unexpected %s", e)
	}

	e, _ = tb.IntLt(tb.IntVal(1), tb.IntVal(2), tb.IntVal(3))
	if !e.IsTrue() {
		t.Errorf("1 < 2 < 3 should be true, got %s", e)
	}

	e, _ = tb.IntGe(x, x)
	if !e.IsTrue() {
		t.Errorf("x >= x should be true, got %s", e)
	}

	e, _ = tb.IntAbs(tb.IntVal(-7))
	if !e.isIntConst(7) {
		t.Errorf("unexpected %s", e)
	}
}

func TestIntEuclidean(t *testing.T) {
	tb := NewTermBuilder()

	cases := []struct {
		a, b, div, mod int64
	}{
		{7, 2, 3, 1},
		{-7, 2, -4, 1},
		{7, -2, -3, 1},
		{-7, -2, 4, 1},
	}
	for _, c := range cases {
		d, err := tb.IntDiv(tb.IntVal(c.a), tb.IntVal(c.b))
		if isErr(t, err) {
			return
		}
		m, _ := tb.IntMod(tb.IntVal(c.a), tb.IntVal(c.b))
		if !d.isIntConst(c.div) || !m.isIntConst(c.mod) {
			t.Errorf("%d div/mod %d: got %s and %s", c.a, c.b, d, m)
		}
	}

	e, _ := tb.IntDiv(tb.IntVal(1), tb.IntVal(0))
	if e.Kind() != TY_INT_DIV {
		t.Errorf("division by zero should not be folded, got %s", e)
	}
}

func TestAdd1(t *testing.T) {
	tb := NewTermBuilder()

	a := tb.BVS("a", 32)
	e, err := tb.BVAdd(a, tb.BVV(1, 32), tb.BVV(-1, 32))
	if isErr(t, err) {
		return
	}
	if e != a {
		t.Errorf("a + 1 - 1 should be a, got %s", e)
	}

	e, _ = tb.BVMul(a, tb.BVV(0, 32))
	if !e.isBVZero() {
		t.Errorf("a * 0 should be 0, got %s", e)
	}

	e, _ = tb.BVSub(tb.BVV(3, 8), tb.BVV(5, 8))
	if e.String() != "#xfe" {
		t.Errorf("unexpected %s", e)
	}

	if _, err := tb.BVAdd(a, tb.BVV(1, 16)); err == nil {
		t.Error("different sizes should fail")
	}
}

func TestBVDivByZero(t *testing.T) {
	tb := NewTermBuilder()

	e, _ := tb.BVUDiv(tb.BVV(7, 4), tb.BVV(0, 4))
	if e.String() != "#xf" {
		t.Errorf("udiv by zero should be all ones, got %s", e)
	}
	e, _ = tb.BVURem(tb.BVV(7, 4), tb.BVV(0, 4))
	if e.String() != "#x7" {
		t.Errorf("urem by zero should be the dividend, got %s", e)
	}
}

func TestShift1(t *testing.T) {
	tb := NewTermBuilder()

	a := tb.BVS("a", 8)
	e, _ := tb.BVShl(a, tb.BVV(0, 8))
	if e != a {
		t.Errorf("shift by zero should be the operand, got %s", e)
	}

	e, _ = tb.BVLShr(tb.BVV(0x80, 8), tb.BVV(3, 8))
	if e.String() != "#x10" {
		t.Errorf("unexpected %s", e)
	}

	e, _ = tb.BVAShr(tb.BVV(0x80, 8), tb.BVV(100, 8))
	if e.String() != "#xff" {
		t.Errorf("unexpected %s", e)
	}
}

func TestConcat1(t *testing.T) {
	tb := NewTermBuilder()
	a := tb.BVS("a", 8)

	e, err := tb.Concat(tb.BVV(1, 4), tb.BVV(2, 4), a)
	if isErr(t, err) {
		return
	}
	if e.Sort() != BitVecSort(16) || e.String() != "(concat #x12 a)" {
		t.Errorf("unexpected %s", e)
	}

	low, _ := tb.Extract(e, 7, 0)
	if low.Kind() != TY_EXTRACT {
		t.Errorf("unexpected %s", low)
	}

	whole, _ := tb.Extract(a, 7, 0)
	if whole != a {
		t.Error("extracting every bit should return the operand")
	}

	inner, _ := tb.Extract(a, 6, 2)
	nested, _ := tb.Extract(inner, 2, 1)
	direct, _ := tb.Extract(a, 4, 3)
	if nested != direct {
		t.Errorf("nested extract should collapse, got %s", nested)
	}

	if _, err := tb.Extract(a, 8, 0); err == nil {
		t.Error("out of range extract should fail")
	}
}

func TestExtend(t *testing.T) {
	tb := NewTermBuilder()

	e, _ := tb.SExt(tb.BVV(-1, 4), 4)
	if e.String() != "#xff" {
		t.Errorf("unexpected %s", e)
	}
	e, _ = tb.ZExt(tb.BVV(-1, 4), 4)
	if e.String() != "#x0f" {
		t.Errorf("unexpected %s", e)
	}

	a := tb.BVS("a", 4)
	e, _ = tb.ZExt(a, 2)
	if e.Sort() != BitVecSort(6) || e.String() != "((_ zero_extend 2) a)" {
		t.Errorf("unexpected %s", e)
	}
}

func TestBVCompare(t *testing.T) {
	tb := NewTermBuilder()

	e, _ := tb.BVSLt(tb.BVV(-1, 8), tb.BVV(0, 8))
	if !e.IsTrue() {
		t.Errorf("-1 s< 0 should be true")
	}
	e, _ = tb.BVULt(tb.BVV(-1, 8), tb.BVV(0, 8))
	if !e.IsFalse() {
		t.Errorf("0xff u< 0 should be false")
	}

	a := tb.BVS("a", 8)
	e, _ = tb.BVUGe(a, a)
	if !e.IsTrue() {
		t.Errorf("a u>= a should be true")
	}
}

func TestEqITE(t *testing.T) {
	tb := NewTermBuilder()
	x := tb.Sym("x", IntSort)
	c := tb.Sym("c", BoolSort)

	e, _ := tb.Eq(tb.IntVal(1), tb.IntVal(2))
	if !e.IsFalse() {
		t.Errorf("1 = 2 should be false")
	}
	e, _ = tb.Eq(x, x)
	if !e.IsTrue() {
		t.Errorf("x = x should be true")
	}
	if _, err := tb.Eq(x, c); err == nil {
		t.Error("equality of different sorts should fail")
	}

	e, _ = tb.ITE(c, tb.True(), tb.False())
	if e != c {
		t.Errorf("unexpected %s", e)
	}
	nc, _ := tb.Not(c)
	e, _ = tb.ITE(nc, x, tb.IntVal(0))
	if e.String() != "(ite c 0 x)" {
		t.Errorf("unexpected %s", e)
	}

	e, _ = tb.Distinct(tb.IntVal(1), tb.IntVal(2), tb.IntVal(3))
	if !e.IsTrue() {
		t.Errorf("distinct literals should be true, got %s", e)
	}
}

func TestSymbols(t *testing.T) {
	tb := NewTermBuilder()
	y := tb.Sym("y", IntSort)
	x := tb.Sym("x", IntSort)

	sum, _ := tb.IntAdd(y, x, y)
	e, _ := tb.IntLt(sum, x)
	syms := tb.Symbols(e)
	if len(syms) != 2 || syms[0] != x || syms[1] != y {
		t.Errorf("unexpected symbols %v", syms)
	}
}
