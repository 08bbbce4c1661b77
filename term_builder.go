package smtpipe

import (
	"fmt"
	"math/big"
	"strings"
	"sync"

	"golang.org/x/exp/slices"
)

type TermBuilderStats struct {
	CacheHits    uint
	CacheLookups uint
	CachedTerms  uint
}

// TermBuilder creates and interns terms. It is safe for concurrent use.
type TermBuilder struct {
	lock  sync.RWMutex
	cache map[uint64][]*Term

	Stats TermBuilderStats
}

func NewTermBuilder() *TermBuilder {
	return &TermBuilder{
		lock:  sync.RWMutex{},
		cache: map[uint64][]*Term{},
		Stats: TermBuilderStats{},
	}
}

func (tb *TermBuilder) GetStats() TermBuilderStats {
	tb.lock.RLock()
	defer tb.lock.RUnlock()
	return tb.Stats
}

// HitRatio is the fraction of lookups answered by an already interned term.
func (s TermBuilderStats) HitRatio() float64 {
	if s.CacheLookups == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(s.CacheLookups)
}

func (s TermBuilderStats) String() string {
	return fmt.Sprintf("hits: %d, lookups: %d, hit ratio: %.03f %%, cached: %d",
		s.CacheHits, s.CacheLookups, s.HitRatio()*100, s.CachedTerms)
}

func (tb *TermBuilder) getOrCreate(t *Term) *Term {
	tb.lock.Lock()
	defer tb.lock.Unlock()
	tb.Stats.CacheLookups += 1

	h := t.hash()
	bucket := tb.cache[h]
	for i := 0; i < len(bucket); i++ {
		if bucket[i].shallowEq(t) {
			tb.Stats.CacheHits += 1
			return bucket[i]
		}
	}
	tb.Stats.CachedTerms += 1
	tb.cache[h] = append(bucket, t)
	return t
}

func (tb *TermBuilder) mk(kind int, s Sort, children ...*Term) *Term {
	return tb.getOrCreate(&Term{kind: kind, sort: s, children: children})
}

// Symbols returns the free symbols of t, ordered by name.
func (tb *TermBuilder) Symbols(t *Term) []*Term {
	queue := []*Term{t}
	visited := make(map[uintptr]bool)
	symbols := make([]*Term, 0)

	for len(queue) > 0 {
		el := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		if visited[el.Id()] {
			continue
		}
		visited[el.Id()] = true

		if el.kind == TY_SYM {
			symbols = append(symbols, el)
			continue
		}
		queue = append(queue, el.children...)
	}
	slices.SortFunc(symbols, func(a, b *Term) int { return strings.Compare(a.name, b.name) })
	return symbols
}

// *** Leaves ***

// Sym returns the constant symbol name of sort s.
func (tb *TermBuilder) Sym(name string, s Sort) *Term {
	return tb.getOrCreate(&Term{kind: TY_SYM, sort: s, name: name})
}

// Var returns a bound variable, used for define-fun parameters.
func (tb *TermBuilder) Var(name string, s Sort) *Term {
	return tb.getOrCreate(&Term{kind: TY_VAR, sort: s, name: name})
}

func (tb *TermBuilder) BoolVal(v bool) *Term {
	return tb.getOrCreate(&Term{kind: TY_BOOL_CONST, sort: BoolSort, boolVal: v})
}

func (tb *TermBuilder) True() *Term {
	return tb.BoolVal(true)
}

func (tb *TermBuilder) False() *Term {
	return tb.BoolVal(false)
}

func (tb *TermBuilder) IntVal(v int64) *Term {
	return tb.IntValBig(big.NewInt(v))
}

func (tb *TermBuilder) IntValBig(v *big.Int) *Term {
	return tb.getOrCreate(&Term{kind: TY_INT_CONST, sort: IntSort, intVal: new(big.Int).Set(v)})
}

func (tb *TermBuilder) BVV(val int64, size uint) *Term {
	return tb.BVConstTerm(MakeBVConst(val, size))
}

func (tb *TermBuilder) BVConstTerm(c *BVConst) *Term {
	return tb.getOrCreate(&Term{kind: TY_CONST, sort: BitVecSort(c.Size), bvVal: c.Copy()})
}

func (tb *TermBuilder) BVS(name string, size uint) *Term {
	return tb.Sym(name, BitVecSort(size))
}

// *** Polymorphic ***

// Eq builds (= a b ...); more than two operands are chained pairwise.
func (tb *TermBuilder) Eq(args ...*Term) (*Term, error) {
	if len(args) < 2 {
		return nil, sortErrorf("=", "expects at least 2 arguments, got %d", len(args))
	}
	for i := 1; i < len(args); i++ {
		if args[i].sort != args[0].sort {
			return nil, sortErrorf("=", "operands of sort %s and %s", args[0].sort, args[i].sort)
		}
	}
	if len(args) > 2 {
		conj := make([]*Term, 0, len(args)-1)
		for i := 1; i < len(args); i++ {
			e, _ := tb.Eq(args[i-1], args[i])
			conj = append(conj, e)
		}
		return tb.And(conj...)
	}

	lhs, rhs := args[0], args[1]
	if lhs == rhs {
		return tb.True(), nil
	}
	if lhs.IsConst() && rhs.IsConst() {
		// interned literals of the same sort are equal iff identical
		return tb.False(), nil
	}
	if lhs.sort.IsBool() {
		if lhs.IsConst() {
			lhs, rhs = rhs, lhs
		}
		if rhs.IsTrue() {
			return lhs, nil
		}
		if rhs.IsFalse() {
			return tb.Not(lhs)
		}
	}
	return tb.mk(TY_EQ, BoolSort, lhs, rhs), nil
}

// Distinct builds the pairwise disequality of args.
func (tb *TermBuilder) Distinct(args ...*Term) (*Term, error) {
	if len(args) < 2 {
		return nil, sortErrorf("distinct", "expects at least 2 arguments, got %d", len(args))
	}
	conj := make([]*Term, 0)
	for i := 0; i < len(args); i++ {
		for j := i + 1; j < len(args); j++ {
			e, err := tb.Eq(args[i], args[j])
			if err != nil {
				return nil, sortErrorf("distinct", "%s", err.(*SortError).Msg)
			}
			ne, _ := tb.Not(e)
			conj = append(conj, ne)
		}
	}
	return tb.And(conj...)
}

func (tb *TermBuilder) ITE(cond, iftrue, iffalse *Term) (*Term, error) {
	if !cond.sort.IsBool() {
		return nil, sortErrorf("ite", "condition of sort %s", cond.sort)
	}
	if iftrue.sort != iffalse.sort {
		return nil, sortErrorf("ite", "branches of sort %s and %s", iftrue.sort, iffalse.sort)
	}
	if cond.IsTrue() {
		return iftrue, nil
	}
	if cond.IsFalse() {
		return iffalse, nil
	}
	if iftrue == iffalse {
		return iftrue, nil
	}
	if cond.kind == TY_BOOL_NOT {
		return tb.ITE(cond.children[0], iffalse, iftrue)
	}
	if iftrue.sort.IsBool() {
		if iftrue.IsTrue() && iffalse.IsFalse() {
			return cond, nil
		}
		if iftrue.IsFalse() && iffalse.IsTrue() {
			return tb.Not(cond)
		}
	}
	return tb.mk(TY_ITE, iftrue.sort, cond, iftrue, iffalse), nil
}

// flatten inlines children that are already of kind ty.
func flatten(ty int, args []*Term) []*Term {
	res := make([]*Term, 0, len(args))
	for _, a := range args {
		if a.kind == ty {
			res = append(res, a.children...)
		} else {
			res = append(res, a)
		}
	}
	return res
}
