package smtpipe

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

const (
	TY_SYM = iota + 1
	TY_VAR

	TY_BOOL_CONST
	TY_BOOL_NOT
	TY_BOOL_AND
	TY_BOOL_OR
	TY_BOOL_XOR
	TY_BOOL_IMPLIES
	TY_ITE
	TY_EQ

	TY_INT_CONST
	TY_INT_ADD
	TY_INT_MUL
	TY_INT_NEG
	TY_INT_DIV
	TY_INT_MOD
	TY_INT_ABS
	TY_INT_LT
	TY_INT_LE
	TY_INT_GT
	TY_INT_GE

	TY_CONST
	TY_NOT
	TY_NEG
	TY_AND
	TY_OR
	TY_XOR
	TY_ADD
	TY_MUL
	TY_UDIV
	TY_SDIV
	TY_UREM
	TY_SREM
	TY_SHL
	TY_LSHR
	TY_ASHR
	TY_CONCAT
	TY_EXTRACT
	TY_ZEXT
	TY_SEXT
	TY_ULT
	TY_ULE
	TY_UGT
	TY_UGE
	TY_SLT
	TY_SLE
	TY_SGT
	TY_SGE
)

type kindInfo struct {
	smt   string
	infix string
	nary  bool
}

var kindInfos = map[int]kindInfo{
	TY_BOOL_NOT:     {"not", "!", false},
	TY_BOOL_AND:     {"and", "&&", true},
	TY_BOOL_OR:      {"or", "||", true},
	TY_BOOL_XOR:     {"xor", "^^", false},
	TY_BOOL_IMPLIES: {"=>", "=>", false},
	TY_ITE:          {"ite", "?", false},
	TY_EQ:           {"=", "==", false},

	TY_INT_ADD: {"+", "+", true},
	TY_INT_MUL: {"*", "*", true},
	TY_INT_NEG: {"-", "-", false},
	TY_INT_DIV: {"div", "/", false},
	TY_INT_MOD: {"mod", "%", false},
	TY_INT_ABS: {"abs", "abs", false},
	TY_INT_LT:  {"<", "<", false},
	TY_INT_LE:  {"<=", "<=", false},
	TY_INT_GT:  {">", ">", false},
	TY_INT_GE:  {">=", ">=", false},

	TY_NOT:     {"bvnot", "~", false},
	TY_NEG:     {"bvneg", "-", false},
	TY_AND:     {"bvand", "&", true},
	TY_OR:      {"bvor", "|", true},
	TY_XOR:     {"bvxor", "^", true},
	TY_ADD:     {"bvadd", "+", true},
	TY_MUL:     {"bvmul", "*", true},
	TY_UDIV:    {"bvudiv", "u/", false},
	TY_SDIV:    {"bvsdiv", "s/", false},
	TY_UREM:    {"bvurem", "u%", false},
	TY_SREM:    {"bvsrem", "s%", false},
	TY_SHL:     {"bvshl", "<<", false},
	TY_LSHR:    {"bvlshr", "l>>", false},
	TY_ASHR:    {"bvashr", "a>>", false},
	TY_CONCAT:  {"concat", "..", true},
	TY_EXTRACT: {"extract", "extract", false},
	TY_ZEXT:    {"zero_extend", "zext", false},
	TY_SEXT:    {"sign_extend", "sext", false},
	TY_ULT:     {"bvult", "u<", false},
	TY_ULE:     {"bvule", "u<=", false},
	TY_UGT:     {"bvugt", "u>", false},
	TY_UGE:     {"bvuge", "u>=", false},
	TY_SLT:     {"bvslt", "s<", false},
	TY_SLE:     {"bvsle", "s<=", false},
	TY_SGT:     {"bvsgt", "s>", false},
	TY_SGE:     {"bvsge", "s>=", false},
}

// Term is an immutable node created by a TermBuilder. Terms built by the same
// builder are structurally shared: equal terms have equal Ids.
type Term struct {
	kind     int
	sort     Sort
	children []*Term

	name    string
	boolVal bool
	intVal  *big.Int
	bvVal   *BVConst
	indices []uint
}

func (t *Term) Kind() int {
	return t.kind
}

func (t *Term) Sort() Sort {
	return t.sort
}

func (t *Term) Id() uintptr {
	return uintptr(unsafe.Pointer(t))
}

func (t *Term) NumChildren() int {
	return len(t.children)
}

func (t *Term) Child(i int) *Term {
	return t.children[i]
}

func (t *Term) Children() []*Term {
	res := make([]*Term, len(t.children))
	copy(res, t.children)
	return res
}

// Name is set for symbols and bound variables.
func (t *Term) Name() string {
	return t.name
}

// Indices returns (high, low) for extract and the extension width for zero_extend/sign_extend.
func (t *Term) Indices() []uint {
	return t.indices
}

func (t *Term) IsLeaf() bool {
	return len(t.children) == 0
}

func (t *Term) IsSymbol() bool {
	return t.kind == TY_SYM
}

func (t *Term) IsConst() bool {
	return t.kind == TY_BOOL_CONST || t.kind == TY_INT_CONST || t.kind == TY_CONST
}

func (t *Term) IsTrue() bool {
	return t.kind == TY_BOOL_CONST && t.boolVal
}

func (t *Term) IsFalse() bool {
	return t.kind == TY_BOOL_CONST && !t.boolVal
}

func (t *Term) GetBool() (bool, error) {
	if t.kind != TY_BOOL_CONST {
		return false, fmt.Errorf("not a boolean constant")
	}
	return t.boolVal, nil
}

func (t *Term) GetInt() (*big.Int, error) {
	if t.kind != TY_INT_CONST {
		return nil, fmt.Errorf("not an integer constant")
	}
	return new(big.Int).Set(t.intVal), nil
}

func (t *Term) GetBV() (*BVConst, error) {
	if t.kind != TY_CONST {
		return nil, fmt.Errorf("not a bitvector constant")
	}
	return t.bvVal.Copy(), nil
}

func (t *Term) isIntConst(v int64) bool {
	return t.kind == TY_INT_CONST && t.intVal.IsInt64() && t.intVal.Int64() == v
}

func (t *Term) isBVZero() bool {
	return t.kind == TY_CONST && t.bvVal.IsZero()
}

func (t *Term) isBVOne() bool {
	return t.kind == TY_CONST && t.bvVal.IsOne()
}

// String prints the term in SMT-LIB v2 syntax.
func (t *Term) String() string {
	return SMTPrinter.Term(t)
}

func (t *Term) hash() uint64 {
	h := xxhash.New()
	raw := make([]byte, 8)

	binary.BigEndian.PutUint64(raw, uint64(t.kind))
	h.Write(raw)
	binary.BigEndian.PutUint64(raw, uint64(t.sort.Kind)<<32|uint64(t.sort.Width))
	h.Write(raw)

	switch t.kind {
	case TY_SYM, TY_VAR:
		h.WriteString(t.name)
	case TY_BOOL_CONST:
		if t.boolVal {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	case TY_INT_CONST:
		h.Write(t.intVal.Bytes())
		if t.intVal.Sign() < 0 {
			h.Write([]byte{'-'})
		}
	case TY_CONST:
		h.Write(t.bvVal.value.Bytes())
	}
	for _, idx := range t.indices {
		binary.BigEndian.PutUint64(raw, uint64(idx))
		h.Write(raw)
	}
	for _, c := range t.children {
		binary.BigEndian.PutUint64(raw, uint64(c.Id()))
		h.Write(raw)
	}
	return h.Sum64()
}

// shallowEq compares payloads and children by identity; children are already interned.
func (t *Term) shallowEq(o *Term) bool {
	if t.kind != o.kind || t.sort != o.sort {
		return false
	}
	if len(t.children) != len(o.children) || len(t.indices) != len(o.indices) {
		return false
	}
	switch t.kind {
	case TY_SYM, TY_VAR:
		if t.name != o.name {
			return false
		}
	case TY_BOOL_CONST:
		if t.boolVal != o.boolVal {
			return false
		}
	case TY_INT_CONST:
		if t.intVal.Cmp(o.intVal) != 0 {
			return false
		}
	case TY_CONST:
		if eq, err := t.bvVal.Eq(o.bvVal); err != nil || !eq {
			return false
		}
	}
	for i := range t.indices {
		if t.indices[i] != o.indices[i] {
			return false
		}
	}
	for i := range t.children {
		if t.children[i] != o.children[i] {
			return false
		}
	}
	return true
}
