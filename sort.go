package smtpipe

import "fmt"

const (
	SORT_BOOL   = 1
	SORT_INT    = 2
	SORT_BITVEC = 3
)

// Sort is a value type; two sorts are the same sort iff they compare equal with ==.
type Sort struct {
	Kind  int
	Width uint
}

var (
	BoolSort = Sort{Kind: SORT_BOOL}
	IntSort  = Sort{Kind: SORT_INT}
)

func BitVecSort(width uint) Sort {
	return Sort{Kind: SORT_BITVEC, Width: width}
}

func (s Sort) IsBool() bool {
	return s.Kind == SORT_BOOL
}

func (s Sort) IsInt() bool {
	return s.Kind == SORT_INT
}

func (s Sort) IsBitVec() bool {
	return s.Kind == SORT_BITVEC
}

func (s Sort) String() string {
	switch s.Kind {
	case SORT_BOOL:
		return "Bool"
	case SORT_INT:
		return "Int"
	case SORT_BITVEC:
		return fmt.Sprintf("(_ BitVec %d)", s.Width)
	}
	return "<invalid sort>"
}
