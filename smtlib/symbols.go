package smtlib

import (
	"fmt"

	"github.com/borzacchiello/smtpipe"
)

// Macro is a name bound to a term. Declared constants are macros without parameters whose
// body is the constant itself; define-fun with arguments binds bound variables in Params.
type Macro struct {
	Name   string
	Params []*smtpipe.Term
	Body   *smtpipe.Term
}

func (m *Macro) Sort() smtpipe.Sort {
	return m.Body.Sort()
}

type scope struct {
	terms map[string]*Macro
	sorts map[string]smtpipe.Sort
}

func newScope() *scope {
	return &scope{terms: map[string]*Macro{}, sorts: map[string]smtpipe.Sort{}}
}

// SymbolTable resolves term and sort names through nested scopes, innermost first.
// The outermost scope holds global bindings and is never popped.
type SymbolTable struct {
	scopes []*scope
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{scopes: []*scope{newScope()}}
}

func (st *SymbolTable) PushScope() {
	st.scopes = append(st.scopes, newScope())
}

func (st *SymbolTable) PopScope() error {
	if len(st.scopes) == 1 {
		return fmt.Errorf("no scope to pop")
	}
	st.scopes = st.scopes[:len(st.scopes)-1]
	return nil
}

// Depth is the number of scopes pushed over the global one.
func (st *SymbolTable) Depth() int {
	return len(st.scopes) - 1
}

func (st *SymbolTable) target(global bool) *scope {
	if global {
		return st.scopes[0]
	}
	return st.scopes[len(st.scopes)-1]
}

func (st *SymbolTable) Bind(m *Macro, global bool) {
	st.target(global).terms[m.Name] = m
}

// BindAt binds m in the scope at the given depth, 0 being the global scope.
func (st *SymbolTable) BindAt(m *Macro, depth int) {
	st.scopes[depth].terms[m.Name] = m
}

func (st *SymbolTable) BindSort(name string, s smtpipe.Sort, global bool) {
	st.target(global).sorts[name] = s
}

func (st *SymbolTable) Lookup(name string) (*Macro, bool) {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if m, ok := st.scopes[i].terms[name]; ok {
			return m, true
		}
	}
	return nil, false
}

func (st *SymbolTable) LookupSort(name string) (smtpipe.Sort, bool) {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if s, ok := st.scopes[i].sorts[name]; ok {
			return s, true
		}
	}
	return smtpipe.Sort{}, false
}

func (st *SymbolTable) IsBound(name string) bool {
	_, ok := st.Lookup(name)
	return ok
}

func (st *SymbolTable) IsSortBound(name string) bool {
	_, ok := st.LookupSort(name)
	return ok
}

// Clear drops every scope. With keepGlobal the outermost scope survives.
func (st *SymbolTable) Clear(keepGlobal bool) {
	if keepGlobal {
		st.scopes = st.scopes[:1]
		return
	}
	st.scopes = []*scope{newScope()}
}
