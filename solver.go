package smtpipe

import (
	"fmt"

	"golang.org/x/exp/slices"
)

const (
	RESULT_ERROR   = 0
	RESULT_SAT     = 1
	RESULT_UNSAT   = 2
	RESULT_UNKNOWN = 3
)

func ResultString(r int) string {
	switch r {
	case RESULT_SAT:
		return "sat"
	case RESULT_UNSAT:
		return "unsat"
	case RESULT_UNKNOWN:
		return "unknown"
	}
	return "error"
}

type solverBackend interface {
	// check decides the conjunction of assertions; reason explains an unknown result.
	check(assertions []*Term) (result int, reason string)
	// eval evaluates t in the model of the last sat check, completing the model if needed.
	eval(tb *TermBuilder, t *Term) (*Term, error)
}

// Solver keeps a stack of assertion levels over a backend that is re-queried from
// scratch on every check.
type Solver struct {
	tb      *TermBuilder
	backend solverBackend

	levels   [][]*Term
	asserted map[uintptr]bool

	lastResult int
	lastReason string
	modelValid bool
}

func NewZ3Solver(tb *TermBuilder) *Solver {
	return newSolver(tb, newZ3Backend())
}

func newSolver(tb *TermBuilder, backend solverBackend) *Solver {
	return &Solver{
		tb:         tb,
		backend:    backend,
		levels:     [][]*Term{{}},
		asserted:   make(map[uintptr]bool),
		lastResult: RESULT_UNKNOWN,
	}
}

// Depth is the number of pushed levels.
func (s *Solver) Depth() int {
	return len(s.levels) - 1
}

func (s *Solver) Push(n int) {
	for i := 0; i < n; i++ {
		s.levels = append(s.levels, []*Term{})
	}
	s.modelValid = false
}

func (s *Solver) Pop(n int) error {
	if n > s.Depth() {
		return fmt.Errorf("cannot pop %d levels, the assertion stack has %d", n, s.Depth())
	}
	for i := 0; i < n; i++ {
		top := s.levels[len(s.levels)-1]
		for _, a := range top {
			delete(s.asserted, a.Id())
		}
		s.levels = s.levels[:len(s.levels)-1]
	}
	s.modelValid = false
	return nil
}

// Add asserts a Bool-sorted term at the current level.
func (s *Solver) Add(constraint *Term) error {
	if !constraint.Sort().IsBool() {
		return sortErrorf("assert", "expects a Bool term, got %s", constraint.Sort())
	}
	s.modelValid = false
	if constraint.IsTrue() || s.asserted[constraint.Id()] {
		return nil
	}
	s.asserted[constraint.Id()] = true
	top := len(s.levels) - 1
	s.levels[top] = append(s.levels[top], constraint)
	return nil
}

// Assertions lists the asserted terms, outermost level first.
func (s *Solver) Assertions() []*Term {
	res := make([]*Term, 0)
	for _, l := range s.levels {
		res = append(res, l...)
	}
	return slices.Clip(res)
}

// Pi returns the conjunction of every assertion.
func (s *Solver) Pi() *Term {
	res, err := s.tb.And(s.Assertions()...)
	if err != nil {
		// assertions are checked to be Bool when added
		panic(err)
	}
	return res
}

func (s *Solver) Reset() {
	s.levels = [][]*Term{{}}
	s.asserted = make(map[uintptr]bool)
	s.lastResult = RESULT_UNKNOWN
	s.lastReason = ""
	s.modelValid = false
}

// CheckSat decides the current assertions together with the given assumptions.
func (s *Solver) CheckSat(assumptions ...*Term) int {
	query := s.Assertions()
	for _, a := range assumptions {
		if !a.Sort().IsBool() {
			s.lastResult, s.lastReason = RESULT_ERROR, fmt.Sprintf("assumption %s is not Bool", a)
			return s.lastResult
		}
		query = append(query, a)
	}

	pi, _ := s.tb.And(query...)
	switch {
	case pi.IsFalse():
		s.lastResult, s.lastReason = RESULT_UNSAT, ""
	default:
		s.lastResult, s.lastReason = s.backend.check(query)
	}
	s.modelValid = s.lastResult == RESULT_SAT
	return s.lastResult
}

func (s *Solver) LastResult() int {
	return s.lastResult
}

func (s *Solver) ReasonUnknown() string {
	return s.lastReason
}

// HasModel reports whether the last check was sat and nothing changed since.
func (s *Solver) HasModel() bool {
	return s.modelValid
}

// Eval evaluates t in the current model.
func (s *Solver) Eval(t *Term) (*Term, error) {
	if !s.modelValid {
		return nil, fmt.Errorf("no model available")
	}
	if t.IsConst() {
		return t, nil
	}
	return s.backend.eval(s.tb, t)
}

// Model returns the value of each symbol in the current model.
func (s *Solver) Model(symbols []*Term) (map[*Term]*Term, error) {
	res := make(map[*Term]*Term, len(symbols))
	for _, sym := range symbols {
		v, err := s.Eval(sym)
		if err != nil {
			return nil, err
		}
		res[sym] = v
	}
	return res, nil
}
