package smtpipe

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"

	"github.com/borzacchiello/smtpipe/logging"
)

// Version is reported by (get-info :version) and the CLI.
const Version = "0.4.1"

// MaxAssertionLevels bounds the depth of the assertion stack.
const MaxAssertionLevels = 1 << 16

// ModelEntry is the value of one declared constant in a model.
type ModelEntry struct {
	Symbol *Term
	Value  *Term
}

// EngineStats counts the work done by an Engine since it was created or reset.
type EngineStats struct {
	Checks      int
	CheckTime   time.Duration
	Assertions  int
	Decls       int
	ModelChecks int
}

// Engine is the solver handle commands are invoked on. It is not safe for concurrent use.
type Engine struct {
	id      string
	logger  *logging.Logger
	initial Options
	options Options
	tb      *TermBuilder
	solver  *Solver

	logic    *Logic
	info     map[string]string
	decls    [][]*Term
	declared map[string]bool
	started  bool
	checks   int
	stats    EngineStats
}

// NewEngine creates an engine configured with opts.
func NewEngine(opts Options) *Engine {
	id := uuid.New().String()
	e := &Engine{
		id:      id,
		logger:  logging.GlobalLogger.NewSubLogger("module", logging.ENGINE_SERVICE).NewSubLogger("engine", id[:8]),
		initial: opts,
		tb:      NewTermBuilder(),
	}
	e.reset()
	return e
}

func (e *Engine) reset() {
	e.options = e.initial
	e.solver = NewZ3Solver(e.tb)
	e.logic = nil
	e.info = make(map[string]string)
	e.decls = [][]*Term{{}}
	e.declared = make(map[string]bool)
	e.started = false
	e.checks = 0
	e.stats = EngineStats{}
	e.logger.SetLevel(logging.LevelFromVerbosity(e.options.Verbosity))
}

func (e *Engine) ID() string {
	return e.id
}

func (e *Engine) Logger() *logging.Logger {
	return e.logger
}

func (e *Engine) TermBuilder() *TermBuilder {
	return e.tb
}

// Options returns a copy of the current options.
func (e *Engine) Options() Options {
	return e.options
}

// Printer renders terms in the configured output language.
func (e *Engine) Printer() Printer {
	return PrinterFor(e.options.OutputLanguage)
}

func (e *Engine) Stats() EngineStats {
	return e.stats
}

// Logic returns the current logic. When none was set, ALL is assumed.
func (e *Engine) Logic() Logic {
	if e.logic == nil {
		e.logger.Warn("no logic set, assuming ALL")
		l := supportedLogics["ALL"]
		e.logic = &l
	}
	return *e.logic
}

func (e *Engine) SetLogic(name string) error {
	if e.logic != nil {
		return &ModalError{Msg: fmt.Sprintf("logic already set to %s", e.logic.Name)}
	}
	if e.started {
		return &ModalError{Msg: "the logic can only be set before any declaration or assertion"}
	}
	l, err := LookupLogic(name)
	if err != nil {
		return err
	}
	e.logic = &l
	e.logger.Debug("logic set to ", name)
	return nil
}

func isStartModeOption(name string) bool {
	switch normalizeOptionName(name) {
	case "incremental", "produce-models", "global-declarations":
		return true
	}
	return false
}

// SetOption updates an option from its SMT-LIB textual value.
func (e *Engine) SetOption(name, value string) error {
	if e.started && isStartModeOption(name) {
		return &ModalError{Msg: fmt.Sprintf("option %s can only be set before any declaration or assertion", name)}
	}
	if err := e.options.Set(name, value); err != nil {
		if errors.Is(err, ErrUnsupportedOption) {
			return &UnsupportedError{What: fmt.Sprintf("option %s", name)}
		}
		return err
	}
	if normalizeOptionName(name) == "verbosity" {
		e.logger.SetLevel(logging.LevelFromVerbosity(e.options.Verbosity))
	}
	return nil
}

func (e *Engine) GetOption(name string) (string, error) {
	v, err := e.options.Get(name)
	if errors.Is(err, ErrUnsupportedOption) {
		return "", &UnsupportedError{What: fmt.Sprintf("option %s", name)}
	}
	return v, err
}

func isReservedInfo(key string) bool {
	switch key {
	case ":name", ":version", ":authors", ":error-behavior", ":reason-unknown",
		":assertion-stack-levels", ":all-statistics":
		return true
	}
	return false
}

// SetInfo stores an attribute. value is kept in its SMT-LIB textual form.
func (e *Engine) SetInfo(key, value string) error {
	if isReservedInfo(key) {
		return &ModalError{Msg: fmt.Sprintf("info %s cannot be set", key)}
	}
	e.info[key] = value
	return nil
}

// GetInfo returns the SMT-LIB rendering of an attribute.
func (e *Engine) GetInfo(key string) (string, error) {
	switch key {
	case ":name":
		return QuoteString("smtpipe"), nil
	case ":version":
		return QuoteString(Version), nil
	case ":authors":
		return QuoteString("the smtpipe authors"), nil
	case ":error-behavior":
		return "continued-execution", nil
	case ":reason-unknown":
		if e.solver.LastResult() != RESULT_UNKNOWN || e.checks == 0 {
			return "", &ModalError{Msg: "no unknown result to explain"}
		}
		if e.solver.ReasonUnknown() == "" {
			return "incomplete", nil
		}
		return QuoteString(e.solver.ReasonUnknown()), nil
	case ":assertion-stack-levels":
		return strconv.Itoa(e.solver.Depth()), nil
	case ":all-statistics":
		tbStats := e.tb.GetStats()
		return fmt.Sprintf("(:checks %d :check-time %.3f :assertions %d :declarations %d :model-checks %d :terms %d :term-cache-hits %d)",
			e.stats.Checks, e.stats.CheckTime.Seconds(), e.stats.Assertions, e.stats.Decls, e.stats.ModelChecks,
			tbStats.CachedTerms, tbStats.CacheHits), nil
	}
	if v, ok := e.info[key]; ok {
		return v, nil
	}
	return "", &UnsupportedError{What: fmt.Sprintf("info %s", key)}
}

// Info returns the attributes stored with set-info.
func (e *Engine) Info() map[string]string {
	return maps.Clone(e.info)
}

// IsDeclared reports whether name is a visible declared constant.
func (e *Engine) IsDeclared(name string) bool {
	return e.declared[name]
}

// Declare introduces a constant of sort s in the current scope.
func (e *Engine) Declare(name string, s Sort) (*Term, error) {
	if !e.Logic().AdmitsSort(s) {
		return nil, &ModalError{Msg: fmt.Sprintf("sort %s is not allowed in logic %s", s, e.Logic().Name)}
	}
	if e.declared[name] {
		return nil, &ModalError{Msg: fmt.Sprintf("symbol %s already declared", QuoteSymbol(name))}
	}
	e.started = true
	sym := e.tb.Sym(name, s)
	level := len(e.decls) - 1
	if e.options.GlobalDeclarations {
		level = 0
	}
	e.decls[level] = append(e.decls[level], sym)
	e.declared[name] = true
	e.stats.Decls++
	e.logger.Trace("declared ", name, " : ", s)
	return sym, nil
}

// Declarations lists the visible declared constants in declaration order.
func (e *Engine) Declarations() []*Term {
	res := make([]*Term, 0, len(e.declared))
	for _, l := range e.decls {
		res = append(res, l...)
	}
	return res
}

func (e *Engine) Assert(t *Term) error {
	e.Logic()
	if err := e.solver.Add(t); err != nil {
		return err
	}
	e.started = true
	e.stats.Assertions++
	return nil
}

func (e *Engine) GetAssertions() []*Term {
	return e.solver.Assertions()
}

// CheckSat decides the assertions together with the assumptions. A sat result is validated
// against the assertions when check-models is on.
func (e *Engine) CheckSat(assumptions []*Term) (int, error) {
	if e.checks > 0 && !e.options.Incremental {
		return RESULT_ERROR, &ModalError{Msg: "cannot make multiple queries unless incremental solving is enabled (try --incremental)"}
	}
	for _, a := range assumptions {
		if !a.Sort().IsBool() {
			return RESULT_ERROR, sortErrorf("check-sat-assuming", "assumption %s is not Bool", a)
		}
	}
	e.Logic()
	e.started = true
	e.checks++

	start := time.Now()
	r := e.solver.CheckSat(assumptions...)
	elapsed := time.Since(start)
	e.stats.Checks++
	e.stats.CheckTime += elapsed
	e.logger.Debug("check-sat returned ", ResultString(r), " in ", elapsed)
	if r == RESULT_UNKNOWN {
		e.logger.Info("unknown result: ", e.solver.ReasonUnknown())
	}

	if r == RESULT_SAT && e.options.CheckModels {
		if err := e.checkModel(assumptions); err != nil {
			e.logger.Error("model check failed", err)
			return r, err
		}
	}
	return r, nil
}

func (e *Engine) checkModel(assumptions []*Term) error {
	e.stats.ModelChecks++
	checked := append(e.solver.Assertions(), assumptions...)
	for _, a := range checked {
		syms := e.tb.Symbols(a)
		model, err := e.solver.Model(syms)
		if err != nil {
			return errors.Wrap(err, "could not read the model")
		}
		v, err := e.tb.Eval(a, model)
		if err != nil {
			return errors.Wrapf(err, "could not evaluate %s", a)
		}
		switch {
		case v.IsTrue():
		case v.IsFalse():
			return fmt.Errorf("model check failed: %s evaluates to false", e.Printer().Term(a))
		default:
			e.logger.Warn("unable to validate ", e.Printer().Term(a), " under the model, it reduces to ", e.Printer().Term(v))
		}
	}
	e.logger.Debug("model validated against ", len(checked), " assertions")
	return nil
}

func (e *Engine) requireModel(cmd string) error {
	if !e.options.ProduceModels {
		return &ModalError{Msg: fmt.Sprintf("cannot %s when produce-models is false", cmd)}
	}
	if !e.solver.HasModel() {
		return &ModalError{Msg: fmt.Sprintf("cannot %s unless immediately preceded by a sat check-sat", cmd)}
	}
	return nil
}

// GetModel returns the value of every visible declared constant.
func (e *Engine) GetModel() ([]ModelEntry, error) {
	if err := e.requireModel("get model"); err != nil {
		return nil, err
	}
	decls := e.Declarations()
	model, err := e.solver.Model(decls)
	if err != nil {
		return nil, err
	}
	res := make([]ModelEntry, 0, len(decls))
	for _, d := range decls {
		res = append(res, ModelEntry{Symbol: d, Value: model[d]})
	}
	return res, nil
}

// GetValue evaluates each term in the current model.
func (e *Engine) GetValue(terms []*Term) ([]*Term, error) {
	if err := e.requireModel("get value"); err != nil {
		return nil, err
	}
	res := make([]*Term, 0, len(terms))
	for _, t := range terms {
		v, err := e.solver.Eval(t)
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, nil
}

func (e *Engine) requireIncremental(cmd string) error {
	if !e.options.Incremental {
		return &ModalError{Msg: fmt.Sprintf("%s requires incremental solving to be enabled (try --incremental)", cmd)}
	}
	return nil
}

// Push opens n assertion levels.
func (e *Engine) Push(n int) error {
	if err := e.requireIncremental("push"); err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("push expects a non-negative numeral, got %d", n)
	}
	if n > MaxAssertionLevels-e.solver.Depth() {
		return fmt.Errorf("cannot push %d levels, the assertion stack is limited to %d", n, MaxAssertionLevels)
	}
	e.started = true
	e.solver.Push(n)
	for i := 0; i < n; i++ {
		e.decls = append(e.decls, []*Term{})
	}
	return nil
}

// Pop closes n assertion levels, dropping their assertions and scoped declarations.
func (e *Engine) Pop(n int) error {
	if err := e.requireIncremental("pop"); err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("pop expects a non-negative numeral, got %d", n)
	}
	if err := e.solver.Pop(n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		for _, d := range e.decls[len(e.decls)-1] {
			delete(e.declared, d.Name())
		}
		e.decls = e.decls[:len(e.decls)-1]
	}
	return nil
}

// ResetAssertions drops every assertion and every non-global declaration.
func (e *Engine) ResetAssertions() {
	e.solver.Reset()
	if e.options.GlobalDeclarations {
		e.decls = [][]*Term{e.decls[0]}
		return
	}
	e.decls = [][]*Term{{}}
	e.declared = make(map[string]bool)
}

// Reset brings the engine back to the state NewEngine left it in.
func (e *Engine) Reset() {
	e.logger.Debug("engine reset")
	e.reset()
}
