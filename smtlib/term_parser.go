package smtlib

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/borzacchiello/smtpipe"
)

// unsupportedSorts and unsupportedHeads name standard constructs outside of the supported theories.
var unsupportedSorts = map[string]bool{
	"Real": true, "String": true, "RegLan": true, "Array": true, "FloatingPoint": true, "RoundingMode": true,
}

var unsupportedHeads = map[string]bool{
	"forall": true, "exists": true, "match": true, "as": true, "select": true, "store": true,
	"to_real": true, "to_int": true, "is_int": true, "/": true,
}

func (p *Parser) errorf(d *Datum, format string, args ...any) error {
	return parseErrorf(p.name, d.Line, d.Column, format, args...)
}

// wrap turns a term construction error into a ParseError located at d.
func (p *Parser) wrap(d *Datum, err error) error {
	var perr *ParseError
	if errors.As(err, &perr) {
		return err
	}
	return p.errorf(d, "%s", err.Error())
}

func (p *Parser) numeral(d *Datum) (uint, error) {
	if d.Kind != DATUM_NUMERAL {
		return 0, p.errorf(d, "expected a numeral, got %s", d)
	}
	v, err := strconv.ParseUint(d.Text, 10, 32)
	if err != nil {
		return 0, p.errorf(d, "numeral %s is too large", d.Text)
	}
	return uint(v), nil
}

func (p *Parser) symbol(d *Datum) (string, error) {
	if d.Kind != DATUM_SYMBOL {
		return "", p.errorf(d, "expected a symbol, got %s", d)
	}
	return d.Text, nil
}

func (p *Parser) admitSort(d *Datum, s smtpipe.Sort) error {
	l := p.engine.Logic()
	if !l.AdmitsSort(s) {
		return p.errorf(d, "sort %s is not allowed in logic %s", s, l.Name)
	}
	return nil
}

// sort parses Bool, Int, (_ BitVec n) and parameterless aliases.
func (p *Parser) sort(d *Datum) (smtpipe.Sort, error) {
	var s smtpipe.Sort
	switch d.Kind {
	case DATUM_SYMBOL:
		switch d.Text {
		case "Bool":
			s = smtpipe.BoolSort
		case "Int":
			s = smtpipe.IntSort
		default:
			alias, ok := p.symbols.LookupSort(d.Text)
			if ok {
				return alias, nil
			}
			if unsupportedSorts[d.Text] {
				return s, p.errorf(d, "unsupported: sort %s", d.Text)
			}
			return s, p.errorf(d, "unknown sort %s", d)
		}
	case DATUM_LIST:
		if len(d.List) == 3 && d.Head() == "_" && d.List[1].IsSymbol("BitVec") {
			w, err := p.numeral(d.List[2])
			if err != nil {
				return s, err
			}
			if w == 0 {
				return s, p.errorf(d, "bit-vector sorts must have a positive width")
			}
			s = smtpipe.BitVecSort(w)
			break
		}
		if len(d.List) > 0 && unsupportedSorts[d.Head()] {
			return s, p.errorf(d, "unsupported: sort %s", d.Head())
		}
		return s, p.errorf(d, "unknown sort %s", d)
	default:
		return s, p.errorf(d, "expected a sort, got %s", d)
	}
	return s, p.admitSort(d, s)
}

// term parses d in the current scope.
func (p *Parser) term(d *Datum) (*smtpipe.Term, error) {
	switch d.Kind {
	case DATUM_NUMERAL:
		if !p.engine.Logic().Ints {
			return nil, p.errorf(d, "integer literals are not allowed in logic %s", p.engine.Logic().Name)
		}
		v, _ := new(big.Int).SetString(d.Text, 10)
		return p.tb.IntValBig(v), nil
	case DATUM_DECIMAL:
		return nil, p.errorf(d, "unsupported: real literal %s", d.Text)
	case DATUM_HEX, DATUM_BINARY:
		base, width := 16, uint(4*len(d.Text))
		if d.Kind == DATUM_BINARY {
			base, width = 2, uint(len(d.Text))
		}
		if err := p.admitSort(d, smtpipe.BitVecSort(width)); err != nil {
			return nil, err
		}
		return p.tb.BVConstTerm(smtpipe.MakeBVConstFromString(d.Text, base, width)), nil
	case DATUM_STRING:
		return nil, p.errorf(d, "unsupported: string literal %s", d)
	case DATUM_KEYWORD:
		return nil, p.errorf(d, "expected a term, got %s", d)
	case DATUM_SYMBOL:
		return p.reference(d)
	}

	if len(d.List) == 0 {
		return nil, p.errorf(d, "expected a term, got ()")
	}
	head := d.List[0]
	if head.Kind == DATUM_LIST {
		if head.Head() != "_" {
			return nil, p.errorf(head, "unexpected function %s", head)
		}
		return p.indexedApp(d, head)
	}
	if head.Kind != DATUM_SYMBOL {
		return nil, p.errorf(head, "expected a function symbol, got %s", head)
	}

	switch head.Text {
	case "_":
		return p.indexedLiteral(d)
	case "let":
		return p.let(d)
	case "!":
		return p.annotation(d)
	}
	if unsupportedHeads[head.Text] && !p.symbols.IsBound(head.Text) {
		return nil, p.errorf(head, "unsupported: %s", head.Text)
	}

	args := make([]*smtpipe.Term, 0, len(d.List)-1)
	for _, a := range d.List[1:] {
		t, err := p.term(a)
		if err != nil {
			return nil, err
		}
		args = append(args, t)
	}
	if m, ok := p.symbols.Lookup(head.Text); ok {
		return p.applyMacro(d, m, args)
	}
	return p.apply(d, head.Text, args)
}

func (p *Parser) reference(d *Datum) (*smtpipe.Term, error) {
	switch d.Text {
	case "true":
		return p.tb.True(), nil
	case "false":
		return p.tb.False(), nil
	}
	m, ok := p.symbols.Lookup(d.Text)
	if !ok {
		return nil, p.errorf(d, "symbol %s not declared", smtpipe.QuoteSymbol(d.Text))
	}
	if len(m.Params) > 0 {
		return nil, p.errorf(d, "%s expects %d arguments", smtpipe.QuoteSymbol(d.Text), len(m.Params))
	}
	return m.Body, nil
}

func (p *Parser) applyMacro(d *Datum, m *Macro, args []*smtpipe.Term) (*smtpipe.Term, error) {
	if len(args) != len(m.Params) {
		return nil, p.errorf(d, "%s expects %d arguments, got %d", smtpipe.QuoteSymbol(m.Name), len(m.Params), len(args))
	}
	mapping := make(map[*smtpipe.Term]*smtpipe.Term, len(args))
	for i, param := range m.Params {
		mapping[param] = args[i]
	}
	t, err := p.tb.Substitute(m.Body, mapping)
	if err != nil {
		return nil, p.wrap(d, err)
	}
	return t, nil
}

// indexedLiteral parses (_ bvN w).
func (p *Parser) indexedLiteral(d *Datum) (*smtpipe.Term, error) {
	if len(d.List) != 3 || d.List[1].Kind != DATUM_SYMBOL || !strings.HasPrefix(d.List[1].Text, "bv") {
		return nil, p.errorf(d, "unexpected indexed term %s", d)
	}
	value, ok := new(big.Int).SetString(d.List[1].Text[2:], 10)
	if !ok || value.Sign() < 0 {
		return nil, p.errorf(d.List[1], "invalid bit-vector literal %s", d.List[1].Text)
	}
	width, err := p.numeral(d.List[2])
	if err != nil {
		return nil, err
	}
	if width == 0 {
		return nil, p.errorf(d, "bit-vector literals must have a positive width")
	}
	if err := p.admitSort(d, smtpipe.BitVecSort(width)); err != nil {
		return nil, err
	}
	return p.tb.BVConstTerm(smtpipe.MakeBVConstFromBigint(value, width)), nil
}

// indexedApp parses ((_ op i...) t).
func (p *Parser) indexedApp(d *Datum, head *Datum) (*smtpipe.Term, error) {
	if len(head.List) < 3 || head.List[1].Kind != DATUM_SYMBOL {
		return nil, p.errorf(head, "malformed indexed operator %s", head)
	}
	op := head.List[1].Text
	indices := make([]uint, 0, len(head.List)-2)
	for _, i := range head.List[2:] {
		n, err := p.numeral(i)
		if err != nil {
			return nil, err
		}
		indices = append(indices, n)
	}
	if len(d.List) != 2 {
		return nil, p.errorf(d, "%s expects 1 argument, got %d", op, len(d.List)-1)
	}
	arg, err := p.term(d.List[1])
	if err != nil {
		return nil, err
	}

	want := 1
	if op == "extract" {
		want = 2
	}
	if len(indices) != want {
		return nil, p.errorf(head, "%s expects %d indices, got %d", op, want, len(indices))
	}

	var t *smtpipe.Term
	switch op {
	case "extract":
		t, err = p.tb.Extract(arg, indices[0], indices[1])
	case "zero_extend":
		t, err = p.tb.ZExt(arg, indices[0])
	case "sign_extend":
		t, err = p.tb.SExt(arg, indices[0])
	case "repeat":
		t, err = p.repeat(arg, indices[0])
	case "rotate_left", "rotate_right":
		t, err = p.rotate(arg, indices[0], op == "rotate_left")
	default:
		return nil, p.errorf(head, "unknown indexed operator %s", op)
	}
	if err != nil {
		return nil, p.wrap(d, err)
	}
	return t, nil
}

func (p *Parser) repeat(arg *smtpipe.Term, n uint) (*smtpipe.Term, error) {
	if n == 0 {
		return nil, errors.New("repeat expects a positive index")
	}
	copies := make([]*smtpipe.Term, n)
	for i := range copies {
		copies[i] = arg
	}
	return p.tb.Concat(copies...)
}

func (p *Parser) rotate(arg *smtpipe.Term, n uint, left bool) (*smtpipe.Term, error) {
	if !arg.Sort().IsBitVec() {
		return nil, errors.Errorf("rotate expects a bit-vector, got %s", arg.Sort())
	}
	w := arg.Sort().Width
	n %= w
	if n == 0 {
		return arg, nil
	}
	if !left {
		n = w - n
	}
	// rotate_left by n: x[w-n-1:0] ++ x[w-1:w-n]
	low, err := p.tb.Extract(arg, w-n-1, 0)
	if err != nil {
		return nil, err
	}
	high, err := p.tb.Extract(arg, w-1, w-n)
	if err != nil {
		return nil, err
	}
	return p.tb.Concat(low, high)
}

// let binds every name in parallel, then parses the body in a new scope.
func (p *Parser) let(d *Datum) (*smtpipe.Term, error) {
	if len(d.List) != 3 || d.List[1].Kind != DATUM_LIST || len(d.List[1].List) == 0 {
		return nil, p.errorf(d, "malformed let %s", d)
	}
	bindings := make([]*Macro, 0, len(d.List[1].List))
	seen := make(map[string]bool)
	for _, b := range d.List[1].List {
		if b.Kind != DATUM_LIST || len(b.List) != 2 {
			return nil, p.errorf(b, "malformed let binding %s", b)
		}
		name, err := p.symbol(b.List[0])
		if err != nil {
			return nil, err
		}
		if seen[name] {
			return nil, p.errorf(b, "%s bound twice in the same let", smtpipe.QuoteSymbol(name))
		}
		seen[name] = true
		t, err := p.term(b.List[1])
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, &Macro{Name: name, Body: t})
	}

	p.symbols.PushScope()
	defer p.symbols.PopScope()
	for _, m := range bindings {
		p.symbols.Bind(m, false)
	}
	return p.term(d.List[2])
}

// annotation parses (! t attrs...). A :named attribute binds the name to t.
func (p *Parser) annotation(d *Datum) (*smtpipe.Term, error) {
	if len(d.List) < 3 {
		return nil, p.errorf(d, "malformed annotation %s", d)
	}
	t, err := p.term(d.List[1])
	if err != nil {
		return nil, err
	}
	attrs := d.List[2:]
	for i := 0; i < len(attrs); i++ {
		if attrs[i].Kind != DATUM_KEYWORD {
			return nil, p.errorf(attrs[i], "expected an attribute, got %s", attrs[i])
		}
		if attrs[i].Text != ":named" {
			p.logger.Debug("ignoring attribute ", attrs[i].Text)
			if i+1 < len(attrs) && attrs[i+1].Kind != DATUM_KEYWORD {
				i++
			}
			continue
		}
		if i+1 >= len(attrs) {
			return nil, p.errorf(attrs[i], ":named expects a symbol")
		}
		i++
		name, err := p.symbol(attrs[i])
		if err != nil {
			return nil, err
		}
		if p.symbols.IsBound(name) {
			return nil, p.errorf(attrs[i], "symbol %s already declared", smtpipe.QuoteSymbol(name))
		}
		// the name outlives let scopes and belongs to the current assertion level
		level := p.level
		if p.global() {
			level = 0
		}
		p.symbols.BindAt(&Macro{Name: name, Body: t}, level)
	}
	return t, nil
}
