package smtpipe

import (
	"fmt"
	"math/big"
	"strings"
)

// Printer renders terms and sorts in one output language.
type Printer interface {
	Term(t *Term) string
	Sort(s Sort) string
	Symbol(name string) string
}

var (
	SMTPrinter   Printer = smtPrinter{}
	InfixPrinter Printer = infixPrinter{}
)

// PrinterFor returns the printer of an output language, SMT-LIB for unknown ones.
func PrinterFor(lang OutputLanguage) Printer {
	if lang == LANG_INFIX {
		return InfixPrinter
	}
	return SMTPrinter
}

func isSimpleSymbolChar(r rune) bool {
	if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
		return true
	}
	return strings.ContainsRune("~!@$%^&*_-+=<>.?/", r)
}

// IsSimpleSymbol reports whether name can be printed without |quotes|.
func IsSimpleSymbol(name string) bool {
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		return false
	}
	for _, r := range name {
		if !isSimpleSymbolChar(r) {
			return false
		}
	}
	return true
}

// QuoteSymbol returns name as an SMT-LIB symbol, quoting it when needed.
func QuoteSymbol(name string) string {
	if IsSimpleSymbol(name) {
		return name
	}
	return "|" + name + "|"
}

type smtPrinter struct{}

func (smtPrinter) Sort(s Sort) string {
	return s.String()
}

func (smtPrinter) Symbol(name string) string {
	return QuoteSymbol(name)
}

func (p smtPrinter) Term(t *Term) string {
	b := strings.Builder{}
	p.write(&b, t)
	return b.String()
}

func (p smtPrinter) write(b *strings.Builder, t *Term) {
	switch t.kind {
	case TY_SYM, TY_VAR:
		b.WriteString(QuoteSymbol(t.name))
		return
	case TY_BOOL_CONST:
		fmt.Fprintf(b, "%t", t.boolVal)
		return
	case TY_INT_CONST:
		if t.intVal.Sign() < 0 {
			fmt.Fprintf(b, "(- %s)", new(big.Int).Abs(t.intVal).String())
		} else {
			b.WriteString(t.intVal.String())
		}
		return
	case TY_CONST:
		if t.bvVal.Size%4 == 0 {
			b.WriteString("#x" + t.bvVal.HexString())
		} else {
			b.WriteString("#b" + t.bvVal.BinaryString())
		}
		return
	}

	info := kindInfos[t.kind]
	b.WriteString("(")
	switch t.kind {
	case TY_EXTRACT:
		fmt.Fprintf(b, "(_ extract %d %d)", t.indices[0], t.indices[1])
	case TY_ZEXT, TY_SEXT:
		fmt.Fprintf(b, "(_ %s %d)", info.smt, t.indices[0])
	default:
		b.WriteString(info.smt)
	}
	for _, c := range t.children {
		b.WriteString(" ")
		p.write(b, c)
	}
	b.WriteString(")")
}

// infixPrinter renders terms in a compact mathematical notation meant for humans.
type infixPrinter struct{}

func (infixPrinter) Sort(s Sort) string {
	switch s.Kind {
	case SORT_BITVEC:
		return fmt.Sprintf("BV%d", s.Width)
	}
	return s.String()
}

func (infixPrinter) Symbol(name string) string {
	return name
}

func (p infixPrinter) Term(t *Term) string {
	switch t.kind {
	case TY_SYM, TY_VAR:
		return t.name
	case TY_BOOL_CONST:
		if t.boolVal {
			return "T"
		}
		return "F"
	case TY_INT_CONST:
		return t.intVal.String()
	case TY_CONST:
		return fmt.Sprintf("0x%x", t.bvVal.value)
	}

	info := kindInfos[t.kind]
	switch t.kind {
	case TY_ITE:
		return fmt.Sprintf("%s ? %s : %s", p.operand(t.children[0]), p.operand(t.children[1]), p.operand(t.children[2]))
	case TY_EXTRACT:
		return fmt.Sprintf("%s[%d:%d]", p.operand(t.children[0]), t.indices[0], t.indices[1])
	case TY_ZEXT, TY_SEXT:
		return fmt.Sprintf("%s(%s, %d)", info.infix, p.Term(t.children[0]), t.indices[0])
	case TY_INT_ABS:
		return fmt.Sprintf("abs(%s)", p.Term(t.children[0]))
	}

	if len(t.children) == 1 {
		return info.infix + p.operand(t.children[0])
	}
	b := strings.Builder{}
	b.WriteString(p.operand(t.children[0]))
	for _, c := range t.children[1:] {
		fmt.Fprintf(&b, " %s %s", info.infix, p.operand(c))
	}
	return b.String()
}

func (p infixPrinter) operand(t *Term) string {
	if t.IsLeaf() {
		return p.Term(t)
	}
	return "(" + p.Term(t) + ")"
}

// QuoteString renders s as an SMT-LIB string literal.
func QuoteString(s string) string {
	return "\"" + strings.ReplaceAll(s, "\"", "\"\"") + "\""
}
