package smtlib

import (
	"strings"

	"github.com/borzacchiello/smtpipe"
)

type DatumKind int

const (
	DATUM_SYMBOL DatumKind = iota
	DATUM_KEYWORD
	DATUM_NUMERAL
	DATUM_DECIMAL
	DATUM_HEX
	DATUM_BINARY
	DATUM_STRING
	DATUM_LIST
)

// Datum is one S-expression read from the input.
type Datum struct {
	Kind DatumKind
	// Text is the symbol name (without bars), the keyword (with its colon), the digits of a
	// numeral, decimal, #x or #b literal, or the unescaped content of a string.
	Text string
	// Quoted is set for symbols written between bars.
	Quoted bool
	List   []*Datum

	Line   int
	Column int
}

// IsSymbol reports whether d is the symbol name.
func (d *Datum) IsSymbol(name string) bool {
	return d.Kind == DATUM_SYMBOL && d.Text == name
}

// Head returns the symbol a list starts with, or "".
func (d *Datum) Head() string {
	if d.Kind != DATUM_LIST || len(d.List) == 0 || d.List[0].Kind != DATUM_SYMBOL {
		return ""
	}
	return d.List[0].Text
}

func (d *Datum) String() string {
	b := strings.Builder{}
	d.write(&b)
	return b.String()
}

func (d *Datum) write(b *strings.Builder) {
	switch d.Kind {
	case DATUM_SYMBOL:
		if d.Quoted && !smtpipe.IsSimpleSymbol(d.Text) {
			b.WriteString("|" + d.Text + "|")
		} else {
			b.WriteString(d.Text)
		}
	case DATUM_HEX:
		b.WriteString("#x" + d.Text)
	case DATUM_BINARY:
		b.WriteString("#b" + d.Text)
	case DATUM_STRING:
		b.WriteString(smtpipe.QuoteString(d.Text))
	case DATUM_LIST:
		b.WriteString("(")
		for i, c := range d.List {
			if i > 0 {
				b.WriteString(" ")
			}
			c.write(b)
		}
		b.WriteString(")")
	default:
		b.WriteString(d.Text)
	}
}
