package smtlib

import (
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/borzacchiello/smtpipe"
)

var errIncomplete = errors.New("incomplete datum")

const readChunkSize = 4096

// Reader yields the top-level S-expressions of a source. Text is parsed one complete line at
// a time, so a datum is returned as soon as the line closing it has been read. A source that
// reports ErrNoInput leaves the Reader waiting in the middle of a datum; Next resumes once
// more text is available.
type Reader struct {
	name string
	src  io.Reader

	// partial holds bytes read from src after the last newline
	partial []byte
	// text holds complete lines not consumed yet, starting at line:col
	text      []byte
	line, col int

	// open counts the lists a malformed datum left open; they are skipped before
	// the next datum is read
	open int
	// inLiteral is the delimiter of a string or quoted symbol being skipped
	inLiteral byte

	eof   bool
	chunk []byte
}

func NewReader(name string, src io.Reader) *Reader {
	return &Reader{
		name:  name,
		src:   src,
		line:  1,
		col:   1,
		chunk: make([]byte, readChunkSize),
	}
}

// Next returns the next datum. It returns ErrNoInput when the source has no more text for
// now, io.EOF at the end of the stream, and a *ParseError for malformed input. After a
// ParseError inside a list the rest of that top-level datum is skipped, up to its closing
// parenthesis. A malformed top-level atom skips the rest of its line.
func (r *Reader) Next() (*Datum, error) {
	for {
		if r.open > 0 && !r.skipOpen() {
			if r.eof {
				r.open, r.inLiteral = 0, 0
				return nil, io.EOF
			}
			if err := r.fill(); err != nil {
				return nil, err
			}
			continue
		}

		s := scanner{name: r.name, text: r.text, line: r.line, col: r.col}
		s.skipSpace()
		if s.i < len(s.text) {
			startLine, startCol := s.line, s.col
			d, err := s.datum()
			if err == nil {
				r.consume(s.i)
				return d, nil
			}
			if err != errIncomplete {
				if s.depth > 0 {
					r.consume(s.i)
					r.open = s.depth
				} else {
					r.skipLine(s.i)
				}
				return nil, err
			}
			if r.eof {
				r.consume(len(r.text))
				return nil, parseErrorf(r.name, startLine, startCol, "unexpected end of input")
			}
		} else {
			r.consume(s.i)
			if r.eof {
				return nil, io.EOF
			}
		}

		if err := r.fill(); err != nil {
			return nil, err
		}
	}
}

// fill moves the next complete line from the source to text.
func (r *Reader) fill() error {
	for {
		if i := bytes.IndexByte(r.partial, '\n'); i >= 0 {
			r.text = append(r.text, r.partial[:i+1]...)
			r.partial = append(r.partial[:0], r.partial[i+1:]...)
			return nil
		}

		n, err := r.src.Read(r.chunk)
		r.partial = append(r.partial, r.chunk[:n]...)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			r.eof = true
			r.text = append(r.text, r.partial...)
			r.partial = r.partial[:0]
			return nil
		case bytes.IndexByte(r.partial, '\n') >= 0:
			// a line arrived together with the error, which the next read reports again
		default:
			return err
		}
	}
}

func (r *Reader) consume(n int) {
	for _, c := range r.text[:n] {
		if c == '\n' {
			r.line++
			r.col = 1
		} else {
			r.col++
		}
	}
	r.text = append(r.text[:0], r.text[n:]...)
}

func (r *Reader) skipLine(from int) {
	if i := bytes.IndexByte(r.text[from:], '\n'); i >= 0 {
		r.consume(from + i + 1)
		return
	}
	r.consume(len(r.text))
}

// skipOpen consumes text until the lists counted by open are closed. It reports whether
// they were.
func (r *Reader) skipOpen() bool {
	i := 0
	for i < len(r.text) && r.open > 0 {
		c := r.text[i]
		i++
		switch {
		case r.inLiteral != 0:
			if c != r.inLiteral {
				continue
			}
			if c == '"' && i < len(r.text) && r.text[i] == '"' {
				i++
				continue
			}
			r.inLiteral = 0
		case c == '"' || c == '|':
			r.inLiteral = c
		case c == ';':
			for i < len(r.text) && r.text[i] != '\n' {
				i++
			}
		case c == '(':
			r.open++
		case c == ')':
			r.open--
		}
	}
	r.consume(i)
	return r.open == 0
}

type scanner struct {
	name      string
	text      []byte
	i         int
	line, col int
	// depth is the number of lists opened and not closed yet
	depth int
}

func (s *scanner) atEnd() bool {
	return s.i >= len(s.text)
}

func (s *scanner) next() byte {
	c := s.text[s.i]
	s.i++
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return c
}

func (s *scanner) skipSpace() {
	for !s.atEnd() {
		switch c := s.text[s.i]; c {
		case ';':
			for !s.atEnd() && s.text[s.i] != '\n' {
				s.next()
			}
		case ' ', '\t', '\n', '\r':
			s.next()
		default:
			return
		}
	}
}

func isDelimiter(c byte) bool {
	return strings.IndexByte(" \t\r\n();\"|", c) >= 0
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (s *scanner) token() string {
	start := s.i
	for !s.atEnd() && !isDelimiter(s.text[s.i]) {
		s.next()
	}
	return string(s.text[start:s.i])
}

func (s *scanner) errorf(line, col int, format string, args ...any) error {
	return parseErrorf(s.name, line, col, format, args...)
}

func (s *scanner) datum() (*Datum, error) {
	if s.atEnd() {
		return nil, errIncomplete
	}
	line, col := s.line, s.col
	c := s.text[s.i]

	switch {
	case c == '(':
		s.next()
		s.depth++
		d := &Datum{Kind: DATUM_LIST, List: []*Datum{}, Line: line, Column: col}
		for {
			s.skipSpace()
			if s.atEnd() {
				return nil, errIncomplete
			}
			if s.text[s.i] == ')' {
				s.next()
				s.depth--
				return d, nil
			}
			child, err := s.datum()
			if err != nil {
				return nil, err
			}
			d.List = append(d.List, child)
		}

	case c == ')':
		s.next()
		return nil, s.errorf(line, col, "unexpected )")

	case c == '"':
		s.next()
		b := strings.Builder{}
		for {
			if s.atEnd() {
				return nil, errIncomplete
			}
			c := s.next()
			if c == '"' {
				if !s.atEnd() && s.text[s.i] == '"' {
					s.next()
					b.WriteByte('"')
					continue
				}
				return &Datum{Kind: DATUM_STRING, Text: b.String(), Line: line, Column: col}, nil
			}
			b.WriteByte(c)
		}

	case c == '|':
		s.next()
		start := s.i
		// a bad symbol is still read up to its closing bar
		var bad error
		for {
			if s.atEnd() {
				return nil, errIncomplete
			}
			switch s.text[s.i] {
			case '|':
				name := string(s.text[start:s.i])
				s.next()
				if bad != nil {
					return nil, bad
				}
				return &Datum{Kind: DATUM_SYMBOL, Text: name, Quoted: true, Line: line, Column: col}, nil
			case '\\':
				if bad == nil {
					bad = s.errorf(s.line, s.col, "backslash is not allowed in a quoted symbol")
				}
			}
			s.next()
		}

	case c == '#':
		s.next()
		tok := s.token()
		switch {
		case len(tok) > 1 && tok[0] == 'x' && isHex(tok[1:]):
			return &Datum{Kind: DATUM_HEX, Text: tok[1:], Line: line, Column: col}, nil
		case len(tok) > 1 && tok[0] == 'b' && isBinary(tok[1:]):
			return &Datum{Kind: DATUM_BINARY, Text: tok[1:], Line: line, Column: col}, nil
		}
		return nil, s.errorf(line, col, "invalid literal #%s", tok)

	case c == ':':
		s.next()
		tok := s.token()
		if !smtpipe.IsSimpleSymbol(tok) && !(tok != "" && isDigits(tok)) {
			return nil, s.errorf(line, col, "invalid keyword :%s", tok)
		}
		return &Datum{Kind: DATUM_KEYWORD, Text: ":" + tok, Line: line, Column: col}, nil

	case isDigit(c):
		tok := s.token()
		if isDigits(tok) {
			return &Datum{Kind: DATUM_NUMERAL, Text: tok, Line: line, Column: col}, nil
		}
		if dot := strings.IndexByte(tok, '.'); dot > 0 && isDigits(tok[:dot]) && isDigits(tok[dot+1:]) {
			return &Datum{Kind: DATUM_DECIMAL, Text: tok, Line: line, Column: col}, nil
		}
		return nil, s.errorf(line, col, "invalid numeral %s", tok)
	}

	tok := s.token()
	if !smtpipe.IsSimpleSymbol(tok) {
		if tok == "" {
			s.next()
			tok = string(c)
		}
		return nil, s.errorf(line, col, "unexpected %q", tok)
	}
	return &Datum{Kind: DATUM_SYMBOL, Text: tok, Line: line, Column: col}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isDigit(c) && !(c >= 'a' && c <= 'f') && !(c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

func isBinary(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '0' && s[i] != '1' {
			return false
		}
	}
	return true
}
