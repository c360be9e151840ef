package scan

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"quill/mem"
	"quill/types"
)

// Scanner turns source text into an array of cells. It produces data, not
// an executable program: words come back unbound, nesting produces block
// and group cells referencing freshly allocated arrays.
type Scanner struct {
	heap         *mem.Heap
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int
}

// Load scans a whole source string into a managed array stub.
func Load(h *mem.Heap, src string) (types.StubRef, error) {
	s := &Scanner{heap: h, input: src, line: 1}
	s.readChar()

	// Cells accumulate in native slices before the backing arrays exist,
	// where the collector cannot see them.
	h.DisableCollect()
	defer h.EnableCollect()

	cells, err := s.scanList(0)
	if err != nil {
		return types.NilStub, err
	}
	ref, err := h.NewArray(cells)
	if err != nil {
		return types.NilStub, err
	}
	h.Manage(ref)
	return ref, nil
}

func (s *Scanner) readChar() {
	if s.readPosition >= len(s.input) {
		s.ch = 0
	} else {
		s.ch = s.input[s.readPosition]
	}
	s.position = s.readPosition
	s.readPosition++
	if s.ch == '\n' {
		s.line++
	}
}

func (s *Scanner) peekChar() byte {
	if s.readPosition >= len(s.input) {
		return 0
	}
	return s.input[s.readPosition]
}

func (s *Scanner) skipWhitespace() {
	for {
		for s.ch == ' ' || s.ch == '\t' || s.ch == '\n' || s.ch == '\r' {
			s.readChar()
		}
		if s.ch == ';' {
			for s.ch != '\n' && s.ch != 0 {
				s.readChar()
			}
			continue
		}
		return
	}
}

// scanList scans values until the closing delimiter (0 for end of input).
func (s *Scanner) scanList(until byte) ([]types.Cell, error) {
	var cells []types.Cell
	for {
		s.skipWhitespace()
		if s.ch == until {
			s.readChar()
			return cells, nil
		}
		if s.ch == 0 {
			if until == 0 {
				return cells, nil
			}
			return nil, s.errorf("unexpected end of input, expected %q", string(until))
		}
		if s.ch == ']' || s.ch == ')' {
			return nil, s.errorf("unexpected %q", string(s.ch))
		}
		c, err := s.scanValue()
		if err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
}

func (s *Scanner) scanValue() (types.Cell, error) {
	var c types.Cell
	switch {
	case s.ch == ',':
		s.readChar()
		types.InitComma(&c)
		return c, nil

	case s.ch == '[':
		s.readChar()
		return s.scanNested(']', types.InitBlock)

	case s.ch == '(':
		s.readChar()
		return s.scanNested(')', types.InitGroup)

	case s.ch == '"':
		return s.scanString()

	case s.ch == '#':
		return s.scanHash()

	case s.ch == '\'':
		s.readChar()
		return s.scanWord(types.HEART_LITWORD)

	case s.ch == ':':
		s.readChar()
		return s.scanWord(types.HEART_GETWORD)

	case isDigit(s.ch) || ((s.ch == '-' || s.ch == '+') && isDigit(s.peekChar())):
		return s.scanNumber()

	case isWordStart(s.ch):
		return s.scanWord(types.HEART_WORD)
	}
	return c, s.errorf("unexpected character %q", string(s.ch))
}

func (s *Scanner) scanNested(closer byte, init func(*types.Cell, types.StubRef)) (types.Cell, error) {
	var c types.Cell
	cells, err := s.scanList(closer)
	if err != nil {
		return c, err
	}
	ref, err := s.heap.NewArray(cells)
	if err != nil {
		return c, err
	}
	s.heap.Manage(ref)
	init(&c, ref)
	return c, nil
}

func (s *Scanner) scanNumber() (types.Cell, error) {
	var c types.Cell
	start := s.position
	if s.ch == '-' || s.ch == '+' {
		s.readChar()
	}
	decimal := false
	for isDigit(s.ch) || s.ch == '.' {
		if s.ch == '.' {
			if decimal || !isDigit(s.peekChar()) {
				break
			}
			decimal = true
		}
		s.readChar()
	}
	text := s.input[start:s.position]
	if decimal {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return c, s.errorf("bad decimal %q", text)
		}
		types.InitDecimal(&c, v)
		return c, nil
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return c, s.errorf("bad integer %q", text)
	}
	types.InitInteger(&c, v)
	return c, nil
}

func (s *Scanner) scanWord(heart types.Heart) (types.Cell, error) {
	var c types.Cell
	if !isWordStart(s.ch) {
		return c, s.errorf("expected a word, found %q", string(s.ch))
	}
	start := s.position
	for isWordChar(s.ch) {
		s.readChar()
	}
	spelling := s.input[start:s.position]
	if heart == types.HEART_WORD && s.ch == ':' {
		s.readChar()
		heart = types.HEART_SETWORD
	}
	sym, err := s.heap.Intern(spelling)
	if err != nil {
		return c, err
	}
	types.InitWord(&c, heart, sym)
	return c, nil
}

// scanString reads a quoted string with caret escapes.
func (s *Scanner) scanString() (types.Cell, error) {
	var c types.Cell
	s.readChar() // opening quote
	var b strings.Builder
	for s.ch != '"' {
		if s.ch == 0 {
			return c, s.errorf("unterminated string")
		}
		if s.ch == '^' {
			s.readChar()
			switch s.ch {
			case '/':
				b.WriteByte('\n')
			case '-':
				b.WriteByte('\t')
			case '"', '^':
				b.WriteByte(s.ch)
			default:
				return c, s.errorf("unknown escape ^%s", string(s.ch))
			}
			s.readChar()
			continue
		}
		b.WriteByte(s.ch)
		s.readChar()
	}
	s.readChar() // closing quote
	ref, err := s.heap.NewText(b.String())
	if err != nil {
		return c, err
	}
	s.heap.Manage(ref)
	types.InitText(&c, ref)
	return c, nil
}

// scanHash reads the #-prefixed forms: #{...} binary and #"c" char.
func (s *Scanner) scanHash() (types.Cell, error) {
	var c types.Cell
	s.readChar()
	switch s.ch {
	case '{':
		s.readChar()
		start := s.position
		for s.ch != '}' {
			if s.ch == 0 {
				return c, s.errorf("unterminated binary")
			}
			s.readChar()
		}
		hexText := strings.Map(dropSpace, s.input[start:s.position])
		s.readChar()
		if len(hexText)%2 != 0 {
			return c, s.errorf("binary needs an even digit count")
		}
		data := make([]byte, len(hexText)/2)
		for i := 0; i < len(data); i++ {
			v, err := strconv.ParseUint(hexText[i*2:i*2+2], 16, 8)
			if err != nil {
				return c, s.errorf("bad binary digits %q", hexText[i*2:i*2+2])
			}
			data[i] = byte(v)
		}
		ref, err := s.heap.NewBinary(data)
		if err != nil {
			return c, err
		}
		s.heap.Manage(ref)
		types.InitBinary(&c, ref)
		return c, nil

	case '"':
		s.readChar()
		r, size := utf8.DecodeRuneInString(s.input[s.position:])
		if size == 0 || r == utf8.RuneError && size == 1 {
			return c, s.errorf("bad char literal")
		}
		for i := 0; i < size; i++ {
			s.readChar()
		}
		if s.ch != '"' {
			return c, s.errorf("unterminated char literal")
		}
		s.readChar()
		types.InitChar(&c, r)
		return c, nil
	}
	return c, s.errorf("unexpected # form")
}

func (s *Scanner) errorf(format string, args ...any) error {
	return fmt.Errorf("scan: line %d: %s", s.line, fmt.Sprintf(format, args...))
}

func dropSpace(r rune) rune {
	if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
		return -1
	}
	return r
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isWordStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
		ch == '-' || ch == '+' || ch == '*' || ch == '!' || ch == '?' ||
		ch == '=' || ch == '<' || ch == '>' || ch == '_' || ch == '&' || ch == '.'
}

func isWordChar(ch byte) bool {
	return isWordStart(ch) || isDigit(ch)
}
