package eval

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"quill/types"
)

// Mold renders a cell to loadable source form (strings quoted, blocks
// bracketed). Diagnostic output and error messages go through here.
func (m *Machine) Mold(c *types.Cell) string {
	var b strings.Builder
	m.moldInto(&b, c)
	return b.String()
}

// Form renders a cell for human output: text comes back raw, everything
// else molds.
func (m *Machine) Form(c *types.Cell) string {
	if c != nil && c.Is(types.HEART_TEXT) {
		return m.flexString(c)
	}
	return m.Mold(c)
}

func (m *Machine) moldInto(b *strings.Builder, c *types.Cell) {
	if c == nil {
		b.WriteString("~null~")
		return
	}
	if types.Classify(types.HeaderBase(c.Header)) != types.ClassCell {
		b.WriteString("~unset~")
		return
	}
	switch c.Heart() {
	case types.HEART_NULL:
		b.WriteString("~null~")
	case types.HEART_COMMA:
		b.WriteByte(',')
	case types.HEART_LOGIC:
		if c.Logic() {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case types.HEART_INTEGER:
		b.WriteString(strconv.FormatInt(c.Int(), 10))
	case types.HEART_DECIMAL:
		b.WriteString(strconv.FormatFloat(c.Dec(), 'g', -1, 64))
	case types.HEART_CHAR:
		fmt.Fprintf(b, "#%q", string(c.Char()))
	case types.HEART_TEXT:
		b.WriteByte('"')
		for _, r := range m.flexString(c) {
			switch r {
			case '"':
				b.WriteString(`^"`)
			case '^':
				b.WriteString("^^")
			case '\n':
				b.WriteString("^/")
			case '\t':
				b.WriteString("^-")
			default:
				b.WriteRune(r)
			}
		}
		b.WriteByte('"')
	case types.HEART_BINARY:
		b.WriteString("#{")
		if s := m.Heap.Stub(c.Stub()); s != nil {
			b.WriteString(strings.ToUpper(hex.EncodeToString(s.Bytes())))
		}
		b.WriteByte('}')
	case types.HEART_WORD:
		b.WriteString(m.Heap.Spelling(c.Stub()))
	case types.HEART_SETWORD:
		b.WriteString(m.Heap.Spelling(c.Stub()))
		b.WriteByte(':')
	case types.HEART_GETWORD:
		b.WriteByte(':')
		b.WriteString(m.Heap.Spelling(c.Stub()))
	case types.HEART_LITWORD:
		b.WriteByte('\'')
		b.WriteString(m.Heap.Spelling(c.Stub()))
	case types.HEART_BLOCK:
		b.WriteByte('[')
		m.moldElements(b, c)
		b.WriteByte(']')
	case types.HEART_GROUP:
		b.WriteByte('(')
		m.moldElements(b, c)
		b.WriteByte(')')
	case types.HEART_CONTEXT, types.HEART_FRAME:
		m.moldContext(b, c)
	case types.HEART_ACTION:
		if e := m.registry.Entry(c.Payload2); e != nil {
			fmt.Fprintf(b, "#[action %s]", e.Name)
		} else {
			b.WriteString("#[action]")
		}
	case types.HEART_ERROR:
		if ev := m.Heap.ErrorValue(c.Stub()); ev != nil {
			fmt.Fprintf(b, "#[error %s %q]", ev.ID, ev.Error())
		} else {
			b.WriteString("#[error]")
		}
	case types.HEART_HANDLE:
		b.WriteString("#[handle]")
	default:
		fmt.Fprintf(b, "#[%s]", c.Heart())
	}
}

func (m *Machine) moldElements(b *strings.Builder, c *types.Cell) {
	s := m.Heap.Stub(c.Stub())
	if s == nil {
		return
	}
	for i := c.Index(); i < s.Len(); i++ {
		if i > c.Index() {
			b.WriteByte(' ')
		}
		m.moldInto(b, s.CellAt(i))
	}
}

func (m *Machine) moldContext(b *strings.Builder, c *types.Cell) {
	varlist := c.Stub()
	tag := "context"
	if c.Is(types.HEART_FRAME) {
		tag = "frame"
	}
	fmt.Fprintf(b, "#[%s", tag)
	for i := 0; i < m.Heap.ContextLen(varlist); i++ {
		key := m.Heap.ContextKey(varlist, i)
		slot := m.Heap.ContextVar(varlist, i)
		fmt.Fprintf(b, " %s: ", m.Heap.Spelling(key))
		if slot == nil || isWild(slot) {
			b.WriteString("~unset~")
		} else {
			m.moldInto(b, slot)
		}
	}
	b.WriteByte(']')
}

// flexString decodes a text cell's bytes from the cell's index onward.
func (m *Machine) flexString(c *types.Cell) string {
	s := m.Heap.Stub(c.Stub())
	if s == nil {
		return ""
	}
	data := s.Bytes()
	idx := c.Index()
	if idx > len(data) {
		idx = len(data)
	}
	return string(data[idx:])
}
