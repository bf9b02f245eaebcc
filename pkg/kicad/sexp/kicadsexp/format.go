package kicadsexp

import (
	"io"
	"math"
	"strconv"
	"strings"
)

// Float renders a coordinate the way KiCad writes it: at most four
// decimals, no trailing zeros and never "-0".
func Float(v float64) Symbol {
	r := math.Round(v*1e4) / 1e4
	if r == 0 {
		r = 0
	}
	return Symbol(strconv.FormatFloat(r, 'f', -1, 64))
}

// Int renders an integer atom.
func Int(v int) Symbol {
	return Symbol(strconv.Itoa(v))
}

func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Format writes s with one level of tab indentation per nesting depth,
// starting at depth. Lists at most two levels deep stay on one line:
// (stroke (width 0) (type default)) is written inline while (wire ...)
// puts each child on its own line and closes on a line of its own.
func Format(w io.Writer, s Sexp, depth int) error {
	var b strings.Builder
	format(&b, s, depth)
	_, err := io.WriteString(w, b.String())
	return err
}

// FormatString is Format into a string.
func FormatString(s Sexp, depth int) string {
	var b strings.Builder
	format(&b, s, depth)
	return b.String()
}

func format(b *strings.Builder, s Sexp, depth int) {
	indent := strings.Repeat("\t", depth)
	l, ok := s.(*List)
	if !ok || nesting(l) <= 2 {
		b.WriteString(indent)
		b.WriteString(s.String())
		b.WriteByte('\n')
		return
	}

	b.WriteString(indent)
	b.WriteByte('(')
	i := 0
	for ; i < len(l.elements) && l.elements[i].IsLeaf(); i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(l.elements[i].String())
	}
	b.WriteByte('\n')
	for _, elem := range l.elements[i:] {
		format(b, elem, depth+1)
	}
	b.WriteString(indent)
	b.WriteString(")\n")
}

// nesting is the list depth of s: 0 for atoms, 1 for a flat list.
func nesting(s Sexp) int {
	l, ok := s.(*List)
	if !ok {
		return 0
	}
	deepest := 0
	for _, elem := range l.elements {
		if d := nesting(elem); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}
