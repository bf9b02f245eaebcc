// Package kicadsexp provides a lightweight streaming S-expression reader
// and writer for KiCad schematic files. Quoted strings are kept distinct
// from bare symbols so that records can be written back unchanged.
package kicadsexp

import (
	"io"
	"strings"
)

// Sexp represents an S-expression node.
// It can be either a leaf (atom) or a list.
type Sexp interface {
	// IsLeaf returns true if this is an atom (not a list)
	IsLeaf() bool

	// LeafCount returns the number of elements in a list (1 for atoms)
	LeafCount() int

	// Head returns the first element of a list
	Head() Sexp

	// Tail returns the rest of the list after the first element (nil for atoms)
	Tail() Sexp

	// String returns the single-line representation
	String() string
}

// Symbol is a bare atom: a keyword, number or identifier.
type Symbol string

func (s Symbol) IsLeaf() bool   { return true }
func (s Symbol) LeafCount() int { return 1 }
func (s Symbol) Head() Sexp     { return s }
func (s Symbol) Tail() Sexp     { return nil }
func (s Symbol) String() string { return string(s) }

// Quoted is a double-quoted string atom. The value is unescaped.
type Quoted string

func (q Quoted) IsLeaf() bool   { return true }
func (q Quoted) LeafCount() int { return 1 }
func (q Quoted) Head() Sexp     { return q }
func (q Quoted) Tail() Sexp     { return nil }
func (q Quoted) String() string { return quote(string(q)) }

// List is a parenthesised sequence of S-expressions.
type List struct {
	elements []Sexp

	// Line is the 1-based source line of the opening parenthesis, or 0
	// for lists built in memory.
	Line int
}

// NewList builds a list from elements.
func NewList(elements ...Sexp) *List {
	return &List{elements: elements}
}

// Node builds (key elements...).
func Node(key string, elements ...Sexp) *List {
	return &List{elements: append([]Sexp{Symbol(key)}, elements...)}
}

func (l *List) IsLeaf() bool { return false }

func (l *List) LeafCount() int {
	return len(l.elements)
}

func (l *List) Head() Sexp {
	if len(l.elements) == 0 {
		return nil
	}
	return l.elements[0]
}

func (l *List) Tail() Sexp {
	if len(l.elements) <= 1 {
		return nil
	}
	return &List{elements: l.elements[1:], Line: l.Line}
}

func (l *List) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, elem := range l.elements {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(elem.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Get returns the element at the given index
func (l *List) Get(index int) Sexp {
	if index < 0 || index >= len(l.elements) {
		return nil
	}
	return l.elements[index]
}

// Len returns the number of elements in the list
func (l *List) Len() int {
	return len(l.elements)
}

// Elements returns the list's elements. The slice is shared.
func (l *List) Elements() []Sexp {
	return l.elements
}

// Append adds elements to the end of the list.
func (l *List) Append(elements ...Sexp) {
	l.elements = append(l.elements, elements...)
}

// Insert places elements before index i. An out of range index appends.
func (l *List) Insert(i int, elements ...Sexp) {
	if i < 0 || i >= len(l.elements) {
		l.Append(elements...)
		return
	}
	rest := append([]Sexp(nil), l.elements[i:]...)
	l.elements = append(append(l.elements[:i], elements...), rest...)
}

// Key returns the leading symbol of a list, or "" when the node is an atom
// or does not start with a symbol.
func Key(s Sexp) string {
	l, ok := s.(*List)
	if !ok || len(l.elements) == 0 {
		return ""
	}
	if sym, ok := l.elements[0].(Symbol); ok {
		return string(sym)
	}
	return ""
}

// Parse parses all S-expressions from an io.Reader.
func Parse(r io.Reader) ([]Sexp, error) {
	parser := NewParser(r)
	return parser.ParseAll()
}

// ParseString parses S-expressions from a string.
func ParseString(s string) ([]Sexp, error) {
	return Parse(strings.NewReader(s))
}
