// Package kicadsexp provides a lightweight streaming S-expression parser
// for KiCad board and design-rule files.
package kicadsexp

import (
	"io"
	"strconv"
	"strings"
)

// Sexp represents an S-expression node: a Symbol or a *List.
type Sexp interface {
	// IsLeaf returns true if this is an atom (not a list)
	IsLeaf() bool

	String() string
}

// Symbol represents an atom (quoted string, number or identifier).
type Symbol string

func (s Symbol) IsLeaf() bool   { return true }
func (s Symbol) String() string { return string(s) }

// List represents a parenthesised list of S-expressions.
type List struct {
	elements []Sexp
	line     int
}

// NewList builds a list from elements. Mostly useful in tests.
func NewList(elements ...Sexp) *List {
	return &List{elements: elements}
}

func (l *List) IsLeaf() bool { return false }

func (l *List) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, elem := range l.elements {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(elem.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Line returns the source line the list opened on, or 0 if unknown.
func (l *List) Line() int {
	return l.line
}

// Len returns the number of elements in the list
func (l *List) Len() int {
	return len(l.elements)
}

// Get returns the element at the given index
func (l *List) Get(index int) Sexp {
	if index < 0 || index >= len(l.elements) {
		return nil
	}
	return l.elements[index]
}

// Items returns the elements of the list.
func (l *List) Items() []Sexp {
	return l.elements
}

// Key returns the leading symbol of the list, e.g. "at" for (at 1 2).
func (l *List) Key() string {
	if len(l.elements) == 0 {
		return ""
	}
	if s, ok := l.elements[0].(Symbol); ok {
		return string(s)
	}
	return ""
}

// Find returns the first child list with the given key.
func (l *List) Find(key string) *List {
	for _, e := range l.elements {
		if c, ok := e.(*List); ok && c.Key() == key {
			return c
		}
	}
	return nil
}

// FindAll returns every child list with the given key.
func (l *List) FindAll(key string) []*List {
	var out []*List
	for _, e := range l.elements {
		if c, ok := e.(*List); ok && c.Key() == key {
			out = append(out, c)
		}
	}
	return out
}

// Lists returns every child list.
func (l *List) Lists() []*List {
	var out []*List
	for _, e := range l.elements {
		if c, ok := e.(*List); ok {
			out = append(out, c)
		}
	}
	return out
}

// HasSymbol reports whether a bare symbol appears among the elements, as
// in (pad "1" thru_hole circle ...).
func (l *List) HasSymbol(sym string) bool {
	for _, e := range l.elements[min(1, len(l.elements)):] {
		if s, ok := e.(Symbol); ok && string(s) == sym {
			return true
		}
	}
	return false
}

// StringAt returns the atom at index as a string.
func (l *List) StringAt(index int) (string, bool) {
	s, ok := l.Get(index).(Symbol)
	return string(s), ok
}

// FloatAt returns the atom at index parsed as a float.
func (l *List) FloatAt(index int) (float64, bool) {
	s, ok := l.StringAt(index)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

// IntAt returns the atom at index parsed as an int.
func (l *List) IntAt(index int) (int, bool) {
	s, ok := l.StringAt(index)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	return v, err == nil
}

// Value returns the first atom of the child list with the given key, as
// in (net 3) or (uuid "...").
func (l *List) Value(key string) (string, bool) {
	c := l.Find(key)
	if c == nil {
		return "", false
	}
	return c.StringAt(1)
}

// Parse parses S-expressions from an io.Reader.
func Parse(r io.Reader) ([]Sexp, error) {
	return NewParser(r).ParseAll()
}

// ParseString parses S-expressions from a string.
func ParseString(s string) ([]Sexp, error) {
	return Parse(strings.NewReader(s))
}
