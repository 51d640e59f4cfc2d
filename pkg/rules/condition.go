package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ErrUnknownField is returned for conditions naming a property that items
// do not have.
var ErrUnknownField = errors.New("rules: unknown field")

// Subject is the view of an item that conditions can inspect.
type Subject struct {
	Type      string // Track, Arc, Via, Pad, Zone, Graphic
	NetName   string
	NetClass  string
	Layers    []string
	Reference string // reference of the owning footprint
}

// conditionLexer tokenizes expressions such as
//
//	A.NetClass == 'Power' && !(B.Type == 'Via')
var conditionLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[\s]+`},
	{Name: "String", Pattern: `'[^']*'|"[^"]*"`},
	{Name: "Operator", Pattern: `==|!=|&&|\|\||!`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[.()]`},
})

type orExpr struct {
	And []*andExpr `@@ ( "||" @@ )*`
}

type andExpr struct {
	Terms []*unaryExpr `@@ ( "&&" @@ )*`
}

type unaryExpr struct {
	Not   bool        `@"!"?`
	Group *orExpr     `( "(" @@ ")"`
	Cmp   *comparison `| @@ )`
}

type comparison struct {
	Side  string `@( "A" | "B" )`
	Field string `"." @Ident`
	Op    string `@( "==" | "!=" )`
	Value string `@String`
}

var conditionParser = participle.MustBuild[orExpr](
	participle.Lexer(conditionLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// Condition is a compiled rule condition over an item pair (A, B).
type Condition struct {
	src  string
	eval func(a, b *Subject) bool
}

// ParseCondition compiles src. An empty condition matches every pair.
func ParseCondition(src string) (*Condition, error) {
	if strings.TrimSpace(src) == "" {
		return &Condition{eval: func(a, b *Subject) bool { return true }}, nil
	}
	ast, err := conditionParser.ParseString("", src)
	if err != nil {
		return nil, fmt.Errorf("rules: condition %q: %w", src, err)
	}
	eval, err := ast.compile()
	if err != nil {
		return nil, fmt.Errorf("condition %q: %w", src, err)
	}
	return &Condition{src: src, eval: eval}, nil
}

// Match evaluates the condition with a as A and b as B.
func (c *Condition) Match(a, b *Subject) bool {
	return c.eval(a, b)
}

func (c *Condition) String() string {
	return c.src
}

type predicate func(a, b *Subject) bool

func (e *orExpr) compile() (predicate, error) {
	var terms []predicate
	for _, and := range e.And {
		p, err := and.compile()
		if err != nil {
			return nil, err
		}
		terms = append(terms, p)
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return func(a, b *Subject) bool {
		for _, t := range terms {
			if t(a, b) {
				return true
			}
		}
		return false
	}, nil
}

func (e *andExpr) compile() (predicate, error) {
	var terms []predicate
	for _, u := range e.Terms {
		p, err := u.compile()
		if err != nil {
			return nil, err
		}
		terms = append(terms, p)
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return func(a, b *Subject) bool {
		for _, t := range terms {
			if !t(a, b) {
				return false
			}
		}
		return true
	}, nil
}

func (e *unaryExpr) compile() (predicate, error) {
	var (
		p   predicate
		err error
	)
	if e.Group != nil {
		p, err = e.Group.compile()
	} else {
		p, err = e.Cmp.compile()
	}
	if err != nil || !e.Not {
		return p, err
	}
	return func(a, b *Subject) bool { return !p(a, b) }, nil
}

// fields maps lower-cased property names to accessors.
var fields = map[string]func(s *Subject) []string{
	"type":      func(s *Subject) []string { return []string{s.Type} },
	"netname":   func(s *Subject) []string { return []string{s.NetName} },
	"netclass":  func(s *Subject) []string { return []string{s.NetClass} },
	"layer":     func(s *Subject) []string { return s.Layers },
	"reference": func(s *Subject) []string { return []string{s.Reference} },
}

func (c *comparison) compile() (predicate, error) {
	get, ok := fields[strings.ToLower(c.Field)]
	if !ok {
		return nil, fmt.Errorf("%w %s.%s", ErrUnknownField, c.Side, c.Field)
	}
	re, err := wildcard(unquote(c.Value))
	if err != nil {
		return nil, err
	}

	side := func(a, b *Subject) *Subject { return a }
	if c.Side == "B" {
		side = func(a, b *Subject) *Subject { return b }
	}
	match := func(a, b *Subject) bool {
		for _, v := range get(side(a, b)) {
			if re.MatchString(v) {
				return true
			}
		}
		return false
	}
	if c.Op == "!=" {
		return func(a, b *Subject) bool { return !match(a, b) }, nil
	}
	return match, nil
}

func unquote(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

// wildcard compiles a case-insensitive pattern where * matches any run of
// characters and ? a single one.
func wildcard(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("(?i)^")
	for _, r := range pattern {
		switch r {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return regexp.Compile(sb.String())
}

// matchWildcard reports whether name matches pattern.
func matchWildcard(pattern, name string) bool {
	re, err := wildcard(pattern)
	return err == nil && re.MatchString(name)
}
