// Package expr evaluates property paths such as `items[0].owner.name` against
// response bodies and substitutes `${response.<path>}` placeholders.
package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/loykin/apiscenario/pkg/failure"
	"github.com/loykin/apiscenario/pkg/value"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokDot
	tokLBracket
	tokRBracket
	tokInt
	tokString
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type lexer struct {
	src string
	pos int
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}
	start := l.pos
	c := l.src[l.pos]
	switch {
	case c == '.':
		l.pos++
		return token{kind: tokDot, text: ".", pos: start}, nil
	case c == '[':
		l.pos++
		return token{kind: tokLBracket, text: "[", pos: start}, nil
	case c == ']':
		l.pos++
		return token{kind: tokRBracket, text: "]", pos: start}, nil
	case c == '\'' || c == '"':
		return l.quoted(c)
	case isIdentByte(c):
		for l.pos < len(l.src) && isIdentByte(l.src[l.pos]) {
			l.pos++
		}
		text := l.src[start:l.pos]
		if isInteger(text) {
			return token{kind: tokInt, text: text, pos: start}, nil
		}
		return token{kind: tokIdent, text: text, pos: start}, nil
	default:
		return token{}, fmt.Errorf("unexpected %q at offset %d", c, start)
	}
}

func (l *lexer) quoted(q byte) (token, error) {
	start := l.pos
	l.pos++
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\\' && l.pos+1 < len(l.src):
			b.WriteByte(l.src[l.pos+1])
			l.pos += 2
		case c == q:
			l.pos++
			return token{kind: tokString, text: b.String(), pos: start}, nil
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	return token{}, fmt.Errorf("unterminated string at offset %d", start)
}

func isInteger(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// segment is one step of a compiled path: a map key or a list index.
type segment struct {
	key   string
	index int
	isIdx bool
}

func (s segment) String() string {
	if s.isIdx {
		return "[" + strconv.Itoa(s.index) + "]"
	}
	return s.key
}

// Path is a compiled property path.
type Path struct {
	src  string
	segs []segment
}

func (p Path) String() string { return p.src }

// Compile parses a property path. Grammar:
//
//	path    = head { "." name | "[" (int | quoted) "]" }
//	head    = name | "[" (int | quoted) "]"
//
// A bare numeric name after a dot (`items.0`) is treated as a map key.
func Compile(src string) (Path, error) {
	p := &parser{lex: lexer{src: src}}
	if err := p.advance(); err != nil {
		return Path{}, evalErr(src, err.Error())
	}
	segs, err := p.path()
	if err != nil {
		return Path{}, evalErr(src, err.Error())
	}
	return Path{src: src, segs: segs}, nil
}

type parser struct {
	lex lexer
	cur token
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

func (p *parser) path() ([]segment, error) {
	if p.cur.kind == tokEOF {
		return nil, fmt.Errorf("empty path")
	}
	var segs []segment
	first, err := p.head()
	if err != nil {
		return nil, err
	}
	segs = append(segs, first)
	for p.cur.kind != tokEOF {
		switch p.cur.kind {
		case tokDot:
			if err := p.advance(); err != nil {
				return nil, err
			}
			s, err := p.name()
			if err != nil {
				return nil, err
			}
			segs = append(segs, s)
		case tokLBracket:
			s, err := p.bracket()
			if err != nil {
				return nil, err
			}
			segs = append(segs, s)
		default:
			return nil, fmt.Errorf("unexpected %q at offset %d", p.cur.text, p.cur.pos)
		}
	}
	return segs, nil
}

func (p *parser) head() (segment, error) {
	if p.cur.kind == tokLBracket {
		return p.bracket()
	}
	return p.name()
}

func (p *parser) name() (segment, error) {
	if p.cur.kind != tokIdent && p.cur.kind != tokInt {
		return segment{}, fmt.Errorf("expected a name at offset %d", p.cur.pos)
	}
	s := segment{key: p.cur.text}
	return s, p.advance()
}

func (p *parser) bracket() (segment, error) {
	if err := p.advance(); err != nil {
		return segment{}, err
	}
	var s segment
	switch p.cur.kind {
	case tokInt:
		n, err := strconv.Atoi(p.cur.text)
		if err != nil {
			return segment{}, fmt.Errorf("bad index %q", p.cur.text)
		}
		s = segment{index: n, isIdx: true}
	case tokString:
		s = segment{key: p.cur.text}
	default:
		return segment{}, fmt.Errorf("expected index or quoted key at offset %d", p.cur.pos)
	}
	if err := p.advance(); err != nil {
		return segment{}, err
	}
	if p.cur.kind != tokRBracket {
		return segment{}, fmt.Errorf("expected ] at offset %d", p.cur.pos)
	}
	return s, p.advance()
}

// Eval compiles path and evaluates it against root.
func Eval(root value.Value, path string) (value.Value, error) {
	p, err := Compile(path)
	if err != nil {
		return value.Value{}, err
	}
	return p.Eval(root)
}

// Eval walks the path from root. Reading a key from anything but a map, a
// missing key, or an index out of range fails with an EvaluationError.
func (p Path) Eval(root value.Value) (value.Value, error) {
	cur := root
	for i, s := range p.segs {
		at := p.prefix(i)
		if s.isIdx {
			if cur.Kind() != value.List {
				return value.Value{}, evalErr(p.src, fmt.Sprintf("cannot index %s at %s", cur.Kind(), at))
			}
			item, ok := cur.Index(s.index)
			if !ok {
				return value.Value{}, evalErr(p.src, fmt.Sprintf("index %d out of range at %s (len %d)", s.index, at, cur.Len()))
			}
			cur = item
			continue
		}
		if !canRead(cur, s.key) {
			if cur.Kind() != value.Map {
				return value.Value{}, evalErr(p.src, fmt.Sprintf("cannot read %q from %s at %s", s.key, cur.Kind(), at))
			}
			return value.Value{}, evalErr(p.src, fmt.Sprintf("no key %q at %s", s.key, at))
		}
		cur = read(cur, s.key)
	}
	return cur, nil
}

// prefix renders the path up to (excluding) segment i for error messages.
func (p Path) prefix(i int) string {
	if i == 0 {
		return "<root>"
	}
	var b strings.Builder
	for j := 0; j < i; j++ {
		s := p.segs[j]
		if !s.isIdx && j > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.String())
	}
	return b.String()
}

func evalErr(path, reason string) error {
	return &failure.EvaluationError{Path: path, Reason: reason}
}
