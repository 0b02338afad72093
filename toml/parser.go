package toml

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Table is a parsed TOML table
type Table = map[string]any

type parser struct {
	lex  *lexer
	cur  token
	peek token

	root  Table
	scope Table

	// declared holds explicit [table] headers; redefinition is an error
	declared map[string]bool
}

// Parse reads a document into nested tables
// Values are string, int64, float64, bool, []any or Table
func Parse(data []byte) (Table, error) {
	p := &parser{
		lex:      newLexer(data),
		root:     Table{},
		declared: map[string]bool{},
	}
	p.scope = p.root
	p.advance()
	p.advance()

	for p.cur.kind != tokEOF {
		switch p.cur.kind {
		case tokNewline:
			p.advance()
			continue
		case tokLBracket:
			if err := p.header(); err != nil {
				return nil, err
			}
		case tokKey, tokString, tokInt, tokBool:
			if err := p.keyValue(p.scope); err != nil {
				return nil, err
			}
		default:
			return nil, p.errorf("unexpected %v", p.cur)
		}
		if p.cur.kind != tokNewline && p.cur.kind != tokEOF {
			return nil, p.errorf("expected end of line, got %v", p.cur)
		}
	}
	return p.root, nil
}

func (p *parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.next()
}

func (p *parser) errorf(format string, args ...any) error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	if p.cur.kind == tokError {
		msg = p.cur.text
	}
	return &ParseError{Line: p.cur.line, Col: p.cur.col, Msg: msg}
}

func (p *parser) expect(k tokenKind, what string) error {
	if p.cur.kind != k {
		return p.errorf("expected %s, got %v", what, p.cur)
	}
	p.advance()
	return nil
}

// header handles [a.b]
func (p *parser) header() error {
	p.advance()
	keys, err := p.key()
	if err != nil {
		return err
	}
	if err := p.expect(tokRBracket, "]"); err != nil {
		return err
	}

	path := strings.Join(keys, ".")
	if p.declared[path] {
		return p.errorf("table [%s] defined twice", path)
	}
	p.declared[path] = true

	t, err := p.descend(p.root, keys)
	if err != nil {
		return err
	}
	p.scope = t
	return nil
}

// descend walks keys from t, creating missing tables
func (p *parser) descend(t Table, keys []string) (Table, error) {
	for _, k := range keys {
		switch v := t[k].(type) {
		case nil:
			nt := Table{}
			t[k] = nt
			t = nt
		case Table:
			t = v
		default:
			return nil, p.errorf("key %q is not a table", k)
		}
	}
	return t, nil
}

func (p *parser) key() ([]string, error) {
	var keys []string
	for {
		switch p.cur.kind {
		case tokKey, tokString, tokInt, tokBool:
			keys = append(keys, p.cur.text)
		default:
			return nil, p.errorf("expected key, got %v", p.cur)
		}
		p.advance()
		if p.cur.kind != tokDot {
			return keys, nil
		}
		p.advance()
	}
}

func (p *parser) keyValue(scope Table) error {
	keys, err := p.key()
	if err != nil {
		return err
	}
	if err := p.expect(tokEqual, "="); err != nil {
		return err
	}
	v, err := p.value()
	if err != nil {
		return err
	}

	t, err := p.descend(scope, keys[:len(keys)-1])
	if err != nil {
		return err
	}
	last := keys[len(keys)-1]
	if _, dup := t[last]; dup {
		return p.errorf("duplicate key %q", strings.Join(keys, "."))
	}
	t[last] = v
	return nil
}

func (p *parser) value() (any, error) {
	tok := p.cur
	switch tok.kind {
	case tokString:
		p.advance()
		return tok.text, nil
	case tokBool:
		p.advance()
		return tok.text == "true", nil
	case tokInt:
		n, err := parseInt(tok.text)
		if err != nil {
			return nil, p.errorf("bad integer %q", tok.text)
		}
		p.advance()
		return n, nil
	case tokFloat:
		f, err := parseFloat(tok.text)
		if err != nil {
			return nil, p.errorf("bad float %q", tok.text)
		}
		p.advance()
		return f, nil
	case tokLBracket:
		return p.array()
	case tokLBrace:
		return p.inlineTable()
	}
	return nil, p.errorf("expected value, got %v", tok)
}

func (p *parser) skipNewlines() {
	for p.cur.kind == tokNewline {
		p.advance()
	}
}

func (p *parser) array() ([]any, error) {
	p.advance()
	arr := []any{}
	for {
		p.skipNewlines()
		if p.cur.kind == tokRBracket {
			p.advance()
			return arr, nil
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
		p.skipNewlines()
		if p.cur.kind == tokComma {
			p.advance()
			continue
		}
		if err := p.expect(tokRBracket, "',' or ']'"); err != nil {
			return nil, err
		}
		return arr, nil
	}
}

func (p *parser) inlineTable() (Table, error) {
	p.advance()
	t := Table{}
	if p.cur.kind == tokRBrace {
		p.advance()
		return t, nil
	}
	for {
		if err := p.keyValue(t); err != nil {
			return nil, err
		}
		if p.cur.kind == tokComma {
			p.advance()
			continue
		}
		if err := p.expect(tokRBrace, "',' or '}'"); err != nil {
			return nil, err
		}
		return t, nil
	}
}

func parseInt(s string) (int64, error) {
	body := strings.TrimLeft(s, "+-")
	if len(body) > 2 && body[0] == '0' && !isDigit(body[1]) {
		// Base prefixes; strconv accepts 0x 0o 0b and underscores with base 0
		return strconv.ParseInt(s, 0, 64)
	}
	return strconv.ParseInt(strings.ReplaceAll(s, "_", ""), 10, 64)
}

func parseFloat(s string) (float64, error) {
	switch strings.TrimLeft(s, "+") {
	case "inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	case "nan", "-nan":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(s, "_", ""), 64)
}
