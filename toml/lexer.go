package toml

import (
	"strings"
)

// lexer scans one document; comments and insignificant blanks are dropped
type lexer struct {
	src  []byte
	pos  int
	line int
	col  int
}

func newLexer(src []byte) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *lexer) next() token {
	for l.pos < len(l.src) {
		c := l.peek()
		if c == ' ' || c == '\t' || c == '\r' {
			l.advance()
			continue
		}
		if c == '#' {
			for l.pos < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
			continue
		}
		break
	}

	line, col := l.line, l.col
	tok := func(k tokenKind, text string) token {
		return token{kind: k, text: text, line: line, col: col}
	}

	if l.pos >= len(l.src) {
		return tok(tokEOF, "")
	}

	c := l.peek()
	switch c {
	case '\n':
		l.advance()
		return tok(tokNewline, "\n")
	case '=':
		l.advance()
		return tok(tokEqual, "=")
	case '.':
		l.advance()
		return tok(tokDot, ".")
	case ',':
		l.advance()
		return tok(tokComma, ",")
	case '[':
		l.advance()
		return tok(tokLBracket, "[")
	case ']':
		l.advance()
		return tok(tokRBracket, "]")
	case '{':
		l.advance()
		return tok(tokLBrace, "{")
	case '}':
		l.advance()
		return tok(tokRBrace, "}")
	case '"':
		s, err := l.basicString()
		if err != "" {
			return tok(tokError, err)
		}
		return tok(tokString, s)
	case '\'':
		s, err := l.literalString()
		if err != "" {
			return tok(tokError, err)
		}
		return tok(tokString, s)
	}

	if isBare(c) || c == '+' {
		return l.word(line, col)
	}

	l.advance()
	return tok(tokError, "unexpected character "+string(rune(c)))
}

func (l *lexer) basicString() (string, string) {
	l.advance()
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.advance()
		switch c {
		case '"':
			return b.String(), ""
		case '\n':
			return "", "newline in string"
		case '\\':
			if l.pos >= len(l.src) {
				return "", "unterminated escape"
			}
			switch e := l.advance(); e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '"', '\\':
				b.WriteByte(e)
			default:
				return "", "unknown escape \\" + string(rune(e))
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", "unterminated string"
}

func (l *lexer) literalString() (string, string) {
	l.advance()
	start := l.pos
	for l.pos < len(l.src) {
		switch l.peek() {
		case '\'':
			s := string(l.src[start:l.pos])
			l.advance()
			return s, ""
		case '\n':
			return "", "newline in string"
		}
		l.advance()
	}
	return "", "unterminated string"
}

// word reads a bare key, number or boolean; the parser decides by position
func (l *lexer) word(line, col int) token {
	start := l.pos
	for l.pos < len(l.src) {
		c := l.peek()
		if isBare(c) || c == '+' {
			l.advance()
			continue
		}
		// A dot inside a number is a decimal point, between keys a separator
		if c == '.' && isNumberPrefix(l.src[start:l.pos]) {
			l.advance()
			continue
		}
		break
	}
	text := string(l.src[start:l.pos])
	return token{kind: classifyWord(text), text: text, line: line, col: col}
}

func isBare(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isNumberPrefix(b []byte) bool {
	if len(b) > 0 && (b[0] == '+' || b[0] == '-') {
		b = b[1:]
	}
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if !isDigit(c) && c != '_' {
			return false
		}
	}
	return true
}

func classifyWord(s string) tokenKind {
	switch s {
	case "true", "false":
		return tokBool
	case "inf", "+inf", "-inf", "nan", "+nan", "-nan":
		return tokFloat
	}
	body := strings.TrimLeft(s, "+-")
	if body == "" || !isDigit(body[0]) {
		return tokKey
	}
	if len(body) > 2 && body[0] == '0' && strings.ContainsRune("xob", rune(body[1])) {
		return tokInt
	}
	float := false
	for i := 0; i < len(body); i++ {
		switch c := body[i]; {
		case isDigit(c) || c == '_':
		case c == '.' || c == 'e' || c == 'E':
			float = true
		case (c == '+' || c == '-') && i > 0 && (body[i-1] == 'e' || body[i-1] == 'E'):
		default:
			return tokKey
		}
	}
	if float {
		return tokFloat
	}
	return tokInt
}
