package toml

import "fmt"

// tokenKind classifies a lexeme
type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokError
	tokNewline

	tokKey    // bare key
	tokString // basic or literal string
	tokInt
	tokFloat
	tokBool

	tokEqual
	tokDot
	tokComma
	tokLBracket
	tokRBracket
	tokLBrace
	tokRBrace
)

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "EOF"
	case tokNewline:
		return "newline"
	case tokError:
		return "error(" + t.text + ")"
	}
	if len(t.text) > 24 {
		return fmt.Sprintf("%q...", t.text[:24])
	}
	return fmt.Sprintf("%q", t.text)
}

// ParseError locates a syntax error in the source
type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("toml: line %d col %d: %s", e.Line, e.Col, e.Msg)
}
