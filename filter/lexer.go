package filter

import (
	"strings"
)

// rawTerm is a lexed but not yet typed query term.
type rawTerm struct {
	pos   int
	field string // empty for free-text terms
	op    string
	value string
}

type lexer struct {
	input string
	pos   int
}

func lex(input string) ([]rawTerm, error) {
	l := &lexer{input: input}
	var terms []rawTerm
	for {
		l.skipSpace()
		if l.eof() {
			return terms, nil
		}
		term, err := l.next()
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
}

func (l *lexer) next() (rawTerm, error) {
	start := l.pos
	if l.peek() == '"' {
		text, err := l.quoted()
		if err != nil {
			return rawTerm{}, err
		}
		if text == "" {
			return rawTerm{}, &ParseError{Reason: "empty text term", Position: start}
		}
		return rawTerm{pos: start, value: text}, nil
	}

	if name := l.fieldName(); name != "" {
		// Whitespace is allowed between a field name and its operator
		save := l.pos
		l.skipSpace()
		if op := l.operator(); op != "" {
			value, err := l.value(start, name)
			if err != nil {
				return rawTerm{}, err
			}
			return rawTerm{pos: start, field: name, op: op, value: value}, nil
		}
		l.pos = save
	}

	l.pos = start
	text, err := l.bare()
	if err != nil {
		return rawTerm{}, err
	}
	return rawTerm{pos: start, value: text}, nil
}

func (l *lexer) value(start int, name string) (string, error) {
	l.skipSpace()
	if l.eof() {
		return "", &ParseError{Reason: "missing value for field " + name, Position: start}
	}
	if l.peek() == '"' {
		return l.quoted()
	}
	if isOperatorByte(l.peek()) {
		return "", &ParseError{Reason: "unexpected operator in value of field " + name, Position: l.pos}
	}
	return l.bare()
}

// quoted consumes a double-quoted string starting at the current position.
func (l *lexer) quoted() (string, error) {
	open := l.pos
	l.pos++
	var b strings.Builder
	for !l.eof() {
		c := l.input[l.pos]
		switch c {
		case '\\':
			if l.pos+1 >= len(l.input) {
				return "", &ParseError{Reason: "unterminated escape", Position: l.pos}
			}
			next := l.input[l.pos+1]
			if next != '"' && next != '\\' {
				return "", &ParseError{Reason: "invalid escape \\" + string(next), Position: l.pos}
			}
			b.WriteByte(next)
			l.pos += 2
		case '"':
			l.pos++
			if !l.eof() && !isSpace(l.peek()) {
				return "", &ParseError{Reason: "unexpected character after closing quote", Position: l.pos}
			}
			return b.String(), nil
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	return "", &ParseError{Reason: "unbalanced quote", Position: open}
}

// bare consumes an unquoted token up to the next whitespace.
func (l *lexer) bare() (string, error) {
	start := l.pos
	for !l.eof() && !isSpace(l.peek()) {
		if l.peek() == '"' {
			return "", &ParseError{Reason: "unexpected quote", Position: l.pos}
		}
		l.pos++
	}
	return l.input[start:l.pos], nil
}

func (l *lexer) fieldName() string {
	start := l.pos
	if l.eof() || !isNameStart(l.peek()) {
		return ""
	}
	l.pos++
	for !l.eof() && isNamePart(l.peek()) {
		l.pos++
	}
	return l.input[start:l.pos]
}

func (l *lexer) operator() string {
	if l.eof() {
		return ""
	}
	switch c := l.peek(); c {
	case ':', '=':
		l.pos++
		return string(c)
	case '<', '>':
		l.pos++
		if !l.eof() && l.peek() == '=' {
			l.pos++
			return string(c) + "="
		}
		return string(c)
	}
	return ""
}

func (l *lexer) skipSpace() {
	for !l.eof() && isSpace(l.peek()) {
		l.pos++
	}
}

func (l *lexer) eof() bool {
	return l.pos >= len(l.input)
}

func (l *lexer) peek() byte {
	return l.input[l.pos]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isOperatorByte(c byte) bool {
	return c == ':' || c == '=' || c == '<' || c == '>'
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNamePart(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9') || c == '.' || c == '-'
}
