package stu

import (
	"strings"
)

// operatorChars are the single-character grammar operators recognized at
// the top level of the scan, per SPEC_FULL.md §6.
const operatorChars = ":;=()[]<>@!?&*"

// Tokenize is the reference tokenizer: it turns Stu source text into the
// Token stream parser.go consumes. The lexer itself is an external
// collaborator per the front-end/back-end split this module follows —
// this implementation exists only so the parser has something real to
// run against in tests and in cmd/stu. Two scanning choices are this
// tokenizer's own, not part of the grammar proper: command bodies are
// "{ ... }" blocks (brace-depth aware, so a shell command containing
// braces of its own still scans correctly), and hardcoded-content blocks
// are "'...'" blocks.
func Tokenize(file, src string) ([]Token, Place, error) {
	l := &lexer{file: file, src: src}
	var toks []Token
	for {
		l.skipSpaceAndComments()
		if l.atEnd() {
			break
		}
		tok, err := l.next()
		if err != nil {
			return nil, Place{}, err
		}
		toks = append(toks, tok)
	}
	return toks, l.place(), nil
}

type lexer struct {
	file string
	src  string
	pos  int
	line int
	col  int
}

func (l *lexer) atEnd() bool { return l.pos >= len(l.src) }

func (l *lexer) place() Place { return InSource(l.file, l.line+1, l.col+1) }

func (l *lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return c
}

func (l *lexer) skipSpaceAndComments() {
	for !l.atEnd() {
		c := l.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.advance()
		case c == '#':
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func isNameStart(c byte) bool {
	if c == 0 || strings.IndexByte(operatorChars, c) >= 0 {
		return false
	}
	if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '#' || c == '\'' || c == '{' || c == '}' || c == '$' {
		return false
	}
	return true
}

func isNameCont(c byte) bool {
	return isNameStart(c) || c == '$'
}

func (l *lexer) next() (Token, error) {
	start := l.place()
	c := l.peek()

	switch {
	case c == '$' && l.peekAt(1) == '[':
		l.advance()
		return OperatorToken{Op: '$', Pl: start}, nil

	case c == '$':
		return l.scanName(start)

	case c == '{':
		return l.scanCommand(start)

	case c == '\'':
		return l.scanHardcoded(start)

	case strings.IndexByte(operatorChars, c) >= 0:
		l.advance()
		return OperatorToken{Op: c, Pl: start}, nil

	case isNameStart(c):
		return l.scanName(start)

	default:
		return nil, NewLogicalError(start, "unexpected character '%c'", c)
	}
}

// scanName consumes a parametrized name: literal text interleaved with
// "$identifier" parameter references, stopping at whitespace, an
// operator character, or a brace/quote.
func (l *lexer) scanName(start Place) (Token, error) {
	var texts []string
	var params []string
	var paramPlaces []Place
	var lit strings.Builder

	for !l.atEnd() {
		c := l.peek()
		if c == '$' {
			paramPlace := l.place()
			l.advance()
			if l.atEnd() || !isIdentStart(l.peek()) {
				return nil, NewLogicalError(paramPlace, "expected a parameter name after '$'")
			}
			var id strings.Builder
			for !l.atEnd() && isIdentCont(l.peek()) {
				id.WriteByte(l.advance())
			}
			texts = append(texts, lit.String())
			params = append(params, id.String())
			paramPlaces = append(paramPlaces, paramPlace)
			lit.Reset()
			continue
		}
		if !isNameCont(c) {
			break
		}
		lit.WriteByte(l.advance())
	}
	texts = append(texts, lit.String())

	name := PlaceParamName{
		Name:        ParamName{Texts: texts, Params: params},
		Place:       start,
		ParamPlaces: paramPlaces,
	}
	if err := name.Validate(); err != nil {
		return nil, err
	}
	return NameToken{Name: name, Pl: start}, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// scanCommand consumes a "{ ... }" block, tracking brace depth so that
// braces inside the command text (e.g. shell parameter expansion) don't
// terminate it early.
func (l *lexer) scanCommand(start Place) (Token, error) {
	l.advance() // consume '{'
	depth := 1
	var body strings.Builder
	for {
		if l.atEnd() {
			return nil, NewLogicalError(start, "unterminated command block: missing closing '}'")
		}
		c := l.advance()
		if c == '{' {
			depth++
		} else if c == '}' {
			depth--
			if depth == 0 {
				break
			}
		}
		body.WriteByte(c)
	}
	return CommandToken{Payload: body.String(), Hardcoded: false, Pl: start}, nil
}

// scanHardcoded consumes a "'...'" block of literal content.
func (l *lexer) scanHardcoded(start Place) (Token, error) {
	l.advance() // consume opening quote
	var body strings.Builder
	for {
		if l.atEnd() {
			return nil, NewLogicalError(start, "unterminated hardcoded-content block: missing closing \"'\"")
		}
		c := l.advance()
		if c == '\'' {
			break
		}
		body.WriteByte(c)
	}
	return CommandToken{Payload: body.String(), Hardcoded: true, Pl: start}, nil
}
