package stu

// Token is the interface the parser consumes. The lexical tokenizer that
// produces a stream of these is, per SPEC_FULL.md, an external
// collaborator referenced only at this interface depth; lex.go ships one
// concrete implementation so the parser can be exercised end to end.
// parser.go works on the types on this page; the one exception is
// GetTargetDependency, which runs Tokenize on its argument.
type Token interface {
	TokenPlace() Place
}

// OperatorToken is a single-character grammar operator: one of
// ": ; = ( ) [ ] < > @ $ ! ? & *".
type OperatorToken struct {
	Op byte
	Pl Place
}

func (t OperatorToken) TokenPlace() Place { return t.Pl }

// NameToken is a (possibly parametrized) name, e.g. a target or
// dependency name, or the payload of a "< name" / "> name" redirection.
type NameToken struct {
	Name PlaceParamName
	Pl   Place
}

func (t NameToken) TokenPlace() Place { return t.Pl }

// CommandToken is a recipe body: the raw text of a "{ ... }" command block
// or, with Hardcoded set, of a "'...'" hardcoded-content block.
type CommandToken struct {
	Payload    string
	Hardcoded  bool
	Pl         Place
}

func (t CommandToken) TokenPlace() Place { return t.Pl }

// TokenStream is a peek-and-advance cursor over a fixed slice of tokens,
// plus the place just past the last token (used to anchor "unexpected end
// of file" diagnostics). This is the concrete shape of the "abstract
// token-iterator interface" SPEC_FULL.md §6 calls for; a slice-backed
// cursor is enough because both lex.go and any future tokenizer can
// produce their output up front rather than streaming it incrementally.
type TokenStream struct {
	tokens []Token
	pos    int
	end    Place
}

// NewTokenStream wraps tokens for parsing. end is the place to report if
// the parser needs a token past the last one in tokens.
func NewTokenStream(tokens []Token, end Place) *TokenStream {
	return &TokenStream{tokens: tokens, end: end}
}

// Peek returns the next token without consuming it, and false if the
// stream is exhausted.
func (s *TokenStream) Peek() (Token, bool) {
	if s.pos >= len(s.tokens) {
		return nil, false
	}
	return s.tokens[s.pos], true
}

// PeekAt returns the token offset tokens ahead of the cursor (0 is the
// same as Peek), for lookahead beyond the immediate next token. The
// parser does not call it.
func (s *TokenStream) PeekAt(offset int) (Token, bool) {
	i := s.pos + offset
	if i < 0 || i >= len(s.tokens) {
		return nil, false
	}
	return s.tokens[i], true
}

// Next consumes and returns the next token, and false if the stream is
// exhausted.
func (s *TokenStream) Next() (Token, bool) {
	t, ok := s.Peek()
	if ok {
		s.pos++
	}
	return t, ok
}

// EndPlace returns the place just past the last token, for diagnostics
// about unexpected end of input.
func (s *TokenStream) EndPlace() Place { return s.end }

// AtEnd reports whether the cursor has consumed every token.
func (s *TokenStream) AtEnd() bool { return s.pos >= len(s.tokens) }

// PlaceOrEnd returns the next token's place, or EndPlace if the stream is
// exhausted — a convenience for error paths that need a place either way.
func (s *TokenStream) PlaceOrEnd() Place {
	if t, ok := s.Peek(); ok {
		return t.TokenPlace()
	}
	return s.end
}
