package cmis

import (
	"strings"
	"unicode/utf8"

	"github.com/nlstn/go-cmisql/internal/syntax"
)

// Lexer is a maximal-munch scanner for CMIS queries. Whitespace is emitted
// on the hidden channel so the token texts always concatenate back to the
// input. A Lexer is single use and not safe for concurrent use.
type Lexer struct {
	input string
	pos   syntax.Pos
	err   error
}

// NewLexer creates a lexer over input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, pos: syntax.StartPos}
}

// TokenizeAll returns every token, hidden ones included, ending with EOF.
func (l *Lexer) TokenizeAll() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

// NextToken returns the next token or an EOF token at the end of input.
// The first lexical error ends the scan and is returned on every later call.
func (l *Lexer) NextToken() (Token, error) {
	if l.err != nil {
		return Token{}, l.err
	}
	tok, err := l.scan()
	if err != nil {
		l.err = err
		return Token{}, err
	}
	return tok, nil
}

func (l *Lexer) scan() (Token, error) {
	start := l.pos
	if l.pos.Offset >= len(l.input) {
		return Token{Type: TokenEOF, Pos: start}, nil
	}

	c := l.input[l.pos.Offset]
	switch {
	case isSpace(c):
		for l.pos.Offset < len(l.input) && isSpace(l.input[l.pos.Offset]) {
			l.skip(1)
		}
		return l.token(TokenWS, start, syntax.ChannelHidden), nil
	case c == '\'':
		return l.scanQuotedString(start)
	case isLetter(c) || c == '_':
		return l.scanIdentifier(start), nil
	}

	if n, typ := l.numberLength(); n > 0 {
		l.skip(n)
		return l.token(typ, start, syntax.ChannelDefault), nil
	}

	if typ, n := l.punctuation(); n > 0 {
		l.skip(n)
		return l.token(typ, start, syntax.ChannelDefault), nil
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.pos.Offset:])
	if r == utf8.RuneError {
		return Token{}, syntax.NewLexError(start, "no viable alternative at character %q", l.input[l.pos.Offset])
	}
	return Token{}, syntax.NewLexError(start, "no viable alternative at character '%c'", r)
}

func (l *Lexer) token(typ TokenType, start syntax.Pos, channel syntax.Channel) Token {
	return Token{
		Type:    typ,
		Text:    l.input[start.Offset:l.pos.Offset],
		Pos:     start,
		Channel: channel,
	}
}

// skip advances over n bytes, keeping line and column in step.
func (l *Lexer) skip(n int) {
	end := l.pos.Offset + n
	for l.pos.Offset < end {
		r, w := utf8.DecodeRuneInString(l.input[l.pos.Offset:])
		l.pos = l.pos.Advance(r, w)
	}
}

func (l *Lexer) scanQuotedString(start syntax.Pos) (Token, error) {
	l.skip(1)
	for {
		if l.pos.Offset >= len(l.input) {
			return Token{}, syntax.NewLexError(l.pos, "mismatched character '<EOF>' expecting '''")
		}
		switch l.input[l.pos.Offset] {
		case '\'':
			l.skip(1)
			return l.token(TokenQuotedString, start, syntax.ChannelDefault), nil
		case '\\':
			l.skip(1)
			if l.pos.Offset >= len(l.input) {
				return Token{}, syntax.NewLexError(l.pos, "mismatched character '<EOF>' after escape character")
			}
			_, w := utf8.DecodeRuneInString(l.input[l.pos.Offset:])
			l.skip(w)
		default:
			_, w := utf8.DecodeRuneInString(l.input[l.pos.Offset:])
			l.skip(w)
		}
	}
}

func (l *Lexer) scanIdentifier(start syntax.Pos) Token {
	end := l.pos.Offset + 1
	for end < len(l.input) && isIdentifierPart(l.input[end]) {
		end++
	}
	l.skip(end - l.pos.Offset)
	tok := l.token(TokenIdentifier, start, syntax.ChannelDefault)
	if typ, ok := keywords[strings.ToUpper(tok.Text)]; ok {
		tok.Type = typ
	}
	return tok
}

// numberLength returns the length of the longest numeric literal at the
// cursor and its type, or zero when none matches. Integers forbid leading
// zeros, so "007" scans as three literals; an exponent only belongs to the
// literal when it is complete.
func (l *Lexer) numberLength() (int, TokenType) {
	s, off := l.input, l.pos.Offset
	i := off
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digitsStart := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}

	if i > digitsStart {
		if i < len(s) && s[i] == '.' {
			j := i + 1
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			return exponentEnd(s, j) - off, TokenFloat
		}
		if e := exponentEnd(s, i); e > i {
			return e - off, TokenFloat
		}
		if s[digitsStart] == '0' {
			return digitsStart + 1 - off, TokenInteger
		}
		return i - off, TokenInteger
	}

	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > i+1 {
			return exponentEnd(s, j) - off, TokenFloat
		}
	}
	return 0, TokenEOF
}

// exponentEnd returns the end of a complete exponent starting at i, or i.
func exponentEnd(s string, i int) int {
	if i >= len(s) || (s[i] != 'e' && s[i] != 'E') {
		return i
	}
	j := i + 1
	if j < len(s) && (s[j] == '+' || s[j] == '-') {
		j++
	}
	digits := j
	for j < len(s) && isDigit(s[j]) {
		j++
	}
	if j == digits {
		return i
	}
	return j
}

func (l *Lexer) punctuation() (TokenType, int) {
	s, off := l.input, l.pos.Offset
	var next byte
	if off+1 < len(s) {
		next = s[off+1]
	}
	switch s[off] {
	case '(':
		return TokenLParen, 1
	case ')':
		return TokenRParen, 1
	case '*':
		return TokenStar, 1
	case ',':
		return TokenComma, 1
	case '=':
		return TokenEquals, 1
	case '~':
		return TokenTilda, 1
	case ':':
		return TokenColon, 1
	case '"':
		return TokenDoubleQuote, 1
	case '.':
		switch next {
		case '*':
			return TokenDotStar, 2
		case '.':
			return TokenDotDot, 2
		}
		return TokenDot, 1
	case '<':
		switch next {
		case '>':
			return TokenNotEquals, 2
		case '=':
			return TokenLessThanOrEquals, 2
		}
		return TokenLessThan, 1
	case '>':
		if next == '=' {
			return TokenGreaterThanOrEquals, 2
		}
		return TokenGreaterThan, 1
	}
	return TokenEOF, 0
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentifierPart(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_' || c == ':' || c == '$' || c == '#'
}
